package policy

// Fixture is an in-memory RawImage builder for tests: callers populate
// its exported slices/maps directly instead of parsing a binary policy,
// since this toolkit never implements a loader of its own (spec.md §1
// Non-goals: "parsing, loading, or verifying the binary policy format
// itself").
type Fixture struct {
	Ver            int
	MLS            bool
	LineNumbers    bool
	AttributeNames bool
	SyntacticRules bool
	Modules        bool
	NeverAllowCap  bool
	CondCap        bool

	Types           []string
	AttributeMap    map[string][]string
	EmptyAttrHoles  int
	Roles           []string
	Users           []string
	Classes         []RawClass
	Commons         []RawCommon
	Booleans        map[string]bool
	AVRules         []RawAVRule
	TERules         []RawTERule
	RoleAllows      []RawRoleAllow
	RoleTransitions []RawRoleTransition
	RangeTrans      []RawRangeTransition
	UserRoles       map[string][]string
	RoleTypesMap    map[string][]string
	UserRanges      map[string]RawRange
	InitialSIDs     []RawInitialSID
	Conditionals    []RawConditional
	FSUse           []RawFSUse
	Genfscon        []RawGenfscon
	Portcon         []RawPortcon
	Netifcon        []RawNetifcon
	Nodecon         []RawNodecon
	Constraints     []RawConstraint
	ValidateTrans   []RawConstraint
}

// NewFixture returns an empty Fixture with every map initialized.
func NewFixture() *Fixture {
	return &Fixture{
		AttributeMap: make(map[string][]string),
		Booleans:     make(map[string]bool),
		UserRoles:    make(map[string][]string),
		RoleTypesMap: make(map[string][]string),
		UserRanges:   make(map[string]RawRange),
	}
}

func (f *Fixture) Version() int     { return f.Ver }
func (f *Fixture) MLSEnabled() bool { return f.MLS }

func (f *Fixture) HasLineNumbers() bool    { return f.LineNumbers }
func (f *Fixture) HasAttributeNames() bool { return f.AttributeNames }
func (f *Fixture) HasSyntacticRules() bool { return f.SyntacticRules }
func (f *Fixture) HasModules() bool        { return f.Modules }
func (f *Fixture) HasNeverAllow() bool     { return f.NeverAllowCap }
func (f *Fixture) HasConditionals() bool   { return f.CondCap }

func (f *Fixture) RawTypes() []string                   { return f.Types }
func (f *Fixture) RawAttributeMap() map[string][]string { return f.AttributeMap }
func (f *Fixture) RawEmptyAttributeHoles() int          { return f.EmptyAttrHoles }
func (f *Fixture) RawRoles() []string                   { return f.Roles }
func (f *Fixture) RawUsers() []string                   { return f.Users }
func (f *Fixture) RawClasses() []RawClass               { return f.Classes }
func (f *Fixture) RawCommons() []RawCommon              { return f.Commons }
func (f *Fixture) RawBooleans() map[string]bool         { return f.Booleans }

func (f *Fixture) RawAVRules() []RawAVRule                   { return f.AVRules }
func (f *Fixture) RawTERules() []RawTERule                   { return f.TERules }
func (f *Fixture) RawRoleAllows() []RawRoleAllow             { return f.RoleAllows }
func (f *Fixture) RawRoleTransitions() []RawRoleTransition   { return f.RoleTransitions }
func (f *Fixture) RawRangeTransitions() []RawRangeTransition { return f.RangeTrans }

func (f *Fixture) RawUserRoles() map[string][]string  { return f.UserRoles }
func (f *Fixture) RawRoleTypes() map[string][]string  { return f.RoleTypesMap }
func (f *Fixture) RawUserRanges() map[string]RawRange { return f.UserRanges }

func (f *Fixture) RawInitialSIDs() []RawInitialSID   { return f.InitialSIDs }
func (f *Fixture) RawConditionals() []RawConditional { return f.Conditionals }

func (f *Fixture) RawFSUse() []RawFSUse       { return f.FSUse }
func (f *Fixture) RawGenfscon() []RawGenfscon { return f.Genfscon }
func (f *Fixture) RawPortcon() []RawPortcon   { return f.Portcon }
func (f *Fixture) RawNetifcon() []RawNetifcon { return f.Netifcon }
func (f *Fixture) RawNodecon() []RawNodecon   { return f.Nodecon }

func (f *Fixture) RawConstraints() []RawConstraint   { return f.Constraints }
func (f *Fixture) RawValidateTrans() []RawConstraint { return f.ValidateTrans }
