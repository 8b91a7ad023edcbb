package policy

import (
	"encoding/json"
	"fmt"
	"io"
)

// JSONImage is the RawImage this toolkit's own CLI loads from disk. A real
// binary-policy loader is out of scope (spec.md §1 Non-goals: "parsing,
// loading, or verifying the binary policy format itself"); this is the
// toolkit's own declarative stand-in for "a handle from an external
// loader" (spec.md §6), decoded with encoding/json the same way this
// codebase's lineage reaches for it elsewhere for structured config and
// request bodies rather than hand-rolling a parser.
//
// Field shapes mirror Fixture's field-for-field, so a JSON document for
// this type and the Go literal a test would build with NewFixture look
// the same modulo syntax.
type JSONImage struct {
	Ver            int  `json:"version"`
	MLS            bool `json:"mls"`
	LineNumbers    bool `json:"line_numbers"`
	AttributeNames bool `json:"attribute_names"`
	SyntacticRules bool `json:"syntactic_rules"`
	Modules        bool `json:"modules"`
	NeverAllowCap  bool `json:"never_allow"`
	CondCap        bool `json:"conditionals_capability"`

	Types           []string             `json:"types"`
	AttributeMap    map[string][]string  `json:"attribute_map"`
	EmptyAttrHoles  int                  `json:"empty_attribute_holes"`
	Roles           []string             `json:"roles"`
	Users           []string             `json:"users"`
	Classes         []RawClass           `json:"classes"`
	Commons         []RawCommon          `json:"commons"`
	Booleans        map[string]bool      `json:"booleans"`
	AVRules         []RawAVRule          `json:"av_rules"`
	TERules         []RawTERule          `json:"te_rules"`
	RoleAllows      []RawRoleAllow       `json:"role_allows"`
	RoleTransitions []RawRoleTransition  `json:"role_transitions"`
	RangeTrans      []RawRangeTransition `json:"range_transitions"`
	UserRoles       map[string][]string  `json:"user_roles"`
	RoleTypesMap    map[string][]string  `json:"role_types"`
	UserRanges      map[string]RawRange  `json:"user_ranges"`
	InitialSIDs     []RawInitialSID      `json:"initial_sids"`
	Conditionals    []RawConditional     `json:"conditionals"`
	FSUse           []RawFSUse           `json:"fs_use"`
	Genfscon        []RawGenfscon        `json:"genfscon"`
	Portcon         []RawPortcon         `json:"portcon"`
	Netifcon        []RawNetifcon        `json:"netifcon"`
	Nodecon         []RawNodecon         `json:"nodecon"`
	Constraints     []RawConstraint      `json:"constraints"`
	ValidateTrans   []RawConstraint      `json:"validatetrans"`
}

// LoadJSONImage decodes a policy document from r. The document's shape is
// this toolkit's own (there is no "the" JSON policy format to be
// compatible with; spec.md §1 puts the real loader out of scope), so the
// only failure mode worth distinguishing is "not valid JSON for this
// shape" versus "file unreadable" — both become ErrInput since either one
// means the CLI was handed something it cannot analyze.
func LoadJSONImage(r io.Reader) (*JSONImage, error) {
	img := &JSONImage{
		AttributeMap: make(map[string][]string),
		Booleans:     make(map[string]bool),
		UserRoles:    make(map[string][]string),
		RoleTypesMap: make(map[string][]string),
		UserRanges:   make(map[string]RawRange),
	}
	dec := json.NewDecoder(r)
	if err := dec.Decode(img); err != nil {
		return nil, fmt.Errorf("%w: decoding policy document: %v", ErrInput, err)
	}
	return img, nil
}

func (f *JSONImage) Version() int     { return f.Ver }
func (f *JSONImage) MLSEnabled() bool { return f.MLS }

func (f *JSONImage) HasLineNumbers() bool    { return f.LineNumbers }
func (f *JSONImage) HasAttributeNames() bool { return f.AttributeNames }
func (f *JSONImage) HasSyntacticRules() bool { return f.SyntacticRules }
func (f *JSONImage) HasModules() bool        { return f.Modules }
func (f *JSONImage) HasNeverAllow() bool     { return f.NeverAllowCap }
func (f *JSONImage) HasConditionals() bool   { return f.CondCap }

func (f *JSONImage) RawTypes() []string                   { return f.Types }
func (f *JSONImage) RawAttributeMap() map[string][]string { return f.AttributeMap }
func (f *JSONImage) RawEmptyAttributeHoles() int          { return f.EmptyAttrHoles }
func (f *JSONImage) RawRoles() []string                   { return f.Roles }
func (f *JSONImage) RawUsers() []string                   { return f.Users }
func (f *JSONImage) RawClasses() []RawClass               { return f.Classes }
func (f *JSONImage) RawCommons() []RawCommon              { return f.Commons }
func (f *JSONImage) RawBooleans() map[string]bool         { return f.Booleans }

func (f *JSONImage) RawAVRules() []RawAVRule                   { return f.AVRules }
func (f *JSONImage) RawTERules() []RawTERule                   { return f.TERules }
func (f *JSONImage) RawRoleAllows() []RawRoleAllow             { return f.RoleAllows }
func (f *JSONImage) RawRoleTransitions() []RawRoleTransition   { return f.RoleTransitions }
func (f *JSONImage) RawRangeTransitions() []RawRangeTransition { return f.RangeTrans }

func (f *JSONImage) RawUserRoles() map[string][]string  { return f.UserRoles }
func (f *JSONImage) RawRoleTypes() map[string][]string  { return f.RoleTypesMap }
func (f *JSONImage) RawUserRanges() map[string]RawRange { return f.UserRanges }

func (f *JSONImage) RawInitialSIDs() []RawInitialSID   { return f.InitialSIDs }
func (f *JSONImage) RawConditionals() []RawConditional { return f.Conditionals }

func (f *JSONImage) RawFSUse() []RawFSUse       { return f.FSUse }
func (f *JSONImage) RawGenfscon() []RawGenfscon { return f.Genfscon }
func (f *JSONImage) RawPortcon() []RawPortcon   { return f.Portcon }
func (f *JSONImage) RawNetifcon() []RawNetifcon { return f.Netifcon }
func (f *JSONImage) RawNodecon() []RawNodecon   { return f.Nodecon }

func (f *JSONImage) RawConstraints() []RawConstraint   { return f.Constraints }
func (f *JSONImage) RawValidateTrans() []RawConstraint { return f.ValidateTrans }
