package expand

import "github.com/sepolicy/sechecker/internal/policy"

// Load builds a complete *policy.Model from raw, running every
// expansion pass in the order spec.md §2 describes: symbol interning,
// attribute expansion, conditional evaluation, rule resolution, context
// resolution, and back-index construction. This is the single entry
// point the rest of the toolkit uses to turn a loaded binary policy
// image into a queryable Model.
func Load(raw policy.RawImage) (*policy.Model, error) {
	m := policy.NewModel(raw.MLSEnabled())
	m.Capabilities = policy.Capabilities{
		LineNumbers:    raw.HasLineNumbers(),
		AttributeNames: raw.HasAttributeNames(),
		SyntacticRules: raw.HasSyntacticRules(),
		Modules:        raw.HasModules(),
		NeverAllow:     raw.HasNeverAllow(),
		Conditionals:   raw.HasConditionals(),
	}

	internFlatSymbols(m, raw)
	if err := buildClasses(m, raw); err != nil {
		return nil, err
	}
	buildBooleans(m, raw)

	lastSynth, err := buildAttributesFromMap(m, raw)
	if err != nil {
		return nil, err
	}
	fillAttributeHoles(m, raw, lastSynth)

	if err := buildConditionals(m, raw); err != nil {
		return nil, err
	}
	if err := buildAVRules(m, raw); err != nil {
		return nil, err
	}
	if err := buildTERules(m, raw); err != nil {
		return nil, err
	}
	buildRoleAllows(m, raw)
	if err := buildRoleTransitions(m, raw); err != nil {
		return nil, err
	}
	if err := buildRangeTransitions(m, raw); err != nil {
		return nil, err
	}
	buildUserRoleAndRangeTables(m, raw)
	addInitialSIDNames(m, raw)
	buildContextOccurrences(m, raw)
	buildConstraints(m, raw)

	buildBackIndex(m)

	return m, nil
}

// buildConstraints interns the raw constrain/mlsconstrain/validatetrans
// statements the loader supplied. Unknown class/permission names are
// dropped rather than failing the build: constraints are analysis input
// (spec.md §4.8 unused_attribs), not rule data the back-index or any
// invariant in spec.md §3 depends on.
func buildConstraints(m *policy.Model, raw policy.RawImage) {
	intern := func(rc policy.RawConstraint) *policy.Constraint {
		c := &policy.Constraint{Operands: rc.Operands}
		for _, cl := range rc.Classes {
			if id, ok := m.Classes.Lookup(cl); ok {
				c.Classes = append(c.Classes, id)
			}
		}
		for _, p := range rc.Permissions {
			if id, ok := m.Permissions.Lookup(p); ok {
				c.Permissions = append(c.Permissions, id)
			}
		}
		return c
	}
	for _, rc := range raw.RawConstraints() {
		m.Constraints = append(m.Constraints, intern(rc))
	}
	for _, rc := range raw.RawValidateTrans() {
		c := intern(rc)
		c.MLS = m.MLS
		m.ValidateTrans = append(m.ValidateTrans, c)
	}
}
