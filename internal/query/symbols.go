package query

import "github.com/sepolicy/sechecker/internal/policy"

// TypeQuery selects types (and, unless ComponentOnly, attribute
// expansions) by name (spec.md §4.4).
type TypeQuery struct {
	Name NameSelector
}

// Run returns every matching type id in ascending order, deduplicated.
func (q *TypeQuery) Run(m *policy.Model) ([]policy.ID, error) {
	set, err := resolveTypeSelector(m, q.Name)
	if err != nil {
		return nil, err
	}
	out := make([]policy.ID, 0, set.Count())
	for _, id := range set.Members() {
		out = append(out, policy.ID(id))
	}
	return out, nil
}

// AttributeQuery selects attribute symbols themselves (never their
// expansion) by name.
type AttributeQuery struct {
	Name NameSelector
}

func (q *AttributeQuery) Run(m *policy.Model) ([]policy.ID, error) {
	ns := q.Name
	ns.ComponentOnly = true
	var out []policy.ID
	set, err := resolveTypeSelector(m, ns)
	if err != nil {
		return nil, err
	}
	for _, id := range set.Members() {
		if m.IsAttributeID(policy.ID(id)) {
			out = append(out, policy.ID(id))
		}
	}
	return out, nil
}

// RoleQuery selects roles by name.
type RoleQuery struct{ Name NameSelector }

func (q *RoleQuery) Run(m *policy.Model) ([]policy.ID, error) {
	return symbolIDsMatching(m.Roles.Iter, q.Name)
}

// UserQuery selects users by name.
type UserQuery struct{ Name NameSelector }

func (q *UserQuery) Run(m *policy.Model) ([]policy.ID, error) {
	return symbolIDsMatching(m.Users.Iter, q.Name)
}

// ClassQuery selects object classes by name.
type ClassQuery struct{ Name NameSelector }

func (q *ClassQuery) Run(m *policy.Model) ([]policy.ID, error) {
	return symbolIDsMatching(m.Classes.Iter, q.Name)
}

// PermissionQuery selects permission symbols by name.
type PermissionQuery struct{ Name NameSelector }

func (q *PermissionQuery) Run(m *policy.Model) ([]policy.ID, error) {
	return symbolIDsMatching(m.Permissions.Iter, q.Name)
}

// BooleanQuery selects conditional booleans by name.
type BooleanQuery struct{ Name NameSelector }

func (q *BooleanQuery) Run(m *policy.Model) ([]policy.ID, error) {
	return symbolIDsMatching(m.Booleans.Iter, q.Name)
}
