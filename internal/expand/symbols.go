package expand

import (
	"fmt"
	"sort"

	"github.com/sepolicy/sechecker/internal/policy"
)

func internFlatSymbols(m *policy.Model, raw policy.RawImage) {
	for _, t := range raw.RawTypes() {
		m.Types.Intern(t)
	}
	for _, r := range raw.RawRoles() {
		m.Roles.Intern(r)
	}
	for _, u := range raw.RawUsers() {
		m.Users.Intern(u)
	}
}

// buildClasses interns every common's permissions first (classes may
// reference a common by name), then every class's own permission list,
// recording both in the Model (spec.md §3 "class/permission maps").
func buildClasses(m *policy.Model, raw policy.RawImage) error {
	for _, c := range raw.RawCommons() {
		id := m.Commons.Intern(c.Name)
		perms := make([]policy.ID, 0, len(c.Perms))
		for _, p := range c.Perms {
			perms = append(perms, m.Permissions.Intern(p))
		}
		m.CommonPerms[id] = perms
	}
	for _, c := range raw.RawClasses() {
		if c.CommonName != "" {
			if _, ok := m.Commons.Lookup(c.CommonName); !ok {
				return fmt.Errorf("%w: class %q references unknown common %q", policy.ErrPolicyInconsistent, c.Name, c.CommonName)
			}
		}
		id := m.Classes.Intern(c.Name)
		perms := make([]policy.ID, 0, len(c.Perms))
		for _, p := range c.Perms {
			perms = append(perms, m.Permissions.Intern(p))
		}
		m.ClassInfo[id] = &policy.Class{
			Name:       c.Name,
			ID:         id,
			OwnPerms:   perms,
			CommonName: c.CommonName,
		}
	}
	return nil
}

// buildBooleans interns every boolean name and seeds its current value
// with the image's recorded default (spec.md §3, conditionals).
func buildBooleans(m *policy.Model, raw policy.RawImage) {
	names := make([]string, 0, len(raw.RawBooleans()))
	for n := range raw.RawBooleans() {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		id := m.Booleans.Intern(n)
		m.BooleanState[id] = raw.RawBooleans()[n]
	}
}
