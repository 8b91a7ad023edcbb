package checks

import (
	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
	"github.com/sepolicy/sechecker/internal/polsearch"
)

func init() {
	checker.Register("roles_wo_types", newRolesWoTypes)
	checker.Register("roles_wo_allow", newRolesWoAllow)
	checker.Register("roles_wo_users", newRolesWoUsers)
	checker.Register("users_wo_roles", newUsersWoRoles)
}

// --- roles_wo_types ---

type rolesWoTypes struct{ checker.Base }

func newRolesWoTypes() checker.Module {
	return &rolesWoTypes{checker.Base{
		ModuleName: "roles_wo_types",
		Sev:        checker.SevLow,
		ModSummary: "roles with no associated types",
		ModDesc:    "Finds every role that is not associated with any type (spec.md §4.8).",
	}}
}

func (c *rolesWoTypes) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	pol.Roles.Iter(func(id policy.ID, _ string) {
		types := pol.RoleTypes[id]
		if types == nil || types.Empty() {
			result.Add(checker.Element{Kind: checker.ElementRole, ID: int(id)},
				checker.Proof{Element: checker.None, Prefix: "Role is not associated with any type."})
		}
	})
	return result, nil
}

// --- roles_wo_allow ---

type rolesWoAllow struct{ checker.Base }

func newRolesWoAllow() checker.Module {
	return &rolesWoAllow{checker.Base{
		ModuleName: "roles_wo_allow",
		Sev:        checker.SevLow,
		ModSummary: "roles never appearing in a role_allow rule",
		ModDesc:    "Set-difference of every role against those matched by a role_allow poly-query with source-or-target = X, then object_r is removed (spec.md §4.8).",
	}}
}

func (c *rolesWoAllow) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	q := polsearch.PolyQuery{
		Kind: polsearch.ElementRole,
		Mode: polsearch.MatchAll,
		Tests: []polsearch.Test{{
			Kind:     polsearch.TestRoleAllow,
			Criteria: []polsearch.Criterion{{Operator: polsearch.OpSourceOrTarget, Param: polsearch.Param{Names: []string{"X"}}}},
		}},
	}
	matched, err := q.Run(pol)
	if err != nil {
		return nil, err
	}
	inAllow := make(map[int]bool, len(matched.Entries))
	for _, e := range matched.Entries {
		inAllow[e.Handle] = true
	}
	objectR, _ := pol.Roles.Lookup("object_r")

	result := checker.NewResult()
	pol.Roles.Iter(func(id policy.ID, _ string) {
		if id == objectR || inAllow[int(id)] {
			return
		}
		result.Add(checker.Element{Kind: checker.ElementRole, ID: int(id)},
			checker.Proof{Element: checker.None, Prefix: "Role does not appear in any role_allow rule."})
	})
	return result, nil
}

// --- roles_wo_users ---

type rolesWoUsers struct{ checker.Base }

func newRolesWoUsers() checker.Module {
	return &rolesWoUsers{checker.Base{
		ModuleName: "roles_wo_users",
		Sev:        checker.SevLow,
		ModSummary: "roles not assigned to any user",
		ModDesc:    "Per role, a user poly-query with roles include {role}; an empty result means no user holds the role (spec.md §4.8).",
	}}
}

func (c *rolesWoUsers) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	var runErr error
	pol.Roles.Iter(func(id policy.ID, name string) {
		if runErr != nil {
			return
		}
		q := polsearch.PolyQuery{
			Kind: polsearch.ElementUser,
			Mode: polsearch.MatchAll,
			Tests: []polsearch.Test{{
				Kind:     polsearch.TestRoles,
				Criteria: []polsearch.Criterion{{Operator: polsearch.OpInclude, Param: polsearch.Param{Names: []string{name}}}},
			}},
		}
		r, err := q.Run(pol)
		if err != nil {
			runErr = err
			return
		}
		if len(r.Entries) == 0 {
			result.Add(checker.Element{Kind: checker.ElementRole, ID: int(id)},
				checker.Proof{Element: checker.None, Prefix: "Role is not assigned to any user."})
		}
	})
	return result, runErr
}

// --- users_wo_roles ---

type usersWoRoles struct{ checker.Base }

func newUsersWoRoles() checker.Module {
	return &usersWoRoles{checker.Base{
		ModuleName: "users_wo_roles",
		Sev:        checker.SevLow,
		ModSummary: "users with an empty role set",
		ModDesc:    "Finds every user declared with no roles (spec.md §4.8).",
	}}
}

func (c *usersWoRoles) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	pol.Users.Iter(func(id policy.ID, _ string) {
		roles := pol.UserRoles[id]
		if roles == nil || roles.Empty() {
			result.Add(checker.Element{Kind: checker.ElementUser, ID: int(id)},
				checker.Proof{Element: checker.None, Prefix: "User has no roles."})
		}
	})
	return result, nil
}
