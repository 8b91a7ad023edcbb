package render

import (
	"fmt"
	"strings"

	"github.com/sepolicy/sechecker/internal/policy"
)

// avKeyword maps an AVRule's kind bit to its canonical keyword.
func avKeyword(k policy.RuleKind) string {
	switch k {
	case policy.KindAllow:
		return "allow"
	case policy.KindAuditAllow:
		return "auditallow"
	case policy.KindDontAudit:
		return "dontaudit"
	case policy.KindAuditDeny:
		return "dontaudit" // auditdeny renders under the same keyword the back-index merges it with
	case policy.KindNeverAllow:
		return "neverallow"
	default:
		return "allow"
	}
}

// teKeyword maps a TERule's kind bit to its canonical keyword.
func teKeyword(k policy.RuleKind) string {
	switch k {
	case policy.KindTypeTransition:
		return "type_transition"
	case policy.KindTypeChange:
		return "type_change"
	case policy.KindTypeMember:
		return "type_member"
	default:
		return "type_transition"
	}
}

// renderSide renders one side (source or target) of a rule: self, or
// the named symbol with optional '~'/'*' decoration (spec.md §4.3).
func renderSide(m *policy.Model, sym policy.ID, self, complement, wildcard bool) (string, error) {
	if self {
		return "self", nil
	}
	if wildcard {
		return "*", nil
	}
	name, err := m.Types.NameOf(sym)
	if err != nil {
		return "", err
	}
	if complement {
		return "~" + name, nil
	}
	return name, nil
}

// permList renders a permission bitset in insertion order, braced when
// it has more than one member (spec.md §4.3 "Permission rendering
// preserves insertion order within the rule").
func permList(m *policy.Model, order []policy.ID) (string, error) {
	names := make([]string, 0, len(order))
	for _, p := range order {
		name, err := m.Permissions.NameOf(p)
		if err != nil {
			return "", err
		}
		names = append(names, name)
	}
	if len(names) == 1 {
		return names[0], nil
	}
	return "{ " + strings.Join(names, " ") + " }", nil
}

// AVRule renders av in canonical form: keyword source target : class
// perms; with an optional line-number prefix.
func AVRule(m *policy.Model, r *policy.AVRule, withLineNumbers bool) (string, error) {
	source, err := renderSide(m, r.SourceSym, false, false, false)
	if err != nil {
		return "", err
	}
	target, err := renderSide(m, r.TargetSym, r.Self, r.Complement, r.Wildcard)
	if err != nil {
		return "", err
	}
	class, err := m.Classes.NameOf(r.Class)
	if err != nil {
		return "", err
	}
	perms, err := permList(m, r.PermOrder)
	if err != nil {
		return "", err
	}
	prefix := LineNumberPrefix(r.Line, withLineNumbers)
	return fmt.Sprintf("%s%s %s %s : %s %s;", prefix, avKeyword(r.Kind), source, target, class, perms), nil
}

// TERule renders r in canonical form: keyword source target : class
// default; with an optional line-number prefix.
func TERule(m *policy.Model, r *policy.TERule, withLineNumbers bool) (string, error) {
	source, err := renderSide(m, r.SourceSym, false, false, false)
	if err != nil {
		return "", err
	}
	target, err := renderSide(m, r.TargetSym, r.Self, r.Complement, r.Wildcard)
	if err != nil {
		return "", err
	}
	class, err := m.Classes.NameOf(r.Class)
	if err != nil {
		return "", err
	}
	def, err := m.Types.NameOf(r.Default)
	if err != nil {
		return "", err
	}
	prefix := LineNumberPrefix(r.Line, withLineNumbers)
	return fmt.Sprintf("%s%s %s %s : %s %s;", prefix, teKeyword(r.Kind), source, target, class, def), nil
}

// RoleAllow renders a role_allow statement: "allow source target;"
// (spec.md §3 "Role-allow ... follow the same pattern").
func RoleAllow(m *policy.Model, r *policy.RoleAllow) (string, error) {
	source, err := m.Roles.NameOf(r.Source)
	if err != nil {
		return "", err
	}
	target, err := m.Roles.NameOf(r.Target)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("allow %s %s;", source, target), nil
}

// RoleTransition renders a role_transition statement:
// "role_transition source target : class new_role;".
func RoleTransition(m *policy.Model, r *policy.RoleTransition) (string, error) {
	source, err := m.Roles.NameOf(r.Source)
	if err != nil {
		return "", err
	}
	target, err := m.Types.NameOf(r.Target)
	if err != nil {
		return "", err
	}
	class, err := m.Classes.NameOf(r.Class)
	if err != nil {
		return "", err
	}
	newRole, err := m.Roles.NameOf(r.NewRole)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("role_transition %s %s : %s %s;", source, target, class, newRole), nil
}

// RangeTransition renders a range_transition statement:
// "range_transition source target : class range;".
func RangeTransition(m *policy.Model, r *policy.RangeTransition) (string, error) {
	source, err := m.Types.NameOf(r.Source)
	if err != nil {
		return "", err
	}
	target, err := m.Types.NameOf(r.Target)
	if err != nil {
		return "", err
	}
	class, err := m.Classes.NameOf(r.Class)
	if err != nil {
		return "", err
	}
	rng, err := MLSRange(m, r.Range)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("range_transition %s %s : %s %s;", source, target, class, rng), nil
}

// UserStatement renders a `user` declaration: "user name roles r1;" for a
// single role, "user name roles { r1 r2 };" for several and "roles {}" for
// none. In an MLS policy with a recorded user range, "level L range R"
// follows, where L and R are both the rendered user range; the model keeps
// no separate default level (spec.md §4.3 "... and user statements").
func UserStatement(m *policy.Model, userID policy.ID) (string, error) {
	name, err := m.Users.NameOf(userID)
	if err != nil {
		return "", err
	}
	roleSet := m.UserRoles[userID]
	var roleNames []string
	if roleSet != nil {
		for _, id := range roleSet.Members() {
			rn, err := m.Roles.NameOf(policy.ID(id))
			if err != nil {
				return "", err
			}
			roleNames = append(roleNames, rn)
		}
	}
	roles := "{}"
	if len(roleNames) == 1 {
		roles = roleNames[0]
	} else if len(roleNames) > 1 {
		roles = "{ " + strings.Join(roleNames, " ") + " }"
	}
	stmt := fmt.Sprintf("user %s roles %s;", name, roles)
	if !m.MLS {
		return stmt, nil
	}
	if rng, ok := m.UserRange[userID]; ok {
		rngStr, err := MLSRange(m, rng)
		if err != nil {
			return "", err
		}
		stmt = fmt.Sprintf("user %s roles %s level %s range %s;", name, roles, rngStr, rngStr)
	}
	return stmt, nil
}
