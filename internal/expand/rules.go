package expand

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/policy"
)

// resolveSelector interns name (a type or attribute reference) and
// returns both its symbol id and the expanded type-set bitset it
// denotes: a plain type expands to itself, an attribute to its member
// types (spec.md §4.2 "Expansion discipline").
func resolveSelector(m *policy.Model, name string, wildcard bool) (policy.ID, *bitset.Bitset) {
	if wildcard {
		all := bitset.New(m.Types.Count() + 1)
		m.Types.Iter(func(id policy.ID, _ string) {
			if !m.IsAttributeID(id) {
				all.Set(uint32(id))
			}
		})
		return policy.Undefined, all
	}
	id := m.Types.Intern(name)
	if m.IsAttributeID(id) {
		members := m.AttributeMembers(id)
		if members == nil {
			members = bitset.New(1)
		}
		return id, members.Clone()
	}
	set := bitset.New(m.Types.Count() + 1)
	set.Set(uint32(id))
	return id, set
}

func applyComplement(m *policy.Model, set *bitset.Bitset, complement bool) *bitset.Bitset {
	if !complement {
		return set
	}
	all := bitset.New(m.Types.Count() + 1)
	m.Types.Iter(func(id policy.ID, _ string) {
		if !m.IsAttributeID(id) {
			all.Set(uint32(id))
		}
	})
	out := bitset.New(m.Types.Count() + 1)
	for _, t := range all.Members() {
		if !set.Test(t) {
			out.Set(t)
		}
	}
	return out
}

func lookupCond(m *policy.Model, idx int, branch bool) *policy.CondRef {
	if idx <= 0 {
		return nil
	}
	i := idx - 1
	if i < 0 || i >= len(m.Conditionals) {
		return nil
	}
	return &policy.CondRef{Node: m.Conditionals[i], Branch: branch}
}

func buildAVRules(m *policy.Model, raw policy.RawImage) error {
	for i, r := range raw.RawAVRules() {
		sourceSym, sourceSet := resolveSelector(m, r.Source, r.Wildcard)
		var targetSym policy.ID
		var targetSet *bitset.Bitset
		if r.Self {
			targetSym = sourceSym
			targetSet = sourceSet
		} else {
			targetSym, targetSet = resolveSelector(m, r.Target, r.Wildcard)
		}
		targetSet = applyComplement(m, targetSet, r.Complement)

		classID, ok := m.Classes.Lookup(r.Class)
		if !ok {
			return fmt.Errorf("%w: av rule references unknown class %q", policy.ErrPolicyInconsistent, r.Class)
		}
		perms := bitset.New(m.Permissions.Count() + 1)
		order := make([]policy.ID, 0, len(r.Perms))
		for _, p := range r.Perms {
			pid, ok := m.Permissions.Lookup(p)
			if !ok {
				return fmt.Errorf("%w: av rule references unknown permission %q", policy.ErrPolicyInconsistent, p)
			}
			perms.Set(uint32(pid))
			order = append(order, pid)
		}

		rule := &policy.AVRule{
			ID:         i,
			Kind:       r.Kind,
			Source:     sourceSet,
			Target:     targetSet,
			SourceSym:  sourceSym,
			TargetSym:  targetSym,
			Self:       r.Self,
			Complement: r.Complement,
			Wildcard:   r.Wildcard,
			Class:      classID,
			Perms:      perms,
			PermOrder:  order,
			Cond:       lookupCond(m, r.CondIndex, r.CondBranch),
			Enabled:    true,
			Line:       r.Line,
		}
		if rule.Cond != nil {
			rule.Enabled = rule.Cond.Branch == rule.Cond.Node.CurrentState
			if rule.Cond.Branch {
				rule.Cond.Node.TrueAVRules = append(rule.Cond.Node.TrueAVRules, rule)
			} else {
				rule.Cond.Node.FalseAVRules = append(rule.Cond.Node.FalseAVRules, rule)
			}
		}
		m.AVRules = append(m.AVRules, rule)
	}
	return nil
}

func buildTERules(m *policy.Model, raw policy.RawImage) error {
	for i, r := range raw.RawTERules() {
		sourceSym, sourceSet := resolveSelector(m, r.Source, r.Wildcard)
		var targetSym policy.ID
		var targetSet *bitset.Bitset
		if r.Self {
			targetSym = sourceSym
			targetSet = sourceSet
		} else {
			targetSym, targetSet = resolveSelector(m, r.Target, r.Wildcard)
		}
		targetSet = applyComplement(m, targetSet, r.Complement)

		classID, ok := m.Classes.Lookup(r.Class)
		if !ok {
			return fmt.Errorf("%w: te rule references unknown class %q", policy.ErrPolicyInconsistent, r.Class)
		}
		defaultID := m.Types.Intern(r.Default)

		rule := &policy.TERule{
			ID:         i,
			Kind:       r.Kind,
			Source:     sourceSet,
			Target:     targetSet,
			SourceSym:  sourceSym,
			TargetSym:  targetSym,
			Self:       r.Self,
			Complement: r.Complement,
			Wildcard:   r.Wildcard,
			Class:      classID,
			Default:    defaultID,
			Cond:       lookupCond(m, r.CondIndex, r.CondBranch),
			Enabled:    true,
			Line:       r.Line,
		}
		if rule.Cond != nil {
			rule.Enabled = rule.Cond.Branch == rule.Cond.Node.CurrentState
			if rule.Cond.Branch {
				rule.Cond.Node.TrueTERules = append(rule.Cond.Node.TrueTERules, rule)
			} else {
				rule.Cond.Node.FalseTERules = append(rule.Cond.Node.FalseTERules, rule)
			}
		}
		m.TERules = append(m.TERules, rule)
	}
	return nil
}

func buildRoleAllows(m *policy.Model, raw policy.RawImage) {
	for i, r := range raw.RawRoleAllows() {
		m.RoleAllows = append(m.RoleAllows, &policy.RoleAllow{
			ID:     i,
			Source: m.Roles.Intern(r.Source),
			Target: m.Roles.Intern(r.Target),
		})
	}
}

func buildRoleTransitions(m *policy.Model, raw policy.RawImage) error {
	for i, r := range raw.RawRoleTransitions() {
		classID, ok := m.Classes.Lookup(r.Class)
		if !ok {
			return fmt.Errorf("%w: role_transition references unknown class %q", policy.ErrPolicyInconsistent, r.Class)
		}
		m.RoleTransitions = append(m.RoleTransitions, &policy.RoleTransition{
			ID:      i,
			Source:  m.Roles.Intern(r.Source),
			Target:  m.Types.Intern(r.Target),
			Class:   classID,
			NewRole: m.Roles.Intern(r.NewRole),
		})
	}
	return nil
}

func buildRangeTransitions(m *policy.Model, raw policy.RawImage) error {
	for i, r := range raw.RawRangeTransitions() {
		classID, ok := m.Classes.Lookup(r.Class)
		if !ok {
			return fmt.Errorf("%w: range_transition references unknown class %q", policy.ErrPolicyInconsistent, r.Class)
		}
		m.RangeTransitions = append(m.RangeTransitions, &policy.RangeTransition{
			ID:     i,
			Source: m.Types.Intern(r.Source),
			Target: m.Types.Intern(r.Target),
			Class:  classID,
			Range:  resolveRange(m, r.Range),
		})
	}
	return nil
}
