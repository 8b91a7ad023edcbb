package query

import (
	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/policy"
)

func overlaps(a, b *bitset.Bitset) bool {
	return !a.Intersect(b).Empty()
}

// AVQuery selects access-vector rules (spec.md §4.4).
type AVQuery struct {
	Kinds   policy.RuleKind // bitmask; zero means "any kind"
	Source  *NameSelector
	Target  *NameSelector
	Any     bool // OR source/target matches instead of AND
	Classes []string
	Perms   []string // rule must carry all of these (set containment)
}

// Run returns matching AV rules in insertion order (spec.md §4.4
// "Ordering ... for rule queries the order is the rule's insertion
// order").
func (q *AVQuery) Run(m *policy.Model) ([]*policy.AVRule, error) {
	var sourceSet, targetSet *bitset.Bitset
	if q.Source != nil {
		set, err := resolveTypeSelector(m, *q.Source)
		if err != nil {
			return nil, err
		}
		sourceSet = set
	}
	if q.Target != nil {
		set, err := resolveTypeSelector(m, *q.Target)
		if err != nil {
			return nil, err
		}
		targetSet = set
	}
	classSet := make(map[string]bool, len(q.Classes))
	for _, c := range q.Classes {
		classSet[c] = true
	}
	permIDs := make([]policy.ID, 0, len(q.Perms))
	for _, p := range q.Perms {
		if id, ok := m.Permissions.Lookup(p); ok {
			permIDs = append(permIDs, id)
		} else {
			// An unknown permission name can never be satisfied.
			return nil, nil
		}
	}

	var out []*policy.AVRule
	for _, r := range m.AVRules {
		if q.Kinds != 0 && r.Kind&q.Kinds == 0 {
			continue
		}
		if len(classSet) > 0 {
			name, err := m.Classes.NameOf(r.Class)
			if err != nil || !classSet[name] {
				continue
			}
		}
		if len(permIDs) > 0 {
			ok := true
			for _, p := range permIDs {
				if !r.Perms.Test(uint32(p)) {
					ok = false
					break
				}
			}
			if !ok {
				continue
			}
		}
		if !matchesPosition(sourceSet, targetSet, q.Any, r.Source, r.Target) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}

// matchesPosition implements the "any flag" semantics of spec.md §4.4:
// with Any, a rule matches if either supplied selector overlaps its
// position; without it, every supplied selector must overlap its own
// position.
func matchesPosition(sourceSet, targetSet *bitset.Bitset, any bool, ruleSource, ruleTarget *bitset.Bitset) bool {
	if sourceSet == nil && targetSet == nil {
		return true
	}
	if any {
		if sourceSet != nil && overlaps(sourceSet, ruleSource) {
			return true
		}
		if targetSet != nil && overlaps(targetSet, ruleTarget) {
			return true
		}
		return false
	}
	if sourceSet != nil && !overlaps(sourceSet, ruleSource) {
		return false
	}
	if targetSet != nil && !overlaps(targetSet, ruleTarget) {
		return false
	}
	return true
}

// TEQuery selects type-enforcement rules (spec.md §4.4: "TE-rule query
// mirrors AV-rule but switches permission selection for a default-type
// selector and rule-kind ∈ {type_transition, type_change, type_member}").
type TEQuery struct {
	Kinds   policy.RuleKind
	Source  *NameSelector
	Target  *NameSelector
	Any     bool
	Classes []string
	Default *NameSelector
}

func (q *TEQuery) Run(m *policy.Model) ([]*policy.TERule, error) {
	var sourceSet, targetSet, defaultSet *bitset.Bitset
	if q.Source != nil {
		set, err := resolveTypeSelector(m, *q.Source)
		if err != nil {
			return nil, err
		}
		sourceSet = set
	}
	if q.Target != nil {
		set, err := resolveTypeSelector(m, *q.Target)
		if err != nil {
			return nil, err
		}
		targetSet = set
	}
	if q.Default != nil {
		set, err := resolveTypeSelector(m, *q.Default)
		if err != nil {
			return nil, err
		}
		defaultSet = set
	}
	classSet := make(map[string]bool, len(q.Classes))
	for _, c := range q.Classes {
		classSet[c] = true
	}

	var out []*policy.TERule
	for _, r := range m.TERules {
		if q.Kinds != 0 && r.Kind&q.Kinds == 0 {
			continue
		}
		if len(classSet) > 0 {
			name, err := m.Classes.NameOf(r.Class)
			if err != nil || !classSet[name] {
				continue
			}
		}
		if defaultSet != nil && !defaultSet.Test(uint32(r.Default)) {
			continue
		}
		if !matchesPosition(sourceSet, targetSet, q.Any, r.Source, r.Target) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
