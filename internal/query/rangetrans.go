package query

import (
	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/policy"
)

// RangeTransitionQuery selects range_transition rules by source/target
// type and MLS range relation (spec.md §4.4).
type RangeTransitionQuery struct {
	Source  *NameSelector
	Target  *NameSelector
	Any     bool
	Classes []string
	Range   *RangeFilter
}

func (q *RangeTransitionQuery) Run(m *policy.Model) ([]*policy.RangeTransition, error) {
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

	var out []*policy.RangeTransition
	for _, r := range m.RangeTransitions {
		if len(classSet) > 0 {
			name, err := m.Classes.NameOf(r.Class)
			if err != nil || !classSet[name] {
				continue
			}
		}
		if q.Range != nil && !q.Range.Matches(r.Range) {
			continue
		}
		srcOne := bitset.New(int(r.Source) + 1)
		srcOne.Set(uint32(r.Source))
		tgtOne := bitset.New(int(r.Target) + 1)
		tgtOne.Set(uint32(r.Target))
		if !matchesPosition(sourceSet, targetSet, q.Any, srcOne, tgtOne) {
			continue
		}
		out = append(out, r)
	}
	return out, nil
}
