package query

import (
	"github.com/sepolicy/sechecker/internal/match"
	"github.com/sepolicy/sechecker/internal/policy"
)

// InitialSIDQuery selects initial-SID table entries by name (spec.md
// §4.4, §6). Ordinals are returned in ascending order; ordinal 0 (the
// reserved sentinel) is never returned.
type InitialSIDQuery struct {
	Name NameSelector
}

// Run returns the matching ordinals into m.InitialSIDs.
func (q *InitialSIDQuery) Run(m *policy.Model) ([]int, error) {
	var sel *match.Selector
	if q.Name.Pattern != "" {
		s, err := match.NewSelector(q.Name.Mode, q.Name.Pattern)
		if err != nil {
			return nil, err
		}
		sel = s
	}
	var out []int
	for i := 1; i < len(m.InitialSIDs); i++ {
		name := m.InitialSIDs[i].Name
		if sel == nil || sel.Match(name) {
			out = append(out, i)
		}
	}
	return out, nil
}
