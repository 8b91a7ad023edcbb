// Package query implements the composable query builders of spec.md
// §4.4 (C7): one builder type per queryable entity kind, each with a
// get_by_query-equivalent Run method returning an ordered, deduplicated
// match set.
package query

import (
	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/match"
	"github.com/sepolicy/sechecker/internal/policy"
)

// Relation names an MLS range comparison (spec.md §4.4 "MLS range +
// relation").
type Relation int

const (
	RelExact Relation = iota
	RelSub
	RelSuper
	RelOverlap
)

// RangeFilter restricts a query by MLS range under a Relation.
type RangeFilter struct {
	Range    policy.Range
	Relation Relation
}

// Matches reports whether candidate satisfies f's relation against
// f.Range.
func (f *RangeFilter) Matches(candidate policy.Range) bool {
	switch f.Relation {
	case RelExact:
		return f.Range.Low.Equal(candidate.Low) && f.Range.High.Equal(candidate.High)
	case RelSub:
		return f.Range.Contains(candidate)
	case RelSuper:
		return candidate.Contains(f.Range)
	case RelOverlap:
		return f.Range.Overlaps(candidate)
	default:
		return false
	}
}

// NameSelector is the shared "name / regex flag" knob spec.md §4.4
// describes, used by every query kind that selects on a symbol's
// primary name.
type NameSelector struct {
	Pattern string
	Mode    match.Mode // defaults to match.Exact (the zero value)

	// ComponentOnly disables the attribute-expansion discipline: a
	// selector that names an attribute returns the attribute's own id
	// instead of its member types (spec.md §4.4 "Expansion discipline").
	ComponentOnly bool
}

// resolveTypeSelector matches ns against every name in the Types table
// (which holds both primitive types and attributes, spec.md §3), and
// applies the attribute-expansion discipline unless ComponentOnly is
// set. A nil/empty Pattern matches everything.
func resolveTypeSelector(m *policy.Model, ns NameSelector) (*bitset.Bitset, error) {
	out := bitset.New(m.Types.Count() + 1)
	if ns.Pattern == "" {
		m.Types.Iter(func(id policy.ID, _ string) {
			if !m.IsAttributeID(id) {
				out.Set(uint32(id))
			} else if ns.ComponentOnly {
				out.Set(uint32(id))
			} else if members := m.AttributeMembers(id); members != nil {
				for _, t := range members.Members() {
					out.Set(t)
				}
			}
		})
		return out, nil
	}
	sel, err := match.NewSelector(ns.Mode, ns.Pattern)
	if err != nil {
		return nil, err
	}
	m.Types.Iter(func(id policy.ID, name string) {
		if !sel.Match(name) {
			return
		}
		if m.IsAttributeID(id) {
			if ns.ComponentOnly {
				out.Set(uint32(id))
			} else if members := m.AttributeMembers(id); members != nil {
				for _, t := range members.Members() {
					out.Set(t)
				}
			}
			return
		}
		out.Set(uint32(id))
	})
	return out, nil
}

// symbolIDsMatching returns, in ascending id order, every id for which
// iter calls back with a name satisfying ns. Used for
// role/user/class/permission/boolean queries, none of which expand
// (only types/attributes do).
func symbolIDsMatching(iter func(func(policy.ID, string)), ns NameSelector) ([]policy.ID, error) {
	var sel *match.Selector
	if ns.Pattern != "" {
		var err error
		sel, err = match.NewSelector(ns.Mode, ns.Pattern)
		if err != nil {
			return nil, err
		}
	}
	var out []policy.ID
	iter(func(id policy.ID, name string) {
		if sel == nil || sel.Match(name) {
			out = append(out, id)
		}
	})
	return out, nil
}
