package polsearch

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/policy"
)

// PolyQuery is the top-level poly-query object of spec.md §4.5: one
// element kind, a match-all/any join, and the ordered tests to run
// against every candidate of that kind.
//
// Only the symbol-table-backed element kinds (type, attribute, role,
// user, class, common, category, bool) are iterable candidates here —
// the C11 module table never enumerates over rules or fc-entries
// directly, only uses them as proof material for a type/role/user
// candidate (e.g. roles_wo_allow iterates roles, proving each by a
// matching role_allow rule).
type PolyQuery struct {
	Kind      ElementKind
	Mode      Mode
	Tests     []Test
	FCEntries []FCCandidate // only consulted by TestFCEntry tests
}

// Run evaluates q against m, returning one Entry per matching element
// (spec.md §4.5 items 1-4).
func (q *PolyQuery) Run(m *policy.Model) (*Result, error) {
	candidates, err := q.candidates(m)
	if err != nil {
		return nil, err
	}

	result := &Result{}
	for _, cand := range candidates {
		entry := newEntry(q.Kind, cand.id)
		matchedCount := 0
		for _, t := range q.Tests {
			ec := evalContext{
				model:         m,
				candidateKind: q.Kind,
				candidateID:   cand.id,
				candidateName: cand.name,
				fcEntries:     q.FCEntries,
			}
			ok, proofs, err := t.run(ec)
			if err != nil {
				return nil, err
			}
			if ok {
				matchedCount++
				for _, p := range proofs {
					entry.addProof(p)
				}
				if q.Mode == MatchAny {
					break
				}
			} else if q.Mode == MatchAll {
				break
			}
		}
		matched := false
		switch q.Mode {
		case MatchAll:
			matched = matchedCount == len(q.Tests)
		case MatchAny:
			matched = matchedCount > 0
		}
		if len(q.Tests) == 0 {
			matched = true
		}
		if matched {
			result.Entries = append(result.Entries, entry)
		}
	}
	return result, nil
}

type candidate struct {
	id   int
	name string
}

func (q *PolyQuery) candidates(m *policy.Model) ([]candidate, error) {
	var out []candidate
	switch q.Kind {
	case ElementType:
		m.Types.Iter(func(id policy.ID, name string) {
			if !m.IsAttributeID(id) {
				out = append(out, candidate{int(id), name})
			}
		})
	case ElementAttribute:
		m.Types.Iter(func(id policy.ID, name string) {
			if m.IsAttributeID(id) {
				out = append(out, candidate{int(id), name})
			}
		})
	case ElementRole:
		m.Roles.Iter(func(id policy.ID, name string) { out = append(out, candidate{int(id), name}) })
	case ElementUser:
		m.Users.Iter(func(id policy.ID, name string) { out = append(out, candidate{int(id), name}) })
	case ElementClass:
		m.Classes.Iter(func(id policy.ID, name string) { out = append(out, candidate{int(id), name}) })
	case ElementCommon:
		m.Commons.Iter(func(id policy.ID, name string) { out = append(out, candidate{int(id), name}) })
	case ElementCategory:
		m.Categories.Iter(func(id policy.ID, name string) { out = append(out, candidate{int(id), name}) })
	case ElementBool:
		m.Booleans.Iter(func(id policy.ID, name string) { out = append(out, candidate{int(id), name}) })
	default:
		return nil, fmt.Errorf("%w: poly-query element kind %s is not an iterable candidate", policy.ErrInput, q.Kind)
	}
	return out, nil
}
