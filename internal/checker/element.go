package checker

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
	"github.com/sepolicy/sechecker/internal/render"
)

// ElementKind names the kind of policy element a checker Entry or Proof
// anchors on (spec.md §4.7 "Result ... set of entries keyed by a policy
// element"). It mirrors internal/polsearch.ElementKind but is declared
// independently: the checker framework must remain usable without a
// poly-query in play (a module may key its entries directly off a
// query.AVQuery result, never touching polsearch).
type ElementKind int

const (
	// ElementNone is the empty element of spec.md §8 scenario 2: a
	// proof with no element of its own, only an explanatory prefix.
	ElementNone ElementKind = iota
	ElementType
	ElementAttribute
	ElementRole
	ElementUser
	ElementClass
	ElementBool
	ElementAVRule
	ElementTERule
	ElementRoleAllow
	ElementRoleTransition
	ElementRangeTransition
	ElementFCEntry
)

// Element is a lightweight, comparable handle into the policy: a kind
// plus a dense id (a symbol id for symbol kinds, a rule's own ID field
// for rule kinds, an fscontext.Entry.ID for ElementFCEntry). Keeping
// Element comparable lets Result dedup entries with a plain map key
// instead of the original C++ implementation's pointer-identity trick
// (spec.md §4.7 "Entries are inserted at most once per element";
// original_source/sechecker/result.hh keys by the pointee's address).
type Element struct {
	Kind ElementKind
	ID   int
}

// None is the element carried by a proof that names no element of its
// own (spec.md §8 scenario 2's synthetic proof).
var None = Element{Kind: ElementNone}

// Render returns e's canonical textual form via internal/render,
// looking the underlying rule/symbol up in pol (and fc, for
// ElementFCEntry). Used by Report rendering (spec.md §4.7 "each entry
// with its element rendered via §4.3").
func (e Element) Render(pol *policy.Model, fc *fscontext.List) (string, error) {
	switch e.Kind {
	case ElementNone:
		return "", nil
	case ElementType, ElementAttribute:
		return pol.Types.NameOf(policy.ID(e.ID))
	case ElementRole:
		return pol.Roles.NameOf(policy.ID(e.ID))
	case ElementUser:
		return render.UserStatement(pol, policy.ID(e.ID))
	case ElementClass:
		return pol.Classes.NameOf(policy.ID(e.ID))
	case ElementBool:
		return pol.Booleans.NameOf(policy.ID(e.ID))
	case ElementAVRule:
		r := findAVRule(pol, e.ID)
		if r == nil {
			return "", fmt.Errorf("%w: av rule id %d", policy.ErrLookup, e.ID)
		}
		return render.AVRule(pol, r, false)
	case ElementTERule:
		r := findTERule(pol, e.ID)
		if r == nil {
			return "", fmt.Errorf("%w: te rule id %d", policy.ErrLookup, e.ID)
		}
		return render.TERule(pol, r, false)
	case ElementRoleAllow:
		for _, r := range pol.RoleAllows {
			if r.ID == e.ID {
				return render.RoleAllow(pol, r)
			}
		}
		return "", fmt.Errorf("%w: role_allow id %d", policy.ErrLookup, e.ID)
	case ElementRoleTransition:
		for _, r := range pol.RoleTransitions {
			if r.ID == e.ID {
				return render.RoleTransition(pol, r)
			}
		}
		return "", fmt.Errorf("%w: role_transition id %d", policy.ErrLookup, e.ID)
	case ElementRangeTransition:
		for _, r := range pol.RangeTransitions {
			if r.ID == e.ID {
				return render.RangeTransition(pol, r)
			}
		}
		return "", fmt.Errorf("%w: range_transition id %d", policy.ErrLookup, e.ID)
	case ElementFCEntry:
		if fc == nil {
			return "", fmt.Errorf("%w: fc entry id %d with no file-context list", policy.ErrLookup, e.ID)
		}
		for _, entry := range fc.Entries {
			if entry.ID == e.ID {
				return fscontext.RenderEntry(entry), nil
			}
		}
		return "", fmt.Errorf("%w: fc entry id %d", policy.ErrLookup, e.ID)
	default:
		return "", fmt.Errorf("%w: unknown element kind %d", policy.ErrLookup, e.Kind)
	}
}

func findAVRule(pol *policy.Model, id int) *policy.AVRule {
	for _, r := range pol.AVRules {
		if r.ID == id {
			return r
		}
	}
	return nil
}

func findTERule(pol *policy.Model, id int) *policy.TERule {
	for _, r := range pol.TERules {
		if r.ID == id {
			return r
		}
	}
	return nil
}
