package polsearch

import "fmt"

// ElementKind names the kind of policy element a PolyQuery (or a Proof)
// ranges over (spec.md §4.5).
type ElementKind int

const (
	ElementType ElementKind = iota
	ElementAttribute
	ElementRole
	ElementUser
	ElementClass
	ElementCommon
	ElementCategory
	ElementLevel
	ElementRange
	ElementBool
	ElementAVRule
	ElementTERule
	ElementRoleAllow
	ElementRoleTransition
	ElementRangeTransition
	ElementFCEntry
)

func (k ElementKind) String() string {
	switch k {
	case ElementType:
		return "type"
	case ElementAttribute:
		return "attribute"
	case ElementRole:
		return "role"
	case ElementUser:
		return "user"
	case ElementClass:
		return "class"
	case ElementCommon:
		return "common"
	case ElementCategory:
		return "category"
	case ElementLevel:
		return "level"
	case ElementRange:
		return "range"
	case ElementBool:
		return "bool"
	case ElementAVRule:
		return "avrule"
	case ElementTERule:
		return "terule"
	case ElementRoleAllow:
		return "role_allow"
	case ElementRoleTransition:
		return "role_transition"
	case ElementRangeTransition:
		return "range_transition"
	case ElementFCEntry:
		return "fcentry"
	default:
		return "unknown"
	}
}

// Mode is the match-all/match-any join spec.md §4.5 item 3 describes.
type Mode int

const (
	MatchAll Mode = iota
	MatchAny
)

// Proof names why an element matched: the kind and handle of the
// sub-element that satisfied a test (a rule for a rule-based test, a
// symbol for an attribute test, an fc entry for an fc-entry test), and
// the kind of test that produced it (spec.md §4.5 item 4).
type Proof struct {
	Kind     ElementKind
	Handle   int
	TestKind TestKind
}

func (p Proof) key() string {
	return fmt.Sprintf("%d:%d", p.Kind, p.Handle)
}

// Entry is one matching element plus its accumulated, deduplicated
// proofs (spec.md §4.5 item 4, "Proof accumulation is deduplicated by
// (element-kind, handle)").
type Entry struct {
	Kind   ElementKind
	Handle int
	Proofs []Proof

	seen map[string]bool
}

func newEntry(kind ElementKind, handle int) *Entry {
	return &Entry{Kind: kind, Handle: handle, seen: make(map[string]bool)}
}

func (e *Entry) addProof(p Proof) {
	k := p.key()
	if e.seen[k] {
		return
	}
	e.seen[k] = true
	e.Proofs = append(e.Proofs, p)
}

// Result is the ordered set of matching Entries a PolyQuery produces.
type Result struct {
	Entries []*Entry
}
