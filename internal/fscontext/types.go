package fscontext

import "github.com/sepolicy/sechecker/internal/policy"

// ObjectType is the file_contexts type-spec letter (spec.md §6): a
// disjoint classification, never a combinable mask, despite the source
// format calling it "object_type_bits".
type ObjectType int

const (
	ObjAny ObjectType = iota
	ObjRegular
	ObjDirectory
	ObjCharDevice
	ObjBlockDevice
	ObjSymlink
	ObjSocket
	ObjNamedPipe
)

// objectTypeSpecs maps each file_contexts type-spec letter to its
// ObjectType, per spec.md §6's enumeration.
var objectTypeSpecs = map[string]ObjectType{
	"--": ObjRegular,
	"-d": ObjDirectory,
	"-c": ObjCharDevice,
	"-b": ObjBlockDevice,
	"-l": ObjSymlink,
	"-s": ObjSocket,
	"-p": ObjNamedPipe,
}

// Entry is one file_contexts line: a path regex, an object-type
// classification, and a context (or "no label").
type Entry struct {
	ID      int
	Pattern string // the regex exactly as written
	ObjType ObjectType

	HasContext bool // false for the literal <<none>>
	User       string
	Role       string
	Type       string
	HasRange   bool
	MLSRange   policy.Range // meaningful only when a Model backs the List
	RangeText  string       // the range exactly as written, always kept
}

// Handle implements polsearch.FCCandidate.
func (e *Entry) Handle() int { return e.ID }

// ContextComponent implements polsearch.FCCandidate.
func (e *Entry) ContextComponent(which string) (string, bool) {
	if !e.HasContext {
		return "", false
	}
	switch which {
	case "user":
		return e.User, true
	case "role":
		return e.Role, true
	case "type":
		return e.Type, true
	default:
		return "", false
	}
}

// Range implements polsearch.FCCandidate.
func (e *Entry) Range() (policy.Range, bool) { return e.MLSRange, e.HasRange }

// List is an ordered sequence of file_contexts entries, optionally
// backed by a Model for on-insert validation (spec.md §4.6).
type List struct {
	Entries []*Entry
	Model   *policy.Model // nil: contexts are stored verbatim, unvalidated
}

// NewList returns an empty List. A non-nil pol causes Load to
// validate every context component against pol's symbol tables.
func NewList(pol *policy.Model) *List {
	return &List{Model: pol}
}
