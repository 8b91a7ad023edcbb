// Package symbol implements the interned symbol table of spec.md C1.
//
// Each of the domains enumerated in spec.md §3 (type, attribute, role,
// user, class, permission, boolean, category, sensitivity, common) gets
// its own Table so that one domain's ids never collide with another's.
package symbol

import "fmt"

// Domain names the distinct symbol namespaces of spec.md §3.
type Domain string

const (
	Type        Domain = "type"
	Attribute   Domain = "attribute"
	Role        Domain = "role"
	User        Domain = "user"
	Class       Domain = "class"
	Permission  Domain = "permission"
	Boolean     Domain = "boolean"
	Category    Domain = "category"
	Sensitivity Domain = "sensitivity"
	Common      Domain = "common"
)

// ID is a dense, per-domain symbol identifier. 0 means "undefined".
type ID uint32

const Undefined ID = 0

// Table interns names to ids for a single domain.
//
// Intern is idempotent, ids are assigned in ascending insertion order
// starting at 1, and Lookup of an unknown name never inserts (spec.md §4.1).
type Table struct {
	domain Domain
	byName map[string]ID
	byID   []string // index 0 unused (sentinel Undefined)
}

// NewTable creates an empty table for domain.
func NewTable(domain Domain) *Table {
	return &Table{
		domain: domain,
		byName: make(map[string]ID),
		byID:   []string{""}, // reserve index 0
	}
}

// Intern returns the id for name, creating one if this is the first time
// name has been seen in this domain.
func (t *Table) Intern(name string) ID {
	if id, ok := t.byName[name]; ok {
		return id
	}
	id := ID(len(t.byID))
	t.byID = append(t.byID, name)
	t.byName[name] = id
	return id
}

// Lookup returns the id for name without inserting. ok is false if name
// is not present in this domain.
func (t *Table) Lookup(name string) (id ID, ok bool) {
	id, ok = t.byName[name]
	return id, ok
}

// NameOf returns the name for id, or an error if id is not live in this
// table (spec.md invariant: "Every id that appears in any rule or
// context references a currently-live symbol").
func (t *Table) NameOf(id ID) (string, error) {
	if id == Undefined || int(id) >= len(t.byID) {
		return "", fmt.Errorf("%s: %w: id %d", t.domain, ErrUnknownID, id)
	}
	return t.byID[id], nil
}

// Count returns the number of interned symbols (excluding Undefined).
func (t *Table) Count() int {
	return len(t.byID) - 1
}

// Iter calls fn for every interned symbol in ascending id order.
func (t *Table) Iter(fn func(id ID, name string)) {
	for id := 1; id < len(t.byID); id++ {
		fn(ID(id), t.byID[id])
	}
}

// Domain returns the namespace this table interns.
func (t *Table) Domain() Domain { return t.domain }

// ErrUnknownID is returned by NameOf for an id that was never interned.
var ErrUnknownID = fmt.Errorf("unknown symbol id")
