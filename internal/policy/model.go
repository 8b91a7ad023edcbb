package policy

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/symbol"
)

// ID re-exports symbol.ID so callers of this package need not import
// internal/symbol directly for ordinary use.
type ID = symbol.ID

const Undefined = symbol.Undefined

// Class describes an object class: its own ordered permission list plus
// an optional common set inherited by name (spec.md §3).
type Class struct {
	Name       string
	ID         ID
	OwnPerms   []ID // in declaration order
	CommonName string
}

// InitialSIDEntry binds a well-known kernel SID to an optional context.
type InitialSIDEntry struct {
	Name    string
	Context *Context // nil if unbound ("<no context>")
}

// Capabilities records which optional handle features the image this
// Model was loaded from exposed (spec.md §6 "handle-capability flags",
// consulted by the checker framework's Requirement predicates in
// spec.md §4.7). Capabilities are a property of the load, not of any
// individual rule, so the Model keeps one copy rather than threading
// the RawImage through to every later consumer.
type Capabilities struct {
	LineNumbers    bool
	AttributeNames bool
	SyntacticRules bool
	Modules        bool
	NeverAllow     bool
	Conditionals   bool
}

// Model is the typed container C3 describes: symbols, class/permission
// maps, semantic rule tables, the initial-SID table, boolean
// conditionals, MLS ranges, and context occurrences.
//
// A Model is built once by internal/expand and is immutable afterward
// except for boolean state (spec.md §3 "Lifecycle", §5).
type Model struct {
	MLS          bool
	Capabilities Capabilities

	// Types interns both primitive types and attributes into one
	// namespace: real SELinux policy allocates type and attribute names
	// from the same table (a type name and an attribute name can never
	// collide), so members(a)/attrs_of(t) bitsets below are keyed by a
	// single consistent id space rather than two independent counters.
	Types *symbol.Table
	// AttributeIDs marks which Types ids are attributes rather than
	// primitive types.
	AttributeIDs  *bitset.Bitset
	Roles         *symbol.Table
	Users         *symbol.Table
	Classes       *symbol.Table
	Permissions   *symbol.Table
	Booleans      *symbol.Table
	Categories    *symbol.Table
	Sensitivities *symbol.Table
	Commons       *symbol.Table

	ClassInfo   map[ID]*Class // keyed by Classes id
	CommonPerms map[ID][]ID   // keyed by Commons id

	AVRules          []*AVRule
	TERules          []*TERule
	RoleAllows       []*RoleAllow
	RoleTransitions  []*RoleTransition
	RangeTransitions []*RangeTransition

	// Users -> set of roles a user may hold.
	UserRoles map[ID]*bitset.Bitset
	// Roles -> set of types a role may be associated with.
	RoleTypes map[ID]*bitset.Bitset
	// Users -> allowed MLS range.
	UserRange map[ID]Range

	InitialSIDs []InitialSIDEntry // fixed ordinal array, index 0 unused

	Conditionals []*Conditional
	// BooleanState holds each boolean's current value; Conditionals
	// re-evaluate against it on every SetBoolean call.
	BooleanState map[ID]bool

	Contexts ContextOccurrences

	// Constraints and ValidateTrans hold `constrain`/`mlsconstrain` and
	// `validatetrans` statements (spec.md §4.8 unused_attribs: "scan
	// constraints and validatetrans expressions"). Ported from the
	// teacher's models.Constraint (models/constraints.go), which modeled
	// the same (classes, permissions, expression) shape for policy
	// generation; kept unchanged here since a constraint reads the same
	// whether it's being emitted or analyzed.
	Constraints   []*Constraint
	ValidateTrans []*Constraint

	BackIndex *BackIndex

	// attrMembers: attribute id -> bitset of member type ids.
	attrMembers map[ID]*bitset.Bitset
	// typeAttrs: type id -> bitset of attribute ids it belongs to.
	typeAttrs map[ID]*bitset.Bitset
}

// NewModel creates an empty Model with all symbol tables initialized.
func NewModel(mls bool) *Model {
	return &Model{
		MLS:           mls,
		Types:         symbol.NewTable(symbol.Type),
		AttributeIDs:  bitset.New(1),
		Roles:         symbol.NewTable(symbol.Role),
		Users:         symbol.NewTable(symbol.User),
		Classes:       symbol.NewTable(symbol.Class),
		Permissions:   symbol.NewTable(symbol.Permission),
		Booleans:      symbol.NewTable(symbol.Boolean),
		Categories:    symbol.NewTable(symbol.Category),
		Sensitivities: symbol.NewTable(symbol.Sensitivity),
		Commons:       symbol.NewTable(symbol.Common),
		ClassInfo:     make(map[ID]*Class),
		CommonPerms:   make(map[ID][]ID),
		UserRoles:     make(map[ID]*bitset.Bitset),
		RoleTypes:     make(map[ID]*bitset.Bitset),
		UserRange:     make(map[ID]Range),
		BooleanState:  make(map[ID]bool),
		InitialSIDs:   make([]InitialSIDEntry, 1), // index 0 reserved
		attrMembers:   make(map[ID]*bitset.Bitset),
		typeAttrs:     make(map[ID]*bitset.Bitset),
	}
}

// AttributeMembers returns the bitset of type ids belonging to attribute
// a, or nil if a has no recorded membership (e.g. before expansion).
func (m *Model) AttributeMembers(a ID) *bitset.Bitset {
	return m.attrMembers[a]
}

// TypeAttributes returns the bitset of attribute ids type t belongs to.
func (m *Model) TypeAttributes(t ID) *bitset.Bitset {
	return m.typeAttrs[t]
}

// SetAttributeMember records that type t is a member of attribute a,
// maintaining both the forward (attribute->types) and backward
// (type->attributes) bitsets so the invariant of spec.md §3
// ("members(a) and attrs_of(t) are bidirectionally consistent") holds
// by construction rather than by a later reconciliation pass.
func (m *Model) SetAttributeMember(a, t ID) {
	members, ok := m.attrMembers[a]
	if !ok {
		members = bitset.New(int(t) + 1)
		m.attrMembers[a] = members
	}
	members.Set(uint32(t))

	attrs, ok := m.typeAttrs[t]
	if !ok {
		attrs = bitset.New(int(a) + 1)
		m.typeAttrs[t] = attrs
	}
	attrs.Set(uint32(a))
}

// IsAttribute reports whether name is interned as an attribute (rather
// than a primitive type), returning its Types-domain id.
func (m *Model) IsAttribute(name string) (ID, bool) {
	id, ok := m.Types.Lookup(name)
	if !ok || !m.AttributeIDs.Test(uint32(id)) {
		return Undefined, false
	}
	return id, true
}

// IsAttributeID reports whether id names an attribute rather than a
// primitive type.
func (m *Model) IsAttributeID(id ID) bool {
	return m.AttributeIDs.Test(uint32(id))
}

// MarkAttribute records that id (already interned in Types) is an
// attribute rather than a primitive type.
func (m *Model) MarkAttribute(id ID) {
	m.AttributeIDs.Set(uint32(id))
}

// PermsOf returns the full permission set for a class: its own
// permissions plus any inherited from a common (spec.md §3).
func (m *Model) PermsOf(classID ID) ([]ID, error) {
	info, ok := m.ClassInfo[classID]
	if !ok {
		return nil, fmt.Errorf("%w: class id %d", ErrLookup, classID)
	}
	perms := append([]ID(nil), info.OwnPerms...)
	if info.CommonName != "" {
		if commonID, ok := m.Commons.Lookup(info.CommonName); ok {
			perms = append(perms, m.CommonPerms[commonID]...)
		}
	}
	return perms, nil
}
