package policy

import "github.com/sepolicy/sechecker/internal/bitset"

// RuleKind enumerates the access-vector and type-enforcement rule
// kinds of spec.md §3. AuditDeny and DontAudit are deliberately treated
// as a single bit everywhere the back-index is consulted (spec.md §9,
// "Open question: rule-kind bit AUDITDENY" — the spec records this as a
// deliberate choice, not a derived fact, and this implementation keeps
// that choice rather than resolving the ambiguity).
type RuleKind uint16

const (
	KindAllow RuleKind = 1 << iota
	KindAuditAllow
	KindDontAudit
	KindAuditDeny
	KindNeverAllow
	KindTypeTransition
	KindTypeChange
	KindTypeMember
)

// DontAuditMask is the merged bit used for back-index lookups that must
// not distinguish auditdeny from dontaudit (spec.md §3 "rule_kind is
// matched by intersection to merge auditdeny/dontaudit").
const DontAuditMask = KindDontAudit | KindAuditDeny

// CondRef points a rule at the conditional node and branch that gate
// it. A nil CondRef means the rule is unconditional. This is the
// "parallel rule_meta side-table" design.md §9 calls for in place of
// the original C implementation's back-pointer abuse of unrelated
// struct fields.
type CondRef struct {
	Node   *Conditional
	Branch bool // true selects the true-branch rule list
}

// AVRule is an access-vector rule (spec.md §3).
type AVRule struct {
	ID         int
	Kind       RuleKind
	Source     *bitset.Bitset // expanded source type set
	Target     *bitset.Bitset // expanded target type set
	SourceSym  ID             // syntactic source symbol (type or attribute)
	TargetSym  ID
	Self       bool // target is implicitly "self"
	Complement bool // '~' prefix: all types except those listed
	Wildcard   bool // '*' : every type
	Class      ID
	Perms      *bitset.Bitset
	PermOrder  []ID // insertion order, for rendering (spec.md §4.3)
	Cond       *CondRef
	Enabled    bool
	Line       uint32 // 0 if unknown
}

// TERule is a type-enforcement rule (spec.md §3).
type TERule struct {
	ID         int
	Kind       RuleKind
	Source     *bitset.Bitset
	Target     *bitset.Bitset
	SourceSym  ID
	TargetSym  ID
	Self       bool
	Complement bool
	Wildcard   bool
	Class      ID
	Default    ID // default_type
	Cond       *CondRef
	Enabled    bool
	Line       uint32
}

// RoleAllow permits a role transition from Source to Target roles.
type RoleAllow struct {
	ID     int
	Source ID
	Target ID
}

// RoleTransition assigns NewRole when a process of Source role executes
// a TargetType-typed entrypoint, for the given Class.
type RoleTransition struct {
	ID      int
	Source  ID
	Target  ID
	Class   ID
	NewRole ID
}

// RangeTransition assigns Range to a process created by Source acting
// on Target of Class.
type RangeTransition struct {
	ID     int
	Source ID
	Target ID
	Class  ID
	Range  Range
}

// ExpandedTypes returns the concrete member types a selector bitset
// denotes, given the model's current attribute membership (spec.md §4.2
// "Expansion discipline"). Attributes expand to their members; plain
// types expand to themselves.
func (m *Model) ExpandedTypes(selector *bitset.Bitset) *bitset.Bitset {
	out := bitset.New(m.Types.Count() + 1)
	for _, id := range selector.Members() {
		if members, ok := m.attrMembers[ID(id)]; ok {
			for _, t := range members.Members() {
				out.Set(t)
			}
			continue
		}
		out.Set(id)
	}
	return out
}
