package expand

import "github.com/sepolicy/sechecker/internal/policy"

// buildBackIndex expands every AV and TE rule's source/target sets into
// semantic (source, target, class) triples and inserts one back-index
// entry per triple, accumulating syntactic origins onto a shared entry
// when multiple rules expand to the same triple (spec.md §3, §4.2
// build_back_index). Idempotent: callers that re-run it get an
// equivalent index, since insertion order doesn't affect final bucket
// contents.
func buildBackIndex(m *policy.Model) {
	idx := policy.NewBackIndex()

	for _, r := range m.AVRules {
		sources := m.ExpandedTypes(r.Source)
		targets := m.ExpandedTypes(r.Target)
		handle := policy.RuleHandle{AV: r}
		insertExpanded(idx, r.Kind, r.Class, r.Cond, r.Self, sources, targets, handle)
	}
	for _, r := range m.TERules {
		sources := m.ExpandedTypes(r.Source)
		targets := m.ExpandedTypes(r.Target)
		handle := policy.RuleHandle{TE: r}
		insertExpanded(idx, r.Kind, r.Class, r.Cond, r.Self, sources, targets, handle)
	}

	m.BackIndex = idx
}

// insertExpanded performs the semantic cross product a rule's selector
// bitsets denote. A "self" rule is deliberately cross-producted against
// each expanded source type individually, rather than against the full
// expanded target set (spec.md §9's second open question), since "self"
// means "the type itself", not "every type in the source attribute".
func insertExpanded(idx *policy.BackIndex, kind policy.RuleKind, class policy.ID, cond *policy.CondRef, self bool, sources, targets interface{ Members() []uint32 }, handle policy.RuleHandle) {
	for _, s := range sources.Members() {
		if self {
			insertTriple(idx, kind, class, cond, s, s, handle)
			continue
		}
		for _, t := range targets.Members() {
			insertTriple(idx, kind, class, cond, s, t, handle)
		}
	}
}

func insertTriple(idx *policy.BackIndex, kind policy.RuleKind, class policy.ID, cond *policy.CondRef, source, target uint32, handle policy.RuleHandle) {
	key := policy.BackIndexKey{
		Kind:   kind,
		Source: policy.ID(source),
		Target: policy.ID(target),
		Class:  class,
	}
	if cond != nil {
		key.Cond = cond.Node
		key.Branch = cond.Branch
	}
	idx.Insert(key, handle)
}
