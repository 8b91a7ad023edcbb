package policy

// defaultBackIndexBuckets is the default bucket count for the
// syntactic<->semantic back-index: a power of two so bucket selection
// can mask rather than divide (spec.md §3, §9 "Hash table sizing").
const defaultBackIndexBuckets = 1 << 15

// RuleHandle identifies one syntactic rule: exactly one of AV or TE is
// non-nil.
type RuleHandle struct {
	AV *AVRule
	TE *TERule
}

// BackIndexKey is the lookup key spec.md §3 defines: "(rule_kind,
// source_val, target_val, class_val, cond*)". AuditDeny and DontAudit
// share a Kind value here (DontAuditMask) so lookups merge them, per
// spec.md §9's recorded open question.
type BackIndexKey struct {
	Kind   RuleKind
	Source ID
	Target ID
	Class  ID
	Cond   *Conditional
	Branch bool
}

func (k BackIndexKey) normalizedKind() RuleKind {
	if k.Kind&DontAuditMask != 0 {
		return DontAuditMask
	}
	return k.Kind
}

// BackIndex is the hash table mapping a semantic rule's key to its
// syntactic origin(s) (spec.md §3 "Syntactic<->semantic back-index").
type BackIndex struct {
	buckets [][]backEntry
	mask    uint32
}

type backEntry struct {
	key     BackIndexKey
	handles []RuleHandle
}

// NewBackIndex creates an empty back-index with the default bucket
// count. Implementers needing a different size (spec.md §9 calls this
// "a knob...implementers should expose it for tuning") can use
// NewBackIndexSized.
func NewBackIndex() *BackIndex {
	return NewBackIndexSized(defaultBackIndexBuckets)
}

// NewBackIndexSized creates an empty back-index with n buckets, rounded
// up to the next power of two.
func NewBackIndexSized(n int) *BackIndex {
	size := 1
	for size < n {
		size <<= 1
	}
	return &BackIndex{
		buckets: make([][]backEntry, size),
		mask:    uint32(size - 1),
	}
}

// hash mixes (class, target<<2, source<<9) as spec.md §9 describes,
// folding in the normalized rule kind and the conditional identity so
// rules gated by different branches never collide.
func (b *BackIndex) hash(k BackIndexKey) uint32 {
	h := uint32(k.Class) ^ (uint32(k.Target) << 2) ^ (uint32(k.Source) << 9)
	h ^= uint32(k.normalizedKind()) * 2654435761
	if k.Cond != nil {
		h ^= uint32(k.Cond.ID+1) * 40503
		if k.Branch {
			h ^= 0x9e3779b9
		}
	}
	return h
}

func (b *BackIndex) bucketFor(k BackIndexKey) int {
	return int(b.hash(k) & b.mask)
}

// Insert records that handle is the syntactic origin of the semantic
// rule keyed by k. Multiple syntactic rules may share a key (spec.md
// §3: "the map has ... one entry inserted" per expanded triple, but
// several distinct syntactic rules can expand to the same triple and
// all accumulate onto that one entry).
func (b *BackIndex) Insert(k BackIndexKey, handle RuleHandle) {
	k.Kind = k.normalizedKind()
	idx := b.bucketFor(k)
	for i := range b.buckets[idx] {
		if b.buckets[idx][i].key == k {
			b.buckets[idx][i].handles = append(b.buckets[idx][i].handles, handle)
			return
		}
	}
	b.buckets[idx] = append(b.buckets[idx], backEntry{key: k, handles: []RuleHandle{handle}})
}

// Lookup returns the syntactic rule handles recorded for k, or nil if
// none were inserted.
func (b *BackIndex) Lookup(k BackIndexKey) []RuleHandle {
	k.Kind = k.normalizedKind()
	idx := b.bucketFor(k)
	for i := range b.buckets[idx] {
		if b.buckets[idx][i].key == k {
			return b.buckets[idx][i].handles
		}
	}
	return nil
}

// Len returns the total number of distinct keys recorded, for test
// assertions about determinism (spec.md §8 "Back-index determinism").
func (b *BackIndex) Len() int {
	n := 0
	for _, bucket := range b.buckets {
		n += len(bucket)
	}
	return n
}
