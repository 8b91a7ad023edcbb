// Package expand builds a *policy.Model from a policy.RawImage: interning
// symbols, materializing attribute membership, evaluating conditionals,
// resolving contexts and MLS ranges, and constructing the syntactic<->
// semantic back-index (spec.md §2, C4 "Expansion & Back-Index").
//
// expand is the only package that mutates a Model after construction
// (via SetBoolean); every other consumer treats the Model built here as
// read-only.
package expand
