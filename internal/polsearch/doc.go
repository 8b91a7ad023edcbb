// Package polsearch implements the poly-query matcher of spec.md §4.5
// (C8): a higher-level tool built over internal/query and internal/match
// that the checker modules compose instead of hand-rolling predicates.
// A PolyQuery is parameterized over one element kind (type, role, user,
// ...) and joins an ordered list of Tests by match-all or match-any; each
// Test evaluates its Criteria conjunctively against the policy. A
// matching element accumulates Proof entries naming what made it match.
package polsearch
