// Package checks implements the concrete checker modules of spec.md
// §4.8 (C11): one factory per module, each a thin composition over
// internal/query, internal/polsearch, and internal/policy, registered
// with internal/checker's factory registry from an init() function.
//
// Importing this package for side effect (a blank import from
// cmd/sechecker) populates checker.Names()/checker.New() with every
// module below; internal/checker itself knows nothing about any one of
// them.
package checks
