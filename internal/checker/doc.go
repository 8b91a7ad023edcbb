// Package checker implements the checker framework of spec.md §4.7 (C10):
// modules, requirements, options, profiles, results, and reports. It
// orchestrates the concrete modules in internal/checks (C11) but knows
// nothing about any specific check — every analytical judgment lives in
// internal/checks; this package only resolves dependencies, verifies
// capabilities, runs modules once each, and assembles their results into
// a report.
package checker
