// Package policy implements the in-memory policy model of spec.md C3,
// the security-context and MLS-range data types, and the symbol
// domains that back them.
package policy

import "errors"

// The seven abstract error categories of spec.md §7. Each concrete
// error returned anywhere in this module wraps exactly one of these
// sentinels so callers can classify failures with errors.Is without
// depending on message text.
var (
	// ErrInput covers a malformed binary image, file_contexts line, or profile.
	ErrInput = errors.New("input")
	// ErrLookup covers an unknown symbol name, out-of-range id, or missing well-known SID.
	ErrLookup = errors.New("lookup")
	// ErrCapability covers a requested operation needing a policy capability the loaded image lacks.
	ErrCapability = errors.New("capability")
	// ErrQuerySyntax covers an invalid regex or invalid parameter combination.
	ErrQuerySyntax = errors.New("query syntax")
	// ErrPolicyInconsistent covers expansion or back-index build detecting contradictory data.
	ErrPolicyInconsistent = errors.New("policy inconsistent")
	// ErrCheckerRuntime covers a checker module failing during its run.
	ErrCheckerRuntime = errors.New("checker runtime")
	// ErrResource covers an allocation or I/O failure.
	ErrResource = errors.New("resource")
)
