package checker

import (
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

// RequireCode enumerates the capability predicates spec.md §4.7 lists.
// original_source/sechecker/requirement.hh models both a module's
// requirements (unmet -> skip) and its recommendations (unmet -> run
// degraded) with this same enum and the same Requirement shape
// (spec.md §4.7 item 2; the "Requirement vs. recommendation" note in
// SPEC_FULL.md §5) — the distinction is which slice a Module puts the
// Requirement in, not a different type.
type RequireCode int

const (
	ReqAttributeNames RequireCode = iota
	ReqSynRules
	ReqLineNumbers
	ReqConditionals
	ReqModules
	ReqNeverAllow
	ReqSELinuxSystem
	ReqFCList
	ReqDefaultContexts
	ReqMLS
)

func (c RequireCode) String() string {
	switch c {
	case ReqAttributeNames:
		return "attribute names"
	case ReqSynRules:
		return "syntactic rules"
	case ReqLineNumbers:
		return "line numbers"
	case ReqConditionals:
		return "conditionals"
	case ReqModules:
		return "policy modules"
	case ReqNeverAllow:
		return "neverallow rules"
	case ReqSELinuxSystem:
		return "running SELinux system"
	case ReqFCList:
		return "file_contexts list"
	case ReqDefaultContexts:
		return "default_contexts file"
	case ReqMLS:
		return "MLS policy"
	default:
		return "unknown requirement"
	}
}

// Requirement is a named capability predicate a Module needs (or merely
// benefits from) from the policy/fc-list pair under analysis (spec.md
// §4.7 "Requirement").
type Requirement struct {
	Code        RequireCode
	Description string
	Check       func(pol *policy.Model, fc *fscontext.List) bool
}

// standardRequirement builds a Requirement for one of the fixed
// RequireCodes using its canonical description and check, so modules
// never hand-roll the predicate for a well-known capability.
func standardRequirement(code RequireCode) Requirement {
	switch code {
	case ReqAttributeNames:
		return Requirement{code, "policy must retain attribute names", func(pol *policy.Model, _ *fscontext.List) bool {
			return pol.Capabilities.AttributeNames
		}}
	case ReqSynRules:
		return Requirement{code, "policy must retain syntactic rules", func(pol *policy.Model, _ *fscontext.List) bool {
			return pol.Capabilities.SyntacticRules
		}}
	case ReqLineNumbers:
		return Requirement{code, "policy must retain rule line numbers", func(pol *policy.Model, _ *fscontext.List) bool {
			return pol.Capabilities.LineNumbers
		}}
	case ReqConditionals:
		return Requirement{code, "policy must support conditional policy", func(pol *policy.Model, _ *fscontext.List) bool {
			return pol.Capabilities.Conditionals
		}}
	case ReqModules:
		return Requirement{code, "policy must be built from loadable modules", func(pol *policy.Model, _ *fscontext.List) bool {
			return pol.Capabilities.Modules
		}}
	case ReqNeverAllow:
		return Requirement{code, "policy must retain neverallow rules", func(pol *policy.Model, _ *fscontext.List) bool {
			return pol.Capabilities.NeverAllow
		}}
	case ReqSELinuxSystem:
		// This toolkit never runs against a live system (spec.md §1
		// Non-goals: no kernel loading, no enforcement); the predicate
		// always fails, matching the original's behavior when run
		// offline against a policy file.
		return Requirement{code, "must run against a live SELinux system", func(*policy.Model, *fscontext.List) bool {
			return false
		}}
	case ReqFCList:
		return Requirement{code, "a file_contexts list must be supplied", func(_ *policy.Model, fc *fscontext.List) bool {
			return fc != nil
		}}
	case ReqDefaultContexts:
		// No default_contexts loader is in scope (spec.md §1); this
		// toolkit never satisfies the requirement, so a module that
		// lists it as a hard requirement is always skipped and one that
		// lists it as a recommendation always runs degraded.
		return Requirement{code, "a default_contexts file must be supplied", func(*policy.Model, *fscontext.List) bool {
			return false
		}}
	case ReqMLS:
		return Requirement{code, "policy must be MLS-enabled", func(pol *policy.Model, _ *fscontext.List) bool {
			return pol.MLS
		}}
	default:
		return Requirement{code, "unknown requirement", func(*policy.Model, *fscontext.List) bool { return false }}
	}
}

// Require returns the standard Requirement for code, for use building a
// Module's Requirements()/Recommendations() lists.
func Require(code RequireCode) Requirement { return standardRequirement(code) }
