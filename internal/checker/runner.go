package checker

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

// ModuleReport is one module's contribution to a Report: its
// declarative metadata, whether it ran, and — if it did — its Result
// (spec.md §4.7 "Report ... Renders per-module: header ..., entry
// count, each entry ...").
type ModuleReport struct {
	Name        string
	Severity    Severity
	Summary     string
	Description string
	Options     map[string]*Option

	Skipped     bool
	SkipReasons []string // unmet Requirement descriptions

	Degraded        bool
	DegradedReasons []string // unmet Recommendation descriptions
	Result          *Result
}

// Run resolves m's transitive dependency closure, topologically sorts
// it (leaves first), verifies each module's requirements and
// recommendations, runs each module exactly once in that order, and
// returns the assembled reports in run order (spec.md §4.7 "Run
// orchestration").
//
// A module whose requirements are unmet is skipped with its reason
// recorded; one whose recommendations are unmet still runs, but its
// report is marked Degraded. A module that returns an error aborts the
// whole run with CheckerRuntime, per spec.md §4.7 item 2-3 and §7
// ("original_source/sechecker/sechecker.cc" skip-vs-abort split, see
// SPEC_FULL.md §5).
func Run(names []string, pol *policy.Model, fc *fscontext.List) ([]*ModuleReport, error) {
	closure, order, err := resolveOrder(nil, names)
	if err != nil {
		return nil, err
	}
	return runClosure(closure, order, pol, fc)
}

// RunModules is Run's counterpart for callers that already hold live
// Module instances with their own Option overrides (a profile's modules,
// built by ApplyProfile) rather than bare names: mods run in place of the
// registry's default instance for their own name, and any additional
// dependency outside mods is still resolved from the registry the usual
// way.
func RunModules(mods []Module, pol *policy.Model, fc *fscontext.List) ([]*ModuleReport, error) {
	seed := make(map[string]Module, len(mods))
	names := make([]string, len(mods))
	for i, m := range mods {
		seed[m.Name()] = m
		names[i] = m.Name()
	}
	closure, order, err := resolveOrder(seed, names)
	if err != nil {
		return nil, err
	}
	return runClosure(closure, order, pol, fc)
}

func runClosure(closure map[string]Module, order []string, pol *policy.Model, fc *fscontext.List) ([]*ModuleReport, error) {
	reports := make([]*ModuleReport, 0, len(order))
	for _, name := range order {
		mod := closure[name]
		report := &ModuleReport{
			Name:        mod.Name(),
			Severity:    mod.Severity(),
			Summary:     mod.Summary(),
			Description: mod.Description(),
			Options:     mod.Options(),
		}

		if reasons := unmet(mod.Requirements(), pol, fc); len(reasons) > 0 {
			report.Skipped = true
			report.SkipReasons = reasons
			reports = append(reports, report)
			continue
		}
		if reasons := unmet(mod.Recommendations(), pol, fc); len(reasons) > 0 {
			report.Degraded = true
			report.DegradedReasons = reasons
		}

		result, err := mod.Run(pol, fc)
		if err != nil {
			return nil, fmt.Errorf("%w: module %q: %v", policy.ErrCheckerRuntime, mod.Name(), err)
		}
		report.Result = result
		reports = append(reports, report)
	}
	return reports, nil
}

func unmet(reqs []Requirement, pol *policy.Model, fc *fscontext.List) []string {
	var reasons []string
	for _, r := range reqs {
		if !r.Check(pol, fc) {
			reasons = append(reasons, r.Description)
		}
	}
	return reasons
}

// resolveOrder builds the transitive closure of names over
// Dependencies() and returns it topologically sorted, leaves first. A
// dependency cycle is a configuration error (spec.md §4.7 item 1). seed
// supplies already-built instances (by name) to use instead of
// registry defaults; nil means "build everything from the registry".
func resolveOrder(seed map[string]Module, names []string) (map[string]Module, []string, error) {
	closure := make(map[string]Module, len(seed))
	for name, mod := range seed {
		closure[name] = mod
	}
	walked := make(map[string]bool, len(closure))
	var build func(name string) error
	build = func(name string) error {
		if walked[name] {
			return nil
		}
		mod, ok := closure[name]
		if !ok {
			var err error
			mod, err = New(name)
			if err != nil {
				return err
			}
			closure[name] = mod
		}
		walked[name] = true
		for _, dep := range mod.Dependencies() {
			if err := build(dep); err != nil {
				return err
			}
		}
		return nil
	}
	for _, name := range names {
		if err := build(name); err != nil {
			return nil, nil, err
		}
	}

	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(closure))
	var order []string
	var visit func(name string) error
	visit = func(name string) error {
		switch color[name] {
		case black:
			return nil
		case gray:
			return fmt.Errorf("%w: dependency cycle at module %q", policy.ErrCheckerRuntime, name)
		}
		color[name] = gray
		for _, dep := range closure[name].Dependencies() {
			if err := visit(dep); err != nil {
				return err
			}
		}
		color[name] = black
		order = append(order, name)
		return nil
	}
	// Visit in a stable order (closure map iteration is not) so the
	// resulting leaves-first order is deterministic across runs,
	// matching spec.md §5's determinism requirement.
	seeded := make(map[string]bool, len(names))
	for _, name := range names {
		seeded[name] = true
		if err := visit(name); err != nil {
			return nil, nil, err
		}
	}
	for name := range closure {
		if !seeded[name] {
			if err := visit(name); err != nil {
				return nil, nil, err
			}
		}
	}
	return closure, order, nil
}
