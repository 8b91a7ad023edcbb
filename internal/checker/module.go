package checker

import (
	"fmt"
	"sort"

	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

// Module is the trait spec.md §9 ("Dynamic dispatch") calls for in
// place of the original's virtual dispatch: a concrete analytical check
// (C11) plugs into the framework (C10) by implementing this interface
// and registering a factory (see Register).
//
// Run must be idempotent in the sense the framework requires: the
// *Runner* guarantees Run is called at most once per Module instance
// per lifecycle (spec.md §4.7 "A module may be run at most once per
// lifecycle; subsequent calls are no-ops") — a Module implementation
// need not guard against repeat calls itself.
type Module interface {
	Name() string
	Severity() Severity
	Summary() string
	Description() string
	Requirements() []Requirement
	Recommendations() []Requirement
	Options() map[string]*Option
	Dependencies() []string
	Run(pol *policy.Model, fc *fscontext.List) (*Result, error)
}

// Base is embeddable scaffolding for a Module: it stores the fixed,
// declarative parts (name, severity, summary, description, options,
// dependencies) so a concrete check only needs to implement Run and the
// two Requirement lists stay close to the check that needs them.
type Base struct {
	ModuleName string
	Sev        Severity
	ModSummary string
	ModDesc    string
	ModOptions map[string]*Option
	ModDeps    []string
	ModReqs    []Requirement
	ModRecs    []Requirement
}

func (b *Base) Name() string                   { return b.ModuleName }
func (b *Base) Severity() Severity             { return b.Sev }
func (b *Base) Summary() string                { return b.ModSummary }
func (b *Base) Description() string            { return b.ModDesc }
func (b *Base) Requirements() []Requirement    { return b.ModReqs }
func (b *Base) Recommendations() []Requirement { return b.ModRecs }
func (b *Base) Dependencies() []string         { return b.ModDeps }
func (b *Base) Options() map[string]*Option {
	if b.ModOptions == nil {
		b.ModOptions = make(map[string]*Option)
	}
	return b.ModOptions
}

// Option looks up one of b's options by name, for a check's Run method
// to read its configured values.
func (b *Base) Option(name string) *Option {
	return b.Options()[name]
}

// Factory constructs a fresh Module instance. Modules are registered by
// factory (not by value) so every framework Run gets its own instance
// with fresh Option state and a clean "not yet run" slate.
type Factory func() Module

var registry = make(map[string]Factory)

// Register adds a module factory under name, for profile/CLI lookup by
// name (spec.md §6 "-m/--module", §4.7's module table). Called from
// internal/checks init() functions, keeping internal/checker ignorant
// of any concrete check.
func Register(name string, f Factory) {
	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("checker: module %q registered twice", name))
	}
	registry[name] = f
}

// New constructs a fresh Module instance by its registered name.
func New(name string) (Module, error) {
	f, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: no module registered as %q", policy.ErrInput, name)
	}
	return f(), nil
}

// Names returns every registered module name, sorted, for "-l/--list"
// (spec.md §6).
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
