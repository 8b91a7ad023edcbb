package checker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

// OutputMode controls how much detail Render emits for one module,
// independently of the report's overall min-severity filter (spec.md
// §6 profile format: "<module name=... output=default|quiet|short|
// verbose>").
type OutputMode int

const (
	OutputDefault OutputMode = iota
	OutputQuiet
	OutputShort
	OutputVerbose
)

// ParseOutputMode parses the profile/CLI output-mode vocabulary.
func ParseOutputMode(s string) (OutputMode, error) {
	switch s {
	case "", "default":
		return OutputDefault, nil
	case "quiet":
		return OutputQuiet, nil
	case "short":
		return OutputShort, nil
	case "verbose":
		return OutputVerbose, nil
	default:
		return 0, fmt.Errorf("unknown output mode %q", s)
	}
}

// Report aggregates one or more ModuleReports behind a minimum-severity
// filter and a per-module output-mode override (spec.md §4.7 "Report").
type Report struct {
	Modules []*ModuleReport
	MinSev  Severity
	ModeOf  func(moduleName string) OutputMode // nil means OutputDefault for every module
}

// NewReport wraps reports with the given minimum severity.
func NewReport(reports []*ModuleReport, minSev Severity) *Report {
	return &Report{Modules: reports, MinSev: minSev}
}

// HasFindings reports whether any included module's result has at
// least one entry, for the CLI exit-code rule of spec.md §6 ("0 if no
// results at or above min-sev; 1 if any such results").
func (r *Report) HasFindings() bool {
	for _, m := range r.Modules {
		if m.Skipped || m.Severity < r.MinSev || m.Result == nil {
			continue
		}
		if m.Result.Len() > 0 {
			return true
		}
	}
	return false
}

func (r *Report) outputMode(name string) OutputMode {
	if r.ModeOf == nil {
		return OutputDefault
	}
	return r.ModeOf(name)
}

// Render writes r's text form to sb: per module, a header (name,
// severity, summary), then — unless quiet — the entry count, and (for
// default/verbose) each entry with its element. Verbose mode adds the
// description and option dump before the count and each entry's proofs
// (spec.md §4.7 "Renders per-module...").
func (r *Report) Render(pol *policy.Model, fc *fscontext.List) (string, error) {
	var sb strings.Builder
	for _, m := range r.Modules {
		if m.Severity < r.MinSev {
			continue
		}
		mode := r.outputMode(m.Name)
		fmt.Fprintf(&sb, "Module: %s\n", m.Name)
		fmt.Fprintf(&sb, "Severity: %s\n", m.Severity)
		fmt.Fprintf(&sb, "Summary: %s\n", m.Summary)
		if mode == OutputQuiet {
			sb.WriteString("\n")
			continue
		}

		if m.Skipped {
			fmt.Fprintf(&sb, "Skipped: %s\n\n", strings.Join(m.SkipReasons, "; "))
			continue
		}
		if m.Degraded {
			fmt.Fprintf(&sb, "Degraded: %s\n", strings.Join(m.DegradedReasons, "; "))
		}
		if mode == OutputVerbose {
			if m.Description != "" {
				fmt.Fprintf(&sb, "Description: %s\n", m.Description)
			}
			for _, name := range sortedOptionNames(m.Options) {
				opt := m.Options[name]
				fmt.Fprintf(&sb, "Option %s: %s\n", name, strings.Join(opt.Values(), ", "))
			}
		}

		count := 0
		if m.Result != nil {
			count = m.Result.Len()
		}
		fmt.Fprintf(&sb, "Entries: %d\n", count)

		if mode != OutputShort && m.Result != nil {
			for _, entry := range m.Result.Entries {
				text, err := entry.Element.Render(pol, fc)
				if err != nil {
					return "", err
				}
				fmt.Fprintf(&sb, "  %s\n", text)
				if mode == OutputVerbose {
					for _, p := range entry.Proofs {
						proofText, err := p.Element.Render(pol, fc)
						if err != nil {
							return "", err
						}
						fmt.Fprintf(&sb, "    %s%s\n", p.Prefix, proofText)
					}
				}
			}
		}
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func sortedOptionNames(opts map[string]*Option) []string {
	names := make([]string, 0, len(opts))
	for name := range opts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
