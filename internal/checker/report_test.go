package checker

import (
	"strings"
	"testing"

	"github.com/sepolicy/sechecker/internal/expand"
	"github.com/sepolicy/sechecker/internal/policy"
)

func reportTestModel(t *testing.T) *policy.Model {
	t.Helper()
	f := policy.NewFixture()
	f.Types = []string{"httpd_t"}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}
	return m
}

func TestHasFindingsRespectsMinSevAndSkipped(t *testing.T) {
	withEntry := NewResult()
	withEntry.Add(Element{Kind: ElementType, ID: 0}, Proof{Element: None, Prefix: "x"})

	reports := []*ModuleReport{
		{Name: "low_hit", Severity: SevLow, Result: withEntry},
		{Name: "high_empty", Severity: SevHigh, Result: NewResult()},
		{Name: "skipped_hit", Severity: SevHigh, Skipped: true, Result: withEntry},
	}

	r := NewReport(reports, SevMed)
	if r.HasFindings() {
		t.Fatalf("min-sev med should exclude the low_hit and skipped_hit modules")
	}

	r2 := NewReport(reports, SevLow)
	if !r2.HasFindings() {
		t.Fatalf("min-sev low should include low_hit's finding")
	}
}

func TestRenderQuietOmitsBody(t *testing.T) {
	pol := reportTestModel(t)
	result := NewResult()
	result.Add(Element{Kind: ElementType, ID: int(mustType(t, pol, "httpd_t"))}, Proof{Element: None, Prefix: "p"})
	reports := []*ModuleReport{{Name: "m", Severity: SevLow, Summary: "s", Result: result}}
	r := NewReport(reports, SevUtil)
	r.ModeOf = func(string) OutputMode { return OutputQuiet }
	text, err := r.Render(pol, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if strings.Contains(text, "Entries:") {
		t.Fatalf("quiet mode must omit entry body, got %q", text)
	}
}

func TestRenderDefaultShowsEntriesNotProofs(t *testing.T) {
	pol := reportTestModel(t)
	result := NewResult()
	elem := Element{Kind: ElementType, ID: int(mustType(t, pol, "httpd_t"))}
	result.Add(elem, Proof{Element: None, Prefix: "hidden-in-default: "})
	reports := []*ModuleReport{{Name: "m", Severity: SevLow, Summary: "s", Result: result}}
	r := NewReport(reports, SevUtil)
	text, err := r.Render(pol, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(text, "httpd_t") {
		t.Fatalf("default mode must render the entry element, got %q", text)
	}
	if strings.Contains(text, "hidden-in-default:") {
		t.Fatalf("default mode must not render proofs, got %q", text)
	}
}

func TestRenderVerboseShowsProofs(t *testing.T) {
	pol := reportTestModel(t)
	result := NewResult()
	elem := Element{Kind: ElementType, ID: int(mustType(t, pol, "httpd_t"))}
	result.Add(elem, Proof{Element: None, Prefix: "visible-in-verbose: "})
	reports := []*ModuleReport{{Name: "m", Severity: SevLow, Summary: "s", Description: "d", Result: result}}
	r := NewReport(reports, SevUtil)
	r.ModeOf = func(string) OutputMode { return OutputVerbose }
	text, err := r.Render(pol, nil)
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(text, "visible-in-verbose:") {
		t.Fatalf("verbose mode must render proofs, got %q", text)
	}
}

func mustType(t *testing.T, pol *policy.Model, name string) policy.ID {
	t.Helper()
	id, ok := pol.Types.Lookup(name)
	if !ok {
		t.Fatalf("type %q not found", name)
	}
	return id
}
