package checker

import (
	"strings"
	"testing"
)

func TestOptionOverrideVsAppend(t *testing.T) {
	o := NewOption("domain_attribute", "attributes marking a domain", "domain")
	if got := o.Values(); len(got) != 1 || got[0] != "domain" {
		t.Fatalf("default Values() = %v", got)
	}
	o.SetOption([]string{"extra"}, false)
	if got := o.Values(); len(got) != 2 || got[0] != "domain" || got[1] != "extra" {
		t.Fatalf("append SetOption Values() = %v", got)
	}
	o.SetOption([]string{"only"}, true)
	if got := o.Values(); len(got) != 1 || got[0] != "only" {
		t.Fatalf("override SetOption Values() = %v", got)
	}
	o.Reset()
	if got := o.Values(); len(got) != 1 || got[0] != "domain" {
		t.Fatalf("Reset Values() = %v", got)
	}
}

func TestResultDedupByElementAndProof(t *testing.T) {
	r := NewResult()
	elem := Element{Kind: ElementType, ID: 1}
	r.Add(elem, Proof{Element: None, Prefix: "a"})
	r.Add(elem, Proof{Element: None, Prefix: "a"})
	r.Add(elem, Proof{Element: None, Prefix: "b"})
	if r.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", r.Len())
	}
	if len(r.Entries[0].Proofs) != 2 {
		t.Fatalf("Proofs = %v, want 2 distinct", r.Entries[0].Proofs)
	}
}

func TestRegisterTwicePanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatalf("expected panic on duplicate Register")
		}
	}()
	Register("checker_test_dup", func() Module { return nil })
	Register("checker_test_dup", func() Module { return nil })
}

func TestNamesSorted(t *testing.T) {
	Register("checker_test_zzz", func() Module { return nil })
	Register("checker_test_aaa", func() Module { return nil })
	names := Names()
	var prev string
	seen := 0
	for _, n := range names {
		if n == "checker_test_zzz" || n == "checker_test_aaa" {
			seen++
		}
		if prev != "" && n < prev {
			t.Fatalf("Names() not sorted: %v", names)
		}
		prev = n
	}
	if seen != 2 {
		t.Fatalf("expected both test modules registered, saw %d", seen)
	}
}

func TestParseSeverityAndString(t *testing.T) {
	cases := map[string]Severity{"util": SevUtil, "low": SevLow, "med": SevMed, "high": SevHigh}
	for s, want := range cases {
		got, err := ParseSeverity(s)
		if err != nil || got != want {
			t.Fatalf("ParseSeverity(%q) = %v, %v", s, got, err)
		}
		if got.String() == "unknown" {
			t.Fatalf("Severity(%v).String() = unknown", got)
		}
	}
	if _, err := ParseSeverity("bogus"); err == nil {
		t.Fatalf("expected error for unknown severity")
	}
}

func TestParseOutputMode(t *testing.T) {
	cases := map[string]OutputMode{"": OutputDefault, "default": OutputDefault, "quiet": OutputQuiet, "short": OutputShort, "verbose": OutputVerbose}
	for s, want := range cases {
		got, err := ParseOutputMode(s)
		if err != nil || got != want {
			t.Fatalf("ParseOutputMode(%q) = %v, %v", s, got, err)
		}
	}
	if _, err := ParseOutputMode("bogus"); err == nil {
		t.Fatalf("expected error for unknown output mode")
	}
}

func TestLoadProfileRejectsWrongVersion(t *testing.T) {
	doc := `<sechecker version="9.9"><profile name="p"><module name="m"/></profile></sechecker>`
	if _, err := LoadProfile(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected version mismatch error")
	}
}

func TestLoadProfileRejectsEmptyModuleList(t *testing.T) {
	doc := `<sechecker version="` + FrameworkVersion + `"><profile name="p"></profile></sechecker>`
	if _, err := LoadProfile(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected empty-module-list error")
	}
}

func TestLoadProfileParsesModulesAndOptions(t *testing.T) {
	doc := `<sechecker version="` + FrameworkVersion + `">
  <profile name="strict">
    <desc>strict profile</desc>
    <module name="find_domains" output="verbose">
      <option name="domain_attribute">
        <item value="domain"/>
        <item value="net_domain"/>
      </option>
    </module>
    <module name="unused_attribs" output="quiet"/>
  </profile>
</sechecker>`
	p, err := LoadProfile(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadProfile: %v", err)
	}
	if p.Name != "strict" || len(p.Modules) != 2 {
		t.Fatalf("unexpected profile: %+v", p)
	}
	fd := p.Modules[0]
	if fd.Name != "find_domains" || fd.Output != OutputVerbose {
		t.Fatalf("unexpected module: %+v", fd)
	}
	if got := fd.Options["domain_attribute"]; len(got) != 2 || got[0] != "domain" || got[1] != "net_domain" {
		t.Fatalf("unexpected option values: %v", got)
	}
}

func TestLoadProfileRejectsUnknownTag(t *testing.T) {
	doc := `<sechecker version="` + FrameworkVersion + `"><profile name="p"><module name="m"/><bogus/></profile></sechecker>`
	if _, err := LoadProfile(strings.NewReader(doc)); err == nil {
		t.Fatalf("expected structural error for unknown tag")
	}
}

func TestLoadOptionDefaults(t *testing.T) {
	doc := "find_domains:\n  domain_attribute: [domain, net_domain]\n"
	defaults, err := LoadOptionDefaults(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("LoadOptionDefaults: %v", err)
	}
	got := defaults["find_domains"]["domain_attribute"]
	if len(got) != 2 || got[0] != "domain" || got[1] != "net_domain" {
		t.Fatalf("unexpected defaults: %v", got)
	}
}
