package expand

import (
	"testing"

	"github.com/sepolicy/sechecker/internal/policy"
)

func sampleFixture() *policy.Fixture {
	f := policy.NewFixture()
	f.Types = []string{"httpd_t", "passwd_t", "kernel_t"}
	f.AttributeMap = map[string][]string{
		"file_type": {"passwd_t"},
	}
	f.Roles = []string{"system_r"}
	f.Users = []string{"system_u"}
	f.Classes = []policy.RawClass{
		{Name: "file", Perms: []string{"read", "write", "execute"}},
	}
	f.Booleans = map[string]bool{"httpd_can_network": true}
	f.Conditionals = []policy.RawConditional{
		{Expr: &policy.RawCondExpr{Op: policy.CondBool, BoolName: "httpd_can_network"}},
	}
	f.AVRules = []policy.RawAVRule{
		{
			Kind:       policy.KindAllow,
			Source:     "httpd_t",
			Target:     "file_type",
			Class:      "file",
			Perms:      []string{"read", "write"},
			CondIndex:  1,
			CondBranch: true,
		},
		{
			Kind:   policy.KindAllow,
			Source: "httpd_t",
			Self:   true,
			Class:  "file",
			Perms:  []string{"read"},
		},
	}
	f.InitialSIDs = []policy.RawInitialSID{
		{Context: &policy.RawContext{User: "system_u", Role: "system_r", Type: "kernel_t"}},
	}
	return f
}

func TestLoadBuildsAttributeMembership(t *testing.T) {
	m, err := Load(sampleFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	fileType, ok := m.IsAttribute("file_type")
	if !ok {
		t.Fatalf("expected file_type to be interned as an attribute")
	}
	passwdT, ok := m.Types.Lookup("passwd_t")
	if !ok {
		t.Fatalf("expected passwd_t to be interned")
	}
	if !m.AttributeMembers(fileType).Test(uint32(passwdT)) {
		t.Fatalf("expected passwd_t in file_type's members")
	}
	if !m.TypeAttributes(passwdT).Test(uint32(fileType)) {
		t.Fatalf("expected file_type in passwd_t's attrs_of set, bidirectional invariant violated")
	}
}

func TestLoadExpandsAttributeRuleTargets(t *testing.T) {
	m, err := Load(sampleFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	passwdT, _ := m.Types.Lookup("passwd_t")
	var rule *policy.AVRule
	for _, r := range m.AVRules {
		if !r.Self {
			rule = r
			break
		}
	}
	if rule == nil {
		t.Fatalf("expected an attribute-targeted rule")
	}
	expanded := m.ExpandedTypes(rule.Target)
	if !expanded.Test(uint32(passwdT)) {
		t.Fatalf("expected rule target to expand file_type to passwd_t")
	}
}

func TestLoadGatesRuleByConditional(t *testing.T) {
	m, err := Load(sampleFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var rule *policy.AVRule
	for _, r := range m.AVRules {
		if r.Cond != nil {
			rule = r
			break
		}
	}
	if rule == nil {
		t.Fatalf("expected a conditional rule")
	}
	if !rule.Enabled {
		t.Fatalf("expected rule enabled since httpd_can_network defaults true")
	}

	if err := SetBoolean(m, "httpd_can_network", false); err != nil {
		t.Fatalf("SetBoolean: %v", err)
	}
	if rule.Enabled {
		t.Fatalf("expected rule disabled after flipping its gating boolean false")
	}
}

func TestLoadBuildsBackIndex(t *testing.T) {
	m, err := Load(sampleFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	httpdT, _ := m.Types.Lookup("httpd_t")
	passwdT, _ := m.Types.Lookup("passwd_t")
	fileClass, _ := m.Classes.Lookup("file")

	var cond *policy.Conditional
	if len(m.Conditionals) > 0 {
		cond = m.Conditionals[0]
	}
	handles := m.BackIndex.Lookup(policy.BackIndexKey{
		Kind:   policy.KindAllow,
		Source: httpdT,
		Target: passwdT,
		Class:  fileClass,
		Cond:   cond,
		Branch: true,
	})
	if len(handles) != 1 {
		t.Fatalf("expected exactly one back-index handle, got %d", len(handles))
	}
}

func TestAddInitialSIDNamesFillsWellKnownName(t *testing.T) {
	m, err := Load(sampleFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(m.InitialSIDs) < 2 {
		t.Fatalf("expected at least one initial SID entry besides the reserved index 0")
	}
	entry := m.InitialSIDs[1]
	if entry.Name != "kernel" {
		t.Fatalf("expected first initial SID to be named %q, got %q", "kernel", entry.Name)
	}
	if entry.Context == nil {
		t.Fatalf("expected a bound context")
	}
}

func TestSetBooleanRejectsUnknownName(t *testing.T) {
	m, err := Load(sampleFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := SetBoolean(m, "does_not_exist", true); err == nil {
		t.Fatalf("expected an error for an unknown boolean")
	}
}
