package render

import (
	"testing"

	"github.com/sepolicy/sechecker/internal/expand"
	"github.com/sepolicy/sechecker/internal/policy"
)

func kernelFixture() *policy.Fixture {
	f := policy.NewFixture()
	f.MLS = false
	f.Types = []string{"kernel_t"}
	f.Roles = []string{"system_r"}
	f.Users = []string{"system_u"}
	f.InitialSIDs = []policy.RawInitialSID{
		{Context: &policy.RawContext{User: "system_u", Role: "system_r", Type: "kernel_t"}},
	}
	return f
}

func TestInitialSIDRendering(t *testing.T) {
	m, err := expand.Load(kernelFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := InitialSID(m, m.InitialSIDs[1])
	if err != nil {
		t.Fatalf("InitialSID: %v", err)
	}
	want := "system_u:system_r:kernel_t"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestNoContextRendering(t *testing.T) {
	m, err := expand.Load(kernelFixture())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := InitialSID(m, policy.InitialSIDEntry{Name: "undefined"})
	if err != nil {
		t.Fatalf("InitialSID: %v", err)
	}
	if got != NoContext {
		t.Fatalf("got %q want %q", got, NoContext)
	}
}

func TestAVRuleRendering(t *testing.T) {
	f := kernelFixture()
	f.Types = append(f.Types, "httpd_t", "passwd_t")
	f.Classes = []policy.RawClass{{Name: "file", Perms: []string{"read", "write"}}}
	f.AVRules = []policy.RawAVRule{
		{Kind: policy.KindAllow, Source: "httpd_t", Target: "passwd_t", Class: "file", Perms: []string{"read", "write"}},
	}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := AVRule(m, m.AVRules[0], false)
	if err != nil {
		t.Fatalf("AVRule: %v", err)
	}
	want := "allow httpd_t passwd_t : file { read write };"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestLevelRenderingCollapsesContiguousCategories(t *testing.T) {
	f := kernelFixture()
	f.MLS = true
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	c0 := m.Categories.Intern("c0")
	c1 := m.Categories.Intern("c1")
	c2 := m.Categories.Intern("c2")
	lvl := policy.NewLevel(m.Sensitivities.Intern("s0"), uint32(c0), uint32(c1), uint32(c2))
	got, err := Level(m, lvl)
	if err != nil {
		t.Fatalf("Level: %v", err)
	}
	want := "s0:c0.c2"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRoleAllowRendering(t *testing.T) {
	f := kernelFixture()
	f.Roles = append(f.Roles, "object_r")
	f.RoleAllows = []policy.RawRoleAllow{{Source: "system_r", Target: "object_r"}}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := RoleAllow(m, m.RoleAllows[0])
	if err != nil {
		t.Fatalf("RoleAllow: %v", err)
	}
	if want := "allow system_r object_r;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRoleTransitionRendering(t *testing.T) {
	f := kernelFixture()
	f.Types = append(f.Types, "init_t")
	f.Classes = []policy.RawClass{{Name: "process", Perms: []string{"transition"}}}
	f.RoleTransitions = []policy.RawRoleTransition{
		{Source: "system_r", Target: "kernel_t", Class: "process", NewRole: "system_r"},
	}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := RoleTransition(m, m.RoleTransitions[0])
	if err != nil {
		t.Fatalf("RoleTransition: %v", err)
	}
	if want := "role_transition system_r kernel_t : process system_r;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestRangeTransitionRendering(t *testing.T) {
	f := kernelFixture()
	f.MLS = true
	f.Types = append(f.Types, "httpd_t")
	f.Classes = []policy.RawClass{{Name: "process", Perms: []string{"transition"}}}
	f.RangeTrans = []policy.RawRangeTransition{
		{
			Source: "httpd_t",
			Target: "kernel_t",
			Class:  "process",
			Range: policy.RawRange{
				Low:  policy.RawLevel{Sensitivity: "s0"},
				High: policy.RawLevel{Sensitivity: "s0"},
			},
		},
	}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got, err := RangeTransition(m, m.RangeTransitions[0])
	if err != nil {
		t.Fatalf("RangeTransition: %v", err)
	}
	if want := "range_transition httpd_t kernel_t : process s0;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUserStatementRendering(t *testing.T) {
	f := kernelFixture()
	f.Roles = append(f.Roles, "user_r")
	f.UserRoles = map[string][]string{"system_u": {"system_r", "user_r"}}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	systemU, _ := m.Users.Lookup("system_u")
	got, err := UserStatement(m, systemU)
	if err != nil {
		t.Fatalf("UserStatement: %v", err)
	}
	if want := "user system_u roles { system_r user_r };"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUserStatementRenderingSingleRoleNoBraces(t *testing.T) {
	f := kernelFixture()
	f.UserRoles = map[string][]string{"system_u": {"system_r"}}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	systemU, _ := m.Users.Lookup("system_u")
	got, err := UserStatement(m, systemU)
	if err != nil {
		t.Fatalf("UserStatement: %v", err)
	}
	if want := "user system_u roles system_r;"; got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
