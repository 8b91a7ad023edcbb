package query

import (
	"testing"

	"github.com/sepolicy/sechecker/internal/expand"
	"github.com/sepolicy/sechecker/internal/match"
	"github.com/sepolicy/sechecker/internal/policy"
)

func sampleModel(t *testing.T) *policy.Model {
	t.Helper()
	f := policy.NewFixture()
	f.Types = []string{"httpd_t", "passwd_t", "kernel_t", "user_t"}
	f.AttributeMap = map[string][]string{
		"file_type": {"passwd_t"},
		"domain":    {"httpd_t", "user_t"},
	}
	f.Roles = []string{"system_r", "user_r"}
	f.Users = []string{"system_u"}
	f.Classes = []policy.RawClass{
		{Name: "file", Perms: []string{"read", "write", "execute"}},
		{Name: "dir", Perms: []string{"read", "search"}},
	}
	f.AVRules = []policy.RawAVRule{
		{Kind: policy.KindAllow, Source: "httpd_t", Target: "file_type", Class: "file", Perms: []string{"read", "write"}},
		{Kind: policy.KindAllow, Source: "user_t", Target: "file_type", Class: "file", Perms: []string{"read"}},
		{Kind: policy.KindAuditAllow, Source: "httpd_t", Self: true, Class: "dir", Perms: []string{"read"}},
	}
	f.TERules = []policy.RawTERule{
		{Kind: policy.KindTypeTransition, Source: "httpd_t", Target: "passwd_t", Class: "file", Default: "passwd_t"},
	}
	f.RangeTrans = []policy.RawRangeTransition{
		{
			Source: "httpd_t",
			Target: "passwd_t",
			Class:  "file",
			Range: policy.RawRange{
				Low:  policy.RawLevel{Sensitivity: "s0"},
				High: policy.RawLevel{Sensitivity: "s0", Categories: []string{"c0", "c1", "c2"}},
			},
		},
	}
	f.InitialSIDs = []policy.RawInitialSID{
		{Context: &policy.RawContext{User: "system_u", Role: "system_r", Type: "kernel_t"}},
		{Context: &policy.RawContext{User: "system_u", Role: "system_r", Type: "kernel_t"}},
	}
	f.Genfscon = []policy.RawGenfscon{
		{FSType: "proc", Path: "/", Context: policy.RawContext{User: "system_u", Role: "object_r", Type: "proc_t"}},
	}
	f.Portcon = []policy.RawPortcon{
		{Protocol: "tcp", Port: 80, Context: policy.RawContext{User: "system_u", Role: "object_r", Type: "http_port_t"}},
	}

	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}
	return m
}

func TestTypeQueryExpandsAttribute(t *testing.T) {
	m := sampleModel(t)
	q := TypeQuery{Name: NameSelector{Pattern: "file_type", Mode: match.Exact}}
	ids, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	passwdT, _ := m.Types.Lookup("passwd_t")
	found := false
	for _, id := range ids {
		if id == passwdT {
			found = true
		}
		if m.IsAttributeID(id) {
			t.Fatalf("TypeQuery must not return attribute ids themselves, got %v", id)
		}
	}
	if !found {
		t.Fatalf("expected file_type to expand to passwd_t, got %v", ids)
	}
}

func TestAttributeQueryReturnsOwnID(t *testing.T) {
	m := sampleModel(t)
	q := AttributeQuery{Name: NameSelector{Pattern: "file_type"}}
	ids, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected exactly one attribute match, got %v", ids)
	}
	fileType, _ := m.IsAttribute("file_type")
	if ids[0] != fileType {
		t.Fatalf("expected %v, got %v", fileType, ids[0])
	}
}

func TestAVQueryFiltersByKindAndPerm(t *testing.T) {
	m := sampleModel(t)
	httpdT, _ := m.Types.Lookup("httpd_t")
	q := AVQuery{
		Kinds:  policy.KindAllow,
		Source: &NameSelector{Pattern: "httpd_t"},
		Perms:  []string{"write"},
	}
	rules, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected exactly one matching rule, got %d", len(rules))
	}
	if !rules[0].Source.Test(uint32(httpdT)) {
		t.Fatalf("expected matched rule's source to include httpd_t")
	}
}

func TestAVQueryAnyFlagOrsPositions(t *testing.T) {
	m := sampleModel(t)
	q := AVQuery{
		Source: &NameSelector{Pattern: "user_t"},
		Target: &NameSelector{Pattern: "kernel_t"}, // matches nothing
		Any:    true,
	}
	rules, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rules) == 0 {
		t.Fatalf("expected the user_t rule to match under Any semantics")
	}
}

func TestAVQueryWithoutAnyRequiresAllPositions(t *testing.T) {
	m := sampleModel(t)
	q := AVQuery{
		Source: &NameSelector{Pattern: "user_t"},
		Target: &NameSelector{Pattern: "kernel_t"}, // matches nothing
	}
	rules, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rules) != 0 {
		t.Fatalf("expected no matches when target position cannot be satisfied, got %d", len(rules))
	}
}

func TestTEQueryFiltersByDefault(t *testing.T) {
	m := sampleModel(t)
	q := TEQuery{
		Kinds:   policy.KindTypeTransition,
		Default: &NameSelector{Pattern: "passwd_t"},
	}
	rules, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(rules) != 1 {
		t.Fatalf("expected exactly one type_transition rule, got %d", len(rules))
	}
}

func TestRangeTransitionQueryMatchesExactRange(t *testing.T) {
	m := sampleModel(t)
	rng := m.RangeTransitions[0].Range
	q := RangeTransitionQuery{
		Source: &NameSelector{Pattern: "httpd_t"},
		Range:  &RangeFilter{Range: rng, Relation: RelExact},
	}
	out, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected exactly one range_transition match, got %d", len(out))
	}
}

func TestInitialSIDQueryByName(t *testing.T) {
	m := sampleModel(t)
	q := InitialSIDQuery{Name: NameSelector{Pattern: "kernel"}}
	ords, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ords) != 1 || ords[0] != 1 {
		t.Fatalf("expected ordinal 1 named kernel, got %v", ords)
	}
}

func TestGenfsconQueryByFSType(t *testing.T) {
	m := sampleModel(t)
	q := GenfsconQuery{FSType: NameSelector{Pattern: "proc"}}
	out, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one genfscon match, got %d", len(out))
	}
}

func TestPortconQueryByPort(t *testing.T) {
	m := sampleModel(t)
	q := PortconQuery{Protocol: "tcp", Port: 80}
	out, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(out) != 1 {
		t.Fatalf("expected one portcon match, got %d", len(out))
	}
}

func TestRoleQueryByName(t *testing.T) {
	m := sampleModel(t)
	q := RoleQuery{Name: NameSelector{Pattern: "user_r"}}
	ids, err := q.Run(m)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(ids) != 1 {
		t.Fatalf("expected one role match, got %d", len(ids))
	}
}
