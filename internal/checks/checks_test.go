package checks

import (
	"testing"

	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/expand"
	"github.com/sepolicy/sechecker/internal/policy"
	"github.com/sepolicy/sechecker/internal/render"
)

func findEntry(t *testing.T, result *checker.Result, elem checker.Element) *checker.Entry {
	t.Helper()
	for _, e := range result.Entries {
		if e.Element == elem {
			return e
		}
	}
	t.Fatalf("no entry for element %+v in %+v", elem, result.Entries)
	return nil
}

func proofPrefixes(e *checker.Entry) []string {
	out := make([]string, len(e.Proofs))
	for i, p := range e.Proofs {
		out[i] = p.Prefix
	}
	return out
}

func containsPrefix(prefixes []string, want string) bool {
	for _, p := range prefixes {
		if p == want {
			return true
		}
	}
	return false
}

// TestUnusedAttribute covers spec.md §8 scenario 2.
func TestUnusedAttribute(t *testing.T) {
	f := policy.NewFixture()
	f.AttributeNames = true
	f.Types = []string{"httpd_t"}
	f.AttributeMap = map[string][]string{"unused_attr": nil}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}

	mod, _ := checker.New("unused_attribs")
	result, err := mod.Run(m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	attrID, ok := m.IsAttribute("unused_attr")
	if !ok {
		t.Fatalf("unused_attr not interned as an attribute")
	}
	entry := findEntry(t, result, checker.Element{Kind: checker.ElementAttribute, ID: int(attrID)})
	if len(entry.Proofs) != 1 {
		t.Fatalf("expected exactly one proof, got %+v", entry.Proofs)
	}
	p := entry.Proofs[0]
	if p.Element != checker.None || p.Prefix != "Attribute is not used in rules or constraints." {
		t.Fatalf("unexpected proof: %+v", p)
	}
}

// TestIncompleteMount covers spec.md §8 scenario 3.
func TestIncompleteMount(t *testing.T) {
	f := policy.NewFixture()
	f.Types = []string{"mount_t", "fs_t"}
	f.Classes = []policy.RawClass{
		{Name: "filesystem", Perms: []string{"mount", "associate"}},
		{Name: "dir", Perms: []string{"mounton", "read"}},
	}
	f.AVRules = []policy.RawAVRule{
		{Kind: policy.KindAllow, Source: "mount_t", Target: "fs_t", Class: "filesystem", Perms: []string{"mount"}},
	}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}

	mod, _ := checker.New("inc_mount")
	result, err := mod.Run(m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", result.Len())
	}
	entry := result.Entries[0]
	if entry.Element.Kind != checker.ElementAVRule {
		t.Fatalf("expected entry keyed on the av rule, got %+v", entry.Element)
	}
	if len(entry.Proofs) != 2 {
		t.Fatalf("expected two proofs (have + missing), got %+v", entry.Proofs)
	}
	var haveSeen, missingSeen bool
	for _, p := range entry.Proofs {
		switch p.Prefix {
		case "Have: ":
			haveSeen = true
		case "Missing: allow mount_t fs_t : dir mounton;":
			missingSeen = true
		}
	}
	if !haveSeen || !missingSeen {
		t.Fatalf("unexpected proofs: %+v", entry.Proofs)
	}
}

// TestSpuriousAuditDontAuditOverlap covers spec.md §8 scenario 4.
func TestSpuriousAuditDontAuditOverlap(t *testing.T) {
	f := policy.NewFixture()
	f.Types = []string{"a_t", "b_t"}
	f.Classes = []policy.RawClass{{Name: "file", Perms: []string{"read", "write"}}}
	f.AVRules = []policy.RawAVRule{
		{Kind: policy.KindAllow, Source: "a_t", Target: "b_t", Class: "file", Perms: []string{"read", "write"}},
		{Kind: policy.KindDontAudit, Source: "a_t", Target: "b_t", Class: "file", Perms: []string{"read"}},
	}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}

	mod, _ := checker.New("spurious_audit")
	result, err := mod.Run(m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d: %+v", result.Len(), result.Entries)
	}
	entry := result.Entries[0]
	if entry.Element.Kind != checker.ElementAVRule {
		t.Fatalf("expected entry keyed on the dontaudit rule, got %+v", entry.Element)
	}
	prefixes := proofPrefixes(entry)
	if !containsPrefix(prefixes, "Overlapping allow: ") {
		t.Fatalf("missing 'Overlapping allow: ' proof: %v", prefixes)
	}
	var sawSpurious bool
	for _, p := range entry.Proofs {
		if p.Prefix == "spurious permissions: { read }" {
			sawSpurious = true
		}
	}
	if !sawSpurious {
		t.Fatalf("expected literal 'spurious permissions: { read }' proof, got %v", prefixes)
	}
}

// TestImpossibleRangeTransition covers spec.md §8 scenario 5.
func TestImpossibleRangeTransition(t *testing.T) {
	f := policy.NewFixture()
	f.MLS = true
	f.Types = []string{"a_t", "b_t"}
	f.Roles = []string{"object_r", "system_r"}
	f.Users = []string{"system_u"}
	f.RoleTypesMap = map[string][]string{"system_r": {"a_t", "b_t"}}
	f.UserRoles = map[string][]string{"system_u": {"system_r"}}
	f.UserRanges = map[string]policy.RawRange{
		"system_u": {
			Low:  policy.RawLevel{Sensitivity: "s0"},
			High: policy.RawLevel{Sensitivity: "s0", Categories: []string{"c0"}},
		},
	}
	f.Classes = []policy.RawClass{{Name: "process", Perms: []string{"transition"}}}
	f.AVRules = []policy.RawAVRule{
		{Kind: policy.KindAllow, Source: "a_t", Target: "b_t", Class: "process", Perms: []string{"transition"}},
	}
	wantRange := policy.RawRange{
		Low:  policy.RawLevel{Sensitivity: "s0", Categories: []string{"c0"}},
		High: policy.RawLevel{Sensitivity: "s15", Categories: []string{"c0", "c5"}},
	}
	f.RangeTrans = []policy.RawRangeTransition{
		{Source: "a_t", Target: "b_t", Class: "process", Range: wantRange},
	}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}

	mod, _ := checker.New("imp_range_trans")
	result, err := mod.Run(m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if result.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d: %+v", result.Len(), result.Entries)
	}
	entry := result.Entries[0]
	if entry.Element.Kind != checker.ElementRangeTransition {
		t.Fatalf("expected entry keyed on the range_transition, got %+v", entry.Element)
	}
	rngText, err := render.MLSRange(m, m.RangeTransitions[0].Range)
	if err != nil {
		t.Fatalf("render.MLSRange: %v", err)
	}
	prefixes := proofPrefixes(entry)
	if !containsPrefix(prefixes, "No user with range "+rngText) {
		t.Fatalf("expected 'No user with range %s' proof, got %v", rngText, prefixes)
	}
}

func TestImpossibleRangeTransitionSkippedWithoutMLS(t *testing.T) {
	f := policy.NewFixture()
	f.MLS = false
	f.Types = []string{"a_t"}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}
	mod, _ := checker.New("imp_range_trans")
	reports, err := checker.Run([]string{"imp_range_trans"}, m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if !reports[0].Skipped {
		t.Fatalf("expected imp_range_trans to be skipped on a non-MLS policy, got %+v", reports[0])
	}
	_ = mod
}

func TestAttribsWoTypes(t *testing.T) {
	f := policy.NewFixture()
	f.AttributeNames = true
	f.Types = []string{"httpd_t"}
	f.AttributeMap = map[string][]string{"domain": {"httpd_t"}, "empty_attr": nil}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}
	mod, _ := checker.New("attribs_wo_types")
	result, err := mod.Run(m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	emptyID, _ := m.IsAttribute("empty_attr")
	domainID, _ := m.IsAttribute("domain")
	if _, ok := resultHas(result, checker.Element{Kind: checker.ElementAttribute, ID: int(emptyID)}); !ok {
		t.Fatalf("expected empty_attr flagged")
	}
	if _, ok := resultHas(result, checker.Element{Kind: checker.ElementAttribute, ID: int(domainID)}); ok {
		t.Fatalf("domain (non-empty) must not be flagged")
	}
}

func resultHas(r *checker.Result, elem checker.Element) (*checker.Entry, bool) {
	for _, e := range r.Entries {
		if e.Element == elem {
			return e, true
		}
	}
	return nil, false
}

func TestFindDomainsViaAttributeAndRole(t *testing.T) {
	f := policy.NewFixture()
	f.Types = []string{"httpd_t", "passwd_t"}
	f.AttributeMap = map[string][]string{"domain": {"httpd_t"}}
	f.Roles = []string{"object_r", "system_r"}
	f.RoleTypesMap = map[string][]string{"system_r": {"passwd_t"}}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}
	mod, _ := checker.New("find_domains")
	result, err := mod.Run(m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	httpdT, _ := m.Types.Lookup("httpd_t")
	passwdT, _ := m.Types.Lookup("passwd_t")
	if _, ok := resultHas(result, checker.Element{Kind: checker.ElementType, ID: int(httpdT)}); !ok {
		t.Fatalf("httpd_t should be found via the domain attribute")
	}
	if _, ok := resultHas(result, checker.Element{Kind: checker.ElementType, ID: int(passwdT)}); !ok {
		t.Fatalf("passwd_t should be found via its non-object_r role")
	}
}

func TestRolesWoUsers(t *testing.T) {
	f := policy.NewFixture()
	f.Types = []string{"t1"}
	f.Roles = []string{"object_r", "orphan_r", "staffed_r"}
	f.Users = []string{"u1"}
	f.UserRoles = map[string][]string{"u1": {"staffed_r"}}
	m, err := expand.Load(f)
	if err != nil {
		t.Fatalf("expand.Load: %v", err)
	}
	mod, _ := checker.New("roles_wo_users")
	result, err := mod.Run(m, nil)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	orphanR, _ := m.Roles.Lookup("orphan_r")
	staffedR, _ := m.Roles.Lookup("staffed_r")
	if _, ok := resultHas(result, checker.Element{Kind: checker.ElementRole, ID: int(orphanR)}); !ok {
		t.Fatalf("orphan_r should be flagged")
	}
	if _, ok := resultHas(result, checker.Element{Kind: checker.ElementRole, ID: int(staffedR)}); ok {
		t.Fatalf("staffed_r has a user and must not be flagged")
	}
}
