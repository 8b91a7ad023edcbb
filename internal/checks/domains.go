package checks

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("find_domains", newFindDomains)
	checker.Register("find_net_domains", newFindNetDomains)
	checker.Register("domains_wo_roles", newDomainsWoRoles)
	checker.Register("domain_and_file", newDomainAndFile)
}

var defaultDomainAttributes = []string{"domain"}
var defaultNetworkClasses = []string{"tcp_socket", "udp_socket", "rawip_socket", "netlink_socket", "packet_socket"}

// --- find_domains ---

type findDomains struct{ checker.Base }

func newFindDomains() checker.Module {
	m := &findDomains{checker.Base{
		ModuleName: "find_domains",
		Sev:        checker.SevLow,
		ModSummary: "types used as a process domain",
		ModDesc:    "A type counts as a domain if it carries a configurable domain attribute, is an AV source for a non-filesystem class, is the default type of a process type_transition, or is associated with a non-object_r role (spec.md §4.8).",
	}}
	m.ModOptions = map[string]*checker.Option{
		"domain_attribute": checker.NewOption("domain_attribute", "attribute name(s) that mark a type as a domain", defaultDomainAttributes...),
		"exclude_class":    checker.NewOption("exclude_class", "AV rule classes that do not count toward domain membership", "filesystem"),
	}
	return m
}

// findDomainIDs is the shared implementation find_domains, domain_and_file,
// and domains_wo_roles all call directly rather than through the
// registry, so a dependent module's result reflects the same logic
// without re-resolving factory defaults through checker.New.
func findDomainIDs(pol *policy.Model, domainAttrs, excludeClasses []string) (*checker.Result, error) {
	exclude := make(map[string]bool, len(excludeClasses))
	for _, c := range excludeClasses {
		exclude[c] = true
	}

	result := checker.NewResult()
	add := func(id policy.ID, prefix string) {
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(id)},
			checker.Proof{Element: checker.None, Prefix: prefix})
	}

	for _, attrName := range domainAttrs {
		attrID, ok := pol.IsAttribute(attrName)
		if !ok {
			continue
		}
		members := pol.AttributeMembers(attrID)
		if members == nil {
			continue
		}
		for _, id := range members.Members() {
			add(policy.ID(id), fmt.Sprintf("Has domain attribute %s.", attrName))
		}
	}

	for _, r := range pol.AVRules {
		if r.Kind&policy.KindAllow == 0 {
			continue
		}
		className, err := pol.Classes.NameOf(r.Class)
		if err != nil || exclude[className] {
			continue
		}
		for _, id := range r.Source.Members() {
			add(policy.ID(id), "Is AV rule source for a non-excluded class.")
		}
	}

	processClass, hasProcess := pol.Classes.Lookup("process")
	if hasProcess {
		for _, r := range pol.TERules {
			if r.Kind&policy.KindTypeTransition == 0 || r.Class != processClass {
				continue
			}
			add(r.Default, "Is default type of a process type_transition.")
		}
	}

	for roleID, types := range pol.RoleTypes {
		roleName, err := pol.Roles.NameOf(roleID)
		if err != nil || roleName == "object_r" || types == nil {
			continue
		}
		for _, id := range types.Members() {
			add(policy.ID(id), fmt.Sprintf("Associated with non-object_r role %s.", roleName))
		}
	}

	return result, nil
}

func (m *findDomains) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	return findDomainIDs(pol, m.Option("domain_attribute").Values(), m.Option("exclude_class").Values())
}

// --- find_net_domains ---

type findNetDomains struct{ checker.Base }

func newFindNetDomains() checker.Module {
	m := &findNetDomains{checker.Base{
		ModuleName: "find_net_domains",
		Sev:        checker.SevLow,
		ModSummary: "types treated as a network domain",
		ModDesc:    "A type is a network domain if it is the AV source of an allow rule for one of a configurable set of network object classes (spec.md §4.8).",
	}}
	m.ModOptions = map[string]*checker.Option{
		"network_class": checker.NewOption("network_class", "object classes that mark an allow rule as network-related", defaultNetworkClasses...),
	}
	return m
}

func (m *findNetDomains) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	classes := make(map[string]bool)
	for _, c := range m.Option("network_class").Values() {
		classes[c] = true
	}

	result := checker.NewResult()
	for _, r := range pol.AVRules {
		if r.Kind&policy.KindAllow == 0 {
			continue
		}
		name, err := pol.Classes.NameOf(r.Class)
		if err != nil || !classes[name] {
			continue
		}
		for _, id := range r.Source.Members() {
			result.Add(checker.Element{Kind: checker.ElementType, ID: int(id)},
				checker.Proof{Element: checker.Element{Kind: checker.ElementAVRule, ID: r.ID}, Prefix: "AV source for a network class."})
		}
	}
	return result, nil
}

// --- domains_wo_roles ---

type domainsWoRoles struct{ checker.Base }

func newDomainsWoRoles() checker.Module {
	m := &domainsWoRoles{checker.Base{
		ModuleName: "domains_wo_roles",
		Sev:        checker.SevLow,
		ModSummary: "domains not associated with any role other than object_r",
		ModDesc:    "find_domains filtered by a role query that excludes object_r (spec.md §4.8).",
		ModDeps:    []string{"find_domains"},
	}}
	m.ModOptions = map[string]*checker.Option{
		"domain_attribute": checker.NewOption("domain_attribute", "attribute name(s) that mark a type as a domain", defaultDomainAttributes...),
		"exclude_class":    checker.NewOption("exclude_class", "AV rule classes that do not count toward domain membership", "filesystem"),
	}
	return m
}

func (m *domainsWoRoles) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	domains, err := findDomainIDs(pol, m.Option("domain_attribute").Values(), m.Option("exclude_class").Values())
	if err != nil {
		return nil, err
	}
	objectR, _ := pol.Roles.Lookup("object_r")

	result := checker.NewResult()
	for _, entry := range domains.Entries {
		typeID := policy.ID(entry.Element.ID)
		hasOtherRole := false
		for roleID, types := range pol.RoleTypes {
			if roleID == objectR || types == nil {
				continue
			}
			if types.Test(uint32(typeID)) {
				hasOtherRole = true
				break
			}
		}
		if !hasOtherRole {
			result.Add(checker.Element{Kind: checker.ElementType, ID: entry.Element.ID},
				checker.Proof{Element: checker.None, Prefix: "Domain has no role other than object_r."})
		}
	}
	return result, nil
}

// --- domain_and_file ---

type domainAndFile struct{ checker.Base }

func newDomainAndFile() checker.Module {
	m := &domainAndFile{checker.Base{
		ModuleName: "domain_and_file",
		Sev:        checker.SevLow,
		ModSummary: "types classified as both a domain and a file type",
		ModDesc:    "Intersects find_domains and find_file_types, joining their proofs on the shared type (spec.md §4.8).",
		ModDeps:    []string{"find_domains", "find_file_types"},
	}}
	m.ModOptions = map[string]*checker.Option{
		"domain_attribute": checker.NewOption("domain_attribute", "attribute name(s) that mark a type as a domain", defaultDomainAttributes...),
		"exclude_class":    checker.NewOption("exclude_class", "AV rule classes that do not count toward domain membership", "filesystem"),
		"file_attribute":   checker.NewOption("file_attribute", "attribute name(s) that mark a type as a file type", defaultFileAttributes...),
	}
	return m
}

func (m *domainAndFile) Run(pol *policy.Model, fc *fscontext.List) (*checker.Result, error) {
	domains, err := findDomainIDs(pol, m.Option("domain_attribute").Values(), m.Option("exclude_class").Values())
	if err != nil {
		return nil, err
	}
	files, err := findFileTypeIDs(pol, fc, m.Option("file_attribute").Values())
	if err != nil {
		return nil, err
	}
	fileByID := make(map[int]*checker.Entry, len(files.Entries))
	for _, e := range files.Entries {
		fileByID[e.Element.ID] = e
	}

	result := checker.NewResult()
	for _, domEntry := range domains.Entries {
		fileEntry, ok := fileByID[domEntry.Element.ID]
		if !ok {
			continue
		}
		entry := result.AddEntry(checker.Element{Kind: checker.ElementType, ID: domEntry.Element.ID})
		for _, p := range domEntry.Proofs {
			entry.AddProof(p)
		}
		for _, p := range fileEntry.Proofs {
			entry.AddProof(p)
		}
	}
	return result, nil
}
