package checks

import (
	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("find_file_types", newFindFileTypes)
}

var defaultFileAttributes = []string{"file_type"}

type findFileTypes struct{ checker.Base }

func newFindFileTypes() checker.Module {
	m := &findFileTypes{checker.Base{
		ModuleName: "find_file_types",
		Sev:        checker.SevLow,
		ModSummary: "types used as file objects",
		ModDesc:    "A type counts as a file type if it carries a configurable file-type attribute, appears in an allow filesystem associate rule, is the default type of a non-process type_transition, or appears in a file_contexts entry (spec.md §4.8).",
		ModRecs:    []checker.Requirement{checker.Require(checker.ReqFCList)},
	}}
	m.ModOptions = map[string]*checker.Option{
		"file_attribute": checker.NewOption("file_attribute", "attribute name(s) that mark a type as a file type", defaultFileAttributes...),
	}
	return m
}

// findFileTypeIDs is shared with domain_and_file the same way
// findDomainIDs is shared with domains_wo_roles.
func findFileTypeIDs(pol *policy.Model, fc *fscontext.List, fileAttrs []string) (*checker.Result, error) {
	result := checker.NewResult()
	add := func(id policy.ID, prefix string) {
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(id)},
			checker.Proof{Element: checker.None, Prefix: prefix})
	}

	for _, attrName := range fileAttrs {
		attrID, ok := pol.IsAttribute(attrName)
		if !ok {
			continue
		}
		members := pol.AttributeMembers(attrID)
		if members == nil {
			continue
		}
		for _, id := range members.Members() {
			add(policy.ID(id), "Has file-type attribute "+attrName+".")
		}
	}

	fsClass, hasFS := pol.Classes.Lookup("filesystem")
	associate, hasAssociate := pol.Permissions.Lookup("associate")
	if hasFS && hasAssociate {
		for _, r := range pol.AVRules {
			if r.Kind&policy.KindAllow == 0 || r.Class != fsClass || !r.Perms.Test(uint32(associate)) {
				continue
			}
			for _, id := range r.Source.Members() {
				add(policy.ID(id), "Subject of an allow filesystem associate rule.")
			}
			for _, id := range r.Target.Members() {
				add(policy.ID(id), "Object of an allow filesystem associate rule.")
			}
		}
	}

	processClass, hasProcess := pol.Classes.Lookup("process")
	for _, r := range pol.TERules {
		if r.Kind&policy.KindTypeTransition == 0 {
			continue
		}
		if hasProcess && r.Class == processClass {
			continue
		}
		add(r.Default, "Default type of a non-process type_transition.")
	}

	if fc != nil {
		for _, e := range fc.Entries {
			if !e.HasContext || e.Type == "" {
				continue
			}
			id, ok := pol.Types.Lookup(e.Type)
			if !ok {
				continue
			}
			add(id, "Appears in a file_contexts entry.")
		}
	}

	return result, nil
}

func (m *findFileTypes) Run(pol *policy.Model, fc *fscontext.List) (*checker.Result, error) {
	return findFileTypeIDs(pol, fc, m.Option("file_attribute").Values())
}
