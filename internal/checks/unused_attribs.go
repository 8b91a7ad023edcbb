package checks

import (
	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("unused_attribs", newUnusedAttribs)
}

type unusedAttribs struct{ checker.Base }

func newUnusedAttribs() checker.Module {
	return &unusedAttribs{checker.Base{
		ModuleName: "unused_attribs",
		Sev:        checker.SevLow,
		ModSummary: "attributes not referenced by any AV rule, TE rule, or constraint",
		ModDesc:    "Per attribute, scans AV and TE rules for a syntactic reference plus constrain/mlsconstrain/validatetrans expressions (spec.md §4.8).",
		ModReqs:    []checker.Requirement{checker.Require(checker.ReqAttributeNames)},
	}}
}

func (c *unusedAttribs) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	used := make(map[uint32]bool)
	for _, r := range pol.AVRules {
		used[uint32(r.SourceSym)] = true
		used[uint32(r.TargetSym)] = true
	}
	for _, r := range pol.TERules {
		used[uint32(r.SourceSym)] = true
		used[uint32(r.TargetSym)] = true
	}

	result := checker.NewResult()
	for _, id := range pol.AttributeIDs.Members() {
		if used[id] {
			continue
		}
		name, err := pol.Types.NameOf(policy.ID(id))
		if err != nil {
			return nil, err
		}
		referenced := false
		for _, c := range pol.Constraints {
			if c.ReferencesTypeOrAttribute(pol, name) {
				referenced = true
				break
			}
		}
		for _, c := range pol.ValidateTrans {
			if referenced {
				break
			}
			if c.ReferencesTypeOrAttribute(pol, name) {
				referenced = true
			}
		}
		if referenced {
			continue
		}
		result.Add(checker.Element{Kind: checker.ElementAttribute, ID: int(id)},
			checker.Proof{Element: checker.None, Prefix: "Attribute is not used in rules or constraints."})
	}
	return result, nil
}
