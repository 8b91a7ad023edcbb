package checks

import (
	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("attribs_wo_types", newAttribsWoTypes)
}

type attribsWoTypes struct{ checker.Base }

func newAttribsWoTypes() checker.Module {
	return &attribsWoTypes{checker.Base{
		ModuleName: "attribs_wo_types",
		Sev:        checker.SevLow,
		ModSummary: "attributes with an empty member set",
		ModDesc:    "Finds every attribute declared in the policy that has no member types (spec.md §4.8).",
		ModReqs:    []checker.Requirement{checker.Require(checker.ReqAttributeNames)},
	}}
}

func (c *attribsWoTypes) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	for _, id := range pol.AttributeIDs.Members() {
		members := pol.AttributeMembers(policy.ID(id))
		if members == nil || members.Empty() {
			result.Add(checker.Element{Kind: checker.ElementAttribute, ID: int(id)},
				checker.Proof{Element: checker.None, Prefix: "Attribute has no member types."})
		}
	}
	return result, nil
}
