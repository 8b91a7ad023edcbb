package checks

import (
	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("types_wo_allow", newTypesWoAllow)
}

type typesWoAllow struct{ checker.Base }

func newTypesWoAllow() checker.Module {
	return &typesWoAllow{checker.Base{
		ModuleName: "types_wo_allow",
		Sev:        checker.SevLow,
		ModSummary: "types never appearing in an allow rule",
		ModDesc:    "Set-difference analogous to roles_wo_allow: every type minus those appearing as source or target of an allow rule (spec.md §4.8).",
	}}
}

func (c *typesWoAllow) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	inAllow := make(map[uint32]bool)
	for _, r := range pol.AVRules {
		if r.Kind&policy.KindAllow == 0 {
			continue
		}
		for _, id := range r.Source.Members() {
			inAllow[id] = true
		}
		for _, id := range r.Target.Members() {
			inAllow[id] = true
		}
	}

	result := checker.NewResult()
	pol.Types.Iter(func(id policy.ID, _ string) {
		if pol.IsAttributeID(id) || inAllow[uint32(id)] {
			return
		}
		result.Add(checker.Element{Kind: checker.ElementType, ID: int(id)},
			checker.Proof{Element: checker.None, Prefix: "Type does not appear in any allow rule."})
	})
	return result, nil
}
