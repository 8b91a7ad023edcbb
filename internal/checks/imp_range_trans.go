package checks

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
	"github.com/sepolicy/sechecker/internal/render"
)

func init() {
	checker.Register("imp_range_trans", newImpRangeTrans)
}

type impRangeTrans struct{ checker.Base }

func newImpRangeTrans() checker.Module {
	return &impRangeTrans{checker.Base{
		ModuleName: "imp_range_trans",
		Sev:        checker.SevMed,
		ModSummary: "range transitions that can never fire",
		ModDesc: "For each range_transition: an allow for process:transition (or the class-appropriate creation permission) must exist; " +
			"the source type must hold at least one role besides object_r; and at least one user must hold a range that is a superset of the " +
			"target range while holding one of those roles (spec.md §4.8).",
		ModReqs: []checker.Requirement{checker.Require(checker.ReqMLS)},
	}}
}

func (c *impRangeTrans) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	result := checker.NewResult()
	processClass, _ := pol.Classes.Lookup("process")
	transitionPerm, _ := pol.Permissions.Lookup("transition")

	for _, rt := range pol.RangeTransitions {
		var reasons []string

		if !hasCreatingAllow(pol, rt, processClass, transitionPerm) {
			reasons = append(reasons, "No allow rule grants the required transition/creation permission.")
		}

		roles := rolesOtherThanObjectR(pol, rt.Source)
		if len(roles) == 0 {
			reasons = append(reasons, "Source type has no role other than object_r.")
		} else if !anyUserCoversRange(pol, rt.Range, roles) {
			rngText, err := render.MLSRange(pol, rt.Range)
			if err != nil {
				return nil, err
			}
			reasons = append(reasons, fmt.Sprintf("No user with range %s", rngText))
		}

		for _, reason := range reasons {
			result.Add(checker.Element{Kind: checker.ElementRangeTransition, ID: rt.ID},
				checker.Proof{Element: checker.None, Prefix: reason})
		}
	}
	return result, nil
}

func hasCreatingAllow(pol *policy.Model, rt *policy.RangeTransition, processClass, transitionPerm policy.ID) bool {
	for _, r := range pol.AVRules {
		if r.Kind&policy.KindAllow == 0 || r.Class != rt.Class {
			continue
		}
		if !r.Source.Test(uint32(rt.Source)) || !r.Target.Test(uint32(rt.Target)) {
			continue
		}
		if rt.Class == processClass {
			if r.Perms.Test(uint32(transitionPerm)) {
				return true
			}
			continue
		}
		return true
	}
	return false
}

func rolesOtherThanObjectR(pol *policy.Model, typeID policy.ID) []policy.ID {
	objectR, _ := pol.Roles.Lookup("object_r")
	var roles []policy.ID
	for roleID, types := range pol.RoleTypes {
		if roleID == objectR || types == nil {
			continue
		}
		if types.Test(uint32(typeID)) {
			roles = append(roles, roleID)
		}
	}
	return roles
}

func anyUserCoversRange(pol *policy.Model, target policy.Range, roles []policy.ID) bool {
	for userID, rng := range pol.UserRange {
		if !rng.Contains(target) {
			continue
		}
		userRoles := pol.UserRoles[userID]
		if userRoles == nil {
			continue
		}
		for _, r := range roles {
			if userRoles.Test(uint32(r)) {
				return true
			}
		}
	}
	return false
}
