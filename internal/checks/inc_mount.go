package checks

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("inc_mount", newIncMount)
}

type incMount struct{ checker.Base }

func newIncMount() checker.Module {
	return &incMount{checker.Base{
		ModuleName: "inc_mount",
		Sev:        checker.SevMed,
		ModSummary: "incomplete mount permission pairs",
		ModDesc:    "For every allow S T : filesystem mount, a matching allow S T : dir mounton must exist, and vice versa; either side missing is reported (spec.md §4.8).",
	}}
}

type mountKey struct {
	source, target policy.ID
	self            bool
}

func keyOf(r *policy.AVRule) mountKey {
	return mountKey{source: r.SourceSym, target: r.TargetSym, self: r.Self}
}

func renderSym(pol *policy.Model, sym policy.ID, self bool) (string, error) {
	if self {
		return "self", nil
	}
	return pol.Types.NameOf(sym)
}

func (c *incMount) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	fsClass, hasFS := pol.Classes.Lookup("filesystem")
	dirClass, hasDir := pol.Classes.Lookup("dir")
	mountPerm, hasMount := pol.Permissions.Lookup("mount")
	mountonPerm, hasMounton := pol.Permissions.Lookup("mounton")
	result := checker.NewResult()
	if !hasFS || !hasDir || !hasMount || !hasMounton {
		return result, nil
	}

	mountRules := make(map[mountKey]*policy.AVRule)
	mountonRules := make(map[mountKey]*policy.AVRule)
	for _, r := range pol.AVRules {
		if r.Kind&policy.KindAllow == 0 {
			continue
		}
		switch {
		case r.Class == fsClass && r.Perms.Test(uint32(mountPerm)):
			mountRules[keyOf(r)] = r
		case r.Class == dirClass && r.Perms.Test(uint32(mountonPerm)):
			mountonRules[keyOf(r)] = r
		}
	}

	for key, r := range mountRules {
		if _, ok := mountonRules[key]; ok {
			continue
		}
		missing, err := missingRuleText(pol, key, "dir", "mounton")
		if err != nil {
			return nil, err
		}
		entry := result.AddEntry(checker.Element{Kind: checker.ElementAVRule, ID: r.ID})
		entry.AddProof(checker.Proof{Element: checker.Element{Kind: checker.ElementAVRule, ID: r.ID}, Prefix: "Have: "})
		entry.AddProof(checker.Proof{Element: checker.None, Prefix: "Missing: " + missing})
	}
	for key, r := range mountonRules {
		if _, ok := mountRules[key]; ok {
			continue
		}
		missing, err := missingRuleText(pol, key, "filesystem", "mount")
		if err != nil {
			return nil, err
		}
		entry := result.AddEntry(checker.Element{Kind: checker.ElementAVRule, ID: r.ID})
		entry.AddProof(checker.Proof{Element: checker.Element{Kind: checker.ElementAVRule, ID: r.ID}, Prefix: "Have: "})
		entry.AddProof(checker.Proof{Element: checker.None, Prefix: "Missing: " + missing})
	}
	return result, nil
}

func missingRuleText(pol *policy.Model, key mountKey, class, perm string) (string, error) {
	source, err := renderSym(pol, key.source, false)
	if err != nil {
		return "", err
	}
	target, err := renderSym(pol, key.target, key.self)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("allow %s %s : %s %s;", source, target, class, perm), nil
}
