package checks

import (
	"fmt"
	"strings"

	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/checker"
	"github.com/sepolicy/sechecker/internal/fscontext"
	"github.com/sepolicy/sechecker/internal/policy"
)

func init() {
	checker.Register("spurious_audit", newSpuriousAudit)
}

type spuriousAudit struct{ checker.Base }

func newSpuriousAudit() checker.Module {
	return &spuriousAudit{checker.Base{
		ModuleName: "spurious_audit",
		Sev:        checker.SevLow,
		ModSummary: "audit rules with no effect",
		ModDesc:    "Finds a dontaudit whose permissions overlap an allow with the same key, and an auditallow with no covering allow for the same permissions (spec.md §4.8).",
	}}
}

func (c *spuriousAudit) Run(pol *policy.Model, _ *fscontext.List) (*checker.Result, error) {
	allowByKey := make(map[classKey][]*policy.AVRule)
	for _, r := range pol.AVRules {
		if r.Kind&policy.KindAllow != 0 {
			k := keyOfClass(r)
			allowByKey[k] = append(allowByKey[k], r)
		}
	}

	result := checker.NewResult()
	for _, r := range pol.AVRules {
		if r.Kind&policy.DontAuditMask != 0 {
			if err := c.checkDontAudit(pol, r, allowByKey, result); err != nil {
				return nil, err
			}
		}
		if r.Kind&policy.KindAuditAllow != 0 {
			if err := c.checkAuditAllow(r, allowByKey, result); err != nil {
				return nil, err
			}
		}
	}
	return result, nil
}

// classKey extends mountKey with the rule's class, since spurious_audit
// compares rules by (source, target, self, class) rather than mount's
// fixed pair of classes.
type classKey struct {
	mountKey
	class policy.ID
}

func keyOfClass(r *policy.AVRule) classKey {
	return classKey{mountKey: keyOf(r), class: r.Class}
}

func (c *spuriousAudit) checkDontAudit(pol *policy.Model, r *policy.AVRule, allowByKey map[classKey][]*policy.AVRule, result *checker.Result) error {
	for _, allow := range allowByKey[keyOfClass(r)] {
		overlap := allow.Perms.Intersect(r.Perms)
		if overlap.Empty() {
			continue
		}
		names, err := permNames(pol, overlap)
		if err != nil {
			return err
		}
		entry := result.AddEntry(checker.Element{Kind: checker.ElementAVRule, ID: r.ID})
		entry.AddProof(checker.Proof{Element: checker.Element{Kind: checker.ElementAVRule, ID: allow.ID}, Prefix: "Overlapping allow: "})
		entry.AddProof(checker.Proof{Element: checker.None, Prefix: fmt.Sprintf("spurious permissions: { %s }", strings.Join(names, " "))})
	}
	return nil
}

func (c *spuriousAudit) checkAuditAllow(r *policy.AVRule, allowByKey map[classKey][]*policy.AVRule, result *checker.Result) error {
	for _, allow := range allowByKey[keyOfClass(r)] {
		if coversAll(allow.Perms, r.Perms) {
			return nil
		}
	}
	result.Add(checker.Element{Kind: checker.ElementAVRule, ID: r.ID},
		checker.Proof{Element: checker.None, Prefix: "No allow rule covers all audited permissions."})
	return nil
}

func coversAll(allow, audited *bitset.Bitset) bool {
	for _, id := range audited.Members() {
		if !allow.Test(id) {
			return false
		}
	}
	return true
}

func permNames(pol *policy.Model, perms *bitset.Bitset) ([]string, error) {
	names := make([]string, 0, perms.Count())
	for _, id := range perms.Members() {
		name, err := pol.Permissions.NameOf(policy.ID(id))
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
