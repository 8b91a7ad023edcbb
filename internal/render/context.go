// Package render implements the canonical textual rendering spec.md §4.3
// defines for contexts, MLS ranges, and rules (C5/C6). Rendering never
// mutates the model it reads from.
package render

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/policy"
)

// NoContext is the literal string an initial SID with no bound context
// renders as.
const NoContext = "<no context>"

// Context renders ctx as "user:role:type" or, when mls is true and ctx
// carries a range, "user:role:type:range" (spec.md §4.3).
func Context(m *policy.Model, ctx policy.Context) (string, error) {
	user, err := m.Users.NameOf(ctx.User)
	if err != nil {
		return "", err
	}
	role, err := m.Roles.NameOf(ctx.Role)
	if err != nil {
		return "", err
	}
	typ, err := m.Types.NameOf(ctx.Type)
	if err != nil {
		return "", err
	}
	base := fmt.Sprintf("%s:%s:%s", user, role, typ)
	if !ctx.HasRange {
		return base, nil
	}
	rangeStr, err := MLSRange(m, ctx.Range)
	if err != nil {
		return "", err
	}
	return base + ":" + rangeStr, nil
}

// InitialSID renders an initial-SID entry: its bound context, or the
// literal NoContext if unbound (spec.md §4.3, example "Initial SID
// rendering").
func InitialSID(m *policy.Model, entry policy.InitialSIDEntry) (string, error) {
	if entry.Context == nil {
		return NoContext, nil
	}
	return Context(m, *entry.Context)
}

// Level renders a single MLS/MCS level: "sensitivity" when its category
// set is empty, else "sensitivity:cat-list" with contiguous categories
// collapsed into "a.b" runs (spec.md §4.3).
func Level(m *policy.Model, lvl policy.Level) (string, error) {
	sens, err := m.Sensitivities.NameOf(lvl.Sensitivity)
	if err != nil {
		return "", err
	}
	cats := lvl.CategoryMembers()
	if len(cats) == 0 {
		return sens, nil
	}
	names := make([]string, 0, len(cats))
	for _, c := range cats {
		name, err := m.Categories.NameOf(policy.ID(c))
		if err != nil {
			return "", err
		}
		names = append(names, name)
	}
	return sens + ":" + policy.FormatCategoryNames(names), nil
}

// MLSRange renders an MLS range: a single level when low equals high,
// otherwise "low - high" (spec.md §4.3).
func MLSRange(m *policy.Model, r policy.Range) (string, error) {
	low, err := Level(m, r.Low)
	if err != nil {
		return "", err
	}
	if r.Low.Equal(r.High) {
		return low, nil
	}
	high, err := Level(m, r.High)
	if err != nil {
		return "", err
	}
	return low + " - " + high, nil
}

// LineNumberPrefix formats the optional "[      N] " prefix spec.md
// §4.3 describes, right-justified to six digits' width.
func LineNumberPrefix(line uint32, enabled bool) string {
	if !enabled || line == 0 {
		return ""
	}
	return fmt.Sprintf("[%6d] ", line)
}
