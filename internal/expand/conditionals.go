package expand

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/policy"
)

func internCondExpr(m *policy.Model, e *policy.RawCondExpr) *policy.CondExpr {
	if e == nil {
		return nil
	}
	out := &policy.CondExpr{Op: e.Op}
	if e.Op == policy.CondBool {
		out.BoolID = m.Booleans.Intern(e.BoolName)
		return out
	}
	out.Children = make([]*policy.CondExpr, len(e.Children))
	for i, c := range e.Children {
		out.Children[i] = internCondExpr(m, c)
	}
	return out
}

// buildConditionals interns every conditional's boolean expression and
// evaluates it against the image's default boolean values, seeding
// CurrentState (spec.md §3 "conditionals").
func buildConditionals(m *policy.Model, raw policy.RawImage) error {
	for i, rc := range raw.RawConditionals() {
		expr := internCondExpr(m, rc.Expr)
		cond := &policy.Conditional{ID: i, Expr: expr}
		state, err := expr.Evaluate(m.BooleanState)
		if err != nil {
			return err
		}
		cond.CurrentState = state
		m.Conditionals = append(m.Conditionals, cond)
	}
	return nil
}

// SetBoolean updates a boolean's current value and re-evaluates every
// conditional that references it, updating each gated rule's Enabled
// flag — and nothing else: the back-index and rule lists are not
// rebuilt (spec.md §5 "Boolean toggle").
func SetBoolean(m *policy.Model, name string, value bool) error {
	id, ok := m.Booleans.Lookup(name)
	if !ok {
		return fmt.Errorf("%w: boolean %q", policy.ErrLookup, name)
	}
	m.BooleanState[id] = value

	for _, cond := range m.Conditionals {
		referenced := false
		for _, b := range cond.Expr.ReferencedBooleans() {
			if b == id {
				referenced = true
				break
			}
		}
		if !referenced {
			continue
		}
		state, err := cond.Expr.Evaluate(m.BooleanState)
		if err != nil {
			return err
		}
		cond.CurrentState = state
		applyConditionalState(cond)
	}
	return nil
}

func applyConditionalState(cond *policy.Conditional) {
	for _, r := range cond.TrueAVRules {
		r.Enabled = cond.CurrentState
	}
	for _, r := range cond.FalseAVRules {
		r.Enabled = !cond.CurrentState
	}
	for _, r := range cond.TrueTERules {
		r.Enabled = cond.CurrentState
	}
	for _, r := range cond.FalseTERules {
		r.Enabled = !cond.CurrentState
	}
}
