package polsearch

import (
	"github.com/sepolicy/sechecker/internal/match"
	"github.com/sepolicy/sechecker/internal/policy"
	"github.com/sepolicy/sechecker/internal/query"
)

// Operator enumerates the criterion operators spec.md §4.5 item 2 lists.
// Any operator may be negated via Criterion.Negate.
type Operator int

const (
	OpInclude Operator = iota
	OpExclude
	OpSource
	OpTarget
	OpSourceOrTarget
	OpDefault
	OpClass
	OpPerm
	OpType
	OpRuleType
	OpRangeExact
	OpRangeSub
	OpRangeSuper
	OpRangeOverlap
	OpBoolState
)

// Param is the typed, tagged-union criterion parameter of spec.md §4.5
// item 3 ("string expression, number, rule-kind bitmask, MLS range, set
// of names"). Exactly one field is meaningful per operator; see
// evaluateCriterion for which.
type Param struct {
	Strings  *match.StringExpr
	Names    []string
	Number   int
	RuleKind policy.RuleKind
	Range    policy.Range
	Relation query.Relation
	Bool     bool
}

// Criterion is one operator+parameter test clause.
type Criterion struct {
	Operator Operator
	Negate   bool
	Param    Param
}

func (c Criterion) relation() query.Relation {
	switch c.Operator {
	case OpRangeExact:
		return query.RelExact
	case OpRangeSub:
		return query.RelSub
	case OpRangeSuper:
		return query.RelSuper
	case OpRangeOverlap:
		return query.RelOverlap
	default:
		return query.RelExact
	}
}
