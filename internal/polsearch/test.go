package polsearch

import (
	"fmt"

	"github.com/sepolicy/sechecker/internal/bitset"
	"github.com/sepolicy/sechecker/internal/policy"
	"github.com/sepolicy/sechecker/internal/query"
)

// TestKind names one of the test kinds spec.md §4.5 item 2 lists
// examples of ("attributes", "roles", "avrule", "fcentry", "range", ...).
type TestKind int

const (
	TestAVRule TestKind = iota
	TestTERule
	TestRoleAllow
	TestRangeTransition
	TestAttributes
	TestRoles
	TestBoolState
	TestRange
	TestFCEntry
)

// Test is one test clause: a kind plus criteria evaluated conjunctively
// (spec.md §4.5 item 1-2).
type Test struct {
	Kind     TestKind
	Criteria []Criterion
}

// FCCandidate is the minimal surface a file-context entry must expose
// for TestFCEntry to evaluate against it; internal/fscontext.Entry
// satisfies this without polsearch importing that package.
type FCCandidate interface {
	Handle() int
	ContextComponent(which string) (string, bool) // which in {"user","role","type"}
	Range() (policy.Range, bool)
}

// evalContext carries the inputs a single Test evaluation needs besides
// the model itself: the candidate element being considered (for "X"
// placeholder substitution) and, for fcentry tests, the fc-list.
type evalContext struct {
	model         *policy.Model
	candidateKind ElementKind
	candidateID   int
	candidateName string
	fcEntries     []FCCandidate
}

// run evaluates t against ec, returning whether every criterion (for a
// rule/fc-based test: at least one matching rule/entry satisfying every
// criterion) holds, plus the proofs produced.
func (t Test) run(ec evalContext) (bool, []Proof, error) {
	switch t.Kind {
	case TestAVRule:
		return evalAVRuleTest(ec, t.Criteria)
	case TestTERule:
		return evalTERuleTest(ec, t.Criteria)
	case TestRoleAllow:
		return evalRoleAllowTest(ec, t.Criteria)
	case TestRangeTransition:
		return evalRangeTransitionTest(ec, t.Criteria)
	case TestAttributes:
		return evalAttributesTest(ec, t.Criteria)
	case TestRoles:
		return evalRolesTest(ec, t.Criteria)
	case TestBoolState:
		return evalBoolStateTest(ec, t.Criteria)
	case TestRange:
		return evalRangeTest(ec, t.Criteria)
	case TestFCEntry:
		return evalFCEntryTest(ec, t.Criteria)
	default:
		return false, nil, fmt.Errorf("%w: unknown poly-query test kind %d", policy.ErrInput, t.Kind)
	}
}

func nameMatches(m *policy.Model, p Param, name, candidateName string) (bool, error) {
	if p.Strings != nil {
		return p.Strings.Match(name, candidateName)
	}
	for _, n := range p.Names {
		if n == name || n == "X" && candidateName == name {
			return true, nil
		}
	}
	return false, nil
}

func evalAVRuleTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	var proofs []Proof
	for _, r := range m.AVRules {
		ok, err := matchesAVCriteria(m, r, criteria, ec.candidateName)
		if err != nil {
			return false, nil, err
		}
		if ok {
			proofs = append(proofs, Proof{Kind: ElementAVRule, Handle: r.ID, TestKind: TestAVRule})
		}
	}
	return len(proofs) > 0, proofs, nil
}

func matchesAVCriteria(m *policy.Model, r *policy.AVRule, criteria []Criterion, candidateName string) (bool, error) {
	for _, c := range criteria {
		ok, err := matchesRuleCriterion(m, c, r.Source, r.Target, r.Class, r.Kind, r.Perms, policy.Undefined, candidateName)
		if err != nil {
			return false, err
		}
		if ok == c.Negate {
			return false, nil
		}
	}
	return true, nil
}

func evalTERuleTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	var proofs []Proof
	for _, r := range m.TERules {
		ok, err := matchesTECriteria(m, r, criteria, ec.candidateName)
		if err != nil {
			return false, nil, err
		}
		if ok {
			proofs = append(proofs, Proof{Kind: ElementTERule, Handle: r.ID, TestKind: TestTERule})
		}
	}
	return len(proofs) > 0, proofs, nil
}

func matchesTECriteria(m *policy.Model, r *policy.TERule, criteria []Criterion, candidateName string) (bool, error) {
	for _, c := range criteria {
		ok, err := matchesRuleCriterion(m, c, r.Source, r.Target, r.Class, r.Kind, nil, r.Default, candidateName)
		if err != nil {
			return false, err
		}
		if ok == c.Negate {
			return false, nil
		}
	}
	return true, nil
}

// matchesRuleCriterion evaluates one criterion against a rule-shaped
// tuple shared by AV and TE rules (source/target bitsets, class,
// rule-kind bits, optional perm set, optional default type).
func matchesRuleCriterion(m *policy.Model, c Criterion, source, target *bitset.Bitset, class policy.ID, kind policy.RuleKind, perms *bitset.Bitset, defaultType policy.ID, candidateName string) (bool, error) {
	switch c.Operator {
	case OpSource:
		return stringExprOverlapsSet(m, c.Param, source, candidateName)
	case OpTarget:
		return stringExprOverlapsSet(m, c.Param, target, candidateName)
	case OpSourceOrTarget:
		okS, err := stringExprOverlapsSet(m, c.Param, source, candidateName)
		if err != nil {
			return false, err
		}
		if okS {
			return true, nil
		}
		return stringExprOverlapsSet(m, c.Param, target, candidateName)
	case OpClass:
		name, err := m.Classes.NameOf(class)
		if err != nil {
			return false, err
		}
		return nameMatches(m, c.Param, name, candidateName)
	case OpPerm:
		if perms == nil {
			return false, nil
		}
		return permsMatch(m, c.Param, perms)
	case OpInclude:
		if perms == nil {
			return false, nil
		}
		return permsMatch(m, c.Param, perms)
	case OpExclude:
		if perms == nil {
			return true, nil
		}
		ok, err := permsMatch(m, c.Param, perms)
		if err != nil {
			return false, err
		}
		return !ok, nil
	case OpRuleType:
		return kind&c.Param.RuleKind != 0, nil
	case OpDefault:
		if defaultType == policy.Undefined {
			return false, nil
		}
		name, err := m.Types.NameOf(defaultType)
		if err != nil {
			return false, err
		}
		return nameMatches(m, c.Param, name, candidateName)
	default:
		return false, fmt.Errorf("%w: operator not valid for a rule test", policy.ErrInput)
	}
}

// permsMatch reports whether perms satisfies p. With a Names list, every
// named permission must be present in perms (set containment, spec.md
// §4.5 "include (set superset)"). With a string expression, at least one
// permission whose name matches the expression must be present in perms.
func permsMatch(m *policy.Model, p Param, perms *bitset.Bitset) (bool, error) {
	names := p.Names
	if p.Strings != nil {
		// A string-expr permission criterion matches permissions by
		// pattern against the policy's permission table.
		var matched []string
		found := false
		m.Permissions.Iter(func(id policy.ID, name string) {
			ok, err := p.Strings.Match(name, "")
			if err != nil || !ok {
				return
			}
			matched = append(matched, name)
			if perms.Test(uint32(id)) {
				found = true
			}
		})
		if len(matched) == 0 {
			return false, nil
		}
		return found, nil
	}
	for _, n := range names {
		id, ok := m.Permissions.Lookup(n)
		if !ok || !perms.Test(uint32(id)) {
			return false, nil
		}
	}
	return len(names) > 0, nil
}

func stringExprOverlapsSet(m *policy.Model, p Param, set *bitset.Bitset, candidateName string) (bool, error) {
	if set == nil {
		return false, nil
	}
	for _, id := range set.Members() {
		name, err := m.Types.NameOf(policy.ID(id))
		if err != nil {
			continue
		}
		ok, err := nameMatches(m, p, name, candidateName)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func evalRoleAllowTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	var proofs []Proof
	for _, r := range m.RoleAllows {
		ok := true
		for _, c := range criteria {
			var matched bool
			var err error
			switch c.Operator {
			case OpSource:
				matched, err = roleNameMatches(m, c.Param, r.Source, ec.candidateName)
			case OpTarget:
				matched, err = roleNameMatches(m, c.Param, r.Target, ec.candidateName)
			case OpSourceOrTarget:
				matched, err = roleNameMatches(m, c.Param, r.Source, ec.candidateName)
				if !matched && err == nil {
					matched, err = roleNameMatches(m, c.Param, r.Target, ec.candidateName)
				}
			default:
				err = fmt.Errorf("%w: operator not valid for a role_allow test", policy.ErrInput)
			}
			if err != nil {
				return false, nil, err
			}
			if matched == c.Negate {
				ok = false
				break
			}
		}
		if ok {
			proofs = append(proofs, Proof{Kind: ElementRoleAllow, Handle: r.ID, TestKind: TestRoleAllow})
		}
	}
	return len(proofs) > 0, proofs, nil
}

func roleNameMatches(m *policy.Model, p Param, role policy.ID, candidateName string) (bool, error) {
	name, err := m.Roles.NameOf(role)
	if err != nil {
		return false, err
	}
	return nameMatches(m, p, name, candidateName)
}

func evalRangeTransitionTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	var proofs []Proof
	for _, r := range m.RangeTransitions {
		ok := true
		for _, c := range criteria {
			var matched bool
			var err error
			switch c.Operator {
			case OpSource:
				matched, err = typeNameMatches(m, c.Param, r.Source, ec.candidateName)
			case OpTarget:
				matched, err = typeNameMatches(m, c.Param, r.Target, ec.candidateName)
			case OpClass:
				var name string
				name, err = m.Classes.NameOf(r.Class)
				if err == nil {
					matched, err = nameMatches(m, c.Param, name, ec.candidateName)
				}
			case OpRangeExact, OpRangeSub, OpRangeSuper, OpRangeOverlap:
				filter := rangeFilter(c)
				matched = filter.Matches(r.Range)
			default:
				err = fmt.Errorf("%w: operator not valid for a range_transition test", policy.ErrInput)
			}
			if err != nil {
				return false, nil, err
			}
			if matched == c.Negate {
				ok = false
				break
			}
		}
		if ok {
			proofs = append(proofs, Proof{Kind: ElementRangeTransition, Handle: r.ID, TestKind: TestRangeTransition})
		}
	}
	return len(proofs) > 0, proofs, nil
}

func typeNameMatches(m *policy.Model, p Param, t policy.ID, candidateName string) (bool, error) {
	name, err := m.Types.NameOf(t)
	if err != nil {
		return false, err
	}
	return nameMatches(m, p, name, candidateName)
}

func evalAttributesTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	if ec.candidateKind != ElementType {
		return false, nil, nil
	}
	attrs := m.TypeAttributes(policy.ID(ec.candidateID))
	var proofs []Proof
	for _, c := range criteria {
		var wantAny bool
		var matchedIDs []policy.ID
		if attrs != nil {
			for _, id := range attrs.Members() {
				name, err := m.Types.NameOf(policy.ID(id))
				if err != nil {
					continue
				}
				ok, err := nameMatches(m, c.Param, name, ec.candidateName)
				if err != nil {
					return false, nil, err
				}
				if ok {
					matchedIDs = append(matchedIDs, policy.ID(id))
				}
			}
		}
		wantAny = len(matchedIDs) > 0
		switch c.Operator {
		case OpInclude:
			if wantAny == c.Negate {
				return false, nil, nil
			}
		case OpExclude:
			if (!wantAny) == c.Negate {
				return false, nil, nil
			}
		default:
			return false, nil, fmt.Errorf("%w: operator not valid for an attributes test", policy.ErrInput)
		}
		for _, id := range matchedIDs {
			proofs = append(proofs, Proof{Kind: ElementAttribute, Handle: int(id), TestKind: TestAttributes})
		}
	}
	return true, proofs, nil
}

func evalRolesTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	var roleSet *bitset.Bitset
	switch ec.candidateKind {
	case ElementUser:
		roleSet = m.UserRoles[policy.ID(ec.candidateID)]
	case ElementType:
		rs := bitset.New(m.Roles.Count() + 1)
		any := false
		for roleID, types := range m.RoleTypes {
			if types != nil && types.Test(uint32(ec.candidateID)) {
				rs.Set(uint32(roleID))
				any = true
			}
		}
		if any {
			roleSet = rs
		}
	default:
		return false, nil, nil
	}
	var proofs []Proof
	matched := true
	for _, c := range criteria {
		var has bool
		if roleSet != nil {
			for _, id := range roleSet.Members() {
				name, err := m.Roles.NameOf(policy.ID(id))
				if err != nil {
					continue
				}
				ok, err := nameMatches(m, c.Param, name, ec.candidateName)
				if err != nil {
					return false, nil, err
				}
				if ok {
					has = true
					proofs = append(proofs, Proof{Kind: ElementRole, Handle: int(id), TestKind: TestRoles})
				}
			}
		}
		switch c.Operator {
		case OpInclude:
			if has == c.Negate {
				matched = false
			}
		case OpExclude:
			if (!has) == c.Negate {
				matched = false
			}
		default:
			return false, nil, fmt.Errorf("%w: operator not valid for a roles test", policy.ErrInput)
		}
	}
	return matched, proofs, nil
}

func evalBoolStateTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	if ec.candidateKind != ElementBool {
		return false, nil, nil
	}
	for _, c := range criteria {
		if c.Operator != OpBoolState {
			return false, nil, fmt.Errorf("%w: operator not valid for a bool_state test", policy.ErrInput)
		}
		state := m.BooleanState[policy.ID(ec.candidateID)]
		if (state == c.Param.Bool) == c.Negate {
			return false, nil, nil
		}
	}
	return true, []Proof{{Kind: ElementBool, Handle: ec.candidateID, TestKind: TestBoolState}}, nil
}

func evalRangeTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	m := ec.model
	if ec.candidateKind != ElementUser {
		return false, nil, nil
	}
	rng, ok := m.UserRange[policy.ID(ec.candidateID)]
	if !ok {
		return false, nil, nil
	}
	for _, c := range criteria {
		filter := rangeFilter(c)
		matched := filter.Matches(rng)
		if matched == c.Negate {
			return false, nil, nil
		}
	}
	return true, []Proof{{Kind: ElementUser, Handle: ec.candidateID, TestKind: TestRange}}, nil
}

func evalFCEntryTest(ec evalContext, criteria []Criterion) (bool, []Proof, error) {
	var proofs []Proof
	for _, entry := range ec.fcEntries {
		ok := true
		for _, c := range criteria {
			var comp string
			var present bool
			switch c.Operator {
			case OpSource, OpTarget, OpSourceOrTarget, OpType:
				comp, present = entry.ContextComponent("type")
			default:
				ok = false
			}
			if !ok {
				break
			}
			if !present {
				if !c.Negate {
					ok = false
				}
				break
			}
			matched, err := nameMatches(nil, c.Param, comp, ec.candidateName)
			if err != nil {
				return false, nil, err
			}
			if matched == c.Negate {
				ok = false
				break
			}
		}
		if ok {
			proofs = append(proofs, Proof{Kind: ElementFCEntry, Handle: entry.Handle(), TestKind: TestFCEntry})
		}
	}
	return len(proofs) > 0, proofs, nil
}

func rangeFilter(c Criterion) query.RangeFilter {
	return query.RangeFilter{Range: c.Param.Range, Relation: c.relation()}
}
