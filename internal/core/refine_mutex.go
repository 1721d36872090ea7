package core

import (
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
)

// RefineMutexThreat implements §4.5.3. The sentinel mutex threat
// (flaw.MutexThreat.Sentinel) triggers a full recomputation pass: the
// plan's mutex-threat chain is discarded and rebuilt from scratch via
// DetectMutexThreats. A real pairwise threat mirrors the unsafe-link
// repertoire — separation, demotion, promotion — keyed on the two
// effects' instants instead of a single link's endpoints, plus the same
// bogus-flaw collapse if the pair no longer threatens.
func RefineMutexThreat(sc *SearchContext, plan *Plan, m flaw.MutexThreat) []*Plan {
	if m.Sentinel() {
		return []*Plan{recomputeMutexThreats(plan)}
	}

	if !MutexStillThreatens(plan, m) {
		return []*Plan{withMutexRemoved(plan, m)}
	}

	var children []*Plan
	if c, ok := separateMutex(sc, plan, m, false); ok {
		children = append(children, c)
	}
	if c, ok := demoteMutex(plan, m, false); ok {
		children = append(children, c)
	}
	if c, ok := promoteMutex(plan, m, false); ok {
		children = append(children, c)
	}
	return children
}

// recomputeMutexThreats drops the sentinel and replaces the plan's
// mutex-threat chain with a freshly scanned one.
func recomputeMutexThreats(plan *Plan) *Plan {
	threats := DetectMutexThreats(plan)
	var chn *chain.Chain[flaw.MutexThreat]
	for _, t := range threats {
		chn = chain.Cons(t, chn)
	}
	cp := *plan
	cp.mutexThreats = chn
	cp.ranked = false
	return &cp
}

// sameMutex identifies a MutexThreat by its two (step, effect) pairs.
func sameMutex(a, b flaw.MutexThreat) bool {
	return a.Step1 == b.Step1 && a.EffectIndex1 == b.EffectIndex1 &&
		a.Step2 == b.Step2 && a.EffectIndex2 == b.EffectIndex2
}

func withMutexRemoved(plan *Plan, m flaw.MutexThreat) *Plan {
	threats, _ := chain.Remove(plan.mutexThreats, func(x flaw.MutexThreat) bool { return sameMutex(x, m) })
	cp := *plan
	cp.mutexThreats = threats
	cp.ranked = false
	return &cp
}

// separateMutex builds the disjunction of inequalities over the two
// effect atoms' unifier, ORed with a universally quantified negation of
// each effect's own condition, and adds it as a new open-condition goal
// scoped to the first effect's step. The two negated-
// condition disjuncts mirror separateUnsafe's single one (§4.5.1): a
// mutex threat has two conditional effects to disarm instead of one
// effect and one link condition.
func separateMutex(sc *SearchContext, plan *Plan, m flaw.MutexThreat, testOnly bool) (*Plan, bool) {
	s1, ok1 := plan.StepByID(m.Step1)
	s2, ok2 := plan.StepByID(m.Step2)
	if !ok1 || !ok2 || m.EffectIndex1 < 0 || m.EffectIndex1 >= len(s1.Action.Effects) ||
		m.EffectIndex2 < 0 || m.EffectIndex2 >= len(s2.Action.Effects) {
		return nil, false
	}
	e1, e2 := s1.Action.Effects[m.EffectIndex1], s2.Action.Effects[m.EffectIndex2]

	cs, ok := plan.bindings.Unifier(e1.Literal.Atom, e2.Literal.Atom)
	if !ok {
		return nil, false
	}
	quantified := make(map[string]bool, len(e1.Parameters)+len(e2.Parameters))
	for _, p := range e1.Parameters {
		quantified[p.Name] = true
	}
	for _, p := range e2.Parameters {
		quantified[p.Name] = true
	}

	disjuncts := make([]domain.Formula, 0, len(cs)+2)
	for _, c := range cs {
		if quantified[c.Term1.Name] || quantified[c.Term2.Name] {
			continue
		}
		disjuncts = append(disjuncts, domain.Inequality{Term1: c.Term1, Term2: c.Term2})
	}
	disjuncts = append(disjuncts,
		domain.Universal{Parameters: e1.Parameters, Body: domain.Negate(e1.Condition)},
		domain.Universal{Parameters: e2.Parameters, Body: domain.Negate(e2.Condition)},
	)
	goal := domain.Or(disjuncts...)

	openConds, numOpenConds, b, ok := AddGoal(sc, plan.openConds, plan.numOpenConds, plan.bindings, goal, m.Step1, testOnly)
	if !ok {
		return nil, false
	}
	if testOnly {
		return nil, true
	}

	threats, _ := chain.Remove(plan.mutexThreats, func(x flaw.MutexThreat) bool { return sameMutex(x, m) })
	cp := *plan
	cp.openConds = openConds
	cp.numOpenConds = numOpenConds
	cp.bindings = b
	cp.mutexThreats = threats
	cp.ranked = false
	return &cp, true
}

func demoteMutex(plan *Plan, m flaw.MutexThreat, testOnly bool) (*Plan, bool) {
	return orderMutex(plan, m, testOnly, true)
}

func promoteMutex(plan *Plan, m flaw.MutexThreat, testOnly bool) (*Plan, bool) {
	return orderMutex(plan, m, testOnly, false)
}

// orderMutex refines the orderings so that effect 1's instant falls
// strictly before effect 2's (demote) or strictly after it (promote).
func orderMutex(plan *Plan, m flaw.MutexThreat, testOnly bool, demote bool) (*Plan, bool) {
	s1, ok1 := plan.StepByID(m.Step1)
	s2, ok2 := plan.StepByID(m.Step2)
	if !ok1 || !ok2 || m.EffectIndex1 < 0 || m.EffectIndex1 >= len(s1.Action.Effects) ||
		m.EffectIndex2 < 0 || m.EffectIndex2 >= len(s2.Action.Effects) {
		return nil, false
	}
	ref1 := domain.StepRef{Step: m.Step1, Time: s1.Action.Effects[m.EffectIndex1].When}
	ref2 := domain.StepRef{Step: m.Step2, Time: s2.Action.Effects[m.EffectIndex2].When}

	before, after := ref2, ref1
	if demote {
		before, after = ref1, ref2
	}
	ord, ok := plan.orderings.Refine(before, after, 0)
	if !ok {
		return nil, false
	}
	if testOnly {
		return nil, true
	}

	threats, _ := chain.Remove(plan.mutexThreats, func(x flaw.MutexThreat) bool { return sameMutex(x, m) })
	cp := *plan
	cp.mutexThreats = threats
	cp.orderings = ord
	cp.ranked = false
	return &cp, true
}

// MutexSeparable, MutexDemotable, and MutexPromotable count refinement
// options without materializing a plan, mirroring Separable/Demotable/
// Promotable for the unsafe-link case.
func MutexSeparable(sc *SearchContext, plan *Plan, m flaw.MutexThreat) bool {
	_, ok := separateMutex(sc, plan, m, true)
	return ok
}

func MutexDemotable(plan *Plan, m flaw.MutexThreat) bool {
	_, ok := demoteMutex(plan, m, true)
	return ok
}

func MutexPromotable(plan *Plan, m flaw.MutexThreat) bool {
	_, ok := promoteMutex(plan, m, true)
	return ok
}
