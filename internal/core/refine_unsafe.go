package core

import (
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
	"github.com/arcflow-labs/pocl/internal/ordering"
)

// RefineUnsafe implements §4.5.1: up to three children repair a
// threatened link by separation, demotion, or promotion, or — if the
// threat no longer holds under the plan's current orderings/bindings — a
// single bogus-flaw-collapse child with the threat simply dropped.
func RefineUnsafe(sc *SearchContext, plan *Plan, u flaw.Unsafe) []*Plan {
	if !StillThreatens(plan, u) {
		return []*Plan{withUnsafeRemoved(plan, u)}
	}

	var children []*Plan
	if c, ok := separateUnsafe(sc, plan, u, false); ok {
		children = append(children, c)
	}
	if c, ok := demoteUnsafe(plan, u, false); ok {
		children = append(children, c)
	}
	if c, ok := promoteUnsafe(plan, u, false); ok {
		children = append(children, c)
	}
	return children
}

// Separable, Demotable, and Promotable count refinement options without
// materializing a plan, for the unsafe_refinements counting path
// flaw-selection strategies use (§4.5.1).
func Separable(sc *SearchContext, plan *Plan, u flaw.Unsafe) bool {
	_, ok := separateUnsafe(sc, plan, u, true)
	return ok
}

func Demotable(plan *Plan, u flaw.Unsafe) bool {
	_, ok := demoteUnsafe(plan, u, true)
	return ok
}

func Promotable(plan *Plan, u flaw.Unsafe) bool {
	_, ok := promoteUnsafe(plan, u, true)
	return ok
}

// UnsafeRefinementCount implements unsafe_refinements(...): the number of
// the three repair options currently available for u, early-exiting once
// the running total exceeds limit.
func UnsafeRefinementCount(sc *SearchContext, plan *Plan, u flaw.Unsafe, limit int) int {
	n := 0
	if Separable(sc, plan, u) {
		n++
	}
	if n > limit {
		return n
	}
	if Demotable(plan, u) {
		n++
	}
	if n > limit {
		return n
	}
	if Promotable(plan, u) {
		n++
	}
	return n
}

// sameUnsafe identifies an Unsafe flaw by its threatening (step, effect)
// pair and the link's endpoints — Unsafe is not comparable with == since
// Link.Condition.Atom carries a slice of arguments.
func sameUnsafe(a, b flaw.Unsafe) bool {
	return a.ThreateningStep == b.ThreateningStep && a.EffectIndex == b.EffectIndex &&
		a.Link.From == b.Link.From && a.Link.To == b.Link.To &&
		a.Link.FromTime == b.Link.FromTime && a.Link.ToTime == b.Link.ToTime
}

func withUnsafeRemoved(plan *Plan, u flaw.Unsafe) *Plan {
	unsafes, _ := chain.Remove(plan.unsafes, func(x flaw.Unsafe) bool { return sameUnsafe(x, u) })
	cp := *plan
	cp.unsafes = unsafes
	cp.numUnsafes = plan.numUnsafes - 1
	cp.ranked = false
	return &cp
}

// separateUnsafe builds the disjunction of inequalities over u's unifier
// (excluding the effect's own quantified variables), ORed with a
// universally quantified negation of the effect's condition, and adds it
// as a new open-condition goal scoped to the threatening step.
func separateUnsafe(sc *SearchContext, plan *Plan, u flaw.Unsafe, testOnly bool) (*Plan, bool) {
	step, ok := plan.StepByID(u.ThreateningStep)
	if !ok || u.EffectIndex < 0 || u.EffectIndex >= len(step.Action.Effects) {
		return nil, false
	}
	eff := step.Action.Effects[u.EffectIndex]

	cs, ok := plan.bindings.Unifier(eff.Literal.Atom, u.Link.Condition.Atom)
	if !ok {
		return nil, false
	}
	quantified := make(map[string]bool, len(eff.Parameters))
	for _, p := range eff.Parameters {
		quantified[p.Name] = true
	}

	disjuncts := make([]domain.Formula, 0, len(cs)+1)
	for _, c := range cs {
		if quantified[c.Term1.Name] || quantified[c.Term2.Name] {
			continue
		}
		disjuncts = append(disjuncts, domain.Inequality{Term1: c.Term1, Term2: c.Term2})
	}
	disjuncts = append(disjuncts, domain.Universal{Parameters: eff.Parameters, Body: domain.Negate(eff.Condition)})
	goal := domain.Or(disjuncts...)

	openConds, numOpenConds, b, ok := AddGoal(sc, plan.openConds, plan.numOpenConds, plan.bindings, goal, u.ThreateningStep, testOnly)
	if !ok {
		return nil, false
	}
	if testOnly {
		return nil, true
	}

	unsafes, _ := chain.Remove(plan.unsafes, func(x flaw.Unsafe) bool { return sameUnsafe(x, u) })
	cp := *plan
	cp.openConds = openConds
	cp.numOpenConds = numOpenConds
	cp.bindings = b
	cp.unsafes = unsafes
	cp.numUnsafes = plan.numUnsafes - 1
	cp.ranked = false
	return &cp, true
}

func demoteUnsafe(plan *Plan, u flaw.Unsafe, testOnly bool) (*Plan, bool) {
	before := domain.StepRef{Step: u.ThreateningStep, Time: u.EffectTime}
	after := domain.StepRef{Step: u.Link.From, Time: u.Link.FromTime}
	ord, ok := plan.orderings.Refine(before, after, 0)
	if !ok {
		return nil, false
	}
	if testOnly {
		return nil, true
	}
	return withUnsafeRemovedAndOrderings(plan, u, ord), true
}

func promoteUnsafe(plan *Plan, u flaw.Unsafe, testOnly bool) (*Plan, bool) {
	before := domain.StepRef{Step: u.Link.To, Time: u.Link.ToTime}
	after := domain.StepRef{Step: u.ThreateningStep, Time: u.EffectTime}
	ord, ok := plan.orderings.Refine(before, after, 0)
	if !ok {
		return nil, false
	}
	if testOnly {
		return nil, true
	}
	return withUnsafeRemovedAndOrderings(plan, u, ord), true
}

func withUnsafeRemovedAndOrderings(plan *Plan, u flaw.Unsafe, ord *ordering.Orderings) *Plan {
	unsafes, _ := chain.Remove(plan.unsafes, func(x flaw.Unsafe) bool { return sameUnsafe(x, u) })
	cp := *plan
	cp.unsafes = unsafes
	cp.numUnsafes = plan.numUnsafes - 1
	cp.orderings = ord
	cp.ranked = false
	return &cp
}
