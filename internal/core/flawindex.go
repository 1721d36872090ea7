package core

import (
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/config"
	"github.com/arcflow-labs/pocl/internal/flaw"
)

// GetFlaw implements C3 (§4.3): picks one flaw from the plan's four
// chains according to strategy, and sets sc.LastFlawWasStatic when the
// pick is a static-predicate literal open condition (consulted by the
// search driver to deflate its reported generated-plans count). Kinds
// are tried in a fixed priority order — unsafe links first, since an
// unrepaired threat can poison every other refinement; then mutex
// threats; then unexpanded composite steps; open conditions last — and
// the strategy only selects among flaws of the first non-empty kind.
func GetFlaw(sc *SearchContext, plan *Plan, strategy config.FlawSelectionStrategy) (flaw.Flaw, bool) {
	sc.LastFlawWasStatic = false

	if plan.unsafes != nil {
		return pickUnsafe(sc, plan, strategy)
	}
	if plan.mutexThreats != nil {
		return pickMutex(sc, plan, strategy)
	}
	if plan.unexpandedSteps != nil {
		return pickUnexpanded(strategy, plan.unexpandedSteps)
	}
	if plan.openConds != nil {
		return pickOpenCondition(sc, plan, strategy)
	}
	return nil, false
}

func pickUnsafe(sc *SearchContext, plan *Plan, strategy config.FlawSelectionStrategy) (flaw.Flaw, bool) {
	switch strategy {
	case config.StrategyFIFO:
		return lastOf(plan.unsafes), true
	case config.StrategyLeastCost:
		return leastCostOf(plan.unsafes, func(u flaw.Unsafe) int {
			return UnsafeRefinementCount(sc, plan, u, 3)
		})
	default:
		return plan.unsafes.Head, true
	}
}

func pickMutex(sc *SearchContext, plan *Plan, strategy config.FlawSelectionStrategy) (flaw.Flaw, bool) {
	switch strategy {
	case config.StrategyFIFO:
		return lastOf(plan.mutexThreats), true
	case config.StrategyLeastCost:
		return leastCostOf(plan.mutexThreats, func(m flaw.MutexThreat) int {
			if m.Sentinel() {
				return 0
			}
			n := 0
			if MutexSeparable(sc, plan, m) {
				n++
			}
			if MutexDemotable(plan, m) {
				n++
			}
			if MutexPromotable(plan, m) {
				n++
			}
			return n
		})
	default:
		return plan.mutexThreats.Head, true
	}
}

func pickUnexpanded(strategy config.FlawSelectionStrategy, chn *chain.Chain[flaw.UnexpandedStep]) (flaw.Flaw, bool) {
	switch strategy {
	case config.StrategyFIFO:
		return lastOf(chn), true
	default:
		// Least-cost and LIFO agree for this kind: the head (LIFO) is as
		// good a default as any, since counting decomposition options
		// requires a SearchContext this picker does not take — the
		// caller may re-rank via UnexpandedStepRefinementCount directly
		// if it wants least-cost behavior for this kind.
		return chn.Head, true
	}
}

func pickOpenCondition(sc *SearchContext, plan *Plan, strategy config.FlawSelectionStrategy) (flaw.Flaw, bool) {
	var picked flaw.OpenCondition
	var ok bool
	switch strategy {
	case config.StrategyFIFO:
		picked, ok = lastOf(plan.openConds), true
	case config.StrategyLeastCost:
		picked, ok = leastCostOf(plan.openConds, func(o flaw.OpenCondition) int {
			return openConditionCost(sc, plan, o)
		})
	default:
		picked, ok = plan.openConds.Head, true
	}
	if ok && picked.Shape == flaw.ShapeLiteral && sc.Domain.IsStatic(picked.Literal.Atom.Predicate) {
		sc.LastFlawWasStatic = true
	}
	return picked, ok
}

func openConditionCost(sc *SearchContext, plan *Plan, o flaw.OpenCondition) int {
	switch o.Shape {
	case flaw.ShapeLiteral:
		return AddableSteps(sc, plan, o) + ReusableSteps(sc, plan, o)
	case flaw.ShapeDisjunction:
		return len(o.Disjunction.Disjuncts)
	case flaw.ShapeInequality:
		objects := sc.Problem.Objects()
		d1 := plan.bindings.Domain(o.Inequality.Term1, objects)
		d2 := plan.bindings.Domain(o.Inequality.Term2, objects)
		if len(d1) < len(d2) {
			return len(d1)
		}
		return len(d2)
	default:
		return 0
	}
}

func lastOf[T any](c *chain.Chain[T]) T {
	for ; c.Tail != nil; c = c.Tail {
	}
	return c.Head
}

func leastCostOf[T any](c *chain.Chain[T], cost func(T) int) (T, bool) {
	best := c.Head
	bestCost := cost(best)
	for n := c.Tail; n != nil; n = n.Tail {
		if cst := cost(n.Head); cst < bestCost {
			best, bestCost = n.Head, cst
		}
	}
	return best, true
}
