package heuristic

import "github.com/arcflow-labs/pocl/internal/domain"

// PlanFacts is the narrow view of a partial plan the ranking heuristics
// need. internal/core's Plan implements it; defining it here (rather than
// importing core) keeps this package a leaf the core depends on, not the
// reverse.
type PlanFacts interface {
	NumSteps() int
	NumUnsafes() int
	NumOpenConditions() int
	NumMutexThreats() int
	NumUnexpandedSteps() int
	OpenConditionLiterals() []domain.Literal
}

// PlanRank computes the lexicographic rank vector §4.8 describes: lower is
// better, ties broken by later vector components.
type PlanRank interface {
	Rank(plan PlanFacts, weight float64, dom *domain.Def, graph *Graph) []float64
}

// FlawCountRank is the simplest admissible-in-spirit heuristic: total
// outstanding flaws, then step count as a tiebreaker favoring smaller
// plans. It needs no graph and is the default when none is configured.
type FlawCountRank struct{}

func (FlawCountRank) Rank(plan PlanFacts, weight float64, dom *domain.Def, graph *Graph) []float64 {
	flaws := float64(plan.NumUnsafes() + plan.NumOpenConditions() + plan.NumMutexThreats() + plan.NumUnexpandedSteps())
	return []float64{weight * flaws, float64(plan.NumSteps())}
}

// GraphDistanceRank weights outstanding open conditions by their relaxed
// planning-graph distance from the initial state, added to a flat per-flaw
// cost for unsafes/mutex/unexpanded, then breaks ties by step count. A
// literal the graph never discovered a level for costs the graph's
// maxLevel+1; with no graph at all, each open condition costs a flat 1.
type GraphDistanceRank struct{}

func (GraphDistanceRank) Rank(plan PlanFacts, weight float64, dom *domain.Def, graph *Graph) []float64 {
	cost := 0.0
	if graph != nil {
		for _, lit := range plan.OpenConditionLiterals() {
			cost += float64(graph.Distance(lit))
		}
	} else {
		cost += float64(plan.NumOpenConditions())
	}
	cost += float64(plan.NumUnsafes() + plan.NumMutexThreats() + plan.NumUnexpandedSteps())
	return []float64{weight * cost, float64(plan.NumSteps())}
}

// Less implements the lexicographic comparator §4.1/§8 describe: the
// first differing component decides, shorter vectors compare as if padded
// with zeros.
func Less(a, b []float64) bool {
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	for i := 0; i < n; i++ {
		var av, bv float64
		if i < len(a) {
			av = a[i]
		}
		if i < len(b) {
			bv = b[i]
		}
		if av != bv {
			return av < bv
		}
	}
	return false
}
