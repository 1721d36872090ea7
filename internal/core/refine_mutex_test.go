package core

import (
	"testing"

	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mutexThreatPlan builds a two-step plan whose steps both write to the
// "at" predicate on the same object at their (unordered, hence possibly
// concurrent) end instants, producing exactly one mutex threat.
func mutexThreatPlan() (*Plan, flaw.MutexThreat) {
	s1 := domain.Step{ID: 1, Action: action("goto-a", domain.Tautology, atom("at", "?x"))}
	s2 := domain.Step{ID: 2, Action: action("goto-b", domain.Tautology, atom("at", "?x"))}

	steps := chain.Cons(s1, chain.Cons(s2, nil))
	plan := &Plan{steps: steps, orderings: unorderedOrderings(), bindings: bindings.Empty()}

	threats := DetectMutexThreats(plan)
	if len(threats) != 1 {
		panic("mutexThreatPlan: expected exactly one mutex threat")
	}
	return plan, threats[0]
}

func TestDetectMutexThreatsFindsConcurrentConflictingEffects(t *testing.T) {
	_, m := mutexThreatPlan()
	assert.Equal(t, 1, m.Step1)
	assert.Equal(t, 2, m.Step2)
	assert.False(t, m.Sentinel())
}

func TestRefineMutexThreatSentinelRecomputesFromScratch(t *testing.T) {
	plan, _ := mutexThreatPlan()
	plan.mutexThreats = chain.Cons(flaw.MutexThreat{Step1: 99, Step2: 98}, nil)

	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	children := RefineMutexThreat(sc, plan, flaw.RecomputeMutexSentinel())
	require.Len(t, children, 1)

	var found bool
	for c := children[0].mutexThreats; c != nil; c = c.Tail {
		if c.Head.Step1 == 1 && c.Head.Step2 == 2 {
			found = true
		}
		assert.NotEqual(t, 99, c.Head.Step1)
	}
	assert.True(t, found)
}

// TestRefineMutexThreatProducesNonThreateningChildren checks all three
// repair options. Demotion and promotion resolve the threat immediately
// by reordering, so MutexStillThreatens is false for those children
// right away. Separation instead defers resolution to a new disjunctive
// open condition (the inequality-or-negated-condition goal) that a later
// refinement pass must still pick a branch of, so its child keeps
// re-testing as a threat under the unchanged bindings/orderings until
// that open condition is resolved.
func TestRefineMutexThreatProducesNonThreateningChildren(t *testing.T) {
	plan, m := mutexThreatPlan()
	plan.mutexThreats = chain.Cons(m, nil)

	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	children := RefineMutexThreat(sc, plan, m)
	require.Len(t, children, 3)

	var sawDeferred bool
	for _, c := range children {
		assert.False(t, sameMutexInChain(c.mutexThreats, m))
		if c.numOpenConds > plan.numOpenConds {
			sawDeferred = true
			continue
		}
		assert.False(t, MutexStillThreatens(c, m))
	}
	assert.True(t, sawDeferred, "expected the separation child to defer resolution via a new open condition")
}

func sameMutexInChain(threats *chain.Chain[flaw.MutexThreat], m flaw.MutexThreat) bool {
	for c := threats; c != nil; c = c.Tail {
		if sameMutex(c.Head, m) {
			return true
		}
	}
	return false
}

func TestRefineMutexThreatBogusFlawCollapsesWhenNoLongerThreatened(t *testing.T) {
	plan, m := mutexThreatPlan()
	ord, ok := plan.Orderings().Refine(domain.StepRef{Step: 1, Time: domain.AtEnd}, domain.StepRef{Step: 2, Time: domain.AtEnd}, 0)
	require.True(t, ok)
	plan.orderings = ord
	plan.mutexThreats = chain.Cons(m, nil)

	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	children := RefineMutexThreat(sc, plan, m)
	require.Len(t, children, 1)
	assert.Nil(t, children[0].mutexThreats)
}

func TestMutexDemotableAndPromotableBothHoldWithNoPriorOrdering(t *testing.T) {
	plan, m := mutexThreatPlan()
	assert.True(t, MutexDemotable(plan, m))
	assert.True(t, MutexPromotable(plan, m))
}
