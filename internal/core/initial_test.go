package core

import (
	"testing"

	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMakeInitialPlanTrivialGoalIsComplete(t *testing.T) {
	dom := &domain.Def{Name: "empty-goal"}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan, ok := MakeInitialPlan(sc)
	require.True(t, ok)
	assert.True(t, plan.Complete())
}

func TestMakeInitialPlanUnsatisfiedGoalHasOneOpenCondition(t *testing.T) {
	dom := &domain.Def{
		Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}},
		Actions:    []*domain.Action{action("A", domain.Tautology, atom("p"))},
	}
	prob := &domain.Problem{Domain: dom, Goal: domain.Lit(atom("p"))}
	sc := newTestContext(t, dom, prob)

	plan, ok := MakeInitialPlan(sc)
	require.True(t, ok)
	assert.False(t, plan.Complete())
	assert.Equal(t, 1, plan.NumOpenConditions())
}

func TestMakeInitialPlanContradictoryGoalFails(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Contradiction}
	sc := newTestContext(t, dom, prob)

	_, ok := MakeInitialPlan(sc)
	assert.False(t, ok)
}

func TestMakeInitialPlanSeedsZeroDurationDummySteps(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan, ok := MakeInitialPlan(sc)
	require.True(t, ok)

	makespan, ok := plan.Orderings().Schedule()
	require.True(t, ok)
	assert.Equal(t, 0.0, makespan)
}
