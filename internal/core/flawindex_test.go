package core

import (
	"testing"

	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/config"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFlawPriorityPrefersUnsafeOverEverythingElse(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan := &Plan{
		unsafes:         chain.Cons(flaw.Unsafe{Link: domain.Link{From: 1, To: 2}}, nil),
		mutexThreats:    chain.Cons(flaw.RecomputeMutexSentinel(), nil),
		unexpandedSteps: chain.Cons(flaw.UnexpandedStep{Step: 1}, nil),
		openConds:       chain.Cons(flaw.OpenCondition{Shape: flaw.ShapeLiteral, Step: 1}, nil),
	}

	f, ok := GetFlaw(sc, plan, config.StrategyLIFO)
	require.True(t, ok)
	assert.Equal(t, flaw.KindUnsafe, f.Kind())
}

func TestGetFlawPriorityFallsThroughToOpenConditionLast(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	oc := flaw.OpenCondition{Shape: flaw.ShapeLiteral, Step: 1, Literal: atom("p")}
	plan := &Plan{openConds: chain.Cons(oc, nil)}

	f, ok := GetFlaw(sc, plan, config.StrategyLIFO)
	require.True(t, ok)
	assert.Equal(t, flaw.KindOpenCondition, f.Kind())
}

func TestGetFlawSetsLastFlawWasStaticForStaticPredicate(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0, Static: true}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	oc := flaw.OpenCondition{Shape: flaw.ShapeLiteral, Step: 1, Literal: atom("p")}
	plan := &Plan{openConds: chain.Cons(oc, nil)}

	sc.LastFlawWasStatic = false
	_, ok := GetFlaw(sc, plan, config.StrategyLIFO)
	require.True(t, ok)
	assert.True(t, sc.LastFlawWasStatic)
}

func TestGetFlawEmptyPlanReturnsFalse(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	_, ok := GetFlaw(sc, &Plan{}, config.StrategyLIFO)
	assert.False(t, ok)
}
