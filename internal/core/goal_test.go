package core

import (
	"testing"

	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddGoalLiteralProducesOneOpenCondition(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	oc, n, _, ok := AddGoal(sc, nil, 0, bindings.Empty(), domain.Lit(atom("p")), 1, false)
	require.True(t, ok)
	assert.Equal(t, 1, n)
	require.NotNil(t, oc)
	assert.Equal(t, flaw.ShapeLiteral, oc.Head.Shape)
	assert.Equal(t, 1, oc.Head.Step)
}

func TestAddGoalStripsStaticPrecondition(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0, Static: true}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)
	sc.Parameters.StripStaticPreconditions = true

	oc, n, _, ok := AddGoal(sc, nil, 0, bindings.Empty(), domain.Lit(atom("p")), 1, false)
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Nil(t, oc)
}

func TestAddGoalConjunctionOrdersByDefault(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}, {Name: "q", Arity: 0}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	f := domain.And(domain.Lit(atom("p")), domain.Lit(atom("q")))
	oc, n, _, ok := AddGoal(sc, nil, 0, bindings.Empty(), f, 1, false)
	require.True(t, ok)
	assert.Equal(t, 2, n)
	require.NotNil(t, oc)
	require.NotNil(t, oc.Tail)
	assert.Nil(t, oc.Tail.Tail)
}

func TestAddGoalDisjunctionProducesOneDisjunctiveFlaw(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}, {Name: "q", Arity: 0}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	f := domain.Or(domain.Lit(atom("p")), domain.Lit(atom("q")))
	oc, n, _, ok := AddGoal(sc, nil, 0, bindings.Empty(), f, 1, false)
	require.True(t, ok)
	assert.Equal(t, 1, n)
	require.NotNil(t, oc)
	assert.Equal(t, flaw.ShapeDisjunction, oc.Head.Shape)
}

func TestAddGoalInequalityDefaultAddsBindingConstraint(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	x := domain.Var("?x")
	oc, _, b, ok := AddGoal(sc, nil, 0, bindings.Empty(), domain.Inequality{Term1: x, Term2: domain.Obj("bob")}, 1, false)
	require.True(t, ok)
	assert.Nil(t, oc)

	_, ok = b.Unify(x, domain.Obj("bob"))
	assert.False(t, ok)
}

func TestAddGoalContradictionFails(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	_, _, _, ok := AddGoal(sc, nil, 0, bindings.Empty(), domain.Contradiction, 1, false)
	assert.False(t, ok)
}

func TestAddGoalTestOnlyDoesNotMaterializeChain(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	oc, n, _, ok := AddGoal(sc, nil, 0, bindings.Empty(), domain.Lit(atom("p")), 1, true)
	require.True(t, ok)
	assert.Equal(t, 1, n)
	assert.Nil(t, oc)
}
