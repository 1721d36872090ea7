package core

import (
	"testing"

	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstantiateGroundsUnboundParameter(t *testing.T) {
	a := action("goto", domain.Tautology, atom("at", "?x"))
	a.Parameters = []domain.Term{domain.Var("?x")}
	step := domain.Step{ID: 1, Action: a}

	plan := &Plan{steps: chain.Cons(step, nil), orderings: unorderedOrderings(), bindings: bindings.Empty()}

	dom := &domain.Def{}
	prob := &domain.Problem{
		Domain:        dom,
		Goal:          domain.Tautology,
		ObjectsByType: map[string][]domain.Term{"": {domain.Obj("loc-a")}},
	}
	sc := newTestContext(t, dom, prob)

	grounded, ok := Instantiate(sc, plan)
	require.True(t, ok)
	val, ok := grounded.Bindings().Value(domain.Var("?x"))
	require.True(t, ok)
	assert.Equal(t, "loc-a", val.Name)
}

func TestInstantiateFailsWithNoCompatibleObject(t *testing.T) {
	a := action("goto", domain.Tautology, atom("at", "?x"))
	a.Parameters = []domain.Term{domain.Var("?x")}
	step := domain.Step{ID: 1, Action: a}

	plan := &Plan{steps: chain.Cons(step, nil), orderings: unorderedOrderings(), bindings: bindings.Empty()}

	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	_, ok := Instantiate(sc, plan)
	assert.False(t, ok, "no objects in the problem's constant table leaves ?x with nothing to bind to")
}

func TestInstantiateNoOpWhenAlreadyGround(t *testing.T) {
	a := action("goto", domain.Tautology, atom("at", "loc-a"))
	step := domain.Step{ID: 1, Action: a}

	plan := &Plan{steps: chain.Cons(step, nil), orderings: unorderedOrderings(), bindings: bindings.Empty()}

	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	grounded, ok := Instantiate(sc, plan)
	require.True(t, ok)
	assert.Same(t, plan, grounded)
}

func TestInstantiateBacktracksAcrossSteps(t *testing.T) {
	a1 := action("goto-a", domain.Tautology, atom("at", "?x"))
	a1.Parameters = []domain.Term{domain.Var("?x")}
	a2 := action("goto-b", domain.Tautology, atom("at", "?y"))
	a2.Parameters = []domain.Term{domain.Var("?y")}

	s1 := domain.Step{ID: 1, Action: a1}
	s2 := domain.Step{ID: 2, Action: a2}

	b, ok := bindings.Empty().Add([]bindings.Constraint{bindings.NotEqual(domain.Var("?x"), domain.Var("?y"))})
	require.True(t, ok)

	plan := &Plan{steps: chain.Cons(s1, chain.Cons(s2, nil)), orderings: unorderedOrderings(), bindings: b}

	dom := &domain.Def{}
	prob := &domain.Problem{
		Domain:        dom,
		Goal:          domain.Tautology,
		ObjectsByType: map[string][]domain.Term{"": {domain.Obj("loc-a"), domain.Obj("loc-b")}},
	}
	sc := newTestContext(t, dom, prob)

	grounded, ok := Instantiate(sc, plan)
	require.True(t, ok)
	vx, _ := grounded.Bindings().Value(domain.Var("?x"))
	vy, _ := grounded.Bindings().Value(domain.Var("?y"))
	assert.NotEqual(t, vx.Name, vy.Name)
}
