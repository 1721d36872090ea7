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

// TestRefineOpenConditionAddsNewAchievingStep exercises the add-step
// family: a literal open condition with no existing step achieving it,
// but one action in the domain that does, produces exactly one new-step
// child.
func TestRefineOpenConditionAddsNewAchievingStep(t *testing.T) {
	dom := &domain.Def{
		Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}},
		Actions:    []*domain.Action{action("A", domain.Tautology, atom("p"))},
	}
	prob := &domain.Problem{Domain: dom, Goal: domain.Lit(atom("p"))}
	sc := newTestContext(t, dom, prob)

	initial, ok := MakeInitialPlan(sc)
	require.True(t, ok)
	require.Equal(t, 1, initial.NumOpenConditions())
	oc := initial.OpenConds().Head

	assert.Equal(t, 1, AddableSteps(sc, initial, oc))
	assert.Equal(t, 0, ReusableSteps(sc, initial, oc))

	children := RefineOpenCondition(sc, initial, oc)
	require.Len(t, children, 1)
	child := children[0]
	assert.Equal(t, 1, child.NumSteps())
	assert.Equal(t, 1, child.NumLinks())
	assert.Equal(t, 0, child.NumOpenConditions())
}

// TestRefineOpenConditionReusesExistingStep exercises the reuse-step
// family: an existing, orderable-before step already carries the
// achieving effect, and no domain action is registered to add a fresh
// one, so the open condition resolves by linking to the existing step.
func TestRefineOpenConditionReusesExistingStep(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	existing := domain.Step{ID: 7, Action: action("A", domain.Tautology, atom("p"))}
	goalStep := domain.Step{ID: domain.GoalStepID, Action: action("<goal>", domain.Tautology)}
	oc := flaw.OpenCondition{Shape: flaw.ShapeLiteral, Step: domain.GoalStepID, Time: domain.AtStart, Literal: atom("p")}

	plan := &Plan{
		steps:        chain.Cons(goalStep, chain.Cons(existing, nil)),
		orderings:    unorderedOrderings(),
		bindings:     bindings.Empty(),
		openConds:    chain.Cons(oc, nil),
		numOpenConds: 1,
	}

	assert.Equal(t, 0, AddableSteps(sc, plan, oc))
	assert.Equal(t, 1, ReusableSteps(sc, plan, oc))

	children := RefineOpenCondition(sc, plan, oc)
	require.Len(t, children, 1)
	child := children[0]
	assert.Equal(t, 0, child.NumSteps(), "reuse must not introduce a new step")
	assert.Equal(t, 1, child.NumLinks())
	assert.Equal(t, existing.ID, child.Links().Head.From)
	assert.Equal(t, 0, child.NumOpenConditions())
}

// TestDisjunctionChildrenOneChildPerDisjunct exercises the Disjunction
// case: each disjunct of an "(or p q)" open condition spawns its own
// child carrying that disjunct as a fresh literal open condition.
func TestDisjunctionChildrenOneChildPerDisjunct(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 0}, {Name: "q", Arity: 0}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	disj := domain.Or(domain.Lit(atom("p")), domain.Lit(atom("q"))).(domain.Disjunction)
	oc := flaw.OpenCondition{Shape: flaw.ShapeDisjunction, Step: domain.GoalStepID, Time: domain.AtStart, Disjunction: disj}

	plan := &Plan{
		orderings:    unorderedOrderings(),
		bindings:     bindings.Empty(),
		openConds:    chain.Cons(oc, nil),
		numOpenConds: 1,
	}

	children := RefineOpenCondition(sc, plan, oc)
	require.Len(t, children, 2)

	seen := make(map[string]bool)
	for _, c := range children {
		require.Equal(t, 1, c.NumOpenConditions())
		seen[c.OpenConds().Head.Literal.Atom.Predicate] = true
	}
	assert.True(t, seen["p"])
	assert.True(t, seen["q"])
}

// TestInequalityChildrenBranchesOverCandidateObjects exercises the
// Inequality case: with both terms unbound and an equal-size object
// domain, the smaller-domain tie-break leaves term1 as the branch
// variable, producing one child per object with term1 bound and term2
// merely disequated.
func TestInequalityChildrenBranchesOverCandidateObjects(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{
		Domain:        dom,
		Goal:          domain.Tautology,
		ObjectsByType: map[string][]domain.Term{"": {domain.Obj("alice"), domain.Obj("bob")}},
	}
	sc := newTestContext(t, dom, prob)

	ineq := domain.Inequality{Term1: domain.Var("?x"), Term2: domain.Var("?y")}
	oc := flaw.OpenCondition{Shape: flaw.ShapeInequality, Step: domain.GoalStepID, Time: domain.AtStart, Inequality: ineq}

	plan := &Plan{
		orderings:    unorderedOrderings(),
		bindings:     bindings.Empty(),
		openConds:    chain.Cons(oc, nil),
		numOpenConds: 1,
	}

	children := RefineOpenCondition(sc, plan, oc)
	require.Len(t, children, 2)

	bound := make(map[string]bool)
	for _, c := range children {
		assert.Equal(t, 0, c.NumOpenConditions())
		val, ok := c.Bindings().Value(domain.Var("?x"))
		require.True(t, ok, "the branch variable must be bound in every child")
		bound[val.Name] = true
		_, yOk := c.Bindings().Value(domain.Var("?y"))
		assert.False(t, yOk, "the other term is only disequated, not bound")
	}
	assert.True(t, bound["alice"])
	assert.True(t, bound["bob"])
}

// TestClosedWorldLinkSeparatesFromInitialFact exercises new_cw_link: a
// negated open condition over a predicate the initial state asserts for a
// ground object resolves by linking from the initial step and disequating
// the open condition's free argument from that object.
func TestClosedWorldLinkSeparatesFromInitialFact(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 1}}}
	prob := &domain.Problem{
		Domain: dom,
		Goal:   domain.Tautology,
		Init:   []domain.Literal{atom("p", "obj1")},
	}
	sc := newTestContext(t, dom, prob)

	initial, ok := MakeInitialPlan(sc)
	require.True(t, ok)
	require.Equal(t, 0, initial.NumOpenConditions())

	negated := atom("p", "?x")
	negated.Negated = true
	oc := flaw.OpenCondition{Shape: flaw.ShapeLiteral, Step: domain.GoalStepID, Time: domain.AtStart, Literal: negated}

	cp := *initial
	cp.openConds = chain.Cons(oc, initial.openConds)
	cp.numOpenConds = initial.numOpenConds + 1

	child, ok := closedWorldLink(sc, &cp, oc, false)
	require.True(t, ok)
	assert.Equal(t, 0, child.NumOpenConditions())
	require.Equal(t, 1, child.NumLinks())
	assert.Equal(t, domain.InitialStepID, child.Links().Head.From)
	assert.False(t, child.Bindings().CouldEqual(domain.Var("?x"), domain.Obj("obj1")))
}

// TestClosedWorldLinkFailsWhenUnseparable exercises the collapse-to-zero
// boundary: an initial-state fact that already unifies with the open
// condition's argument under zero remaining constraints (the ground
// literal it negates is already in the initial state under an identical
// binding) leaves no way to separate, so the refinement fails outright.
func TestClosedWorldLinkFailsWhenUnseparable(t *testing.T) {
	dom := &domain.Def{Predicates: []domain.PredicateSig{{Name: "p", Arity: 1}}}
	prob := &domain.Problem{
		Domain: dom,
		Goal:   domain.Tautology,
		Init:   []domain.Literal{atom("p", "obj1")},
	}
	sc := newTestContext(t, dom, prob)

	initial, ok := MakeInitialPlan(sc)
	require.True(t, ok)

	negated := atom("p", "obj1")
	negated.Negated = true
	oc := flaw.OpenCondition{Shape: flaw.ShapeLiteral, Step: domain.GoalStepID, Time: domain.AtStart, Literal: negated}

	cp := *initial
	cp.openConds = chain.Cons(oc, initial.openConds)
	cp.numOpenConds = initial.numOpenConds + 1

	_, ok = closedWorldLink(sc, &cp, oc, false)
	assert.False(t, ok)
}
