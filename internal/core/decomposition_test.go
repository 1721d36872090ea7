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

// travelDomain registers a single composite action "travel" with one
// decomposition schema "drive", whose body is a single "drive-body"
// pseudo-step ordered and linked between the schema's implicit dummy
// brackets, mirroring the travel/drive fixture under testdata/domains.
func travelDomain() *domain.Def {
	return &domain.Def{
		Predicates: []domain.PredicateSig{{Name: "at", Arity: 1}},
		Actions: []*domain.Action{
			{Name: "travel", Composite: true, Precondition: domain.Tautology},
		},
		Decompositions: []*domain.Decomposition{
			{
				Name:            "drive",
				CompositeAction: "travel",
				PseudoSteps: []domain.PseudoStep{
					{LocalID: 1, Action: action("drive-body", domain.Tautology, atom("at", "dest"))},
				},
				Orderings: []domain.LocalOrdering{
					{Before: domain.LocalStepRef{Step: domain.DummyInitialLocalID, Time: domain.AtEnd}, After: domain.LocalStepRef{Step: 1, Time: domain.AtStart}},
					{Before: domain.LocalStepRef{Step: 1, Time: domain.AtEnd}, After: domain.LocalStepRef{Step: domain.DummyFinalLocalID, Time: domain.AtStart}},
				},
				Links: []domain.LocalLink{
					{From: 1, FromTime: domain.AtEnd, Literal: atom("at", "dest"), To: domain.DummyFinalLocalID, ToTime: domain.AtStart},
				},
			},
		},
	}
}

func travelPlan(dom *domain.Def) *Plan {
	composite := domain.Step{ID: 5, Action: dom.ActionByName("travel")}
	goalStep := domain.Step{ID: domain.GoalStepID, Action: action("<goal>", domain.Tautology)}
	steps := chain.Cons(goalStep, chain.Cons(composite, nil))

	return &Plan{
		steps:           steps,
		numSteps:        1,
		orderings:       unorderedOrderings(),
		bindings:        bindings.Empty(),
		unexpandedSteps: chain.Cons(flaw.UnexpandedStep{Step: 5}, nil),
		numUnexpandedSteps: 1,
	}
}

func TestExpandDecompositionSplicesBodyAndRetiresUnexpandedFlaw(t *testing.T) {
	dom := travelDomain()
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan := travelPlan(dom)
	schema := dom.DecompositionsFor("travel")[0]

	child, ok := ExpandDecomposition(sc, plan, 5, schema)
	require.True(t, ok)

	assert.Equal(t, 1, child.numFrames)
	assert.Equal(t, 1, child.numDecompositionLinks)
	// dummy-initial, dummy-final, and the one body step are new, non-dummy
	// steps count only the body step.
	assert.Equal(t, 2, child.numSteps)

	var stillUnexpanded bool
	for c := child.unexpandedSteps; c != nil; c = c.Tail {
		if c.Head.Step == 5 {
			stillUnexpanded = true
		}
	}
	assert.False(t, stillUnexpanded)
}

func TestExpandDecompositionUnknownStepFails(t *testing.T) {
	dom := travelDomain()
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan := travelPlan(dom)
	schema := dom.DecompositionsFor("travel")[0]

	_, ok := ExpandDecomposition(sc, plan, 999, schema)
	assert.False(t, ok)
}

func TestRefineUnexpandedStepProducesOneChildPerSchema(t *testing.T) {
	dom := travelDomain()
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan := travelPlan(dom)
	children := RefineUnexpandedStep(sc, plan, flaw.UnexpandedStep{Step: 5})
	require.Len(t, children, 1)
}

func TestRefineUnexpandedStepNoRegisteredSchemaIsDeadEnd(t *testing.T) {
	dom := &domain.Def{Actions: []*domain.Action{{Name: "travel", Composite: true}}}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan := travelPlan(dom)
	children := RefineUnexpandedStep(sc, plan, flaw.UnexpandedStep{Step: 5})
	assert.Empty(t, children)
}

func TestUnexpandedStepRefinementCountMatchesSchemaCount(t *testing.T) {
	dom := travelDomain()
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan := travelPlan(dom)
	assert.Equal(t, 1, UnexpandedStepRefinementCount(sc, plan, flaw.UnexpandedStep{Step: 5}))
}
