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

func threatenedLinkPlan() (*Plan, flaw.Unsafe) {
	addP := domain.Step{ID: 1, Action: action("A", domain.Tautology, atom("p"))}
	delP := domain.Step{ID: 2, Action: action("B", domain.Tautology, atom("p").Negation())}
	goalStep := domain.Step{ID: domain.GoalStepID, Action: action("<goal>", domain.Tautology)}

	steps := chain.Cons(goalStep, chain.Cons(delP, chain.Cons(addP, nil)))
	link := domain.Link{From: 1, FromTime: domain.AtEnd, To: domain.GoalStepID, ToTime: domain.AtStart, Condition: atom("p")}
	links := chain.Cons(link, nil)

	plan := &Plan{steps: steps, links: links, numLinks: 1, orderings: unorderedOrderings(), bindings: bindings.Empty()}
	threats := DetectLinkThreats(plan, link)
	return plan, threats[0]
}

func TestRefineUnsafeProducesSeparationAndOrderingChildren(t *testing.T) {
	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	plan, u := threatenedLinkPlan()
	children := RefineUnsafe(sc, plan, u)

	require.NotEmpty(t, children)
	for _, c := range children {
		assert.Empty(t, DetectLinkThreats(c, u.Link))
	}
}

func TestRefineUnsafeBogusFlawCollapsesWhenNoLongerThreatened(t *testing.T) {
	plan, u := threatenedLinkPlan()
	ord, ok := plan.Orderings().Refine(domain.StepRef{Step: domain.GoalStepID, Time: domain.AtStart}, domain.StepRef{Step: 2, Time: domain.AtStart}, 0)
	require.True(t, ok)
	plan.orderings = ord

	dom := &domain.Def{}
	prob := &domain.Problem{Domain: dom, Goal: domain.Tautology}
	sc := newTestContext(t, dom, prob)

	children := RefineUnsafe(sc, plan, u)
	require.Len(t, children, 1)
	assert.Nil(t, children[0].unsafes)
}
