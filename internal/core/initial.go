package core

import (
	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
)

// MakeInitialPlan builds the seed plan a search starts from: step 0 (the
// problem's initial state as a ground action with no precondition) and
// step GOAL (the problem's goal formula as its precondition), with the
// goal's open conditions already unrolled via C2. Returns false if the
// goal formula is contradictory under an empty binding set — the
// "contradictory initial conditions" boundary case of §8.
func MakeInitialPlan(sc *SearchContext) (*Plan, bool) {
	initialStep := domain.Step{ID: domain.InitialStepID, Action: sc.Problem.InitialAction()}
	goalStep := domain.Step{ID: domain.GoalStepID, Action: sc.GoalAction}

	steps := chain.Cons(goalStep, chain.Cons(initialStep, nil))

	ord := sc.newOrderings()
	ord, ok := ord.Refine(
		domain.StepRef{Step: domain.InitialStepID, Time: domain.AtEnd},
		domain.StepRef{Step: domain.GoalStepID, Time: domain.AtStart},
		0,
	)
	if !ok {
		return nil, false
	}
	ord = seedStepDuration(ord, initialStep)
	ord = seedStepDuration(ord, goalStep)

	openConds, numOpenConds, b, ok := AddGoal(sc, nil, 0, bindings.Empty(), sc.GoalAction.Precondition, domain.GoalStepID, false)
	if !ok {
		return nil, false
	}

	return &Plan{
		steps:        steps,
		numSteps:     0,
		orderings:    ord,
		bindings:     b,
		openConds:    openConds,
		numOpenConds: numOpenConds,
	}, true
}
