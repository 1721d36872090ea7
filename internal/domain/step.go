package domain

import "math"

// InitialStepID and GoalStepID are the two reserved step identifiers every
// plan carries: the initial step (id 0), whose effects are the problem's
// initial state, and the goal step (id GoalStepID), whose precondition is
// the problem's goal formula. Every generated step receives a positive id
// assigned monotonically as num_steps increases.
const (
	InitialStepID = 0
	GoalStepID    = math.MaxInt32
)

// Step is a plan step: a stable identifier and the action — schema or
// ground — it instantiates.
type Step struct {
	ID     int
	Action *Action
}

// Ref returns the StepRef naming this step's start or end instant, the
// unit every ordering constraint and causal-link endpoint is expressed in.
func (s Step) Ref(t Timing) StepRef {
	return StepRef{Step: s.ID, Time: t}
}

// StepRef names one instant (start or end) of one step. Orderings,
// causal links, and effects all refer to steps through StepRef rather
// than a bare id, since durative actions have two distinguishable
// instants.
type StepRef struct {
	Step int
	Time Timing
}
