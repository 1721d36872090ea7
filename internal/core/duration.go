package core

import (
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/ordering"
)

// seedStepDuration registers s's start->end span with ord so Schedule can
// account for it: zero for a dummy pseudo-step (initial, goal, and a
// decomposition frame's bracketing pair all carry no time of their own),
// the action's declared Duration for a durative action, and a unit cost
// otherwise — the default that makes an instantaneous primitive step
// contribute exactly one time unit to makespan.
func seedStepDuration(ord *ordering.Orderings, s domain.Step) *ordering.Orderings {
	switch {
	case s.Action.IsDummy():
		return ord.SeedStep(s.ID, 0)
	case s.Action.Durative:
		return ord.SeedStep(s.ID, s.Action.Duration)
	default:
		return ord.SeedStep(s.ID, 1)
	}
}
