package core

import "github.com/arcflow-labs/pocl/internal/flaw"

// RefineUnexpandedStep implements §4.5.4: every decomposition schema
// registered against the composite step's action produces one child via
// C6. A step with zero registered decompositions has no repair and is a
// dead end — unlike the stubbed unexpanded_step_refinements this
// replaces, every registered schema is actually expanded here.
func RefineUnexpandedStep(sc *SearchContext, plan *Plan, u flaw.UnexpandedStep) []*Plan {
	step, ok := plan.StepByID(u.Step)
	if !ok {
		return nil
	}
	schemas := sc.DecompositionsFor(step.Action.Name)
	if len(schemas) == 0 {
		return nil
	}
	var out []*Plan
	for _, schema := range schemas {
		if child, ok := ExpandDecomposition(sc, plan, u.Step, schema); ok {
			out = append(out, child)
		}
	}
	return out
}

// UnexpandedStepRefinementCount counts the decomposition schemas
// registered against a composite step, the count flaw-selection
// strategies consult without materializing any child plans.
func UnexpandedStepRefinementCount(sc *SearchContext, plan *Plan, u flaw.UnexpandedStep) int {
	step, ok := plan.StepByID(u.Step)
	if !ok {
		return 0
	}
	return len(sc.DecompositionsFor(step.Action.Name))
}
