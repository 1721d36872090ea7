package core

import (
	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/domain"
)

// Instantiate implements §4.7 step 6's grounding instantiator: a complete
// plan (every flaw chain empty) may still carry a step whose action
// schema has a parameter no consumed literal or inequality ever bound —
// Complete() only asks that there are no pending flaws, not that every
// variable is ground. Instantiate recursively binds each such variable to
// a compatible object from the problem's constant table, backtracking
// when a choice leaves some other pending variable with no consistent
// object left, until every step is ground or no assignment exists.
func Instantiate(sc *SearchContext, plan *Plan) (*Plan, bool) {
	vars := ungroundVariables(plan)
	if len(vars) == 0 {
		return plan, true
	}
	b, ok := instantiateVars(sc, plan.Bindings(), vars)
	if !ok {
		return nil, false
	}
	cp := *plan
	cp.bindings = b
	return &cp, true
}

// ungroundVariables collects, in step/parameter order, every distinct
// variable term a non-dummy step's action parameterizes that plan's
// bindings have not already resolved to an object.
func ungroundVariables(plan *Plan) []domain.Term {
	seen := make(map[string]bool)
	var out []domain.Term
	for c := plan.Steps(); c != nil; c = c.Tail {
		step := c.Head
		if step.Action.IsDummy() {
			continue
		}
		for _, p := range step.Action.Parameters {
			if seen[p.Name] {
				continue
			}
			seen[p.Name] = true
			if _, ok := plan.Bindings().Value(p); ok {
				continue
			}
			out = append(out, p)
		}
	}
	return out
}

// instantiateVars tries every object still compatible with vars[0] under
// b, recursing on the remaining variables under the resulting bindings
// and backtracking to the next candidate object on failure.
func instantiateVars(sc *SearchContext, b *bindings.Bindings, vars []domain.Term) (*bindings.Bindings, bool) {
	if len(vars) == 0 {
		return b, true
	}
	v, rest := vars[0], vars[1:]
	for _, obj := range b.Domain(v, sc.Problem.Objects()) {
		nb, ok := b.Unify(v, obj)
		if !ok {
			continue
		}
		if result, ok := instantiateVars(sc, nb, rest); ok {
			return result, true
		}
	}
	return nil, false
}
