package core

import (
	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
)

// AddGoal implements C2, the goal-formula unroller (§4.2): it walks f and
// distributes it into open-condition flaws consed onto openConds and
// binding constraints merged into b, scoped to stepID. count is the
// running tally of literals processed (incremented even when stripped by
// strip_static_preconditions, matching the original's counting
// semantics). testOnly suppresses the actual flaw/chain mutation for the
// literal, disjunction, and inequality branches while still reporting
// success/failure,
// so callers that only need to know "would this succeed and how many
// flaws would it add" (the addable_steps/reusable_steps counting paths)
// don't have to materialize a chain.
//
// Returns the updated open-condition chain, count, bindings, and true on
// success, or (nil, count, nil, false) the moment any sub-formula is
// inconsistent. An unrecognized formula shape is a programmer error and
// panics, per §7's "Malformed input (fatal)" classification.
func AddGoal(sc *SearchContext, openConds *chain.Chain[flaw.OpenCondition], count int, b *bindings.Bindings, f domain.Formula, stepID int, testOnly bool) (*chain.Chain[flaw.OpenCondition], int, *bindings.Bindings, bool) {
	switch v := f.(type) {
	case domain.Formula:
		return addGoalDispatch(sc, openConds, count, b, v, stepID, testOnly)
	default:
		panic(ErrMalformedInput("add_goal: formula does not implement Formula"))
	}
}

func addGoalDispatch(sc *SearchContext, openConds *chain.Chain[flaw.OpenCondition], count int, b *bindings.Bindings, f domain.Formula, stepID int, testOnly bool) (*chain.Chain[flaw.OpenCondition], int, *bindings.Bindings, bool) {
	switch v := f.(type) {
	case domain.TimedLiteral:
		count++
		strip := sc.Parameters.StripStaticPreconditions && sc.Domain.IsStatic(v.Literal.Atom.Predicate)
		if !testOnly && !strip {
			openConds = chain.Cons(flaw.OpenCondition{Shape: flaw.ShapeLiteral, Step: stepID, Time: v.When, Literal: v.Literal}, openConds)
		}
		return openConds, count, b, true

	case domain.Conjunction:
		order := make([]int, len(v.Conjuncts))
		for i := range order {
			order[i] = i
		}
		if sc.Parameters.RandomOpenConditions {
			sc.Rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
		}
		for _, idx := range order {
			var ok bool
			openConds, count, b, ok = AddGoal(sc, openConds, count, b, v.Conjuncts[idx], stepID, testOnly)
			if !ok {
				return nil, count, nil, false
			}
		}
		return openConds, count, b, true

	case domain.Disjunction:
		count++
		if !testOnly {
			openConds = chain.Cons(flaw.OpenCondition{Shape: flaw.ShapeDisjunction, Step: stepID, Time: domain.AtStart, Disjunction: v}, openConds)
		}
		return openConds, count, b, true

	case domain.Existential:
		return AddGoal(sc, openConds, count, b, v.Body, stepID, testOnly)

	case domain.Universal:
		base := universalBase(sc, v)
		return AddGoal(sc, openConds, count, b, base, stepID, testOnly)

	case domain.Equality:
		nb, ok := b.Unify(v.Term1, v.Term2)
		if !ok {
			return nil, count, nil, false
		}
		return openConds, count, nb, true

	case domain.Inequality:
		if sc.Parameters.BranchOnInequality && v.Term1.Variable && v.Term2.Variable {
			count++
			if !testOnly {
				openConds = chain.Cons(flaw.OpenCondition{Shape: flaw.ShapeInequality, Step: stepID, Time: domain.AtStart, Inequality: v}, openConds)
			}
			return openConds, count, b, true
		}
		nb, ok := b.Add([]bindings.Constraint{bindings.NotEqual(v.Term1, v.Term2)})
		if !ok {
			return nil, count, nil, false
		}
		return openConds, count, nb, true

	default:
		if domain.IsTautology(f) {
			return openConds, count, b, true
		}
		if domain.IsContradiction(f) {
			return nil, count, nil, false
		}
		panic(ErrMalformedInput("add_goal: unrecognized formula shape"))
	}
}

// universalBase rewrites a Universal quantifier into a conjunction over
// every combination of the problem's objects substituted for its
// parameters (§4.2: "rewrite to the universal base formula over the
// problem's constants"). Terms carry no type tag in this implementation,
// so every parameter ranges over the full object table — the same
// fallback domain.Problem.ObjectsOfType already applies when typing is
// not required.
func universalBase(sc *SearchContext, u domain.Universal) domain.Formula {
	objects := sc.Problem.Objects()
	substitutions := []domain.Substitution{{}}
	for _, param := range u.Parameters {
		var next []domain.Substitution
		for _, s := range substitutions {
			for _, obj := range objects {
				extended := make(domain.Substitution, len(s)+1)
				for k, v := range s {
					extended[k] = v
				}
				extended[param.Name] = obj
				next = append(next, extended)
			}
		}
		substitutions = next
	}

	conjuncts := make([]domain.Formula, 0, len(substitutions))
	for _, s := range substitutions {
		conjuncts = append(conjuncts, s.Formula(u.Body))
	}
	return domain.And(conjuncts...)
}
