package core

import (
	"fmt"

	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
)

// RefineOpenCondition implements §4.5.2: dispatch on the open condition's
// shape and emit every repairing child.
func RefineOpenCondition(sc *SearchContext, plan *Plan, oc flaw.OpenCondition) []*Plan {
	switch oc.Shape {
	case flaw.ShapeLiteral:
		children := append(addStepChildren(sc, plan, oc), reuseStepChildren(sc, plan, oc)...)
		if oc.Literal.Negated {
			if c, ok := closedWorldLink(sc, plan, oc, false); ok {
				children = append(children, c)
			}
		}
		return children
	case flaw.ShapeDisjunction:
		return disjunctionChildren(sc, plan, oc)
	case flaw.ShapeInequality:
		return inequalityChildren(sc, plan, oc)
	default:
		panic(ErrMalformedInput("refine_open_condition: unrecognized open-condition shape"))
	}
}

// openCondKey identifies an open condition for removal from its chain.
// OpenCondition is not comparable with == (its Disjunction and Literal
// fields carry slices), so removal matches on this string key instead.
func openCondKey(o flaw.OpenCondition) string {
	switch o.Shape {
	case flaw.ShapeLiteral:
		return fmt.Sprintf("L|%d|%d|%s", o.Step, o.Time, o.Literal.String())
	case flaw.ShapeDisjunction:
		return fmt.Sprintf("D|%d|%d|%s", o.Step, o.Time, domain.FormulaString(o.Disjunction))
	case flaw.ShapeInequality:
		return fmt.Sprintf("I|%d|%d|%s!=%s", o.Step, o.Time, o.Inequality.Term1.String(), o.Inequality.Term2.String())
	default:
		return "?"
	}
}

func removeOpenCondition(openConds *chain.Chain[flaw.OpenCondition], oc flaw.OpenCondition) (*chain.Chain[flaw.OpenCondition], bool) {
	key := openCondKey(oc)
	return chain.Remove(openConds, func(o flaw.OpenCondition) bool { return openCondKey(o) == key })
}

// effectIndexFor returns the index of the first effect of a whose literal
// matches the predicate and polarity of lit, or -1.
func effectIndexFor(a *domain.Action, lit domain.Literal) int {
	for i, e := range a.Effects {
		if e.Literal.Atom.Predicate == lit.Atom.Predicate && e.Literal.Negated == lit.Negated {
			return i
		}
	}
	return -1
}

// addStepChildren implements the "add step" family of §4.5.2's Literal
// case: one child per (action, effect) in literal_achievers whose action
// is not a dummy, each introducing a fresh step.
func addStepChildren(sc *SearchContext, plan *Plan, oc flaw.OpenCondition) []*Plan {
	var out []*Plan
	for _, ach := range sc.Graph.Achievers(oc.Literal, sc.Parameters.GroundActions) {
		idx := effectIndexFor(ach.Action, oc.Literal)
		if idx < 0 {
			continue
		}
		step := domain.Step{ID: sc.NextStepID(), Action: ach.Action}
		if c, ok := newLink(sc, plan, step, idx, oc, true, false); ok {
			out = append(out, c)
		}
	}
	return out
}

// reuseStepChildren implements the "reuse step" family: every existing
// step that may be ordered strictly before the open condition's time
// and carries a matching achieving effect.
func reuseStepChildren(sc *SearchContext, plan *Plan, oc flaw.OpenCondition) []*Plan {
	var out []*Plan
	seen := make(map[int]bool)
	for c := plan.Steps(); c != nil; c = c.Tail {
		s := c.Head
		if seen[s.ID] || (s.Action.IsDummy() && s.ID != domain.InitialStepID) {
			continue
		}
		seen[s.ID] = true
		idx := effectIndexFor(s.Action, oc.Literal)
		if idx < 0 {
			continue
		}
		sRef := domain.StepRef{Step: s.ID, Time: s.Action.Effects[idx].When}
		ocRef := domain.StepRef{Step: oc.Step, Time: oc.Time}
		if !plan.Orderings().PossiblyNotBefore(ocRef, sRef) {
			continue
		}
		if child, ok := newLink(sc, plan, s, idx, oc, false, false); ok {
			out = append(out, child)
		}
	}
	return out
}

// AddableSteps and ReusableSteps count the test-only variants of the two
// families above, for the add-step/reuse-step counting paths
// flaw-selection strategies consult.
func AddableSteps(sc *SearchContext, plan *Plan, oc flaw.OpenCondition) int {
	n := 0
	for _, ach := range sc.Graph.Achievers(oc.Literal, sc.Parameters.GroundActions) {
		idx := effectIndexFor(ach.Action, oc.Literal)
		if idx < 0 {
			continue
		}
		step := domain.Step{ID: sc.PeekStepID(), Action: ach.Action}
		if _, ok := newLink(sc, plan, step, idx, oc, true, true); ok {
			n++
		}
	}
	return n
}

func ReusableSteps(sc *SearchContext, plan *Plan, oc flaw.OpenCondition) int {
	n := 0
	for c := plan.Steps(); c != nil; c = c.Tail {
		s := c.Head
		if s.Action.IsDummy() && s.ID != domain.InitialStepID {
			continue
		}
		idx := effectIndexFor(s.Action, oc.Literal)
		if idx < 0 {
			continue
		}
		sRef := domain.StepRef{Step: s.ID, Time: s.Action.Effects[idx].When}
		ocRef := domain.StepRef{Step: oc.Step, Time: oc.Time}
		if !plan.Orderings().PossiblyNotBefore(ocRef, sRef) {
			continue
		}
		if _, ok := newLink(sc, plan, s, idx, oc, false, true); ok {
			n++
		}
	}
	return n
}

// newLink unifies step's effIndex'th effect literal with oc's literal
// under the plan's bindings, then hands off to makeLink.
func newLink(sc *SearchContext, plan *Plan, step domain.Step, effIndex int, oc flaw.OpenCondition, isNewStep, testOnly bool) (*Plan, bool) {
	eff := step.Action.Effects[effIndex]
	if eff.Literal.Negated != oc.Literal.Negated {
		return nil, false
	}
	if _, ok := plan.Bindings().Unifier(eff.Literal.Atom, oc.Literal.Atom); !ok {
		return nil, false
	}
	return makeLink(sc, plan, step, effIndex, oc, isNewStep, testOnly)
}

// makeLink is the central constructor of §4.5.2: unify, splice in the new
// step and link, propagate conditional effects and preconditions as new
// open conditions, and run the threat scans a fresh link/step demands.
func makeLink(sc *SearchContext, plan *Plan, step domain.Step, effIndex int, oc flaw.OpenCondition, isNewStep, testOnly bool) (*Plan, bool) {
	eff, subst := forallSubst(sc, step.Action.Effects[effIndex])
	cs, ok := plan.Bindings().Unifier(eff.Literal.Atom, oc.Literal.Atom)
	if !ok {
		return nil, false
	}

	openConds := plan.openConds
	numOpenConds := plan.numOpenConds
	removed := true
	if !testOnly {
		openConds, removed = removeOpenCondition(openConds, oc)
	}
	if !removed {
		return nil, false
	}
	numOpenConds--

	b := plan.Bindings()
	if eff.Conditional() {
		cond := domain.And(eff.Condition, eff.LinkCondition)
		var ok2 bool
		openConds, numOpenConds, b, ok2 = AddGoal(sc, openConds, numOpenConds, b, cond, step.ID, testOnly)
		if !ok2 {
			return nil, false
		}
	}

	steps := plan.steps
	numSteps := plan.numSteps
	unexpandedSteps := plan.unexpandedSteps
	numUnexpandedSteps := plan.numUnexpandedSteps
	if isNewStep {
		var ok2 bool
		openConds, numOpenConds, b, ok2 = AddGoal(sc, openConds, numOpenConds, b, subst.Action(step.Action).Precondition, step.ID, testOnly)
		if !ok2 {
			return nil, false
		}
		if sc.Parameters.DomainConstraints && !domainConstraintsSatisfied(sc, step.Action, b) {
			return nil, false
		}
		if !testOnly {
			steps = chain.Cons(step, steps)
			if step.Action.Composite {
				unexpandedSteps = chain.Cons(flaw.UnexpandedStep{Step: step.ID}, unexpandedSteps)
				numUnexpandedSteps++
			}
		}
		numSteps++
	}

	nb, ok := b.Add(cs)
	if !ok {
		return nil, false
	}
	b = nb

	ord, ok := plan.Orderings().Refine(domain.StepRef{Step: step.ID, Time: eff.When}, domain.StepRef{Step: oc.Step, Time: oc.Time}, 0)
	if !ok {
		return nil, false
	}

	if testOnly {
		return nil, true
	}

	if isNewStep {
		ord = seedStepDuration(ord, step)
	}

	link := domain.Link{From: step.ID, FromTime: eff.When, Condition: oc.Literal, To: oc.Step, ToTime: oc.Time}
	links := chain.Cons(link, plan.links)
	numLinks := plan.numLinks + 1

	tmp := &Plan{steps: steps, orderings: ord, bindings: b}
	unsafes := plan.unsafes
	numUnsafes := plan.numUnsafes
	for _, threat := range DetectLinkThreats(tmp, link) {
		unsafes = chain.Cons(threat, unsafes)
		numUnsafes++
	}
	if isNewStep {
		tmp2 := &Plan{links: links, orderings: ord, bindings: b}
		for _, threat := range DetectStepThreats(tmp2, step.ID) {
			unsafes = chain.Cons(threat, unsafes)
			numUnsafes++
		}
	}

	child := &Plan{
		steps:                 steps,
		numSteps:              numSteps,
		links:                 links,
		numLinks:              numLinks,
		orderings:             ord,
		bindings:              b,
		frames:                plan.frames,
		numFrames:             plan.numFrames,
		decompositionLinks:    plan.decompositionLinks,
		numDecompositionLinks: plan.numDecompositionLinks,
		unsafes:               unsafes,
		numUnsafes:            numUnsafes,
		openConds:             openConds,
		numOpenConds:          numOpenConds,
		unexpandedSteps:       unexpandedSteps,
		numUnexpandedSteps:    numUnexpandedSteps,
		mutexThreats:          plan.mutexThreats,
	}
	return child, true
}

// collectAtoms gathers every atom appearing in f, descending through
// conjunctions, disjunctions, and quantifiers; Equality/Inequality carry
// no predicate and contribute nothing.
func collectAtoms(f domain.Formula, out []domain.Atom) []domain.Atom {
	switch v := f.(type) {
	case domain.TimedLiteral:
		out = append(out, v.Literal.Atom)
	case domain.Conjunction:
		for _, c := range v.Conjuncts {
			out = collectAtoms(c, out)
		}
	case domain.Disjunction:
		for _, d := range v.Disjuncts {
			out = collectAtoms(d, out)
		}
	case domain.Existential:
		out = collectAtoms(v.Body, out)
	case domain.Universal:
		out = collectAtoms(v.Body, out)
	}
	return out
}

// domainConstraintsSatisfied implements §4.5.2 step 4's "intersect step
// bindings with the planning graph's domain restrictions": every object
// already bound (under b) to an argument position of one of action's
// precondition or effect atoms must be among the objects sc.Graph has
// ever observed filling that (predicate, position) slot, for any slot the
// graph actually restricts. An unbound argument, or a slot the graph
// never restricted, is unconstrained.
func domainConstraintsSatisfied(sc *SearchContext, action *domain.Action, b *bindings.Bindings) bool {
	var atoms []domain.Atom
	atoms = collectAtoms(action.Precondition, atoms)
	for _, eff := range action.Effects {
		atoms = append(atoms, eff.Literal.Atom)
		atoms = collectAtoms(eff.Condition, atoms)
		atoms = collectAtoms(eff.LinkCondition, atoms)
	}

	for _, atom := range atoms {
		for i, term := range atom.Args {
			bound, ok := b.Value(term)
			if !ok {
				continue
			}
			allowed, restricted := sc.Graph.ArgumentDomain(atom.Predicate, i)
			if !restricted {
				continue
			}
			if !allowed[bound.Name] {
				return false
			}
		}
	}
	return true
}

// forallSubst instantiates every variable eff.Parameters quantifies with a
// fresh variable standing for "some value" (§4.5.2 step 1), so the
// resulting effect can be unified against a specific open condition
// without over-committing the quantified variable to that one use.
func forallSubst(sc *SearchContext, eff domain.Effect) (domain.Effect, domain.Substitution) {
	if len(eff.Parameters) == 0 {
		return eff, domain.Substitution{}
	}
	subst := make(domain.Substitution, len(eff.Parameters))
	for _, p := range eff.Parameters {
		subst[p.Name] = sc.NextVar()
	}
	return subst.Effect(eff), subst
}

// disjunctionChildren implements §4.5.2's Disjunction case: one child per
// disjunct, each adding that disjunct as a new goal via C2 in place of
// the original open condition.
func disjunctionChildren(sc *SearchContext, plan *Plan, oc flaw.OpenCondition) []*Plan {
	base, removed := removeOpenCondition(plan.openConds, oc)
	if !removed {
		return nil
	}
	baseCount := plan.numOpenConds - 1

	var out []*Plan
	for _, d := range oc.Disjunction.Disjuncts {
		openConds, numOpenConds, b, ok := AddGoal(sc, base, baseCount, plan.bindings, d, oc.Step, false)
		if !ok {
			continue
		}
		cp := *plan
		cp.openConds = openConds
		cp.numOpenConds = numOpenConds
		cp.bindings = b
		cp.ranked = false
		out = append(out, &cp)
	}
	return out
}

// inequalityChildren implements §4.5.2's Inequality case: branch on the
// term with the smaller finite domain, one child per candidate object.
func inequalityChildren(sc *SearchContext, plan *Plan, oc flaw.OpenCondition) []*Plan {
	ineq := oc.Inequality
	objects := sc.Problem.Objects()
	d1 := plan.bindings.Domain(ineq.Term1, objects)
	d2 := plan.bindings.Domain(ineq.Term2, objects)

	branchTerm, otherTerm, branchDomain := ineq.Term1, ineq.Term2, d1
	if len(d2) < len(d1) {
		branchTerm, otherTerm, branchDomain = ineq.Term2, ineq.Term1, d2
	}

	base, removed := removeOpenCondition(plan.openConds, oc)
	if !removed {
		return nil
	}
	baseCount := plan.numOpenConds - 1

	var out []*Plan
	for _, obj := range branchDomain {
		nb, ok := plan.bindings.Unify(branchTerm, obj)
		if !ok {
			continue
		}
		nb, ok = nb.Add([]bindings.Constraint{bindings.NotEqual(otherTerm, obj)})
		if !ok {
			continue
		}
		cp := *plan
		cp.openConds = base
		cp.numOpenConds = baseCount
		cp.bindings = nb
		cp.ranked = false
		out = append(out, &cp)
	}
	return out
}

// closedWorldLink implements new_cw_link (§4.5.2): a negated literal open
// condition is repaired by a link from the initial step, justified by
// disequating it from every initial-state fact it could otherwise unify
// with. An initial effect that already unifies with zero remaining
// constraints makes separation impossible, collapsing to zero children.
func closedWorldLink(sc *SearchContext, plan *Plan, oc flaw.OpenCondition, testOnly bool) (*Plan, bool) {
	initStep, ok := plan.StepByID(domain.InitialStepID)
	if !ok {
		return nil, false
	}

	var conjuncts []domain.Formula
	for _, e := range initStep.Action.Effects {
		if e.Literal.Atom.Predicate != oc.Literal.Atom.Predicate || len(e.Literal.Atom.Args) != len(oc.Literal.Atom.Args) {
			continue
		}
		cs, unifOk := plan.bindings.Unifier(oc.Literal.Atom, e.Literal.Atom)
		if !unifOk {
			continue
		}
		if len(cs) == 0 {
			return nil, false
		}
		disjuncts := make([]domain.Formula, len(cs))
		for i, c := range cs {
			disjuncts[i] = domain.Inequality{Term1: c.Term1, Term2: c.Term2}
		}
		conjuncts = append(conjuncts, domain.Or(disjuncts...))
	}

	openConds, numOpenConds, b, ok := AddGoal(sc, plan.openConds, plan.numOpenConds, plan.bindings, domain.And(conjuncts...), oc.Step, testOnly)
	if !ok {
		return nil, false
	}

	if testOnly {
		return nil, true
	}

	openConds, removed := removeOpenCondition(openConds, oc)
	if !removed {
		return nil, false
	}
	numOpenConds--

	link := domain.Link{From: domain.InitialStepID, FromTime: domain.AtEnd, Condition: oc.Literal, To: oc.Step, ToTime: oc.Time}
	links := chain.Cons(link, plan.links)

	tmp := &Plan{steps: plan.steps, orderings: plan.orderings, bindings: b}
	unsafes := plan.unsafes
	numUnsafes := plan.numUnsafes
	for _, threat := range DetectLinkThreats(tmp, link) {
		unsafes = chain.Cons(threat, unsafes)
		numUnsafes++
	}

	cp := *plan
	cp.openConds = openConds
	cp.numOpenConds = numOpenConds
	cp.bindings = b
	cp.links = links
	cp.numLinks = plan.numLinks + 1
	cp.unsafes = unsafes
	cp.numUnsafes = numUnsafes
	cp.ranked = false
	return &cp, true
}
