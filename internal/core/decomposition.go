package core

import (
	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
)

// ExpandDecomposition implements C6 (§4.6): instantiating schema against
// composite step compositeStepID produces a child plan whose unexpanded
// flaw for that step is replaced by schema's body, bracketed by a fresh
// dummy-initial/dummy-final pair. Unlike the source this schema
// instantiates (§9's open question), schema-local step ids are rewritten
// through an explicit id map built once up front, rather than recovered
// by subtracting a reserved id from link endpoints.
func ExpandDecomposition(sc *SearchContext, plan *Plan, compositeStepID int, schema *domain.Decomposition) (*Plan, bool) {
	composite, ok := plan.StepByID(compositeStepID)
	if !ok {
		return nil, false
	}

	idMap := map[int]int{
		domain.DummyInitialLocalID: sc.NextStepID(),
		domain.DummyFinalLocalID:  sc.NextStepID(),
	}
	for _, ps := range schema.PseudoSteps {
		idMap[ps.LocalID] = sc.NextStepID()
	}

	frame := &Frame{
		ID:             sc.NextFrameID(),
		Schema:         schema,
		DummyInitialID: idMap[domain.DummyInitialLocalID],
		DummyFinalID:   idMap[domain.DummyFinalLocalID],
	}
	frame.StepIDs = append(frame.StepIDs, frame.DummyInitialID, frame.DummyFinalID)
	for _, ps := range schema.PseudoSteps {
		frame.StepIDs = append(frame.StepIDs, idMap[ps.LocalID])
	}

	steps := plan.steps
	numSteps := plan.numSteps
	openConds := plan.openConds
	numOpenConds := plan.numOpenConds
	unexpandedSteps := plan.unexpandedSteps
	numUnexpandedSteps := plan.numUnexpandedSteps
	b := plan.bindings
	ord := plan.orderings

	dummyInitial := domain.Step{ID: frame.DummyInitialID, Action: domain.DummyInitialAction(composite.Action)}
	dummyFinal := domain.Step{ID: frame.DummyFinalID, Action: domain.DummyFinalAction(composite.Action)}
	steps = chain.Cons(dummyInitial, steps)
	steps = chain.Cons(dummyFinal, steps)
	ord = seedStepDuration(ord, dummyInitial)
	ord = seedStepDuration(ord, dummyFinal)

	newSteps := []domain.Step{dummyInitial, dummyFinal}
	for _, ps := range schema.PseudoSteps {
		s := domain.Step{ID: idMap[ps.LocalID], Action: ps.Action}
		steps = chain.Cons(s, steps)
		newSteps = append(newSteps, s)
		ord = seedStepDuration(ord, s)
	}

	for _, s := range newSteps {
		var ok bool
		openConds, numOpenConds, b, ok = AddGoal(sc, openConds, numOpenConds, b, s.Action.Precondition, s.ID, false)
		if !ok {
			return nil, false
		}
		if !s.Action.IsDummy() {
			numSteps++
		}
		if s.Action.Composite {
			unexpandedSteps = chain.Cons(flaw.UnexpandedStep{Step: s.ID}, unexpandedSteps)
			numUnexpandedSteps++
		}
	}

	for _, lb := range schema.Bindings {
		var cOk bool
		if lb.Negated {
			b, cOk = b.Add([]bindings.Constraint{bindings.NotEqual(lb.Term1, lb.Term2)})
		} else {
			b, cOk = b.Unify(lb.Term1, lb.Term2)
		}
		if !cOk {
			return nil, false
		}
	}

	for c := plan.links; c != nil; c = c.Tail {
		if c.Head.From != compositeStepID {
			continue
		}
		var refined bool
		ord, refined = ord.Refine(domain.StepRef{Step: frame.DummyFinalID, Time: domain.AtEnd}, domain.StepRef{Step: c.Head.To, Time: c.Head.ToTime}, 0)
		if !refined {
			return nil, false
		}
	}

	for _, ll := range schema.Links {
		var refined bool
		ord, refined = ord.Refine(domain.StepRef{Step: idMap[ll.From], Time: domain.AtEnd}, domain.StepRef{Step: idMap[ll.To], Time: domain.AtStart}, 0)
		if !refined {
			return nil, false
		}
	}

	for _, lo := range schema.Orderings {
		var refined bool
		ord, refined = ord.Refine(domain.StepRef{Step: idMap[lo.Before.Step], Time: lo.Before.Time}, domain.StepRef{Step: idMap[lo.After.Step], Time: lo.After.Time}, 0)
		if !refined {
			return nil, false
		}
	}

	links := plan.links
	numLinks := plan.numLinks
	unsafes := plan.unsafes
	numUnsafes := plan.numUnsafes
	tmp := &Plan{steps: steps, orderings: ord, bindings: b}
	for _, ll := range schema.Links {
		l := domain.Link{From: idMap[ll.From], FromTime: ll.FromTime, Condition: ll.Literal, To: idMap[ll.To], ToTime: ll.ToTime}
		links = chain.Cons(l, links)
		numLinks++
		for _, threat := range DetectLinkThreats(tmp, l) {
			unsafes = chain.Cons(threat, unsafes)
			numUnsafes++
		}
	}

	unexpandedSteps, removed := chain.Remove(unexpandedSteps, func(u flaw.UnexpandedStep) bool { return u.Step == compositeStepID })
	if !removed {
		return nil, false
	}
	numUnexpandedSteps--
	decompositionLinks := chain.Cons(domain.DecompositionLink{Step: compositeStepID, Frame: frame.ID}, plan.decompositionLinks)

	child := &Plan{
		steps:                 steps,
		numSteps:              numSteps,
		links:                 links,
		numLinks:              numLinks,
		orderings:             ord,
		bindings:              b,
		frames:                chain.Cons(frame, plan.frames),
		numFrames:             plan.numFrames + 1,
		decompositionLinks:    decompositionLinks,
		numDecompositionLinks: plan.numDecompositionLinks + 1,
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
