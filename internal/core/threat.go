package core

import (
	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
	"github.com/arcflow-labs/pocl/internal/ordering"
)

// DetectLinkThreats implements C4's link-threat scan (§4.4): every step of
// plan that may occur strictly between link's endpoints and carries an
// effect affecting link's condition under bindings is a threat. Called
// once per newly appended causal link.
func DetectLinkThreats(plan *Plan, link domain.Link) []flaw.Unsafe {
	var out []flaw.Unsafe
	for c := plan.Steps(); c != nil; c = c.Tail {
		out = append(out, stepThreatensLink(plan.Orderings(), plan.Bindings(), c.Head, link)...)
	}
	return out
}

// DetectStepThreats implements C4's symmetric step-threat scan (§4.4): a
// newly introduced step is checked against every existing causal link.
// Called once per newly introduced step.
func DetectStepThreats(plan *Plan, stepID int) []flaw.Unsafe {
	step, ok := plan.StepByID(stepID)
	if !ok {
		return nil
	}
	var out []flaw.Unsafe
	for c := plan.Links(); c != nil; c = c.Tail {
		out = append(out, stepThreatensLink(plan.Orderings(), plan.Bindings(), step, c.Head)...)
	}
	return out
}

// stepThreatensLink returns one flaw.Unsafe per effect of s whose literal
// affects link's condition under b and whose occurrence cannot be ruled
// out from falling strictly between link's endpoints. The step that
// established the link is excluded from threatening its own link, unless
// the link's condition is itself a negation (§4.4: "self-edges are
// excluded unless the link condition is a negation").
func stepThreatensLink(ord *ordering.Orderings, b *bindings.Bindings, s domain.Step, link domain.Link) []flaw.Unsafe {
	if s.ID == link.From && !link.Condition.Negated {
		return nil
	}
	var out []flaw.Unsafe
	for i, eff := range s.Action.Effects {
		if domain.IsContradiction(eff.LinkCondition) {
			continue
		}
		if !b.Affects(eff.Literal, link.Condition) {
			continue
		}
		sRef := domain.StepRef{Step: s.ID, Time: eff.When}
		fromRef := domain.StepRef{Step: link.From, Time: link.FromTime}
		toRef := domain.StepRef{Step: link.To, Time: link.ToTime}
		couldBeAfterFrom := ord.PossiblyNotBefore(sRef, fromRef)
		couldBeBeforeTo := ord.PossiblyNotAfter(sRef, toRef)
		if couldBeAfterFrom && couldBeBeforeTo {
			out = append(out, flaw.Unsafe{Link: link, ThreateningStep: s.ID, EffectIndex: i, EffectTime: eff.When})
		}
	}
	return out
}

// StillThreatens re-tests an already-recorded Unsafe flaw against the
// current plan, used by the unsafe-link refiner to detect the "bogus
// flaw" case (§4.5.1): a threat recorded against an earlier plan that a
// later refinement of orderings/bindings has since ruled out.
func StillThreatens(plan *Plan, u flaw.Unsafe) bool {
	step, ok := plan.StepByID(u.ThreateningStep)
	if !ok || u.EffectIndex < 0 || u.EffectIndex >= len(step.Action.Effects) {
		return false
	}
	for _, t := range stepThreatensLink(plan.Orderings(), plan.Bindings(), step, u.Link) {
		if t.ThreateningStep == u.ThreateningStep && t.EffectIndex == u.EffectIndex {
			return true
		}
	}
	return false
}

// DetectMutexThreats implements C4's mutex-threat scan (§4.4): for every
// pair of steps that may occur concurrently, for every pair of their
// effects whose times are compatible with some concurrency flag, if the
// effect atoms unify under bindings it is a mutex threat. This is the
// full recomputation pass the §4.5.3 sentinel triggers.
func DetectMutexThreats(plan *Plan) []flaw.MutexThreat {
	steps := chainToSlice(plan)
	var out []flaw.MutexThreat
	for i := 0; i < len(steps); i++ {
		for j := i + 1; j < len(steps); j++ {
			out = append(out, mutexThreatsBetween(plan.Orderings(), plan.Bindings(), steps[i], steps[j])...)
		}
	}
	return out
}

func chainToSlice(plan *Plan) []domain.Step {
	var out []domain.Step
	for c := plan.Steps(); c != nil; c = c.Tail {
		out = append(out, c.Head)
	}
	return out
}

func mutexThreatsBetween(ord *ordering.Orderings, b *bindings.Bindings, s1, s2 domain.Step) []flaw.MutexThreat {
	var out []flaw.MutexThreat
	for i1, e1 := range s1.Action.Effects {
		for i2, e2 := range s2.Action.Effects {
			if !timingCompatible(ord, s1.ID, e1.When, s2.ID, e2.When) {
				continue
			}
			if _, ok := b.Unifier(e1.Literal.Atom, e2.Literal.Atom); !ok {
				continue
			}
			out = append(out, flaw.MutexThreat{Step1: s1.ID, EffectIndex1: i1, Step2: s2.ID, EffectIndex2: i2})
		}
	}
	return out
}

// timingCompatible reports whether effect instants (s1, t1) and (s2, t2)
// could occur concurrently, by asking Orderings.PossiblyConcurrent for
// exactly the one start/end combination these two times name.
func timingCompatible(ord *ordering.Orderings, s1 int, t1 domain.Timing, s2 int, t2 domain.Timing) bool {
	ss := t1 == domain.AtStart && t2 == domain.AtStart
	se := t1 == domain.AtStart && t2 == domain.AtEnd
	es := t1 == domain.AtEnd && t2 == domain.AtStart
	ee := t1 == domain.AtEnd && t2 == domain.AtEnd
	return ord.PossiblyConcurrent(s1, s2, ss, se, es, ee)
}

// MutexStillThreatens re-tests an already-recorded mutex threat, used by
// the mutex refiner's bogus-flaw collapse.
func MutexStillThreatens(plan *Plan, m flaw.MutexThreat) bool {
	s1, ok1 := plan.StepByID(m.Step1)
	s2, ok2 := plan.StepByID(m.Step2)
	if !ok1 || !ok2 || m.EffectIndex1 < 0 || m.EffectIndex1 >= len(s1.Action.Effects) || m.EffectIndex2 < 0 || m.EffectIndex2 >= len(s2.Action.Effects) {
		return false
	}
	e1, e2 := s1.Action.Effects[m.EffectIndex1], s2.Action.Effects[m.EffectIndex2]
	if !timingCompatible(plan.Orderings(), s1.ID, e1.When, s2.ID, e2.When) {
		return false
	}
	_, ok := plan.Bindings().Unifier(e1.Literal.Atom, e2.Literal.Atom)
	return ok
}
