package domain

// Effect is a single effect of an action: a literal, guarded by a
// condition (default Tautology, meaning unconditional) and, for durative
// actions, a separate link-condition checked when a causal link is formed
// against this effect (§3). Parameters lists the variables universally
// quantified over this effect (e.g. a "forall" delete effect over a set
// object); When marks whether the effect fires at the step's start or end.
type Effect struct {
	Literal       Literal
	Condition     Formula
	LinkCondition Formula
	Parameters    []Term
	When          Timing
}

// NewEffect builds an unconditional, non-quantified, AtEnd effect — the
// common case for simple STRIPS-style actions.
func NewEffect(l Literal) Effect {
	return Effect{
		Literal:       l,
		Condition:     Tautology,
		LinkCondition: Tautology,
		When:          AtEnd,
	}
}

// Conditional reports whether the effect carries a non-tautological
// condition or link-condition, i.e. whether establishing a link against it
// requires adding a new open condition (§4.5.2 step 3 of make_link).
func (e Effect) Conditional() bool {
	return !IsTautology(e.Condition) || !IsTautology(e.LinkCondition)
}
