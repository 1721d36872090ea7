package domain

// PredicateSig is a predicate's name/arity signature plus whether it is
// static — a predicate mentioned in no action effect, whose truth is
// therefore fixed by the initial state for the lifetime of the plan
// (GLOSSARY: "Static predicate"). Static is computed once, at domain load
// time, by scanning every action's effects.
type PredicateSig struct {
	Name   string
	Arity  int
	Static bool
}

// Def is the domain definition: requirements, the typed constant table's
// type names, predicate signatures, action schemas, and decomposition
// schemas.
type Def struct {
	Name           string
	Requirements   Requirements
	Predicates     []PredicateSig
	Actions        []*Action
	Decompositions []*Decomposition
}

// ActionByName returns the action schema with the given name, or nil.
func (d *Def) ActionByName(name string) *Action {
	for _, a := range d.Actions {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// DecompositionsFor returns every decomposition schema registered for the
// given composite action name, i.e. the composite-action -> decompositions
// multimap §4.5.4 dispatches through.
func (d *Def) DecompositionsFor(compositeAction string) []*Decomposition {
	var out []*Decomposition
	for _, dec := range d.Decompositions {
		if dec.CompositeAction == compositeAction {
			out = append(out, dec)
		}
	}
	return out
}

// IsStatic reports whether predicate p never appears in any action effect.
func (d *Def) IsStatic(predicate string) bool {
	for _, p := range d.Predicates {
		if p.Name == predicate {
			return p.Static
		}
	}
	// An unknown predicate (e.g. only ever used in preconditions, never
	// declared) is conservatively treated as static: nothing can achieve
	// it, so it behaves exactly like a predicate with no effects.
	return true
}

// RecomputeStaticPredicates scans every action's effects and marks a
// predicate non-static the moment any effect (positive or negative)
// mentions it. Must be called once after Actions is populated and before
// planning begins.
func (d *Def) RecomputeStaticPredicates() {
	nonStatic := make(map[string]bool)
	for _, a := range d.Actions {
		for _, e := range a.Effects {
			nonStatic[e.Literal.Atom.Predicate] = true
		}
	}
	for i := range d.Predicates {
		if nonStatic[d.Predicates[i].Name] {
			d.Predicates[i].Static = false
		} else {
			d.Predicates[i].Static = true
		}
	}
}

// TimedInitialLiteral is a literal that becomes true (or false, if
// Literal.Negated) at a fixed absolute time rather than holding from the
// start of the plan.
type TimedInitialLiteral struct {
	Literal Literal
	At      float64
}

// Problem is a planning problem: the domain it is stated against, the
// typed object table, the initial state as a list of ground literals, an
// optional timed-initial-literals table, and the goal formula.
type Problem struct {
	Name                 string
	Domain               *Def
	ObjectsByType        map[string][]Term
	Init                 []Literal
	TimedInitialLiterals []TimedInitialLiteral
	Goal                 Formula
}

// Objects returns every object in the problem's constant table,
// regardless of type, deduplicated.
func (p *Problem) Objects() []Term {
	seen := make(map[string]bool)
	var out []Term
	for _, objs := range p.ObjectsByType {
		for _, o := range objs {
			if !seen[o.Name] {
				seen[o.Name] = true
				out = append(out, o)
			}
		}
	}
	return out
}

// ObjectsOfType returns the objects declared under typ, or every object if
// the domain does not require typing (RequireTyping unset) or typ is
// empty.
func (p *Problem) ObjectsOfType(typ string) []Term {
	if typ == "" || !p.Domain.Requirements.Has(RequireTyping) {
		return p.Objects()
	}
	return p.ObjectsByType[typ]
}

// InitialAction synthesizes the ground "action" of step 0: no
// precondition, and one unconditional effect per initial-state literal.
func (p *Problem) InitialAction() *Action {
	effects := make([]Effect, 0, len(p.Init))
	for _, l := range p.Init {
		effects = append(effects, NewEffect(l))
	}
	return &Action{
		Name:         "<initial>",
		Precondition: Tautology,
		Effects:      effects,
	}
}

// GoalAction synthesizes the ground "action" of the goal step: the
// problem's goal formula as its precondition, no effects.
func (p *Problem) GoalAction() *Action {
	return &Action{
		Name:         "<goal>",
		Precondition: p.Goal,
		Effects:      nil,
	}
}
