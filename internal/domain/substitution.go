package domain

// Substitution maps variable names to the term that replaces them.
// Substituting a term not present in the map leaves it unchanged.
type Substitution map[string]Term

// Term applies the substitution to t.
func (s Substitution) Term(t Term) Term {
	if !t.Variable {
		return t
	}
	if repl, ok := s[t.Name]; ok {
		return repl
	}
	return t
}

func (s Substitution) terms(ts []Term) []Term {
	out := make([]Term, len(ts))
	for i, t := range ts {
		out[i] = s.Term(t)
	}
	return out
}

// Atom applies the substitution to every argument of a.
func (s Substitution) Atom(a Atom) Atom {
	return Atom{Predicate: a.Predicate, Args: s.terms(a.Args)}
}

// Literal applies the substitution to l's atom.
func (s Substitution) Literal(l Literal) Literal {
	return Literal{Atom: s.Atom(l.Atom), Negated: l.Negated}
}

// Formula applies the substitution recursively to every leaf literal and
// term of f, skipping (shadowing) any variable locally rebound by a nested
// quantifier's Parameters.
func (s Substitution) Formula(f Formula) Formula {
	switch n := f.(type) {
	case tautologyFormula, contradictionFormula:
		return f
	case TimedLiteral:
		return TimedLiteral{Literal: s.Literal(n.Literal), When: n.When}
	case Conjunction:
		return Conjunction{Conjuncts: s.formulas(n.Conjuncts)}
	case Disjunction:
		return Disjunction{Disjuncts: s.formulas(n.Disjuncts)}
	case Existential:
		return Existential{Parameters: n.Parameters, Body: s.shadow(n.Parameters).Formula(n.Body)}
	case Universal:
		return Universal{Parameters: n.Parameters, Body: s.shadow(n.Parameters).Formula(n.Body)}
	case Equality:
		return Equality{Term1: s.Term(n.Term1), Term2: s.Term(n.Term2)}
	case Inequality:
		return Inequality{Term1: s.Term(n.Term1), Term2: s.Term(n.Term2)}
	default:
		return f
	}
}

func (s Substitution) formulas(fs []Formula) []Formula {
	out := make([]Formula, len(fs))
	for i, f := range fs {
		out[i] = s.Formula(f)
	}
	return out
}

// shadow returns a copy of s with every variable in params removed, so
// that a nested quantifier's own parameters are not substituted.
func (s Substitution) shadow(params []Term) Substitution {
	if len(params) == 0 {
		return s
	}
	out := make(Substitution, len(s))
	for k, v := range s {
		out[k] = v
	}
	for _, p := range params {
		delete(out, p.Name)
	}
	return out
}

// Effect applies the substitution to every field of e except Parameters,
// which name e's own universally quantified variables and are shadowed.
func (s Substitution) Effect(e Effect) Effect {
	local := s.shadow(e.Parameters)
	return Effect{
		Literal:       local.Literal(e.Literal),
		Condition:     local.Formula(e.Condition),
		LinkCondition: local.Formula(e.LinkCondition),
		Parameters:    e.Parameters,
		When:          e.When,
	}
}

// Action applies the substitution to a's precondition and effects,
// shadowed by a's own Parameters, and clears Parameters on the result —
// the returned action is fully specialized with respect to s.
func (s Substitution) Action(a *Action) *Action {
	local := s.shadow(a.Parameters)
	effects := make([]Effect, len(a.Effects))
	for i, e := range a.Effects {
		effects[i] = local.Effect(e)
	}
	return &Action{
		Name:         a.Name,
		Precondition: local.Formula(a.Precondition),
		Effects:      effects,
		Composite:    a.Composite,
		Durative:     a.Durative,
		Duration:     a.Duration,
	}
}
