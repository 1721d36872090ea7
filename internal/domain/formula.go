package domain

import "strings"

// Formula is the sealed union over goal-formula shapes: tautology,
// contradiction, (timed) literal, conjunction, disjunction, existential,
// universal, equality, and inequality. The unrolling in the core package
// dispatches over these with a type switch rather than an open visitor
// interface, matching the shapes §4.2 enumerates exactly.
type Formula interface {
	formulaNode()
}

// tautologyFormula and contradictionFormula are unexported so that the
// only way to produce one is through the exported singletons below; this
// keeps the type switch in the unroller exhaustive.
type tautologyFormula struct{}
type contradictionFormula struct{}

func (tautologyFormula) formulaNode()     {}
func (contradictionFormula) formulaNode() {}

// Tautology and Contradiction are the two propositional-constant formulas.
var (
	Tautology    Formula = tautologyFormula{}
	Contradiction Formula = contradictionFormula{}
)

// IsTautology and IsContradiction test for the two constant formulas,
// since they carry no fields to compare.
func IsTautology(f Formula) bool {
	_, ok := f.(tautologyFormula)
	return ok
}

func IsContradiction(f Formula) bool {
	_, ok := f.(contradictionFormula)
	return ok
}

// TimedLiteral is a literal scoped to a timing instant, the leaf of every
// goal and condition formula.
type TimedLiteral struct {
	Literal Literal
	When    Timing
}

func (TimedLiteral) formulaNode() {}

// Lit builds an untimed (AtStart) timed literal, the common case for
// instantaneous actions.
func Lit(l Literal) TimedLiteral { return TimedLiteral{Literal: l, When: AtStart} }

// Conjunction is a logical AND over its conjuncts.
type Conjunction struct {
	Conjuncts []Formula
}

func (Conjunction) formulaNode() {}

// And is a convenience constructor that collapses the trivial cases.
func And(fs ...Formula) Formula {
	if len(fs) == 0 {
		return Tautology
	}
	if len(fs) == 1 {
		return fs[0]
	}
	return Conjunction{Conjuncts: fs}
}

// Disjunction is a logical OR over its disjuncts.
type Disjunction struct {
	Disjuncts []Formula
}

func (Disjunction) formulaNode() {}

// Or is a convenience constructor that collapses the trivial cases.
func Or(fs ...Formula) Formula {
	if len(fs) == 0 {
		return Contradiction
	}
	if len(fs) == 1 {
		return fs[0]
	}
	return Disjunction{Disjuncts: fs}
}

// Existential existentially quantifies Body over Parameters.
type Existential struct {
	Parameters []Term
	Body       Formula
}

func (Existential) formulaNode() {}

// Universal universally quantifies Body over Parameters. During goal
// unrolling it is rewritten to UniversalBase over the problem's constants
// before recursing (§4.2).
type Universal struct {
	Parameters []Term
	Body       Formula
}

func (Universal) formulaNode() {}

// Equality is a binding literal: term1 = term2.
type Equality struct {
	Term1, Term2 Term
}

func (Equality) formulaNode() {}

// Inequality is a binding literal: term1 != term2.
type Inequality struct {
	Term1, Term2 Term
}

func (Inequality) formulaNode() {}

// FormulaString renders f for diagnostic output (the verbosity >= 2 plan
// dump and flaw descriptions); it is not a parser round-trip format.
func FormulaString(f Formula) string {
	switch v := f.(type) {
	case tautologyFormula:
		return "true"
	case contradictionFormula:
		return "false"
	case TimedLiteral:
		return v.Literal.String()
	case Conjunction:
		parts := make([]string, len(v.Conjuncts))
		for i, c := range v.Conjuncts {
			parts[i] = FormulaString(c)
		}
		return "(and " + strings.Join(parts, " ") + ")"
	case Disjunction:
		parts := make([]string, len(v.Disjuncts))
		for i, d := range v.Disjuncts {
			parts[i] = FormulaString(d)
		}
		return "(or " + strings.Join(parts, " ") + ")"
	case Existential:
		return "(exists " + termsString(v.Parameters) + " " + FormulaString(v.Body) + ")"
	case Universal:
		return "(forall " + termsString(v.Parameters) + " " + FormulaString(v.Body) + ")"
	case Equality:
		return "(= " + v.Term1.String() + " " + v.Term2.String() + ")"
	case Inequality:
		return "(!= " + v.Term1.String() + " " + v.Term2.String() + ")"
	default:
		return "<?formula?>"
	}
}

// Negate returns the logical complement of f, pushed down to the leaves
// via De Morgan's laws. Used by the unsafe-link and mutex-threat
// separation refinements to build "this effect's condition never held"
// goals (§4.5.1, §4.5.3).
func Negate(f Formula) Formula {
	switch v := f.(type) {
	case tautologyFormula:
		return Contradiction
	case contradictionFormula:
		return Tautology
	case TimedLiteral:
		return TimedLiteral{Literal: v.Literal.Negation(), When: v.When}
	case Conjunction:
		return Disjunction{Disjuncts: negateAll(v.Conjuncts)}
	case Disjunction:
		return Conjunction{Conjuncts: negateAll(v.Disjuncts)}
	case Existential:
		return Universal{Parameters: v.Parameters, Body: Negate(v.Body)}
	case Universal:
		return Existential{Parameters: v.Parameters, Body: Negate(v.Body)}
	case Equality:
		return Inequality{Term1: v.Term1, Term2: v.Term2}
	case Inequality:
		return Equality{Term1: v.Term1, Term2: v.Term2}
	default:
		return Contradiction
	}
}

func negateAll(fs []Formula) []Formula {
	out := make([]Formula, len(fs))
	for i, f := range fs {
		out[i] = Negate(f)
	}
	return out
}

func termsString(ts []Term) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " ") + ")"
}
