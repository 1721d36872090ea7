// Package domain holds the planning problem's data model: typed terms,
// formulas, action and decomposition schemas, and the domain/problem pair
// the core consumes. It is the concrete (if intentionally modest) stand-in
// for the PDDL-like front end the planning core treats as a fixed,
// external collaborator.
package domain

import "strings"

// Timing distinguishes the start and end instant of a (possibly durative)
// step, mirroring the StepTime enum every ordering and effect carries.
type Timing int

const (
	AtStart Timing = iota
	AtEnd
)

func (t Timing) String() string {
	if t == AtStart {
		return "start"
	}
	return "end"
}

// Term is either a free variable (conventionally written "?x") or a bound
// object/constant from the problem's typed constant table.
type Term struct {
	Name     string
	Variable bool
}

// Var constructs a variable term. By convention names begin with "?", but
// the constructor does not require it.
func Var(name string) Term { return Term{Name: name, Variable: true} }

// Obj constructs an object (constant) term.
func Obj(name string) Term { return Term{Name: name, Variable: false} }

// ParseTerm parses a term from its surface syntax: a leading "?" marks a
// variable, anything else is an object name.
func ParseTerm(s string) Term {
	if strings.HasPrefix(s, "?") {
		return Var(s)
	}
	return Obj(s)
}

func (t Term) String() string { return t.Name }

// Atom is a predicate applied to terms, e.g. (on ?x ?y).
type Atom struct {
	Predicate string
	Args      []Term
}

func (a Atom) String() string {
	var sb strings.Builder
	sb.WriteByte('(')
	sb.WriteString(a.Predicate)
	for _, t := range a.Args {
		sb.WriteByte(' ')
		sb.WriteString(t.Name)
	}
	sb.WriteByte(')')
	return sb.String()
}

// Literal is a possibly-negated atom.
type Literal struct {
	Atom    Atom
	Negated bool
}

func (l Literal) String() string {
	if l.Negated {
		return "(not " + l.Atom.String() + ")"
	}
	return l.Atom.String()
}

// Negation returns the logical complement of l.
func (l Literal) Negation() Literal {
	return Literal{Atom: l.Atom, Negated: !l.Negated}
}
