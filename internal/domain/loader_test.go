package domain

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

const trivialDomainYAML = `
name: trivial
requirements: [typing]
predicates:
  - {name: p, args: []}
actions:
  - name: A
    parameters: []
    precondition: [true]
    effects:
      - literal: [p]
`

func TestLoadDomainTrivial(t *testing.T) {
	// precondition "[true]" is intentionally malformed (true is scalar,
	// not a sequence) to exercise the scalar tautology path instead.
	yamlDoc := strings.Replace(trivialDomainYAML, "precondition: [true]", "precondition: true", 1)

	def, err := LoadDomain(strings.NewReader(yamlDoc))
	require.NoError(t, err)
	require.Len(t, def.Actions, 1)

	a := def.Actions[0]
	require.Equal(t, "A", a.Name)
	require.True(t, IsTautology(a.Precondition))
	require.Len(t, a.Effects, 1)
	require.Equal(t, "p", a.Effects[0].Literal.Atom.Predicate)
	require.False(t, a.Effects[0].Literal.Negated)
	require.True(t, def.Requirements.Has(RequireTyping))
}

func TestLoadDomainConjunctionAndNegation(t *testing.T) {
	yamlDoc := `
name: d
predicates:
  - {name: on, args: [a, b]}
  - {name: clear, args: [a]}
actions:
  - name: stack
    parameters: ["?x", "?y"]
    precondition: [and, [clear, "?x"], [not, [on, "?x", "?y"]]]
    effects:
      - literal: [on, "?x", "?y"]
      - literal: [not, [clear, "?y"]]
`
	def, err := LoadDomain(strings.NewReader(yamlDoc))
	require.NoError(t, err)
	a := def.ActionByName("stack")
	require.NotNil(t, a)

	conj, ok := a.Precondition.(Conjunction)
	require.True(t, ok)
	require.Len(t, conj.Conjuncts, 2)

	negLit := conj.Conjuncts[1].(TimedLiteral)
	require.True(t, negLit.Literal.Negated)
	require.Equal(t, "on", negLit.Literal.Atom.Predicate)

	require.Len(t, a.Effects, 2)
	require.True(t, a.Effects[1].Literal.Negated)
}

func TestLoadProblemAndGoal(t *testing.T) {
	domYAML := `
name: d
predicates:
  - {name: p, args: []}
  - {name: q, args: []}
actions: []
`
	dom, err := LoadDomain(strings.NewReader(domYAML))
	require.NoError(t, err)

	probYAML := `
name: prob
objects:
  block: [a, b]
init:
  - [p]
goal: [or, [p], [q]]
`
	prob, err := LoadProblem(strings.NewReader(probYAML), dom)
	require.NoError(t, err)
	require.Len(t, prob.Init, 1)
	require.Equal(t, "p", prob.Init[0].Atom.Predicate)

	disj, ok := prob.Goal.(Disjunction)
	require.True(t, ok)
	require.Len(t, disj.Disjuncts, 2)

	require.ElementsMatch(t, []string{"a", "b"}, namesOf(prob.ObjectsByType["block"]))
}

func TestLoadDomainNestedFormulaMatchesHandBuiltTree(t *testing.T) {
	yamlDoc := `
name: d
predicates:
  - {name: clear, args: [a]}
  - {name: on, args: [a, b]}
actions:
  - name: unstack
    parameters: ["?x", "?y"]
    precondition: [and, [clear, "?x"], [or, [on, "?x", "?y"], [not, [clear, "?y"]]]]
    effects:
      - literal: [clear, "?y"]
`
	def, err := LoadDomain(strings.NewReader(yamlDoc))
	require.NoError(t, err)
	a := def.ActionByName("unstack")
	require.NotNil(t, a)

	x, y := Var("?x"), Var("?y")
	want := And(
		Lit(Literal{Atom: Atom{Predicate: "clear", Args: []Term{x}}}),
		Or(
			Lit(Literal{Atom: Atom{Predicate: "on", Args: []Term{x, y}}}),
			Lit(Literal{Atom: Atom{Predicate: "clear", Args: []Term{y}}, Negated: true}),
		),
	)

	if diff := cmp.Diff(want, a.Precondition); diff != "" {
		t.Errorf("parsed precondition tree differs from hand-built expectation:\n%s", diff)
	}
}

func namesOf(ts []Term) []string {
	out := make([]string, len(ts))
	for i, t := range ts {
		out[i] = t.Name
	}
	return out
}
