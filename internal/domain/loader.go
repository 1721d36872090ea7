package domain

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Formulas and literals are authored as S-expressions encoded with YAML
// sequences, e.g.:
//
//	precondition: [and, [on, "?x", "?y"], [clear, "?x"]]
//	effect:       [not, [on, "?x", "?y"]]
//	goal:         [or, [at, person, lax], [at, person, sfo]]
//
// This keeps the loader small while covering every Formula shape §4.2
// dispatches on; it is not a PDDL parser and does not attempt to be one
// (§1: the parser is treated as an external, fixed-interface collaborator
// — this is this repository's concrete stand-in for it).

type rawDomain struct {
	Name           string             `yaml:"name"`
	Requirements   []string           `yaml:"requirements"`
	Predicates     []rawPredicate     `yaml:"predicates"`
	Actions        []rawAction        `yaml:"actions"`
	Decompositions []rawDecomposition `yaml:"decompositions"`
}

type rawPredicate struct {
	Name string   `yaml:"name"`
	Args []string `yaml:"args"`
}

type rawEffect struct {
	Literal       yaml.Node `yaml:"literal"`
	Condition     yaml.Node `yaml:"condition"`
	LinkCondition yaml.Node `yaml:"link_condition"`
	Forall        []string  `yaml:"forall"`
	When          string    `yaml:"when"`
}

type rawAction struct {
	Name         string      `yaml:"name"`
	Parameters   []string    `yaml:"parameters"`
	Precondition yaml.Node   `yaml:"precondition"`
	Effects      []rawEffect `yaml:"effects"`
	Composite    bool        `yaml:"composite"`
	Durative     bool        `yaml:"durative"`
	Duration     float64     `yaml:"duration"`
}

type rawPseudoStep struct {
	ID     int      `yaml:"id"`
	Action string   `yaml:"action"`
	Args   []string `yaml:"args"`
}

type rawOrdering struct {
	Before string `yaml:"before"`
	After  string `yaml:"after"`
}

type rawLocalLink struct {
	From    string    `yaml:"from"`
	To      string    `yaml:"to"`
	Literal yaml.Node `yaml:"literal"`
}

type rawBinding struct {
	Term1   string `yaml:"term1"`
	Term2   string `yaml:"term2"`
	Negated bool   `yaml:"negated"`
}

type rawDecomposition struct {
	Name            string          `yaml:"name"`
	CompositeAction string          `yaml:"composite_action"`
	Parameters      []string        `yaml:"parameters"`
	Steps           []rawPseudoStep `yaml:"steps"`
	Bindings        []rawBinding    `yaml:"bindings"`
	Orderings       []rawOrdering   `yaml:"orderings"`
	Links           []rawLocalLink  `yaml:"links"`
}

// LoadDomain parses a domain YAML document into a Def, computing static
// predicates over the loaded actions before returning.
func LoadDomain(r io.Reader) (*Def, error) {
	var raw rawDomain
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("domain: decode yaml: %w", err)
	}

	def := &Def{Name: raw.Name}
	for _, req := range raw.Requirements {
		switch req {
		case "typing":
			def.Requirements |= RequireTyping
		case "durative-actions":
			def.Requirements |= RequireDurativeActions
		case "decompositions":
			def.Requirements |= RequireDecompositions
		default:
			return nil, fmt.Errorf("domain: unknown requirement %q", req)
		}
	}

	for _, p := range raw.Predicates {
		def.Predicates = append(def.Predicates, PredicateSig{Name: p.Name, Arity: len(p.Args)})
	}

	actionsByName := make(map[string]*Action, len(raw.Actions))
	for _, ra := range raw.Actions {
		a, err := parseAction(ra)
		if err != nil {
			return nil, fmt.Errorf("domain: action %q: %w", ra.Name, err)
		}
		def.Actions = append(def.Actions, a)
		actionsByName[a.Name] = a
	}

	for _, rd := range raw.Decompositions {
		d, err := parseDecomposition(rd, actionsByName)
		if err != nil {
			return nil, fmt.Errorf("domain: decomposition %q: %w", rd.Name, err)
		}
		def.Decompositions = append(def.Decompositions, d)
	}

	def.RecomputeStaticPredicates()
	return def, nil
}

func parseAction(ra rawAction) (*Action, error) {
	params := make([]Term, 0, len(ra.Parameters))
	for _, p := range ra.Parameters {
		params = append(params, ParseTerm(p))
	}

	precond, err := parseFormula(&ra.Precondition)
	if err != nil {
		return nil, fmt.Errorf("precondition: %w", err)
	}

	effects := make([]Effect, 0, len(ra.Effects))
	for i, re := range ra.Effects {
		e, err := parseEffect(re)
		if err != nil {
			return nil, fmt.Errorf("effect[%d]: %w", i, err)
		}
		effects = append(effects, e)
	}

	return &Action{
		Name:         ra.Name,
		Parameters:   params,
		Precondition: precond,
		Effects:      effects,
		Composite:    ra.Composite,
		Durative:     ra.Durative,
		Duration:     ra.Duration,
	}, nil
}

func parseEffect(re rawEffect) (Effect, error) {
	lit, err := parseLiteral(&re.Literal)
	if err != nil {
		return Effect{}, fmt.Errorf("literal: %w", err)
	}
	cond, err := parseFormulaOrDefault(&re.Condition, Tautology)
	if err != nil {
		return Effect{}, fmt.Errorf("condition: %w", err)
	}
	linkCond, err := parseFormulaOrDefault(&re.LinkCondition, Tautology)
	if err != nil {
		return Effect{}, fmt.Errorf("link_condition: %w", err)
	}
	params := make([]Term, 0, len(re.Forall))
	for _, p := range re.Forall {
		params = append(params, ParseTerm(p))
	}
	when := AtEnd
	if re.When == "start" {
		when = AtStart
	}
	return Effect{
		Literal:       lit,
		Condition:     cond,
		LinkCondition: linkCond,
		Parameters:    params,
		When:          when,
	}, nil
}

func parseDecomposition(rd rawDecomposition, actions map[string]*Action) (*Decomposition, error) {
	params := make([]Term, 0, len(rd.Parameters))
	for _, p := range rd.Parameters {
		params = append(params, ParseTerm(p))
	}

	steps := make([]PseudoStep, 0, len(rd.Steps))
	for _, rs := range rd.Steps {
		schema, ok := actions[rs.Action]
		if !ok {
			return nil, fmt.Errorf("step %d: unknown action %q", rs.ID, rs.Action)
		}
		if len(rs.Args) != len(schema.Parameters) {
			return nil, fmt.Errorf("step %d: action %q expects %d args, got %d",
				rs.ID, rs.Action, len(schema.Parameters), len(rs.Args))
		}
		subst := make(Substitution, len(schema.Parameters))
		for i, p := range schema.Parameters {
			subst[p.Name] = ParseTerm(rs.Args[i])
		}
		steps = append(steps, PseudoStep{LocalID: rs.ID, Action: subst.Action(schema)})
	}

	bindings := make([]LocalBinding, 0, len(rd.Bindings))
	for _, rb := range rd.Bindings {
		bindings = append(bindings, LocalBinding{
			Term1:   ParseTerm(rb.Term1),
			Term2:   ParseTerm(rb.Term2),
			Negated: rb.Negated,
		})
	}

	orderings := make([]LocalOrdering, 0, len(rd.Orderings))
	for _, ro := range rd.Orderings {
		before, err := parseLocalRef(ro.Before)
		if err != nil {
			return nil, fmt.Errorf("ordering before %q: %w", ro.Before, err)
		}
		after, err := parseLocalRef(ro.After)
		if err != nil {
			return nil, fmt.Errorf("ordering after %q: %w", ro.After, err)
		}
		orderings = append(orderings, LocalOrdering{Before: before, After: after})
	}

	links := make([]LocalLink, 0, len(rd.Links))
	for _, rl := range rd.Links {
		from, err := parseLocalRef(rl.From)
		if err != nil {
			return nil, fmt.Errorf("link from %q: %w", rl.From, err)
		}
		to, err := parseLocalRef(rl.To)
		if err != nil {
			return nil, fmt.Errorf("link to %q: %w", rl.To, err)
		}
		lit, err := parseLiteral(&rl.Literal)
		if err != nil {
			return nil, fmt.Errorf("link literal: %w", err)
		}
		links = append(links, LocalLink{
			From: from.Step, FromTime: from.Time,
			To: to.Step, ToTime: to.Time,
			Literal: lit,
		})
	}

	return &Decomposition{
		Name:            rd.Name,
		CompositeAction: rd.CompositeAction,
		Parameters:      params,
		PseudoSteps:     steps,
		Bindings:        bindings,
		Orderings:       orderings,
		Links:           links,
	}, nil
}

// parseLocalRef parses "initial@end", "final@start", or "3@start" into a
// LocalStepRef.
func parseLocalRef(s string) (LocalStepRef, error) {
	parts := strings.SplitN(s, "@", 2)
	if len(parts) != 2 {
		return LocalStepRef{}, fmt.Errorf("expected <step>@<start|end>, got %q", s)
	}
	var id int
	switch parts[0] {
	case "initial":
		id = DummyInitialLocalID
	case "final":
		id = DummyFinalLocalID
	default:
		n, err := strconv.Atoi(parts[0])
		if err != nil {
			return LocalStepRef{}, fmt.Errorf("bad step id %q: %w", parts[0], err)
		}
		id = n
	}
	var t Timing
	switch parts[1] {
	case "start":
		t = AtStart
	case "end":
		t = AtEnd
	default:
		return LocalStepRef{}, fmt.Errorf("bad timing %q", parts[1])
	}
	return LocalStepRef{Step: id, Time: t}, nil
}

type rawProblem struct {
	Name                 string              `yaml:"name"`
	Objects              map[string][]string `yaml:"objects"`
	Init                 []yaml.Node         `yaml:"init"`
	TimedInitialLiterals []rawTIL            `yaml:"timed_initial_literals"`
	Goal                 yaml.Node           `yaml:"goal"`
}

type rawTIL struct {
	At      float64   `yaml:"at"`
	Literal yaml.Node `yaml:"literal"`
}

// LoadProblem parses a problem YAML document against an already-loaded
// domain.
func LoadProblem(r io.Reader, dom *Def) (*Problem, error) {
	var raw rawProblem
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&raw); err != nil {
		return nil, fmt.Errorf("problem: decode yaml: %w", err)
	}

	p := &Problem{
		Name:          raw.Name,
		Domain:        dom,
		ObjectsByType: make(map[string][]Term, len(raw.Objects)),
	}
	for typ, names := range raw.Objects {
		for _, n := range names {
			p.ObjectsByType[typ] = append(p.ObjectsByType[typ], Obj(n))
		}
	}

	for i := range raw.Init {
		lit, err := parseLiteral(&raw.Init[i])
		if err != nil {
			return nil, fmt.Errorf("problem: init[%d]: %w", i, err)
		}
		p.Init = append(p.Init, lit)
	}

	for i, rt := range raw.TimedInitialLiterals {
		lit, err := parseLiteral(&rt.Literal)
		if err != nil {
			return nil, fmt.Errorf("problem: timed_initial_literals[%d]: %w", i, err)
		}
		p.TimedInitialLiterals = append(p.TimedInitialLiterals, TimedInitialLiteral{Literal: lit, At: rt.At})
	}

	goal, err := parseFormula(&raw.Goal)
	if err != nil {
		return nil, fmt.Errorf("problem: goal: %w", err)
	}
	p.Goal = goal

	return p, nil
}

// --- S-expression formula parsing -----------------------------------------

func parseFormulaOrDefault(n *yaml.Node, def Formula) (Formula, error) {
	if n == nil || n.Kind == 0 {
		return def, nil
	}
	return parseFormula(n)
}

func parseFormula(n *yaml.Node) (Formula, error) {
	if n == nil || n.Kind == 0 {
		return nil, fmt.Errorf("missing formula")
	}
	if n.Kind == yaml.ScalarNode {
		switch n.Value {
		case "true":
			return Tautology, nil
		case "false":
			return Contradiction, nil
		}
		return nil, fmt.Errorf("unrecognized scalar formula %q", n.Value)
	}
	if n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return nil, fmt.Errorf("formula must be a non-empty sequence, got kind %v", n.Kind)
	}

	op := n.Content[0].Value
	switch op {
	case "and":
		fs, err := parseFormulaList(n.Content[1:])
		if err != nil {
			return nil, err
		}
		return And(fs...), nil
	case "or":
		fs, err := parseFormulaList(n.Content[1:])
		if err != nil {
			return nil, err
		}
		return Or(fs...), nil
	case "not":
		if len(n.Content) != 2 {
			return nil, fmt.Errorf("not takes exactly one argument")
		}
		lit, err := parseLiteral(n)
		if err != nil {
			return nil, err
		}
		return Lit(lit), nil
	case "exists", "forall":
		if len(n.Content) != 3 {
			return nil, fmt.Errorf("%s takes (parameters body)", op)
		}
		if n.Content[1].Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("%s parameters must be a sequence", op)
		}
		params := make([]Term, 0, len(n.Content[1].Content))
		for _, pn := range n.Content[1].Content {
			params = append(params, ParseTerm(pn.Value))
		}
		body, err := parseFormula(n.Content[2])
		if err != nil {
			return nil, err
		}
		if op == "exists" {
			return Existential{Parameters: params, Body: body}, nil
		}
		return Universal{Parameters: params, Body: body}, nil
	case "=":
		t1, t2, err := parseTermPair(n)
		if err != nil {
			return nil, err
		}
		return Equality{Term1: t1, Term2: t2}, nil
	case "!=":
		t1, t2, err := parseTermPair(n)
		if err != nil {
			return nil, err
		}
		return Inequality{Term1: t1, Term2: t2}, nil
	default:
		lit, err := parseLiteral(n)
		if err != nil {
			return nil, err
		}
		return Lit(lit), nil
	}
}

func parseTermPair(n *yaml.Node) (Term, Term, error) {
	if len(n.Content) != 3 {
		return Term{}, Term{}, fmt.Errorf("%s takes exactly two terms", n.Content[0].Value)
	}
	return ParseTerm(n.Content[1].Value), ParseTerm(n.Content[2].Value), nil
}

func parseFormulaList(nodes []*yaml.Node) ([]Formula, error) {
	out := make([]Formula, 0, len(nodes))
	for i, n := range nodes {
		f, err := parseFormula(n)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		out = append(out, f)
	}
	return out, nil
}

// parseLiteral parses an atom sequence, or a (not <atom>) sequence, into a
// Literal.
func parseLiteral(n *yaml.Node) (Literal, error) {
	if n == nil || n.Kind != yaml.SequenceNode || len(n.Content) == 0 {
		return Literal{}, fmt.Errorf("literal must be a non-empty sequence")
	}
	if n.Content[0].Value == "not" {
		if len(n.Content) != 2 {
			return Literal{}, fmt.Errorf("not takes exactly one argument")
		}
		inner, err := parseLiteral(n.Content[1])
		if err != nil {
			return Literal{}, err
		}
		return inner.Negation(), nil
	}
	atom := Atom{Predicate: n.Content[0].Value}
	for _, argNode := range n.Content[1:] {
		atom.Args = append(atom.Args, ParseTerm(argNode.Value))
	}
	return Literal{Atom: atom}, nil
}
