// Package heuristic provides the pluggable plan-ranking interface (C8,
// §4.8) and a relaxed planning-graph stand-in used both for literal
// achiever lookups (§4.5.2's add-step refinement) and for goal-distance
// estimates. The graph is intentionally modest: it tracks reachability by
// predicate name rather than fully grounded atoms, a simplification noted
// in the accompanying design ledger.
package heuristic

import (
	"github.com/arcflow-labs/pocl/internal/domain"
)

// Achiever pairs an action schema with the specific effect of that schema
// that can establish a literal.
type Achiever struct {
	Action *domain.Action
	Effect domain.Effect
}

// Graph is a relaxed planning graph: a level-by-level expansion from the
// initial state's predicates, ignoring delete effects and argument
// bindings, used to estimate goal distance and to answer literal-achiever
// queries. Achievers filters the static achiever maps down to those
// reachable in the graph when the search is configured with
// ground_actions; argDomains backs the domain_constraints check, which
// intersects a new step's bound arguments against the objects ever seen
// filling the same (predicate, position) slot.
type Graph struct {
	achievesPred    map[string][]Achiever
	achievesNegPred map[string][]Achiever
	level           map[string]int
	maxLevel        int
	reachable       map[string]bool
	argDomains      map[string][]map[string]bool
}

// BuildAchieverIndex scans every non-dummy action's effects once and
// returns the achieves_pred / achieves_neg_pred maps §4.5.2 names: literal
// predicate name to every (action, effect) able to establish it. Exported
// separately from BuildGraph's level expansion so a caller (internal/core's
// search-context setup) can run the two scans concurrently — they are
// independent, read-only passes over the same domain.
func BuildAchieverIndex(dom *domain.Def) (map[string][]Achiever, map[string][]Achiever) {
	pos := make(map[string][]Achiever)
	neg := make(map[string][]Achiever)
	for _, a := range dom.Actions {
		if a.IsDummy() {
			continue
		}
		for _, eff := range a.Effects {
			if eff.Literal.Negated {
				neg[eff.Literal.Atom.Predicate] = append(neg[eff.Literal.Atom.Predicate], Achiever{Action: a, Effect: eff})
			} else {
				pos[eff.Literal.Atom.Predicate] = append(pos[eff.Literal.Atom.Predicate], Achiever{Action: a, Effect: eff})
			}
		}
	}
	return pos, neg
}

// BuildLevelMap performs the relaxed forward expansion from init's positive
// predicates: a predicate's level is the first graph layer at which some
// action's positive-precondition predicates are already present and that
// action has an effect on it.
func BuildLevelMap(dom *domain.Def, init []domain.Literal) (map[string]int, int) {
	level := make(map[string]int)
	known := make(map[string]bool)
	for _, lit := range init {
		if !lit.Negated {
			known[lit.Atom.Predicate] = true
			level[lit.Atom.Predicate] = 0
		}
	}

	maxLevel := 0
	const maxLevels = 64
	for lvl := 1; lvl <= maxLevels; lvl++ {
		var fresh []string
		for _, a := range dom.Actions {
			if a.IsDummy() {
				continue
			}
			if !preconditionSatisfied(a.Precondition, known) {
				continue
			}
			for _, eff := range a.Effects {
				if eff.Literal.Negated {
					continue
				}
				pred := eff.Literal.Atom.Predicate
				if !known[pred] {
					fresh = append(fresh, pred)
				}
			}
		}
		added := false
		for _, pred := range fresh {
			if !known[pred] {
				known[pred] = true
				level[pred] = lvl
				added = true
			}
		}
		if !added {
			maxLevel = lvl - 1
			break
		}
		maxLevel = lvl
	}
	return level, maxLevel
}

// BuildArgumentDomains scans init's ground literals and records, for each
// predicate and argument position, every object observed filling that
// slot — the per-slot domain restriction §4.5.2 step 4's domain_constraints
// check intersects a new step's bound arguments against. A slot the
// initial state never populates carries no restriction at all (nil,
// treated as unconstrained by ArgumentDomain), rather than an empty set
// that would reject every binding.
func BuildArgumentDomains(init []domain.Literal) map[string][]map[string]bool {
	out := make(map[string][]map[string]bool)
	for _, lit := range init {
		positions := out[lit.Atom.Predicate]
		for i, arg := range lit.Atom.Args {
			if arg.Variable {
				continue
			}
			for len(positions) <= i {
				positions = append(positions, nil)
			}
			if positions[i] == nil {
				positions[i] = make(map[string]bool)
			}
			positions[i][arg.Name] = true
		}
		out[lit.Atom.Predicate] = positions
	}
	return out
}

// NewGraph assembles a Graph from pre-built achiever, level, and
// argument-domain maps.
func NewGraph(achievesPred, achievesNegPred map[string][]Achiever, level map[string]int, maxLevel int, argDomains map[string][]map[string]bool) *Graph {
	reachable := make(map[string]bool, len(level))
	for pred := range level {
		reachable[pred] = true
	}
	return &Graph{
		achievesPred:    achievesPred,
		achievesNegPred: achievesNegPred,
		level:           level,
		maxLevel:        maxLevel,
		reachable:       reachable,
		argDomains:      argDomains,
	}
}

// BuildGraph constructs the relaxed planning graph for dom and init's
// initial state, running the achiever-index, level-map, and
// argument-domain scans sequentially. Callers that want the scans run
// concurrently (§5's addition) should call BuildAchieverIndex,
// BuildLevelMap, and BuildArgumentDomains directly and assemble the
// result with NewGraph.
func BuildGraph(dom *domain.Def, init []domain.Literal) *Graph {
	pos, neg := BuildAchieverIndex(dom)
	level, maxLevel := BuildLevelMap(dom, init)
	argDomains := BuildArgumentDomains(init)
	return NewGraph(pos, neg, level, maxLevel, argDomains)
}

// preconditionSatisfied conservatively tests whether every positive
// predicate mentioned in f is already known, treating disjunction as
// satisfied if any disjunct is and existentials/universals as satisfied if
// their body is (the relaxation this graph performs: no bindings, no
// negation-as-failure, no delete effects).
func preconditionSatisfied(f domain.Formula, known map[string]bool) bool {
	switch v := f.(type) {
	case domain.TimedLiteral:
		if v.Literal.Negated {
			return true
		}
		return known[v.Literal.Atom.Predicate]
	case domain.Conjunction:
		for _, c := range v.Conjuncts {
			if !preconditionSatisfied(c, known) {
				return false
			}
		}
		return true
	case domain.Disjunction:
		for _, d := range v.Disjuncts {
			if preconditionSatisfied(d, known) {
				return true
			}
		}
		return len(v.Disjuncts) == 0
	case domain.Existential:
		return preconditionSatisfied(v.Body, known)
	case domain.Universal:
		return preconditionSatisfied(v.Body, known)
	case domain.Equality, domain.Inequality:
		return true
	default:
		return true
	}
}

// Achievers returns every (action, effect) pair able to establish literal,
// filtered to non-dummy actions (§4.5.2: "whose action name does not begin
// with <"). literal_achievers consults the planning graph when
// groundActions is set, narrowing the static maps to the achievers whose
// precondition the relaxed graph has actually found reachable; otherwise
// it returns the static predicate->achievers maps unfiltered (§4.5.2 step
// 2's "add step" case).
func (g *Graph) Achievers(literal domain.Literal, groundActions bool) []Achiever {
	var all []Achiever
	if literal.Negated {
		all = g.achievesNegPred[literal.Atom.Predicate]
	} else {
		all = g.achievesPred[literal.Atom.Predicate]
	}
	if !groundActions {
		return all
	}
	out := make([]Achiever, 0, len(all))
	for _, ach := range all {
		if preconditionSatisfied(ach.Action.Precondition, g.reachable) {
			out = append(out, ach)
		}
	}
	return out
}

// ArgumentDomain returns the set of objects the initial state ever placed
// in predicate's argument position index, and whether that slot carries
// any restriction at all. A predicate/position the initial state never
// populated is unrestricted (false), so callers treat it as "anything
// goes" rather than "nothing is allowed".
func (g *Graph) ArgumentDomain(predicate string, index int) (map[string]bool, bool) {
	positions := g.argDomains[predicate]
	if index < 0 || index >= len(positions) || len(positions[index]) == 0 {
		return nil, false
	}
	return positions[index], true
}

// Level returns the first relaxed-graph layer at which predicate becomes
// known, and whether it is reachable at all within the graph's horizon.
func (g *Graph) Level(predicate string) (int, bool) {
	lvl, ok := g.level[predicate]
	return lvl, ok
}

// Distance estimates the number of relaxed-graph layers between the
// initial state and literal becoming true: 0 if already known, g.maxLevel+1
// (a conservative "far") if never reached within the horizon.
func (g *Graph) Distance(literal domain.Literal) int {
	if literal.Negated {
		return 0
	}
	lvl, ok := g.Level(literal.Atom.Predicate)
	if !ok {
		return g.maxLevel + 1
	}
	return lvl
}
