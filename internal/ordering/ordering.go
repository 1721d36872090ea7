// Package ordering implements the two ordering-constraint engines §3 and
// §4.7 describe: a binary variant (precedence only) and a temporal variant
// (precedence plus minimum separations, for makespan scheduling). Both
// share the Orderings capability set (§9: "Polymorphic orderings ...
// expose the same capability set ... an interface abstraction with two
// variants") — here that is realized as one weighted-DAG implementation
// used by both constructors, since a binary ordering is exactly a
// temporal ordering whose every separation is zero.
package ordering

import (
	"github.com/arcflow-labs/pocl/internal/domain"
)

// Orderings is an immutable precedence DAG over step instants
// (domain.StepRef). An edge before -> after means "after must occur no
// earlier than minSeparation time units after before occurs" — for the
// binary variant every edge carries separation 0, meaning precedence with
// no numeric meaning beyond ordering. The absence of a path between two
// refs in either direction means they are possibly concurrent.
//
// Refine rejects any edge that would close a cycle, which is the DAG's
// only consistency rule (§8: "Orderings are consistent (refine returns ⊥
// otherwise)"): a cycle would force some step's instant to occur both
// before and after another's, which can never be scheduled.
type Orderings struct {
	temporal bool
	edges    map[domain.StepRef]map[domain.StepRef]float64
	// durations holds the intra-step start->end separation for every step
	// the orderings have been told about, so Schedule can compute a
	// critical path even for steps with no further constraints.
	durations map[int]float64
}

// NewBinary returns an empty binary (precedence-only) Orderings.
func NewBinary() *Orderings {
	return &Orderings{edges: make(map[domain.StepRef]map[domain.StepRef]float64), durations: make(map[int]float64)}
}

// NewTemporal returns an empty temporal Orderings, whose Schedule computes
// a real makespan from per-step durations registered via SeedStep.
func NewTemporal() *Orderings {
	return &Orderings{temporal: true, edges: make(map[domain.StepRef]map[domain.StepRef]float64), durations: make(map[int]float64)}
}

// Temporal reports whether o is the temporal variant.
func (o *Orderings) Temporal() bool { return o.temporal }

func (o *Orderings) clone() *Orderings {
	edges := make(map[domain.StepRef]map[domain.StepRef]float64, len(o.edges))
	for k, v := range o.edges {
		inner := make(map[domain.StepRef]float64, len(v))
		for k2, w := range v {
			inner[k2] = w
		}
		edges[k] = inner
	}
	durations := make(map[int]float64, len(o.durations))
	for k, v := range o.durations {
		durations[k] = v
	}
	return &Orderings{temporal: o.temporal, edges: edges, durations: durations}
}

// SeedStep registers a step's duration (0 for instantaneous actions) so
// that Schedule can account for its start->end span even if no other
// ordering mentions it. Returns a new Orderings; a no-op if the step is
// already registered.
func (o *Orderings) SeedStep(step int, duration float64) *Orderings {
	if _, ok := o.durations[step]; ok {
		return o
	}
	out := o.clone()
	out.durations[step] = duration
	out.edges[domain.StepRef{Step: step, Time: domain.AtStart}] = out.edges[domain.StepRef{Step: step, Time: domain.AtStart}]
	return out
}

// Refine adds the constraint before -> after (after occurs no earlier
// than minSeparation past before) and returns the resulting Orderings and
// true, or nil and false if doing so would close a cycle.
func (o *Orderings) Refine(before, after domain.StepRef, minSeparation float64) (*Orderings, bool) {
	if before == after {
		return o, true
	}
	if o.reachable(after, before) {
		return nil, false
	}
	out := o.clone()
	inner := out.edges[before]
	if inner == nil {
		inner = make(map[domain.StepRef]float64)
		out.edges[before] = inner
	}
	if existing, ok := inner[after]; !ok || minSeparation > existing {
		inner[after] = minSeparation
	}
	return out, true
}

func (o *Orderings) neighbors(from domain.StepRef) map[domain.StepRef]float64 {
	out := o.edges[from]
	if from.Time == domain.AtStart {
		dur := o.durations[from.Step]
		merged := make(map[domain.StepRef]float64, len(out)+1)
		for k, v := range out {
			merged[k] = v
		}
		end := domain.StepRef{Step: from.Step, Time: domain.AtEnd}
		if existing, ok := merged[end]; !ok || existing < dur {
			merged[end] = dur
		}
		return merged
	}
	return out
}

func (o *Orderings) reachable(from, to domain.StepRef) bool {
	if from == to {
		return true
	}
	visited := map[domain.StepRef]bool{from: true}
	queue := []domain.StepRef{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for next := range o.neighbors(cur) {
			if next == to {
				return true
			}
			if !visited[next] {
				visited[next] = true
				queue = append(queue, next)
			}
		}
	}
	return false
}

// PossiblyBefore reports whether a could occur before b — true unless b
// is already forced to occur at or before a.
func (o *Orderings) PossiblyBefore(a, b domain.StepRef) bool {
	return !o.reachable(b, a) || a == b
}

// PossiblyNotAfter reports whether a could occur at or before b — i.e.
// whether a is not necessarily strictly after b.
func (o *Orderings) PossiblyNotAfter(a, b domain.StepRef) bool {
	return !o.reachable(b, a) || a == b
}

// PossiblyNotBefore reports whether a could occur at or after b.
func (o *Orderings) PossiblyNotBefore(a, b domain.StepRef) bool {
	return !o.reachable(a, b) || a == b
}

// PossiblyConcurrent reports whether any of the requested instant pairs
// between s1 and s2 could occur simultaneously (neither forced before the
// other). checkSS/SE/ES/EE select which of the four start/end combinations
// to test; PossiblyConcurrent returns true if any selected combination is
// unordered.
func (o *Orderings) PossiblyConcurrent(s1, s2 int, checkSS, checkSE, checkES, checkEE bool) bool {
	test := func(t1, t2 domain.Timing) bool {
		a := domain.StepRef{Step: s1, Time: t1}
		b := domain.StepRef{Step: s2, Time: t2}
		return !o.reachable(a, b) && !o.reachable(b, a)
	}
	if checkSS && test(domain.AtStart, domain.AtStart) {
		return true
	}
	if checkSE && test(domain.AtStart, domain.AtEnd) {
		return true
	}
	if checkES && test(domain.AtEnd, domain.AtStart) {
		return true
	}
	if checkEE && test(domain.AtEnd, domain.AtEnd) {
		return true
	}
	return false
}

// Schedule computes the critical-path makespan of every step registered
// via SeedStep or mentioned in an edge, returning false if the ordering
// set is empty (no steps registered).
func (o *Orderings) Schedule() (float64, bool) {
	nodes := o.allNodes()
	if len(nodes) == 0 {
		return 0, false
	}
	dist := make(map[domain.StepRef]float64, len(nodes))
	order := o.topoOrder(nodes)
	for _, n := range order {
		best := dist[n]
		for next, w := range o.neighbors(n) {
			if cand := best + w; cand > dist[next] {
				dist[next] = cand
			}
		}
	}
	makespan := 0.0
	for _, d := range dist {
		if d > makespan {
			makespan = d
		}
	}
	return makespan, true
}

// StartTime returns the critical-path-scheduled start time of step under
// the temporal engine, and whether step is known to this Orderings at
// all (registered via SeedStep or mentioned in some edge).
func (o *Orderings) StartTime(step int) (float64, bool) {
	nodes := o.allNodes()
	ref := domain.StepRef{Step: step, Time: domain.AtStart}
	if !nodes[ref] {
		return 0, false
	}
	dist := make(map[domain.StepRef]float64, len(nodes))
	for _, n := range o.topoOrder(nodes) {
		best := dist[n]
		for next, w := range o.neighbors(n) {
			if cand := best + w; cand > dist[next] {
				dist[next] = cand
			}
		}
	}
	return dist[ref], true
}

func (o *Orderings) allNodes() map[domain.StepRef]bool {
	nodes := make(map[domain.StepRef]bool)
	for from, inner := range o.edges {
		nodes[from] = true
		for to := range inner {
			nodes[to] = true
		}
	}
	for step := range o.durations {
		nodes[domain.StepRef{Step: step, Time: domain.AtStart}] = true
		nodes[domain.StepRef{Step: step, Time: domain.AtEnd}] = true
	}
	return nodes
}

// topoOrder returns nodes in a valid topological order via Kahn's
// algorithm. The DAG invariant is maintained by Refine, so this never
// encounters a cycle.
func (o *Orderings) topoOrder(nodes map[domain.StepRef]bool) []domain.StepRef {
	indegree := make(map[domain.StepRef]int, len(nodes))
	for n := range nodes {
		indegree[n] = 0
	}
	for n := range nodes {
		for next := range o.neighbors(n) {
			indegree[next]++
		}
	}
	var queue []domain.StepRef
	for n := range nodes {
		if indegree[n] == 0 {
			queue = append(queue, n)
		}
	}
	var order []domain.StepRef
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		order = append(order, cur)
		for next := range o.neighbors(cur) {
			indegree[next]--
			if indegree[next] == 0 {
				queue = append(queue, next)
			}
		}
	}
	return order
}
