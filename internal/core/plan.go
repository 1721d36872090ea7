// Package core implements C1-C6: the partial-plan value, the goal
// unroller, the flaw index, the threat detector, the refinement
// generators, and the decomposition expander. The search driver lives in
// internal/search and ranking in internal/heuristic.
package core

import (
	"github.com/arcflow-labs/pocl/internal/bindings"
	"github.com/arcflow-labs/pocl/internal/chain"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/flaw"
	"github.com/arcflow-labs/pocl/internal/ordering"
)

// Plan is the immutable partial-plan value (C1, §3, §4.1). Every field
// except the lazily computed rank vector and the serial id is fixed at
// construction; refinement generators build new Plans by consing onto (or
// filtering) the chains below, never by mutating an existing Plan. Fields
// are unexported; C1 calls for "read-only accessors for each chain and
// counter" rather than direct field access, so every chain and counter has
// a matching exported method below.
type Plan struct {
	steps    *chain.Chain[domain.Step]
	numSteps int

	links    *chain.Chain[domain.Link]
	numLinks int

	orderings *ordering.Orderings
	bindings  *bindings.Bindings

	frames    *chain.Chain[*Frame]
	numFrames int

	decompositionLinks    *chain.Chain[domain.DecompositionLink]
	numDecompositionLinks int

	unsafes    *chain.Chain[flaw.Unsafe]
	numUnsafes int

	openConds    *chain.Chain[flaw.OpenCondition]
	numOpenConds int

	unexpandedSteps    *chain.Chain[flaw.UnexpandedStep]
	numUnexpandedSteps int

	mutexThreats *chain.Chain[flaw.MutexThreat]

	rank   []float64
	ranked bool
	serial int
}

func (p *Plan) Steps() *chain.Chain[domain.Step]           { return p.steps }
func (p *Plan) NumSteps() int                              { return p.numSteps }
func (p *Plan) Links() *chain.Chain[domain.Link]           { return p.links }
func (p *Plan) NumLinks() int                              { return p.numLinks }
func (p *Plan) Orderings() *ordering.Orderings             { return p.orderings }
func (p *Plan) Bindings() *bindings.Bindings               { return p.bindings }
func (p *Plan) Frames() *chain.Chain[*Frame]               { return p.frames }
func (p *Plan) NumFrames() int                             { return p.numFrames }
func (p *Plan) DecompositionLinks() *chain.Chain[domain.DecompositionLink] {
	return p.decompositionLinks
}
func (p *Plan) NumDecompositionLinks() int                 { return p.numDecompositionLinks }
func (p *Plan) Unsafes() *chain.Chain[flaw.Unsafe]          { return p.unsafes }
func (p *Plan) NumUnsafes() int                             { return p.numUnsafes }
func (p *Plan) OpenConds() *chain.Chain[flaw.OpenCondition] { return p.openConds }
func (p *Plan) NumOpenConditions() int                      { return p.numOpenConds }
func (p *Plan) UnexpandedSteps() *chain.Chain[flaw.UnexpandedStep] {
	return p.unexpandedSteps
}
func (p *Plan) NumUnexpandedSteps() int                { return p.numUnexpandedSteps }
func (p *Plan) MutexThreats() *chain.Chain[flaw.MutexThreat] { return p.mutexThreats }
func (p *Plan) NumMutexThreats() int                   { return chain.Len(p.mutexThreats) }

// Complete reports whether every flaw chain is empty (§3's invariant).
func (p *Plan) Complete() bool {
	return p.unsafes == nil && p.openConds == nil && p.unexpandedSteps == nil && p.mutexThreats == nil
}

// SerialNo returns the plan's generation-order serial id, assigned by the
// search driver when the plan was enqueued (§4.7).
func (p *Plan) SerialNo() int { return p.serial }

// WithSerial returns a shallow copy of p with its serial id set. Serial
// ids and the rank cache are the only fields a Plan may have set after
// construction, so this does not violate C1's immutability of the
// structural fields.
func (p *Plan) WithSerial(serial int) *Plan {
	cp := *p
	cp.serial = serial
	cp.ranked = false
	return &cp
}

// PrimaryRank lazily computes and caches p's rank vector via sc.Rank
// (§4.8), and returns it. Subsequent calls return the cached vector.
func (p *Plan) PrimaryRank(sc *SearchContext) []float64 {
	if !p.ranked {
		p.rank = sc.Rank.Rank(p, sc.Parameters.Weight, sc.Domain, sc.Graph)
		p.ranked = true
	}
	return p.rank
}

// OpenConditionLiterals implements heuristic.PlanFacts: the literals of
// every literal-shaped (as opposed to disjunctive or inequality) open
// condition, for graph-distance-weighted ranking.
func (p *Plan) OpenConditionLiterals() []domain.Literal {
	out := make([]domain.Literal, 0, p.numOpenConds)
	for c := p.openConds; c != nil; c = c.Tail {
		if c.Head.Shape == flaw.ShapeLiteral {
			out = append(out, c.Head.Literal)
		}
	}
	return out
}

// StepByID returns the step with the given id, or false if none matches.
func (p *Plan) StepByID(id int) (domain.Step, bool) {
	return chain.Find(p.steps, func(s domain.Step) bool { return s.ID == id })
}

// LinksTo returns every link whose To field matches id.
func (p *Plan) LinksTo(id int) []domain.Link {
	var out []domain.Link
	for c := p.links; c != nil; c = c.Tail {
		if c.Head.To == id {
			out = append(out, c.Head)
		}
	}
	return out
}

// LinksFrom returns every link whose From field matches id.
func (p *Plan) LinksFrom(id int) []domain.Link {
	var out []domain.Link
	for c := p.links; c != nil; c = c.Tail {
		if c.Head.From == id {
			out = append(out, c.Head)
		}
	}
	return out
}

// Less is the lexicographic comparator §4.1/§8 describe: p sorts before
// other iff p's rank vector is lexicographically smaller.
func Less(p, other *Plan, sc *SearchContext) bool {
	pr, or := p.PrimaryRank(sc), other.PrimaryRank(sc)
	n := len(pr)
	if len(or) > n {
		n = len(or)
	}
	for i := 0; i < n; i++ {
		var a, b float64
		if i < len(pr) {
			a = pr[i]
		}
		if i < len(or) {
			b = or[i]
		}
		if a != b {
			return a < b
		}
	}
	return false
}
