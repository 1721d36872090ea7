package core

import (
	"context"
	"fmt"
	"math/rand"
	"sync"

	"github.com/arcflow-labs/pocl/internal/config"
	"github.com/arcflow-labs/pocl/internal/domain"
	"github.com/arcflow-labs/pocl/internal/heuristic"
	"github.com/arcflow-labs/pocl/internal/observability"
	"github.com/arcflow-labs/pocl/internal/ordering"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// SearchContext is the process-scoped environment §5 describes: "per
// search invocation there is process-scoped context: planner parameters,
// domain, problem, planning graph, goal action, predicate->achiever maps,
// composite->decomposition multimap, and a static 'last flaw was static'
// flag." It is created once by NewSearchContext and torn down by
// Cleanup; the core is not re-entrant, so a second concurrent search using
// the same SearchContext is a programming error.
type SearchContext struct {
	Parameters *config.Parameters
	Domain     *domain.Def
	Problem    *domain.Problem
	Graph      *heuristic.Graph
	Rank       heuristic.PlanRank
	GoalAction *domain.Action

	decompositions map[string][]*domain.Decomposition

	// LastFlawWasStatic is set by the flaw index (C3) whenever the most
	// recently picked flaw was a static-literal open condition; the
	// search driver reads it to deflate the reported generated-plans
	// count (§4.3, §9's REDESIGN note: threaded as an explicit field here
	// rather than file-scope mutable state).
	LastFlawWasStatic bool

	Rand   *rand.Rand
	Logger *observability.TracedLogger
	Metrics *observability.Metrics

	SessionID string

	mu          sync.Mutex
	nextStepID  int
	nextFrameID int
	nextSerial  int
	nextVarID   int
}

// NewSearchContext builds the per-search environment. The achiever index
// and the relaxed-graph level map are independent read-only scans over
// dom, so they run concurrently via golang.org/x/sync/errgroup (§5's
// addition) before the first plan is generated; the driver loop itself
// remains strictly sequential.
func NewSearchContext(ctx context.Context, params *config.Parameters, dom *domain.Def, prob *domain.Problem, logger *observability.TracedLogger, metrics *observability.Metrics) (*SearchContext, error) {
	var achievesPred, achievesNegPred map[string][]heuristic.Achiever
	var level map[string]int
	var maxLevel int
	var argDomains map[string][]map[string]bool

	g, _ := errgroup.WithContext(ctx)
	g.Go(func() error {
		achievesPred, achievesNegPred = heuristic.BuildAchieverIndex(dom)
		return nil
	})
	g.Go(func() error {
		level, maxLevel = heuristic.BuildLevelMap(dom, prob.Init)
		return nil
	})
	g.Go(func() error {
		argDomains = heuristic.BuildArgumentDomains(prob.Init)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	graph := heuristic.NewGraph(achievesPred, achievesNegPred, level, maxLevel, argDomains)

	var rank heuristic.PlanRank
	switch params.Heuristic {
	case config.HeuristicFlawCount:
		rank = heuristic.FlawCountRank{}
	default:
		rank = heuristic.GraphDistanceRank{}
	}

	decompositions := make(map[string][]*domain.Decomposition)
	for _, d := range dom.Decompositions {
		decompositions[d.CompositeAction] = append(decompositions[d.CompositeAction], d)
	}

	if metrics == nil {
		metrics = observability.NewNoopMetrics()
	}

	sc := &SearchContext{
		Parameters:     params,
		Domain:         dom,
		Problem:        prob,
		Graph:          graph,
		Rank:           rank,
		GoalAction:     prob.GoalAction(),
		decompositions: decompositions,
		Rand:           rand.New(rand.NewSource(params.Seed)),
		Logger:         logger,
		Metrics:        metrics,
		SessionID:      uuid.NewString(),
		nextStepID:     domain.InitialStepID,
		nextFrameID:    0,
		nextSerial:     0,
	}
	return sc, nil
}

// Cleanup releases resources held by the search context. The core keeps
// no persistent state (§6), so today this only exists to give call sites
// the init/teardown symmetry §5 and §9 call for.
func (sc *SearchContext) Cleanup() {}

// DecompositionsFor returns the decomposition schemas registered for a
// composite action name, the composite->decomposition multimap §4.5.4
// dispatches through.
func (sc *SearchContext) DecompositionsFor(compositeAction string) []*domain.Decomposition {
	return sc.decompositions[compositeAction]
}

// NextStepID allocates and returns the next fresh, monotonically
// increasing step id (§3: "positive = generated, assigned monotonically").
func (sc *SearchContext) NextStepID() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.nextStepID++
	return sc.nextStepID
}

// PeekStepID returns the step id NextStepID would allocate next, without
// consuming it — used by refinement generators that must know the
// prospective id of a step they may or may not end up creating.
func (sc *SearchContext) PeekStepID() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.nextStepID + 1
}

// NextVar allocates a fresh variable name, used by make_link's forall_subst
// (§4.5.2 step 1) to instantiate an effect's universally quantified
// parameters with a variable standing for "some value" rather than a
// specific binding.
func (sc *SearchContext) NextVar() domain.Term {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.nextVarID++
	return domain.Var(fmt.Sprintf("?_fa%d", sc.nextVarID))
}

// newOrderings picks the ordering engine variant a fresh plan should use:
// temporal when the domain requires durative actions (so Schedule can
// compute a real makespan), binary otherwise.
func (sc *SearchContext) newOrderings() *ordering.Orderings {
	if sc.Domain.Requirements.Has(domain.RequireDurativeActions) {
		return ordering.NewTemporal()
	}
	return ordering.NewBinary()
}

// NextFrameID allocates a fresh decomposition-frame id.
func (sc *SearchContext) NextFrameID() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.nextFrameID++
	return sc.nextFrameID
}

// NextSerial allocates the next monotonically increasing plan serial
// number (§4.7: "Assign monotonically increasing serial id before
// computing rank").
func (sc *SearchContext) NextSerial() int {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	sc.nextSerial++
	return sc.nextSerial
}
