package search

import (
	"context"
	"math"

	"github.com/arcflow-labs/pocl/internal/config"
	"github.com/arcflow-labs/pocl/internal/core"
	"github.com/arcflow-labs/pocl/internal/flaw"
)

// Stats accumulates the solver-summary counters §6's external interface
// names: "Plans generated", "Plans visited", "Dead ends encountered".
// GeneratedStatic tracks the subset of GeneratedPlans attributable to a
// static-literal open condition pick, used to deflate the reported count
// the way §4.3/§4.7 describe.
type Stats struct {
	GeneratedPlans  int
	GeneratedStatic int
	VisitedPlans    int
	DeadEnds        int
	StrategySwitches int
}

// Reported returns the generated-plans count with the static-flaw
// deflation applied.
func (s Stats) Reported() int {
	n := s.GeneratedPlans - s.GeneratedStatic
	if n < 0 {
		return 0
	}
	return n
}

const initialNextSwitch = 1000

// Driver runs C7's outer search loop against a SearchContext.
type Driver struct {
	sc    *core.SearchContext
	stats Stats
}

// NewDriver constructs a Driver bound to sc.
func NewDriver(sc *core.SearchContext) *Driver {
	return &Driver{sc: sc}
}

// Stats returns the accumulated solver-summary counters.
func (d *Driver) Stats() Stats { return d.stats }

// Run searches from initial for a complete plan, restarting under an
// iteratively deepened f-limit when sc.Parameters.SearchAlgorithm is
// IDA*. Returns the complete plan and a nil error, or nil and
// ErrNoSolution.
func (d *Driver) Run(ctx context.Context, initial *core.Plan) (*core.Plan, error) {
	fLimit := math.Inf(1)
	if d.sc.Parameters.SearchAlgorithm == config.SearchIDAStar {
		fLimit = initial.PrimaryRank(d.sc)[0]
	}

	for {
		result, nextFLimit, err := d.runOnce(ctx, initial, fLimit)
		if err == nil {
			return result, nil
		}
		if d.sc.Parameters.SearchAlgorithm != config.SearchIDAStar || math.IsInf(nextFLimit, 1) {
			return nil, ErrNoSolution
		}
		fLimit = nextFLimit
	}
}

// ErrNoSolution is returned by Run when every strategy is exhausted and
// (for IDA*) no further f-limit remains to try.
var ErrNoSolution = core.ErrNoSolution

// runOnce runs one full pass of the round-robin loop at a fixed f-limit,
// returning the smallest rank seen among plans pruned for exceeding
// fLimit (nextFLimit), the seed for the next IDA* iteration.
func (d *Driver) runOnce(ctx context.Context, initial *core.Plan, fLimit float64) (*core.Plan, float64, error) {
	strategies := d.sc.Parameters.Strategies
	queues := make([]*rankedQueue, len(strategies))
	generated := make([]int, len(strategies))
	retired := make([]bool, len(strategies))
	for i := range queues {
		queues[i] = newRankedQueue(d.sc)
	}
	var deadQueues []*rankedQueue

	nextFLimit := math.Inf(1)
	current := initial.WithSerial(d.sc.NextSerial())
	currentStrategy := 0
	nextSwitch := initialNextSwitch
	sinceSwitch := 0

	for {
		select {
		case <-ctx.Done():
			return nil, nextFLimit, ctx.Err()
		default:
		}

		if current == nil {
			break
		}
		if current.Complete() {
			// §4.7 step 6: complete means every flaw chain is empty, not
			// that every schema variable is ground. Instantiate binds
			// whatever's left before the plan is handed back; a plan that
			// can't be grounded is a dead end, not a solution.
			grounded, ok := core.Instantiate(d.sc, current)
			if !ok {
				d.stats.DeadEnds++
				current, currentStrategy, nextSwitch, sinceSwitch = d.advance(queues, retired, &deadQueues, strategies, generated, currentStrategy, nextSwitch, sinceSwitch)
				continue
			}
			return grounded, nextFLimit, nil
		}

		for _, dq := range deadQueues {
			dq.popUpTo(4)
		}

		f, ok := core.GetFlaw(d.sc, current, strategies[currentStrategy].Strategy)
		if !ok {
			d.stats.DeadEnds++
			current, currentStrategy, nextSwitch, sinceSwitch = d.advance(queues, retired, &deadQueues, strategies, generated, currentStrategy, nextSwitch, sinceSwitch)
			continue
		}
		wasStatic := d.sc.LastFlawWasStatic

		children := refine(d.sc, current, f)

		added := 0
		for _, child := range children {
			child = child.WithSerial(d.sc.NextSerial())
			rank := child.PrimaryRank(d.sc)
			if math.IsInf(rank[0], 1) {
				continue
			}
			limit := strategies[currentStrategy].Limit
			if limit > 0 && generated[currentStrategy] >= limit {
				continue
			}
			if d.sc.Parameters.SearchAlgorithm == config.SearchIDAStar && rank[0] > fLimit {
				if rank[0] < nextFLimit {
					nextFLimit = rank[0]
				}
				continue
			}
			queues[currentStrategy].push(child)
			generated[currentStrategy]++
			d.stats.GeneratedPlans++
			if wasStatic && added == 0 {
				d.stats.GeneratedStatic++
			}
			added++
		}
		if added == 0 {
			d.stats.DeadEnds++
		}

		current, currentStrategy, nextSwitch, sinceSwitch = d.advance(queues, retired, &deadQueues, strategies, generated, currentStrategy, nextSwitch, sinceSwitch)
	}

	return nil, nextFLimit, ErrNoSolution
}

// advance implements §4.7 steps 5-6: decide whether to retire the active
// strategy or round-robin to the next one, then pop the plan to refine
// next from whichever queue ends up active. Returns the new current
// plan (nil if every strategy is retired and empty), the (possibly
// advanced) strategy index, and the updated switch bookkeeping.
func (d *Driver) advance(queues []*rankedQueue, retired []bool, deadQueues *[]*rankedQueue, strategies []config.StrategyLimit, generated []int, currentStrategy, nextSwitch, sinceSwitch int) (*core.Plan, int, int, int) {
	sinceSwitch++

	quotaReached := strategies[currentStrategy].Limit > 0 && generated[currentStrategy] >= strategies[currentStrategy].Limit
	switched := false
	if quotaReached && !retired[currentStrategy] {
		retired[currentStrategy] = true
		*deadQueues = append(*deadQueues, queues[currentStrategy])
		d.stats.StrategySwitches++
		switched = true
	} else if sinceSwitch >= nextSwitch {
		d.stats.StrategySwitches++
		switched = true
	}

	if switched {
		sinceSwitch = 0
		next := currentStrategy
		for i := 0; i < len(strategies); i++ {
			next = (next + 1) % len(strategies)
			if !retired[next] {
				break
			}
		}
		if next <= currentStrategy {
			nextSwitch *= 2
		}
		currentStrategy = next
	}

	for i := 0; i < len(strategies); i++ {
		idx := (currentStrategy + i) % len(strategies)
		if retired[idx] {
			continue
		}
		if p, ok := queues[idx].pop(); ok {
			d.stats.VisitedPlans++
			return p, idx, nextSwitch, sinceSwitch
		}
		retired[idx] = true
		*deadQueues = append(*deadQueues, queues[idx])
	}
	return nil, currentStrategy, nextSwitch, sinceSwitch
}

// refine dispatches a picked flaw to its C5 refinement generator.
func refine(sc *core.SearchContext, plan *core.Plan, f flaw.Flaw) []*core.Plan {
	switch v := f.(type) {
	case flaw.Unsafe:
		return core.RefineUnsafe(sc, plan, v)
	case flaw.OpenCondition:
		return core.RefineOpenCondition(sc, plan, v)
	case flaw.MutexThreat:
		return core.RefineMutexThreat(sc, plan, v)
	case flaw.UnexpandedStep:
		return core.RefineUnexpandedStep(sc, plan, v)
	default:
		panic(core.ErrMalformedInput("refine: unrecognized flaw shape"))
	}
}
