// Package search implements C7, the search driver (§4.7): the
// round-robin multi-strategy priority-queue loop that fetches
// refinements of the current plan, enqueues every rank-finite child
// under its strategy's queue, and pops the next plan to refine —
// optionally restarting under IDA*'s iterative f-limit.
package search

import (
	"container/heap"

	"github.com/arcflow-labs/pocl/internal/core"
)

// rankedQueue is a binary min-heap of plans ordered by core.Less, the
// "priority queue of borrowed plan pointers... keyed by rank" §9
// describes. Plans are never copied in or out beyond the pointer the
// plan itself already is.
type rankedQueue struct {
	items []*core.Plan
	sc    *core.SearchContext
}

func newRankedQueue(sc *core.SearchContext) *rankedQueue {
	return &rankedQueue{sc: sc}
}

func (q *rankedQueue) Len() int { return len(q.items) }
func (q *rankedQueue) Less(i, j int) bool {
	return core.Less(q.items[i], q.items[j], q.sc)
}
func (q *rankedQueue) Swap(i, j int) { q.items[i], q.items[j] = q.items[j], q.items[i] }
func (q *rankedQueue) Push(x any)    { q.items = append(q.items, x.(*core.Plan)) }
func (q *rankedQueue) Pop() any {
	n := len(q.items)
	item := q.items[n-1]
	q.items[n-1] = nil
	q.items = q.items[:n-1]
	return item
}

func (q *rankedQueue) push(p *core.Plan) { heap.Push(q, p) }

func (q *rankedQueue) pop() (*core.Plan, bool) {
	if q.Len() == 0 {
		return nil, false
	}
	return heap.Pop(q).(*core.Plan), true
}

// popUpTo discards up to n items from q, the amortized dead-queue
// cleanup §4.7 step 2 describes.
func (q *rankedQueue) popUpTo(n int) {
	for i := 0; i < n && q.Len() > 0; i++ {
		heap.Pop(q)
	}
}
