package engine

import (
	"container/heap"
	"sort"
)

// nodeQueue orders the open set. Implementations are per-run.
type nodeQueue interface {
	push(*node)
	pop() *node
	len() int
}

type nodeHeap []*node

func (h nodeHeap) Len() int { return len(h) }

func (h nodeHeap) Less(i, j int) bool {
	if h[i].f != h[j].f {
		return h[i].f < h[j].f
	}
	return h[i].seq < h[j].seq
}

func (h nodeHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *nodeHeap) Push(x any) { *h = append(*h, x.(*node)) }

func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return x
}

// bestFirst is an exhaustive priority queue: cheapest f first, ties in
// insertion order.
type bestFirst struct {
	h nodeHeap
}

func newBestFirst() *bestFirst {
	return &bestFirst{}
}

func (q *bestFirst) push(n *node) { heap.Push(&q.h, n) }
func (q *bestFirst) pop() *node   { return heap.Pop(&q.h).(*node) }
func (q *bestFirst) len() int     { return len(q.h) }

// trimSlow bounds the open set: whenever it grows past max, the worst
// nodes are dropped until target remain.
type trimSlow struct {
	bestFirst
	max    int
	target int
}

func newTrimSlow(max, target int) *trimSlow {
	return &trimSlow{max: max, target: target}
}

func (q *trimSlow) push(n *node) {
	heap.Push(&q.h, n)
	if len(q.h) <= q.max {
		return
	}
	sort.Sort(q.h)
	for i := q.target; i < len(q.h); i++ {
		q.h[i] = nil
	}
	q.h = q.h[:q.target]
	heap.Init(&q.h)
}
