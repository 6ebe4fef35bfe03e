package engine

import (
	"strconv"
	"strings"
)

// filter prunes nodes whose state has already been reached at least as
// cheaply. Filters are per-run; admission updates their memory.
type filter interface {
	admit(n *node) bool
}

func writeInts(b *strings.Builder, xs []int) {
	for _, x := range xs {
		b.WriteString(strconv.Itoa(x))
		b.WriteByte(',')
	}
	b.WriteByte(';')
}

// stateFilter keys on placement and gate-list progress, keeping the
// best-priority representative of each state.
type stateFilter struct {
	best map[string]int
}

func newStateFilter() *stateFilter {
	return &stateFilter{best: make(map[string]int)}
}

func (f *stateFilter) admit(n *node) bool {
	var b strings.Builder
	writeInts(&b, n.laq)
	writeInts(&b, n.qpos)
	key := b.String()

	if prev, ok := f.best[key]; ok && prev <= n.f {
		return false
	}
	f.best[key] = n.f
	return true
}

// frontierFilter additionally keys on the busy frontier, catching exact
// duplicate schedules the coarser filter folds together.
type frontierFilter struct {
	best map[string]int
}

func newFrontierFilter() *frontierFilter {
	return &frontierFilter{best: make(map[string]int)}
}

func (f *frontierFilter) admit(n *node) bool {
	var b strings.Builder
	writeInts(&b, n.laq)
	writeInts(&b, n.qpos)
	writeInts(&b, n.busy)
	key := b.String()

	if prev, ok := f.best[key]; ok && prev <= n.f {
		return false
	}
	f.best[key] = n.f
	return true
}
