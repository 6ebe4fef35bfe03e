// Package engine implements the schedule search behind the mapper
// boundary: best-first exploration over lazy placements, forced
// scheduling of feasible gates, and exchange insertion.
package engine

import (
	"context"
	"fmt"
	"sort"

	"github.com/toqm-go/toqm-router/internal/latency"
	"github.com/toqm-go/toqm-router/internal/mapper"
	"github.com/toqm-go/toqm-router/internal/target"
)

// Options select the engine's component family for one configuration.
// The zero value is an exhaustive no-exchange search.
type Options struct {
	// QueueMax bounds the open set; 0 keeps it exhaustive. When the
	// bound is exceeded the worst nodes are dropped until QueueTarget
	// remain.
	QueueMax    int
	QueueTarget int

	// TopK keeps only the cheapest K successors of each expansion;
	// 0 keeps them all.
	TopK int

	// AllowSwaps permits exchange insertion. Without it, a circuit
	// that needs routing exhausts with mapper.ErrNoSchedule.
	AllowSwaps bool

	// FullCost charges the heuristic for every unscheduled two-qubit
	// gate instead of only the ready frontier.
	FullCost bool
}

// Engine implements mapper.Mapper. All search state is per invocation,
// so one Engine is safe for concurrent Run calls.
type Engine struct {
	opts Options
}

var _ mapper.Mapper = (*Engine)(nil)

// New validates the configuration and returns an engine.
func New(opts Options) (*Engine, error) {
	if opts.QueueMax < 0 || opts.QueueTarget < 0 {
		return nil, fmt.Errorf("queue bounds must be non-negative, got max %d target %d", opts.QueueMax, opts.QueueTarget)
	}
	if opts.QueueMax > 0 && (opts.QueueTarget < 1 || opts.QueueTarget > opts.QueueMax) {
		return nil, fmt.Errorf("queue target %d must be in [1, max %d]", opts.QueueTarget, opts.QueueMax)
	}
	if opts.QueueMax == 0 && opts.QueueTarget != 0 {
		return nil, fmt.Errorf("queue target %d without a queue max", opts.QueueTarget)
	}
	if opts.TopK < 0 {
		return nil, fmt.Errorf("top-k must be non-negative, got %d", opts.TopK)
	}
	return &Engine{opts: opts}, nil
}

// search carries the state of one Run invocation.
type search struct {
	opts         Options
	gates        []mapper.GateOp
	numLogical   int
	numPhysical  int
	cm           *target.CouplingMap
	costs        *latency.Table
	searchCycles int

	qubitGates  [][]int
	minSwapCost int
	filters     []filter
	seq         int
}

// Run searches for a routed schedule. See mapper.Mapper for the
// contract.
func (e *Engine) Run(ctx context.Context, gates []mapper.GateOp, numQubits int, cm *target.CouplingMap, costs *latency.Table, searchCycles int) (*mapper.Result, error) {
	s, err := e.newSearch(gates, numQubits, cm, costs, searchCycles)
	if err != nil {
		return nil, err
	}

	root := s.root()
	if err := s.saturate(root); err != nil {
		return nil, err
	}
	s.finish(root)

	var queue nodeQueue
	if e.opts.QueueMax > 0 {
		queue = newTrimSlow(e.opts.QueueMax, e.opts.QueueTarget)
	} else {
		queue = newBestFirst()
	}
	s.push(queue, root)

	popped := 0
	for queue.len() > 0 {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n := queue.pop()
		popped++

		if n.done == len(s.gates) {
			return s.result(n, popped, queue.len()), nil
		}
		if s.dead(n) {
			continue
		}

		children, err := s.expand(n)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			s.push(queue, c)
		}
	}

	return nil, fmt.Errorf("search exhausted after %d nodes: %w", popped, mapper.ErrNoSchedule)
}

func (s *search) push(q nodeQueue, n *node) {
	for _, f := range s.filters {
		if !f.admit(n) {
			return
		}
	}
	s.seq++
	n.seq = s.seq
	q.push(n)
}

func (e *Engine) newSearch(gates []mapper.GateOp, numQubits int, cm *target.CouplingMap, costs *latency.Table, searchCycles int) (*search, error) {
	if cm == nil {
		return nil, fmt.Errorf("coupling map is required")
	}
	if costs == nil {
		return nil, fmt.Errorf("cost table is required")
	}
	if numQubits < 1 {
		return nil, fmt.Errorf("need at least one logical qubit, got %d", numQubits)
	}
	if numQubits > cm.NumQubits() {
		return nil, fmt.Errorf("%d logical qubits exceed %d physical", numQubits, cm.NumQubits())
	}
	if searchCycles < mapper.FullPlacement {
		return nil, fmt.Errorf("search cycles must be >= -1, got %d", searchCycles)
	}

	s := &search{
		opts:         e.opts,
		gates:        gates,
		numLogical:   numQubits,
		numPhysical:  cm.NumQubits(),
		cm:           cm,
		costs:        costs,
		searchCycles: searchCycles,
		qubitGates:   make([][]int, numQubits),
		filters:      []filter{newStateFilter(), newFrontierFilter()},
	}

	for gi, g := range gates {
		if g.Name == "" {
			return nil, fmt.Errorf("gate %d has no name", gi)
		}
		if g.Target < 0 || g.Target >= numQubits {
			return nil, fmt.Errorf("gate %d (%q) targets qubit %d outside [0,%d)", gi, g.Name, g.Target, numQubits)
		}
		if g.Control >= 0 {
			if g.Control >= numQubits {
				return nil, fmt.Errorf("gate %d (%q) controls qubit %d outside [0,%d)", gi, g.Name, g.Control, numQubits)
			}
			if g.Control == g.Target {
				return nil, fmt.Errorf("gate %d (%q) controls its own target %d", gi, g.Name, g.Target)
			}
			s.qubitGates[g.Control] = append(s.qubitGates[g.Control], gi)
		}
		if !costs.CanCost(g.Name, g.Arity()) {
			return nil, fmt.Errorf("cost table cannot cost %q at arity %d", g.Name, g.Arity())
		}
		s.qubitGates[g.Target] = append(s.qubitGates[g.Target], gi)
	}

	if e.opts.AllowSwaps {
		for _, edge := range cm.Edges() {
			c, ok := costs.SwapCost(edge[0], edge[1])
			if !ok {
				return nil, fmt.Errorf("no exchange cost for coupling edge (%d,%d)", edge[0], edge[1])
			}
			if c < 1 {
				return nil, fmt.Errorf("exchange on edge (%d,%d) costs %d cycles, want at least 1", edge[0], edge[1], c)
			}
			if s.minSwapCost == 0 || c < s.minSwapCost {
				s.minSwapCost = c
			}
		}
	}
	return s, nil
}

func (s *search) result(goal *node, popped, remaining int) *mapper.Result {
	var chain []*node
	for n := goal; n != nil; n = n.parent {
		chain = append(chain, n)
	}

	var sched []mapper.ScheduledGate
	for i := len(chain) - 1; i >= 0; i-- {
		sched = append(sched, chain[i].delta...)
	}
	sort.SliceStable(sched, func(i, j int) bool { return sched[i].Cycle < sched[j].Cycle })

	// Qubits the search never placed take their identity slot when
	// free, else the lowest free slot.
	initial := append([]int(nil), goal.initial...)
	used := make([]bool, s.numPhysical)
	for _, p := range initial {
		if p >= 0 {
			used[p] = true
		}
	}
	for v := range initial {
		if initial[v] >= 0 {
			continue
		}
		if !used[v] {
			initial[v] = v
			used[v] = true
			continue
		}
		for p := 0; p < s.numPhysical; p++ {
			if !used[p] {
				initial[v] = p
				used[p] = true
				break
			}
		}
	}

	p2l := make([]int, s.numPhysical)
	for p := range p2l {
		p2l[p] = -1
	}
	for v, p := range initial {
		p2l[p] = v
	}

	return &mapper.Result{
		Scheduled:           sched,
		LogicalToPhysical:   initial,
		PhysicalToLogical:   p2l,
		NumLogicalQubits:    s.numLogical,
		NumPhysicalQubits:   s.numPhysical,
		IdealCycles:         s.idealCycles(),
		NodesPopped:         popped,
		RemainingCandidates: remaining,
	}
}
