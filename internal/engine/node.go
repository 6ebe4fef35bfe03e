package engine

import (
	"fmt"

	"github.com/toqm-go/toqm-router/internal/mapper"
)

// node is one state in the schedule search: a placement, the progress
// through the gate list, and the per-qubit busy frontier. Nodes are
// immutable once pushed; children clone before mutating.
type node struct {
	parent *node
	seq    int

	laq     []int // logical -> physical, -1 unplaced
	qal     []int // physical -> logical, -1 free
	initial []int // logical -> physical at placement time, -1 unplaced
	busy    []int // physical -> first free cycle
	qpos    []int // logical -> next unscheduled index in its gate chain
	sched   []bool
	done    int

	delta    []mapper.ScheduledGate // gates scheduled at this node
	makespan int
	f        int
}

func (s *search) root() *node {
	n := &node{
		laq:     make([]int, s.numLogical),
		qal:     make([]int, s.numPhysical),
		initial: make([]int, s.numLogical),
		busy:    make([]int, s.numPhysical),
		qpos:    make([]int, s.numLogical),
		sched:   make([]bool, len(s.gates)),
	}
	for p := range n.qal {
		n.qal[p] = -1
	}
	for v := range n.laq {
		if s.searchCycles == mapper.NoPlacement {
			n.laq[v] = v
			n.qal[v] = v
			n.initial[v] = v
		} else {
			n.laq[v] = -1
			n.initial[v] = -1
		}
	}
	return n
}

func (s *search) child(n *node) *node {
	c := &node{
		parent:   n,
		laq:      append([]int(nil), n.laq...),
		qal:      append([]int(nil), n.qal...),
		initial:  append([]int(nil), n.initial...),
		busy:     append([]int(nil), n.busy...),
		qpos:     append([]int(nil), n.qpos...),
		sched:    append([]bool(nil), n.sched...),
		done:     n.done,
		makespan: n.makespan,
	}
	return c
}

// ready reports whether gate gi is next in line on every qubit it
// touches.
func (s *search) ready(n *node, gi int) bool {
	g := s.gates[gi]
	chain := s.qubitGates[g.Target]
	if n.qpos[g.Target] >= len(chain) || chain[n.qpos[g.Target]] != gi {
		return false
	}
	if g.Control >= 0 {
		chain = s.qubitGates[g.Control]
		if n.qpos[g.Control] >= len(chain) || chain[n.qpos[g.Control]] != gi {
			return false
		}
	}
	return true
}

// saturate schedules every ready, placed, coupling-feasible gate as
// early as its qubits allow, repeating until nothing more can run.
func (s *search) saturate(n *node) error {
	for {
		progress := false
		for gi := range s.gates {
			if n.sched[gi] || !s.ready(n, gi) {
				continue
			}
			g := s.gates[gi]

			if g.Control < 0 {
				p := n.laq[g.Target]
				if p < 0 {
					continue
				}
				cost, ok := s.costs.Cycles(g.Name, -1, p)
				if !ok {
					return fmt.Errorf("no cycle cost for %q on physical qubit %d", g.Name, p)
				}
				start := n.busy[p]
				n.busy[p] = start + cost
				s.commit(n, gi, -1, p, start, cost)
				progress = true
				continue
			}

			pc, pt := n.laq[g.Control], n.laq[g.Target]
			if pc < 0 || pt < 0 || !s.cm.Connected(pc, pt) {
				continue
			}
			cost, ok := s.costs.Cycles(g.Name, pc, pt)
			if !ok {
				return fmt.Errorf("no cycle cost for %q on physical pair (%d,%d)", g.Name, pc, pt)
			}
			start := n.busy[pc]
			if n.busy[pt] > start {
				start = n.busy[pt]
			}
			n.busy[pc] = start + cost
			n.busy[pt] = start + cost
			s.commit(n, gi, pc, pt, start, cost)
			progress = true
		}
		if !progress {
			return nil
		}
	}
}

func (s *search) commit(n *node, gi, physControl, physTarget, start, cost int) {
	g := s.gates[gi]
	n.sched[gi] = true
	n.done++
	n.qpos[g.Target]++
	if g.Control >= 0 {
		n.qpos[g.Control]++
	}
	n.delta = append(n.delta, mapper.ScheduledGate{
		Gate:            g,
		PhysicalControl: physControl,
		PhysicalTarget:  physTarget,
		Cycle:           start,
		Cycles:          cost,
	})
	if start+cost > n.makespan {
		n.makespan = start + cost
	}
}

func (s *search) applyPlacement(n *node, v, p int) {
	n.laq[v] = p
	n.qal[p] = v
	n.initial[v] = p
}

func (s *search) applySwap(n *node, a, b int) error {
	cost, ok := s.costs.SwapCost(a, b)
	if !ok {
		return fmt.Errorf("no exchange cost for physical pair (%d,%d)", a, b)
	}
	start := n.busy[a]
	if n.busy[b] > start {
		start = n.busy[b]
	}
	n.busy[a] = start + cost
	n.busy[b] = start + cost

	la, lb := n.qal[a], n.qal[b]
	n.qal[a], n.qal[b] = lb, la
	if la >= 0 {
		n.laq[la] = b
	}
	if lb >= 0 {
		n.laq[lb] = a
	}

	n.delta = append(n.delta, mapper.ScheduledGate{
		Gate:            mapper.Swap(a, b),
		PhysicalControl: a,
		PhysicalTarget:  b,
		Cycle:           start,
		Cycles:          cost,
	})
	if start+cost > n.makespan {
		n.makespan = start + cost
	}
	return nil
}

// stalledQubit returns the first unplaced qubit blocking the earliest
// unscheduled gate that names one.
func (s *search) stalledQubit(n *node) (int, bool) {
	for gi, g := range s.gates {
		if n.sched[gi] {
			continue
		}
		if g.Control >= 0 && n.laq[g.Control] < 0 {
			return g.Control, true
		}
		if n.laq[g.Target] < 0 {
			return g.Target, true
		}
	}
	return 0, false
}

// dead reports whether no continuation of n can reach a goal: a pending
// two-qubit gate sits across disconnected components, or sits further
// than one hop when exchanges are disallowed.
func (s *search) dead(n *node) bool {
	for gi, g := range s.gates {
		if n.sched[gi] || g.Control < 0 {
			continue
		}
		pc, pt := n.laq[g.Control], n.laq[g.Target]
		if pc < 0 || pt < 0 {
			continue
		}
		d := s.cm.Distance(pc, pt)
		if d < 0 {
			return true
		}
		if !s.opts.AllowSwaps && d > 1 {
			return true
		}
	}
	return false
}
