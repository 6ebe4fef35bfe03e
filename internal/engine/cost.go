package engine

// heuristic lower-bounds the remaining makespan by charging each pending
// two-qubit gate the exchanges still separating its endpoints, at the
// cheapest exchange cost on the device. Unplaced endpoints contribute
// nothing. By default only the ready frontier is charged; FullCost
// widens the sum to every unscheduled two-qubit gate.
func (s *search) heuristic(n *node) int {
	if !s.opts.AllowSwaps {
		return 0
	}
	sum := 0
	for gi, g := range s.gates {
		if n.sched[gi] || g.Control < 0 {
			continue
		}
		if !s.opts.FullCost && !s.ready(n, gi) {
			continue
		}
		pc, pt := n.laq[g.Control], n.laq[g.Target]
		if pc < 0 || pt < 0 {
			continue
		}
		if d := s.cm.Distance(pc, pt); d > 1 {
			sum += (d - 1) * s.minSwapCost
		}
	}
	return sum
}

// finish assigns the node's priority once its schedule is saturated.
func (s *search) finish(n *node) {
	n.f = n.makespan + s.heuristic(n)
}

// idealCycles is the critical-path depth of the gate list with every
// dependency honored and no routing: the makespan a perfectly connected
// device would reach. Costs resolve at the gates' own indices; shapes
// the table cannot resolve count a single cycle.
func (s *search) idealCycles() int {
	avail := make([]int, s.numLogical)
	depth := 0
	for _, g := range s.gates {
		var start, cost int
		var ok bool
		if g.Control < 0 {
			start = avail[g.Target]
			cost, ok = s.costs.Cycles(g.Name, -1, g.Target)
		} else {
			start = avail[g.Control]
			if avail[g.Target] > start {
				start = avail[g.Target]
			}
			cost, ok = s.costs.Cycles(g.Name, g.Control, g.Target)
		}
		if !ok {
			cost = 1
		}
		fin := start + cost
		avail[g.Target] = fin
		if g.Control >= 0 {
			avail[g.Control] = fin
		}
		if fin > depth {
			depth = fin
		}
	}
	return depth
}
