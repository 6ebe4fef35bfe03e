package engine

import (
	"sort"

	"github.com/toqm-go/toqm-router/internal/mapper"
)

// placementAllowed reports whether placement may still branch at this
// node. A positive budget limits branching to the leading schedule
// cycles; FullPlacement never limits it.
func (s *search) placementAllowed(n *node) bool {
	switch {
	case s.searchCycles == mapper.NoPlacement:
		return false
	case s.searchCycles == mapper.FullPlacement:
		return true
	default:
		return n.makespan < s.searchCycles
	}
}

// expand generates the successors of a saturated node: one child per
// free slot for the first placement-stalled qubit, and one child per
// exchange on an edge touching a placed qubit. Each child is saturated
// before it is returned. With TopK set, only the cheapest K survive.
func (s *search) expand(n *node) ([]*node, error) {
	var out []*node

	if v, ok := s.stalledQubit(n); ok && s.placementAllowed(n) {
		for p := 0; p < s.numPhysical; p++ {
			if n.qal[p] >= 0 {
				continue
			}
			c := s.child(n)
			s.applyPlacement(c, v, p)
			if err := s.saturate(c); err != nil {
				return nil, err
			}
			s.finish(c)
			out = append(out, c)
		}
	}

	if s.opts.AllowSwaps {
		for _, e := range s.cm.Edges() {
			a, b := e[0], e[1]
			if n.qal[a] < 0 && n.qal[b] < 0 {
				continue
			}
			c := s.child(n)
			if err := s.applySwap(c, a, b); err != nil {
				return nil, err
			}
			if err := s.saturate(c); err != nil {
				return nil, err
			}
			s.finish(c)
			out = append(out, c)
		}
	}

	if s.opts.TopK > 0 && len(out) > s.opts.TopK {
		sort.SliceStable(out, func(i, j int) bool { return out[i].f < out[j].f })
		for i := s.opts.TopK; i < len(out); i++ {
			out[i] = nil
		}
		out = out[:s.opts.TopK]
	}
	return out, nil
}
