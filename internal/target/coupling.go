// Package target models the device the router maps onto: the physical
// coupling graph and the raw operation-duration catalog.
package target

import (
	"fmt"
)

// CouplingMap is an undirected connectivity graph over physical qubit
// indices [0, N). It is immutable after construction and safe for
// concurrent readers.
type CouplingMap struct {
	n        int
	adj      [][]bool
	edges    [][2]int
	dist     [][]int
	diameter int
}

// NewCouplingMap builds a coupling map from an edge list. Edges are
// stored symmetrically; self-loops and out-of-range indices are rejected.
func NewCouplingMap(numQubits int, edges [][2]int) (*CouplingMap, error) {
	if numQubits < 1 {
		return nil, fmt.Errorf("coupling map needs at least one qubit, got %d", numQubits)
	}

	adj := make([][]bool, numQubits)
	for i := range adj {
		adj[i] = make([]bool, numQubits)
	}

	for _, e := range edges {
		a, b := e[0], e[1]
		if a == b {
			return nil, fmt.Errorf("self-loop on qubit %d", a)
		}
		if a < 0 || a >= numQubits || b < 0 || b >= numQubits {
			return nil, fmt.Errorf("edge (%d,%d) outside qubit range [0..%d)", a, b, numQubits)
		}
		adj[a][b] = true
		adj[b][a] = true
	}

	canonical := make([][2]int, 0, len(edges))
	for a := 0; a < numQubits; a++ {
		for b := a + 1; b < numQubits; b++ {
			if adj[a][b] {
				canonical = append(canonical, [2]int{a, b})
			}
		}
	}

	cm := &CouplingMap{
		n:     numQubits,
		adj:   adj,
		edges: canonical,
	}
	cm.computeDistances()
	return cm, nil
}

// computeDistances fills the all-pairs hop-count table by BFS from each
// source. Unreachable pairs keep distance -1.
func (c *CouplingMap) computeDistances() {
	c.dist = make([][]int, c.n)
	for src := 0; src < c.n; src++ {
		row := make([]int, c.n)
		for i := range row {
			row[i] = -1
		}
		row[src] = 0

		frontier := []int{src}
		for depth := 1; len(frontier) > 0; depth++ {
			var next []int
			for _, u := range frontier {
				for v := 0; v < c.n; v++ {
					if c.adj[u][v] && row[v] < 0 {
						row[v] = depth
						next = append(next, v)
					}
				}
			}
			frontier = next
		}
		c.dist[src] = row
	}

	for _, row := range c.dist {
		for _, d := range row {
			if d > c.diameter {
				c.diameter = d
			}
		}
	}
}

// NumQubits returns the number of physical qubits.
func (c *CouplingMap) NumQubits() int {
	return c.n
}

// NumEdges returns the number of undirected edges.
func (c *CouplingMap) NumEdges() int {
	return len(c.edges)
}

// Edges returns the undirected edges in canonical low-high order,
// sorted lexicographically.
func (c *CouplingMap) Edges() [][2]int {
	return c.edges
}

// Connected reports whether qubits a and b share a hardware link.
func (c *CouplingMap) Connected(a, b int) bool {
	if a < 0 || a >= c.n || b < 0 || b >= c.n {
		return false
	}
	return c.adj[a][b]
}

// Neighbors returns the qubits adjacent to p, in ascending order.
func (c *CouplingMap) Neighbors(p int) []int {
	if p < 0 || p >= c.n {
		return nil
	}
	var out []int
	for v := 0; v < c.n; v++ {
		if c.adj[p][v] {
			out = append(out, v)
		}
	}
	return out
}

// Distance returns the hop count between a and b, or -1 when no path
// exists or either index is out of range.
func (c *CouplingMap) Distance(a, b int) int {
	if a < 0 || a >= c.n || b < 0 || b >= c.n {
		return -1
	}
	return c.dist[a][b]
}

// Diameter returns the largest finite hop count in the graph.
func (c *CouplingMap) Diameter() int {
	return c.diameter
}

// Line returns a coupling map with qubits connected in a path
// 0-1-2-...-(n-1). Used widely in tests and examples.
func Line(numQubits int) (*CouplingMap, error) {
	edges := make([][2]int, 0, numQubits-1)
	for i := 0; i+1 < numQubits; i++ {
		edges = append(edges, [2]int{i, i + 1})
	}
	return NewCouplingMap(numQubits, edges)
}
