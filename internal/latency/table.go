// Package latency converts device timing data into the integer cycle
// costs the mapper searches over: duration normalization, swap-cost
// synthesis for uncovered coupling edges, and the cost table itself.
package latency

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/toqm-go/toqm-router/internal/target"
)

// Description gives the cycle cost of one gate shape. An empty Gate
// matches any gate of the given arity; Control and Target of -1 leave
// the physical qubits unpinned. Control is always -1 for one-qubit
// shapes.
type Description struct {
	Gate      string
	NumQubits int
	Control   int
	Target    int
	Cycles    int
}

// ForAnyGate describes the default cost for every gate of one arity.
func ForAnyGate(arity, cycles int) Description {
	return Description{NumQubits: arity, Control: -1, Target: -1, Cycles: cycles}
}

// ForGate describes the cost for a named gate at one arity, on any
// qubits.
func ForGate(gate string, arity, cycles int) Description {
	return Description{Gate: gate, NumQubits: arity, Control: -1, Target: -1, Cycles: cycles}
}

// ForQubit describes the cost for a named one-qubit gate pinned to a
// physical qubit.
func ForQubit(gate string, targetQubit, cycles int) Description {
	return Description{Gate: gate, NumQubits: 1, Control: -1, Target: targetQubit, Cycles: cycles}
}

// ForQubits describes the cost for a named two-qubit gate pinned to a
// physical pair. Orientation is part of the key.
func ForQubits(gate string, control, targetQubit, cycles int) Description {
	return Description{Gate: gate, NumQubits: 2, Control: control, Target: targetQubit, Cycles: cycles}
}

// Table resolves gate shapes to cycle costs, most specific first:
// (gate, control, target), then (gate, arity), then (any, arity).
// Immutable after construction and safe for concurrent readers.
type Table struct {
	pinned      map[string]int
	byGate      map[string]int
	byArity     map[int]int
	pinnedGates map[string]bool
}

func pinKey(gate string, control, targetQubit int) string {
	var b strings.Builder
	b.WriteString(gate)
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(control))
	b.WriteByte('/')
	b.WriteString(strconv.Itoa(targetQubit))
	return b.String()
}

func gateKey(gate string, arity int) string {
	return gate + "/" + strconv.Itoa(arity)
}

// NewTable builds a cost table from descriptions. Later descriptions
// override earlier ones with the same shape.
func NewTable(descs []Description) (*Table, error) {
	t := &Table{
		pinned:      make(map[string]int),
		byGate:      make(map[string]int),
		byArity:     make(map[int]int),
		pinnedGates: make(map[string]bool),
	}

	for i, d := range descs {
		if d.Cycles < 0 {
			return nil, fmt.Errorf("description %d (%q) has negative cycles %d", i, d.Gate, d.Cycles)
		}
		if d.NumQubits != 1 && d.NumQubits != 2 {
			return nil, fmt.Errorf("description %d (%q) has arity %d, want 1 or 2", i, d.Gate, d.NumQubits)
		}

		pinnedShape := d.Control >= 0 || d.Target >= 0
		switch {
		case !pinnedShape && d.Gate == "":
			t.byArity[d.NumQubits] = d.Cycles
		case !pinnedShape:
			t.byGate[gateKey(d.Gate, d.NumQubits)] = d.Cycles
		default:
			if d.Gate == "" {
				return nil, fmt.Errorf("description %d pins qubits without a gate name", i)
			}
			if d.Target < 0 {
				return nil, fmt.Errorf("description %d (%q) pins control without target", i, d.Gate)
			}
			if d.NumQubits == 1 && d.Control >= 0 {
				return nil, fmt.Errorf("description %d (%q) pins a control on a one-qubit shape", i, d.Gate)
			}
			if d.NumQubits == 2 && d.Control < 0 {
				return nil, fmt.Errorf("description %d (%q) pins only one qubit of a two-qubit shape", i, d.Gate)
			}
			if d.Control == d.Target {
				return nil, fmt.Errorf("description %d (%q) pins control and target to qubit %d", i, d.Gate, d.Control)
			}
			t.pinned[pinKey(d.Gate, d.Control, d.Target)] = d.Cycles
			t.pinnedGates[d.Gate] = true
		}
	}
	return t, nil
}

// Cycles resolves the cost of gate executed on the given physical
// qubits. control is -1 for one-qubit gates. Exchanges are symmetric,
// so a pinned swap entry matches either orientation; every other gate
// keeps its orientation.
func (t *Table) Cycles(gate string, control, targetQubit int) (int, bool) {
	arity := 1
	if control >= 0 {
		arity = 2
	}
	if v, ok := t.pinned[pinKey(gate, control, targetQubit)]; ok {
		return v, true
	}
	if gate == "swap" && control >= 0 {
		if v, ok := t.pinned[pinKey(gate, targetQubit, control)]; ok {
			return v, true
		}
	}
	if v, ok := t.byGate[gateKey(gate, arity)]; ok {
		return v, true
	}
	v, ok := t.byArity[arity]
	return v, ok
}

// SwapCost resolves the cost of an exchange on physical pair (a, b).
func (t *Table) SwapCost(a, b int) (int, bool) {
	return t.Cycles("swap", a, b)
}

// CanCost reports whether any description could cost the named gate at
// the given arity: an arity default, a gate default, or at least one
// pinned entry for that name.
func (t *Table) CanCost(gate string, arity int) bool {
	if _, ok := t.byArity[arity]; ok {
		return true
	}
	if _, ok := t.byGate[gateKey(gate, arity)]; ok {
		return true
	}
	return t.pinnedGates[gate]
}

// Simple builds a table where every one-qubit gate costs oneQ cycles,
// every two-qubit gate costs twoQ, and exchanges cost swapCycles.
func Simple(oneQ, twoQ, swapCycles int) (*Table, error) {
	return NewTable([]Description{
		ForAnyGate(1, oneQ),
		ForAnyGate(2, twoQ),
		ForGate("swap", 2, swapCycles),
	})
}

// FromDevice builds the full cycle-cost table for a device. Device-wide
// durations are emitted at both arities since the record does not say
// which one the gate has; qubit-specific records keep their pins; edges
// without an exchange duration get one synthesized through dc. All
// durations are normalized together. A scale of 0 means
// DefaultNormalizeScale.
func FromDevice(ctx context.Context, cm *target.CouplingMap, durs *target.Durations, dc DeviceCompiler, scale int) (*Table, error) {
	if cm == nil {
		return nil, fmt.Errorf("coupling map is required")
	}
	if durs == nil {
		return nil, fmt.Errorf("durations are required")
	}
	if scale == 0 {
		scale = DefaultNormalizeScale
	}

	swaps, err := SynthesizeSwapCosts(ctx, cm, durs, dc)
	if err != nil {
		return nil, err
	}

	byName := durs.ByName()
	byQubits := durs.ByQubits()

	raw := make([]float64, 0, len(byName)+len(byQubits)+len(swaps))
	for _, r := range byName {
		raw = append(raw, r.Duration)
	}
	for _, r := range byQubits {
		raw = append(raw, r.Duration)
	}
	for _, s := range swaps {
		raw = append(raw, s.Duration)
	}

	cycles, err := NormalizeDurations(raw, scale)
	if err != nil {
		return nil, err
	}

	descs := make([]Description, 0, 2*len(byName)+len(byQubits)+len(swaps))
	i := 0
	for _, r := range byName {
		descs = append(descs, ForGate(r.Op, 1, cycles[i]), ForGate(r.Op, 2, cycles[i]))
		i++
	}
	for _, r := range byQubits {
		switch len(r.Qubits) {
		case 1:
			descs = append(descs, ForQubit(r.Op, r.Qubits[0], cycles[i]))
		case 2:
			descs = append(descs, ForQubits(r.Op, r.Qubits[0], r.Qubits[1], cycles[i]))
		default:
			return nil, fmt.Errorf("duration for %q pins %d qubits, want 1 or 2", r.Op, len(r.Qubits))
		}
		i++
	}
	for _, s := range swaps {
		descs = append(descs, ForQubits("swap", s.Control, s.Target, cycles[i]))
		i++
	}

	return NewTable(descs)
}
