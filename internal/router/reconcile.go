package router

import (
	"fmt"

	"github.com/toqm-go/toqm-router/internal/circuit"
	"github.com/toqm-go/toqm-router/internal/mapper"
)

// reconcile rebuilds a physical circuit from the schedule, walking
// entries in cycle order. Synthesized exchanges become fresh swap ops on
// the physical pair; every other entry is the original operation rebound
// to the physical qubits it ran on, classical operands and parameters
// untouched. The output keeps the input register's name, widened to the
// device when the input is narrower.
func reconcile(in *circuit.Circuit, ops []circuit.Op, res *mapper.Result) (*circuit.Circuit, error) {
	reg := in.Register()
	if res.NumPhysicalQubits > reg.Size {
		reg.Size = res.NumPhysicalQubits
	}
	out, err := circuit.New(reg, in.NumClbits())
	if err != nil {
		return nil, fmt.Errorf("building output circuit: %w", err)
	}

	for _, sg := range res.Scheduled {
		if sg.IsSwap() {
			op := circuit.Op{Name: "swap", Qargs: []int{sg.PhysicalControl, sg.PhysicalTarget}}
			if err := out.Append(op); err != nil {
				return nil, fmt.Errorf("appending exchange at cycle %d: %w", sg.Cycle, err)
			}
			continue
		}

		if sg.Gate.UID < 0 || sg.Gate.UID >= len(ops) {
			return nil, fmt.Errorf("schedule references unknown operation uid %d", sg.Gate.UID)
		}
		op := ops[sg.Gate.UID]
		qargs := []int{sg.PhysicalTarget}
		if sg.PhysicalControl >= 0 {
			qargs = []int{sg.PhysicalControl, sg.PhysicalTarget}
		}
		rebound := circuit.Op{Name: op.Name, Qargs: qargs, Cargs: op.Cargs, Params: op.Params}
		if err := out.Append(rebound); err != nil {
			return nil, fmt.Errorf("appending operation %d (%s): %w", sg.Gate.UID, op.Name, err)
		}
	}
	return out, nil
}

// updateLayout composes the inferred initial placement into the caller's
// layout. With p2v the assignment taken before any mutation, each
// logical qubit v moves its prior identity p2v[v] to its inferred slot;
// then slots no logical qubit started on receive the prior occupants of
// the slots past the logical range, front first. Afterwards every
// physical slot holds exactly one identity and the identity multiset is
// unchanged.
func updateLayout(l *circuit.Layout, res *mapper.Result) error {
	if len(res.LogicalToPhysical) != res.NumLogicalQubits || len(res.PhysicalToLogical) != res.NumPhysicalQubits {
		return fmt.Errorf("placement tables have %d/%d entries, want %d/%d",
			len(res.LogicalToPhysical), len(res.PhysicalToLogical),
			res.NumLogicalQubits, res.NumPhysicalQubits)
	}

	p2v := l.PhysicalToVirtual()
	for p := 0; p < res.NumPhysicalQubits; p++ {
		if _, ok := p2v[p]; !ok {
			return fmt.Errorf("layout has no virtual identity for physical qubit %d", p)
		}
	}

	for v := 0; v < res.NumLogicalQubits; v++ {
		if p := res.LogicalToPhysical[v]; p != v {
			l.Assign(p2v[v], p)
		}
	}

	pool := make([]circuit.Qubit, 0, res.NumPhysicalQubits-res.NumLogicalQubits)
	for p := res.NumLogicalQubits; p < res.NumPhysicalQubits; p++ {
		pool = append(pool, p2v[p])
	}
	for p := 0; p < res.NumPhysicalQubits; p++ {
		if res.PhysicalToLogical[p] != -1 {
			continue
		}
		if len(pool) == 0 {
			return fmt.Errorf("ran out of spare identities at physical qubit %d", p)
		}
		l.Assign(pool[0], p)
		pool = pool[1:]
	}
	return nil
}
