// Package mapper defines the boundary between the routing pipeline and
// the schedule-search engines that implement it.
package mapper

import (
	"context"
	"errors"

	"github.com/toqm-go/toqm-router/internal/latency"
	"github.com/toqm-go/toqm-router/internal/target"
)

// SwapUID marks scheduled exchanges the engine synthesized. They have no
// originating circuit operation to recover.
const SwapUID = -1

// Sentinels for the searchCycles argument of Run.
const (
	// NoPlacement keeps the caller's physical assignment: logical
	// qubit i runs on physical qubit i.
	NoPlacement = 0
	// FullPlacement searches initial placements with no cycle bound.
	FullPlacement = -1
)

// ErrNoSchedule reports that the search space was exhausted without a
// valid schedule under the current configuration. It is recoverable by
// trying a different configuration, unlike configuration errors.
var ErrNoSchedule = errors.New("no valid schedule exists under the current configuration")

// GateOp is one logical operation, identified by the UID assigned during
// translation. Control is -1 for one-qubit gates; qubit indices are
// register-relative.
type GateOp struct {
	UID     int
	Name    string
	Control int
	Target  int
}

// Arity returns 1 or 2 depending on whether a control is present.
func (g GateOp) Arity() int {
	if g.Control < 0 {
		return 1
	}
	return 2
}

// Swap builds the synthesized exchange op engines insert while routing.
func Swap(control, target int) GateOp {
	return GateOp{UID: SwapUID, Name: "swap", Control: control, Target: target}
}

// ScheduledGate places one gate at a start cycle on physical qubits.
// PhysicalControl is -1 for one-qubit gates.
type ScheduledGate struct {
	Gate            GateOp
	PhysicalControl int
	PhysicalTarget  int
	Cycle           int
	Cycles          int
}

// IsSwap reports whether the entry is an exchange the engine inserted.
func (s ScheduledGate) IsSwap() bool {
	return s.Gate.UID == SwapUID
}

// Result is a complete schedule plus the placement the search settled
// on. Scheduled is in cycle order. LogicalToPhysical gives the inferred
// initial slot of each logical qubit; PhysicalToLogical is its inverse
// with -1 for slots no logical qubit started on.
type Result struct {
	Scheduled         []ScheduledGate
	LogicalToPhysical []int
	PhysicalToLogical []int
	NumLogicalQubits  int
	NumPhysicalQubits int

	// Diagnostics.
	IdealCycles         int
	NodesPopped         int
	RemainingCandidates int
}

// SwapCount returns the number of exchanges the engine inserted.
func (r *Result) SwapCount() int {
	n := 0
	for _, g := range r.Scheduled {
		if g.IsSwap() {
			n++
		}
	}
	return n
}

// Mapper searches for a routed schedule of gates on the device described
// by cm and costs. searchCycles is NoPlacement, FullPlacement, or a
// positive bound on the leading cycles within which placement may still
// branch. Implementations honor ctx between expansions and return
// ErrNoSchedule on exhaustion, keeping it distinguishable from
// configuration errors.
type Mapper interface {
	Run(ctx context.Context, gates []GateOp, numQubits int, cm *target.CouplingMap, costs *latency.Table, searchCycles int) (*Result, error)
}
