package circuit

import (
	"fmt"
	"sort"
	"strings"
)

// AncillaRegister is the register name used for virtual qubits that fill
// physical slots beyond the circuit's own register.
const AncillaRegister = "ancilla"

// Layout is a bidirectional mapping between virtual qubits and physical
// qubit indices. It is owned by the caller; the router reads and mutates
// it during reconciliation but never creates or destroys it on its own.
type Layout struct {
	v2p map[Qubit]int
	p2v map[int]Qubit
}

// NewLayout creates an empty layout.
func NewLayout() *Layout {
	return &Layout{
		v2p: make(map[Qubit]int),
		p2v: make(map[int]Qubit),
	}
}

// Trivial returns the identity layout for reg over numPhysical slots.
// Slots [0, reg.Size) hold the register's qubits; slots beyond are filled
// with ancilla qubits so that every physical slot has a virtual identity.
func Trivial(reg Register, numPhysical int) (*Layout, error) {
	if reg.Size > numPhysical {
		return nil, fmt.Errorf("register %s has %d qubits but device has %d",
			reg.Name, reg.Size, numPhysical)
	}
	l := NewLayout()
	for i := 0; i < reg.Size; i++ {
		l.Assign(reg.Qubit(i), i)
	}
	for p := reg.Size; p < numPhysical; p++ {
		l.Assign(Qubit{Register: AncillaRegister, Index: p - reg.Size}, p)
	}
	return l, nil
}

// Assign maps virtual qubit q to physical slot p, replacing any prior
// assignment of either endpoint.
func (l *Layout) Assign(q Qubit, p int) {
	if old, ok := l.v2p[q]; ok {
		delete(l.p2v, old)
	}
	if old, ok := l.p2v[p]; ok {
		delete(l.v2p, old)
	}
	l.v2p[q] = p
	l.p2v[p] = q
}

// PhysicalOf returns the physical slot holding q.
func (l *Layout) PhysicalOf(q Qubit) (int, bool) {
	p, ok := l.v2p[q]
	return p, ok
}

// VirtualAt returns the virtual qubit at physical slot p.
func (l *Layout) VirtualAt(p int) (Qubit, bool) {
	q, ok := l.p2v[p]
	return q, ok
}

// Len returns the number of assignments.
func (l *Layout) Len() int {
	return len(l.v2p)
}

// PhysicalToVirtual returns a copy of the physical-to-virtual mapping.
// Reconciliation takes this copy before mutating, since slots are
// overwritten in place during the update walk.
func (l *Layout) PhysicalToVirtual() map[int]Qubit {
	out := make(map[int]Qubit, len(l.p2v))
	for p, q := range l.p2v {
		out[p] = q
	}
	return out
}

// Copy returns an independent copy of the layout.
func (l *Layout) Copy() *Layout {
	out := NewLayout()
	for q, p := range l.v2p {
		out.v2p[q] = p
		out.p2v[p] = q
	}
	return out
}

func (l *Layout) String() string {
	slots := make([]int, 0, len(l.p2v))
	for p := range l.p2v {
		slots = append(slots, p)
	}
	sort.Ints(slots)
	parts := make([]string, 0, len(slots))
	for _, p := range slots {
		parts = append(parts, fmt.Sprintf("%d=%s", p, l.p2v[p]))
	}
	return "{" + strings.Join(parts, " ") + "}"
}
