// Package circuit provides the operation-graph model consumed by the router:
// quantum registers, gate operations, and ordered circuits.
package circuit

import (
	"errors"
	"fmt"
)

// Register is a named block of qubits addressed by index.
type Register struct {
	Name string
	Size int
}

// Qubit returns the identity of qubit i within the register.
func (r Register) Qubit(i int) Qubit {
	return Qubit{Register: r.Name, Index: i}
}

// Qubit identifies a single virtual qubit by register name and index.
type Qubit struct {
	Register string
	Index    int
}

func (q Qubit) String() string {
	return fmt.Sprintf("%s[%d]", q.Register, q.Index)
}

// Op is a single operation bound to register-relative qubit indices.
// Classical operands and parameters ride along through routing untouched.
type Op struct {
	Name   string
	Qargs  []int
	Cargs  []int
	Params []float64
}

// Arity returns the number of qubits the operation acts on.
func (o Op) Arity() int {
	return len(o.Qargs)
}

// Circuit is an ordered sequence of operations over a single quantum
// register. Append order is a topological order of the dependency graph
// induced by shared qubits and classical bits.
type Circuit struct {
	reg       Register
	numClbits int
	ops       []Op
}

// New creates an empty circuit over the given register.
func New(reg Register, numClbits int) (*Circuit, error) {
	if reg.Name == "" {
		return nil, errors.New("register name must not be empty")
	}
	if reg.Size < 1 {
		return nil, fmt.Errorf("register %q must have at least one qubit", reg.Name)
	}
	if numClbits < 0 {
		return nil, errors.New("classical bit count must not be negative")
	}
	return &Circuit{reg: reg, numClbits: numClbits}, nil
}

// Append adds an operation to the end of the circuit.
func (c *Circuit) Append(op Op) error {
	if op.Name == "" {
		return errors.New("operation name must not be empty")
	}
	if len(op.Qargs) == 0 {
		return fmt.Errorf("operation %q has no qubit operands", op.Name)
	}
	seen := make(map[int]bool, len(op.Qargs))
	for _, q := range op.Qargs {
		if q < 0 || q >= c.reg.Size {
			return fmt.Errorf("operation %q: qubit index %d outside register %s[0..%d)",
				op.Name, q, c.reg.Name, c.reg.Size)
		}
		if seen[q] {
			return fmt.Errorf("operation %q: duplicate qubit index %d", op.Name, q)
		}
		seen[q] = true
	}
	for _, b := range op.Cargs {
		if b < 0 || b >= c.numClbits {
			return fmt.Errorf("operation %q: clbit index %d outside range [0..%d)",
				op.Name, b, c.numClbits)
		}
	}
	c.ops = append(c.ops, op)
	return nil
}

// Ops returns the operations in order.
func (c *Circuit) Ops() []Op {
	return c.ops
}

// NumOps returns the number of operations.
func (c *Circuit) NumOps() int {
	return len(c.ops)
}

// NumQubits returns the register width.
func (c *Circuit) NumQubits() int {
	return c.reg.Size
}

// NumClbits returns the classical bit count.
func (c *Circuit) NumClbits() int {
	return c.numClbits
}

// Register returns the circuit's quantum register.
func (c *Circuit) Register() Register {
	return c.reg
}

// EmptyLike returns a new circuit with the same register and classical
// bits but no operations.
func (c *Circuit) EmptyLike() *Circuit {
	return &Circuit{reg: c.reg, numClbits: c.numClbits}
}
