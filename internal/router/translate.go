package router

import (
	"errors"
	"fmt"

	"github.com/toqm-go/toqm-router/internal/circuit"
	"github.com/toqm-go/toqm-router/internal/mapper"
)

// ErrBadArity reports an operation acting on more than two qubits.
// Callers must decompose or strip such operations before routing.
var ErrBadArity = errors.New("operation arity must be 1 or 2")

// Translate assigns each operation a UID equal to its position in the
// circuit and emits the mapper's gate list: two-qubit operations carry
// their operands as (control, target), one-qubit operations carry the
// target only. The returned ops slice doubles as the uid to original
// operation lookup table used during reconciliation.
func Translate(c *circuit.Circuit) ([]mapper.GateOp, []circuit.Op, error) {
	ops := c.Ops()
	gates := make([]mapper.GateOp, 0, len(ops))
	for uid, op := range ops {
		switch op.Arity() {
		case 1:
			gates = append(gates, mapper.GateOp{UID: uid, Name: op.Name, Control: -1, Target: op.Qargs[0]})
		case 2:
			gates = append(gates, mapper.GateOp{UID: uid, Name: op.Name, Control: op.Qargs[0], Target: op.Qargs[1]})
		default:
			return nil, nil, fmt.Errorf("operation %d (%s) acts on %d qubits: %w", uid, op.Name, op.Arity(), ErrBadArity)
		}
	}
	return gates, ops, nil
}
