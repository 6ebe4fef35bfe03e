package latency

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/toqm-go/toqm-router/internal/target"
)

// ErrMissingDeviceContext indicates that at least one coupling edge has
// no exchange duration and no device-aware compiler was supplied to
// synthesize one.
var ErrMissingDeviceContext = errors.New(
	"basis gates and backend calibration must be specified unless durations cover all swap gates")

// Span is the active interval of one physical qubit inside a compiled
// exchange, expressed in the same unit as the duration catalog.
type Span struct {
	Start float64
	Stop  float64
}

// DeviceCompiler compiles a single exchange between two physical qubits
// and reports each involved qubit's active interval. Implementations
// must express spans in the unit of the duration catalog feeding table
// construction.
type DeviceCompiler interface {
	CompileExchange(ctx context.Context, a, b int) (map[int]Span, error)
}

// SwapDuration is one synthesized exchange duration on a physical pair.
type SwapDuration struct {
	Control  int
	Target   int
	Duration float64
}

// SynthesizeSwapCosts returns raw exchange durations for every coupling
// edge lacking a qubit-specific exchange record in either orientation.
// When every edge is covered the step is skipped entirely and no device
// context is needed. The duration of a compiled exchange is the span
// from the earliest start to the latest stop across its two qubits.
func SynthesizeSwapCosts(ctx context.Context, cm *target.CouplingMap, durs *target.Durations, dc DeviceCompiler) ([]SwapDuration, error) {
	var missing [][2]int
	for _, e := range cm.Edges() {
		if durs.HasExact("swap", e[0], e[1]) || durs.HasExact("swap", e[1], e[0]) {
			continue
		}
		missing = append(missing, e)
	}
	if len(missing) == 0 {
		return nil, nil
	}
	if dc == nil {
		return nil, fmt.Errorf("%d coupling edges lack swap durations: %w", len(missing), ErrMissingDeviceContext)
	}

	out := make([]SwapDuration, 0, len(missing))
	for _, e := range missing {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		spans, err := dc.CompileExchange(ctx, e[0], e[1])
		if err != nil {
			return nil, fmt.Errorf("compiling swap on (%d,%d): %w", e[0], e[1], err)
		}
		sa, okA := spans[e[0]]
		sb, okB := spans[e[1]]
		if !okA || !okB {
			return nil, fmt.Errorf("compiled swap on (%d,%d) is missing qubit timing", e[0], e[1])
		}
		d := math.Max(sa.Stop, sb.Stop) - math.Min(sa.Start, sb.Start)
		if d < 0 {
			return nil, fmt.Errorf("compiled swap on (%d,%d) has negative duration %g", e[0], e[1], d)
		}
		out = append(out, SwapDuration{Control: e[0], Target: e[1], Duration: d})
	}
	return out, nil
}

// BasisCompiler is an in-repo DeviceCompiler backed by the duration
// catalog alone. A native exchange in the basis is timed directly from
// its record; otherwise the exchange decomposes into three sequential
// CNOTs whose orientation-specific durations chain back to back.
type BasisCompiler struct {
	durs  *target.Durations
	basis map[string]bool
}

// NewBasisCompiler builds a compiler for the given basis gate set.
func NewBasisCompiler(durs *target.Durations, basisGates []string) (*BasisCompiler, error) {
	if durs == nil {
		return nil, fmt.Errorf("durations are required")
	}
	if len(basisGates) == 0 {
		return nil, fmt.Errorf("basis gate list is empty")
	}
	basis := make(map[string]bool, len(basisGates))
	for _, g := range basisGates {
		basis[g] = true
	}
	return &BasisCompiler{durs: durs, basis: basis}, nil
}

// CompileExchange implements DeviceCompiler.
func (c *BasisCompiler) CompileExchange(_ context.Context, a, b int) (map[int]Span, error) {
	if c.basis["swap"] {
		if d, ok := c.durs.Get("swap", a, b); ok {
			return map[int]Span{a: {Stop: d}, b: {Stop: d}}, nil
		}
	}
	if !c.basis["cx"] {
		return nil, fmt.Errorf("basis has neither a timed swap nor cx to decompose into")
	}

	dab, ok := c.durs.Get("cx", a, b)
	if !ok {
		return nil, fmt.Errorf("no duration for cx on (%d,%d)", a, b)
	}
	dba, ok := c.durs.Get("cx", b, a)
	if !ok {
		// Direction-agnostic devices record one orientation only.
		dba = dab
	}

	// cx a,b; cx b,a; cx a,b scheduled back to back keeps both qubits
	// busy for the whole decomposition.
	total := dab + dba + dab
	return map[int]Span{a: {Stop: total}, b: {Stop: total}}, nil
}
