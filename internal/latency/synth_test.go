package latency

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/toqm-go/toqm-router/internal/target"
)

type stubCompiler struct {
	calls [][2]int
	spans map[[2]int]map[int]Span
	err   error
}

func (s *stubCompiler) CompileExchange(_ context.Context, a, b int) (map[int]Span, error) {
	s.calls = append(s.calls, [2]int{a, b})
	if s.err != nil {
		return nil, s.err
	}
	return s.spans[[2]int{a, b}], nil
}

func lineDurations(t *testing.T, withSwaps bool) (*target.CouplingMap, *target.Durations) {
	t.Helper()

	cm, err := target.Line(3)
	if err != nil {
		t.Fatalf("Line(3) error = %v", err)
	}

	records := []target.DurationRecord{
		{Op: "rz", Duration: 0},
		{Op: "x", Duration: 10},
		{Op: "cx", Qubits: []int{0, 1}, Duration: 100},
		{Op: "cx", Qubits: []int{1, 2}, Duration: 100},
	}
	if withSwaps {
		records = append(records,
			target.DurationRecord{Op: "swap", Qubits: []int{0, 1}, Duration: 300},
			target.DurationRecord{Op: "swap", Qubits: []int{2, 1}, Duration: 300},
		)
	}

	durs, err := target.NewDurations(records, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}
	return cm, durs
}

func TestSynthesizeSkippedWhenCovered(t *testing.T) {
	cm, durs := lineDurations(t, true)

	// The (2,1) record covers edge (1,2) in reverse orientation, so no
	// compiler is needed at all.
	got, err := SynthesizeSwapCosts(context.Background(), cm, durs, nil)
	if err != nil {
		t.Fatalf("SynthesizeSwapCosts() error = %v", err)
	}
	if got != nil {
		t.Errorf("SynthesizeSwapCosts() = %v, want nil when every edge is covered", got)
	}
}

func TestSynthesizeMissingDeviceContext(t *testing.T) {
	cm, durs := lineDurations(t, false)

	_, err := SynthesizeSwapCosts(context.Background(), cm, durs, nil)
	if !errors.Is(err, ErrMissingDeviceContext) {
		t.Fatalf("SynthesizeSwapCosts() error = %v, want ErrMissingDeviceContext", err)
	}
	if !strings.Contains(err.Error(), "basis gates") {
		t.Errorf("error %q should name the missing requirement", err)
	}
}

func TestSynthesizeCompilesMissingEdgesOnly(t *testing.T) {
	cm, err := target.Line(3)
	if err != nil {
		t.Fatalf("Line(3) error = %v", err)
	}
	durs, err := target.NewDurations([]target.DurationRecord{
		{Op: "swap", Qubits: []int{0, 1}, Duration: 300},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	dc := &stubCompiler{spans: map[[2]int]map[int]Span{
		{1, 2}: {
			1: {Start: 0, Stop: 120},
			2: {Start: 20, Stop: 300},
		},
	}}

	got, err := SynthesizeSwapCosts(context.Background(), cm, durs, dc)
	if err != nil {
		t.Fatalf("SynthesizeSwapCosts() error = %v", err)
	}

	if len(dc.calls) != 1 || dc.calls[0] != [2]int{1, 2} {
		t.Fatalf("compiler calls = %v, want only the uncovered edge (1,2)", dc.calls)
	}
	if len(got) != 1 {
		t.Fatalf("SynthesizeSwapCosts() = %v, want one entry", got)
	}
	// Earliest start 0, latest stop 300.
	if got[0].Control != 1 || got[0].Target != 2 || got[0].Duration != 300 {
		t.Errorf("synthesized = %+v, want (1,2) duration 300", got[0])
	}
}

func TestSynthesizeCompilerErrorPropagates(t *testing.T) {
	cm, durs := lineDurations(t, false)

	boom := errors.New("no pulse calibration")
	dc := &stubCompiler{err: boom}

	_, err := SynthesizeSwapCosts(context.Background(), cm, durs, dc)
	if !errors.Is(err, boom) {
		t.Fatalf("SynthesizeSwapCosts() error = %v, want wrapped compiler error", err)
	}
}

func TestSynthesizeHonorsCancellation(t *testing.T) {
	cm, durs := lineDurations(t, false)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dc := &stubCompiler{}
	if _, err := SynthesizeSwapCosts(ctx, cm, durs, dc); !errors.Is(err, context.Canceled) {
		t.Fatalf("SynthesizeSwapCosts() error = %v, want context.Canceled", err)
	}
	if len(dc.calls) != 0 {
		t.Errorf("compiler was called %d times after cancellation", len(dc.calls))
	}
}

func TestBasisCompilerDecomposesIntoThreeCNOTs(t *testing.T) {
	durs, err := target.NewDurations([]target.DurationRecord{
		{Op: "cx", Qubits: []int{0, 1}, Duration: 100},
		{Op: "cx", Qubits: []int{1, 0}, Duration: 120},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	bc, err := NewBasisCompiler(durs, []string{"rz", "x", "cx"})
	if err != nil {
		t.Fatalf("NewBasisCompiler() error = %v", err)
	}

	spans, err := bc.CompileExchange(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("CompileExchange() error = %v", err)
	}

	want := 100.0 + 120.0 + 100.0
	for _, q := range []int{0, 1} {
		s, ok := spans[q]
		if !ok {
			t.Fatalf("no span for qubit %d", q)
		}
		if s.Start != 0 || s.Stop != want {
			t.Errorf("span[%d] = %+v, want [0,%g]", q, s, want)
		}
	}
}

func TestBasisCompilerSingleOrientation(t *testing.T) {
	durs, err := target.NewDurations([]target.DurationRecord{
		{Op: "cx", Duration: 100},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	bc, err := NewBasisCompiler(durs, []string{"cx"})
	if err != nil {
		t.Fatalf("NewBasisCompiler() error = %v", err)
	}

	spans, err := bc.CompileExchange(context.Background(), 2, 3)
	if err != nil {
		t.Fatalf("CompileExchange() error = %v", err)
	}
	if spans[2].Stop != 300 {
		t.Errorf("span stop = %g, want 300 from three equal CNOTs", spans[2].Stop)
	}
}

func TestBasisCompilerNativeSwap(t *testing.T) {
	durs, err := target.NewDurations([]target.DurationRecord{
		{Op: "swap", Duration: 240},
		{Op: "cx", Duration: 100},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	bc, err := NewBasisCompiler(durs, []string{"cx", "swap"})
	if err != nil {
		t.Fatalf("NewBasisCompiler() error = %v", err)
	}

	spans, err := bc.CompileExchange(context.Background(), 0, 1)
	if err != nil {
		t.Fatalf("CompileExchange() error = %v", err)
	}
	if spans[0].Stop != 240 {
		t.Errorf("span stop = %g, want the native swap duration 240", spans[0].Stop)
	}
}

func TestBasisCompilerRequiresCX(t *testing.T) {
	durs, err := target.NewDurations([]target.DurationRecord{
		{Op: "rz", Duration: 10},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	bc, err := NewBasisCompiler(durs, []string{"rz", "x"})
	if err != nil {
		t.Fatalf("NewBasisCompiler() error = %v", err)
	}

	if _, err := bc.CompileExchange(context.Background(), 0, 1); err == nil {
		t.Error("CompileExchange() expected error when basis lacks cx")
	}
}

func TestFromDeviceMissingSwapContext(t *testing.T) {
	// A line device with every duration except swap and no compiler
	// cannot build a table.
	cm, durs := lineDurations(t, false)

	_, err := FromDevice(context.Background(), cm, durs, nil, 0)
	if !errors.Is(err, ErrMissingDeviceContext) {
		t.Fatalf("FromDevice() error = %v, want ErrMissingDeviceContext", err)
	}
}

func TestFromDeviceSynthesizedSwaps(t *testing.T) {
	cm, durs := lineDurations(t, false)

	bc, err := NewBasisCompiler(durs, []string{"rz", "x", "cx"})
	if err != nil {
		t.Fatalf("NewBasisCompiler() error = %v", err)
	}

	tbl, err := FromDevice(context.Background(), cm, durs, bc, 0)
	if err != nil {
		t.Fatalf("FromDevice() error = %v", err)
	}

	// Fastest non-zero duration is x=10; swap decomposes to 300.
	if v, ok := tbl.SwapCost(0, 1); !ok || v != 60 {
		t.Errorf("SwapCost(0,1) = %d,%v want round(300*2/10),true", v, ok)
	}
	if v, ok := tbl.SwapCost(2, 1); !ok || v != 60 {
		t.Errorf("SwapCost(2,1) = %d,%v want 60,true", v, ok)
	}
	if v, ok := tbl.Cycles("cx", 0, 1); !ok || v != 20 {
		t.Errorf("cx = %d,%v want 20,true", v, ok)
	}
}
