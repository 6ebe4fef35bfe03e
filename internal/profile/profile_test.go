package profile

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/toqm-go/toqm-router/internal/latency"
	"github.com/toqm-go/toqm-router/internal/target"
)

const lineProfile = `
name: line-3
num_qubits: 3
edges:
  - [0, 1]
  - [1, 2]
basis_gates: [rz, x, cx]
durations:
  - op: rz
    duration: 0
  - op: x
    duration: 10
  - op: cx
    duration: 100
`

func TestParseProfile(t *testing.T) {
	src := `
name: lagos-lite
num_qubits: 5
dt: 1.0e-9
edges:
  - [0, 1]
  - [1, 2]
  - [1, 3]
  - [3, 4]
basis_gates: [rz, sx, x, cx]
durations:
  - op: x
    duration: 160
  - op: cx
    qubits: [0, 1]
    duration: 800
  - op: sx
    duration: 3.2e-8
    unit: s
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	if p.Name != "lagos-lite" || p.NumQubits != 5 {
		t.Fatalf("got name %q qubits %d", p.Name, p.NumQubits)
	}
	if p.DT != 1.0e-9 {
		t.Fatalf("dt = %g, want 1e-9", p.DT)
	}
	if len(p.Edges) != 4 || len(p.Durations) != 3 || len(p.BasisGates) != 4 {
		t.Fatalf("got %d edges, %d durations, %d basis gates", len(p.Edges), len(p.Durations), len(p.BasisGates))
	}
	if p.Durations[1].Op != "cx" || len(p.Durations[1].Qubits) != 2 {
		t.Fatalf("pinned duration = %+v", p.Durations[1])
	}
	if p.Durations[2].Unit != "s" {
		t.Fatalf("unit = %q, want s", p.Durations[2].Unit)
	}
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"empty document", ""},
		{"unknown field", "num_qubits: 3\nqubit_count: 3\n"},
		{"zero qubits", "num_qubits: 0\n"},
		{"three endpoint edge", "num_qubits: 3\nedges:\n  - [0, 1, 2]\n"},
		{"not yaml", "{{{"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.src)); err == nil {
				t.Fatal("expected an error")
			}
		})
	}
}

func TestCouplingMapConversion(t *testing.T) {
	p, err := Parse([]byte(lineProfile))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	cm, err := p.CouplingMap()
	if err != nil {
		t.Fatalf("CouplingMap returned error: %v", err)
	}
	if cm.NumQubits() != 3 || cm.NumEdges() != 2 {
		t.Fatalf("got %d qubits %d edges", cm.NumQubits(), cm.NumEdges())
	}
	if d := cm.Distance(0, 2); d != 2 {
		t.Fatalf("Distance(0,2) = %d, want 2", d)
	}
}

func TestDurationCatalogConvertsSeconds(t *testing.T) {
	src := `
num_qubits: 2
dt: 1.0e-9
edges:
  - [0, 1]
durations:
  - op: x
    duration: 2.0e-8
    unit: s
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	durs, err := p.DurationCatalog()
	if err != nil {
		t.Fatalf("DurationCatalog returned error: %v", err)
	}
	if durs.Unit() != target.UnitDT {
		t.Fatalf("unit = %q, want dt", durs.Unit())
	}
	got, ok := durs.Get("x")
	if !ok || got != 20 {
		t.Fatalf("Get(x) = %v %v, want 20", got, ok)
	}
}

func TestTableSynthesizesExchanges(t *testing.T) {
	p, err := Parse([]byte(lineProfile))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	table, err := p.Table(context.Background(), 0)
	if err != nil {
		t.Fatalf("Table returned error: %v", err)
	}

	if got, ok := table.Cycles("x", -1, 0); !ok || got != 2 {
		t.Fatalf("x cycles = %d %v, want 2", got, ok)
	}
	if got, ok := table.Cycles("cx", 0, 1); !ok || got != 20 {
		t.Fatalf("cx cycles = %d %v, want 20", got, ok)
	}
	if got, ok := table.SwapCost(1, 2); !ok || got != 60 {
		t.Fatalf("swap cost = %d %v, want 60", got, ok)
	}
}

func TestTableRequiresBasisForMissingSwaps(t *testing.T) {
	src := `
num_qubits: 3
edges:
  - [0, 1]
  - [1, 2]
durations:
  - op: x
    duration: 10
  - op: cx
    duration: 100
`
	p, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse returned error: %v", err)
	}
	_, err = p.Table(context.Background(), 0)
	if !errors.Is(err, latency.ErrMissingDeviceContext) {
		t.Fatalf("Table error = %v, want wrapped ErrMissingDeviceContext", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "device.yaml")
	if err := os.WriteFile(path, []byte(lineProfile), 0o644); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	p, err := Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if p.Name != "line-3" {
		t.Fatalf("name = %q, want line-3", p.Name)
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
