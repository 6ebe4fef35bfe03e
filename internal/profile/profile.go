// Package profile loads YAML device profiles and converts them into the
// routing types: coupling map, duration catalog, and cycle-cost table.
package profile

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/toqm-go/toqm-router/internal/latency"
	"github.com/toqm-go/toqm-router/internal/metrics"
	"github.com/toqm-go/toqm-router/internal/target"
)

// DurationSpec is one per-operation duration entry. Qubits pins the
// duration to specific physical qubits; an empty list makes it
// device-wide. Unit is "dt" (default) or "s".
type DurationSpec struct {
	Op       string  `yaml:"op"`
	Qubits   []int   `yaml:"qubits,omitempty"`
	Duration float64 `yaml:"duration"`
	Unit     string  `yaml:"unit,omitempty"`
}

// Profile describes one device: its coupling graph, timing data, and
// the basis gates available for exchange synthesis.
type Profile struct {
	Name       string         `yaml:"name"`
	NumQubits  int            `yaml:"num_qubits"`
	DT         float64        `yaml:"dt,omitempty"`
	Edges      [][]int        `yaml:"edges"`
	BasisGates []string       `yaml:"basis_gates,omitempty"`
	Durations  []DurationSpec `yaml:"durations"`
}

// Load reads and parses a profile file.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	p, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("profile %s: %w", path, err)
	}
	return p, nil
}

// Parse decodes a profile document. Unknown fields are rejected.
func Parse(data []byte) (*Profile, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var p Profile
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("profile document is empty")
		}
		return nil, fmt.Errorf("decoding profile: %w", err)
	}

	if p.NumQubits < 1 {
		return nil, fmt.Errorf("num_qubits must be at least 1, got %d", p.NumQubits)
	}
	for i, e := range p.Edges {
		if len(e) != 2 {
			return nil, fmt.Errorf("edge %d has %d endpoints, want 2", i, len(e))
		}
	}
	return &p, nil
}

// CouplingMap builds the device's coupling graph.
func (p *Profile) CouplingMap() (*target.CouplingMap, error) {
	edges := make([][2]int, len(p.Edges))
	for i, e := range p.Edges {
		edges[i] = [2]int{e[0], e[1]}
	}
	return target.NewCouplingMap(p.NumQubits, edges)
}

// DurationCatalog builds the device's duration catalog.
func (p *Profile) DurationCatalog() (*target.Durations, error) {
	records := make([]target.DurationRecord, len(p.Durations))
	for i, d := range p.Durations {
		records[i] = target.DurationRecord{
			Op:       d.Op,
			Qubits:   d.Qubits,
			Duration: d.Duration,
			Unit:     target.Unit(d.Unit),
		}
	}
	return target.NewDurations(records, p.DT)
}

// Table builds the full cycle-cost table for the device, synthesizing
// exchange costs through a basis-gate compiler when the profile names
// basis gates. A zero scale uses the default normalization scale.
func (p *Profile) Table(ctx context.Context, scale int) (*latency.Table, error) {
	start := time.Now()

	cm, err := p.CouplingMap()
	if err != nil {
		return nil, err
	}
	durs, err := p.DurationCatalog()
	if err != nil {
		return nil, err
	}

	var dc latency.DeviceCompiler
	if len(p.BasisGates) > 0 {
		bc, err := latency.NewBasisCompiler(durs, p.BasisGates)
		if err != nil {
			return nil, err
		}
		dc = bc
	}

	table, err := latency.FromDevice(ctx, cm, durs, dc, scale)
	if err != nil {
		return nil, err
	}
	if m := metrics.Get(); m != nil {
		m.ObserveTableBuild(time.Since(start).Seconds())
	}
	return table, nil
}
