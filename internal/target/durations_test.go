package target

import (
	"errors"
	"math"
	"testing"
)

func TestNewDurationsUnits(t *testing.T) {
	tests := []struct {
		name     string
		records  []DurationRecord
		dt       float64
		wantUnit Unit
		wantErr  error
	}{
		{
			name: "all dt",
			records: []DurationRecord{
				{Op: "x", Duration: 10, Unit: UnitDT},
				{Op: "cx", Duration: 100, Unit: UnitDT},
			},
			wantUnit: UnitDT,
		},
		{
			name: "empty unit defaults to dt",
			records: []DurationRecord{
				{Op: "x", Duration: 10},
			},
			wantUnit: UnitDT,
		},
		{
			name: "all seconds without dt",
			records: []DurationRecord{
				{Op: "x", Duration: 3.5e-8, Unit: UnitSeconds},
				{Op: "cx", Duration: 2.2e-7, Unit: UnitSeconds},
			},
			wantUnit: UnitSeconds,
		},
		{
			name: "seconds converted when dt known",
			records: []DurationRecord{
				{Op: "x", Duration: 10, Unit: UnitDT},
				{Op: "cx", Duration: 2e-8, Unit: UnitSeconds},
			},
			dt:       1e-9,
			wantUnit: UnitDT,
		},
		{
			name: "mixed units without dt",
			records: []DurationRecord{
				{Op: "x", Duration: 10, Unit: UnitDT},
				{Op: "cx", Duration: 2e-8, Unit: UnitSeconds},
			},
			wantErr: ErrUnitMismatch,
		},
		{
			name:     "no records",
			records:  nil,
			wantUnit: UnitDT,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDurations(tt.records, tt.dt)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewDurations() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewDurations() error = %v", err)
			}
			if d.Unit() != tt.wantUnit {
				t.Errorf("Unit() = %q, want %q", d.Unit(), tt.wantUnit)
			}
		})
	}
}

func TestNewDurationsRejectsBadRecords(t *testing.T) {
	tests := []struct {
		name    string
		records []DurationRecord
		dt      float64
	}{
		{
			name:    "empty op",
			records: []DurationRecord{{Duration: 1}},
		},
		{
			name:    "negative duration",
			records: []DurationRecord{{Op: "x", Duration: -1}},
		},
		{
			name:    "unknown unit",
			records: []DurationRecord{{Op: "x", Duration: 1, Unit: "ms"}},
		},
		{
			name:    "negative qubit index",
			records: []DurationRecord{{Op: "cx", Qubits: []int{0, -1}, Duration: 1}},
		},
		{
			name:    "negative dt",
			records: []DurationRecord{{Op: "x", Duration: 1}},
			dt:      -1e-9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewDurations(tt.records, tt.dt); err == nil {
				t.Error("NewDurations() expected error, got nil")
			}
		})
	}
}

func TestSecondsConversion(t *testing.T) {
	d, err := NewDurations([]DurationRecord{
		{Op: "cx", Duration: 2e-7, Unit: UnitSeconds},
	}, 1e-9)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	got, ok := d.Get("cx")
	if !ok {
		t.Fatal("Get(cx) not found")
	}
	if math.Abs(got-200) > 1e-9 {
		t.Errorf("Get(cx) = %g, want 200 dt", got)
	}
	if d.DT() != 1e-9 {
		t.Errorf("DT() = %g, want 1e-9", d.DT())
	}
}

func TestGetPrefersQubitSpecific(t *testing.T) {
	d, err := NewDurations([]DurationRecord{
		{Op: "cx", Duration: 100},
		{Op: "cx", Qubits: []int{0, 1}, Duration: 90},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	if v, ok := d.Get("cx", 0, 1); !ok || v != 90 {
		t.Errorf("Get(cx,0,1) = %g,%v want 90,true", v, ok)
	}
	if v, ok := d.Get("cx", 1, 2); !ok || v != 100 {
		t.Errorf("Get(cx,1,2) = %g,%v want device-wide 100,true", v, ok)
	}
	if v, ok := d.Get("cx"); !ok || v != 100 {
		t.Errorf("Get(cx) = %g,%v want 100,true", v, ok)
	}
	if _, ok := d.Get("rz"); ok {
		t.Error("Get(rz) should not be found")
	}
}

func TestHasExactIgnoresDeviceWide(t *testing.T) {
	d, err := NewDurations([]DurationRecord{
		{Op: "swap", Duration: 150},
		{Op: "swap", Qubits: []int{1, 2}, Duration: 140},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	if !d.HasExact("swap", 1, 2) {
		t.Error("HasExact(swap,1,2) = false, want true")
	}
	if d.HasExact("swap", 0, 1) {
		t.Error("HasExact(swap,0,1) = true, want false: device-wide records do not pin qubits")
	}
	if d.HasExact("swap", 2, 1) {
		t.Error("HasExact(swap,2,1) = true, want false: qubit order is part of the key")
	}
}

func TestLastRecordWinsFirstOrderKept(t *testing.T) {
	d, err := NewDurations([]DurationRecord{
		{Op: "x", Duration: 10},
		{Op: "cx", Duration: 100},
		{Op: "x", Duration: 12},
	}, 0)
	if err != nil {
		t.Fatalf("NewDurations() error = %v", err)
	}

	byName := d.ByName()
	if len(byName) != 2 {
		t.Fatalf("ByName() returned %d entries, want 2", len(byName))
	}
	if byName[0].Op != "x" || byName[0].Duration != 12 {
		t.Errorf("ByName()[0] = %+v, want x=12 (last value, first position)", byName[0])
	}
	if byName[1].Op != "cx" || byName[1].Duration != 100 {
		t.Errorf("ByName()[1] = %+v, want cx=100", byName[1])
	}
	if d.Len() != 2 {
		t.Errorf("Len() = %d, want 2", d.Len())
	}
}
