package target

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Unit labels the time base of a duration value.
type Unit string

const (
	// UnitDT is an abstract hardware cycle.
	UnitDT Unit = "dt"
	// UnitSeconds is wall-clock seconds.
	UnitSeconds Unit = "s"
)

// ErrUnitMismatch indicates duration records whose time units cannot be
// brought into a single base.
var ErrUnitMismatch = errors.New("duration units cannot be reconciled")

// DurationRecord is one raw duration entry for an operation, either
// device-wide (Qubits empty) or pinned to specific physical qubits.
// An empty Unit means UnitDT.
type DurationRecord struct {
	Op       string
	Qubits   []int
	Duration float64
	Unit     Unit
}

// NameDuration is a device-wide duration, keyed by operation name only.
type NameDuration struct {
	Op       string
	Duration float64
}

// QubitDuration is a duration pinned to specific physical qubits.
type QubitDuration struct {
	Op       string
	Qubits   []int
	Duration float64
}

// Durations is a unit-reconciled catalog of operation durations. When the
// device's dt length (seconds per cycle) is known, second-based records
// are converted into dt; otherwise every record must share one unit.
// Duplicate keys follow last-record-wins; iteration order is first
// insertion. Immutable after construction.
type Durations struct {
	dt   float64
	unit Unit

	byName    map[string]float64
	nameOrder []string

	byQubits   map[string]float64
	qubitOrder []qubitEntry
}

type qubitEntry struct {
	op     string
	qubits []int
}

func qubitsKey(op string, qubits []int) string {
	var b strings.Builder
	b.WriteString(op)
	for _, q := range qubits {
		b.WriteByte('/')
		b.WriteString(strconv.Itoa(q))
	}
	return b.String()
}

// NewDurations builds a catalog from raw records. dt is the device cycle
// length in seconds, or 0 when unknown.
func NewDurations(records []DurationRecord, dt float64) (*Durations, error) {
	if dt < 0 {
		return nil, fmt.Errorf("dt must be non-negative, got %g", dt)
	}

	d := &Durations{
		dt:       dt,
		byName:   make(map[string]float64),
		byQubits: make(map[string]float64),
	}

	for i, rec := range records {
		if rec.Op == "" {
			return nil, fmt.Errorf("duration record %d has empty op name", i)
		}
		if rec.Duration < 0 {
			return nil, fmt.Errorf("duration record %d (%q) is negative: %g", i, rec.Op, rec.Duration)
		}

		unit := rec.Unit
		if unit == "" {
			unit = UnitDT
		}
		value := rec.Duration
		switch unit {
		case UnitDT:
		case UnitSeconds:
			if dt > 0 {
				value = value / dt
				unit = UnitDT
			}
		default:
			return nil, fmt.Errorf("duration record %d (%q) has unknown unit %q", i, rec.Op, unit)
		}

		if d.unit == "" {
			d.unit = unit
		} else if d.unit != unit {
			return nil, fmt.Errorf("record %d (%q) is in %q but catalog is in %q: %w",
				i, rec.Op, unit, d.unit, ErrUnitMismatch)
		}

		if len(rec.Qubits) == 0 {
			if _, seen := d.byName[rec.Op]; !seen {
				d.nameOrder = append(d.nameOrder, rec.Op)
			}
			d.byName[rec.Op] = value
			continue
		}

		for _, q := range rec.Qubits {
			if q < 0 {
				return nil, fmt.Errorf("duration record %d (%q) names negative qubit %d", i, rec.Op, q)
			}
		}
		qubits := append([]int(nil), rec.Qubits...)
		key := qubitsKey(rec.Op, qubits)
		if _, seen := d.byQubits[key]; !seen {
			d.qubitOrder = append(d.qubitOrder, qubitEntry{op: rec.Op, qubits: qubits})
		}
		d.byQubits[key] = value
	}

	if d.unit == "" {
		d.unit = UnitDT
	}
	return d, nil
}

// Unit returns the single unit every stored value is expressed in.
func (d *Durations) Unit() Unit {
	return d.unit
}

// DT returns the device cycle length in seconds, or 0 when unknown.
func (d *Durations) DT() float64 {
	return d.dt
}

// Len returns the number of distinct duration keys.
func (d *Durations) Len() int {
	return len(d.byName) + len(d.byQubits)
}

// Get looks up the duration for op on the given qubits, preferring a
// qubit-specific record over a device-wide one.
func (d *Durations) Get(op string, qubits ...int) (float64, bool) {
	if len(qubits) > 0 {
		if v, ok := d.byQubits[qubitsKey(op, qubits)]; ok {
			return v, true
		}
	}
	v, ok := d.byName[op]
	return v, ok
}

// HasExact reports whether a qubit-specific record exists for op on
// exactly the given qubits. Device-wide records do not count.
func (d *Durations) HasExact(op string, qubits ...int) bool {
	_, ok := d.byQubits[qubitsKey(op, qubits)]
	return ok
}

// ByName returns the device-wide durations in first-insertion order.
func (d *Durations) ByName() []NameDuration {
	out := make([]NameDuration, 0, len(d.nameOrder))
	for _, op := range d.nameOrder {
		out = append(out, NameDuration{Op: op, Duration: d.byName[op]})
	}
	return out
}

// ByQubits returns the qubit-specific durations in first-insertion order.
func (d *Durations) ByQubits() []QubitDuration {
	out := make([]QubitDuration, 0, len(d.qubitOrder))
	for _, e := range d.qubitOrder {
		out = append(out, QubitDuration{
			Op:       e.op,
			Qubits:   append([]int(nil), e.qubits...),
			Duration: d.byQubits[qubitsKey(e.op, e.qubits)],
		})
	}
	return out
}
