// Package strategy expands router presets into ordered mapper attempts
// and runs them with fallback.
package strategy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/toqm-go/toqm-router/internal/latency"
	"github.com/toqm-go/toqm-router/internal/logging"
	"github.com/toqm-go/toqm-router/internal/mapper"
	"github.com/toqm-go/toqm-router/internal/metrics"
	"github.com/toqm-go/toqm-router/internal/target"
)

// Kind names a routing preset.
type Kind string

const (
	Fastest       Kind = "fastest"
	Balanced      Kind = "balanced"
	HigherQuality Kind = "higher-quality"
	BestQuality   Kind = "best-quality"
)

// Preset qubit-count thresholds below which the exact search is used.
// The higher-quality preset historically runs exact a little longer.
const (
	DefaultThreshold              = 6
	DefaultHigherQualityThreshold = 7
)

// ParseKind resolves a preset name.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(s); k {
	case Fastest, Balanced, HigherQuality, BestQuality:
		return k, nil
	}
	return "", fmt.Errorf("unknown strategy %q", s)
}

// Attempt fully parameterizes one mapper configuration: queue bounds
// (zero QueueMax means exhaustive), expansion top-K (zero keeps every
// successor), and whether exchange insertion is permitted.
type Attempt struct {
	Name        string
	QueueMax    int
	QueueTarget int
	TopK        int
	AllowSwaps  bool
}

// Plan is the ordered attempt list of a preset for one circuit size.
type Plan struct {
	Kind     Kind
	Attempts []Attempt
}

func exact() Attempt {
	return Attempt{Name: "exact", AllowSwaps: true}
}

func exactNoSwaps() Attempt {
	return Attempt{Name: "exact-no-swaps"}
}

func greedy(topK, queueMax, queueTarget int) Attempt {
	return Attempt{
		Name:        fmt.Sprintf("greedy-top-%d", topK),
		QueueMax:    queueMax,
		QueueTarget: queueTarget,
		TopK:        topK,
		AllowSwaps:  true,
	}
}

// PlanFor expands a preset for a circuit of numQubits qubits. A zero
// threshold selects the preset default.
func PlanFor(kind Kind, numQubits, threshold int) (Plan, error) {
	if numQubits < 1 {
		return Plan{}, fmt.Errorf("need at least one qubit, got %d", numQubits)
	}
	if threshold < 0 {
		return Plan{}, fmt.Errorf("threshold must be non-negative, got %d", threshold)
	}

	switch kind {
	case Fastest:
		return Plan{Kind: kind, Attempts: []Attempt{greedy(1, 5000, 3000)}}, nil

	case Balanced:
		if threshold == 0 {
			threshold = DefaultThreshold
		}
		if numQubits < threshold {
			return Plan{Kind: kind, Attempts: []Attempt{exact()}}, nil
		}
		return Plan{Kind: kind, Attempts: []Attempt{greedy(5, 800, 400)}}, nil

	case HigherQuality:
		if threshold == 0 {
			threshold = DefaultHigherQualityThreshold
		}
		if numQubits < threshold {
			return Plan{Kind: kind, Attempts: []Attempt{exact()}}, nil
		}
		return Plan{Kind: kind, Attempts: []Attempt{greedy(11, 1000, 400)}}, nil

	case BestQuality:
		if threshold == 0 {
			threshold = DefaultThreshold
		}
		if numQubits < threshold {
			return Plan{Kind: kind, Attempts: []Attempt{exactNoSwaps(), exact()}}, nil
		}
		return Plan{Kind: kind, Attempts: []Attempt{greedy(3, 4800, 3600)}}, nil
	}
	return Plan{}, fmt.Errorf("unknown strategy %q", kind)
}

// Factory builds a fresh mapper for one attempt.
type Factory func(Attempt) (mapper.Mapper, error)

// Selector executes a plan's attempts in order. It is the only
// component that may catch the mapper's no-schedule signal; every other
// error aborts the plan immediately.
type Selector struct {
	factory Factory
	log     *slog.Logger
}

// NewSelector builds a selector around a mapper factory.
func NewSelector(factory Factory) (*Selector, error) {
	if factory == nil {
		return nil, fmt.Errorf("mapper factory is required")
	}
	return &Selector{
		factory: factory,
		log:     logging.Component("strategy"),
	}, nil
}

// Route tries plan's attempts against gates until one finds a schedule.
// It returns the schedule and the attempt that produced it. Exhausting
// the plan returns an error that still matches mapper.ErrNoSchedule.
func (s *Selector) Route(ctx context.Context, plan Plan, gates []mapper.GateOp, numQubits int, cm *target.CouplingMap, costs *latency.Table, searchCycles int) (*mapper.Result, Attempt, error) {
	if len(plan.Attempts) == 0 {
		return nil, Attempt{}, fmt.Errorf("plan for %q has no attempts", plan.Kind)
	}

	for i, att := range plan.Attempts {
		m, err := s.factory(att)
		if err != nil {
			return nil, att, fmt.Errorf("building mapper for attempt %q: %w", att.Name, err)
		}

		res, err := m.Run(ctx, gates, numQubits, cm, costs, searchCycles)
		if err == nil {
			s.log.Debug("attempt found a schedule",
				"correlation_id", logging.CorrelationID(ctx),
				"strategy", plan.Kind,
				"attempt", att.Name,
				"attempts_used", i+1)
			if mt := metrics.Get(); mt != nil {
				mt.ObserveAttempts(metrics.Labels{Strategy: string(plan.Kind)}, float64(i+1))
			}
			return res, att, nil
		}
		if !errors.Is(err, mapper.ErrNoSchedule) {
			return nil, att, err
		}

		s.log.Warn("attempt found no schedule, falling back",
			"correlation_id", logging.CorrelationID(ctx),
			"strategy", plan.Kind,
			"attempt", att.Name,
			"remaining", len(plan.Attempts)-i-1)
		if mt := metrics.Get(); mt != nil {
			mt.IncStrategyFallbacks(metrics.Labels{Strategy: string(plan.Kind), Attempt: att.Name})
		}
	}

	return nil, Attempt{}, fmt.Errorf("preset %q exhausted all %d attempts: %w",
		plan.Kind, len(plan.Attempts), mapper.ErrNoSchedule)
}
