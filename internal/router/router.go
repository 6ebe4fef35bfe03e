// Package router orchestrates the routing pass: gate-list translation,
// strategy selection, schedule search, and result reconciliation.
package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/toqm-go/toqm-router/internal/circuit"
	"github.com/toqm-go/toqm-router/internal/engine"
	"github.com/toqm-go/toqm-router/internal/latency"
	"github.com/toqm-go/toqm-router/internal/logging"
	"github.com/toqm-go/toqm-router/internal/mapper"
	"github.com/toqm-go/toqm-router/internal/metrics"
	"github.com/toqm-go/toqm-router/internal/strategy"
	"github.com/toqm-go/toqm-router/internal/target"
)

// Build-time version information, injected via ldflags.
var (
	Version = "dev"
	GitSHA  = "unknown"
)

// ErrRegisterShape reports a circuit whose register does not fit the
// device the router was built for.
var ErrRegisterShape = errors.New("circuit register does not fit the device")

// Option configures a Router at construction.
type Option func(*Router) error

// WithStrategy selects the routing preset. The default is balanced.
func WithStrategy(kind strategy.Kind) Option {
	return func(r *Router) error {
		k, err := strategy.ParseKind(string(kind))
		if err != nil {
			return err
		}
		r.kind = k
		return nil
	}
}

// WithThreshold overrides the preset's qubit-count threshold.
func WithThreshold(n int) Option {
	return func(r *Router) error {
		if n < 1 {
			return fmt.Errorf("threshold must be positive, got %d", n)
		}
		r.threshold = n
		return nil
	}
}

// WithSearchCycles sets the placement-search behavior passed to every
// attempt: mapper.NoPlacement keeps the caller's physical assignment,
// mapper.FullPlacement searches placements without bound, and a positive
// value bounds placement branching to that many leading cycles.
func WithSearchCycles(n int) Option {
	return func(r *Router) error {
		if n < mapper.FullPlacement {
			return fmt.Errorf("search cycles must be -1, 0, or positive, got %d", n)
		}
		r.searchCycles = n
		return nil
	}
}

// WithFactory replaces the engine-backed mapper factory.
func WithFactory(f strategy.Factory) Option {
	return func(r *Router) error {
		if f == nil {
			return errors.New("mapper factory must not be nil")
		}
		r.factory = f
		return nil
	}
}

// Router runs the routing pass against one device. It is immutable
// after construction and safe for concurrent Route calls; every call
// builds its own mapper handles through the factory.
type Router struct {
	cm           *target.CouplingMap
	costs        *latency.Table
	kind         strategy.Kind
	threshold    int
	searchCycles int
	factory      strategy.Factory
	selector     *strategy.Selector
	log          *slog.Logger
}

// engineFactory builds the in-repo engine for one attempt. All presets
// use the frontier cost.
func engineFactory(att strategy.Attempt) (mapper.Mapper, error) {
	return engine.New(engine.Options{
		QueueMax:    att.QueueMax,
		QueueTarget: att.QueueTarget,
		TopK:        att.TopK,
		AllowSwaps:  att.AllowSwaps,
	})
}

// New validates the configuration and returns a Router for the device
// described by cm and costs.
func New(cm *target.CouplingMap, costs *latency.Table, opts ...Option) (*Router, error) {
	if cm == nil {
		return nil, errors.New("coupling map is required")
	}
	if costs == nil {
		return nil, errors.New("latency table is required")
	}

	r := &Router{
		cm:           cm,
		costs:        costs,
		kind:         strategy.Balanced,
		searchCycles: mapper.FullPlacement,
		factory:      engineFactory,
		log:          logging.Component("router"),
	}
	for _, opt := range opts {
		if err := opt(r); err != nil {
			return nil, fmt.Errorf("configuring router: %w", err)
		}
	}

	sel, err := strategy.NewSelector(r.factory)
	if err != nil {
		return nil, err
	}
	r.selector = sel

	r.log.Debug("router configured",
		"strategy", r.kind,
		"threshold", r.threshold,
		"search_cycles", r.searchCycles,
		"device_qubits", cm.NumQubits(),
		"device_edges", cm.NumEdges())
	return r, nil
}

// Report is the outcome of one Route call.
type Report struct {
	Circuit             *circuit.Circuit
	CorrelationID       string
	Strategy            strategy.Kind
	Attempt             string
	SwapsInserted       int
	IdealCycles         int
	NodesPopped         int
	RemainingCandidates int
	Elapsed             time.Duration
}

// Route routes circ onto the device and returns the physical circuit
// with a routing report. The input circuit is never mutated. layout is
// required only when placement search is enabled; it must then cover
// every physical qubit and is rewritten to the inferred placement once
// reconciliation succeeds.
func (r *Router) Route(ctx context.Context, circ *circuit.Circuit, layout *circuit.Layout) (*Report, error) {
	start := time.Now()
	if circ == nil {
		return nil, errors.New("circuit is required")
	}

	cid := logging.CorrelationID(ctx)
	if cid == "" {
		cid = uuid.NewString()
		ctx = logging.WithCorrelationID(ctx, cid)
	}
	rlog := logging.RouteLogger(cid, string(r.kind), circ.NumQubits(), circ.NumOps())
	rlog.Info("routing circuit", "search_cycles", r.searchCycles)

	if circ.NumQubits() > r.cm.NumQubits() {
		err := fmt.Errorf("register %s spans %d qubits but the device has %d: %w",
			circ.Register().Name, circ.NumQubits(), r.cm.NumQubits(), ErrRegisterShape)
		return r.fail(rlog, start, "shape", err)
	}
	if r.searchCycles != mapper.NoPlacement && layout == nil {
		return r.fail(rlog, start, "shape", errors.New("a layout is required when placement search is enabled"))
	}

	gates, ops, err := Translate(circ)
	if err != nil {
		return r.fail(rlog, start, "translate", err)
	}

	plan, err := strategy.PlanFor(r.kind, circ.NumQubits(), r.threshold)
	if err != nil {
		return r.fail(rlog, start, "plan", err)
	}

	res, att, err := r.selector.Route(ctx, plan, gates, circ.NumQubits(), r.cm, r.costs, r.searchCycles)
	if err != nil {
		reason := "search"
		if errors.Is(err, mapper.ErrNoSchedule) {
			reason = "no_schedule"
		}
		return r.fail(rlog, start, reason, err)
	}

	out, err := reconcile(circ, ops, res)
	if err != nil {
		return r.fail(rlog, start, "reconcile", err)
	}

	if r.searchCycles != mapper.NoPlacement {
		if err := updateLayout(layout, res); err != nil {
			return r.fail(rlog, start, "layout", err)
		}
	}

	elapsed := time.Since(start)
	swaps := res.SwapCount()
	if m := metrics.Get(); m != nil {
		l := metrics.Labels{Strategy: string(r.kind), Attempt: att.Name}
		m.IncCircuitsRouted(l)
		m.AddGatesRouted(l, float64(len(gates)))
		m.AddSwapsInserted(l, float64(swaps))
		m.AddSearchNodesPopped(l, float64(res.NodesPopped))
		m.ObserveScheduleDepth(l, float64(res.IdealCycles))
		m.ObserveRouteDuration(l, elapsed.Seconds())
	}
	rlog.Info("circuit routed",
		"attempt", att.Name,
		"swaps", swaps,
		"ideal_cycles", res.IdealCycles,
		"nodes_popped", res.NodesPopped,
		"elapsed", elapsed)

	return &Report{
		Circuit:             out,
		CorrelationID:       cid,
		Strategy:            r.kind,
		Attempt:             att.Name,
		SwapsInserted:       swaps,
		IdealCycles:         res.IdealCycles,
		NodesPopped:         res.NodesPopped,
		RemainingCandidates: res.RemainingCandidates,
		Elapsed:             elapsed,
	}, nil
}

func (r *Router) fail(log *slog.Logger, start time.Time, reason string, err error) (*Report, error) {
	log.Error("routing failed", "reason", reason, "error", err, "elapsed", time.Since(start))
	if m := metrics.Get(); m != nil {
		m.IncCircuitsFailed(metrics.Labels{Strategy: string(r.kind), Reason: reason})
	}
	return nil, err
}
