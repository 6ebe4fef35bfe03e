package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/toqm-go/toqm-router/internal/circuit"
	"github.com/toqm-go/toqm-router/internal/config"
	"github.com/toqm-go/toqm-router/internal/logging"
	"github.com/toqm-go/toqm-router/internal/mapper"
	"github.com/toqm-go/toqm-router/internal/metrics"
	"github.com/toqm-go/toqm-router/internal/profile"
	"github.com/toqm-go/toqm-router/internal/qasm"
	"github.com/toqm-go/toqm-router/internal/router"
	"github.com/toqm-go/toqm-router/internal/strategy"
	"github.com/toqm-go/toqm-router/internal/util"
)

func main() {
	cfg := config.FromEnv()

	var (
		profilePath  = flag.String("profile", "", "device profile YAML (required)")
		inputPath    = flag.String("input", "", "OpenQASM 2.0 circuit to route (default stdin)")
		outputPath   = flag.String("output", "", "routed circuit destination (default stdout)")
		layoutPath   = flag.String("layout", "", "write the final layout to this file")
		strategyName = flag.String("strategy", cfg.Routing.Strategy, "routing preset: fastest, balanced, higher-quality, best-quality")
		threshold    = flag.Int("threshold", cfg.Routing.Threshold, "qubit count at which presets switch to heuristics (0 = preset default)")
		searchCycles = flag.Int("search-cycles", cfg.Routing.SearchCycles, "placement search: -1 unbounded, 0 keep addressing, n bound to n cycles")
		scale        = flag.Int("scale", cfg.Routing.Scale, "duration normalization scale (0 = default)")
		showVersion  = flag.Bool("version", false, "print version and exit")
	)
	flag.Parse()

	if *showVersion {
		fmt.Printf("toqm-router %s (%s)\n", router.Version, router.GitSHA)
		return
	}
	if *profilePath == "" {
		log.Fatalf("[main] -profile is required")
	}

	logging.Setup(logging.Config{Format: cfg.Logging.Format, Level: cfg.Logging.Level})
	runID := logging.GenerateCorrelationID()
	logger := logging.Component("main").With("run_id", runID)
	logger.Info("starting toqm-router", "version", router.Version, "git_sha", router.GitSHA)

	if cfg.Metrics.Enabled {
		metrics.Init("toqm")
		go func() {
			if err := metrics.StartServer(cfg.Metrics.Address); err != nil {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "address", cfg.Metrics.Address)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	prof, err := profile.Load(*profilePath)
	if err != nil {
		log.Fatalf("[main] loading device profile: %v", err)
	}
	cm, err := prof.CouplingMap()
	if err != nil {
		log.Fatalf("[main] building coupling map: %v", err)
	}
	table, err := prof.Table(ctx, *scale)
	if err != nil {
		log.Fatalf("[main] building cost table: %v", err)
	}
	logger.Info("device profile loaded",
		"device", prof.Name,
		"qubits", cm.NumQubits(),
		"edges", cm.NumEdges())

	kind, err := strategy.ParseKind(*strategyName)
	if err != nil {
		log.Fatalf("[main] %v", err)
	}
	opts := []router.Option{
		router.WithStrategy(kind),
		router.WithSearchCycles(*searchCycles),
	}
	if *threshold > 0 {
		opts = append(opts, router.WithThreshold(*threshold))
	}
	r, err := router.New(cm, table, opts...)
	if err != nil {
		log.Fatalf("[main] building router: %v", err)
	}

	circ, err := readCircuit(*inputPath)
	if err != nil {
		log.Fatalf("[main] reading circuit: %v", err)
	}

	var layout *circuit.Layout
	if *searchCycles != mapper.NoPlacement {
		layout, err = circuit.Trivial(circ.Register(), cm.NumQubits())
		if err != nil {
			log.Fatalf("[main] building layout: %v", err)
		}
	}

	rep, err := r.Route(ctx, circ, layout)
	if err != nil {
		if ctx.Err() != nil {
			log.Fatalf("[main] routing interrupted: %v", err)
		}
		log.Fatalf("[main] routing failed: %v", err)
	}

	if err := writeCircuit(*outputPath, rep.Circuit); err != nil {
		log.Fatalf("[main] writing routed circuit: %v", err)
	}
	if layout != nil && *layoutPath != "" {
		if err := writeLayout(*layoutPath, layout); err != nil {
			log.Fatalf("[main] writing layout: %v", err)
		}
	}

	logger.Info("routing complete",
		"correlation_id", rep.CorrelationID,
		"strategy", rep.Strategy,
		"attempt", rep.Attempt,
		"swaps_inserted", rep.SwapsInserted,
		"ideal_cycles", rep.IdealCycles,
		"nodes_popped", rep.NodesPopped,
		"elapsed", rep.Elapsed)
	if layout != nil {
		logger.Info("final layout", "layout", layout.String())
	}
}

func readCircuit(path string) (*circuit.Circuit, error) {
	if path == "" {
		return qasm.Parse(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return qasm.Parse(f)
}

func writeCircuit(path string, c *circuit.Circuit) error {
	if path == "" {
		return qasm.Write(os.Stdout, c)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := qasm.Write(f, c); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeLayout(path string, l *circuit.Layout) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := util.EnsureDir(dir); err != nil {
			return err
		}
	}
	return os.WriteFile(path, []byte(l.String()+"\n"), 0o644)
}
