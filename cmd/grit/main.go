package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/pthm-cable/grit/config"
	"github.com/pthm-cable/grit/sim"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	steps := flag.Int("steps", 600, "Number of simulation steps to run")
	seed := flag.Int64("seed", 0, "RNG seed for particle jitter (0 = time-based)")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs and config snapshot")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	s, err := sim.New(cfg, sim.Options{
		Seed:      *seed,
		LogStats:  *logStats,
		OutputDir: *outputDir,
	})
	if err != nil {
		slog.Error("failed to initialize simulation", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	slog.Info("starting run",
		"resolution", cfg.Grid.Resolution,
		"pic_fraction", cfg.Grid.PICFraction,
		"integrator", cfg.Physics.Integrator,
		"steps", *steps,
		"workers", cfg.Derived.Workers,
	)

	if err := s.Run(*steps); err != nil {
		slog.Error("run failed", "error", err, "tick", s.Tick())
		os.Exit(1)
	}

	slog.Info("run complete", "ticks", s.Tick())
}
