// Package sim orchestrates the per-step kernel sequence of the mac core and
// feeds telemetry. The pressure/force solve itself lives outside this module;
// Sim exposes the seam where it plugs in.
package sim

import (
	"fmt"

	"github.com/pthm-cable/grit/config"
	"github.com/pthm-cable/grit/mac"
	"github.com/pthm-cable/grit/telemetry"
)

// ExternalSolver mutates the grid velocity store between the particle-to-grid
// transfer and boundary enforcement. This is where force application and the
// pressure/divergence solve happen; both are external collaborators.
type ExternalSolver func(g *mac.Grid, dt float32)

// Options holds run-time settings not covered by the config file.
type Options struct {
	Seed      int64 // Jitter RNG seed (0 = time-based)
	LogStats  bool  // Emit window stats via slog
	OutputDir string
	Solver    ExternalSolver
}

// Sim drives the simulation loop over a mac.Grid.
type Sim struct {
	Grid *mac.Grid

	cfg    *config.Config
	opts   Options
	perf   *telemetry.PerfCollector
	output *telemetry.OutputManager

	tick    int32
	simTime float64

	// Scratch buffers reused by stats collection
	speeds   []float64
	speedsSq []float64
}

// New constructs the grid from the validated config and prepares telemetry.
func New(cfg *config.Config, opts Options) (*Sim, error) {
	region := mac.SandRegion{
		Min: cfg.Grid.SandMin,
		Max: cfg.Grid.SandMax,
	}
	grid := mac.New(cfg.Grid.Resolution, region, float32(cfg.Grid.PICFraction), opts.Seed, cfg.Derived.Workers)

	output, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		grid.Close()
		return nil, fmt.Errorf("initializing output: %w", err)
	}
	if err := output.WriteConfig(cfg); err != nil {
		grid.Close()
		output.Close()
		return nil, err
	}

	return &Sim{
		Grid:   grid,
		cfg:    cfg,
		opts:   opts,
		perf:   telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		output: output,

		speeds:   make([]float64, 0, cfg.Derived.ParticleCapacity),
		speedsSq: make([]float64, 0, cfg.Derived.ParticleCapacity),
	}, nil
}

// Tick returns the number of completed steps.
func (s *Sim) Tick() int32 { return s.tick }

// Step runs one full simulation step. Pass ordering is a hard requirement:
// classification completes before any kernel reads cell types, velocities
// are saved before the external solve mutates them, and the FLIP delta is
// computed before any particle samples it.
func (s *Sim) Step() {
	dt := s.cfg.Derived.DT32

	s.perf.StartTick()

	s.perf.StartPhase(telemetry.PhaseClassify)
	s.Grid.UpdateCellTypes()

	s.perf.StartPhase(telemetry.PhaseParticlesToGrid)
	s.Grid.ParticlesToGrid()

	s.perf.StartPhase(telemetry.PhaseSaveVelocities)
	s.Grid.SaveVelocities()

	if s.opts.Solver != nil {
		s.perf.StartPhase(telemetry.PhaseExternalSolve)
		s.opts.Solver(s.Grid, dt)
	}

	s.perf.StartPhase(telemetry.PhaseBoundary)
	s.Grid.EnforceBoundary()

	s.perf.StartPhase(telemetry.PhaseGridToParticles)
	s.Grid.GridToParticles()

	s.perf.StartPhase(telemetry.PhaseAdvect)
	switch s.cfg.Physics.Integrator {
	case config.IntegratorEuler:
		s.Grid.AdvectEuler(dt)
	default:
		s.Grid.AdvectMidpoint(dt)
	}
	s.Grid.UpdateParticleEdgePos()

	s.perf.EndTick()

	s.tick++
	s.simTime += s.cfg.Physics.DT
}

// Run executes n steps, emitting a stats window every Telemetry.StatsEvery
// steps when enabled.
func (s *Sim) Run(n int) error {
	every := s.cfg.Telemetry.StatsEvery

	for i := 0; i < n; i++ {
		s.Step()

		if every > 0 && int(s.tick)%every == 0 {
			stats := s.collectStats()
			perfStats := s.perf.Stats()

			if s.opts.LogStats {
				stats.LogStats()
				perfStats.LogStats()
			}
			if err := s.output.WriteStats(stats); err != nil {
				return err
			}
			if err := s.output.WritePerf(perfStats, s.tick); err != nil {
				return err
			}
		}
	}
	return nil
}

// Close releases the grid's worker pool and output files.
func (s *Sim) Close() error {
	s.Grid.Close()
	return s.output.Close()
}
