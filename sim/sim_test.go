package sim

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pthm-cable/grit/config"
	"github.com/pthm-cable/grit/mac"
)

func testConfig(t *testing.T, body string) *config.Config {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("loading test config: %v", err)
	}
	return cfg
}

const smallConfig = `
grid:
  resolution: 8
  sand_min: [2, 2, 2]
  sand_max: [5, 5, 5]
  pic_fraction: 0.95
physics:
  dt: 0.016
  integrator: midpoint
runtime:
  workers: 1
telemetry:
  stats_every: 2
  perf_collector_window: 8
`

func TestSimStepAdvancesTick(t *testing.T) {
	cfg := testConfig(t, smallConfig)
	s, err := New(cfg, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if got := s.Grid.Particles.ActiveCount(); got != 4*4*4*8 {
		t.Fatalf("active particles = %d, want 512", got)
	}

	for i := 0; i < 3; i++ {
		s.Step()
	}
	if s.Tick() != 3 {
		t.Errorf("tick = %d, want 3", s.Tick())
	}
	// No solver, no forces: the particle population is untouched.
	if got := s.Grid.Particles.ActiveCount(); got != 512 {
		t.Errorf("active particles after steps = %d, want 512", got)
	}
}

func TestSolverSeesSavedVelocities(t *testing.T) {
	cfg := testConfig(t, smallConfig)

	called := 0
	solver := func(g *mac.Grid, dt float32) {
		called++
		// The snapshot is taken immediately before the solve, so Saved and
		// Vel agree when the solver runs.
		for i := range g.VY.Vel {
			if g.VY.Saved[i] != g.VY.Vel[i] {
				t.Fatalf("site %d: Saved=%v Vel=%v before solve",
					i, g.VY.Saved[i], g.VY.Vel[i])
			}
		}
	}

	s, err := New(cfg, Options{Seed: 7, Solver: solver})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Step()
	if called != 1 {
		t.Errorf("solver invoked %d times, want 1", called)
	}
}

func TestGravitySolverPullsParticlesDown(t *testing.T) {
	cfg := testConfig(t, smallConfig)

	gravity := func(g *mac.Grid, dt float32) {
		for i := range g.VY.Vel {
			g.VY.Vel[i] -= 9.8 * dt
		}
	}

	s, err := New(cfg, Options{Seed: 7, Solver: gravity})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	p := &s.Grid.Particles
	var before float64
	for slot := 0; slot < p.Slots(); slot++ {
		if p.Active[slot] {
			before += float64(p.Pos[3*slot+1])
		}
	}

	if err := s.Run(10); err != nil {
		t.Fatal(err)
	}

	var after float64
	for slot := 0; slot < p.Slots(); slot++ {
		if p.Active[slot] {
			after += float64(p.Pos[3*slot+1])
		}
	}
	if after >= before {
		t.Errorf("mean particle height did not drop: before=%v after=%v", before, after)
	}
}

func TestRunWritesTelemetry(t *testing.T) {
	cfg := testConfig(t, smallConfig)
	dir := t.TempDir()

	s, err := New(cfg, Options{Seed: 7, OutputDir: dir})
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Run(4); err != nil {
		t.Fatal(err)
	}
	if err := s.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(filepath.Join(dir, "config.yaml")); err != nil {
		t.Errorf("config.yaml not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "perf.csv")); err != nil {
		t.Errorf("perf.csv not written: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "telemetry.csv"))
	if err != nil {
		t.Fatalf("telemetry.csv not written: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	// Header plus a row at ticks 2 and 4.
	if len(lines) != 3 {
		t.Fatalf("telemetry.csv has %d lines, want 3:\n%s", len(lines), data)
	}
	if !strings.Contains(lines[0], "tick") || !strings.Contains(lines[0], "kinetic_energy") {
		t.Errorf("unexpected header: %s", lines[0])
	}
	if strings.Contains(lines[1], "tick") {
		t.Errorf("header repeated in data row: %s", lines[1])
	}
}

func TestRunWithoutOutputDir(t *testing.T) {
	cfg := testConfig(t, smallConfig)
	s, err := New(cfg, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Run(4); err != nil {
		t.Errorf("run without output dir: %v", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("close without output dir: %v", err)
	}
}

func TestCollectStatsCounts(t *testing.T) {
	cfg := testConfig(t, smallConfig)
	s, err := New(cfg, Options{Seed: 7})
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.Step()
	stats := s.collectStats()

	n := cfg.Grid.Resolution
	total := n * n * n
	if got := stats.AirCells + stats.SandCells + stats.SolidCells; got != total {
		t.Errorf("cell counts sum to %d, want %d", got, total)
	}
	// Shell cells alone account for n^3 - (n-2)^3 solids.
	if want := total - 6*6*6; stats.SolidCells < want {
		t.Errorf("solid cells = %d, want at least %d", stats.SolidCells, want)
	}
	if stats.ActiveParticles != 512 {
		t.Errorf("active particles = %d, want 512", stats.ActiveParticles)
	}
	if stats.Tick != 1 {
		t.Errorf("tick = %d, want 1", stats.Tick)
	}
}
