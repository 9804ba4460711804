// Package telemetry provides per-step aggregate diagnostics, phase timing,
// and CSV output for headless runs.
package telemetry

import (
	"log/slog"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// StepStats holds aggregate diagnostics sampled at the end of a step window.
// Aggregates only; the simulation state itself is never serialized.
type StepStats struct {
	Tick       int32   `csv:"tick"`
	SimTimeSec float64 `csv:"sim_time"`

	// Cell classification counts
	AirCells   int `csv:"air_cells"`
	SandCells  int `csv:"sand_cells"`
	SolidCells int `csv:"solid_cells"`
	RigidCells int `csv:"rigid_cells"`

	// Particle population
	ActiveParticles int `csv:"active_particles"`

	// Particle speed distribution
	SpeedMean float64 `csv:"speed_mean"`
	SpeedStd  float64 `csv:"speed_std"`
	SpeedP50  float64 `csv:"speed_p50"`
	SpeedP90  float64 `csv:"speed_p90"`
	SpeedMax  float64 `csv:"speed_max"`

	// Grid-level diagnostics
	KineticEnergy float64 `csv:"kinetic_energy"`
	Momentum      float64 `csv:"momentum"`
	MaxDivergence float64 `csv:"max_divergence"`
}

// SpeedStats summarizes a particle speed sample.
type SpeedStats struct {
	Mean, Std, P50, P90, Max float64
}

// ComputeSpeedStats calculates the speed distribution of a sample.
// The input slice is sorted in place.
func ComputeSpeedStats(speeds []float64) SpeedStats {
	if len(speeds) == 0 {
		return SpeedStats{}
	}

	sort.Float64s(speeds)

	return SpeedStats{
		Mean: stat.Mean(speeds, nil),
		Std:  stat.StdDev(speeds, nil),
		P50:  stat.Quantile(0.50, stat.Empirical, speeds, nil),
		P90:  stat.Quantile(0.90, stat.Empirical, speeds, nil),
		Max:  speeds[len(speeds)-1],
	}
}

// KineticEnergy returns half the sum of squared speeds (unit particle mass).
func KineticEnergy(speedsSq []float64) float64 {
	if len(speedsSq) == 0 {
		return 0
	}
	return 0.5 * floats.Sum(speedsSq)
}

// MomentumMagnitude returns the L2 norm of a summed momentum vector.
func MomentumMagnitude(momentum []float64) float64 {
	return floats.Norm(momentum, 2)
}

// LogValue implements slog.LogValuer for structured logging.
func (s StepStats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int("tick", int(s.Tick)),
		slog.Float64("sim_time", s.SimTimeSec),
		slog.Int("air_cells", s.AirCells),
		slog.Int("sand_cells", s.SandCells),
		slog.Int("solid_cells", s.SolidCells),
		slog.Int("rigid_cells", s.RigidCells),
		slog.Int("active_particles", s.ActiveParticles),
		slog.Float64("speed_mean", s.SpeedMean),
		slog.Float64("speed_std", s.SpeedStd),
		slog.Float64("speed_p50", s.SpeedP50),
		slog.Float64("speed_p90", s.SpeedP90),
		slog.Float64("speed_max", s.SpeedMax),
		slog.Float64("kinetic_energy", s.KineticEnergy),
		slog.Float64("momentum", s.Momentum),
		slog.Float64("max_divergence", s.MaxDivergence),
	)
}

// LogStats logs the step stats using slog.
func (s StepStats) LogStats() {
	slog.Info("stats",
		"tick", s.Tick,
		"sim_time", s.SimTimeSec,
		"air_cells", s.AirCells,
		"sand_cells", s.SandCells,
		"solid_cells", s.SolidCells,
		"rigid_cells", s.RigidCells,
		"active_particles", s.ActiveParticles,
		"speed_mean", s.SpeedMean,
		"speed_std", s.SpeedStd,
		"speed_p50", s.SpeedP50,
		"speed_p90", s.SpeedP90,
		"speed_max", s.SpeedMax,
		"kinetic_energy", s.KineticEnergy,
		"momentum", s.Momentum,
		"max_divergence", s.MaxDivergence,
	)
}
