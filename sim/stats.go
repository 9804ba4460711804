package sim

import (
	"math"

	"github.com/pthm-cable/grit/mac"
	"github.com/pthm-cable/grit/telemetry"
)

// collectStats aggregates grid and particle diagnostics for the current
// tick. Runs single-threaded between steps on finished fields.
func (s *Sim) collectStats() telemetry.StepStats {
	g := s.Grid

	stats := telemetry.StepStats{
		Tick:       s.tick,
		SimTimeSec: s.simTime,
	}

	for _, ct := range g.CellType {
		switch ct {
		case mac.CellSand:
			stats.SandCells++
		case mac.CellSolid:
			stats.SolidCells++
		default:
			stats.AirCells++
		}
	}
	for _, r := range g.CellRigid {
		if r != 0 {
			stats.RigidCells++
		}
	}

	var maxDiv float64
	for _, d := range g.Divergence {
		if v := math.Abs(float64(d)); v > maxDiv {
			maxDiv = v
		}
	}
	stats.MaxDivergence = maxDiv

	s.speeds = s.speeds[:0]
	s.speedsSq = s.speedsSq[:0]

	var momentum [3]float64
	p := &g.Particles
	for slot := 0; slot < p.Slots(); slot++ {
		if !p.Active[slot] {
			continue
		}
		base := 3 * slot
		vx := float64(p.Vel[base])
		vy := float64(p.Vel[base+1])
		vz := float64(p.Vel[base+2])
		sq := vx*vx + vy*vy + vz*vz

		s.speedsSq = append(s.speedsSq, sq)
		s.speeds = append(s.speeds, math.Sqrt(sq))
		momentum[0] += vx
		momentum[1] += vy
		momentum[2] += vz
	}

	stats.ActiveParticles = len(s.speeds)
	stats.KineticEnergy = telemetry.KineticEnergy(s.speedsSq)
	stats.Momentum = telemetry.MomentumMagnitude(momentum[:])

	speed := telemetry.ComputeSpeedStats(s.speeds)
	stats.SpeedMean = speed.Mean
	stats.SpeedStd = speed.Std
	stats.SpeedP50 = speed.P50
	stats.SpeedP90 = speed.P90
	stats.SpeedMax = speed.Max

	return stats
}
