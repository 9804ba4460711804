package mac

// AdvectEuler moves every active particle one explicit-Euler step along its
// own velocity.
func (g *Grid) AdvectEuler(dt float32) {
	p := &g.Particles
	g.pool.forEach(p.Slots(), func(start, end int) {
		for slot := start; slot < end; slot++ {
			if !p.Active[slot] {
				continue
			}
			base := 3 * slot
			p.Pos[base] += dt * p.Vel[base]
			p.Pos[base+1] += dt * p.Vel[base+1]
			p.Pos[base+2] += dt * p.Vel[base+2]
		}
	})
}

// AdvectMidpoint moves every active particle one midpoint (RK2) step through
// the grid velocity field: sample at the current position, step half of dt
// to a midpoint estimate, resample there, apply the full step with the
// midpoint velocity. Less dissipative than Euler at twice the sampling cost.
func (g *Grid) AdvectMidpoint(dt float32) {
	p := &g.Particles
	g.pool.forEach(p.Slots(), func(start, end int) {
		for slot := start; slot < end; slot++ {
			if !p.Active[slot] {
				continue
			}
			base := 3 * slot
			x, y, z := p.Pos[base], p.Pos[base+1], p.Pos[base+2]

			vx, vy, vz := g.VelocityAt(x, y, z)
			mx := x + vx*dt*0.5
			my := y + vy*dt*0.5
			mz := z + vz*dt*0.5

			vx, vy, vz = g.VelocityAt(mx, my, mz)
			p.Pos[base] = x + vx*dt
			p.Pos[base+1] = y + vy*dt
			p.Pos[base+2] = z + vz*dt
		}
	})
}

// UpdateParticleEdgePos resets the auxiliary edge-position marker of fully
// buried particles: those whose clamped cell is strictly interior with all
// six face-adjacent cells SAND. Surface-extraction code outside this package
// consumes the marker.
func (g *Grid) UpdateParticleEdgePos() {
	n := g.N
	p := &g.Particles
	g.pool.forEach(p.Slots(), func(start, end int) {
		for slot := start; slot < end; slot++ {
			base := 3 * slot
			ci, cj, ck := cellOf(p.Pos[base], p.Pos[base+1], p.Pos[base+2], n)

			if ci == 0 || ci == n-1 || cj == 0 || cj == n-1 || ck == 0 || ck == n-1 {
				continue
			}
			if g.CellType[g.CellIndex(ci+1, cj, ck)] != CellSand ||
				g.CellType[g.CellIndex(ci-1, cj, ck)] != CellSand ||
				g.CellType[g.CellIndex(ci, cj+1, ck)] != CellSand ||
				g.CellType[g.CellIndex(ci, cj-1, ck)] != CellSand ||
				g.CellType[g.CellIndex(ci, cj, ck+1)] != CellSand ||
				g.CellType[g.CellIndex(ci, cj, ck-1)] != CellSand {
				continue
			}

			p.EdgePos[base] = 0
			p.EdgePos[base+1] = 0
			p.EdgePos[base+2] = 0
		}
	})
}
