package mac

// ParticlesToGrid scatters particle velocities onto the three velocity
// lattices as a weighted average: clear velocities and weights, splat every
// active particle's components, then divide each site by its accumulated
// weight. Sites no particle reached keep zero weight and are left at zero
// rather than divided.
func (g *Grid) ParticlesToGrid() {
	for _, l := range []*VelocityLattice{&g.VX, &g.VY, &g.VZ} {
		lat := l
		g.pool.forEach(lat.Sites(), func(start, end int) {
			for i := start; i < end; i++ {
				lat.Vel[i] = 0
				lat.Weight[i] = 0
			}
		})
	}

	p := &g.Particles
	g.pool.forEach(p.Slots(), func(start, end int) {
		for slot := start; slot < end; slot++ {
			if !p.Active[slot] {
				continue
			}
			base := 3 * slot
			x, y, z := p.Pos[base], p.Pos[base+1], p.Pos[base+2]

			g.VX.Splat(x, y, z, p.Vel[base])
			g.VY.Splat(x, y, z, p.Vel[base+1])
			g.VZ.Splat(x, y, z, p.Vel[base+2])
		}
	})

	for _, l := range []*VelocityLattice{&g.VX, &g.VY, &g.VZ} {
		lat := l
		g.pool.forEach(lat.Sites(), func(start, end int) {
			for i := start; i < end; i++ {
				if lat.Weight[i] > 0 {
					lat.Vel[i] /= lat.Weight[i]
				}
			}
		})
	}
}

// SaveVelocities records the current grid velocities as the baseline for the
// next FLIP delta. Call after ParticlesToGrid and before the external solve
// mutates the velocity store.
func (g *Grid) SaveVelocities() {
	copy(g.VX.Saved, g.VX.Vel)
	copy(g.VY.Saved, g.VY.Vel)
	copy(g.VZ.Saved, g.VZ.Vel)
}

// GridToParticles transfers grid velocities back to the particles as a
// PIC/FLIP blend. Two strictly ordered phases: first the per-site velocity
// change since SaveVelocities is computed into each lattice's Delta buffer
// (whole grid, full barrier); then every active particle samples both the
// current velocity (PIC term) and the change (FLIP term) at its position:
//
//	new = pic*sampled + (1-pic)*(old + change)
//
// pic=1 copies grid velocity wholesale; pic=0 inherits only the grid's
// change additively.
func (g *Grid) GridToParticles() {
	for _, l := range []*VelocityLattice{&g.VX, &g.VY, &g.VZ} {
		lat := l
		g.pool.forEach(lat.Sites(), func(start, end int) {
			for i := start; i < end; i++ {
				lat.Delta[i] = lat.Vel[i] - lat.Saved[i]
			}
		})
	}

	pic := g.picFraction
	p := &g.Particles
	g.pool.forEach(p.Slots(), func(start, end int) {
		for slot := start; slot < end; slot++ {
			if !p.Active[slot] {
				continue
			}
			base := 3 * slot
			x, y, z := p.Pos[base], p.Pos[base+1], p.Pos[base+2]

			vx, vy, vz := g.VelocityAt(x, y, z)
			dx, dy, dz := g.deltaAt(x, y, z)

			p.Vel[base] = pic*vx + (1-pic)*(p.Vel[base]+dx)
			p.Vel[base+1] = pic*vy + (1-pic)*(p.Vel[base+1]+dy)
			p.Vel[base+2] = pic*vz + (1-pic)*(p.Vel[base+2]+dz)
		}
	})
}
