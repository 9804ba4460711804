package mac

import "math/rand"

// Particles is a dense fixed-capacity arena of particle slots, 8 per cell of
// the base grid: a (2N)^3 lattice in struct-of-arrays layout. Slots are never
// added or removed after construction; only the active mask and per-slot
// state mutate. Positions are in grid-index units, not world units.
type Particles struct {
	// Side is the slot lattice side length, 2N.
	Side int

	// Pos, EdgePos and Vel hold 3 floats per slot,
	// base index = 3*((i*Side+j)*Side + k).
	Pos     []float32
	EdgePos []float32
	Vel     []float32

	// Active marks slots that participate in the simulation.
	Active []bool
}

func newParticles(n int) Particles {
	side := 2 * n
	slots := side * side * side
	return Particles{
		Side:    side,
		Pos:     make([]float32, 3*slots),
		EdgePos: make([]float32, 3*slots),
		Vel:     make([]float32, 3*slots),
		Active:  make([]bool, slots),
	}
}

// Slots returns the fixed slot capacity, (2N)^3.
func (p *Particles) Slots() int {
	return p.Side * p.Side * p.Side
}

// ActiveCount returns the number of active particle slots.
func (p *Particles) ActiveCount() int {
	count := 0
	for _, a := range p.Active {
		if a {
			count++
		}
	}
	return count
}

func (p *Particles) clear() {
	clearFloats(p.Pos)
	clearFloats(p.EdgePos)
	clearFloats(p.Vel)
	for i := range p.Active {
		p.Active[i] = false
	}
}

// octantCoord places a particle along one axis of its cell's octant: the
// quarter point for even slot parity, the three-quarter point for odd,
// jittered by up to a quarter cell-width.
func octantCoord(cell int, even bool, rng *rand.Rand) float32 {
	base := float32(cell) + 0.75
	if even {
		base = float32(cell) + 0.25
	}
	return base + float32(rng.Intn(50)-25)/100.0
}

// initParticles activates the 8 slots of every SAND cell and scatters them
// around the octant points. Runs sequentially: it happens only at reset, and
// the jitter source is a single shared rand.Rand.
func (g *Grid) initParticles() {
	side := g.Particles.Side

	for i := 0; i < side; i++ {
		for j := 0; j < side; j++ {
			for k := 0; k < side; k++ {
				slot := (i*side+j)*side + k
				ci, cj, ck := i/2, j/2, k/2

				if g.CellType[g.CellIndex(ci, cj, ck)] != CellSand {
					g.Particles.Active[slot] = false
					continue
				}

				g.Particles.Active[slot] = true
				base := 3 * slot
				g.Particles.Pos[base+0] = octantCoord(ci, i%2 == 0, g.rng)
				g.Particles.Pos[base+1] = octantCoord(cj, j%2 == 0, g.rng)
				g.Particles.Pos[base+2] = octantCoord(ck, k%2 == 0, g.rng)
			}
		}
	}
}
