// Package mac implements the particle/grid core of a hybrid PIC/FLIP
// simulator for granular and fluid-like materials: a staggered
// Marker-And-Cell grid over a fixed cubic voxel domain, an oversampled
// particle population, and the transfer/advection kernels between them.
package mac

import (
	"math/rand"
	"time"
)

// CellType classifies a grid cell.
type CellType uint8

const (
	CellAir CellType = iota
	CellSand
	CellSolid
)

// SandRegion is an axis-aligned block of cells, inclusive per-axis bounds.
// It must lie strictly inside the boundary shell; the caller validates this
// before construction.
type SandRegion struct {
	Min [3]int
	Max [3]int
}

// Contains reports whether cell (i, j, k) lies inside the region.
func (r SandRegion) Contains(i, j, k int) bool {
	return i >= r.Min[0] && i <= r.Max[0] &&
		j >= r.Min[1] && j <= r.Max[1] &&
		k >= r.Min[2] && k <= r.Max[2]
}

// Grid holds the full simulation state: cell-centered scalar/tensor fields,
// the three staggered velocity lattices, and the particle arena. All storage
// is allocated once at construction; Reset reuses it.
//
// Exported field slices are the dense backing arrays. External observers
// (renderers, solvers) may read them directly between steps; kernels mutate
// them in place.
type Grid struct {
	// N is the cube side length in cells.
	N int

	// Cell-centered fields, row-major, idx = (i*N+j)*N + k.
	CellType   []CellType
	Pressure   []float32
	Divergence []float32

	// Sand-specific fields. Allocated and cleared here, populated by an
	// external rheology solver; no kernel in this package writes them.
	StrainRate          []float32 // 3x3 per cell, row-major
	FrictionalStress    []float32 // 3x3 per cell
	FrictionalStressDiv []float32
	RigidStress         []float32 // 3x3 per cell
	CellRigid           []int32

	// Face-centered velocity lattices, one per axis.
	VX, VY, VZ VelocityLattice

	// Particles is the dense fixed-capacity particle arena, (2N)^3 slots.
	Particles Particles

	sand        SandRegion
	picFraction float32

	rng  *rand.Rand
	pool *passPool
}

// New allocates a grid of the given resolution, classifies cells, and places
// particles in the initial sand region. seed selects the jitter source for
// particle placement; 0 means time-based (no cross-run determinism).
// workers sizes the pass pool; 0 means GOMAXPROCS.
//
// The core does not validate its inputs: resolution must be positive, the
// sand region must lie inside the interior, and picFraction is intended to
// be in [0, 1]. See config.Validate for the checked entry point.
func New(resolution int, sand SandRegion, picFraction float32, seed int64, workers int) *Grid {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	n := resolution
	cells := n * n * n

	g := &Grid{
		N: n,

		CellType:   make([]CellType, cells),
		Pressure:   make([]float32, cells),
		Divergence: make([]float32, cells),

		StrainRate:          make([]float32, 9*cells),
		FrictionalStress:    make([]float32, 9*cells),
		FrictionalStressDiv: make([]float32, cells),
		RigidStress:         make([]float32, 9*cells),
		CellRigid:           make([]int32, cells),

		VX: newVelocityLattice(n+1, n, n, 0, 0.5, 0.5),
		VY: newVelocityLattice(n, n+1, n, 0.5, 0, 0.5),
		VZ: newVelocityLattice(n, n, n+1, 0.5, 0.5, 0),

		Particles: newParticles(n),

		sand:        sand,
		picFraction: picFraction,

		rng:  rand.New(rand.NewSource(seed)),
		pool: newPassPool(workers),
	}

	g.Reset()
	return g
}

// Close stops the worker pool. The grid must not be used afterwards.
func (g *Grid) Close() {
	g.pool.stop()
}

// Resolution returns the cube side length in cells.
func (g *Grid) Resolution() int { return g.N }

// PICFraction returns the configured PIC/FLIP blend fraction.
func (g *Grid) PICFraction() float32 { return g.picFraction }

// CellIndex returns the linear index of cell (i, j, k).
func (g *Grid) CellIndex(i, j, k int) int {
	return (i*g.N+j)*g.N + k
}

// CellTypeData returns the dense cell classification grid for visualization.
func (g *Grid) CellTypeData() []CellType { return g.CellType }

// PressureData returns the dense pressure grid for visualization.
func (g *Grid) PressureData() []float32 { return g.Pressure }

// DivergenceData returns the dense divergence grid for visualization.
func (g *Grid) DivergenceData() []float32 { return g.Divergence }

// RigidData returns the dense rigid-cell flag grid for visualization.
func (g *Grid) RigidData() []int32 { return g.CellRigid }

// StrainRateData returns the dense strain-rate tensor store, 9 floats per cell.
func (g *Grid) StrainRateData() []float32 { return g.StrainRate }

// FrictionalStressData returns the dense frictional-stress tensor store.
func (g *Grid) FrictionalStressData() []float32 { return g.FrictionalStress }

// FrictionalStressDivData returns the frictional stress divergence field.
func (g *Grid) FrictionalStressDivData() []float32 { return g.FrictionalStressDiv }

// RigidStressData returns the dense rigid-stress tensor store.
func (g *Grid) RigidStressData() []float32 { return g.RigidStress }

// onShell reports whether cell (i, j, k) lies on the outer index shell.
func (g *Grid) onShell(i, j, k int) bool {
	return i == 0 || j == 0 || k == 0 ||
		i == g.N-1 || j == g.N-1 || k == g.N-1
}

// Reset zeroes every field and all particle state, then re-runs cell
// classification and particle placement. Nothing is reallocated.
func (g *Grid) Reset() {
	clearCellTypes(g.CellType)
	clearFloats(g.Pressure)
	clearFloats(g.Divergence)
	clearFloats(g.StrainRate)
	clearFloats(g.FrictionalStress)
	clearFloats(g.FrictionalStressDiv)
	clearFloats(g.RigidStress)
	clearInts(g.CellRigid)

	g.VX.clear()
	g.VY.clear()
	g.VZ.clear()

	g.Particles.clear()

	g.initCellTypes()
	g.initParticles()
}

func clearFloats(s []float32) {
	for i := range s {
		s[i] = 0
	}
}

func clearCellTypes(s []CellType) {
	for i := range s {
		s[i] = CellAir
	}
}

func clearInts(s []int32) {
	for i := range s {
		s[i] = 0
	}
}
