package mac

// VelocityLattice is one face-centered component grid of the MAC
// discretization. Each axis lattice is offset half a cell in the two axes
// orthogonal to its own and carries one extra layer along its own axis
// (Nx*Ny*Nz with N+1 along the lattice axis).
//
// Vel is the working velocity buffer. Saved holds the velocities as of the
// last SaveVelocities call; Delta holds Vel-Saved, computed explicitly at
// the start of GridToParticles. Force accumulates external forces for an
// out-of-package solver; Weight accumulates splat weights.
type VelocityLattice struct {
	Vel    []float32
	Saved  []float32
	Delta  []float32
	Force  []float32
	Weight []float32

	Nx, Ny, Nz       int
	offX, offY, offZ float32
}

func newVelocityLattice(nx, ny, nz int, offX, offY, offZ float32) VelocityLattice {
	sites := nx * ny * nz
	return VelocityLattice{
		Vel:    make([]float32, sites),
		Saved:  make([]float32, sites),
		Delta:  make([]float32, sites),
		Force:  make([]float32, sites),
		Weight: make([]float32, sites),

		Nx: nx, Ny: ny, Nz: nz,
		offX: offX, offY: offY, offZ: offZ,
	}
}

// Sites returns the number of lattice sites.
func (l *VelocityLattice) Sites() int { return l.Nx * l.Ny * l.Nz }

// Index returns the linear index of site (i, j, k).
func (l *VelocityLattice) Index(i, j, k int) int {
	return (i*l.Ny+j)*l.Nz + k
}

func (l *VelocityLattice) clear() {
	clearFloats(l.Vel)
	clearFloats(l.Saved)
	clearFloats(l.Delta)
	clearFloats(l.Force)
	clearFloats(l.Weight)
}

// Sample trilinearly interpolates data (one of the lattice's buffers) at the
// continuous position (x, y, z).
func (l *VelocityLattice) Sample(data []float32, x, y, z float32) float32 {
	return sampleLattice(data, x, y, z, l.offX, l.offY, l.offZ, l.Nx, l.Ny, l.Nz)
}

// Splat scatter-adds value into Vel and the trilinear corner weights into
// Weight at the continuous position (x, y, z).
func (l *VelocityLattice) Splat(x, y, z, value float32) {
	splatLattice(l.Vel, l.Weight, x, y, z, value, l.offX, l.offY, l.offZ, l.Nx, l.Ny, l.Nz)
}

// corners holds the 8 lattice vertices enclosing a query point and the
// fractional position within them. Out-of-domain queries clamp to the edge:
// corner indices clamp to valid ranges and fractions clamp to [0, 1], so
// sample and splat never touch storage outside the lattice.
type corners struct {
	x0, x1, y0, y1, z0, z1 int
	dx, dy, dz             float32
}

func latticeCorners(x, y, z, offX, offY, offZ float32, nx, ny, nz int) corners {
	var c corners

	c.x0 = clampInt(int(x-offX), 0, nx-1)
	c.y0 = clampInt(int(y-offY), 0, ny-1)
	c.z0 = clampInt(int(z-offZ), 0, nz-1)

	c.x1 = clampInt(c.x0+1, 0, nx-1)
	c.y1 = clampInt(c.y0+1, 0, ny-1)
	c.z1 = clampInt(c.z0+1, 0, nz-1)

	c.dx = clamp01(x - offX - float32(c.x0))
	c.dy = clamp01(y - offY - float32(c.y0))
	c.dz = clamp01(z - offZ - float32(c.z0))

	return c
}

// sampleLattice is the generic trilinear gather over a grid with origin at
// (offX, offY, offZ) and dimensions (nx, ny, nz). The blend runs along x at
// all four (y, z) corner pairs, then along z, then along y; splatLattice
// uses the identical corner weights so the two are transposes of each other.
func sampleLattice(data []float32, x, y, z, offX, offY, offZ float32, nx, ny, nz int) float32 {
	c := latticeCorners(x, y, z, offX, offY, offZ, nx, ny, nz)

	idx := func(i, j, k int) int { return (i*ny+j)*nz + k }

	xFrontDown := data[idx(c.x0, c.y0, c.z0)]*(1-c.dx) + data[idx(c.x1, c.y0, c.z0)]*c.dx
	xBackDown := data[idx(c.x0, c.y0, c.z1)]*(1-c.dx) + data[idx(c.x1, c.y0, c.z1)]*c.dx
	xFrontUp := data[idx(c.x0, c.y1, c.z0)]*(1-c.dx) + data[idx(c.x1, c.y1, c.z0)]*c.dx
	xBackUp := data[idx(c.x0, c.y1, c.z1)]*(1-c.dx) + data[idx(c.x1, c.y1, c.z1)]*c.dx

	xzDown := xFrontDown*(1-c.dz) + xBackDown*c.dz
	xzUp := xFrontUp*(1-c.dz) + xBackUp*c.dz

	return xzDown*(1-c.dy) + xzUp*c.dy
}

// splatLattice scatter-adds value*w to target and w to weights at the 8
// corners enclosing (x, y, z), with w the trilinear corner weight. The 8
// weights sum to 1 for any query point. Adds are atomic because multiple
// particles may hit the same vertex within one pass.
func splatLattice(target, weights []float32, x, y, z, value, offX, offY, offZ float32, nx, ny, nz int) {
	c := latticeCorners(x, y, z, offX, offY, offZ, nx, ny, nz)

	idx := func(i, j, k int) int { return (i*ny+j)*nz + k }

	deposit := func(i, j, k int, w float32) {
		n := idx(i, j, k)
		atomicAddFloat32(&target[n], value*w)
		atomicAddFloat32(&weights[n], w)
	}

	deposit(c.x0, c.y0, c.z0, (1-c.dx)*(1-c.dy)*(1-c.dz))
	deposit(c.x1, c.y0, c.z0, c.dx*(1-c.dy)*(1-c.dz))
	deposit(c.x0, c.y1, c.z0, (1-c.dx)*c.dy*(1-c.dz))
	deposit(c.x0, c.y0, c.z1, (1-c.dx)*(1-c.dy)*c.dz)
	deposit(c.x1, c.y0, c.z1, c.dx*(1-c.dy)*c.dz)
	deposit(c.x1, c.y1, c.z0, c.dx*c.dy*(1-c.dz))
	deposit(c.x0, c.y1, c.z1, (1-c.dx)*c.dy*c.dz)
	deposit(c.x1, c.y1, c.z1, c.dx*c.dy*c.dz)
}

// SampleCellCentered trilinearly interpolates a cell-centered field
// (origin offset 0.5 in all axes, dimensions N^3) at (x, y, z).
func (g *Grid) SampleCellCentered(data []float32, x, y, z float32) float32 {
	return sampleLattice(data, x, y, z, 0.5, 0.5, 0.5, g.N, g.N, g.N)
}

// SplatCellCentered scatter-adds value into a cell-centered field, with the
// matching corner weights accumulated into weights.
func (g *Grid) SplatCellCentered(data, weights []float32, x, y, z, value float32) {
	splatLattice(data, weights, x, y, z, value, 0.5, 0.5, 0.5, g.N, g.N, g.N)
}

// VelocityAt samples the staggered velocity field at a continuous position.
func (g *Grid) VelocityAt(x, y, z float32) (vx, vy, vz float32) {
	vx = g.VX.Sample(g.VX.Vel, x, y, z)
	vy = g.VY.Sample(g.VY.Vel, x, y, z)
	vz = g.VZ.Sample(g.VZ.Vel, x, y, z)
	return vx, vy, vz
}

// deltaAt samples the per-lattice velocity change (Vel - Saved) computed by
// the first phase of GridToParticles.
func (g *Grid) deltaAt(x, y, z float32) (dx, dy, dz float32) {
	dx = g.VX.Sample(g.VX.Delta, x, y, z)
	dy = g.VY.Sample(g.VY.Delta, x, y, z)
	dz = g.VZ.Sample(g.VZ.Delta, x, y, z)
	return dx, dy, dz
}
