package mac

// EnforceBoundary applies the Neumann no-penetration condition: for every
// boundary-shell cell, the two wall-normal velocity faces bracketing it on
// the relevant axis are zeroed. Tangential components on boundary faces are
// left alone (free slip, not no slip). Concurrent writes to shared faces all
// store the same zero, so the pass needs no ordering.
func (g *Grid) EnforceBoundary() {
	n := g.N
	g.pool.forEach(len(g.CellType), func(start, end int) {
		for idx := start; idx < end; idx++ {
			i := idx / (n * n)
			j := (idx / n) % n
			k := idx % n

			if i == 0 || i == n-1 {
				g.VX.Vel[g.VX.Index(i, j, k)] = 0
				g.VX.Vel[g.VX.Index(i+1, j, k)] = 0
			}
			if j == 0 || j == n-1 {
				g.VY.Vel[g.VY.Index(i, j, k)] = 0
				g.VY.Vel[g.VY.Index(i, j+1, k)] = 0
			}
			if k == 0 || k == n-1 {
				g.VZ.Vel[g.VZ.Index(i, j, k)] = 0
				g.VZ.Vel[g.VZ.Index(i, j, k+1)] = 0
			}
		}
	})
}
