package mac

// initCellTypes sets the initial classification: the boundary shell is
// SOLID, cells inside the configured sand region are SAND, everything else
// is AIR.
func (g *Grid) initCellTypes() {
	n := g.N
	g.pool.forEach(len(g.CellType), func(start, end int) {
		for idx := start; idx < end; idx++ {
			i := idx / (n * n)
			j := (idx / n) % n
			k := idx % n

			switch {
			case g.onShell(i, j, k):
				g.CellType[idx] = CellSolid
			case g.sand.Contains(i, j, k):
				g.CellType[idx] = CellSand
			default:
				g.CellType[idx] = CellAir
			}
		}
	})
}

// UpdateCellTypes reclassifies every cell from the current particle
// distribution. Three passes with a barrier between each:
//
//  1. wipe all non-boundary markings, re-asserting SOLID on the shell
//  2. mark the clamped containing cell of every active particle SAND
//     unless it is SOLID (an idempotent constant write, so concurrent
//     particles landing in the same cell need no ordering)
//  3. everything still neither SOLID nor SAND becomes AIR
//
// Downstream kernels must not read cell types until this returns.
func (g *Grid) UpdateCellTypes() {
	n := g.N

	g.pool.forEach(len(g.CellType), func(start, end int) {
		for idx := start; idx < end; idx++ {
			i := idx / (n * n)
			j := (idx / n) % n
			k := idx % n

			if g.onShell(i, j, k) {
				g.CellType[idx] = CellSolid
			} else {
				g.CellType[idx] = CellAir
			}
		}
	})

	p := &g.Particles
	g.pool.forEach(p.Slots(), func(start, end int) {
		for slot := start; slot < end; slot++ {
			if !p.Active[slot] {
				continue
			}
			base := 3 * slot
			ci, cj, ck := cellOf(p.Pos[base], p.Pos[base+1], p.Pos[base+2], n)

			idx := g.CellIndex(ci, cj, ck)
			if g.CellType[idx] != CellSolid {
				g.CellType[idx] = CellSand
			}
		}
	})

	g.pool.forEach(len(g.CellType), func(start, end int) {
		for idx := start; idx < end; idx++ {
			if g.CellType[idx] != CellSolid && g.CellType[idx] != CellSand {
				g.CellType[idx] = CellAir
			}
		}
	})
}
