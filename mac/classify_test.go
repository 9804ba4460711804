package mac

import "testing"

func TestInitialClassification(t *testing.T) {
	// Resolution 4 with sand bounds [1,2] on every axis: the full interior
	// is SAND and every shell cell is SOLID.
	g := newTestGrid(4, defaultRegion(), 0.95)
	defer g.Close()

	for i := 0; i < g.N; i++ {
		for j := 0; j < g.N; j++ {
			for k := 0; k < g.N; k++ {
				got := g.CellType[g.CellIndex(i, j, k)]
				want := CellSand
				if g.onShell(i, j, k) {
					want = CellSolid
				}
				if got != want {
					t.Errorf("cell (%d,%d,%d) = %v, want %v", i, j, k, got, want)
				}
			}
		}
	}
}

func TestInitialClassificationAirOutsideRegion(t *testing.T) {
	g := newTestGrid(8, SandRegion{Min: [3]int{2, 2, 2}, Max: [3]int{4, 4, 4}}, 0.95)
	defer g.Close()

	if got := g.CellType[g.CellIndex(3, 3, 3)]; got != CellSand {
		t.Errorf("cell inside region = %v, want SAND", got)
	}
	if got := g.CellType[g.CellIndex(6, 6, 6)]; got != CellAir {
		t.Errorf("interior cell outside region = %v, want AIR", got)
	}
	if got := g.CellType[g.CellIndex(0, 3, 3)]; got != CellSolid {
		t.Errorf("shell cell = %v, want SOLID", got)
	}
}

func TestUpdateCellTypesTracksParticles(t *testing.T) {
	g := newTestGrid(8, SandRegion{Min: [3]int{2, 2, 2}, Max: [3]int{3, 3, 3}}, 0.95)
	defer g.Close()

	deactivateAll(g)
	setParticle(g, 5.5, 5.5, 5.5, 0, 0, 0)

	g.UpdateCellTypes()

	if got := g.CellType[g.CellIndex(5, 5, 5)]; got != CellSand {
		t.Errorf("cell under particle = %v, want SAND", got)
	}
	// The original sand block no longer holds particles.
	if got := g.CellType[g.CellIndex(2, 2, 2)]; got != CellAir {
		t.Errorf("vacated cell = %v, want AIR", got)
	}
}

func TestUpdateCellTypesShellAlwaysSolid(t *testing.T) {
	g := newTestGrid(6, defaultRegion(), 0.95)
	defer g.Close()

	// Push every particle far outside the domain; the clamped containing
	// cell lands on the shell, which must stay SOLID.
	p := &g.Particles
	for slot := 0; slot < p.Slots(); slot++ {
		base := 3 * slot
		p.Pos[base] = -50
		p.Pos[base+1] = 100
		p.Pos[base+2] = -3
	}

	g.UpdateCellTypes()

	for i := 0; i < g.N; i++ {
		for j := 0; j < g.N; j++ {
			for k := 0; k < g.N; k++ {
				got := g.CellType[g.CellIndex(i, j, k)]
				if g.onShell(i, j, k) && got != CellSolid {
					t.Fatalf("shell cell (%d,%d,%d) = %v, want SOLID", i, j, k, got)
				}
				if !g.onShell(i, j, k) && got == CellSolid {
					t.Fatalf("interior cell (%d,%d,%d) = SOLID", i, j, k)
				}
			}
		}
	}
}

func TestUpdateCellTypesParallel(t *testing.T) {
	// Large enough to exercise the worker pool rather than the
	// single-threaded fallback.
	g := New(24, SandRegion{Min: [3]int{4, 4, 4}, Max: [3]int{19, 19, 19}}, 0.95, 99, 0)
	defer g.Close()

	for pass := 0; pass < 3; pass++ {
		g.UpdateCellTypes()
	}

	sand := 0
	for i := 0; i < g.N; i++ {
		for j := 0; j < g.N; j++ {
			for k := 0; k < g.N; k++ {
				got := g.CellType[g.CellIndex(i, j, k)]
				if g.onShell(i, j, k) && got != CellSolid {
					t.Fatalf("shell cell (%d,%d,%d) = %v, want SOLID", i, j, k, got)
				}
				if got == CellSand {
					sand++
				}
			}
		}
	}
	// Particles have not moved, so the sand block is intact.
	if want := 16 * 16 * 16; sand != want {
		t.Errorf("sand cell count = %d, want %d", sand, want)
	}
}
