package mac

import (
	"math"
	"sync/atomic"
	"unsafe"
)

// Clamp helpers shared by the interpolation and classification kernels.

// clampInt clamps an integer to [minVal, maxVal].
func clampInt(v, minVal, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// clamp01 clamps a float32 value to the [0, 1] range.
func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// cellOf returns the particle's containing cell, clamped to valid indices.
func cellOf(x, y, z float32, n int) (int, int, int) {
	return clampInt(int(x), 0, n-1),
		clampInt(int(y), 0, n-1),
		clampInt(int(z), 0, n-1)
}

// atomicAddFloat32 adds v to *p with a compare-and-swap loop on the bit
// pattern. Splat is the only kernel where concurrent workers write the same
// lattice site, so this is the only atomic in the package.
func atomicAddFloat32(p *float32, v float32) {
	addr := (*uint32)(unsafe.Pointer(p))
	for {
		old := atomic.LoadUint32(addr)
		next := math.Float32bits(math.Float32frombits(old) + v)
		if atomic.CompareAndSwapUint32(addr, old, next) {
			return
		}
	}
}
