package engine

import (
	"math"
	"sync/atomic"
)

// floatBits/bitsFloat let a float32 ride inside an atomic.Uint32, so
// volume and peak-meter values can be shared between the real-time
// callback and the controller without locking.
func floatBits(f float32) uint32 { return math.Float32bits(f) }
func bitsFloat(b uint32) float32 { return math.Float32frombits(b) }

func abs32(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}

func sqrt32(v float32) float32 {
	return float32(math.Sqrt(float64(v)))
}

// saturatingSub atomically subtracts n from c, clamping at zero instead
// of wrapping.
func saturatingSub(c *atomic.Uint64, n uint64) {
	for {
		cur := c.Load()
		next := uint64(0)
		if cur > n {
			next = cur - n
		}
		if c.CompareAndSwap(cur, next) {
			return
		}
	}
}
