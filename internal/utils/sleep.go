package utils

import (
	"math"
	"math/rand"
	"time"
)

// sampleGamma returns a sample from the Gamma(shape, scale) distribution using
// the Marsaglia-Tsang squeeze method. shape must be >= 1.
func sampleGamma(rnd *rand.Rand, shape, scale float64) float64 {
	d := shape - 1.0/3.0
	c := 1.0 / math.Sqrt(9.0*d)
	for {
		x := rnd.NormFloat64()
		v := 1.0 + c*x
		if v <= 0 {
			continue
		}
		v = v * v * v
		x2 := x * x
		u := rnd.Float64()
		// Fast accept path
		if u < 1.0-0.0331*(x2*x2) {
			return d * v * scale
		}
		// Slow accept path
		if math.Log(u) < 0.5*x2+d*(1.0-v+math.Log(v)) {
			return d * v * scale
		}
	}
}

// RandGammaDuration returns a right-skewed duration with the requested mean,
// clamped to [min, max]. Used for button hold times, which look more natural
// than a flat uniform window.
func RandGammaDuration(rnd *rand.Rand, mean, min, max time.Duration) time.Duration {
	const shape = 4.0
	if mean <= 0 {
		return 0
	}
	ms := float64(mean) / float64(time.Millisecond)
	d := time.Duration(sampleGamma(rnd, shape, ms/shape) * float64(time.Millisecond))
	if d < min {
		return min
	}
	if max > 0 && d > max {
		return max
	}
	return d
}

// RandomDelay draws a delay uniformly from [baseMs, baseMs+spreadMs)
// milliseconds. A zero base disables the delay entirely, and a non-positive
// spread returns exactly the base.
func RandomDelay(rnd *rand.Rand, baseMs, spreadMs int) time.Duration {
	if baseMs <= 0 {
		return 0
	}
	if spreadMs <= 0 {
		return time.Duration(baseMs) * time.Millisecond
	}
	return time.Duration(baseMs+rnd.Intn(spreadMs)) * time.Millisecond
}
