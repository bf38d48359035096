// Package simulator generates synthetic day-ahead price series for QA
// scenarios, benchmarks and the generate command. All generators are
// deterministic; Spiky takes an explicit seed.
package simulator

import (
	"fmt"
	"math"
	"math/rand"
)

// Flat returns n intervals at a constant price.
func Flat(n int, price float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = price
	}
	return out
}

// TwoLevel alternates blocks of blockLen intervals between low and high,
// starting low. The classic arbitrage sawtooth.
func TwoLevel(n, blockLen int, low, high float64) []float64 {
	if blockLen < 1 {
		blockLen = 1
	}
	out := make([]float64, n)
	for i := range out {
		if (i/blockLen)%2 == 0 {
			out[i] = low
		} else {
			out[i] = high
		}
	}
	return out
}

// DuckCurve shapes n intervals over one day: a flat overnight base, a midday
// solar depression of the given depth and an evening ramp peaking at
// base+peak around hour 19.
func DuckCurve(n int, base, depth, peak float64) []float64 {
	out := make([]float64, n)
	for i := range out {
		hour := 24 * float64(i) / float64(n)
		p := base
		if hour >= 7 && hour <= 17 {
			p -= depth * math.Sin(math.Pi*(hour-7)/10)
		}
		p += peak * math.Exp(-math.Pow(hour-19, 2)/2)
		out[i] = p
	}
	return out
}

// Spiky overlays seeded random noise on a flat base and injects a price spike
// of spikeScale times the base every spikeEvery intervals.
func Spiky(n int, base float64, spikeEvery int, spikeScale float64, seed int64) []float64 {
	if spikeEvery < 1 {
		spikeEvery = 1
	}
	rng := rand.New(rand.NewSource(seed))
	out := make([]float64, n)
	for i := range out {
		out[i] = base * (0.9 + 0.2*rng.Float64())
		if (i+1)%spikeEvery == 0 {
			out[i] = base * spikeScale
		}
	}
	return out
}

// Generate builds a series by shape name, using canonical parameters for the
// generate command and QA scenarios. Supported shapes: flat, sawtooth, duck,
// spiky.
func Generate(shape string, n int, seed int64) ([]float64, error) {
	switch shape {
	case "flat":
		return Flat(n, 50), nil
	case "sawtooth":
		return TwoLevel(n, 12, 10, 100), nil
	case "duck":
		return DuckCurve(n, 60, 45, 80), nil
	case "spiky":
		return Spiky(n, 50, 36, 8, seed), nil
	default:
		return nil, fmt.Errorf("unknown shape %q", shape)
	}
}
