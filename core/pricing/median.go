package pricing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// DefaultReferencePrice is used when the series is too short to estimate a
// reference price, in $/MWh.
const DefaultReferencePrice = 30.0

// referenceWindowHours is the span of the price series sampled by
// ReferencePrice.
const referenceWindowHours = 5.0

// Median returns the empirical median of xs, or zero for an empty slice.
func Median(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	sorted := make([]float64, len(xs))
	copy(sorted, xs)
	sort.Float64s(sorted)
	return stat.Quantile(0.5, stat.Empirical, sorted, nil)
}

// MedianFilter smooths xs with a sliding-window median of half-width
// halfWindow. Windows shrink near the edges. A half-window below 1 returns a
// copy unchanged.
func MedianFilter(xs []float64, halfWindow int) []float64 {
	out := make([]float64, len(xs))
	copy(out, xs)
	if halfWindow < 1 || len(xs) < 2 {
		return out
	}
	window := make([]float64, 0, 2*halfWindow+1)
	for i := range xs {
		lo := i - halfWindow
		if lo < 0 {
			lo = 0
		}
		hi := i + halfWindow
		if hi > len(xs)-1 {
			hi = len(xs) - 1
		}
		window = append(window[:0], xs[lo:hi+1]...)
		sort.Float64s(window)
		out[i] = stat.Quantile(0.5, stat.Empirical, window, nil)
	}
	return out
}

// ReferencePrice estimates a typical price from the first five hours of the
// series, as the median of those intervals. It falls back to
// DefaultReferencePrice when the series is empty or the window degenerates.
func ReferencePrice(prices []float64, dtHours float64) float64 {
	if len(prices) == 0 || dtHours <= 0 {
		return DefaultReferencePrice
	}
	n := int(math.Ceil(referenceWindowHours / dtHours))
	if n < 1 {
		n = 1
	}
	if n > len(prices) {
		n = len(prices)
	}
	ref := Median(prices[:n])
	if math.IsNaN(ref) || math.IsInf(ref, 0) {
		return DefaultReferencePrice
	}
	return ref
}
