package pricing

import "math"

// Market price bounds in $/MWh used when clamping. These mirror the market
// price cap and floor and are fixed constants, not derived from the data.
const (
	MarketFloor = -1000.0
	MarketCap   = 16600.0
)

// Options selects the optional cleaning passes applied by Condition.
type Options struct {
	// Clamp limits every price to [MarketFloor, MarketCap].
	Clamp bool `json:"clamp"`
	// Despike applies a 3-point median filter as a final pass.
	Despike bool `json:"despike"`
}

// Condition returns a cleaned copy of raw with the same length. Non-finite
// entries are replaced with zero before anything else. Clamping, when enabled,
// runs before despiking; despiking returns the filtered series directly.
// Condition never fails: every input is coerced to a valid numeric value.
func Condition(raw []float64, opts Options) []float64 {
	out := make([]float64, len(raw))
	for i, p := range raw {
		if math.IsNaN(p) || math.IsInf(p, 0) {
			p = 0
		}
		if opts.Clamp {
			if p < MarketFloor {
				p = MarketFloor
			} else if p > MarketCap {
				p = MarketCap
			}
		}
		out[i] = p
	}
	if opts.Despike {
		return despike(out)
	}
	return out
}

// despike replaces every interior point with the median of itself and its two
// neighbours. Endpoints are returned unchanged.
func despike(xs []float64) []float64 {
	if len(xs) < 3 {
		return xs
	}
	out := make([]float64, len(xs))
	out[0] = xs[0]
	out[len(xs)-1] = xs[len(xs)-1]
	for i := 1; i < len(xs)-1; i++ {
		out[i] = median3(xs[i-1], xs[i], xs[i+1])
	}
	return out
}

func median3(a, b, c float64) float64 {
	if a > b {
		a, b = b, a
	}
	if b > c {
		b = c
	}
	if a > b {
		b = a
	}
	return b
}
