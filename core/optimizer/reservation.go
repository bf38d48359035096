package optimizer

import (
	"math"

	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/pricing"
)

// reservationPrices derives break-even price curves from the value function's
// SoC gradient at each reference level. Raw finite differences flip-flop on
// single intervals, so each curve is median-filtered before it leaves the
// optimizer. The curve closest to half charge becomes the primary.
func reservationPrices(vt *valueTable, b model.Battery, lat lattice, refs []float64, halfWindow int) model.ReservationPrices {
	out := model.ReservationPrices{Curves: make([]model.ReservationCurve, 0, len(refs))}
	primary := -1
	for ci, ref := range refs {
		i := lat.index(ref * b.CapacityMWh)
		charge := make([]float64, len(vt.policy))
		discharge := make([]float64, len(vt.policy))
		for t := range vt.policy {
			m := marginalValue(vt.v[t], i, lat)
			charge[t] = b.EtaCharge*m - b.ThroughputCost
			discharge[t] = (m + b.ThroughputCost) / b.EtaDischarge
		}
		curve := model.ReservationCurve{
			SocRef:    ref,
			Charge:    pricing.MedianFilter(charge, halfWindow),
			Discharge: pricing.MedianFilter(discharge, halfWindow),
		}
		out.Curves = append(out.Curves, curve)
		if primary < 0 || math.Abs(ref-0.5) < math.Abs(refs[primary]-0.5) {
			primary = ci
		}
	}
	if primary >= 0 {
		out.Primary = out.Curves[primary]
	}
	return out
}

// marginalValue estimates dV/dSoC at lattice level i: centered difference in
// the interior, one-sided at the boundaries. Cells holding the infeasibility
// sentinel are skipped; with no feasible neighbour at all the marginal value
// degenerates to zero.
func marginalValue(row []float64, i int, lat lattice) float64 {
	lo, hi := i-1, i+1
	if lo < 0 {
		lo = i
	}
	if hi > lat.steps-1 {
		hi = i
	}
	if !feasibleValue(row[lo]) {
		lo = i
	}
	if !feasibleValue(row[hi]) {
		hi = i
	}
	if lo == hi || !feasibleValue(row[lo]) || !feasibleValue(row[hi]) {
		return 0
	}
	return (row[hi] - row[lo]) / (float64(hi-lo) * lat.dE)
}
