package optimizer

import (
	"github.com/kilianp07/bessopt/core/model"
)

// simulate replays the optimal policy forward from the initial SoC and
// materializes the schedule. The continuous SoC advances by whole lattice
// cells, so rounding never compounds; the lattice index is recomputed each
// step for the policy lookup only.
func simulate(prices []float64, b model.Battery, lat lattice, vt *valueTable) ([]model.Interval, model.Summary, []float64) {
	intervals := make([]model.Interval, len(prices))
	trajectory := make([]float64, len(prices))

	socMWh := b.Soc0 * b.CapacityMWh
	var sum model.Summary
	var chargeValue, dischargeValue float64

	for t, price := range prices {
		k := vt.policy[t][lat.index(socMWh)]
		iv := model.Interval{Index: t, Price: price, Op: model.OpHold}
		switch {
		case k > 0:
			battMWh := float64(k) * lat.dE
			iv.Op = model.OpCharge
			iv.GridMWh = battMWh / b.EtaCharge
			iv.CashFlow = -price*iv.GridMWh - b.ThroughputCost*battMWh
			sum.ChargedMWh += iv.GridMWh
			chargeValue += price * iv.GridMWh
			sum.ThroughputMWh += battMWh
		case k < 0:
			battMWh := float64(-k) * lat.dE
			iv.Op = model.OpDischarge
			iv.GridMWh = b.EtaDischarge * battMWh
			iv.CashFlow = price*iv.GridMWh - b.ThroughputCost*battMWh
			sum.DischargedMWh += iv.GridMWh
			dischargeValue += price * iv.GridMWh
			sum.ThroughputMWh += battMWh
		}
		socMWh += float64(k) * lat.dE
		iv.SocMWh = socMWh
		iv.SocFrac = socMWh / b.CapacityMWh
		intervals[t] = iv
		trajectory[t] = iv.SocFrac
		sum.Revenue += iv.CashFlow
	}

	sum.Cycles = sum.ThroughputMWh / (2 * b.CapacityMWh)
	if sum.ChargedMWh > 0 {
		sum.AvgChargePrice = chargeValue / sum.ChargedMWh
	}
	if sum.DischargedMWh > 0 {
		sum.AvgDischargePrice = dischargeValue / sum.DischargedMWh
	}
	if sum.ChargedMWh > 0 && sum.DischargedMWh > 0 {
		sum.Spread = sum.AvgDischargePrice - sum.AvgChargePrice
	}
	sum.Optimum = vt.v[0][lat.index(b.Soc0*b.CapacityMWh)]
	return intervals, sum, trajectory
}
