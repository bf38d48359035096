package optimizer

import (
	"fmt"

	"github.com/kilianp07/bessopt/core/model"
)

// EnforceMinRunLength collapses every contiguous run of identical non-hold
// operations shorter than minRun intervals into hold, zeroing its energy and
// cash. Single-interval toggles are rarely worth executing against ramping
// and switching practicalities. This is a cleanup pass, not a re-optimization:
// the returned revenue is a derived figure that is no longer guaranteed
// optimal. SoC fields are recomputed so the adjusted schedule stays
// physically consistent.
func EnforceMinRunLength(intervals []model.Interval, b model.Battery, minRun int) model.AdjustedSchedule {
	adj := model.AdjustedSchedule{
		MinRunIntervals: minRun,
		Intervals:       make([]model.Interval, len(intervals)),
	}
	copy(adj.Intervals, intervals)
	if minRun > 1 {
		for start := 0; start < len(adj.Intervals); {
			op := adj.Intervals[start].Op
			end := start + 1
			for end < len(adj.Intervals) && adj.Intervals[end].Op == op {
				end++
			}
			if op != model.OpHold && end-start < minRun {
				for i := start; i < end; i++ {
					adj.Intervals[i].Op = model.OpHold
					adj.Intervals[i].GridMWh = 0
					adj.Intervals[i].CashFlow = 0
				}
			}
			start = end
		}
	}

	socMWh := b.Soc0 * b.CapacityMWh
	for i := range adj.Intervals {
		iv := &adj.Intervals[i]
		switch iv.Op {
		case model.OpCharge:
			socMWh += iv.GridMWh * b.EtaCharge
		case model.OpDischarge:
			socMWh -= iv.GridMWh / b.EtaDischarge
		}
		iv.SocMWh = socMWh
		iv.SocFrac = socMWh / b.CapacityMWh
		adj.Revenue += iv.CashFlow
	}
	return adj
}

// DegradationCost converts battery pack economics into the throughput-cost
// scalar the optimizer charges per battery-side MWh: pack replacement cost
// amortized over lifetime throughput, plus variable O&M.
func DegradationCost(packCostPerKWh, depthOfDischarge, cycleLife, omPerMWh float64) (float64, error) {
	if packCostPerKWh < 0 {
		return 0, fmt.Errorf("pack cost must not be negative, got %g", packCostPerKWh)
	}
	if depthOfDischarge <= 0 || depthOfDischarge > 1 {
		return 0, fmt.Errorf("depth of discharge must be in (0,1], got %g", depthOfDischarge)
	}
	if cycleLife <= 0 {
		return 0, fmt.Errorf("cycle life must be positive, got %g", cycleLife)
	}
	if omPerMWh < 0 {
		return 0, fmt.Errorf("O&M cost must not be negative, got %g", omPerMWh)
	}
	return packCostPerKWh/(depthOfDischarge*cycleLife)*1000 + omPerMWh, nil
}
