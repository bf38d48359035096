package scenarios

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"

	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/optimizer"
	"github.com/kilianp07/bessopt/core/pricing"
	"github.com/kilianp07/bessopt/infra/logger"
)

// RunScenario optimizes the scenario's series and checks both the physical
// invariants every schedule must satisfy and the scenario's own expectations.
func RunScenario(t *testing.T, sc *Scenario) {
	t.Helper()

	series, err := sc.Prices.Series()
	if err != nil {
		t.Fatalf("prices: %v", err)
	}
	series = pricing.Condition(series, pricing.Options{
		Clamp:   sc.Condition.Clamp,
		Despike: sc.Condition.Despike,
	})

	b := sc.Battery.ToModel()
	res, err := optimizer.Optimize(series, b, optimizer.Options{
		MinRunIntervals: sc.MinRun,
		Logger:          logger.NopLogger{},
	})
	if err != nil {
		t.Fatalf("optimize: %v", err)
	}

	checkSchedule(t, sc, b, series, res)
	checkExpected(t, sc, b, res)
	if sc.MinRun > 1 {
		checkAdjusted(t, sc, res)
	}
}

// checkSchedule verifies the conservation laws no optimal schedule may break:
// SoC stays in bounds, grid energy matches the SoC deltas through the
// efficiencies, and the summary figures are the sums of the intervals.
func checkSchedule(t *testing.T, sc *Scenario, b model.Battery, series []float64, res *model.Result) {
	t.Helper()

	if len(res.Intervals) != len(series) {
		t.Fatalf("%s: %d intervals for %d prices", sc.Name, len(res.Intervals), len(series))
	}

	socMWh := b.Soc0 * b.CapacityMWh
	cash := make([]float64, len(res.Intervals))
	var throughput float64
	for i, iv := range res.Intervals {
		if iv.SocMWh < -1e-9 || iv.SocMWh > b.CapacityMWh+1e-9 {
			t.Fatalf("%s: interval %d SoC %v out of [0, %v]", sc.Name, i, iv.SocMWh, b.CapacityMWh)
		}
		if math.Abs(iv.SocFrac-iv.SocMWh/b.CapacityMWh) > 1e-12 {
			t.Fatalf("%s: interval %d SocFrac %v inconsistent with %v MWh", sc.Name, i, iv.SocFrac, iv.SocMWh)
		}
		delta := iv.SocMWh - socMWh
		switch iv.Op {
		case model.OpCharge:
			if math.Abs(iv.GridMWh-delta/b.EtaCharge) > 1e-9 {
				t.Fatalf("%s: interval %d buys %v MWh for a %v MWh SoC rise", sc.Name, i, iv.GridMWh, delta)
			}
		case model.OpDischarge:
			if math.Abs(iv.GridMWh-(-delta)*b.EtaDischarge) > 1e-9 {
				t.Fatalf("%s: interval %d sells %v MWh for a %v MWh SoC drop", sc.Name, i, iv.GridMWh, delta)
			}
		case model.OpHold:
			if delta != 0 || iv.GridMWh != 0 || iv.CashFlow != 0 {
				t.Fatalf("%s: interval %d holds but moved energy or cash", sc.Name, i)
			}
		}
		if iv.GridMWh > b.PowerMW*b.DtHours+1e-9 {
			t.Fatalf("%s: interval %d grid energy %v exceeds the %v MWh power bound", sc.Name, i, iv.GridMWh, b.PowerMW*b.DtHours)
		}
		cash[i] = iv.CashFlow
		throughput += math.Abs(delta)
		socMWh = iv.SocMWh
	}

	if diff := math.Abs(floats.Sum(cash) - res.Summary.Revenue); diff > 1e-6 {
		t.Errorf("%s: cash flows diverge from the revenue summary by %v", sc.Name, diff)
	}
	if math.Abs(throughput-res.Summary.ThroughputMWh) > 1e-6 {
		t.Errorf("%s: throughput %v, summary says %v", sc.Name, throughput, res.Summary.ThroughputMWh)
	}
	if math.Abs(res.Summary.Cycles-res.Summary.ThroughputMWh/(2*b.CapacityMWh)) > 1e-9 {
		t.Errorf("%s: cycles %v inconsistent with throughput %v", sc.Name, res.Summary.Cycles, res.Summary.ThroughputMWh)
	}
}

func checkExpected(t *testing.T, sc *Scenario, b model.Battery, res *model.Result) {
	t.Helper()

	if r := sc.Expected.Revenue; r != nil && !r.contains(res.Summary.Revenue) {
		t.Errorf("%s: revenue %v outside [%v, %v]", sc.Name, res.Summary.Revenue, r.Min, r.Max)
	}
	if r := sc.Expected.Cycles; r != nil && !r.contains(res.Summary.Cycles) {
		t.Errorf("%s: cycles %v outside [%v, %v]", sc.Name, res.Summary.Cycles, r.Min, r.Max)
	}
	if want := sc.Expected.FinalSoc; want != nil {
		final := res.SocTrajectory[len(res.SocTrajectory)-1]
		halfCell := res.Settings.StepMWh / b.CapacityMWh / 2
		if math.Abs(final-*want) > halfCell+1e-9 {
			t.Errorf("%s: final SoC %v, want %v within half a lattice cell", sc.Name, final, *want)
		}
	}
}

// checkAdjusted verifies the min-run pass: runs shorter than the minimum are
// gone and the reported revenue is the sum of the surviving cash flows. SoC
// bounds are not rechecked here; the pass recomputes the trajectory without
// re-optimizing, so a collapsed charge can legitimately leave later intervals
// short.
func checkAdjusted(t *testing.T, sc *Scenario, res *model.Result) {
	t.Helper()

	adj := res.Adjusted
	if adj == nil {
		t.Fatalf("%s: min-run pass requested but no adjusted schedule attached", sc.Name)
	}
	if adj.MinRunIntervals != sc.MinRun {
		t.Errorf("%s: adjusted echoes min run %d, want %d", sc.Name, adj.MinRunIntervals, sc.MinRun)
	}
	if len(adj.Intervals) != len(res.Intervals) {
		t.Fatalf("%s: adjusted schedule has %d intervals, want %d", sc.Name, len(adj.Intervals), len(res.Intervals))
	}

	cash := make([]float64, len(adj.Intervals))
	for start := 0; start < len(adj.Intervals); {
		op := adj.Intervals[start].Op
		end := start + 1
		for end < len(adj.Intervals) && adj.Intervals[end].Op == op {
			end++
		}
		if op != model.OpHold && end-start < sc.MinRun {
			t.Errorf("%s: %v run of %d intervals survived a min run of %d", sc.Name, op, end-start, sc.MinRun)
		}
		start = end
	}
	for i, iv := range adj.Intervals {
		cash[i] = iv.CashFlow
	}
	if diff := math.Abs(floats.Sum(cash) - adj.Revenue); diff > 1e-6 {
		t.Errorf("%s: adjusted cash flows diverge from the adjusted revenue by %v", sc.Name, diff)
	}
}
