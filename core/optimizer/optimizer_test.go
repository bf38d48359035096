package optimizer

import (
	"errors"
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/kilianp07/bessopt/core/model"
)

// twoLevel builds blocks of n low-priced intervals followed by n high-priced
// ones, repeated.
func twoLevel(low, high float64, n, repeats int) []float64 {
	prices := make([]float64, 0, 2*n*repeats)
	for r := 0; r < repeats; r++ {
		for i := 0; i < n; i++ {
			prices = append(prices, low)
		}
		for i := 0; i < n; i++ {
			prices = append(prices, high)
		}
	}
	return prices
}

func wavyPrices(n int) []float64 {
	prices := make([]float64, n)
	for i := range prices {
		prices[i] = 60 + 40*math.Sin(float64(i)/5) + 7*math.Cos(float64(i)/2)
	}
	return prices
}

func almostEqual(a, b, tol float64) bool {
	return math.Abs(a-b) <= tol
}

func TestOptimize_TwoLevelArbitrage(t *testing.T) {
	prices := twoLevel(10, 100, 12, 1)
	target := 0.5
	b := model.Battery{
		CapacityMWh:    10,
		PowerMW:        10,
		EtaCharge:      1,
		EtaDischarge:   1,
		Soc0:           0.5,
		SocTarget:      &target,
		ThroughputCost: 0.01,
		DtHours:        1.0 / 12.0,
	}

	res, err := Optimize(prices, b, Options{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	// Charge 5 MWh at 10, sell it back at 100, minus the throughput charge
	// on 10 battery MWh.
	wantRevenue := 10*(100-10)/2.0 - 0.01*10
	if !almostEqual(res.Summary.Revenue, wantRevenue, 1e-9) {
		t.Errorf("revenue = %v, want %v", res.Summary.Revenue, wantRevenue)
	}
	if !almostEqual(res.Summary.Optimum, res.Summary.Revenue, 1e-9) {
		t.Errorf("optimum %v does not match revenue %v with a pinned target", res.Summary.Optimum, res.Summary.Revenue)
	}
	if !almostEqual(res.Summary.ThroughputMWh, 10, 1e-9) {
		t.Errorf("throughput = %v, want 10", res.Summary.ThroughputMWh)
	}
	if !almostEqual(res.Summary.Cycles, 0.5, 1e-9) {
		t.Errorf("cycles = %v, want 0.5", res.Summary.Cycles)
	}
	if !almostEqual(res.Summary.ChargedMWh, 5, 1e-9) || !almostEqual(res.Summary.DischargedMWh, 5, 1e-9) {
		t.Errorf("grid energy = %v / %v, want 5 / 5", res.Summary.ChargedMWh, res.Summary.DischargedMWh)
	}
	if !almostEqual(res.Summary.AvgChargePrice, 10, 1e-9) || !almostEqual(res.Summary.AvgDischargePrice, 100, 1e-9) {
		t.Errorf("avg prices = %v / %v, want 10 / 100", res.Summary.AvgChargePrice, res.Summary.AvgDischargePrice)
	}
	if !almostEqual(res.Summary.Spread, 90, 1e-9) {
		t.Errorf("spread = %v, want 90", res.Summary.Spread)
	}

	for _, iv := range res.Intervals {
		if iv.SocFrac < -1e-9 || iv.SocFrac > 1+1e-9 {
			t.Fatalf("interval %d: SoC %v out of bounds", iv.Index, iv.SocFrac)
		}
		if iv.Index < 12 && iv.Op == model.OpDischarge {
			t.Errorf("interval %d: discharge during the cheap block", iv.Index)
		}
		if iv.Index >= 12 && iv.Op == model.OpCharge {
			t.Errorf("interval %d: charge during the expensive block", iv.Index)
		}
	}
	final := res.SocTrajectory[len(res.SocTrajectory)-1]
	if !almostEqual(final, 0.5, 1e-9) {
		t.Errorf("final SoC = %v, want the pinned 0.5", final)
	}

	if res.Settings.SocSteps != 73 {
		t.Errorf("auto lattice resolution = %d, want 73", res.Settings.SocSteps)
	}
	if !almostEqual(res.Settings.StepMWh, 10.0/72.0, 1e-12) {
		t.Errorf("step = %v, want %v", res.Settings.StepMWh, 10.0/72.0)
	}
	if res.Adjusted != nil {
		t.Errorf("unexpected adjusted schedule without a min-run option")
	}
}

func TestOptimize_FreeBoundarySellsOut(t *testing.T) {
	prices := twoLevel(10, 100, 12, 1)
	b := model.Battery{
		CapacityMWh:    10,
		PowerMW:        10,
		EtaCharge:      1,
		EtaDischarge:   1,
		Soc0:           0.5,
		ThroughputCost: 0.01,
		DtHours:        1.0 / 12.0,
	}

	res, err := Optimize(prices, b, Options{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	// The reference price is the cheap block's 10 $/MWh, so replenishing the
	// terminal deficit is valued at 12 $/MWh while the expensive block pays
	// 100: the battery fills up cheap and then sells everything.
	if !almostEqual(res.Summary.ChargedMWh, 5, 1e-9) {
		t.Errorf("charged = %v, want 5", res.Summary.ChargedMWh)
	}
	if !almostEqual(res.Summary.DischargedMWh, 10, 1e-9) {
		t.Errorf("discharged = %v, want 10", res.Summary.DischargedMWh)
	}
	final := res.SocTrajectory[len(res.SocTrajectory)-1]
	if !almostEqual(final, 0, 1e-9) {
		t.Errorf("final SoC = %v, want empty", final)
	}

	wantRevenue := -5*10.01 + 10*99.99
	if !almostEqual(res.Summary.Revenue, wantRevenue, 1e-9) {
		t.Errorf("revenue = %v, want %v", res.Summary.Revenue, wantRevenue)
	}
	// The optimum also carries the terminal valuation of the 5 MWh deficit.
	wantOptimum := wantRevenue - 1.2*10*5
	if !almostEqual(res.Summary.Optimum, wantOptimum, 1e-9) {
		t.Errorf("optimum = %v, want %v", res.Summary.Optimum, wantOptimum)
	}
	if !almostEqual(res.Summary.Cycles, 0.75, 1e-9) {
		t.Errorf("cycles = %v, want 0.75", res.Summary.Cycles)
	}
}

func TestOptimize_FlatPricesHold(t *testing.T) {
	prices := make([]float64, 48)
	for i := range prices {
		prices[i] = 50
	}
	b := model.Battery{
		CapacityMWh:  10,
		PowerMW:      5,
		EtaCharge:    0.9,
		EtaDischarge: 0.9,
		Soc0:         0.5,
		DtHours:      1.0 / 12.0,
	}

	res, err := Optimize(prices, b, Options{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Summary.Revenue != 0 {
		t.Errorf("revenue = %v, want exactly 0", res.Summary.Revenue)
	}
	if res.Summary.ThroughputMWh != 0 || res.Summary.Cycles != 0 {
		t.Errorf("flat prices moved energy: throughput %v, cycles %v", res.Summary.ThroughputMWh, res.Summary.Cycles)
	}
	for i, iv := range res.Intervals {
		if iv.Op != model.OpHold {
			t.Fatalf("interval %d: op %v, want hold", i, iv.Op)
		}
		if iv.SocFrac != 0.5 {
			t.Fatalf("interval %d: SoC drifted to %v", i, iv.SocFrac)
		}
	}
	if res.Summary.Optimum != 0 {
		t.Errorf("optimum = %v, want 0", res.Summary.Optimum)
	}
}

func TestOptimize_ZeroPowerHolds(t *testing.T) {
	b := model.Battery{
		CapacityMWh:  10,
		PowerMW:      0,
		EtaCharge:    0.97,
		EtaDischarge: 0.97,
		Soc0:         0.3,
		DtHours:      1.0 / 12.0,
	}

	res, err := Optimize(wavyPrices(96), b, Options{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Summary.Revenue != 0 {
		t.Errorf("revenue = %v, want 0", res.Summary.Revenue)
	}
	for i, iv := range res.Intervals {
		if iv.Op != model.OpHold || iv.GridMWh != 0 {
			t.Fatalf("interval %d: %v with %v MWh, want a plain hold", i, iv.Op, iv.GridMWh)
		}
		if iv.SocFrac != 0.3 {
			t.Fatalf("interval %d: SoC drifted to %v", i, iv.SocFrac)
		}
	}
	if res.Settings.SocSteps != minAutoSteps {
		t.Errorf("lattice resolution = %d, want the %d floor", res.Settings.SocSteps, minAutoSteps)
	}
}

func TestOptimize_EmptyPrices(t *testing.T) {
	b := model.Battery{CapacityMWh: 10, PowerMW: 5, EtaCharge: 0.97, EtaDischarge: 0.97, Soc0: 0.5, DtHours: 1.0 / 12.0}
	if _, err := Optimize(nil, b, Options{}); !errors.Is(err, ErrEmptyPrices) {
		t.Fatalf("err = %v, want ErrEmptyPrices", err)
	}
}

func TestOptimize_InvalidBattery(t *testing.T) {
	if _, err := Optimize([]float64{10, 20}, model.Battery{PowerMW: 5}, Options{}); err == nil || !strings.Contains(err.Error(), "capacity") {
		t.Errorf("zero capacity: err = %v, want a capacity validation error", err)
	}
	if _, err := Optimize([]float64{10, 20}, model.Battery{CapacityMWh: 10, PowerMW: 5, DtHours: 1.0 / 12.0}, Options{}); err == nil || !strings.Contains(err.Error(), "efficiency") {
		t.Errorf("zero efficiency: err = %v, want an efficiency validation error", err)
	}
}

func TestOptimize_InfeasibleTarget(t *testing.T) {
	target := 1.0
	b := model.Battery{
		CapacityMWh:  10,
		PowerMW:      1,
		EtaCharge:    1,
		EtaDischarge: 1,
		Soc0:         0,
		SocTarget:    &target,
		DtHours:      1.0 / 12.0,
	}
	_, err := Optimize([]float64{30, 30}, b, Options{})
	if !errors.Is(err, ErrInfeasibleHorizon) {
		t.Fatalf("err = %v, want ErrInfeasibleHorizon", err)
	}
}

func TestOptimize_ThroughputMonotoneInCost(t *testing.T) {
	prices := twoLevel(10, 100, 12, 3)
	prev := math.Inf(1)
	for _, tc := range []float64{0, 1, 5, 20, 45, 90, 200} {
		b := model.Battery{
			CapacityMWh:    10,
			PowerMW:        10,
			EtaCharge:      0.95,
			EtaDischarge:   0.95,
			Soc0:           0.5,
			ThroughputCost: tc,
			DtHours:        1.0 / 12.0,
		}
		res, err := Optimize(prices, b, Options{})
		if err != nil {
			t.Fatalf("Optimize at cost %v: %v", tc, err)
		}
		if res.Summary.ThroughputMWh > prev+1e-9 {
			t.Fatalf("throughput rose from %v to %v when cost rose to %v", prev, res.Summary.ThroughputMWh, tc)
		}
		prev = res.Summary.ThroughputMWh
	}
}

func TestOptimize_DeterministicAcrossWorkers(t *testing.T) {
	prices := wavyPrices(200)
	b := model.Battery{
		CapacityMWh:    12,
		PowerMW:        6,
		EtaCharge:      0.92,
		EtaDischarge:   0.94,
		Soc0:           0.6,
		ThroughputCost: 1.5,
		DtHours:        1.0 / 12.0,
	}

	base, err := Optimize(prices, b, Options{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	for _, workers := range []int{0, 1, 3, 8} {
		res, err := Optimize(prices, b, Options{Workers: workers})
		if err != nil {
			t.Fatalf("Optimize with %d workers: %v", workers, err)
		}
		if !reflect.DeepEqual(base, res) {
			t.Fatalf("result with %d workers diverged from the serial run", workers)
		}
	}
}

func TestOptimize_ScheduleInvariants(t *testing.T) {
	prices := wavyPrices(150)
	b := model.Battery{
		CapacityMWh:    8,
		PowerMW:        4,
		EtaCharge:      0.93,
		EtaDischarge:   0.95,
		Soc0:           0.4,
		ThroughputCost: 2,
		DtHours:        1.0 / 12.0,
	}

	res, err := Optimize(prices, b, Options{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}

	socMWh := b.Soc0 * b.CapacityMWh
	var cash, throughput float64
	for _, iv := range res.Intervals {
		delta := iv.SocMWh - socMWh
		switch iv.Op {
		case model.OpCharge:
			if delta <= 0 {
				t.Fatalf("interval %d: charge with SoC delta %v", iv.Index, delta)
			}
			if !almostEqual(iv.GridMWh, delta/b.EtaCharge, 1e-9) {
				t.Fatalf("interval %d: grid buy %v, want %v", iv.Index, iv.GridMWh, delta/b.EtaCharge)
			}
		case model.OpDischarge:
			if delta >= 0 {
				t.Fatalf("interval %d: discharge with SoC delta %v", iv.Index, delta)
			}
			if !almostEqual(iv.GridMWh, b.EtaDischarge*-delta, 1e-9) {
				t.Fatalf("interval %d: grid sell %v, want %v", iv.Index, iv.GridMWh, b.EtaDischarge*-delta)
			}
		case model.OpHold:
			if delta != 0 || iv.GridMWh != 0 || iv.CashFlow != 0 {
				t.Fatalf("interval %d: hold moved energy or cash", iv.Index)
			}
		}
		if iv.SocMWh < -1e-9 || iv.SocMWh > b.CapacityMWh+1e-9 {
			t.Fatalf("interval %d: SoC %v out of [0, %v]", iv.Index, iv.SocMWh, b.CapacityMWh)
		}
		if !almostEqual(iv.SocFrac, iv.SocMWh/b.CapacityMWh, 1e-12) {
			t.Fatalf("interval %d: SocFrac %v inconsistent with SocMWh %v", iv.Index, iv.SocFrac, iv.SocMWh)
		}
		cash += iv.CashFlow
		throughput += math.Abs(delta)
		socMWh = iv.SocMWh
	}
	if !almostEqual(cash, res.Summary.Revenue, 1e-9) {
		t.Errorf("cash flows sum to %v, summary says %v", cash, res.Summary.Revenue)
	}
	if !almostEqual(throughput, res.Summary.ThroughputMWh, 1e-9) {
		t.Errorf("SoC deltas sum to %v, summary says %v", throughput, res.Summary.ThroughputMWh)
	}
}

func TestOptimize_ManualLatticeResolution(t *testing.T) {
	prices := make([]float64, 12)
	for i := range prices {
		prices[i] = 40
	}
	b := model.Battery{
		CapacityMWh:  12,
		PowerMW:      6,
		EtaCharge:    0.9,
		EtaDischarge: 0.9,
		Soc0:         0.5,
		SocSteps:     145,
		DtHours:      1.0 / 12.0,
	}
	res, err := Optimize(prices, b, Options{})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Settings.SocSteps != 145 {
		t.Errorf("lattice resolution = %d, want the requested 145", res.Settings.SocSteps)
	}
	if !almostEqual(res.Settings.StepMWh, 12.0/144.0, 1e-12) {
		t.Errorf("step = %v, want %v", res.Settings.StepMWh, 12.0/144.0)
	}
}

func TestOptimize_MinRunOption(t *testing.T) {
	prices := twoLevel(10, 100, 12, 1)
	b := model.Battery{
		CapacityMWh:    10,
		PowerMW:        10,
		EtaCharge:      1,
		EtaDischarge:   1,
		Soc0:           0.5,
		ThroughputCost: 0.01,
		DtHours:        1.0 / 12.0,
	}
	res, err := Optimize(prices, b, Options{MinRunIntervals: 3})
	if err != nil {
		t.Fatalf("Optimize: %v", err)
	}
	if res.Adjusted == nil {
		t.Fatal("adjusted schedule missing")
	}
	if res.Adjusted.MinRunIntervals != 3 {
		t.Errorf("min run echoed as %d, want 3", res.Adjusted.MinRunIntervals)
	}
	if len(res.Adjusted.Intervals) != len(res.Intervals) {
		t.Errorf("adjusted schedule has %d intervals, want %d", len(res.Adjusted.Intervals), len(res.Intervals))
	}
}
