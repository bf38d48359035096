package optimizer

import (
	"fmt"

	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/pricing"
)

// Defaults for the throughput-cost search.
const (
	DefaultCalibrationIterations = 16
	DefaultCalibrationCeiling    = 200.0 // $/MWh
)

// CalibrationTrial reports one bisection step to an observer.
type CalibrationTrial struct {
	Iteration int     `json:"iteration"`
	Cost      float64 `json:"cost"`   // throughput cost tried, $/MWh
	Cycles    float64 `json:"cycles"` // realized cycle count at that cost
}

// CalibrateOptions extends the run options with search parameters.
type CalibrateOptions struct {
	Options

	// Bracket is the search interval in $/MWh. Zero value selects
	// [0, DefaultCalibrationCeiling].
	Bracket [2]float64

	// Iterations is the fixed number of bisection steps.
	Iterations int

	// OnTrial, when set, observes every bisection step.
	OnTrial func(CalibrationTrial)
}

func (o *CalibrateOptions) setDefaults() {
	o.Options.setDefaults()
	if o.Bracket[0] == 0 && o.Bracket[1] == 0 {
		o.Bracket[1] = DefaultCalibrationCeiling
	}
	if o.Iterations <= 0 {
		o.Iterations = DefaultCalibrationIterations
	}
}

// CalibrateThroughputCost searches for the throughput cost that drives the
// realized cycle count to targetCycles over the given horizon. Realized
// throughput is monotonically non-increasing in the cost, so plain bisection
// over the bracket converges; the iteration count is fixed rather than
// tolerance-driven so runtime is predictable. The battery's own
// ThroughputCost field is ignored during the search and the input is not
// mutated.
func CalibrateThroughputCost(prices []float64, b model.Battery, targetCycles float64, opts CalibrateOptions) (float64, error) {
	if len(prices) == 0 {
		return 0, ErrEmptyPrices
	}
	if err := b.Validate(); err != nil {
		return 0, fmt.Errorf("battery config: %w", err)
	}
	if targetCycles < 0 {
		return 0, fmt.Errorf("target cycles must not be negative, got %g", targetCycles)
	}
	if opts.Bracket[1] < opts.Bracket[0] {
		return 0, fmt.Errorf("invalid search bracket [%g, %g]", opts.Bracket[0], opts.Bracket[1])
	}
	opts.setDefaults()

	lo, hi := opts.Bracket[0], opts.Bracket[1]
	cost := lo
	for it := 0; it < opts.Iterations; it++ {
		cost = (lo + hi) / 2
		trial := b
		trial.ThroughputCost = cost
		cycles, err := realizedCycles(prices, trial, opts.Options)
		if err != nil {
			return 0, fmt.Errorf("calibration trial at %g $/MWh: %w", cost, err)
		}
		if opts.OnTrial != nil {
			opts.OnTrial(CalibrationTrial{Iteration: it, Cost: cost, Cycles: cycles})
		}
		if cycles > targetCycles {
			lo = cost
		} else {
			hi = cost
		}
	}
	return cost, nil
}

// realizedCycles runs the DP and forward simulation only, skipping the
// reservation curves the search never reads.
func realizedCycles(prices []float64, b model.Battery, opts Options) (float64, error) {
	steps := b.SocSteps
	if steps == 0 {
		steps = autoSteps(b)
	}
	lat := newLattice(b.CapacityMWh, steps)
	ref := pricing.ReferencePrice(prices, b.DtHours)
	s := newSolver(prices, b, lat, cellLimits(b, lat), opts.Workers)
	vt := s.solve(terminalValues(b, lat, ref, opts.SalvageWeight, opts.ReplenishWeight))
	if !feasibleValue(vt.v[0][lat.index(b.Soc0*b.CapacityMWh)]) {
		return 0, ErrInfeasibleHorizon
	}
	_, sum, _ := simulate(prices, b, lat, vt)
	return sum.Cycles, nil
}
