package optimizer

import (
	"errors"
	"fmt"

	"github.com/kilianp07/bessopt/core/logger"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/pricing"
)

// ErrEmptyPrices is returned when the price series has no intervals.
var ErrEmptyPrices = errors.New("optimizer: empty price series")

// ErrInfeasibleHorizon is returned when no feasible path connects the initial
// SoC to the terminal condition, typically a SocTarget out of reach within
// the horizon under the power limit.
var ErrInfeasibleHorizon = errors.New("optimizer: no feasible path to the terminal state")

// Terminal valuation weights for the free-boundary mode. Surplus energy over
// the initial SoC is salvaged at SalvageWeight times the reference price;
// deficits are replenished at ReplenishWeight times it. The asymmetry pulls
// the horizon end softly back toward the start. The values carry over from
// operational tuning and still await empirical validation against realized
// arbitrage outcomes.
const (
	DefaultSalvageWeight   = 0.8
	DefaultReplenishWeight = 1.2
)

// DefaultReferenceSocs are the SoC fractions at which reservation price
// curves are evaluated. The middle one becomes the primary curve.
var DefaultReferenceSocs = []float64{0.2, 0.5, 0.8}

// DefaultMedianHalfWindow is the half-width of the median filter applied to
// each reservation price curve.
const DefaultMedianHalfWindow = 3

// Options tune a single optimization run. The zero value selects the
// documented defaults.
type Options struct {
	// ReferenceSocs lists the SoC fractions for reservation price curves.
	ReferenceSocs []float64

	// MedianHalfWindow smooths the reservation curves; values below 1
	// fall back to the default.
	MedianHalfWindow int

	// Workers bounds the goroutines used for one lattice sweep. Zero or
	// one keeps the sweep serial. Results are identical either way.
	Workers int

	// SalvageWeight and ReplenishWeight override the free-boundary
	// terminal valuation weights. Zero selects the defaults.
	SalvageWeight   float64
	ReplenishWeight float64

	// MinRunIntervals, when above 1, applies the min-run-length pass to
	// the simulated schedule and attaches the adjusted copy to the result.
	MinRunIntervals int

	// Logger, when set, receives a structured per-run summary. The hot
	// loops never log.
	Logger logger.Logger
}

func (o *Options) setDefaults() {
	if len(o.ReferenceSocs) == 0 {
		o.ReferenceSocs = DefaultReferenceSocs
	}
	if o.MedianHalfWindow < 1 {
		o.MedianHalfWindow = DefaultMedianHalfWindow
	}
	if o.SalvageWeight == 0 {
		o.SalvageWeight = DefaultSalvageWeight
	}
	if o.ReplenishWeight == 0 {
		o.ReplenishWeight = DefaultReplenishWeight
	}
}

// Optimize computes the revenue-maximizing dispatch schedule for the battery
// against the price series: one backward induction over the SoC lattice, one
// forward replay of the resulting policy, and the reservation price curves
// read off the value function before it is discarded.
//
// The series must already be conditioned; see pricing.Condition. The battery
// is validated but not defaulted here; the config layer applies SetDefaults.
// Two calls with identical inputs produce identical results.
func Optimize(prices []float64, b model.Battery, opts Options) (*model.Result, error) {
	if len(prices) == 0 {
		return nil, ErrEmptyPrices
	}
	if err := b.Validate(); err != nil {
		return nil, fmt.Errorf("battery config: %w", err)
	}
	opts.setDefaults()

	steps := b.SocSteps
	if steps == 0 {
		steps = autoSteps(b)
	}
	lat := newLattice(b.CapacityMWh, steps)
	ref := pricing.ReferencePrice(prices, b.DtHours)

	s := newSolver(prices, b, lat, cellLimits(b, lat), opts.Workers)
	vt := s.solve(terminalValues(b, lat, ref, opts.SalvageWeight, opts.ReplenishWeight))
	if !feasibleValue(vt.v[0][lat.index(b.Soc0*b.CapacityMWh)]) {
		return nil, ErrInfeasibleHorizon
	}

	intervals, summary, trajectory := simulate(prices, b, lat, vt)
	res := &model.Result{
		Intervals:     intervals,
		Summary:       summary,
		SocTrajectory: trajectory,
		Reservation:   reservationPrices(vt, b, lat, opts.ReferenceSocs, opts.MedianHalfWindow),
		Settings: model.Settings{
			Battery:  b,
			SocSteps: steps,
			StepMWh:  lat.dE,
		},
	}
	if opts.MinRunIntervals > 1 {
		adj := EnforceMinRunLength(intervals, b, opts.MinRunIntervals)
		res.Adjusted = &adj
	}

	if opts.Logger != nil {
		opts.Logger.Debugw("optimization complete", map[string]any{
			"intervals":  len(prices),
			"soc_steps":  steps,
			"revenue":    summary.Revenue,
			"cycles":     summary.Cycles,
			"optimum":    summary.Optimum,
			"throughput": summary.ThroughputMWh,
		})
	}
	return res, nil
}
