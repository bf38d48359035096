package optimizer

import (
	"sync"

	"github.com/kilianp07/bessopt/core/model"
)

// infeasibleValue marks lattice cells from which no valid terminal state can
// be reached. It stands in for negative infinity: the sentinel never enters
// arithmetic, only comparisons, so a real value can never drift near it.
const infeasibleValue = -1e18

// feasibleValue reports whether v is a real revenue-to-go rather than the
// sentinel. The half threshold keeps the test robust should a sentinel ever
// pick up rounding noise.
func feasibleValue(v float64) bool {
	return v > infeasibleValue/2
}

// valueTable holds the backward-induction outputs: v is (T+1) x steps of
// maximum revenue-to-go, policy is T x steps of optimal signed cell moves
// (positive = charge).
type valueTable struct {
	v      [][]float64
	policy [][]int
}

// solver runs one backward induction. The per-action reward splits into a
// price-proportional coefficient and a constant throughput charge, both
// precomputed per cell move so every (t, i) evaluation is a multiply-add.
type solver struct {
	prices []float64
	lat    lattice
	lim    stepLimits

	// reward(t, k) = prices[t]*priceCoef[k+lim.dischargeCells] + costCoef[k+lim.dischargeCells]
	priceCoef []float64
	costCoef  []float64

	workers int
	vt      *valueTable
}

func newSolver(prices []float64, b model.Battery, lat lattice, lim stepLimits, workers int) *solver {
	n := lim.dischargeCells + lim.chargeCells + 1
	s := &solver{
		prices:    prices,
		lat:       lat,
		lim:       lim,
		priceCoef: make([]float64, n),
		costCoef:  make([]float64, n),
		workers:   workers,
	}
	for k := -lim.dischargeCells; k <= lim.chargeCells; k++ {
		battMWh := float64(k) * lat.dE
		idx := k + lim.dischargeCells
		switch {
		case k > 0:
			s.priceCoef[idx] = -battMWh / b.EtaCharge
			s.costCoef[idx] = -b.ThroughputCost * battMWh
		case k < 0:
			s.priceCoef[idx] = b.EtaDischarge * -battMWh
			s.costCoef[idx] = -b.ThroughputCost * -battMWh
		}
	}

	T := len(prices)
	v := make([][]float64, T+1)
	policy := make([][]int, T)
	for t := range v {
		v[t] = make([]float64, lat.steps)
	}
	for t := range policy {
		policy[t] = make([]int, lat.steps)
	}
	s.vt = &valueTable{v: v, policy: policy}
	return s
}

// solve fills the value table: terminal row first, then one strictly
// sequential sweep per time step from T-1 down to 0.
func (s *solver) solve(terminal []float64) *valueTable {
	copy(s.vt.v[len(s.prices)], terminal)
	for t := len(s.prices) - 1; t >= 0; t-- {
		s.sweep(t)
	}
	return s.vt
}

// sweep computes row t from the already complete row t+1. Cells are
// independent, so the row can be split across workers: each cell reads only
// v[t+1] and writes its own slot of v[t] and policy[t].
func (s *solver) sweep(t int) {
	if s.workers <= 1 || s.lat.steps < 2*s.workers {
		s.sweepRange(t, 0, s.lat.steps)
		return
	}
	var wg sync.WaitGroup
	chunk := (s.lat.steps + s.workers - 1) / s.workers
	for lo := 0; lo < s.lat.steps; lo += chunk {
		hi := lo + chunk
		if hi > s.lat.steps {
			hi = s.lat.steps
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			s.sweepRange(t, lo, hi)
		}(lo, hi)
	}
	wg.Wait()
}

// sweepRange evaluates cells [lo, hi) of row t. Actions are enumerated in a
// fixed order from deepest discharge to fullest charge with a strict greater
// comparison, so ties resolve to the same action on every run.
func (s *solver) sweepRange(t, lo, hi int) {
	price := s.prices[t]
	next := s.vt.v[t+1]
	row := s.vt.v[t]
	pol := s.vt.policy[t]
	for i := lo; i < hi; i++ {
		best := infeasibleValue
		bestK := 0
		kLo := -s.lim.dischargeCells
		if kLo < -i {
			kLo = -i
		}
		kHi := s.lim.chargeCells
		if kHi > s.lat.steps-1-i {
			kHi = s.lat.steps - 1 - i
		}
		for k := kLo; k <= kHi; k++ {
			nv := next[i+k]
			if !feasibleValue(nv) {
				continue
			}
			idx := k + s.lim.dischargeCells
			val := price*s.priceCoef[idx] + s.costCoef[idx] + nv
			if val > best {
				best = val
				bestK = k
			}
		}
		row[i] = best
		pol[i] = bestK
	}
}

// terminalValues builds the last row of the value table.
//
// With a pinned target every cell except the target level is unreachable.
// Otherwise each cell gets a soft cyclic valuation around the initial SoC:
// surplus energy is salvaged below its market worth and deficit energy is
// replenished above it, pulling the horizon end back toward the start
// without a hard constraint.
func terminalValues(b model.Battery, lat lattice, refPrice, salvageWeight, replenishWeight float64) []float64 {
	terminal := make([]float64, lat.steps)
	if b.SocTarget != nil {
		for i := range terminal {
			terminal[i] = infeasibleValue
		}
		terminal[lat.index(*b.SocTarget*b.CapacityMWh)] = 0
		return terminal
	}
	e0 := b.Soc0 * b.CapacityMWh
	for i := range terminal {
		diff := lat.energy(i) - e0
		if diff >= 0 {
			terminal[i] = salvageWeight * refPrice * b.EtaDischarge * diff
		} else {
			terminal[i] = replenishWeight * refPrice / b.EtaCharge * diff
		}
	}
	return terminal
}
