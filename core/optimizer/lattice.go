package optimizer

import (
	"math"

	"github.com/kilianp07/bessopt/core/model"
)

// Bounds for the auto-scaled lattice resolution. The target keeps one full
// charge step at roughly six cells so the policy can express partial-power
// moves without exploding the state space.
const (
	minAutoSteps       = 48
	maxAutoSteps       = 480
	targetCellsPerStep = 6
)

// lattice discretizes the SoC range [0, capacity] into uniformly spaced
// energy levels. Level 0 is empty, level steps-1 is full.
type lattice struct {
	capacity float64
	steps    int
	dE       float64
}

func newLattice(capacityMWh float64, steps int) lattice {
	return lattice{
		capacity: capacityMWh,
		steps:    steps,
		dE:       capacityMWh / float64(steps-1),
	}
}

// index maps a continuous SoC to the nearest lattice level. The rounding here
// is the controlled discretization error of the whole scheme.
func (l lattice) index(socMWh float64) int {
	if socMWh <= 0 {
		return 0
	}
	if socMWh >= l.capacity {
		return l.steps - 1
	}
	return int(math.Round(socMWh / l.dE))
}

// energy returns the absolute SoC of a lattice level.
func (l lattice) energy(i int) float64 {
	return float64(i) * l.dE
}

// autoSteps picks a lattice resolution from the power-to-capacity ratio so
// that one maximum charge step spans targetCellsPerStep cells. A zero-power
// battery gets the minimum resolution; it can only hold anyway.
func autoSteps(b model.Battery) int {
	stepMWh := b.EtaCharge * b.PowerMW * b.DtHours
	if stepMWh <= 0 {
		return minAutoSteps
	}
	steps := int(math.Ceil(targetCellsPerStep*b.CapacityMWh/stepMWh)) + 1
	if steps < minAutoSteps {
		steps = minAutoSteps
	}
	if steps > maxAutoSteps {
		steps = maxAutoSteps
	}
	return steps
}

// stepLimits bounds the per-interval SoC move in lattice cells.
type stepLimits struct {
	chargeCells    int
	dischargeCells int
}

// cellLimits translates the power limit into lattice cells per interval,
// at least one cell each way for a battery that can move at all. The small
// epsilon keeps an exact multiple of dE from truncating one cell short.
func cellLimits(b model.Battery, lat lattice) stepLimits {
	if b.PowerMW <= 0 {
		return stepLimits{}
	}
	charge := int(math.Floor(b.EtaCharge*b.PowerMW*b.DtHours/lat.dE + 1e-9))
	if charge < 1 {
		charge = 1
	}
	discharge := int(math.Floor(b.PowerMW*b.DtHours/lat.dE + 1e-9))
	if discharge < 1 {
		discharge = 1
	}
	return stepLimits{chargeCells: charge, dischargeCells: discharge}
}
