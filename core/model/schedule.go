package model

// Operation tags the dispatch decision taken in one interval.
type Operation int

const (
	OpHold Operation = iota
	OpCharge
	OpDischarge
)

// String returns a human-readable representation of the operation.
func (o Operation) String() string {
	switch o {
	case OpHold:
		return "hold"
	case OpCharge:
		return "charge"
	case OpDischarge:
		return "discharge"
	default:
		return "unknown"
	}
}

// Interval is one simulated dispatch interval of the optimal schedule.
type Interval struct {
	Index int       `json:"index"`
	Op    Operation `json:"op"`
	Price float64   `json:"price"` // $/MWh used for the cash flow

	// GridMWh is the grid-side energy moved: bought when charging, sold
	// when discharging, zero on hold.
	GridMWh float64 `json:"grid_mwh"`

	// CashFlow is the interval revenue in $: negative when buying,
	// positive when selling, net of throughput cost.
	CashFlow float64 `json:"cash_flow"`

	SocMWh  float64 `json:"soc_mwh"`  // state of charge after the interval
	SocFrac float64 `json:"soc_frac"` // SocMWh / capacity
}

// Summary aggregates a simulated schedule.
type Summary struct {
	Revenue       float64 `json:"revenue"`        // sum of interval cash flows, $
	ThroughputMWh float64 `json:"throughput_mwh"` // battery-side energy moved
	Cycles        float64 `json:"cycles"`         // throughput / (2 * capacity)
	ChargedMWh    float64 `json:"charged_mwh"`    // grid-side energy bought
	DischargedMWh float64 `json:"discharged_mwh"` // grid-side energy sold

	// Volume-weighted average prices and their spread. Zero when the
	// schedule never charges or never discharges.
	AvgChargePrice    float64 `json:"avg_charge_price"`
	AvgDischargePrice float64 `json:"avg_discharge_price"`
	Spread            float64 `json:"spread"`

	// Optimum is the value function at the initial state, the total the
	// backward pass promised. It equals Revenue plus the terminal valuation
	// of the final SoC, so the two match exactly only when the horizon ends
	// at the pinned target or back at the initial SoC. Reported for
	// consistency checking.
	Optimum float64 `json:"optimum"`
}

// AdjustedSchedule is the outcome of a min-run-length post-processing pass.
// The pass does not re-optimize, so Revenue is a derived figure that is no
// longer guaranteed optimal and must not be confused with Summary.Revenue.
type AdjustedSchedule struct {
	MinRunIntervals int        `json:"min_run_intervals"`
	Intervals       []Interval `json:"intervals"`
	Revenue         float64    `json:"revenue"`
}
