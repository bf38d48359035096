package model

// ReservationCurve holds per-interval break-even prices evaluated at one
// reference SoC fraction. Charging is marginally worthwhile below Charge[t];
// discharging above Discharge[t].
type ReservationCurve struct {
	SocRef    float64   `json:"soc_ref"`
	Charge    []float64 `json:"charge"`
	Discharge []float64 `json:"discharge"`
}

// ReservationPrices groups the curves computed for all reference SoC levels.
// Primary is the mid-SoC curve intended for display; the rest are diagnostics.
type ReservationPrices struct {
	Primary ReservationCurve   `json:"primary"`
	Curves  []ReservationCurve `json:"curves"`
}

// Settings echoes the effective optimization inputs for traceability,
// including the lattice resolution actually used so callers can detect
// under-resolution by re-running at a higher SocSteps.
type Settings struct {
	Battery  Battery `json:"battery"`
	SocSteps int     `json:"soc_steps"`
	StepMWh  float64 `json:"step_mwh"` // lattice spacing dE
}

// Result is the complete outcome of one optimization call.
type Result struct {
	// RunID identifies the run in exports and recorders. It is assigned by
	// the caller, not the optimizer, which stays deterministic.
	RunID string `json:"run_id,omitempty"`

	Intervals []Interval `json:"intervals"`
	Summary   Summary    `json:"summary"`

	// SocTrajectory is the fractional SoC after each interval.
	SocTrajectory []float64 `json:"soc_trajectory"`

	Reservation ReservationPrices `json:"reservation"`
	Settings    Settings          `json:"settings"`

	// Adjusted is set when a min-run-length pass was applied.
	Adjusted *AdjustedSchedule `json:"adjusted,omitempty"`
}
