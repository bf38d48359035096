package model

import "fmt"

// Default settings applied by Battery.SetDefaults.
const (
	// DefaultDtHours is the interval length of a 5-minute dispatch period.
	DefaultDtHours = 1.0 / 12.0
	// DefaultEta is the default one-way efficiency for charge and discharge.
	DefaultEta = 0.97
	// DefaultSoc0 is the default initial state of charge fraction.
	DefaultSoc0 = 0.5
)

// Battery describes the storage asset being optimized. Power is symmetric for
// charge and discharge; efficiencies are one-way, so the round trip loses
// EtaCharge*EtaDischarge.
type Battery struct {
	CapacityMWh  float64 `json:"capacity_mwh"`  // usable energy capacity
	PowerMW      float64 `json:"power_mw"`      // charge/discharge power limit
	EtaCharge    float64 `json:"eta_charge"`    // grid MWh -> battery MWh
	EtaDischarge float64 `json:"eta_discharge"` // battery MWh -> grid MWh
	Soc0         float64 `json:"soc0"`          // initial SoC fraction in [0,1]

	// SocTarget pins the terminal SoC fraction. When nil the horizon ends
	// free, subject to the cyclic-boundary terminal valuation.
	SocTarget *float64 `json:"soc_target,omitempty"`

	// ThroughputCost is charged per MWh of battery-side energy moved and
	// models degradation. Zero disables it.
	ThroughputCost float64 `json:"throughput_cost"`

	// SocSteps is the lattice resolution. Zero selects a resolution scaled
	// from the power-to-capacity ratio.
	SocSteps int `json:"soc_steps"`

	// DtHours is the interval duration in hours (1/12 for 5-minute data).
	DtHours float64 `json:"dt_hours"`
}

// SetDefaults fills unset fields with the documented defaults. SocSteps is
// left at zero so the optimizer can auto-scale the lattice. A zero Soc0 is
// treated as unset; callers that mean an empty initial state must skip
// SetDefaults and set every field themselves.
func (b *Battery) SetDefaults() {
	if b.DtHours == 0 {
		b.DtHours = DefaultDtHours
	}
	if b.EtaCharge == 0 {
		b.EtaCharge = DefaultEta
	}
	if b.EtaDischarge == 0 {
		b.EtaDischarge = DefaultEta
	}
	if b.Soc0 == 0 {
		b.Soc0 = DefaultSoc0
	}
}

// Validate checks that the battery configuration is sound. PowerMW may be
// zero, which restricts every interval to hold.
func (b Battery) Validate() error {
	if b.CapacityMWh <= 0 {
		return fmt.Errorf("capacity must be positive, got %g", b.CapacityMWh)
	}
	if b.PowerMW < 0 {
		return fmt.Errorf("power must not be negative, got %g", b.PowerMW)
	}
	if b.EtaCharge <= 0 || b.EtaCharge > 1 {
		return fmt.Errorf("charge efficiency must be in (0,1], got %g", b.EtaCharge)
	}
	if b.EtaDischarge <= 0 || b.EtaDischarge > 1 {
		return fmt.Errorf("discharge efficiency must be in (0,1], got %g", b.EtaDischarge)
	}
	if b.Soc0 < 0 || b.Soc0 > 1 {
		return fmt.Errorf("initial SoC must be in [0,1], got %g", b.Soc0)
	}
	if b.SocTarget != nil && (*b.SocTarget < 0 || *b.SocTarget > 1) {
		return fmt.Errorf("target SoC must be in [0,1], got %g", *b.SocTarget)
	}
	if b.ThroughputCost < 0 {
		return fmt.Errorf("throughput cost must not be negative, got %g", b.ThroughputCost)
	}
	if b.SocSteps < 0 || b.SocSteps == 1 {
		return fmt.Errorf("soc steps must be 0 (auto) or at least 2, got %d", b.SocSteps)
	}
	if b.DtHours <= 0 {
		return fmt.Errorf("interval duration must be positive, got %g", b.DtHours)
	}
	return nil
}
