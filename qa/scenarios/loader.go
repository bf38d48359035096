package scenarios

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/simulator"
)

type BatteryDef struct {
	CapacityMWh    float64  `yaml:"capacity_mwh"`
	PowerMW        float64  `yaml:"power_mw"`
	EtaCharge      float64  `yaml:"eta_charge"`
	EtaDischarge   float64  `yaml:"eta_discharge"`
	Soc0           float64  `yaml:"soc0"`
	SocTarget      *float64 `yaml:"soc_target,omitempty"`
	ThroughputCost float64  `yaml:"throughput_cost"`
	SocSteps       int      `yaml:"soc_steps,omitempty"`
	DtHours        float64  `yaml:"dt_hours"`
}

func (b BatteryDef) ToModel() model.Battery {
	return model.Battery{
		CapacityMWh:    b.CapacityMWh,
		PowerMW:        b.PowerMW,
		EtaCharge:      b.EtaCharge,
		EtaDischarge:   b.EtaDischarge,
		Soc0:           b.Soc0,
		SocTarget:      b.SocTarget,
		ThroughputCost: b.ThroughputCost,
		SocSteps:       b.SocSteps,
		DtHours:        b.DtHours,
	}
}

// PricesDef supplies the price series either inline or through the synthetic
// generator. Inline values win when both are set.
type PricesDef struct {
	Values    []float64 `yaml:"values,omitempty"`
	Shape     string    `yaml:"shape,omitempty"`
	Intervals int       `yaml:"intervals,omitempty"`
	Seed      int64     `yaml:"seed,omitempty"`
}

func (p PricesDef) Series() ([]float64, error) {
	if len(p.Values) > 0 {
		return p.Values, nil
	}
	if p.Shape == "" {
		return nil, fmt.Errorf("prices need inline values or a shape")
	}
	return simulator.Generate(p.Shape, p.Intervals, p.Seed)
}

type ConditionDef struct {
	Clamp   bool `yaml:"clamp"`
	Despike bool `yaml:"despike"`
}

// Range is a closed interval an observed value must fall into.
type Range struct {
	Min float64 `yaml:"min"`
	Max float64 `yaml:"max"`
}

func (r Range) contains(v float64) bool {
	return v >= r.Min-1e-9 && v <= r.Max+1e-9
}

type Expected struct {
	Revenue  *Range   `yaml:"revenue,omitempty"`
	Cycles   *Range   `yaml:"cycles,omitempty"`
	FinalSoc *float64 `yaml:"final_soc,omitempty"`
}

type Scenario struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description,omitempty"`
	Battery     BatteryDef   `yaml:"battery"`
	Prices      PricesDef    `yaml:"prices"`
	Condition   ConditionDef `yaml:"condition,omitempty"`
	MinRun      int          `yaml:"min_run_intervals,omitempty"`
	Expected    Expected     `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
