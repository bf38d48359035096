package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/core/model"
	"github.com/kilianp07/bessopt/core/pricing"
	"github.com/kilianp07/bessopt/infra/mqtt"
)

type Config struct {
	Battery     model.Battery     `json:"battery"`
	Prices      PricesConfig      `json:"prices"`
	Conditioner pricing.Options   `json:"conditioner"`
	Optimizer   OptimizerConfig   `json:"optimizer"`
	Calibration CalibrationConfig `json:"calibration"`
	Logging     LoggingConfig     `json:"logging"`
	Metrics     metrics.Config    `json:"metrics"`
	MQTT        mqtt.Config       `json:"mqtt"`
	Output      OutputConfig      `json:"output"`
}

// PricesConfig selects the price source: a CSV file or a synthetic shape.
type PricesConfig struct {
	// CSV is the path of a price series file. Takes precedence over Shape.
	CSV string `json:"csv"`
	// Shape names a simulator generator: flat, sawtooth, duck, spiky.
	Shape     string `json:"shape"`
	Intervals int    `json:"intervals"`
	Seed      int64  `json:"seed"`
}

// SetDefaults selects the sawtooth generator over one day of 5-minute
// intervals when nothing is configured.
func (c *PricesConfig) SetDefaults() {
	if c.CSV == "" && c.Shape == "" {
		c.Shape = "sawtooth"
	}
	if c.Intervals == 0 {
		c.Intervals = 288
	}
}

// Validate checks the price source selection.
func (c PricesConfig) Validate() error {
	if c.CSV == "" && c.Shape == "" {
		return fmt.Errorf("either csv or shape is required")
	}
	if c.Intervals < 1 {
		return fmt.Errorf("intervals must be positive, got %d", c.Intervals)
	}
	return nil
}

// OptimizerConfig carries run options not part of the battery itself.
type OptimizerConfig struct {
	// Workers bounds the lattice worker pool. Zero lets the solver decide.
	Workers int `json:"workers"`
	// MinRunIntervals collapses shorter dispatch runs when > 1.
	MinRunIntervals int `json:"min_run_intervals"`
}

// Validate checks the optimizer run options.
func (c OptimizerConfig) Validate() error {
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative, got %d", c.Workers)
	}
	if c.MinRunIntervals < 0 {
		return fmt.Errorf("min_run_intervals must not be negative, got %d", c.MinRunIntervals)
	}
	return nil
}

// CalibrationConfig enables the pre-run throughput-cost calibration.
type CalibrationConfig struct {
	Enabled      bool    `json:"enabled"`
	TargetCycles float64 `json:"target_cycles"`
	Iterations   int     `json:"iterations"`
}

// Validate checks the calibration settings when enabled.
func (c CalibrationConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.TargetCycles <= 0 {
		return fmt.Errorf("target_cycles must be positive, got %g", c.TargetCycles)
	}
	if c.Iterations < 0 {
		return fmt.Errorf("iterations must not be negative, got %d", c.Iterations)
	}
	return nil
}

// OutputConfig names the export files. Empty paths skip the writer.
type OutputConfig struct {
	JSON string `json:"json"`
	CSV  string `json:"csv"`
}

func Load(path string) (*Config, error) {
	k := koanf.New(".")
	ext := strings.ToLower(filepath.Ext(path))
	var parser koanf.Parser
	switch ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported config format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	// Optional environment overrides: BESS_BATTERY__POWER_MW=5 maps to
	// battery.power_mw. The provider delim has to match the dots the
	// callback emits for the keys to nest.
	if err := k.Load(env.Provider("BESS_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "bess_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.Battery.SetDefaults()
	cfg.Prices.SetDefaults()
	cfg.Logging.SetDefaults()
	if err := cfg.Battery.Validate(); err != nil {
		return nil, fmt.Errorf("battery: %w", err)
	}
	if err := cfg.Prices.Validate(); err != nil {
		return nil, fmt.Errorf("prices: %w", err)
	}
	if err := cfg.Optimizer.Validate(); err != nil {
		return nil, fmt.Errorf("optimizer: %w", err)
	}
	if err := cfg.Calibration.Validate(); err != nil {
		return nil, fmt.Errorf("calibration: %w", err)
	}
	if err := cfg.Logging.Validate(); err != nil {
		return nil, fmt.Errorf("logging: %w", err)
	}
	return &cfg, nil
}
