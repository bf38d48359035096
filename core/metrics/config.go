package metrics

import "github.com/kilianp07/bessopt/core/factory"

// Config defines settings for metrics recorders.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`

	// PrometheusPort, when non-empty, exposes /metrics on that address.
	PrometheusPort string `json:"prometheus_port"`
}
