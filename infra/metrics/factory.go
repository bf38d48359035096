package metrics

import (
	"github.com/kilianp07/bessopt/core/factory"
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// init registers built-in metrics recorders.
func init() {
	_ = coremetrics.RegisterRecorder("nop", func(map[string]any) (coremetrics.Recorder, error) {
		return coremetrics.NopRecorder{}, nil
	})

	_ = coremetrics.RegisterRecorder("prometheus", func(map[string]any) (coremetrics.Recorder, error) {
		// The HTTP listener is started by the service from
		// Config.PrometheusPort; the sink only registers collectors.
		return NewPromSinkWithRegistry(coremetrics.Config{}, prometheus.DefaultRegisterer)
	})

	_ = coremetrics.RegisterRecorder("influx", func(conf map[string]any) (coremetrics.Recorder, error) {
		var c struct {
			URL    string `json:"url"`
			Token  string `json:"token"`
			Org    string `json:"org"`
			Bucket string `json:"bucket"`
		}
		if err := factory.Decode(conf, &c); err != nil {
			return nil, err
		}
		return NewInfluxSinkWithFallback(c.URL, c.Token, c.Org, c.Bucket), nil
	})
}
