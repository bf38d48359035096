package metrics

import (
	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/prometheus/client_golang/prometheus"
)

// PromSink records optimization runs in Prometheus metrics.
type PromSink struct {
	runs       prometheus.Counter
	duration   prometheus.Histogram
	revenue    prometheus.Gauge
	cycles     prometheus.Gauge
	throughput prometheus.Gauge
	trials     prometheus.Counter
}

// NewPromSink registers run metrics on the default Prometheus registerer.
// The Prometheus server should be started separately using StartPromServer.
func NewPromSink(cfg coremetrics.Config) (coremetrics.Recorder, error) {
	return NewPromSinkWithRegistry(cfg, prometheus.DefaultRegisterer)
}

// NewPromSinkWithRegistry registers metrics on the provided registerer.
// A nil registerer defaults to the global Prometheus registerer.
func NewPromSinkWithRegistry(cfg coremetrics.Config, reg prometheus.Registerer) (coremetrics.Recorder, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	runs := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "optimizer_runs_total",
		Help: "Total number of completed optimization runs",
	})
	duration := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "optimizer_run_duration_seconds",
		Help:    "Wall-clock time spent solving a horizon",
		Buckets: prometheus.DefBuckets,
	})
	revenue := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_run_revenue_usd",
		Help: "Net revenue of the last optimization run",
	})
	cycles := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_run_cycles",
		Help: "Equivalent full cycles of the last optimization run",
	})
	throughput := prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "optimizer_run_throughput_mwh",
		Help: "Energy throughput of the last optimization run",
	})
	trials := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "calibration_trials_total",
		Help: "Total number of calibration trials evaluated",
	})

	if err := reg.Register(runs); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			runs = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(duration); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			duration = are.ExistingCollector.(prometheus.Histogram)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(revenue); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			revenue = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(cycles); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			cycles = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(throughput); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			throughput = are.ExistingCollector.(prometheus.Gauge)
		} else {
			return nil, err
		}
	}
	if err := reg.Register(trials); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			trials = are.ExistingCollector.(prometheus.Counter)
		} else {
			return nil, err
		}
	}

	return &PromSink{
		runs:       runs,
		duration:   duration,
		revenue:    revenue,
		cycles:     cycles,
		throughput: throughput,
		trials:     trials,
	}, nil
}

// RecordRun updates the run counter, duration histogram and summary gauges.
func (s *PromSink) RecordRun(rec coremetrics.RunRecord) error {
	s.runs.Inc()
	s.duration.Observe(rec.Duration.Seconds())
	s.revenue.Set(rec.Summary.Revenue)
	s.cycles.Set(rec.Summary.Cycles)
	s.throughput.Set(rec.Summary.ThroughputMWh)
	return nil
}

// RecordTrial increments the calibration trial counter.
func (s *PromSink) RecordTrial(coremetrics.TrialRecord) error {
	s.trials.Inc()
	return nil
}
