package metrics

// Package metrics defines interfaces and implementations for collecting
// optimization run metrics. Recorders like PromSink and InfluxSink record
// run summaries, calibration trials and dispatch schedules and can be
// combined with NewMultiRecorder. The factory helpers return a
// MultiRecorder automatically when multiple sinks are configured.
