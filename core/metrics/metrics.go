package metrics

import (
	"time"

	"github.com/kilianp07/bessopt/core/model"
)

// RunRecord summarizes one completed optimization run.
type RunRecord struct {
	RunID     string
	Start     time.Time
	Duration  time.Duration
	Intervals int
	SocSteps  int
	Summary   model.Summary
}

// Recorder records optimization runs for observability purposes.
type Recorder interface {
	RecordRun(rec RunRecord) error
}

// TrialRecord captures one bisection step of a throughput-cost calibration.
type TrialRecord struct {
	RunID     string
	Iteration int
	Cost      float64
	Cycles    float64
	Time      time.Time
}

// TrialRecorder is implemented by sinks able to record calibration trials.
type TrialRecorder interface {
	RecordTrial(rec TrialRecord) error
}

// ScheduleRecorder is implemented by sinks able to store the dispatch
// schedule interval by interval.
type ScheduleRecorder interface {
	RecordSchedule(runID string, start time.Time, dtHours float64, intervals []model.Interval) error
}

// NopRecorder implements every recorder interface with no-op methods.
type NopRecorder struct{}

func (NopRecorder) RecordRun(RunRecord) error     { return nil }
func (NopRecorder) RecordTrial(TrialRecord) error { return nil }
func (NopRecorder) RecordSchedule(string, time.Time, float64, []model.Interval) error {
	return nil
}
