package metrics

import (
	"time"

	"github.com/kilianp07/bessopt/core/model"
)

// MultiRecorder fans records out to multiple recorders.
type MultiRecorder struct {
	Recorders []Recorder
}

// NewMultiRecorder creates a MultiRecorder with the provided recorders.
func NewMultiRecorder(recorders ...Recorder) *MultiRecorder {
	return &MultiRecorder{Recorders: recorders}
}

// RecordRun forwards the record to all recorders, returning the first error
// encountered.
func (m *MultiRecorder) RecordRun(rec RunRecord) error {
	for _, r := range m.Recorders {
		if err := r.RecordRun(rec); err != nil {
			return err
		}
	}
	return nil
}

// RecordTrial forwards calibration trials to recorders that support them.
func (m *MultiRecorder) RecordTrial(rec TrialRecord) error {
	for _, r := range m.Recorders {
		if tr, ok := r.(TrialRecorder); ok {
			if err := tr.RecordTrial(rec); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordSchedule forwards the schedule to recorders that support it.
func (m *MultiRecorder) RecordSchedule(runID string, start time.Time, dtHours float64, intervals []model.Interval) error {
	for _, r := range m.Recorders {
		if sr, ok := r.(ScheduleRecorder); ok {
			if err := sr.RecordSchedule(runID, start, dtHours, intervals); err != nil {
				return err
			}
		}
	}
	return nil
}
