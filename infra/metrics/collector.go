package metrics

import (
	"context"

	coremetrics "github.com/kilianp07/bessopt/core/metrics"
	"github.com/kilianp07/bessopt/internal/eventbus"
)

// StartEventCollector subscribes to the run and trial buses and records every
// event on the recorder. It stops when the context is canceled or both buses
// are closed; the returned channel closes once the collector has drained.
func StartEventCollector(ctx context.Context, runs *eventbus.Bus[coremetrics.RunRecord], trials *eventbus.Bus[coremetrics.TrialRecord], rec coremetrics.Recorder) <-chan struct{} {
	done := make(chan struct{})
	if rec == nil {
		close(done)
		return done
	}
	var runCh <-chan coremetrics.RunRecord
	if runs != nil {
		runCh = runs.Subscribe()
	}
	var trialCh <-chan coremetrics.TrialRecord
	if trials != nil {
		trialCh = trials.Subscribe()
	}
	go func() {
		defer close(done)
		defer func() {
			if runs != nil {
				runs.Unsubscribe(runCh)
			}
			if trials != nil {
				trials.Unsubscribe(trialCh)
			}
		}()
		for runCh != nil || trialCh != nil {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-runCh:
				if !ok {
					runCh = nil
					continue
				}
				_ = rec.RecordRun(ev)
			case ev, ok := <-trialCh:
				if !ok {
					trialCh = nil
					continue
				}
				if r, ok := rec.(coremetrics.TrialRecorder); ok {
					_ = r.RecordTrial(ev)
				}
			}
		}
	}()
	return done
}
