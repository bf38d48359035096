package publisher

import "github.com/kilianp07/bessopt/core/model"

// SchedulePublisher delivers an optimized dispatch schedule to downstream
// consumers such as an EMS or a trading desk feed.
type SchedulePublisher interface {
	// PublishSchedule sends the result identified by runID and returns once
	// the message is handed to the transport or the attempt failed.
	PublishSchedule(runID string, res *model.Result) error

	// Close releases the underlying connection.
	Close() error
}
