package mqtt

import (
	"fmt"
	"sync"

	"github.com/kilianp07/bessopt/core/model"
	corepublisher "github.com/kilianp07/bessopt/core/publisher"
)

// SchedulePublisher mirrors the core publisher interface.
type SchedulePublisher = corepublisher.SchedulePublisher

// MockPublisher is a simple publisher used in tests.
type MockPublisher struct {
	Published map[string]*model.Result
	Fail      bool
	Closed    bool
	mu        sync.Mutex
}

// NewMockPublisher creates a new MockPublisher.
func NewMockPublisher() *MockPublisher {
	return &MockPublisher{Published: make(map[string]*model.Result)}
}

// PublishSchedule records the result or returns an error if configured to fail.
func (m *MockPublisher) PublishSchedule(runID string, res *model.Result) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Fail {
		return fmt.Errorf("publish failed")
	}
	m.Published[runID] = res
	return nil
}

// Close marks the publisher as closed.
func (m *MockPublisher) Close() error {
	m.mu.Lock()
	m.Closed = true
	m.mu.Unlock()
	return nil
}
