package mqtt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kilianp07/bessopt/core/model"
)

func TestMockPublisher(t *testing.T) {
	m := NewMockPublisher()
	res := &model.Result{RunID: "run-1"}

	err := m.PublishSchedule("run-1", res)
	assert.NoError(t, err, "publish should succeed by default")
	assert.Same(t, res, m.Published["run-1"], "published result should be recorded under its run id")

	m.Fail = true
	err = m.PublishSchedule("run-2", res)
	assert.Error(t, err, "publish should fail when Fail is set")
	assert.NotContains(t, m.Published, "run-2", "failed publish should not be recorded")

	assert.NoError(t, m.Close(), "close should not error")
	assert.True(t, m.Closed, "close should be recorded")
}

func TestMockPublisherConcurrent(t *testing.T) {
	m := NewMockPublisher()
	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 100; i++ {
			assert.NoError(t, m.PublishSchedule("run-a", &model.Result{}))
		}
	}()
	for i := 0; i < 100; i++ {
		assert.NoError(t, m.PublishSchedule("run-b", &model.Result{}))
	}
	<-done
	assert.Len(t, m.Published, 2, "both run ids should be recorded")
}
