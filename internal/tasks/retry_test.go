package tasks

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"speakup/backend/internal/config"

	"github.com/stretchr/testify/assert"
)

type stubQueue struct {
	payloads [][]byte
}

func (q *stubQueue) EnqueueTask(payload []byte) error {
	q.payloads = append(q.payloads, payload)
	return nil
}

func (q *stubQueue) DequeueTask(timeout time.Duration) ([]byte, error) {
	return nil, nil
}

// TestRetryRequeuesWithoutBlocking verifies a failed task goes back to the
// queue immediately: the single worker goroutine never sleeps between
// tasks, so one flaky task cannot stall the rest of the queue.
func TestRetryRequeuesWithoutBlocking(t *testing.T) {
	queue := &stubQueue{}
	w := NewWorker(queue, nil, nil, nil)

	start := time.Now()
	w.retry(Task{Kind: KindClassify, ComplaintID: "c-1"}, errors.New("db down"))

	assert.Less(t, time.Since(start), 500*time.Millisecond)
	assert.Len(t, queue.payloads, 1)

	var requeued Task
	assert.NoError(t, json.Unmarshal(queue.payloads[0], &requeued))
	assert.Equal(t, 1, requeued.Attempts)
}

// TestRetryDropsAtAttemptCap verifies the bounded retry: at the cap the
// task is dropped, not requeued.
func TestRetryDropsAtAttemptCap(t *testing.T) {
	queue := &stubQueue{}
	w := NewWorker(queue, nil, nil, nil)

	w.retry(Task{Kind: KindClassify, ComplaintID: "c-1", Attempts: config.TaskMaxAttempts - 1},
		errors.New("db down"))

	assert.Empty(t, queue.payloads)
}
