package ecp

import (
	"sync"

	"github.com/marekbrz/frigidaire/common"
)

// retryCounter is the attempt budget shared by every operation on an engine,
// authentication included.  It is not a per-call counter: a streak of
// failures across any mix of operations exhausts it, and the first success
// resets it.  When the budget is exceeded the counter resets itself so
// subsequent calls start fresh.
type retryCounter struct {
	mu       sync.Mutex
	attempts int
	max      int
}

func newRetryCounter(max int) *retryCounter {
	return &retryCounter{max: max}
}

// bump consumes one attempt.  Returns common.ErrRetriesExceeded once the
// budget is spent, resetting the counter as a side effect.
func (c *retryCounter) bump() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.attempts >= c.max {
		c.attempts = 0
		return common.ErrRetriesExceeded
	}
	c.attempts++
	return nil
}

// reset clears the counter, called on any successful request
func (c *retryCounter) reset() {
	c.mu.Lock()
	c.attempts = 0
	c.mu.Unlock()
}
