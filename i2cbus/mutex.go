package i2cbus

import (
	"context"
	"time"

	"golang.org/x/sync/semaphore"
)

// Forever asks Take to wait without a deadline.
const Forever time.Duration = -1

// Mutex is the bus-wide exclusion primitive.
//
// Take waits up to timeout for ownership and reports whether it was granted.
// A zero timeout polls once; Forever blocks until the bus is free.
type Mutex interface {
	Take(timeout time.Duration) bool
	Give()
}

// Semaphore is a Mutex backed by a weighted semaphore of size one.
type Semaphore struct {
	w *semaphore.Weighted
}

var _ Mutex = (*Semaphore)(nil)

func NewSemaphore() *Semaphore {
	return &Semaphore{w: semaphore.NewWeighted(1)}
}

func (s *Semaphore) Take(timeout time.Duration) bool {
	switch {
	case timeout < 0:
		return s.w.Acquire(context.Background(), 1) == nil
	case timeout == 0:
		return s.w.TryAcquire(1)
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.w.Acquire(ctx, 1) == nil
}

// Give releases ownership. It panics when the semaphore is not held.
func (s *Semaphore) Give() { s.w.Release(1) }
