// Package core provides the internal implementation of batbelt's background
// worker infrastructure.
package core

import (
	"errors"
	"sync"
	"time"
)

// Queue is an unbounded FIFO queue connecting one producer to one consumer.
// Put never blocks; Get blocks until an item arrives, or until the queue is
// both closed and drained.
type Queue[T any] struct {
	Timer Timer

	mu      sync.Mutex
	items   []T      // Backlog waiting for future getters
	waiters []chan T // Goroutines parked in Get
	closed  bool
}

// NewQueue creates a queue with the default real timer.
func NewQueue[T any]() *Queue[T] {
	return NewQueueWithTimer[T](realTimer{})
}

// NewQueueWithTimer creates a queue with a custom timer for testing.
func NewQueueWithTimer[T any](timer Timer) *Queue[T] {
	return &Queue[T]{Timer: timer}
}

// Put appends v to the queue, handing it directly to a parked getter when
// one is waiting. Put panics if the queue has been closed.
func (q *Queue[T]) Put(v T) {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()
		panic("batbelt: put on a closed queue")
	}

	// Hand off to the oldest waiter so Get stays FIFO across getters.
	if len(q.waiters) > 0 {
		waiter := q.waiters[0]
		q.waiters = q.waiters[1:]
		q.mu.Unlock()

		waiter <- v

		return
	}

	q.items = append(q.items, v)
	q.mu.Unlock()
}

// Get returns the next item in FIFO order, blocking until one is available.
// It returns a zero value and false once the queue is closed and drained.
func (q *Queue[T]) Get() (T, bool) {
	q.mu.Lock()

	if len(q.items) > 0 {
		v := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		return v, true
	}

	if q.closed {
		q.mu.Unlock()

		var zero T

		return zero, false
	}

	// Register as a waiter BEFORE unlocking (this prevents a lost wakeup
	// against a concurrent Put or Close).
	waiter := make(chan T, 1)
	q.waiters = append(q.waiters, waiter)
	q.mu.Unlock()

	v, ok := <-waiter

	return v, ok
}

// GetTimeout behaves like Get but gives up after d, returning ErrGetTimeout.
// It returns ErrQueueClosed once the queue is closed and drained.
func (q *Queue[T]) GetTimeout(d time.Duration) (T, error) {
	var zero T

	q.mu.Lock()

	if len(q.items) > 0 {
		v := q.items[0]
		q.items = q.items[1:]
		q.mu.Unlock()

		return v, nil
	}

	if q.closed {
		q.mu.Unlock()

		return zero, ErrQueueClosed
	}

	waiter := make(chan T, 1)
	q.waiters = append(q.waiters, waiter)
	q.mu.Unlock()

	select {
	case v, ok := <-waiter:
		if !ok {
			return zero, ErrQueueClosed
		}

		return v, nil
	case <-q.Timer.After(d):
		// Withdraw from the waiters list
		q.mu.Lock()

		for i, w := range q.waiters {
			if w == waiter {
				q.waiters = append(q.waiters[:i], q.waiters[i+1:]...)
				q.mu.Unlock()

				return zero, ErrGetTimeout
			}
		}

		q.mu.Unlock()

		// A concurrent Put or Close claimed the waiter before we could
		// withdraw it; take the handoff rather than dropping an item.
		v, ok := <-waiter
		if !ok {
			return zero, ErrQueueClosed
		}

		return v, nil
	}
}

// Close marks the end of input. Items already queued stay gettable; once the
// backlog drains, Get reports false. Parked getters wake empty-handed.
// Closing twice is a no-op.
func (q *Queue[T]) Close() {
	q.mu.Lock()

	if q.closed {
		q.mu.Unlock()

		return
	}

	q.closed = true
	waiters := q.waiters
	q.waiters = nil
	q.mu.Unlock()

	for _, waiter := range waiters {
		close(waiter)
	}
}

// Len reports how many items are queued and not yet claimed.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	return len(q.items)
}

// Timer abstracts time-based operations for testability.
type Timer interface {
	After(d time.Duration) <-chan time.Time
}

type realTimer struct{}

func (realTimer) After(d time.Duration) <-chan time.Time {
	return time.After(d)
}

// Errors.
var (
	ErrQueueClosed = errors.New("queue is closed and drained")
	ErrGetTimeout  = errors.New("timed out waiting for a queued item")
)
