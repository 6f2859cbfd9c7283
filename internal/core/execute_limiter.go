package core

// execute_limiter.go bounds the number of /execute calls in flight.
//
// Every execution holds one slot of a weighted semaphore for its whole
// lifetime, remote calls included. When all slots are taken, new calls wait
// up to maxWait and then fail with ErrTooManyExecutions. Shutdown uses
// WaitForDrain to let running executions finish.
//
// The limiter sheds load only. Two executions against the same sheet may
// still run at the same time.

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"
)

// ErrTooManyExecutions is returned when no slot frees up within the wait
// time. Clients should retry after a short delay.
var ErrTooManyExecutions = errors.New("too many concurrent executions, please try again later")

// DefaultMaxConcurrentExecutions is used when the configured limit is not positive.
const DefaultMaxConcurrentExecutions = 10

// ExecuteLimiter limits concurrent executions.
type ExecuteLimiter struct {
	sem     *semaphore.Weighted
	max     int
	maxWait time.Duration
	active  atomic.Int64
}

// NewExecuteLimiter allows at most maxConcurrent simultaneous executions.
// A maxWait of zero rejects immediately when the limiter is full.
func NewExecuteLimiter(maxConcurrent int, maxWait time.Duration) *ExecuteLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentExecutions
	}
	if maxWait < 0 {
		maxWait = 0
	}
	return &ExecuteLimiter{
		sem:     semaphore.NewWeighted(int64(maxConcurrent)),
		max:     maxConcurrent,
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting at most maxWait. It returns ctx.Err() when
// ctx ends first. The caller must Release after a nil return.
func (l *ExecuteLimiter) Acquire(ctx context.Context) error {
	if l.TryAcquire() {
		return nil
	}
	if l.maxWait == 0 {
		return ErrTooManyExecutions
	}

	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	if err := l.sem.Acquire(waitCtx, 1); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManyExecutions
	}
	l.active.Add(1)
	return nil
}

// TryAcquire takes a slot without blocking.
func (l *ExecuteLimiter) TryAcquire() bool {
	if !l.sem.TryAcquire(1) {
		return false
	}
	l.active.Add(1)
	return true
}

// Release returns a slot taken by Acquire or TryAcquire.
func (l *ExecuteLimiter) Release() {
	l.active.Add(-1)
	l.sem.Release(1)
}

// ActiveCount returns the number of executions in flight.
func (l *ExecuteLimiter) ActiveCount() int {
	return int(l.active.Load())
}

// WaitForDrain blocks until no execution is in flight or ctx ends.
func (l *ExecuteLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.ActiveCount() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter for the health endpoint.
type LimiterStatus struct {
	Active        int `json:"active"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state.
func (l *ExecuteLimiter) Status() LimiterStatus {
	active := l.ActiveCount()
	return LimiterStatus{
		Active:        active,
		Available:     l.max - active,
		MaxConcurrent: l.max,
	}
}
