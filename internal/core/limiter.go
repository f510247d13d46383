package core

// limiter.go bounds how many analyses run at once.
//
// Jobs that cannot get a slot stay pending and wait; there is no rejection
// path because submission has already returned to the caller. WaitForDrain
// supports graceful shutdown.

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrentAnalyses is used when the configured limit is not positive.
const DefaultMaxConcurrentAnalyses = 4

// AnalysisLimiter controls concurrent analysis using a semaphore pattern.
type AnalysisLimiter struct {
	semaphore chan struct{}

	mu      sync.RWMutex
	active  int
	waiting int
}

// NewAnalysisLimiter creates a limiter that allows at most maxConcurrent simultaneous analyses.
func NewAnalysisLimiter(maxConcurrent int) *AnalysisLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentAnalyses
	}
	return &AnalysisLimiter{
		semaphore: make(chan struct{}, maxConcurrent),
	}
}

// Acquire blocks until a slot is free or ctx is done.
// The caller MUST call Release() when the analysis completes (use defer).
func (l *AnalysisLimiter) Acquire(ctx context.Context) error {
	l.mu.Lock()
	l.waiting++
	l.mu.Unlock()

	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.waiting--
		l.active++
		l.mu.Unlock()
		return nil

	case <-ctx.Done():
		l.mu.Lock()
		l.waiting--
		l.mu.Unlock()
		return ctx.Err()
	}
}

// Release releases a previously acquired slot.
// Must be called exactly once for each successful Acquire.
func (l *AnalysisLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()

	<-l.semaphore
}

// ActiveCount returns the number of running analyses.
func (l *AnalysisLimiter) ActiveCount() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the maximum allowed concurrent analyses.
func (l *AnalysisLimiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// Available returns the number of free slots.
func (l *AnalysisLimiter) Available() int {
	return cap(l.semaphore) - len(l.semaphore)
}

// WaitForDrain blocks until no analysis is running or waiting, or ctx is cancelled.
func (l *AnalysisLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		l.mu.RLock()
		idle := l.active == 0 && l.waiting == 0
		l.mu.RUnlock()
		if idle {
			return nil
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// LimiterStatus is a snapshot of the limiter's current state.
type LimiterStatus struct {
	Active        int `json:"active"`
	Waiting       int `json:"waiting"`
	Available     int `json:"available"`
	MaxConcurrent int `json:"max_concurrent"`
}

// Status returns the current limiter state for health reporting.
func (l *AnalysisLimiter) Status() LimiterStatus {
	l.mu.RLock()
	active, waiting := l.active, l.waiting
	l.mu.RUnlock()

	return LimiterStatus{
		Active:        active,
		Waiting:       waiting,
		Available:     l.Available(),
		MaxConcurrent: l.MaxConcurrent(),
	}
}
