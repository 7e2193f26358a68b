package ingest

// limiter.go bounds how many ingestion pipelines run at once.
//
// Every submission is accepted immediately; the dispatched task then waits
// for a slot before doing any work, so the upload sits in pending until the
// limiter admits it. This keeps concurrent external-tool invocations and
// spatial-store loads to a known ceiling and makes in-flight work
// observable for graceful shutdown.

import (
	"context"
	"sync"
	"time"
)

// DefaultMaxConcurrentPipelines bounds parallel pipeline execution when the
// configuration does not say otherwise.
const DefaultMaxConcurrentPipelines = 4

// Limiter is a counting semaphore over pipeline tasks.
type Limiter struct {
	semaphore chan struct{}

	mu     sync.RWMutex
	active int
}

// NewLimiter creates a limiter admitting at most maxConcurrent pipelines.
func NewLimiter(maxConcurrent int) *Limiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentPipelines
	}
	return &Limiter{semaphore: make(chan struct{}, maxConcurrent)}
}

// Acquire blocks until a slot is free or ctx is done. The caller MUST call
// Release exactly once after a successful Acquire (use defer).
func (l *Limiter) Acquire(ctx context.Context) error {
	select {
	case l.semaphore <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Release frees a previously acquired slot.
func (l *Limiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.semaphore
}

// Active returns the number of pipelines currently holding a slot.
func (l *Limiter) Active() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// MaxConcurrent returns the admission ceiling.
func (l *Limiter) MaxConcurrent() int {
	return cap(l.semaphore)
}

// WaitForDrain blocks until no pipeline holds a slot or ctx is done. Used
// during shutdown so in-flight ingestions finish before the process exits.
func (l *Limiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if l.Active() == 0 {
				return nil
			}
		}
	}
}
