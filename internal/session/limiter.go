package session

// limiter.go bounds how many saves may run against the backend at once.
//
// Slots are a buffered channel used as a semaphore. A save that cannot get a
// slot within maxWait fails with ErrTooManySaves. WaitForDrain lets shutdown
// block until in-flight saves have finished.

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrTooManySaves is returned when no save slot frees up in time.
var ErrTooManySaves = errors.New("too many concurrent saves, please try again later")

// DefaultMaxConcurrentSaves is used when the configured limit is not positive.
const DefaultMaxConcurrentSaves = 4

// DefaultMaxSaveWait is used when the configured wait is not positive.
const DefaultMaxSaveWait = 10 * time.Second

// SaveLimiter is a counting semaphore for backend saves.
type SaveLimiter struct {
	slots   chan struct{}
	maxWait time.Duration

	mu     sync.RWMutex
	active int
}

// NewSaveLimiter allows at most maxConcurrent saves at a time.
func NewSaveLimiter(maxConcurrent int, maxWait time.Duration) *SaveLimiter {
	if maxConcurrent <= 0 {
		maxConcurrent = DefaultMaxConcurrentSaves
	}
	if maxWait <= 0 {
		maxWait = DefaultMaxSaveWait
	}
	return &SaveLimiter{
		slots:   make(chan struct{}, maxConcurrent),
		maxWait: maxWait,
	}
}

// Acquire takes a slot, waiting up to maxWait. The caller must Release it.
func (l *SaveLimiter) Acquire(ctx context.Context) error {
	waitCtx, cancel := context.WithTimeout(ctx, l.maxWait)
	defer cancel()

	select {
	case l.slots <- struct{}{}:
		l.mu.Lock()
		l.active++
		l.mu.Unlock()
		return nil
	case <-waitCtx.Done():
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrTooManySaves
	}
}

// Release frees a slot taken by Acquire.
func (l *SaveLimiter) Release() {
	l.mu.Lock()
	l.active--
	l.mu.Unlock()
	<-l.slots
}

// Active returns the number of saves in flight.
func (l *SaveLimiter) Active() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.active
}

// WaitForDrain blocks until no save is in flight or ctx ends.
func (l *SaveLimiter) WaitForDrain(ctx context.Context) error {
	ticker := time.NewTicker(50 * time.Millisecond)
	defer ticker.Stop()

	for {
		if l.Active() == 0 {
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
