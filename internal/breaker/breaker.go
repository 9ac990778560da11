// Package breaker implements the failure gate in front of the request
// executor. After a run of consecutive failures it short-circuits new
// requests for a cooldown window instead of letting callers pile timeouts
// onto a backend that is down or still starting its database.
package breaker

import (
	"strconv"
	"sync"
	"time"

	"github.com/propmarket/apicore/internal/utils/logger"
)

// Breaker is safe for concurrent use. Open-ness is a computed predicate over
// the failure count and the time of the last failure; there is no stored
// open/closed mode, so the breaker closes again by itself once the cooldown
// elapses.
type Breaker struct {
	mu           sync.Mutex
	failureCount int
	lastFailure  time.Time

	threshold int
	cooldown  time.Duration

	now           func() time.Time
	logger        *logger.Logger
	onStateChange func(open bool)
}

func New(threshold int, cooldown time.Duration, logger *logger.Logger) *Breaker {
	return &Breaker{
		threshold: threshold,
		cooldown:  cooldown,
		now:       time.Now,
		logger:    logger,
	}
}

// OnStateChange registers a callback fired when a recorded outcome moves the
// breaker between closed and open. Used to keep the breaker state gauge
// current. Must be set before the breaker is shared.
func (b *Breaker) OnStateChange(fn func(open bool)) {
	b.onStateChange = fn
}

// RecordFailure increments the consecutive failure count and stamps the
// failure time.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()

	wasOpen := b.isOpenLocked()
	b.failureCount++
	b.lastFailure = b.now()
	isOpen := b.isOpenLocked()

	count := b.failureCount
	b.mu.Unlock()

	if !wasOpen && isOpen {
		b.logger.Error("circuit breaker opened", map[string]string{
			"failure_count": strconv.Itoa(count),
			"cooldown":      b.cooldown.String(),
		})
		b.notify(true)
	}
}

// RecordSuccess resets the breaker. Any completed HTTP exchange counts as
// success here, whatever its status code: the breaker guards transport
// health, not business outcomes.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()

	wasOpen := b.isOpenLocked()
	b.failureCount = 0
	b.lastFailure = time.Time{}

	b.mu.Unlock()

	if wasOpen {
		b.logger.Info("circuit breaker closed")
		b.notify(false)
	}
}

// IsOpen reports whether requests should be short-circuited. Pure predicate,
// safe to call repeatedly.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.isOpenLocked()
}

// RemainingTime returns how long until the breaker would close, or 0 when it
// is already closed.
func (b *Breaker) RemainingTime() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.isOpenLocked() {
		return 0
	}

	return b.cooldown - b.now().Sub(b.lastFailure)
}

// FailureCount returns the current consecutive failure count.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return b.failureCount
}

func (b *Breaker) isOpenLocked() bool {
	return b.failureCount >= b.threshold && b.now().Sub(b.lastFailure) < b.cooldown
}

func (b *Breaker) notify(open bool) {
	if b.onStateChange != nil {
		b.onStateChange(open)
	}
}
