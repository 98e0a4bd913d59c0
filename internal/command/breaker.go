package command

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// Breaker guards the publisher's synchronous reconnect. After threshold
// consecutive failures it opens for cooldown; the first attempt after the
// cooldown is a trial that either closes it again or re-opens it.
//
// A nil Breaker or a threshold of zero or less lets every attempt through.
type Breaker struct {
	cb *gobreaker.TwoStepCircuitBreaker
}

// NewBreaker creates a closed breaker.
func NewBreaker(threshold int, cooldown time.Duration) *Breaker {
	if threshold <= 0 {
		return &Breaker{}
	}
	trip := uint32(threshold) //nolint:gosec // Positive, from config
	return &Breaker{
		cb: gobreaker.NewTwoStepCircuitBreaker(gobreaker.Settings{
			Name:        "mqtt-publisher",
			MaxRequests: 1,
			Timeout:     cooldown,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= trip
			},
		}),
	}
}

// Allow asks to make an attempt. On success the caller must pass the
// attempt's outcome to done. While open, or while the half-open trial is
// still running, it returns ErrCircuitOpen.
func (b *Breaker) Allow() (done func(err error), err error) {
	if b == nil || b.cb == nil {
		return func(error) {}, nil
	}
	report, err := b.cb.Allow()
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return nil, ErrCircuitOpen
		}
		return nil, err
	}
	return func(err error) { report(err == nil) }, nil
}

// State returns the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	if b == nil || b.cb == nil {
		return gobreaker.StateClosed
	}
	return b.cb.State()
}

// HealthCheck fails while the breaker is open.
func (b *Breaker) HealthCheck(_ context.Context) error {
	if b.State() == gobreaker.StateOpen {
		return ErrCircuitOpen
	}
	return nil
}
