package command

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDial = errors.New("dial tcp: connection refused")

func attempt(t *testing.T, b *Breaker, outcome error) {
	t.Helper()
	done, err := b.Allow()
	require.NoError(t, err)
	done(outcome)
}

func TestBreaker_OpensAfterThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		attempt(t, b, errDial)
		assert.Equal(t, gobreaker.StateClosed, b.State())
	}

	attempt(t, b, errDial)
	assert.Equal(t, gobreaker.StateOpen, b.State())

	_, err := b.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.ErrorIs(t, b.HealthCheck(context.Background()), ErrCircuitOpen)
}

func TestBreaker_SuccessResetsCount(t *testing.T) {
	b := NewBreaker(2, time.Minute)

	attempt(t, b, errDial)
	attempt(t, b, nil)
	attempt(t, b, errDial)
	assert.Equal(t, gobreaker.StateClosed, b.State())
	assert.NoError(t, b.HealthCheck(context.Background()))
}

func TestBreaker_HalfOpenTrial(t *testing.T) {
	const cooldown = 20 * time.Millisecond
	b := NewBreaker(1, cooldown)

	attempt(t, b, errDial)
	_, err := b.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen)

	time.Sleep(2 * cooldown)
	done, err := b.Allow()
	require.NoError(t, err, "first attempt after cooldown is the trial")
	assert.Equal(t, gobreaker.StateHalfOpen, b.State())

	_, err = b.Allow()
	assert.ErrorIs(t, err, ErrCircuitOpen, "only one trial at a time")

	done(errDial)
	assert.Equal(t, gobreaker.StateOpen, b.State())

	time.Sleep(2 * cooldown)
	attempt(t, b, nil)
	assert.Equal(t, gobreaker.StateClosed, b.State())
	attempt(t, b, nil)
}

func TestBreaker_ConcurrentAttempts(t *testing.T) {
	b := NewBreaker(5, time.Minute)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if done, err := b.Allow(); err == nil {
				done(nil)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, gobreaker.StateClosed, b.State())
}

func TestBreaker_Disabled(t *testing.T) {
	b := NewBreaker(0, time.Minute)
	for i := 0; i < 10; i++ {
		attempt(t, b, errDial)
	}
	assert.Equal(t, gobreaker.StateClosed, b.State())

	var nilBreaker *Breaker
	attempt(t, nilBreaker, errDial)
	assert.Equal(t, gobreaker.StateClosed, nilBreaker.State())
	assert.NoError(t, nilBreaker.HealthCheck(context.Background()))
}
