package resilience

import (
	"context"
	"errors"

	"github.com/sony/gobreaker/v2"
)

// ErrCircuitOpen is returned when the breaker rejects an execution.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// Breaker wraps a gobreaker circuit breaker with metrics and an optional
// fallback executed when the circuit is open.
type Breaker struct {
	name     string
	cb       *gobreaker.CircuitBreaker[interface{}]
	fallback FallbackFunc
}

// NewBreaker creates a circuit breaker from the given settings.
func NewBreaker(settings Settings, fallback FallbackFunc) *Breaker {
	name := nextBreakerName(settings.Name)
	if fallback == nil {
		fallback = NoopFallback
	}

	cb := gobreaker.NewCircuitBreaker[interface{}](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.SuccessThreshold,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= settings.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			breakerStateTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			breakerStateGauge.WithLabelValues(name).Set(breakerStateValue(to))
		},
	})

	breakerStateGauge.WithLabelValues(name).Set(breakerStateValue(cb.State()))

	return &Breaker{name: name, cb: cb, fallback: fallback}
}

// Execute runs fn through the breaker, invoking the fallback when the
// circuit is open or saturated.
func (b *Breaker) Execute(ctx context.Context, fn func(ctx context.Context) (interface{}, error)) (interface{}, error) {
	breakerRequestsTotal.WithLabelValues(b.name).Inc()

	result, err := b.cb.Execute(func() (interface{}, error) {
		return fn(ctx)
	})

	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			breakerFallbacksTotal.WithLabelValues(b.name).Inc()
			return b.fallback(ctx, ErrCircuitOpen)
		}
		breakerFailuresTotal.WithLabelValues(b.name).Inc()
		return nil, err
	}

	return result, nil
}

// State returns the breaker's current state.
func (b *Breaker) State() gobreaker.State {
	return b.cb.State()
}
