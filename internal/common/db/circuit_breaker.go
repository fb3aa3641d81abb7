package db

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	pgx "github.com/jackc/pgx/v4"

	commonerrors "github.com/ecomcore/tokens/internal/common/errors"
	"github.com/ecomcore/tokens/internal/common/logger"
	"github.com/ecomcore/tokens/internal/observability/metrics"
)

type CircuitBreakerInterface interface {
	Call(ctx context.Context, fn func(context.Context) error) error
}

type CircuitBreaker struct {
	failures    atomic.Int32
	lastFailure atomic.Value
	threshold   int32
	timeout     time.Duration
	resetAfter  time.Duration
	log         *logger.Logger
}

func NewCircuitBreaker(threshold int32, timeout, resetAfter time.Duration, log *logger.Logger) *CircuitBreaker {
	cb := &CircuitBreaker{
		threshold:  threshold,
		timeout:    timeout,
		resetAfter: resetAfter,
		log:        log,
	}
	cb.lastFailure.Store(time.Time{})
	return cb
}

func (cb *CircuitBreaker) isOpen() bool {
	if cb.failures.Load() < cb.threshold {
		metrics.CircuitBreakerState.WithLabelValues("database").Set(0)
		return false
	}

	lastFailure := cb.lastFailure.Load().(time.Time)
	if lastFailure.IsZero() {
		metrics.CircuitBreakerState.WithLabelValues("database").Set(0)
		return false
	}

	if time.Since(lastFailure) > cb.resetAfter {
		cb.reset()
		metrics.CircuitBreakerState.WithLabelValues("database").Set(0)
		return false
	}

	metrics.CircuitBreakerState.WithLabelValues("database").Set(1)
	return true
}

func (cb *CircuitBreaker) recordFailure() {
	cb.failures.Add(1)
	cb.lastFailure.Store(time.Now())
	metrics.CircuitBreakerFailures.WithLabelValues("database").Inc()
	cb.log.Warn("database circuit breaker: failure recorded")
}

func (cb *CircuitBreaker) reset() {
	cb.failures.Store(0)
	cb.lastFailure.Store(time.Time{})
}

func (cb *CircuitBreaker) Call(ctx context.Context, fn func(context.Context) error) error {
	if cb.isOpen() {
		cb.log.Warn("database circuit breaker: circuit is open, rejecting request")
		return commonerrors.ErrCircuitOpen
	}

	callCtx, cancel := context.WithTimeout(ctx, cb.timeout)
	defer cancel()

	err := fn(callCtx)
	if err != nil {
		// An empty result set is a normal outcome, not a store failure.
		if !errors.Is(err, pgx.ErrNoRows) {
			cb.recordFailure()
		}
		return err
	}

	cb.reset()
	return nil
}
