package catalog

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// BreakerConfig configures the circuit breaker in front of a Store.
type BreakerConfig struct {
	Name             string
	MaxRequests      uint32        // requests allowed through while half-open
	Interval         time.Duration // window after which closed-state counts reset
	Timeout          time.Duration // how long the breaker stays open
	FailureThreshold float64       // failure ratio that trips the breaker
	MinRequests      uint32        // requests needed before the ratio is evaluated
}

// DefaultBreakerConfig returns the settings used by the server.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxRequests:      5,
		Interval:         30 * time.Second,
		Timeout:          60 * time.Second,
		FailureThreshold: 0.8,
		MinRequests:      5,
	}
}

// BreakerStore guards a Store with a circuit breaker. While open, calls fail with
// ErrStoreUnavailable without reaching the backend.
type BreakerStore struct {
	next Store
	cb   *gobreaker.CircuitBreaker
}

// NewBreakerStore wraps next.
func NewBreakerStore(next Store, cfg BreakerConfig, logger *zap.Logger) *BreakerStore {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return failureRatio >= cfg.FailureThreshold
		},
		IsSuccessful: isBackendHealthy,
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("store circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})
	return &BreakerStore{next: next, cb: cb}
}

// isBackendHealthy does not count a cancelled or timed-out caller against the backend.
func isBackendHealthy(err error) bool {
	return err == nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}

// ListAll delegates through the breaker.
func (s *BreakerStore) ListAll(ctx context.Context) ([]Record, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		return s.next.ListAll(ctx)
	})
	if err != nil {
		return nil, breakerErr(err)
	}
	return out.([]Record), nil
}

type findResult struct {
	record Record
	found  bool
}

// FindByKey delegates through the breaker. A missing key is not a failure.
func (s *BreakerStore) FindByKey(ctx context.Context, key int64) (Record, bool, error) {
	out, err := s.cb.Execute(func() (interface{}, error) {
		r, ok, err := s.next.FindByKey(ctx, key)
		return findResult{record: r, found: ok}, err
	})
	if err != nil {
		return Record{}, false, breakerErr(err)
	}
	res := out.(findResult)
	return res.record, res.found, nil
}

// State returns the breaker state name ("closed", "half-open", "open").
func (s *BreakerStore) State() string {
	return s.cb.State().String()
}

func breakerErr(err error) error {
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return errors.Join(ErrStoreUnavailable, err)
	}
	return err
}
