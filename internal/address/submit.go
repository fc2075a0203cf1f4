package address

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Submitter hands a completed address to whatever consumes it.
type Submitter interface {
	Submit(ctx context.Context, r Result) error
}

// SubmitterFunc adapts a function to Submitter.
type SubmitterFunc func(ctx context.Context, r Result) error

// Submit calls f(ctx, r).
func (f SubmitterFunc) Submit(ctx context.Context, r Result) error {
	return f(ctx, r)
}

// DefaultSubmitDelay is how long SimulatedSubmitter pretends to work.
const DefaultSubmitDelay = 800 * time.Millisecond

// SimulatedSubmitter stands in for a real backend: it waits, logs the
// result and reports success. Nothing is persisted.
type SimulatedSubmitter struct {
	Delay  time.Duration
	Logger *zap.Logger
}

// NewSimulatedSubmitter creates a submitter with the given delay. A negative
// delay is treated as zero.
func NewSimulatedSubmitter(delay time.Duration, log *zap.Logger) *SimulatedSubmitter {
	if delay < 0 {
		delay = 0
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &SimulatedSubmitter{Delay: delay, Logger: log}
}

// Submit waits for the configured delay unless ctx ends first.
func (s *SimulatedSubmitter) Submit(ctx context.Context, r Result) error {
	if s.Delay > 0 {
		timer := time.NewTimer(s.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return fmt.Errorf("submit address: %w", ctx.Err())
		case <-timer.C:
		}
	} else if err := ctx.Err(); err != nil {
		return fmt.Errorf("submit address: %w", err)
	}

	log := s.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log.Info("address submitted",
		zap.String("house_number", r.HouseNumber),
		zap.String("street", r.Street),
		zap.String("city", r.City),
		zap.String("ward", r.Ward),
	)
	return nil
}
