package retry

import (
	"context"
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
)

// Policy controls backoff between attempts. Zero values fall back to the
// defaults from DefaultPolicy.
type Policy struct {
	MaxAttempts    int
	InitialDelay   time.Duration
	MaxDelay       time.Duration
	Multiplier     float64
	JitterFraction float64
	Logger         *zap.Logger
}

func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts:    3,
		InitialDelay:   500 * time.Millisecond,
		MaxDelay:       5 * time.Second,
		Multiplier:     2.0,
		JitterFraction: 0.1,
		Logger:         zap.NewNop(),
	}
}

func (p Policy) withDefaults() Policy {
	def := DefaultPolicy()
	if p.MaxAttempts == 0 {
		p.MaxAttempts = def.MaxAttempts
	}
	if p.InitialDelay == 0 {
		p.InitialDelay = def.InitialDelay
	}
	if p.MaxDelay == 0 {
		p.MaxDelay = def.MaxDelay
	}
	if p.Multiplier == 0 {
		p.Multiplier = def.Multiplier
	}
	if p.Logger == nil {
		p.Logger = zap.NewNop()
	}
	return p
}

// Do runs the operation until it succeeds, attempts are exhausted, or the
// context is canceled.
func Do(ctx context.Context, policy Policy, operation func() error) error {
	policy = policy.withDefaults()

	var lastErr error
	delay := policy.InitialDelay

	for attempt := 1; attempt <= policy.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := operation()
		if err == nil {
			if attempt > 1 {
				policy.Logger.Info("Operation succeeded after retry",
					zap.Int("attempt", attempt),
				)
			}
			return nil
		}
		lastErr = err

		if attempt == policy.MaxAttempts {
			break
		}

		policy.Logger.Warn("Operation failed, retrying",
			zap.Error(err),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", policy.MaxAttempts),
			zap.Duration("delay", delay),
		)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(addJitter(delay, policy.JitterFraction)):
		}

		delay = time.Duration(math.Min(float64(policy.MaxDelay), float64(delay)*policy.Multiplier))
	}

	return lastErr
}

// DoWithResult is Do for operations that return a value.
func DoWithResult[T any](ctx context.Context, policy Policy, operation func() (T, error)) (T, error) {
	var result T
	err := Do(ctx, policy, func() error {
		var err error
		result, err = operation()
		return err
	})
	return result, err
}

func addJitter(duration time.Duration, fraction float64) time.Duration {
	if fraction <= 0 {
		return duration
	}
	jitter := time.Duration(rand.Float64() * float64(duration) * fraction)
	if rand.Intn(2) == 0 {
		return duration - jitter
	}
	return duration + jitter
}
