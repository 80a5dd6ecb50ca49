package retry

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy describes how failed calls are retried.
type Policy struct {
	MaxRetries int
	Delay      time.Duration
	Sleep      SleepFunc
	Logger     *zap.Logger
}

// DefaultPolicy retries three times with a two second pause.
func DefaultPolicy() Policy {
	return Policy{
		MaxRetries: 3,
		Delay:      2 * time.Second,
	}
}

// NewPolicy builds a policy from configuration. An unset configuration
// yields DefaultPolicy.
func NewPolicy(cfg Config, logger *zap.Logger) Policy {
	if cfg == (Config{}) {
		p := DefaultPolicy()
		p.Logger = logger
		return p
	}
	return Policy{
		MaxRetries: cfg.MaxRetries,
		Delay:      time.Duration(cfg.DelayMS) * time.Millisecond,
		Logger:     logger,
	}
}

// Do runs fn until it succeeds, fails with a non-transient error or runs
// out of retries.
func Do[T any](ctx context.Context, p Policy, op string, fn func(ctx context.Context) (T, error)) (T, error) {
	sleep := p.Sleep
	if sleep == nil {
		sleep = contextSleep
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	var zero T
	for attempt := 0; ; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}

		status := StatusOf(err)
		if status < 500 {
			logger.Debug("Call failed, not retrying",
				zap.String("op", op),
				zap.Int("status", status),
				zap.Error(err),
			)
			return zero, err
		}

		if attempt >= p.MaxRetries {
			logger.Warn("Max retries reached",
				zap.String("op", op),
				zap.Int("attempts", attempt+1),
				zap.Error(err),
			)
			return zero, &ExhaustedError{Attempts: attempt + 1, Err: err}
		}

		logger.Warn("Call failed, retrying",
			zap.String("op", op),
			zap.Int("attempt", attempt+1),
			zap.Int("status", status),
			zap.Duration("delay", p.Delay),
		)

		if err := sleep(ctx, p.Delay); err != nil {
			return zero, err
		}
	}
}

func contextSleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
