package toolchain

import (
	"context"
	"errors"
	"time"

	"cdetect/internal/config"
)

// ErrScratchBusy is returned when a bounded RetryPolicy gives up waiting
// for the scratch file.
var ErrScratchBusy = errors.New("scratch probe file is held by another probe")

// RetryPolicy controls waiting for a scratch file held by a concurrent
// probe.
type RetryPolicy struct {
	MaxAttempts int // 0 means retry until the file is free
	Backoff     time.Duration

	// Sleep replaces the context-aware wait, mainly for tests.
	Sleep func(time.Duration)
}

// DefaultRetry waits 1ms between attempts, forever.
var DefaultRetry = RetryPolicy{Backoff: config.DefaultBackoff}

// RetryFromConfig builds a policy from configuration.
func RetryFromConfig(cfg config.Config) RetryPolicy {
	return RetryPolicy{MaxAttempts: cfg.RetryAttempts, Backoff: cfg.RetryBackoff}
}

// exhausted reports whether attempt (1-based) was the last allowed one.
func (p RetryPolicy) exhausted(attempt int) bool {
	return p.MaxAttempts > 0 && attempt >= p.MaxAttempts
}

func (p RetryPolicy) wait(ctx context.Context) error {
	if p.Sleep != nil {
		p.Sleep(p.Backoff)
		return ctx.Err()
	}
	if p.Backoff <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.Backoff)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
