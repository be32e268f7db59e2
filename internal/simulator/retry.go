package simulator

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/GoSim-25-26J-441/platform-dse/pkg/config"
)

// RetryPolicy decides whether a simulation that could not be attempted is
// launched again. A nil policy never retries.
type RetryPolicy struct {
	maxRetries int
	backoff    string // exponential, linear, constant
	base       time.Duration
}

// NewRetryPolicy returns nil when cfg is nil or disabled
func NewRetryPolicy(cfg *config.RetryPolicy) *RetryPolicy {
	if cfg == nil || !cfg.Enabled {
		return nil
	}
	return &RetryPolicy{
		maxRetries: cfg.MaxRetries,
		backoff:    cfg.Backoff,
		base:       time.Duration(cfg.BaseMs) * time.Millisecond,
	}
}

// ShouldRetry reports whether res, produced by the given attempt (0 for the
// first launch), warrants another launch. Only infrastructure errors are
// retried, and never a cancelled search.
func (p *RetryPolicy) ShouldRetry(attempt int, res Result) bool {
	if p == nil || attempt >= p.maxRetries || res.Err == nil {
		return false
	}
	return !errors.Is(res.Err, context.Canceled) && !errors.Is(res.Err, context.DeadlineExceeded)
}

// Backoff returns the wait before the given retry (1 for the first)
func (p *RetryPolicy) Backoff(retry int) time.Duration {
	if p == nil || retry <= 0 {
		return 0
	}
	switch p.backoff {
	case "linear":
		return p.base * time.Duration(retry)
	case "constant":
		return p.base
	default:
		return p.base * time.Duration(math.Pow(2, float64(retry-1)))
	}
}

// MaxRetries returns the retry bound
func (p *RetryPolicy) MaxRetries() int {
	if p == nil {
		return 0
	}
	return p.maxRetries
}
