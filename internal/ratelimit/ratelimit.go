// Package ratelimit implements fixed-window request counting per client key.
package ratelimit

import (
	"context"
	"time"

	"github.com/Monkfuego/rentsetu-prereleasebe/internal/platform/logger"
)

const keyPrefix = "rentsetu:ratelimit"

// Store counts hits in a fixed window that starts with the first hit for a
// key. Increment returns the count including this hit and the time left until
// the window resets.
type Store interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, time.Duration, error)
}

type Policy struct {
	Name    string
	Limit   int
	Window  time.Duration
	Message string
}

type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

type Limiter struct {
	store  Store
	logger *logger.Logger
}

func NewLimiter(store Store, log *logger.Logger) *Limiter {
	return &Limiter{store: store, logger: log.Named("RateLimiter")}
}

// Allow counts the request against policy for client. Store failures let the
// request through.
func (l *Limiter) Allow(ctx context.Context, p Policy, client string) Decision {
	if client == "" {
		client = "unknown"
	}
	count, resetIn, err := l.store.Increment(ctx, keyPrefix+":"+p.Name+":"+client, p.Window)
	if err != nil {
		l.logger.Warn("RateLimiter.Allow: store failed, allowing request", "policy", p.Name, "client", client, "error", err.Error())
		return Decision{Allowed: true, Limit: p.Limit, Remaining: p.Limit}
	}

	remaining := p.Limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	d := Decision{Allowed: count <= int64(p.Limit), Limit: p.Limit, Remaining: remaining}
	if !d.Allowed {
		d.RetryAfter = resetIn
	}
	return d
}
