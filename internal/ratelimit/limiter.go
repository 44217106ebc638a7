package ratelimit

import (
	"context"
	"sync"

	"golang.org/x/time/rate"
)

// Source identifies an upstream data provider
type Source string

const (
	// SourceScreener is the company fundamentals site
	SourceScreener Source = "screener"
	// SourceYahoo is the price history chart API
	SourceYahoo Source = "yahoo"
)

// Limiter paces requests per upstream source.
type Limiter struct {
	limiters map[Source]*rate.Limiter
	mu       sync.RWMutex
}

// New creates a Limiter from requests-per-second settings. A rate of zero or
// less leaves the source unlimited.
func New(rps map[Source]float64) *Limiter {
	l := &Limiter{
		limiters: make(map[Source]*rate.Limiter, len(rps)),
	}
	for src, r := range rps {
		l.Set(src, r)
	}
	return l
}

// Set replaces the pacing for a source
func (l *Limiter) Set(src Source, rps float64) {
	limit := rate.Inf
	if rps > 0 {
		limit = rate.Limit(rps)
	}

	l.mu.Lock()
	l.limiters[src] = rate.NewLimiter(limit, 1)
	l.mu.Unlock()
}

// Wait blocks until the limiter permits a request to the given source.
// It returns an error if the context is canceled before the request can proceed.
func (l *Limiter) Wait(ctx context.Context, src Source) error {
	if l == nil {
		return ctx.Err()
	}

	l.mu.RLock()
	limiter, exists := l.limiters[src]
	l.mu.RUnlock()

	if !exists {
		return ctx.Err()
	}

	return limiter.Wait(ctx)
}

// Allow reports whether a request to the given source may happen now
func (l *Limiter) Allow(src Source) bool {
	if l == nil {
		return true
	}

	l.mu.RLock()
	limiter, exists := l.limiters[src]
	l.mu.RUnlock()

	if !exists {
		return true
	}

	return limiter.Allow()
}
