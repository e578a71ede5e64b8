// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Local is a per-process token-bucket strategy. Buckets are kept in a
// bounded map keyed by the resolved limit key and evicted after sitting idle.
// Rates are live-updated when the resolved config changes between calls for
// the same key.
//
// Being purely in-memory, Local only reports the sentinel pass/deny pair: it
// has no window TTL to derive a retry hint from.
type Local struct {
	mu      sync.Mutex
	entries map[string]*localEntry

	maxEntries   int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type localEntry struct {
	lim      *rate.Limiter
	requests int
	seconds  int
	lastSeen time.Time
}

// LocalOption configures a Local limiter.
type LocalOption func(*Local)

// WithMaxEntries bounds the number of tracked keys.
func WithMaxEntries(n int) LocalOption {
	return func(l *Local) { l.maxEntries = n }
}

// WithIdleTTL sets how long an untouched key survives before eviction.
func WithIdleTTL(d time.Duration) LocalOption {
	return func(l *Local) { l.idleTTL = d }
}

// WithCleanupEvery sets the janitor sweep interval.
func WithCleanupEvery(d time.Duration) LocalOption {
	return func(l *Local) { l.cleanupEvery = d }
}

// NewLocal creates a new Local limiter.
func NewLocal(
	opts ...LocalOption,
) *Local {
	l := &Local{
		entries:      make(map[string]*localEntry),
		maxEntries:   10000,
		idleTTL:      30 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// TryAcquire takes permits from the key's token bucket.
func (l *Local) TryAcquire(
	_ context.Context,
	key string,
	requests int,
	seconds int,
	permits int,
) Decision {
	lim := l.bucket(key, requests, seconds)

	if lim.AllowN(time.Now(), permits) {
		return admitted
	}
	return denied
}

// bucket returns the live bucket for key, creating or re-tuning it as needed.
func (l *Local) bucket(
	key string,
	requests int,
	seconds int,
) *rate.Limiter {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	if ent, ok := l.entries[key]; ok {
		ent.lastSeen = now
		if ent.requests != requests || ent.seconds != seconds {
			// A changed config swaps in a fresh bucket at the new rate.
			ent.lim = rate.NewLimiter(rateOf(requests, seconds), requests)
			ent.requests = requests
			ent.seconds = seconds
		}
		return ent.lim
	}

	if len(l.entries) >= l.maxEntries {
		l.evictOldestLocked(now)
	}

	ent := &localEntry{
		lim:      rate.NewLimiter(rateOf(requests, seconds), requests),
		requests: requests,
		seconds:  seconds,
		lastSeen: now,
	}
	l.entries[key] = ent
	return ent.lim
}

// evictOldestLocked drops idle keys, falling back to the least recently seen
// key when everything is still live. Keys are attacker-controlled input, so
// the map must never grow unbounded.
func (l *Local) evictOldestLocked(
	now time.Time,
) {
	cutoff := now.Add(-l.idleTTL)
	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}

	if len(l.entries) < l.maxEntries {
		return
	}

	var oldestKey string
	var oldest time.Time
	for k, ent := range l.entries {
		if oldestKey == "" || ent.lastSeen.Before(oldest) {
			oldestKey = k
			oldest = ent.lastSeen
		}
	}
	delete(l.entries, oldestKey)
}

// Cleanup removes keys idle past the TTL.
func (l *Local) Cleanup() {
	cutoff := time.Now().Add(-l.idleTTL)

	l.mu.Lock()
	defer l.mu.Unlock()

	for k, ent := range l.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(l.entries, k)
		}
	}
}

// Len reports the number of tracked keys.
func (l *Local) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// StartJanitor sweeps idle keys periodically until ctx is cancelled.
func (l *Local) StartJanitor(
	ctx context.Context,
) {
	if l.cleanupEvery <= 0 {
		return
	}

	t := time.NewTicker(l.cleanupEvery)
	go func() {
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				l.Cleanup()
			}
		}
	}()
}

func rateOf(
	requests int,
	seconds int,
) rate.Limit {
	return rate.Limit(float64(requests) / float64(seconds))
}
