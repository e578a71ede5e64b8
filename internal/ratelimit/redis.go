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
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a distributed fixed-window strategy backed by a shared counter
// store. Each check is a single pipelined round trip: increment the window
// counter, arm the window TTL on first increment, and read the TTL back for
// the retry hint.
//
// Fixed windows admit bursts at window boundaries (up to twice the configured
// rate across a boundary). This is the accepted trade-off of the strategy,
// not a defect.
//
// Store errors fail open: quota enforcement is sacrificed for availability.
type Redis struct {
	client redis.UniversalClient
	logger *slog.Logger
	prefix string
}

// RedisOption configures a Redis limiter.
type RedisOption func(*Redis)

// WithKeyPrefix sets the namespace prepended to every counter key.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *Redis) { r.prefix = strings.Trim(prefix, ":") }
}

// NewRedis creates a new Redis limiter.
func NewRedis(
	logger *slog.Logger,
	client redis.UniversalClient,
	opts ...RedisOption,
) *Redis {
	r := &Redis{
		client: client,
		logger: logger,
		prefix: "authgate:ratelimit",
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// TryAcquire increments the fixed-window counter for key and admits while
// the window still has capacity.
func (r *Redis) TryAcquire(
	ctx context.Context,
	key string,
	requests int,
	seconds int,
	permits int,
) Decision {
	window := time.Duration(seconds) * time.Second
	counterKey := r.prefix + ":" + key

	pipe := r.client.TxPipeline()
	counter := pipe.IncrBy(ctx, counterKey, int64(permits))
	pipe.ExpireNX(ctx, counterKey, window)
	ttl := pipe.PTTL(ctx, counterKey)

	if _, err := pipe.Exec(ctx); err != nil {
		r.logger.Warn(
			"rate limit store unreachable, failing open",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
		return admitted
	}

	remaining := requests - int(counter.Val())
	if remaining >= 0 {
		return Decision{Remaining: remaining}
	}

	wait := ttl.Val()
	if wait <= 0 {
		// A live counter without an expiry would deny forever. Re-arm it.
		if err := r.client.Expire(ctx, counterKey, window).Err(); err != nil {
			r.logger.Warn(
				"failed to re-arm rate limit window",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		wait = window
	}

	return Decision{Remaining: remaining, RetryAfter: wait}
}
