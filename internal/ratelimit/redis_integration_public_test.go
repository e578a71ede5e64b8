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

package ratelimit_test

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/authgate-io/authgate/internal/ratelimit"
)

// RedisIntegrationPublicTestSuite exercises the fixed-window strategy against
// a real counter store. Set AUTHGATE_TEST_REDIS_ADDR (e.g. "localhost:6379")
// to run it.
type RedisIntegrationPublicTestSuite struct {
	suite.Suite

	client *redis.Client
}

func TestRedisIntegrationPublicTestSuite(t *testing.T) {
	suite.Run(t, new(RedisIntegrationPublicTestSuite))
}

func (suite *RedisIntegrationPublicTestSuite) SetupSuite() {
	addr := os.Getenv("AUTHGATE_TEST_REDIS_ADDR")
	if addr == "" {
		suite.T().Skip("AUTHGATE_TEST_REDIS_ADDR not set")
	}

	suite.client = redis.NewClient(&redis.Options{Addr: addr})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	suite.Require().NoError(suite.client.Ping(ctx).Err())
}

func (suite *RedisIntegrationPublicTestSuite) TearDownSuite() {
	if suite.client != nil {
		_ = suite.client.Close()
	}
}

func (suite *RedisIntegrationPublicTestSuite) TestTryAcquireMonotonicWindow() {
	l := ratelimit.NewRedis(slog.Default(), suite.client)
	ctx := context.Background()
	key := "it-" + uuid.New().String()

	const requests = 5
	const seconds = 60

	prev := requests
	for i := 0; i < requests; i++ {
		d := l.TryAcquire(ctx, key, requests, seconds, 1)
		suite.True(d.Allowed(), "call %d should be admitted", i+1)
		suite.Less(d.Remaining, prev, "remaining must strictly decrease")
		prev = d.Remaining
	}
	suite.Zero(prev, "last admitted call leaves zero remaining")

	d := l.TryAcquire(ctx, key, requests, seconds, 1)
	suite.False(d.Allowed())
	suite.Positive(d.RetryAfter)
	suite.LessOrEqual(d.RetryAfter, time.Duration(seconds)*time.Second)
}

func (suite *RedisIntegrationPublicTestSuite) TestTryAcquireWindowReset() {
	l := ratelimit.NewRedis(slog.Default(), suite.client)
	ctx := context.Background()
	key := "it-" + uuid.New().String()

	// Fixed windows admit a fresh burst as soon as the window expires, which
	// allows up to 2x the configured rate across a boundary. Documented
	// property of the strategy.
	suite.True(l.TryAcquire(ctx, key, 1, 1, 1).Allowed())
	suite.False(l.TryAcquire(ctx, key, 1, 1, 1).Allowed())

	time.Sleep(1100 * time.Millisecond)

	suite.True(l.TryAcquire(ctx, key, 1, 1, 1).Allowed())
}

func (suite *RedisIntegrationPublicTestSuite) TestTryAcquireFailsOpen() {
	down := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer func() { _ = down.Close() }()

	l := ratelimit.NewRedis(slog.Default(), down)

	d := l.TryAcquire(context.Background(), "k", 1, 1, 1)
	suite.True(d.Allowed())
}
