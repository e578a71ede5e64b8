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

// Package ratelimit provides per-key admission control with local,
// distributed, and no-op strategies, plus resolution of which limit applies
// to a given request.
package ratelimit

import (
	"context"
	"time"
)

// Decision is the outcome of a TryAcquire call. A non-negative Remaining with
// a zero RetryAfter admits the call; a negative Remaining denies it, with
// RetryAfter carrying the suggested retry delay when the strategy can
// determine one.
type Decision struct {
	// Remaining is the permit count left in the current window after this
	// call. Negative means the call was denied.
	Remaining int
	// RetryAfter is the suggested retry delay on denial, zero when unknown.
	RetryAfter time.Duration
}

// Allowed reports whether the call was admitted.
func (d Decision) Allowed() bool {
	return d.Remaining >= 0
}

// Sentinel decisions for strategies that cannot report precise counts.
var (
	admitted = Decision{Remaining: 0}
	denied   = Decision{Remaining: -1}
)

// Limiter decides whether a keyed action may proceed right now.
type Limiter interface {
	// TryAcquire attempts to take permits from the window identified by key,
	// sized requests per seconds.
	TryAcquire(
		ctx context.Context,
		key string,
		requests int,
		seconds int,
		permits int,
	) Decision
}

// ensure all strategies implement Limiter at compile time.
var (
	_ Limiter = (*Noop)(nil)
	_ Limiter = (*Local)(nil)
	_ Limiter = (*Redis)(nil)
)

// Noop is the pass-through strategy used when no limiting is configured.
type Noop struct{}

// NewNoop creates a new Noop limiter.
func NewNoop() *Noop {
	return &Noop{}
}

// TryAcquire always admits.
func (n *Noop) TryAcquire(
	_ context.Context,
	_ string,
	_ int,
	_ int,
	_ int,
) Decision {
	return admitted
}
