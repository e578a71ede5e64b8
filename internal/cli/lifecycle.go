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

package cli

import (
	"context"
	"time"
)

// DefaultShutdownTimeout bounds graceful shutdown when the caller does not
// supply its own timeout.
const DefaultShutdownTimeout = 10 * time.Second

// Lifecycle represents a long-running gateway component, such as the HTTP
// server or the audit dispatcher.
type Lifecycle interface {
	// Start starts the component without blocking.
	Start()
	// Stop gracefully shuts down the component. In-flight requests are
	// given until ctx expires to drain.
	Stop(ctx context.Context)
}

// RunServer blocks until ctx is cancelled, then shuts down the server with
// shutdownTimeout and runs cleanup functions. A non-positive shutdownTimeout
// falls back to DefaultShutdownTimeout.
func RunServer(
	ctx context.Context,
	server Lifecycle,
	shutdownTimeout time.Duration,
	cleanupFns ...func(),
) {
	<-ctx.Done()

	if shutdownTimeout <= 0 {
		shutdownTimeout = DefaultShutdownTimeout
	}
	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		shutdownTimeout,
	)
	defer cancel()

	server.Stop(shutdownCtx)

	for _, fn := range cleanupFns {
		fn()
	}
}
