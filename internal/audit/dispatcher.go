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

package audit

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Dispatcher decouples persistence and shipping from the response path: a
// fixed pool of workers drains a bounded queue, and submissions that would
// block are dropped and counted rather than adding latency to the caller.
// Persistence and shipping failures are logged and dropped, never retried
// and never surfaced to the HTTP caller.
type Dispatcher struct {
	logger  *slog.Logger
	store   Store
	shipper Shipper

	workers    int
	queue      chan job
	workerCtx  context.Context
	cancel     context.CancelFunc
	wg         sync.WaitGroup
	jobTimeout time.Duration

	mu      sync.RWMutex
	stopped bool

	dropped         prometheus.Counter
	persistFailures prometheus.Counter
	shipFailures    prometheus.Counter
}

type job struct {
	rec     Record
	persist bool
}

// DispatcherOption configures a Dispatcher.
type DispatcherOption func(*Dispatcher)

// WithWorkers sets the worker count.
func WithWorkers(n int) DispatcherOption {
	return func(d *Dispatcher) { d.workers = n }
}

// WithQueueDepth sets the bounded queue capacity.
func WithQueueDepth(n int) DispatcherOption {
	return func(d *Dispatcher) { d.queue = make(chan job, n) }
}

// WithJobTimeout bounds each persistence/shipping attempt.
func WithJobTimeout(d time.Duration) DispatcherOption {
	return func(disp *Dispatcher) { disp.jobTimeout = d }
}

// WithRegisterer registers the dispatcher's counters with reg.
func WithRegisterer(reg prometheus.Registerer) DispatcherOption {
	return func(d *Dispatcher) {
		reg.MustRegister(d.dropped, d.persistFailures, d.shipFailures)
	}
}

// NewDispatcher creates a new Dispatcher. store and shipper may each be nil,
// disabling persistence or shipping respectively.
func NewDispatcher(
	logger *slog.Logger,
	store Store,
	shipper Shipper,
	opts ...DispatcherOption,
) *Dispatcher {
	d := &Dispatcher{
		logger:     logger,
		store:      store,
		shipper:    shipper,
		workers:    4,
		queue:      make(chan job, 1024),
		jobTimeout: 5 * time.Second,
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_audit_dropped_total",
			Help: "Audit records dropped because the dispatch queue was full.",
		}),
		persistFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_audit_persist_failures_total",
			Help: "Audit records that failed durable persistence.",
		}),
		shipFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "authgate_audit_ship_failures_total",
			Help: "Audit records that failed log sink shipping.",
		}),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Start launches the worker pool.
func (d *Dispatcher) Start() {
	d.workerCtx, d.cancel = context.WithCancel(context.Background())

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
}

// Stop drains queued work and stops the pool. Stop is idempotent, and
// records dispatched after Stop are dropped rather than enqueued.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if d.stopped {
		d.mu.Unlock()
		return
	}
	d.stopped = true
	close(d.queue)
	d.mu.Unlock()

	d.wg.Wait()
	if d.cancel != nil {
		d.cancel()
	}
}

// Dispatch queues the record for shipping and, when persist is set, durable
// persistence. Returns false when the record was dropped, either because the
// queue was full or because the dispatcher has already stopped.
func (d *Dispatcher) Dispatch(
	rec Record,
	persist bool,
) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.stopped {
		d.dropped.Inc()
		d.logger.Warn(
			"audit dispatcher stopped, dropping record",
			slog.String("record_id", rec.ID),
		)
		return false
	}

	select {
	case d.queue <- job{rec: rec, persist: persist}:
		return true
	default:
		d.dropped.Inc()
		d.logger.Warn(
			"audit dispatch queue full, dropping record",
			slog.String("record_id", rec.ID),
		)
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()

	for j := range d.queue {
		d.process(j)
	}
}

func (d *Dispatcher) process(
	j job,
) {
	ctx, cancel := context.WithTimeout(d.workerCtx, d.jobTimeout)
	defer cancel()

	if j.persist && d.store != nil {
		if err := d.store.Save(ctx, j.rec); err != nil {
			d.persistFailures.Inc()
			d.logger.Warn(
				"failed to persist audit record",
				slog.String("record_id", j.rec.ID),
				slog.String("error", err.Error()),
			)
		}
	}

	if d.shipper != nil {
		if err := d.shipper.Ship(ctx, j.rec); err != nil {
			d.shipFailures.Inc()
			d.logger.Warn(
				"failed to ship audit record",
				slog.String("record_id", j.rec.ID),
				slog.String("error", err.Error()),
			)
		}
	}
}
