// Package queue implements a bounded-concurrency task queue with
// rate-limit-aware exponential-backoff retry. It mediates access to backends
// that enforce a global concurrency ceiling: naive parallel dispatch against
// such a backend causes cascading 429s, so at most MaxConcurrency units of
// work run at once and rate-limit rejections are retried with jittered
// backoff while every other error class fails immediately.
package queue

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/giantswarm/agent-testing/internal/fault"
)

// ErrShuttingDown is returned for pending units rejected by Shutdown.
var ErrShuttingDown = errors.New("queue is shutting down")

// WorkFunc is one unit of work executed against the backend.
type WorkFunc[T any] func(ctx context.Context) (T, error)

// ProgressFunc receives human-readable progress notifications for a unit of
// work: dispatches and retries, with active/queued counts and the attempt
// number. This is the only per-unit feedback channel.
type ProgressFunc func(msg string)

type settled[T any] struct {
	value T
	err   error
}

// item is one pending unit of work. It is owned exclusively by the queue
// from enqueue until it settles; attemptsMade counts scheduled retries.
type item[T any] struct {
	ctx          context.Context
	work         WorkFunc[T]
	progress     ProgressFunc
	attemptsMade int
	settled      bool
	done         chan settled[T]
}

func (it *item[T]) notify(msg string) {
	if it.progress != nil {
		it.progress(msg)
	}
}

// Queue is a bounded-concurrency retry queue. Construct instances with New;
// independent backends get independent instances.
type Queue[T any] struct {
	cfg Config

	// jitter returns a uniform value in [0, 0.2). Replaced in tests for
	// deterministic backoff.
	jitter func() float64

	mu          sync.Mutex
	pending     []*item[T]
	active      int
	dispatching bool
	down        bool
}

// New creates a queue with the given configuration.
func New[T any](cfg Config) (*Queue[T], error) {
	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid queue config: %w", err)
	}
	return &Queue[T]{
		cfg:    cfg,
		jitter: func() float64 { return rand.Float64() * 0.2 },
	}, nil
}

// Enqueue submits a unit of work and blocks until it settles. It returns
// immediately with a QueueFullError when the pending list is at capacity,
// without queuing. Each unit settles exactly once: with the work's own
// result, with a RetriesExhaustedError once the retry budget is spent, or
// with ErrShuttingDown.
//
// Callers wanting promise-like behavior run Enqueue in its own goroutine;
// the queue itself provides the concurrency bound.
func (q *Queue[T]) Enqueue(ctx context.Context, work WorkFunc[T], onProgress ProgressFunc) (T, error) {
	var zero T

	q.mu.Lock()
	if q.down {
		q.mu.Unlock()
		return zero, ErrShuttingDown
	}
	if len(q.pending) >= q.cfg.MaxQueueSize {
		size := len(q.pending)
		q.mu.Unlock()
		return zero, &fault.QueueFullError{QueueSize: size}
	}

	it := &item[T]{
		ctx:      ctx,
		work:     work,
		progress: onProgress,
		done:     make(chan settled[T], 1),
	}
	q.pending = append(q.pending, it)
	q.mu.Unlock()

	q.dispatch()

	out := <-it.done
	return out.value, out.err
}

// Size returns the number of pending units not yet dispatched.
func (q *Queue[T]) Size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// ActiveCount returns the number of in-flight units.
func (q *Queue[T]) ActiveCount() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active
}

// IsBusy reports whether any work is in flight or pending.
func (q *Queue[T]) IsBusy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.active > 0 || len(q.pending) > 0
}

// Shutdown rejects all pending units with ErrShuttingDown and clears the
// queue. In-flight units are not cancelled; their outcomes still settle.
// The host application calls this from its own signal handling -- the queue
// registers no process-level listeners itself.
func (q *Queue[T]) Shutdown() {
	q.mu.Lock()
	q.down = true
	pending := q.pending
	q.pending = nil
	q.mu.Unlock()

	var zero T
	for _, it := range pending {
		q.settle(it, zero, ErrShuttingDown)
	}
}

// dispatch moves pending units into flight up to the concurrency cap. The
// dispatching flag keeps the scan single-flight: a pass triggered by a
// finishing unit and one triggered by a fresh enqueue must not both count
// the same free slot.
func (q *Queue[T]) dispatch() {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.dispatching {
		return
	}
	q.dispatching = true
	defer func() { q.dispatching = false }()

	for !q.down && q.active < q.cfg.MaxConcurrency && len(q.pending) > 0 {
		it := q.pending[0]
		q.pending = q.pending[1:]
		q.active++
		it.notify(fmt.Sprintf("dispatching request (attempt %d, active %d, queued %d)",
			it.attemptsMade+1, q.active, len(q.pending)))
		go q.run(it)
	}
}

func (q *Queue[T]) run(it *item[T]) {
	var zero T

	var value T
	var err error
	if ctxErr := it.ctx.Err(); ctxErr != nil {
		err = ctxErr
	} else {
		value, err = it.work(it.ctx)
	}

	q.mu.Lock()
	q.active--
	q.mu.Unlock()

	switch {
	case err == nil:
		q.settle(it, value, nil)
	case fault.IsRateLimit(err):
		q.retryOrFail(it, err)
	default:
		// Every non-rate-limit error is terminal on first occurrence.
		q.settle(it, zero, err)
	}

	q.dispatch()
}

// retryOrFail schedules another attempt for a rate-limited unit, or settles
// it with a terminal error once the budget is spent. Retried units re-enter
// at the back of the queue so never-yet-attempted work is dispatched first;
// this reordering relative to fresh enqueues is intentional.
func (q *Queue[T]) retryOrFail(it *item[T], cause error) {
	var zero T

	if it.attemptsMade >= q.cfg.MaxAttempts {
		q.settle(it, zero, &fault.RetriesExhaustedError{Attempts: it.attemptsMade, Last: cause})
		return
	}

	it.attemptsMade++
	delay := q.retryDelay(it.attemptsMade)

	q.mu.Lock()
	active, queued := q.active, len(q.pending)
	q.mu.Unlock()
	it.notify(fmt.Sprintf("rate limited, retry %d/%d in %s (active %d, queued %d)",
		it.attemptsMade, q.cfg.MaxAttempts, delay.Round(time.Millisecond), active, queued))

	time.AfterFunc(delay, func() {
		q.mu.Lock()
		if q.down {
			q.mu.Unlock()
			q.settle(it, zero, ErrShuttingDown)
			return
		}
		q.pending = append(q.pending, it)
		q.mu.Unlock()
		q.dispatch()
	})
}

// retryDelay computes the delay before retry attempt n (1-based):
// min(base * 1.5^(n-1) * (1 + jitter), max), jitter uniform in [0, 0.2).
// The jitter desynchronizes items that were rejected in the same tick so
// they do not retry as a storm. Without exponential backoff the delay is
// constant at BaseDelay.
func (q *Queue[T]) retryDelay(attempt int) time.Duration {
	if !q.cfg.ExponentialBackoff {
		return q.cfg.BaseDelay
	}
	d := float64(q.cfg.BaseDelay) * math.Pow(1.5, float64(attempt-1)) * (1 + q.jitter())
	if d > float64(q.cfg.MaxDelay) {
		return q.cfg.MaxDelay
	}
	return time.Duration(d)
}

// settle delivers the final outcome for a unit. Settling twice is a
// programmer error and panics rather than silently dropping a result.
func (q *Queue[T]) settle(it *item[T], value T, err error) {
	q.mu.Lock()
	if it.settled {
		q.mu.Unlock()
		panic("queue: unit of work settled twice")
	}
	it.settled = true
	q.mu.Unlock()

	it.done <- settled[T]{value: value, err: err}
}
