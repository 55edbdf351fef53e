package typeahead

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/timerz"
)

// dispatcher delivers session events to listeners asynchronously.
//
// The dispatcher:
//   - Runs listeners off the keystroke path so a slow listener never delays
//     matching
//   - Recovers listener panics so one listener cannot crash the process
//   - Applies the listener timeout to the context each call receives
//   - Rejects deliveries when the queue is full instead of growing
//   - Drains queued deliveries on close
type dispatcher[T any] struct {
	// Time abstraction for deterministic testing
	clock  clockz.Clock
	logger timerz.Logger

	// Channel for receiving deliveries
	tasks chan delivery[T]

	// WaitGroup to track worker goroutines for graceful shutdown
	wg sync.WaitGroup

	mu sync.RWMutex

	// Timeout applied to every listener call. Zero means none.
	timeout time.Duration

	closed bool

	// Metrics pointer for atomic updates
	metrics *Metrics
}

// delivery is one listener call.
type delivery[T any] struct {
	ctx      context.Context
	event    Event[T]
	listener *listenerEntry[T]
}

// newDispatcher creates and starts a dispatcher with workers goroutines
// reading from a queue of queueSize deliveries.
func newDispatcher[T any](cfg config, metrics *Metrics) *dispatcher[T] {
	d := &dispatcher[T]{
		clock:   cfg.clock,
		logger:  cfg.logger,
		tasks:   make(chan delivery[T], cfg.queueSize),
		timeout: cfg.listenerTimeout,
		metrics: metrics,
	}

	for i := 0; i < cfg.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	return d
}

// submit queues a delivery without blocking.
//
// Returns ErrQueueFull when no buffer space is left and ErrDispatchClosed
// after close.
func (d *dispatcher[T]) submit(task delivery[T]) error {
	// The send happens under the read lock so close() cannot close the
	// channel between the closed check and the send.
	d.mu.RLock()
	defer d.mu.RUnlock()

	if d.closed {
		return ErrDispatchClosed
	}

	select {
	case d.tasks <- task:
		atomic.AddInt64(&d.metrics.QueueDepth, 1)
		return nil
	default:
		atomic.AddInt64(&d.metrics.ListenersRejected, 1)
		return ErrQueueFull
	}
}

// capacity returns the queue size.
func (d *dispatcher[T]) capacity() int64 {
	return int64(cap(d.tasks))
}

// close stops accepting deliveries, lets workers finish the queued ones
// and waits for them to exit.
func (d *dispatcher[T]) close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.tasks)
	d.wg.Wait()
}

// worker is the main loop for worker goroutines.
func (d *dispatcher[T]) worker() {
	defer d.wg.Done()

	for task := range d.tasks {
		atomic.AddInt64(&d.metrics.QueueDepth, -1)

		if err := d.deliverSafely(task); err != nil {
			if expired(err) {
				atomic.AddInt64(&d.metrics.ListenersExpired, 1)
			} else {
				atomic.AddInt64(&d.metrics.ListenersFailed, 1)
			}
			d.logger.Warn("typeahead", "dispatch", "listener failed",
				"session", task.event.Session,
				"listener", task.listener.key.name,
				"event", task.event.Kind.String(),
				"error", err)
			continue
		}
		atomic.AddInt64(&d.metrics.ListenersDispatched, 1)
	}
}

// expired reports whether a listener gave up on its context: the registry
// shutting down or the listener timeout running out. Other errors count as
// failures even when the context is already done.
func expired(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// deliverSafely runs a listener with panic recovery.
func (d *dispatcher[T]) deliverSafely(task delivery[T]) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrListenerPanicked, r)
		}
	}()
	return d.deliver(task)
}

// deliver runs the listener callback under the configured timeout.
func (d *dispatcher[T]) deliver(task delivery[T]) error {
	ctx := task.ctx
	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = d.clock.WithTimeout(ctx, d.timeout)
		defer cancel()
	}
	return task.listener.callback(ctx, task.event)
}
