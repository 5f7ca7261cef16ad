package asyncbus

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/randalmurphal/asyncbus/pkg/asyncbus/config"
	"github.com/randalmurphal/asyncbus/pkg/asyncbus/observability"
)

// State is the lifecycle state of a bus.
type State int32

const (
	// StateNotStarted is the state before Start; events buffer in the queue.
	StateNotStarted State = iota
	// StateStarted means the dispatch worker is running.
	StateStarted
	// StateStopped means Stop completed and the worker has exited.
	StateStopped
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateNotStarted:
		return "not started"
	case StateStarted:
		return "started"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	// DefaultCapacity is the queue capacity used when Config.Capacity is unset.
	DefaultCapacity = 10000

	// DefaultPollInterval is the WaitUntilEmpty sampling interval used when
	// Config.PollInterval is unset.
	DefaultPollInterval = 10 * time.Millisecond
)

// Config configures bus behavior.
type Config[T any] struct {
	// Capacity is the fixed size of the pending-event queue.
	// Default: 10000
	Capacity int

	// Logger receives the one-time overflow diagnostic.
	// Default: nil (no logging)
	Logger *slog.Logger

	// Metrics records publish, drop, and dispatch measurements.
	// Default: observability.NoopMetrics{}
	Metrics observability.MetricsRecorder

	// Spans traces each dispatch.
	// Default: observability.NoopSpanManager{}
	Spans observability.SpanManager

	// PollInterval is how often WaitUntilEmpty samples the queue.
	// Default: 10ms
	PollInterval time.Duration

	// OnDrop is called for every event rejected because the queue was full.
	OnDrop func(evt T)
}

// FromConfig builds a bus Config from loaded configuration values.
// Recognized keys: "capacity" (int), "poll_interval" (duration).
func FromConfig[T any](c config.Config) Config[T] {
	return Config[T]{
		Capacity:     c.Int("capacity", DefaultCapacity),
		PollInterval: c.Duration("poll_interval", DefaultPollInterval),
	}
}

// envelope is the queue element: either an event payload or the shutdown
// signal. The two-variant shape means no payload value is ever reserved.
type envelope[T any] struct {
	evt      T
	shutdown bool
}

// Bus is a many-producer, single-consumer asynchronous event bus.
//
// Publish never blocks; a single worker goroutine drains the bounded queue
// in FIFO order and hands each event to the dispatcher. See the package
// documentation for lifecycle and overflow semantics.
type Bus[T any] struct {
	cfg        Config[T]
	dispatcher Dispatcher[T]

	queue chan envelope[T]
	done  chan struct{}

	mu    sync.Mutex
	state State

	stopRequested  atomic.Bool
	overflowLogged atomic.Bool
}

// New creates a bus that hands events to dispatcher.
// The dispatcher must not be nil; it is invoked once per published event,
// from the worker goroutine, after Start.
func New[T any](dispatcher Dispatcher[T], cfg Config[T]) *Bus[T] {
	if cfg.Capacity <= 0 {
		cfg.Capacity = DefaultCapacity
	}
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.Metrics == nil {
		cfg.Metrics = observability.NoopMetrics{}
	}
	if cfg.Spans == nil {
		cfg.Spans = observability.NoopSpanManager{}
	}

	return &Bus[T]{
		cfg:        cfg,
		dispatcher: dispatcher,
		queue:      make(chan envelope[T], cfg.Capacity),
		done:       make(chan struct{}),
	}
}

// Start launches the dispatch worker.
// Everything queued before Start is delivered first, in publish order.
// Returns an error wrapping ErrAlreadyStarted if the bus is not in
// StateNotStarted.
func (b *Bus[T]) Start() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.state != StateNotStarted {
		return &LifecycleError{Op: "start", State: b.state, Err: ErrAlreadyStarted}
	}
	b.state = StateStarted

	go b.run()
	return nil
}

// Stop shuts the bus down gracefully. It enqueues the shutdown signal behind
// all previously published events and blocks until the worker has dispatched
// them and exited. Returns an error wrapping ErrNotStarted if the bus is not
// in StateStarted.
func (b *Bus[T]) Stop() error {
	b.mu.Lock()
	if b.state != StateStarted {
		st := b.state
		b.mu.Unlock()
		return &LifecycleError{Op: "stop", State: st, Err: ErrNotStarted}
	}
	b.state = StateStopped
	b.mu.Unlock()

	b.stopRequested.Store(true)

	// Blocking send, not the drop-on-full publish path: the worker keeps
	// draining while we wait, so the shutdown signal always gets in even
	// when the queue is full at this point.
	b.queue <- envelope[T]{shutdown: true}

	<-b.done
	return nil
}

// Publish enqueues an event for dispatch. It never blocks: if the queue is
// at capacity the event is dropped. Publish is safe to call from any number
// of goroutines and in any lifecycle state; events published before Start
// buffer in the queue, events published after Stop are never dispatched.
func (b *Bus[T]) Publish(evt T) {
	select {
	case b.queue <- envelope[T]{evt: evt}:
		ctx := context.Background()
		b.cfg.Metrics.RecordPublished(ctx)
		b.cfg.Metrics.RecordQueueDepth(ctx, int64(len(b.queue)))
	default:
		b.drop(evt)
	}
}

// drop handles an overflow rejection: count it, invoke the hook, and emit
// the diagnostic exactly once per bus instance.
func (b *Bus[T]) drop(evt T) {
	b.cfg.Metrics.RecordDropped(context.Background())

	if b.cfg.OnDrop != nil {
		b.cfg.OnDrop(evt)
	}

	if b.overflowLogged.CompareAndSwap(false, true) && b.cfg.Logger != nil {
		b.cfg.Logger.Warn("event queue exhausted, dropping events",
			slog.Int("capacity", cap(b.queue)),
			slog.String("cause", "observer likely too slow"),
		)
	}
}

// WaitUntilEmpty polls until the queue is empty or the timeout elapses.
// Returns true if the queue drained within the timeout. This is a coarse
// test and diagnostic aid, not a production synchronization primitive: the
// last dequeued event may still be in flight when it returns.
func (b *Bus[T]) WaitUntilEmpty(timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		if len(b.queue) == 0 {
			return true
		}
		if !time.Now().Before(deadline) {
			return false
		}
		time.Sleep(b.cfg.PollInterval)
	}
}

// Pending returns the number of events currently queued.
func (b *Bus[T]) Pending() int {
	return len(b.queue)
}

// State returns the current lifecycle state.
func (b *Bus[T]) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// StopRequested reports whether Stop has been invoked.
func (b *Bus[T]) StopRequested() bool {
	return b.stopRequested.Load()
}

// run is the dispatch worker loop. It exits when it dequeues the shutdown
// envelope, which is never handed to the dispatcher.
func (b *Bus[T]) run() {
	defer close(b.done)
	for {
		env := <-b.queue
		if env.shutdown {
			return
		}
		b.dispatchOne(env.evt)
	}
}

// dispatchOne hands a single event to the dispatcher synchronously.
// The dispatcher contract requires that observer failures are contained
// there, so nothing here retries or recovers.
func (b *Bus[T]) dispatchOne(evt T) {
	ctx, span := b.cfg.Spans.StartDispatchSpan(context.Background())
	start := time.Now()

	b.dispatcher.Dispatch(evt)

	b.cfg.Metrics.RecordDispatched(ctx, time.Since(start))
	b.cfg.Spans.EndSpan(span)
}
