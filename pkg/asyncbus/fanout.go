package asyncbus

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Dispatcher receives each published event exactly once, in queue order,
// from the bus worker. Implementations must contain observer failures:
// an error or panic escaping Dispatch would kill the worker, and a hang
// here stalls the entire bus.
type Dispatcher[T any] interface {
	Dispatch(evt T)
}

// DispatcherFunc adapts a function to the Dispatcher interface.
type DispatcherFunc[T any] func(evt T)

// Dispatch implements Dispatcher.
func (f DispatcherFunc[T]) Dispatch(evt T) {
	f(evt)
}

// Observer handles events delivered through a Fanout.
type Observer[T any] interface {
	OnEvent(ctx context.Context, evt T) error
}

// ObserverFunc adapts a function to the Observer interface.
type ObserverFunc[T any] func(ctx context.Context, evt T) error

// OnEvent implements Observer.
func (f ObserverFunc[T]) OnEvent(ctx context.Context, evt T) error {
	return f(ctx, evt)
}

// FanoutConfig configures fan-out behavior.
type FanoutConfig[T any] struct {
	// Logger records observer failures.
	// Default: nil (no logging)
	Logger *slog.Logger

	// OnError is called when an observer returns an error or panics.
	OnError func(evt T, err error)
}

// Fanout delivers each event to every registered observer, in registration
// order, and satisfies the bus's containment contract: observer errors and
// panics are reported through FanoutConfig and never escape Dispatch, so one
// failing observer cannot disturb the others or the worker.
type Fanout[T any] struct {
	cfg FanoutConfig[T]

	mu        sync.RWMutex
	observers []*Registration[T]
}

// Registration is a handle for a registered observer.
type Registration[T any] struct {
	fanout *Fanout[T]
	obs    Observer[T]
}

// Unregister removes the observer. Safe to call more than once.
func (r *Registration[T]) Unregister() {
	r.fanout.remove(r)
}

// NewFanout creates an empty fan-out dispatcher.
func NewFanout[T any](cfg FanoutConfig[T]) *Fanout[T] {
	return &Fanout[T]{cfg: cfg}
}

// Register adds an observer and returns its registration handle.
func (f *Fanout[T]) Register(obs Observer[T]) *Registration[T] {
	r := &Registration[T]{fanout: f, obs: obs}

	f.mu.Lock()
	f.observers = append(f.observers, r)
	f.mu.Unlock()

	return r
}

func (f *Fanout[T]) remove(r *Registration[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i, cur := range f.observers {
		if cur == r {
			f.observers = append(f.observers[:i], f.observers[i+1:]...)
			return
		}
	}
}

// Len returns the number of registered observers.
func (f *Fanout[T]) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.observers)
}

// Dispatch implements Dispatcher. Observers registered mid-dispatch see the
// next event; a snapshot of the list is taken per event.
func (f *Fanout[T]) Dispatch(evt T) {
	f.mu.RLock()
	snapshot := make([]*Registration[T], len(f.observers))
	copy(snapshot, f.observers)
	f.mu.RUnlock()

	ctx := context.Background()
	for _, r := range snapshot {
		if err := f.notify(ctx, r.obs, evt); err != nil {
			f.reportError(evt, err)
		}
	}
}

// notify invokes one observer, converting a panic into an error.
func (f *Fanout[T]) notify(ctx context.Context, obs Observer[T], evt T) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("observer panic: %v", r)
		}
	}()
	return obs.OnEvent(ctx, evt)
}

func (f *Fanout[T]) reportError(evt T, err error) {
	if f.cfg.OnError != nil {
		f.cfg.OnError(evt, err)
	}
	if f.cfg.Logger != nil {
		f.cfg.Logger.Error("observer failed",
			slog.String("error", err.Error()),
		)
	}
}
