// Package asyncbus provides an in-process asynchronous event bus.
//
// # Overview
//
// Producers publish events from any number of goroutines without ever
// blocking; a single background worker drains the bounded queue in strict
// FIFO order and hands each event to a dispatcher. The bus decouples
// latency-sensitive producers from potentially slow observers:
//
//   - Bounded queue with non-blocking publish (drop-on-full)
//   - Exactly one dispatch worker, so events are never delivered concurrently
//   - Start/Stop lifecycle with graceful drain on shutdown
//   - One-time overflow diagnostic instead of per-drop log flooding
//
// # Quick Start
//
//	fanout := asyncbus.NewFanout[string](asyncbus.FanoutConfig[string]{})
//	reg := fanout.Register(asyncbus.ObserverFunc[string](func(ctx context.Context, msg string) error {
//	    fmt.Println("got:", msg)
//	    return nil
//	}))
//	defer reg.Unregister()
//
//	bus := asyncbus.New[string](fanout, asyncbus.Config[string]{})
//	if err := bus.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
//	bus.Publish("hello") // never blocks
//
//	bus.WaitUntilEmpty(time.Second)
//	bus.Stop() // drains remaining events, then returns
//
// # Lifecycle
//
// A bus moves through exactly three states: NotStarted, Started, Stopped.
// Publish is legal in every state and buffers events even before Start;
// everything queued before Start is delivered, in publish order, once the
// worker runs. Calling Start twice or Stop before Start is a programming
// error and returns ErrAlreadyStarted or ErrNotStarted respectively.
//
// Stop enqueues an internal shutdown signal through the same queue as
// ordinary events, so every event published before Stop is dispatched
// before the worker exits. Stop blocks until the worker has terminated.
//
// # Overflow
//
// When the queue is at capacity, Publish drops the event. The first drop in
// the lifetime of a bus instance emits a single warning through the
// configured logger; further drops are silent in the log but are still
// counted by the metrics recorder and reported to the OnDrop hook.
//
// # Ordering
//
// FIFO across the queue is the only ordering promise. Two producers racing
// on Publish are ordered by whichever insert wins; the dispatcher then sees
// one total order with no concurrent deliveries.
package asyncbus
