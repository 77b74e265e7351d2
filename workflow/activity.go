package workflow

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrCancelled is returned by a workflow that observed a cancellation
// request at one of its finger-presence polling boundaries.
var ErrCancelled = errors.New("workflow: cancelled")

// Activity is a one-shot result cell produced by an asynchronous workflow
// entry point. It carries exactly one terminal transition — completed or
// failed — which may be observed by blocking on Wait or by registering a
// completion callback with OnDone. Cancel is a non-blocking request; the
// workflow observes it cooperatively at its next polling boundary.
type Activity[T any] struct {
	mu          sync.Mutex
	done        chan struct{}
	result      T
	err         error
	doneHandler func(T, error)

	cancelRequested atomic.Bool
}

func newActivity[T any]() *Activity[T] {
	return &Activity[T]{done: make(chan struct{})}
}

// setDone records the activity's terminal outcome and fires any registered
// completion callback. Calling it more than once has no effect beyond the
// first call.
func (a *Activity[T]) setDone(result T, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	select {
	case <-a.done:
		return
	default:
	}
	a.result, a.err = result, err
	close(a.done)
	if a.doneHandler != nil {
		a.doneHandler(result, err)
	}
}

// Wait blocks until the activity reaches a terminal state and returns its
// outcome.
func (a *Activity[T]) Wait() (T, error) {
	<-a.done
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.result, a.err
}

// Done reports whether the activity has reached a terminal state.
func (a *Activity[T]) Done() bool {
	select {
	case <-a.done:
		return true
	default:
		return false
	}
}

// OnDone registers handler to run exactly once, when the activity
// completes. If the activity is already done, handler runs immediately on
// the calling goroutine.
func (a *Activity[T]) OnDone(handler func(T, error)) {
	a.mu.Lock()
	select {
	case <-a.done:
		result, err := a.result, a.err
		a.mu.Unlock()
		handler(result, err)
		return
	default:
	}
	a.doneHandler = handler
	a.mu.Unlock()
}

// Cancel requests cooperative cancellation of the in-flight workflow. It
// never blocks and has no effect once the activity is done.
func (a *Activity[T]) Cancel() {
	a.cancelRequested.Store(true)
}

// cancelled reports whether Cancel has been called. It satisfies the
// package-private canceller interface so the polling loops can accept any
// Activity[T] without themselves being generic.
func (a *Activity[T]) cancelled() bool {
	return a.cancelRequested.Load()
}

// canceller is the narrow view of an Activity the polling loops need.
type canceller interface {
	cancelled() bool
}
