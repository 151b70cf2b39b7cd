package connection

import (
	"context"
	"sync"

	amqperrors "github.com/maxpert/amqp-go-client/errors"
)

// Future is a value that a watch callback resolves later.
type Future[T any] struct {
	once  sync.Once
	done  chan struct{}
	value T
	err   error
}

// NewFuture returns an unresolved future.
func NewFuture[T any]() *Future[T] {
	return &Future[T]{done: make(chan struct{})}
}

// Resolve completes the future with v. It reports false if the future was
// already complete.
func (f *Future[T]) Resolve(v T) bool {
	ok := false
	f.once.Do(func() {
		f.value = v
		ok = true
		close(f.done)
	})
	return ok
}

// Fail completes the future with err.
func (f *Future[T]) Fail(err error) bool {
	ok := false
	f.once.Do(func() {
		f.err = err
		ok = true
		close(f.done)
	})
	return ok
}

// Done is closed once the future completes.
func (f *Future[T]) Done() <-chan struct{} {
	return f.done
}

// Wait blocks until the future completes or ctx ends. A context deadline is
// reported as ErrTimeout.
func (f *Future[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.value, f.err
	default:
	}

	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero T
		if ctx.Err() == context.DeadlineExceeded {
			return zero, amqperrors.ErrTimeout
		}
		return zero, ctx.Err()
	}
}
