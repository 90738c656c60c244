package future

import (
	"context"
	"sync"
)

type result[T any] struct {
	v   T
	err error
}

// Future is a single-shot result that settles exactly once.
type Future[T any] struct {
	done chan struct{}
	res  result[T]
	once sync.Once
}

// New runs fn in a goroutine and settles the Future when fn returns.
func New[T any](fn func() (T, error)) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	go func() {
		v, err := fn()
		f.settle(v, err)
	}()
	return f
}

// FromValue creates an already-settled Future holding v.
func FromValue[T any](v T) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	f.settle(v, nil)
	return f
}

// FromError creates an already-settled Future holding err.
func FromError[T any](err error) *Future[T] {
	f := &Future[T]{done: make(chan struct{})}
	var zero T
	f.settle(zero, err)
	return f
}

// Await blocks until the Future settles.
func (f *Future[T]) Await() (T, error) {
	<-f.done
	return f.res.v, f.res.err
}

// AwaitContext blocks until the Future settles or ctx is done, whichever
// comes first. The underlying computation keeps running after ctx is done.
func (f *Future[T]) AwaitContext(ctx context.Context) (T, error) {
	select {
	case <-f.done:
		return f.res.v, f.res.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Done returns a channel closed when the Future settles.
func (f *Future[T]) Done() <-chan struct{} { return f.done }

// Then chains fn onto a successful result; a failure is propagated unchanged.
func Then[T, U any](in *Future[T], fn func(T) (U, error)) *Future[U] {
	return New(func() (U, error) {
		v, err := in.Await()
		if err != nil {
			var zero U
			return zero, err
		}
		return fn(v)
	})
}

func (f *Future[T]) settle(v T, err error) {
	f.once.Do(func() {
		f.res = result[T]{v: v, err: err}
		close(f.done)
	})
}
