// Package query runs reads and writes as asynchronous requests whose outcome can
// be polled without blocking, or awaited for a bounded time.
package query

import (
	"context"
	"fmt"
	"time"
)

// Status is the lifecycle state of a Request.
type Status int

const (
	// Idle means no request was started.
	Idle Status = iota
	// Pending means the request is still running.
	Pending
	// Success means the request finished with a value.
	Success
	// Error means the request finished with an error.
	Error
)

func (s Status) String() string {
	switch s {
	case Idle:
		return "idle"
	case Pending:
		return "pending"
	case Success:
		return "success"
	case Error:
		return "error"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Result is a snapshot of a Request. Value is set only on Success, Err only on Error.
type Result[T any] struct {
	Status Status
	Value  T
	Err    error
}

// Request is a single asynchronous call. A nil *Request reports Idle.
type Request[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Start runs fn on its own goroutine. fn receives a context that keeps ctx's values
// but is never canceled, so abandoning the caller does not abort the call.
// A panic in fn finishes the request with an error.
func Start[T any](ctx context.Context, fn func(context.Context) (T, error)) *Request[T] {
	r := &Request[T]{done: make(chan struct{})}
	detached := context.WithoutCancel(ctx)

	go func() {
		defer close(r.done)
		r.value, r.err = recovered(detached, fn)
	}()

	return r
}

// recovered calls fn and turns a panic into an error.
func recovered[T any](ctx context.Context, fn func(context.Context) (T, error)) (v T, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("request panicked: %v", p)
		}
	}()
	return fn(ctx)
}

// Done is closed once the request has finished.
func (r *Request[T]) Done() <-chan struct{} {
	return r.done
}

// Result returns the current state without blocking.
func (r *Request[T]) Result() Result[T] {
	if r == nil {
		return Result[T]{Status: Idle}
	}

	select {
	case <-r.done:
	default:
		return Result[T]{Status: Pending}
	}

	if r.err != nil {
		return Result[T]{Status: Error, Err: r.err}
	}
	return Result[T]{Status: Success, Value: r.value}
}

// Wait blocks until the request finishes or ctx is done, then returns the state.
// An expired ctx yields Pending, not an error.
func (r *Request[T]) Wait(ctx context.Context) Result[T] {
	if r == nil {
		return Result[T]{Status: Idle}
	}

	select {
	case <-r.done:
	case <-ctx.Done():
	}
	return r.Result()
}

// WaitFor is Wait bounded by d. A non-positive d only polls.
func (r *Request[T]) WaitFor(ctx context.Context, d time.Duration) Result[T] {
	if d <= 0 {
		return r.Result()
	}

	ctx, cancel := context.WithTimeout(ctx, d)
	defer cancel()
	return r.Wait(ctx)
}
