// Package mutation wraps single write operations in a uniform
// pending → success/error → settled lifecycle. Every write path uses the same
// controller so callers get one place to hook optimistic UI bookkeeping,
// error recording and cleanup.
package mutation

import (
	"context"
	"sync"
)

type Status int

const (
	StatusIdle Status = iota
	StatusPending
	StatusSuccess
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusSuccess:
		return "success"
	case StatusError:
		return "error"
	default:
		return "idle"
	}
}

// Options hook one invocation. OnSettled always fires last, exactly once,
// whether the operation succeeded or failed. When Rethrow is set the error is
// also returned to the caller so dependent chains can short-circuit.
type Options[T any] struct {
	OnSuccess func(T)
	OnError   func(error)
	OnSettled func()
	Rethrow   bool
}

// Controller holds the transient state of the most recent invocation: one
// authoritative status value plus the last result and error. Callers
// typically use one controller per logical action; concurrent Invokes are
// independent and re-entry guarding is the caller's job.
type Controller[T any] struct {
	mu     sync.Mutex
	status Status
	result T
	err    error
}

func New[T any]() *Controller[T] {
	return &Controller[T]{}
}

// Invoke runs op through the lifecycle. The error return is nil unless
// Rethrow was requested; the recorded error is always available via Err.
func (c *Controller[T]) Invoke(ctx context.Context, op func(context.Context) (T, error), opts Options[T]) (T, error) {
	c.transition(func() {
		c.status = StatusPending
	})

	defer func() {
		if opts.OnSettled != nil {
			opts.OnSettled()
		}
	}()

	result, err := op(ctx)
	if err != nil {
		c.transition(func() {
			c.status = StatusError
			c.err = err
		})
		if opts.OnError != nil {
			opts.OnError(err)
		}
		var zero T
		if opts.Rethrow {
			return zero, err
		}
		return zero, nil
	}

	c.transition(func() {
		c.status = StatusSuccess
		c.result = result
		c.err = nil
	})
	if opts.OnSuccess != nil {
		opts.OnSuccess(result)
	}
	return result, nil
}

func (c *Controller[T]) transition(apply func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	apply()
}

func (c *Controller[T]) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

func (c *Controller[T]) IsPending() bool {
	return c.Status() == StatusPending
}

func (c *Controller[T]) Result() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}
