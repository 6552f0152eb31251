package crm

import (
	"context"
	"sync"
)

// Call is the pending outcome of an asynchronous toolkit call. Callers may
// wait on it, attach callbacks, or drop it.
type Call struct {
	mu        sync.Mutex
	done      chan struct{}
	result    Result
	resolved  bool
	callbacks []func(Result)
}

// NewCall returns an unresolved Call.
func NewCall() *Call {
	return &Call{done: make(chan struct{})}
}

// Resolved returns a Call that has already completed with r.
func Resolved(r Result) *Call {
	c := NewCall()
	c.Resolve(r)
	return c
}

// Resolve completes the call and runs registered callbacks in order.
// Only the first Resolve has any effect.
func (c *Call) Resolve(r Result) {
	c.mu.Lock()
	if c.resolved {
		c.mu.Unlock()
		return
	}
	c.resolved = true
	c.result = r
	callbacks := c.callbacks
	c.callbacks = nil
	c.mu.Unlock()

	for _, cb := range callbacks {
		cb(r)
	}
	close(c.done)
}

// Then registers fn to run with the result. If the call already completed,
// fn runs immediately on the caller's goroutine.
func (c *Call) Then(fn func(Result)) *Call {
	c.mu.Lock()
	if !c.resolved {
		c.callbacks = append(c.callbacks, fn)
		c.mu.Unlock()
		return c
	}
	r := c.result
	c.mu.Unlock()

	fn(r)
	return c
}

// Done is closed once the call has a result and the callbacks registered
// before Resolve have returned.
func (c *Call) Done() <-chan struct{} {
	return c.done
}

// Result returns the outcome and whether the call has completed.
func (c *Call) Result() (Result, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result, c.resolved
}

// Wait blocks until the call completes or ctx is done. The returned error is
// ctx.Err() or the remote failure.
func (c *Call) Wait(ctx context.Context) (Result, error) {
	select {
	case <-c.done:
		r, _ := c.Result()
		return r, r.Err()
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}
