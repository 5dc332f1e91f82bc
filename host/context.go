package host

import (
	"context"
	"sync"
	"sync/atomic"
)

// Context is the execution context that owns the interpreter state.
// Interpreter operations must run on the owning scheduler: a foreign
// goroutine submits work through Do, which enqueues an invocation request
// drained by the single Run loop, rather than reentering directly.
type Context struct {
	tasks     chan task
	quit      chan struct{}
	refs      atomic.Int64
	closeOnce sync.Once
}

type task struct {
	fn    func(ctx context.Context) (Value, error)
	reply chan taskResult
}

type taskResult struct {
	value Value
	err   error
}

type ownerKey struct{}

// NewContext creates an execution context. The host calls Run (or Start) on
// the goroutine that owns the interpreter.
func NewContext() *Context {
	return &Context{
		tasks: make(chan task),
		quit:  make(chan struct{}),
	}
}

// Run drains the task queue on the calling goroutine until ctx is done or
// the context is closed. Tasks observe the owner marker, so a task that
// re-enters Do runs inline instead of deadlocking on its own scheduler.
func (c *Context) Run(ctx context.Context) {
	ctx = context.WithValue(ctx, ownerKey{}, c)
	for {
		select {
		case t := <-c.tasks:
			v, err := t.fn(ctx)
			t.reply <- taskResult{value: v, err: err}
		case <-c.quit:
			return
		case <-ctx.Done():
			return
		}
	}
}

// Start runs the scheduler on a new goroutine and returns a stop function.
func (c *Context) Start() (stop func()) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Run(ctx)
	}()
	return func() {
		cancel()
		<-done
	}
}

// OnOwner reports whether ctx is executing on this context's scheduler.
func (c *Context) OnOwner(ctx context.Context) bool {
	v, _ := ctx.Value(ownerKey{}).(*Context)
	return v == c
}

// Do executes fn in the owning context. Called from the owner it runs
// inline; called from a foreign goroutine it enqueues the request and blocks
// until the owner drains it or ctx is cancelled.
func (c *Context) Do(ctx context.Context, fn func(ctx context.Context) (Value, error)) (Value, error) {
	if c.OnOwner(ctx) {
		return fn(ctx)
	}

	t := task{fn: fn, reply: make(chan taskResult, 1)}
	select {
	case c.tasks <- t:
	case <-c.quit:
		return nil, context.Canceled
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	select {
	case r := <-t.reply:
		return r.value, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Retain takes a reference to the context.
func (c *Context) Retain() {
	c.refs.Add(1)
}

// Release drops a reference taken with Retain.
func (c *Context) Release() {
	c.refs.Add(-1)
}

// Refs returns the current reference count.
func (c *Context) Refs() int64 {
	return c.refs.Load()
}

// Close stops the scheduler. Pending Do callers receive context.Canceled.
func (c *Context) Close() {
	c.closeOnce.Do(func() {
		close(c.quit)
	})
}
