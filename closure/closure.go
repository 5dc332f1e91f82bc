// Package closure wraps host callables as native-invocable trampolines.
//
// A Closure captures the execution context that owns the interpreter at
// creation time. Later invocations may originate from native call paths
// outside the host's control flow (signal emission, finalization, foreign
// threads); they are marshalled onto the captured context's task queue and
// resume there, never on an arbitrary caller.
//
// There is no exception channel from the host callable back to the native
// caller. The failure policy is an explicit configuration choice: the
// default logs through the log bridge and returns a zeroed value of the
// declared return type.
package closure

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/bindlab/girt/errors"
	"github.com/bindlab/girt/host"
	"github.com/bindlab/girt/logbridge"
	"github.com/bindlab/girt/marshal"
	"github.com/bindlab/girt/meta"
)

// FailurePolicy selects the degraded behavior when the wrapped callable
// raises during invocation.
type FailurePolicy uint8

const (
	// PolicyLogAndZero logs the failure through the log bridge and yields
	// a zeroed value of the declared return type. This is the documented
	// default, not an inherited guarantee.
	PolicyLogAndZero FailurePolicy = iota
	// PolicySilentZero yields the zeroed value without logging.
	PolicySilentZero
)

// Options configures bridge behavior.
type Options struct {
	Policy FailurePolicy
	// LogDomain is the domain used when reporting invocation failures.
	LogDomain string
}

// DefaultOptions returns default bridge configuration.
func DefaultOptions() Options {
	return Options{
		Policy:    PolicyLogAndZero,
		LogDomain: "girt",
	}
}

// Bridge creates closures and carries their shared marshalling machinery.
type Bridge struct {
	marshaller *marshal.Marshaller
	logs       *logbridge.Bridge
	options    Options
}

// New creates a bridge using the given marshaller and log bridge.
func New(m *marshal.Marshaller, logs *logbridge.Bridge, opts Options) *Bridge {
	return &Bridge{
		marshaller: m,
		logs:       logs,
		options:    opts,
	}
}

// Closure is a native-invocable trampoline around a host callable. The
// native side reference-counts it; when the count reaches zero the callable
// reference and the context reference are released exactly once.
type Closure struct {
	bridge    *Bridge
	owner     *host.Context
	target    atomic.Value // host.Value; cleared on finalize
	refs      atomic.Int32
	finalized atomic.Bool
}

type targetBox struct {
	value host.Value
}

// Create wraps a host callable. Only recognized callable shapes are
// accepted: function, table with a callable entry, or opaque callable.
// The current execution context is captured and retained.
func (b *Bridge) Create(owner *host.Context, target host.Value) (*Closure, error) {
	if !host.IsCallable(target) {
		return nil, errors.NotCallable(errors.PhaseCreate, fmt.Sprintf("%T", target))
	}

	owner.Retain()
	c := &Closure{
		bridge: b,
		owner:  owner,
	}
	c.target.Store(targetBox{value: target})
	c.refs.Store(1)
	return c, nil
}

// Ref takes a native reference.
func (c *Closure) Ref() {
	c.refs.Add(1)
}

// Unref drops a native reference. The last drop finalizes the closure.
func (c *Closure) Unref() {
	if c.refs.Add(-1) == 0 {
		c.finalize()
	}
}

// Target returns the wrapped callable, or nil after finalization.
func (c *Closure) Target() host.Value {
	box, _ := c.target.Load().(targetBox)
	return box.value
}

// Finalized reports whether the closure has been finalized.
func (c *Closure) Finalized() bool {
	return c.finalized.Load()
}

// finalize releases the callable reference and the context reference. It
// runs at most once and is safe even if Invoke was never called.
func (c *Closure) finalize() {
	if c.finalized.Swap(true) {
		return
	}
	c.target.Store(targetBox{})
	c.owner.Release()
}

// Invoke converts each argument in declared order, invokes the captured
// callable with exactly that list in the owning context, captures at most
// one return value, and converts it back to a tagged value of the declared
// return type.
//
// When the callable raises, no value crosses the native boundary: the
// configured failure policy applies and the zeroed return value is produced.
// The original error is also returned for callers that can observe it.
func (c *Closure) Invoke(ctx context.Context, args []marshal.Tagged, ret meta.TypeDescriptor) (marshal.Tagged, error) {
	zero, zerr := c.bridge.marshaller.Init(ret)
	if zerr != nil {
		return marshal.Tagged{}, zerr
	}

	target := c.Target()
	if target == nil {
		return zero, errors.InvalidInput(errors.PhaseInvoke, "closure already finalized")
	}

	result, err := c.owner.Do(ctx, func(ctx context.Context) (host.Value, error) {
		hostArgs := make([]host.Value, 0, len(args))
		for _, a := range args {
			v, err := c.bridge.marshaller.Store(a)
			if err != nil {
				return nil, err
			}
			hostArgs = append(hostArgs, v)
		}
		return host.Invoke(target, hostArgs)
	})
	if err != nil {
		return zero, c.degrade(err)
	}

	out, err := c.bridge.marshaller.Load(result, ret)
	if err != nil {
		return zero, c.degrade(err)
	}
	return out, nil
}

// degrade applies the failure policy and passes the original error through.
func (c *Closure) degrade(err error) error {
	if c.bridge.options.Policy == PolicyLogAndZero && c.bridge.logs != nil {
		// CRITICAL reports without triggering fatal escalation.
		_ = c.bridge.logs.Log(c.bridge.options.LogDomain, "CRITICAL",
			fmt.Sprintf("closure invocation failed: %v", err))
	}
	return err
}
