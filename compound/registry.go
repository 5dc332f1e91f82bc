package compound

import (
	"sync"
	"sync/atomic"

	"github.com/bindlab/girt"
	"github.com/bindlab/girt/typesys"
)

// Disposer releases one native reference to an instance of its type.
type Disposer func(girt.Ref)

// Duper duplicates a native reference, returning a new owned reference.
// The default Duper returns the reference unchanged.
type Duper func(typesys.ID, girt.Ref) girt.Ref

// Event types for instance lifecycle notifications.
type EventType uint8

const (
	EventCreated EventType = iota
	EventReleased
)

// Event represents an instance lifecycle event.
type Event struct {
	Ref   girt.Ref
	Type  typesys.ID
	Event EventType
}

// Observer receives notifications about instance lifecycle events.
type Observer interface {
	OnCompoundEvent(Event)
}

// Instance is opaque native memory plus its concrete type identity.
type Instance struct {
	ref girt.Ref
	typ typesys.ID
}

// Ref returns the raw native reference.
func (i Instance) Ref() girt.Ref { return i.ref }

// Type returns the concrete registered type.
func (i Instance) Type() typesys.ID { return i.typ }

// Proxy is the host-side wrapper around a compound instance. A host-owned
// proxy disposes its instance exactly once when released.
type Proxy struct {
	registry *Registry
	inst     Instance
	owned    bool
	released atomic.Bool
}

// Instance returns the wrapped instance.
func (p *Proxy) Instance() Instance { return p.inst }

// Owned reports whether the host owns the wrapped reference.
func (p *Proxy) Owned() bool { return p.owned }

// Release drops the host's reference. For an owned proxy the type's
// registered disposer runs; releasing twice is a no-op.
func (p *Proxy) Release() {
	if p.released.Swap(true) {
		return
	}
	if p.owned {
		name := p.registry.types.Name(p.inst.typ)
		if d, ok := p.registry.Disposer(name); ok {
			d(p.inst.ref)
		}
	}
	p.registry.notify(Event{Event: EventReleased, Ref: p.inst.ref, Type: p.inst.typ})
}

// Registry is the compound-object collaborator: proxy creation/extraction
// plus the per-type-name disposer table.
type Registry struct {
	types     *typesys.Registry
	disposers map[string]Disposer
	dup       Duper
	observers []Observer
	mu        sync.RWMutex
}

// NewRegistry creates a registry backed by the given type registry.
func NewRegistry(types *typesys.Registry) *Registry {
	return &Registry{
		types:     types,
		disposers: make(map[string]Disposer),
		dup:       func(_ typesys.ID, ref girt.Ref) girt.Ref { return ref },
	}
}

// SetDuper installs the native reference duplicator.
func (r *Registry) SetDuper(d Duper) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dup = d
}

// Dup duplicates a native reference, returning a new owned reference.
func (r *Registry) Dup(typ typesys.ID, ref girt.Ref) girt.Ref {
	r.mu.RLock()
	d := r.dup
	r.mu.RUnlock()
	return d(typ, ref)
}

// NewProxy wraps a raw native reference in a fresh host proxy. When owned is
// true the proxy is flagged host-owned and disposes on release.
func (r *Registry) NewProxy(typ typesys.ID, ref girt.Ref, owned bool) *Proxy {
	p := &Proxy{
		registry: r,
		inst:     Instance{ref: ref, typ: typ},
		owned:    owned,
	}
	r.notify(Event{Event: EventCreated, Ref: ref, Type: typ})
	return p
}

// Extract recovers the raw reference and concrete type from a host value,
// taking no extra ownership. The second result is false if the value is not
// a compound proxy.
func (r *Registry) Extract(v any) (girt.Ref, typesys.ID, bool) {
	p, ok := v.(*Proxy)
	if !ok || p.registry != r {
		return 0, typesys.IDInvalid, false
	}
	return p.inst.ref, p.inst.typ, true
}

// RegisterDisposer records a disposer for a type name. The first
// registration wins; later attempts are ignored and return false.
func (r *Registry) RegisterDisposer(typeName string, d Disposer) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.disposers[typeName]; ok {
		return false
	}
	r.disposers[typeName] = d
	return true
}

// Disposer returns the registered disposer for a type name.
func (r *Registry) Disposer(typeName string) (Disposer, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.disposers[typeName]
	return d, ok
}

// Subscribe adds an observer for lifecycle events.
func (r *Registry) Subscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observers = append(r.observers, o)
}

// Unsubscribe removes an observer.
func (r *Registry) Unsubscribe(o Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, obs := range r.observers {
		if obs == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			return
		}
	}
}

func (r *Registry) notify(e Event) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.observers {
		o.OnCompoundEvent(e)
	}
}
