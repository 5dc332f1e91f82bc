// Package typesys models registered native type identities. Every native
// value carries a type ID; compound types (enums, flags, objects, boxed
// records) are registered at load time and classified by their fundamental
// kind, which drives marshalling fallback dispatch.
package typesys

import (
	"sync"
)

// ID identifies one registered native type. ID 0 is invalid.
type ID uint32

// Fundamental classifies a registered type for dispatch purposes.
type Fundamental uint8

const (
	FundInvalid Fundamental = iota
	FundNone
	FundBool
	FundInt
	FundUint
	FundFloat
	FundString
	FundPointer
	FundEnum
	FundFlags
	FundInterface
	FundObject
	FundBoxed
)

var fundamentalNames = [...]string{
	FundInvalid:   "invalid",
	FundNone:      "none",
	FundBool:      "bool",
	FundInt:       "int",
	FundUint:      "uint",
	FundFloat:     "float",
	FundString:    "string",
	FundPointer:   "pointer",
	FundEnum:      "enum",
	FundFlags:     "flags",
	FundInterface: "interface",
	FundObject:    "object",
	FundBoxed:     "boxed",
}

func (f Fundamental) String() string {
	if int(f) < len(fundamentalNames) {
		return fundamentalNames[f]
	}
	return "unknown"
}

// Builtin fundamental type IDs. Registered compound types are assigned IDs
// starting at IDFirstRegistered.
const (
	IDInvalid ID = iota
	IDNone
	IDBool
	IDInt
	IDUint
	IDFloat
	IDString
	IDPointer

	IDFirstRegistered ID = 256
)

type typeInfo struct {
	name        string
	fundamental Fundamental
}

// Registry maps type IDs to names and fundamental kinds. Builtin fundamental
// types are pre-registered; compound types are added as metadata loads.
type Registry struct {
	byName     map[string]ID
	registered []typeInfo
	mu         sync.RWMutex
}

// NewRegistry creates a registry with the builtin fundamentals installed.
func NewRegistry() *Registry {
	r := &Registry{
		byName:     make(map[string]ID, 64),
		registered: make([]typeInfo, 0, 64),
	}
	for id, name := range map[ID]string{
		IDNone:    "none",
		IDBool:    "gboolean",
		IDInt:     "gint",
		IDUint:    "guint",
		IDFloat:   "gdouble",
		IDString:  "gchararray",
		IDPointer: "gpointer",
	} {
		r.byName[name] = id
	}
	return r
}

// Register adds a named compound type and returns its ID. Registration is
// idempotent by name: a second registration returns the existing ID.
func (r *Registry) Register(name string, fundamental Fundamental) ID {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id, ok := r.byName[name]; ok {
		return id
	}

	r.registered = append(r.registered, typeInfo{name: name, fundamental: fundamental})
	id := IDFirstRegistered + ID(len(r.registered)-1)
	r.byName[name] = id
	return id
}

// Fundamental returns the fundamental kind of a type ID.
func (r *Registry) Fundamental(id ID) Fundamental {
	switch id {
	case IDInvalid:
		return FundInvalid
	case IDNone:
		return FundNone
	case IDBool:
		return FundBool
	case IDInt:
		return FundInt
	case IDUint:
		return FundUint
	case IDFloat:
		return FundFloat
	case IDString:
		return FundString
	case IDPointer:
		return FundPointer
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := int(id - IDFirstRegistered)
	if idx < 0 || idx >= len(r.registered) {
		return FundInvalid
	}
	return r.registered[idx].fundamental
}

// Name returns the registered name of a type ID, or "" if unknown.
func (r *Registry) Name(id ID) string {
	switch id {
	case IDNone:
		return "none"
	case IDBool:
		return "gboolean"
	case IDInt:
		return "gint"
	case IDUint:
		return "guint"
	case IDFloat:
		return "gdouble"
	case IDString:
		return "gchararray"
	case IDPointer:
		return "gpointer"
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	idx := int(id - IDFirstRegistered)
	if idx < 0 || idx >= len(r.registered) {
		return ""
	}
	return r.registered[idx].name
}

// ByName looks up a type ID by registered name.
func (r *Registry) ByName(name string) (ID, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.byName[name]
	return id, ok
}

// Len returns the number of registered compound types.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.registered)
}
