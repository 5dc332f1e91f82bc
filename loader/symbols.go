package loader

import (
	"strings"

	"go.uber.org/zap"

	"github.com/bindlab/girt/host"
	"github.com/bindlab/girt/meta"
)

// Resolvable is an entity that can look up a member by name. Ancestor
// chains are ordered lists of Resolvable references consulted in priority
// order.
type Resolvable interface {
	Lookup(name string) (any, bool)
}

// Enum is a closed name-to-value map for an enumeration type.
type Enum struct {
	byName map[string]int64
	name   string
	values []meta.ValueInfo
}

func newEnum(info *meta.Info) *Enum {
	e := &Enum{
		name:   info.Name,
		values: info.Values,
		byName: make(map[string]int64, len(info.Values)),
	}
	for _, v := range info.Values {
		e.byName[v.Name] = v.Value
	}
	return e
}

// Value returns the integer bound to a member name.
func (e *Enum) Value(name string) (int64, bool) {
	v, ok := e.byName[name]
	return v, ok
}

// Name reverse-maps a value to the member name bound to it. Member values
// are assumed unique; the result order is unspecified otherwise.
func (e *Enum) Name(value int64) (string, bool) {
	for _, v := range e.values {
		if v.Value == value {
			return v.Name, true
		}
	}
	return "", false
}

// Names returns the member names in declaration order.
func (e *Enum) Names() []string {
	names := make([]string, len(e.values))
	for i, v := range e.values {
		names[i] = v.Name
	}
	return names
}

// Lookup implements Resolvable over the member names.
func (e *Enum) Lookup(name string) (any, bool) {
	v, ok := e.byName[name]
	if !ok {
		return nil, false
	}
	return v, true
}

// Flags is a closed name-to-bit map for a flags type.
type Flags struct {
	byName map[string]int64
	name   string
	values []meta.ValueInfo
}

func newFlags(info *meta.Info) *Flags {
	f := &Flags{
		name:   info.Name,
		values: info.Values,
		byName: make(map[string]int64, len(info.Values)),
	}
	for _, v := range info.Values {
		f.byName[v.Name] = v.Value
	}
	return f
}

// Value returns the bits bound to a member name.
func (f *Flags) Value(name string) (int64, bool) {
	v, ok := f.byName[name]
	return v, ok
}

// Decompose returns the declared names whose bits are fully contained in
// value, in declaration order.
func (f *Flags) Decompose(value int64) []string {
	var names []string
	for _, v := range f.values {
		if v.Value != 0 && value&v.Value == v.Value {
			names = append(names, v.Name)
		}
	}
	return names
}

// Names returns the member names in declaration order.
func (f *Flags) Names() []string {
	names := make([]string, len(f.values))
	for i, v := range f.values {
		names[i] = v.Name
	}
	return names
}

// Lookup implements Resolvable over the member names.
func (f *Flags) Lookup(name string) (any, bool) {
	v, ok := f.byName[name]
	if !ok {
		return nil, false
	}
	return v, true
}

// Struct is a boxed record type: a method table plus raw field descriptors.
// Fields are not pre-resolved.
type Struct struct {
	methods  map[string]host.Func
	name     string
	typeName string
	fields   []meta.FieldInfo
}

// Method returns a public method by name.
func (s *Struct) Method(name string) (host.Func, bool) {
	m, ok := s.methods[name]
	return m, ok
}

// Fields returns the raw field descriptors.
func (s *Struct) Fields() []meta.FieldInfo {
	return s.fields
}

// Lookup implements Resolvable: methods first, then raw field descriptors.
func (s *Struct) Lookup(name string) (any, bool) {
	if m, ok := s.methods[name]; ok {
		return m, true
	}
	for _, f := range s.fields {
		if f.Name == name {
			return f, true
		}
	}
	return nil, false
}

// InheritsKey is the pseudo-member exposing an entity's ancestor chain.
const InheritsKey = "_inherits"

// Entity is an object or interface type: method, constant and field tables
// plus an ordered ancestor chain consulted for fallback lookup.
type Entity struct {
	methods   map[string]host.Func
	constants map[string]host.Value
	inherits  *Ancestry
	name      string
	typeName  string
	kind      meta.Kind
	fields    []meta.FieldInfo
}

// Kind returns whether the entity is an object or an interface.
func (e *Entity) Kind() meta.Kind { return e.kind }

// Inherits returns the ordered ancestor chain.
func (e *Entity) Inherits() *Ancestry { return e.inherits }

// Lookup finds a member on the entity itself, then falls back through the
// ancestor chain in order, stopping at the first hit.
func (e *Entity) Lookup(name string) (any, bool) {
	if name == InheritsKey {
		return e.inherits, true
	}
	if m, ok := e.methods[name]; ok {
		return m, true
	}
	if c, ok := e.constants[name]; ok {
		return c, true
	}
	for _, f := range e.fields {
		if f.Name == name {
			return f, true
		}
	}
	return e.inherits.Lookup(name)
}

// Ancestry is the ordered list of ancestor fragments backing an entity's
// fallback lookup. Fragments may live in other namespaces; consulting one
// triggers its lazy load.
type Ancestry struct {
	loader *Loader
	owner  string // owning namespace, for unqualified ancestor names
	refs   []ancestorRef
}

type ancestorRef struct {
	namespace string
	name      string
}

// parseAncestorRef splits a qualified "Namespace.Name" reference; a bare
// name belongs to the owning namespace.
func parseAncestorRef(owner, qualified string) ancestorRef {
	if i := strings.LastIndexByte(qualified, '.'); i > 0 {
		return ancestorRef{namespace: qualified[:i], name: qualified[i+1:]}
	}
	return ancestorRef{namespace: owner, name: qualified}
}

// Len returns the number of ancestor fragments.
func (a *Ancestry) Len() int {
	return len(a.refs)
}

// Ancestor resolves the i-th ancestor fragment, loading its namespace on
// demand.
func (a *Ancestry) Ancestor(i int) (Resolvable, bool) {
	return a.fragment(a.refs[i])
}

// Lookup consults the ancestor fragments in order and returns the first
// hit. Fragments that fail to load are skipped; absence stays soft.
func (a *Ancestry) Lookup(name string) (any, bool) {
	for _, ref := range a.refs {
		frag, ok := a.fragment(ref)
		if !ok {
			continue
		}
		if v, ok := frag.Lookup(name); ok {
			return v, true
		}
	}
	return nil, false
}

func (a *Ancestry) fragment(ref ancestorRef) (Resolvable, bool) {
	pkg, err := a.loader.Package(ref.namespace)
	if err != nil {
		Logger().Warn("ancestor namespace failed to load",
			zap.String("namespace", ref.namespace),
			zap.String("symbol", ref.name),
			zap.Error(err))
		return nil, false
	}
	v, ok, err := pkg.Lookup(ref.name)
	if err != nil || !ok {
		return nil, false
	}
	r, ok := v.(Resolvable)
	return r, ok
}
