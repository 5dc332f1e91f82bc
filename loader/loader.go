// Package loader materializes namespaces and types on first reference from
// introspection metadata. Loading is lazy, cached and inheritance-aware: a
// Package is created on first reference to its namespace, symbols resolve
// at most once each, and object/interface lookup falls back through an
// ordered ancestor chain that may span namespaces.
package loader

import (
	"fmt"
	"sync"

	"github.com/coreos/go-semver/semver"
	"go.uber.org/zap"

	"github.com/bindlab/girt"
	"github.com/bindlab/girt/compound"
	"github.com/bindlab/girt/errors"
	"github.com/bindlab/girt/host"
	"github.com/bindlab/girt/meta"
	"github.com/bindlab/girt/typesys"
)

// Options configures loader behavior.
type Options struct {
	// EagerDependencies forces Resolve on every transitively loaded
	// dependency, not just the requested namespace.
	EagerDependencies bool
}

// DefaultOptions returns default loader configuration.
func DefaultOptions() Options {
	return Options{}
}

// Loader loads namespaces from a metadata repository and caches them for
// the process lifetime. Cache population follows resolve-and-check-before-
// write memoization behind a read-preferring lock, so concurrent first
// access resolves a symbol at most once.
type Loader struct {
	repo      meta.Repository
	types     *typesys.Registry
	compounds *compound.Registry
	packages  map[string]*Package
	options   Options
	mu        sync.RWMutex
}

// New creates a loader over the given repository and registries.
func New(repo meta.Repository, types *typesys.Registry, compounds *compound.Registry, opts Options) *Loader {
	return &Loader{
		repo:      repo,
		types:     types,
		compounds: compounds,
		packages:  make(map[string]*Package),
		options:   opts,
	}
}

// Package returns the Package for a namespace, loading it on first
// reference.
func (l *Loader) Package(namespace string) (*Package, error) {
	return l.LoadPackage(namespace, "")
}

// LoadPackage loads a namespace at a requested version. Loading is
// idempotent: an already-loaded namespace is returned unchanged
// irrespective of a differing requested version. Declared dependencies are
// loaded recursively, each exactly once.
func (l *Loader) LoadPackage(namespace, version string) (*Package, error) {
	l.mu.RLock()
	p, ok := l.packages[namespace]
	l.mu.RUnlock()
	if ok {
		return p, nil
	}

	l.mu.Lock()
	if p, ok = l.packages[namespace]; ok {
		l.mu.Unlock()
		return p, nil
	}

	unit, err := l.repo.Require(namespace, version)
	if err != nil {
		l.mu.Unlock()
		return nil, err
	}

	p = &Package{
		loader:    l,
		namespace: namespace,
		version:   unit.Version(),
		unit:      unit,
		deps:      make(map[string]*Package),
		symbols:   make(map[string]any),
	}
	// Install before loading dependencies so dependency cycles terminate.
	l.packages[namespace] = p
	l.mu.Unlock()

	Logger().Debug("package loaded",
		zap.String("namespace", namespace),
		zap.String("version", unit.Version().String()))

	for _, dep := range unit.Dependencies() {
		dp, err := l.LoadPackage(dep.Namespace, dep.Version.String())
		if err != nil {
			return nil, errors.Wrap(errors.PhaseResolve, errors.KindNotFound, err,
				fmt.Sprintf("dependency %s-%s of %s", dep.Namespace, dep.Version, namespace))
		}
		p.mu.Lock()
		p.deps[dep.Namespace] = dp
		p.mu.Unlock()
		if l.options.EagerDependencies {
			dp.Resolve()
		}
	}

	return p, nil
}

// Package is the lazily populated, cached representation of one namespace.
// Packages live for the process lifetime and are never torn down.
type Package struct {
	loader    *Loader
	unit      meta.Unit
	version   *semver.Version
	deps      map[string]*Package
	symbols   map[string]any
	namespace string
	mu        sync.RWMutex
}

// Namespace returns the package's namespace name.
func (p *Package) Namespace() string { return p.namespace }

// Version returns the loaded metadata version.
func (p *Package) Version() *semver.Version { return p.version }

// Dependency returns a loaded dependency by namespace name.
func (p *Package) Dependency(namespace string) (*Package, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	d, ok := p.deps[namespace]
	return d, ok
}

// Symbols returns the names of every declared top-level entry.
func (p *Package) Symbols() []string {
	names := make([]string, 0, p.unit.InfoCount())
	for i := 0; i < p.unit.InfoCount(); i++ {
		names = append(names, p.unit.Info(i).Name)
	}
	return names
}

// Lookup resolves a symbol by name, memoizing the result. An absent or
// deprecated symbol yields (nil, false, nil) without caching a sticky
// negative: it is re-queried on next access. The error return is reserved
// for loud failures such as an unhandled meta-kind.
func (p *Package) Lookup(name string) (any, bool, error) {
	p.mu.RLock()
	v, ok := p.symbols[name]
	p.mu.RUnlock()
	if ok {
		return v, true, nil
	}

	v, ok, err := p.resolve(name)
	if err != nil || !ok {
		return nil, false, err
	}

	// First write wins: a concurrent resolver may have beaten us here.
	p.mu.Lock()
	if existing, ok := p.symbols[name]; ok {
		p.mu.Unlock()
		return existing, true, nil
	}
	p.symbols[name] = v
	p.mu.Unlock()
	return v, true, nil
}

// Resolve forces resolution of every declared top-level symbol, ignoring
// per-symbol failures. Best-effort eager load for inspection tooling.
func (p *Package) Resolve() *Package {
	for i := 0; i < p.unit.InfoCount(); i++ {
		name := p.unit.Info(i).Name
		if _, _, err := p.Lookup(name); err != nil {
			Logger().Warn("eager resolution failed",
				zap.String("namespace", p.namespace),
				zap.String("symbol", name),
				zap.Error(err))
		}
	}
	return p
}

func (p *Package) resolve(name string) (any, bool, error) {
	info := p.unit.FindByName(name)
	if info == nil {
		// Absence is soft: reported, never raised.
		Logger().Debug("symbol absent",
			zap.Error(errors.MetadataLookup(p.namespace, name)))
		return nil, false, nil
	}
	if info.Deprecated {
		Logger().Debug("symbol deprecated",
			zap.String("namespace", p.namespace),
			zap.String("symbol", name))
		return nil, false, nil
	}

	switch info.Kind {
	case meta.KindFunction:
		if len(info.Methods) == 0 {
			return nil, false, errors.InvalidInput(errors.PhaseResolve,
				fmt.Sprintf("function %s.%s has no accessor", p.namespace, name))
		}
		return info.Methods[0].Invoke, true, nil

	case meta.KindConstant:
		if len(info.Constants) == 0 {
			return nil, false, errors.InvalidInput(errors.PhaseResolve,
				fmt.Sprintf("constant %s.%s has no value", p.namespace, name))
		}
		return info.Constants[0].Value, true, nil

	case meta.KindEnum:
		p.registerType(info)
		return newEnum(info), true, nil

	case meta.KindFlags:
		p.registerType(info)
		return newFlags(info), true, nil

	case meta.KindStruct:
		if info.TypeStruct {
			// Internal type-implementation structs produce no public value.
			return nil, false, nil
		}
		p.registerType(info)
		return p.buildStruct(info), true, nil

	case meta.KindObject, meta.KindInterface:
		p.registerType(info)
		return p.buildEntity(info), true, nil

	case meta.KindInvalid:
		return nil, false, errors.UnsupportedType(errors.PhaseResolve, info.Kind.String())
	}

	return nil, false, errors.UnsupportedType(errors.PhaseResolve, info.Kind.String())
}

func (p *Package) registerType(info *meta.Info) {
	if info.TypeName == "" {
		return
	}
	p.loader.types.Register(info.TypeName, info.Kind.Fundamental())
}

// buildStruct assembles the method table and chooses a disposer: a method
// named "unref" is preferred, else "free". The chosen method is removed
// from the public table and recorded in the per-type-name disposer
// registry, unless one is already registered.
func (p *Package) buildStruct(info *meta.Info) *Struct {
	s := &Struct{
		name:     info.Name,
		typeName: info.TypeName,
		methods:  make(map[string]host.Func, len(info.Methods)),
		fields:   info.Fields,
	}
	for _, m := range info.Methods {
		s.methods[m.Name] = m.Invoke
	}

	for _, candidate := range []string{"unref", "free"} {
		fn, ok := s.methods[candidate]
		if !ok {
			continue
		}
		delete(s.methods, candidate)
		if info.TypeName != "" {
			p.loader.compounds.RegisterDisposer(info.TypeName, func(ref girt.Ref) {
				if _, err := fn([]host.Value{ref}); err != nil {
					Logger().Warn("disposer failed",
						zap.String("type", info.TypeName),
						zap.Error(err))
				}
			})
		}
		break
	}

	return s
}

// buildEntity assembles method/constant/field tables and the ordered
// ancestor chain: for an object its parent then its interfaces, for an
// interface its prerequisites, each in declaration order.
func (p *Package) buildEntity(info *meta.Info) *Entity {
	e := &Entity{
		name:      info.Name,
		typeName:  info.TypeName,
		kind:      info.Kind,
		methods:   make(map[string]host.Func, len(info.Methods)),
		constants: make(map[string]host.Value, len(info.Constants)),
		fields:    info.Fields,
	}
	for _, m := range info.Methods {
		e.methods[m.Name] = m.Invoke
	}
	for _, c := range info.Constants {
		e.constants[c.Name] = c.Value
	}

	anc := &Ancestry{loader: p.loader, owner: p.namespace}
	if info.Kind == meta.KindObject {
		if info.Parent != "" {
			anc.refs = append(anc.refs, parseAncestorRef(p.namespace, info.Parent))
		}
		for _, iface := range info.Interfaces {
			anc.refs = append(anc.refs, parseAncestorRef(p.namespace, iface))
		}
	} else {
		for _, pre := range info.Prerequisites {
			anc.refs = append(anc.refs, parseAncestorRef(p.namespace, pre))
		}
	}
	e.inherits = anc

	return e
}
