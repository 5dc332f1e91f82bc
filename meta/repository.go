package meta

import (
	"fmt"
	"strings"
	"sync"

	"github.com/coreos/go-semver/semver"

	"github.com/bindlab/girt/errors"
)

// Dependency is a declared "name-version" dependency of a metadata unit.
type Dependency struct {
	Version   *semver.Version
	Namespace string
}

// ParseDependency parses a declared dependency like "GLib-2.0". Versions
// shorter than three components are padded with zeros.
func ParseDependency(s string) (Dependency, error) {
	i := strings.LastIndexByte(s, '-')
	if i <= 0 || i == len(s)-1 {
		return Dependency{}, errors.InvalidInput(errors.PhaseResolve,
			fmt.Sprintf("malformed dependency %q: want name-version", s))
	}

	v, err := ParseVersion(s[i+1:])
	if err != nil {
		return Dependency{}, err
	}
	return Dependency{Namespace: s[:i], Version: v}, nil
}

// ParseVersion parses a metadata version, padding "2" or "2.0" to "2.0.0".
func ParseVersion(s string) (*semver.Version, error) {
	for strings.Count(s, ".") < 2 {
		s += ".0"
	}
	v, err := semver.NewVersion(s)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseResolve, errors.KindInvalidInput, err,
			fmt.Sprintf("malformed version %q", s))
	}
	return v, nil
}

// Unit is one loaded metadata unit: the enumerable description of a single
// namespace.
type Unit interface {
	Namespace() string
	Version() *semver.Version
	Dependencies() []Dependency

	// InfoCount and Info enumerate top-level entries by index.
	InfoCount() int
	Info(i int) *Info

	// FindByName returns the entry with the given name, or nil.
	FindByName(name string) *Info
}

// Repository is the metadata provider collaborator.
type Repository interface {
	// Require loads the metadata unit for a namespace. An empty version
	// requests the latest available unit.
	Require(namespace, version string) (Unit, error)

	// FindByTypeName locates the metadata entry backing a registered native
	// type name, across all loaded units. Returns nil if unknown.
	FindByTypeName(typeName string) *Info
}

// StaticUnit is an in-memory Unit built programmatically.
type StaticUnit struct {
	version   *semver.Version
	byName    map[string]*Info
	namespace string
	infos     []*Info
	deps      []Dependency
}

// NewStaticUnit creates a unit for a namespace at a version like "2.0".
func NewStaticUnit(namespace, version string) *StaticUnit {
	v, err := ParseVersion(version)
	if err != nil {
		panic(err)
	}
	return &StaticUnit{
		namespace: namespace,
		version:   v,
		byName:    make(map[string]*Info),
	}
}

// Depend declares a dependency from a "name-version" pair.
func (u *StaticUnit) Depend(spec string) *StaticUnit {
	d, err := ParseDependency(spec)
	if err != nil {
		panic(err)
	}
	u.deps = append(u.deps, d)
	return u
}

// Add appends a top-level entry, stamping its namespace.
func (u *StaticUnit) Add(info *Info) *StaticUnit {
	info.Namespace = u.namespace
	u.infos = append(u.infos, info)
	u.byName[info.Name] = info
	return u
}

func (u *StaticUnit) Namespace() string          { return u.namespace }
func (u *StaticUnit) Version() *semver.Version   { return u.version }
func (u *StaticUnit) Dependencies() []Dependency { return u.deps }
func (u *StaticUnit) InfoCount() int             { return len(u.infos) }
func (u *StaticUnit) Info(i int) *Info           { return u.infos[i] }

func (u *StaticUnit) FindByName(name string) *Info {
	return u.byName[name]
}

// StaticRepository is an in-memory Repository holding static units.
type StaticRepository struct {
	units map[string]*StaticUnit
	mu    sync.RWMutex
}

// NewStaticRepository creates an empty repository.
func NewStaticRepository() *StaticRepository {
	return &StaticRepository{
		units: make(map[string]*StaticUnit),
	}
}

// Add installs a unit, replacing any unit for the same namespace.
func (r *StaticRepository) Add(u *StaticUnit) *StaticRepository {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.units[u.Namespace()] = u
	return r
}

// Require returns the unit for a namespace. A non-empty requested version
// must be compatible: equal major, available minor not older.
func (r *StaticRepository) Require(namespace, version string) (Unit, error) {
	r.mu.RLock()
	u, ok := r.units[namespace]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NotFound(errors.PhaseResolve,
			fmt.Sprintf("namespace %q has no metadata unit", namespace))
	}

	if version != "" {
		want, err := ParseVersion(version)
		if err != nil {
			return nil, err
		}
		have := u.Version()
		if have.Major != want.Major || have.LessThan(*want) {
			return nil, errors.NotFound(errors.PhaseResolve,
				fmt.Sprintf("namespace %q version %s incompatible with requested %s",
					namespace, have, want))
		}
	}
	return u, nil
}

// FindByTypeName scans loaded units for the entry backing a type name.
func (r *StaticRepository) FindByTypeName(typeName string) *Info {
	if typeName == "" {
		return nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.units {
		for _, info := range u.infos {
			if info.TypeName == typeName {
				return info
			}
		}
	}
	return nil
}
