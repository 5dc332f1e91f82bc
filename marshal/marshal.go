// Package marshal converts between tagged native values and host values.
//
// A Tagged value pairs canonical storage with the type tag that determines
// its interpretation; it must be produced through Init or Load before use.
// Conversion follows the type-tag registry for basic tags and falls back to
// fundamental-kind dispatch (enum, flags, object, boxed) for registered
// compound types. Dispatch is exhaustive: an unhandled tag or fundamental
// fails loudly instead of misinterpreting storage.
package marshal

import (
	"fmt"

	"github.com/bindlab/girt"
	"github.com/bindlab/girt/compound"
	"github.com/bindlab/girt/errors"
	"github.com/bindlab/girt/host"
	"github.com/bindlab/girt/meta"
	"github.com/bindlab/girt/typesys"
	"github.com/bindlab/girt/typetag"
)

// Tagged is a native typed value: canonical storage whose interpretation is
// solely determined by Tag, plus the backing registered type identity.
type Tagged struct {
	Data any
	Tag  typetag.Tag
	Type typesys.ID
}

// Marshaller converts between tagged native values and host values.
type Marshaller struct {
	types     *typesys.Registry
	compounds *compound.Registry
	repo      meta.Repository
}

// New creates a marshaller over the given type registry, compound registry
// and metadata repository.
func New(types *typesys.Registry, compounds *compound.Registry, repo meta.Repository) *Marshaller {
	return &Marshaller{
		types:     types,
		compounds: compounds,
		repo:      repo,
	}
}

// Init allocates a zeroed tagged value sized and typed per the descriptor.
// For an interface-kind descriptor the referenced registered type is
// resolved; an interface that is not a registered type fails with a
// bad_interface error carrying the raw interface kind.
func (m *Marshaller) Init(desc meta.TypeDescriptor) (Tagged, error) {
	if desc.Tag.IsBasic() {
		d, err := typetag.Lookup(desc.Tag)
		if err != nil {
			return Tagged{}, err
		}
		return Tagged{Tag: desc.Tag, Type: d.Type, Data: zeroForStorage(d.Storage)}, nil
	}
	if desc.Tag != typetag.TagInterface {
		return Tagged{}, errors.UnsupportedType(errors.PhaseInit, desc.Tag.String())
	}

	id, fund, err := m.resolveInterface(desc, errors.PhaseInit)
	if err != nil {
		return Tagged{}, err
	}
	return Tagged{Tag: desc.Tag, Type: id, Data: zeroForFundamental(fund)}, nil
}

// Load converts a host value into a tagged value per the descriptor. The
// fast path matches the descriptor's backing type exactly against the tag
// registry; the fallback dispatches by fundamental kind. Enum and flags
// convert a host integer; object and boxed extract the raw reference and
// concrete type from a host proxy without taking ownership.
func (m *Marshaller) Load(v host.Value, desc meta.TypeDescriptor) (Tagged, error) {
	if desc.Tag.IsBasic() {
		d, err := typetag.Lookup(desc.Tag)
		if err != nil {
			return Tagged{}, err
		}
		stored, err := d.Check(v)
		if err != nil {
			return Tagged{}, err
		}
		return Tagged{Tag: desc.Tag, Type: d.Type, Data: stored}, nil
	}
	if desc.Tag != typetag.TagInterface {
		return Tagged{}, errors.UnsupportedType(errors.PhaseLoad, desc.Tag.String())
	}

	id, fund, err := m.resolveInterface(desc, errors.PhaseLoad)
	if err != nil {
		return Tagged{}, err
	}

	// Fast path: the registered type is backed by a basic storage entry.
	if d, ok := typetag.ByType(id); ok {
		stored, err := d.Check(v)
		if err != nil {
			return Tagged{}, err
		}
		return Tagged{Tag: desc.Tag, Type: id, Data: stored}, nil
	}

	switch fund {
	case typesys.FundEnum, typesys.FundFlags:
		n, err := checkInt(v)
		if err != nil {
			return Tagged{}, err
		}
		return Tagged{Tag: desc.Tag, Type: id, Data: n}, nil

	case typesys.FundObject, typesys.FundBoxed, typesys.FundInterface:
		ref, concrete, ok := m.compounds.Extract(v)
		if !ok {
			return Tagged{}, errors.New(errors.PhaseLoad, errors.KindConversion).
				HostType(fmt.Sprintf("%T", v)).
				NativeType(m.types.Name(id)).
				Detail("expected a compound proxy").
				Build()
		}
		return Tagged{Tag: desc.Tag, Type: concrete, Data: ref}, nil
	}

	return Tagged{}, errors.UnsupportedType(errors.PhaseLoad, fund.String())
}

// Store converts a tagged value back into a host value. Enum and flags
// yield a host integer. Object and boxed look up registered metadata for
// the concrete type; if found, the instance is duplicated and wrapped in a
// fresh host-owned proxy, otherwise the type is an unknown compound. A
// null reference yields nil without a proxy.
func (m *Marshaller) Store(tv Tagged) (host.Value, error) {
	if tv.Tag.IsBasic() {
		d, err := typetag.Lookup(tv.Tag)
		if err != nil {
			return nil, err
		}
		return d.Push(tv.Data), nil
	}
	if tv.Tag != typetag.TagInterface {
		return nil, errors.UnsupportedType(errors.PhaseStore, tv.Tag.String())
	}

	// Fast path: interface type backed by a basic storage entry.
	if d, ok := typetag.ByType(tv.Type); ok {
		return d.Push(tv.Data), nil
	}

	switch fund := m.types.Fundamental(tv.Type); fund {
	case typesys.FundEnum, typesys.FundFlags:
		n, ok := tv.Data.(int64)
		if !ok {
			return nil, storeError(tv, m.types, "enum storage is not an integer")
		}
		return n, nil

	case typesys.FundObject, typesys.FundBoxed, typesys.FundInterface:
		ref, ok := tv.Data.(girt.Ref)
		if !ok {
			return nil, storeError(tv, m.types, "compound storage is not a reference")
		}
		// A null reference crosses the boundary as nil, not as a proxy.
		if !ref.IsValid() {
			return nil, nil
		}
		name := m.types.Name(tv.Type)
		if m.repo.FindByTypeName(name) == nil {
			return nil, errors.UnknownCompound(errors.PhaseStore, name)
		}
		dup := m.compounds.Dup(tv.Type, ref)
		return m.compounds.NewProxy(tv.Type, dup, true), nil
	}

	return nil, errors.UnsupportedType(errors.PhaseStore,
		fmt.Sprintf("%s(%s)", m.types.Name(tv.Type), m.types.Fundamental(tv.Type)))
}

func (m *Marshaller) resolveInterface(desc meta.TypeDescriptor, phase errors.Phase) (typesys.ID, typesys.Fundamental, error) {
	ii := desc.Interface
	if ii == nil {
		return 0, typesys.FundInvalid, errors.BadInterface(phase, "nil")
	}
	fund := ii.Kind.Fundamental()
	if fund == typesys.FundInvalid || ii.TypeName == "" {
		return 0, typesys.FundInvalid, errors.BadInterface(phase, ii.Kind.String())
	}
	return m.types.Register(ii.TypeName, fund), fund, nil
}

func checkInt(v host.Value) (int64, error) {
	d, err := typetag.Lookup(typetag.TagInt64)
	if err != nil {
		return 0, err
	}
	stored, err := d.Check(v)
	if err != nil {
		return 0, err
	}
	return stored.(int64), nil
}

func zeroForStorage(s typetag.Storage) any {
	switch s {
	case typetag.StorageBool:
		return false
	case typetag.StorageInt:
		return int64(0)
	case typetag.StorageUint:
		return uint64(0)
	case typetag.StorageFloat:
		return float64(0)
	case typetag.StorageString:
		return ""
	case typetag.StoragePointer:
		return girt.Ref(0)
	}
	return nil
}

func zeroForFundamental(f typesys.Fundamental) any {
	switch f {
	case typesys.FundEnum, typesys.FundFlags:
		return int64(0)
	case typesys.FundObject, typesys.FundBoxed, typesys.FundInterface:
		return girt.Ref(0)
	}
	return nil
}

func storeError(tv Tagged, types *typesys.Registry, detail string) error {
	return errors.New(errors.PhaseStore, errors.KindConversion).
		NativeType(types.Name(tv.Type)).
		Detail(detail).
		Value(tv.Data).
		Build()
}
