package typetag

import (
	"fmt"
	"math"

	"github.com/bindlab/girt/errors"
	"github.com/bindlab/girt/typesys"
)

// Descriptor describes the storage and conversion primitives for one tag.
// Check converts a host value into the canonical storage representation,
// enforcing exactly the declared width and signedness. Push converts stored
// canonical data back into a host value.
type Descriptor struct {
	Check   func(v any) (any, error)
	Push    func(stored any) any
	Tag     Tag
	Storage Storage
	Type    typesys.ID
	Bits    uint8
	Signed  bool
}

var registry = map[Tag]*Descriptor{
	TagVoid: {
		Tag:     TagVoid,
		Storage: StorageNone,
		Type:    typesys.IDNone,
		Check:   func(any) (any, error) { return nil, nil },
		Push:    func(any) any { return nil },
	},
	TagBoolean: {
		Tag:     TagBoolean,
		Storage: StorageBool,
		Type:    typesys.IDBool,
		Check:   checkBool,
		Push:    func(s any) any { return s.(bool) },
	},
	TagInt8:   intDescriptor(TagInt8, 8),
	TagUint8:  uintDescriptor(TagUint8, 8),
	TagInt16:  intDescriptor(TagInt16, 16),
	TagUint16: uintDescriptor(TagUint16, 16),
	TagInt32:  intDescriptor(TagInt32, 32),
	TagUint32: uintDescriptor(TagUint32, 32),
	TagInt64:  intDescriptor(TagInt64, 64),
	TagUint64: uintDescriptor(TagUint64, 64),
	TagFloat: {
		Tag:     TagFloat,
		Storage: StorageFloat,
		Type:    typesys.IDFloat,
		Bits:    32,
		Check:   checkFloat32,
		Push:    func(s any) any { return s.(float64) },
	},
	TagDouble: {
		Tag:     TagDouble,
		Storage: StorageFloat,
		Type:    typesys.IDFloat,
		Bits:    64,
		Check:   checkFloat64,
		Push:    func(s any) any { return s.(float64) },
	},
	TagUnichar: uintDescriptor(TagUnichar, 32),
	TagUTF8: {
		Tag:     TagUTF8,
		Storage: StorageString,
		Type:    typesys.IDString,
		Check:   checkString,
		Push:    func(s any) any { return s.(string) },
	},
	TagFilename: {
		Tag:     TagFilename,
		Storage: StorageString,
		Type:    typesys.IDString,
		Check:   checkString,
		Push:    func(s any) any { return s.(string) },
	},
}

// Lookup returns the descriptor for a tag. Composite tags (array, list,
// hash, error) and the interface tag have no direct storage here; looking
// them up fails rather than silently coercing.
func Lookup(tag Tag) (*Descriptor, error) {
	d, ok := registry[tag]
	if !ok {
		return nil, errors.UnsupportedType(errors.PhaseLookup, tag.String())
	}
	return d, nil
}

// ByType returns the descriptor whose backing type matches id exactly.
// Used by the marshaller's fast path before fundamental-kind dispatch.
func ByType(id typesys.ID) (*Descriptor, bool) {
	switch id {
	case typesys.IDBool:
		return registry[TagBoolean], true
	case typesys.IDInt:
		return registry[TagInt64], true
	case typesys.IDUint:
		return registry[TagUint64], true
	case typesys.IDFloat:
		return registry[TagDouble], true
	case typesys.IDString:
		return registry[TagUTF8], true
	}
	return nil, false
}

func intDescriptor(tag Tag, bits uint8) *Descriptor {
	return &Descriptor{
		Tag:     tag,
		Storage: StorageInt,
		Type:    typesys.IDInt,
		Bits:    bits,
		Signed:  true,
		Check: func(v any) (any, error) {
			n, err := hostInt(v, tag)
			if err != nil {
				return nil, err
			}
			lo, hi := intRange(bits)
			if n < lo || n > hi {
				return nil, rangeError(v, tag)
			}
			return n, nil
		},
		Push: func(s any) any { return s.(int64) },
	}
}

func uintDescriptor(tag Tag, bits uint8) *Descriptor {
	return &Descriptor{
		Tag:     tag,
		Storage: StorageUint,
		Type:    typesys.IDUint,
		Bits:    bits,
		Check: func(v any) (any, error) {
			n, err := hostUint(v, tag)
			if err != nil {
				return nil, err
			}
			if bits < 64 && n > (uint64(1)<<bits)-1 {
				return nil, rangeError(v, tag)
			}
			return n, nil
		},
		Push: func(s any) any { return s.(uint64) },
	}
}

// One past the top of each 64-bit range, exactly representable as float64.
// Converting a float at or beyond these bounds to an integer is undefined,
// so floats are bounds-checked before conversion.
const (
	floatMaxInt64  = float64(1 << 63)
	floatMaxUint64 = float64(1 << 64)
)

func intRange(bits uint8) (int64, int64) {
	if bits == 64 {
		return math.MinInt64, math.MaxInt64
	}
	hi := int64(1)<<(bits-1) - 1
	return -hi - 1, hi
}

func checkBool(v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, shapeError(v, TagBoolean)
	}
	return b, nil
}

func checkString(v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, shapeError(v, TagUTF8)
	}
	return s, nil
}

func checkFloat64(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	}
	return nil, shapeError(v, TagDouble)
}

// checkFloat32 narrows through float32 so stored precision matches the
// declared width.
func checkFloat32(v any) (any, error) {
	f, err := checkFloat64(v)
	if err != nil {
		return nil, shapeError(v, TagFloat)
	}
	return float64(float32(f.(float64))), nil
}

// hostInt accepts host integer shapes without implicit widening from
// non-integers: a float is accepted only when it is integral.
func hostInt(v any, tag Tag) (int64, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		if uint64(n) > math.MaxInt64 {
			return 0, rangeError(v, tag)
		}
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return 0, rangeError(v, tag)
		}
		return int64(n), nil
	case float64:
		if n != math.Trunc(n) {
			return 0, shapeError(v, tag)
		}
		if n < -floatMaxInt64 || n >= floatMaxInt64 {
			return 0, rangeError(v, tag)
		}
		return int64(n), nil
	}
	return 0, shapeError(v, tag)
}

func hostUint(v any, tag Tag) (uint64, error) {
	switch n := v.(type) {
	case int:
		if n < 0 {
			return 0, rangeError(v, tag)
		}
		return uint64(n), nil
	case int8, int16, int32, int64:
		i, _ := hostInt(v, tag)
		if i < 0 {
			return 0, rangeError(v, tag)
		}
		return uint64(i), nil
	case uint:
		return uint64(n), nil
	case uint8:
		return uint64(n), nil
	case uint16:
		return uint64(n), nil
	case uint32:
		return uint64(n), nil
	case uint64:
		return n, nil
	case float64:
		if n != math.Trunc(n) {
			return 0, shapeError(v, tag)
		}
		if n < 0 || n >= floatMaxUint64 {
			return 0, rangeError(v, tag)
		}
		return uint64(n), nil
	}
	return 0, shapeError(v, tag)
}

func shapeError(v any, tag Tag) error {
	return errors.Conversion(errors.PhaseLoad, v, tag.String())
}

func rangeError(v any, tag Tag) error {
	return errors.New(errors.PhaseLoad, errors.KindConversion).
		HostType(fmt.Sprintf("%T", v)).
		NativeType(tag.String()).
		Detail("value %v out of range", v).
		Value(v).
		Build()
}
