// Package meta models the introspection metadata consumed by the binding
// layer. The schema is supplied by an external metadata provider; this
// package defines the closed meta-kind union, the repository capability
// surface, and a static in-memory repository used by tests and tooling.
package meta

import (
	"github.com/bindlab/girt/host"
	"github.com/bindlab/girt/typesys"
	"github.com/bindlab/girt/typetag"
)

// Kind is the closed meta-kind union. Dispatch on Kind is matched
// exhaustively; an unlisted kind is a loud failure, never a silent skip.
type Kind uint8

const (
	KindInvalid Kind = iota
	KindFunction
	KindConstant
	KindEnum
	KindFlags
	KindStruct
	KindInterface
	KindObject
)

var kindNames = [...]string{
	KindInvalid:   "invalid",
	KindFunction:  "function",
	KindConstant:  "constant",
	KindEnum:      "enum",
	KindFlags:     "flags",
	KindStruct:    "struct",
	KindInterface: "interface",
	KindObject:    "object",
}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Fundamental maps a meta-kind to its registered-type fundamental, or
// FundInvalid for kinds that do not name a registered type.
func (k Kind) Fundamental() typesys.Fundamental {
	switch k {
	case KindEnum:
		return typesys.FundEnum
	case KindFlags:
		return typesys.FundFlags
	case KindStruct:
		return typesys.FundBoxed
	case KindInterface:
		return typesys.FundInterface
	case KindObject:
		return typesys.FundObject
	default:
		return typesys.FundInvalid
	}
}

// ValueInfo is one declared enum or flags member.
type ValueInfo struct {
	Name  string
	Value int64
}

// FunctionInfo is a callable entry: a method, constructor or free function.
// Invoke is the direct native accessor handle.
type FunctionInfo struct {
	Invoke host.Func
	Name   string
}

// ConstantInfo is a declared constant with its unboxed value.
type ConstantInfo struct {
	Value host.Value
	Name  string
}

// FieldInfo is a raw field descriptor. Fields are not pre-resolved; the
// marshaller interprets them on access.
type FieldInfo struct {
	Name   string
	Tag    typetag.Tag
	Offset uint32
}

// Info describes one top-level metadata entry. Only the fields relevant to
// its Kind are populated.
type Info struct {
	Name       string
	Namespace  string
	TypeName   string // registered native type name, "" if unregistered
	Kind       Kind
	Deprecated bool

	// Enum/Flags.
	Values []ValueInfo

	// Struct/Interface/Object.
	Methods   []FunctionInfo
	Constants []ConstantInfo
	Fields    []FieldInfo

	// Object ancestry: parent, then implemented interfaces, in declaration
	// order. Interface ancestry: prerequisites in declaration order.
	// Entries are qualified "Namespace.Name".
	Parent        string
	Interfaces    []string
	Prerequisites []string

	// TypeStruct marks internal type-implementation structs, which are
	// suppressed from the public namespace.
	TypeStruct bool
}

// TypeDescriptor describes one native type slot: a tag plus, for the
// interface tag, a reference to the interfaced entry.
type TypeDescriptor struct {
	Interface *Info
	Tag       typetag.Tag
}
