package main

import (
	"github.com/bindlab/girt/host"
	"github.com/bindlab/girt/meta"
	"github.com/bindlab/girt/typetag"
)

// demoRepository builds the in-memory metadata served by the browser: a
// "Base" namespace with a root object, and a "Demo" namespace depending on
// it with enums, flags, structs and objects.
func demoRepository() *meta.StaticRepository {
	noop := func([]host.Value) (host.Value, error) { return nil, nil }

	base := meta.NewStaticUnit("Base", "1.0").
		Add(&meta.Info{
			Name: "Object", Kind: meta.KindObject, TypeName: "BaseObject",
			Methods: []meta.FunctionInfo{
				{Name: "ref", Invoke: noop},
				{Name: "unref", Invoke: noop},
				{Name: "notify", Invoke: noop},
			},
		}).
		Add(&meta.Info{
			Name: "Comparable", Kind: meta.KindInterface, TypeName: "BaseComparable",
			Methods: []meta.FunctionInfo{{Name: "compare", Invoke: noop}},
		})

	demo := meta.NewStaticUnit("Demo", "1.0").
		Depend("Base-1.0").
		Add(&meta.Info{
			Name: "MAJOR_VERSION", Kind: meta.KindConstant,
			Constants: []meta.ConstantInfo{{Name: "MAJOR_VERSION", Value: int64(1)}},
		}).
		Add(&meta.Info{
			Name: "init", Kind: meta.KindFunction,
			Methods: []meta.FunctionInfo{{Name: "init", Invoke: noop}},
		}).
		Add(&meta.Info{
			Name: "Align", Kind: meta.KindEnum, TypeName: "DemoAlign",
			Values: []meta.ValueInfo{
				{Name: "START", Value: 0},
				{Name: "CENTER", Value: 1},
				{Name: "END", Value: 2},
			},
		}).
		Add(&meta.Info{
			Name: "IOFlags", Kind: meta.KindFlags, TypeName: "DemoIOFlags",
			Values: []meta.ValueInfo{
				{Name: "READ", Value: 1},
				{Name: "WRITE", Value: 2},
				{Name: "EXEC", Value: 4},
			},
		}).
		Add(&meta.Info{
			Name: "Buffer", Kind: meta.KindStruct, TypeName: "DemoBuffer",
			Methods: []meta.FunctionInfo{
				{Name: "unref", Invoke: noop},
				{Name: "free", Invoke: noop},
				{Name: "size", Invoke: noop},
			},
			Fields: []meta.FieldInfo{
				{Name: "len", Tag: typetag.TagUint64},
				{Name: "data", Tag: typetag.TagInterface},
			},
		}).
		Add(&meta.Info{
			Name: "Widget", Kind: meta.KindObject, TypeName: "DemoWidget",
			Parent:     "Base.Object",
			Interfaces: []string{"Base.Comparable"},
			Methods: []meta.FunctionInfo{
				{Name: "show", Invoke: noop},
				{Name: "hide", Invoke: noop},
			},
			Constants: []meta.ConstantInfo{{Name: "PRIORITY_DEFAULT", Value: int64(0)}},
		}).
		Add(&meta.Info{
			Name: "WidgetClass", Kind: meta.KindStruct, TypeStruct: true,
		})

	return meta.NewStaticRepository().Add(base).Add(demo)
}
