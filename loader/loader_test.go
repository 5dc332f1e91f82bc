package loader

import (
	"sync"
	"testing"

	"github.com/bindlab/girt"
	"github.com/bindlab/girt/compound"
	"github.com/bindlab/girt/host"
	"github.com/bindlab/girt/meta"
	"github.com/bindlab/girt/typesys"
)

func newLoader(repo meta.Repository) (*Loader, *typesys.Registry, *compound.Registry) {
	types := typesys.NewRegistry()
	compounds := compound.NewRegistry(types)
	return New(repo, types, compounds, DefaultOptions()), types, compounds
}

func noopFunc(args []host.Value) (host.Value, error) {
	return nil, nil
}

func TestLookup_FunctionAndConstant(t *testing.T) {
	called := false
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{
				Name: "init", Kind: meta.KindFunction,
				Methods: []meta.FunctionInfo{{Name: "init", Invoke: func([]host.Value) (host.Value, error) {
					called = true
					return nil, nil
				}}},
			}).
			Add(&meta.Info{
				Name: "MAX_DEPTH", Kind: meta.KindConstant,
				Constants: []meta.ConstantInfo{{Name: "MAX_DEPTH", Value: int64(32)}},
			}))
	l, _, _ := newLoader(repo)

	pkg, err := l.Package("Demo")
	if err != nil {
		t.Fatalf("Package failed: %v", err)
	}

	v, ok, err := pkg.Lookup("init")
	if err != nil || !ok {
		t.Fatalf("Lookup(init) = %v, %v", ok, err)
	}
	if _, err := v.(host.Func)(nil); err != nil || !called {
		t.Fatal("function accessor should be directly invocable")
	}

	c, ok, _ := pkg.Lookup("MAX_DEPTH")
	if !ok || c != int64(32) {
		t.Fatalf("Lookup(MAX_DEPTH) = %v, %v", c, ok)
	}
}

func TestLookup_Memoized(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "Align", Kind: meta.KindEnum,
				Values: []meta.ValueInfo{{Name: "A", Value: 1}}}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	a, ok, _ := pkg.Lookup("Align")
	if !ok {
		t.Fatal("first lookup failed")
	}
	b, ok, _ := pkg.Lookup("Align")
	if !ok {
		t.Fatal("second lookup failed")
	}
	if a.(*Enum) != b.(*Enum) {
		t.Fatal("resolving twice must return the identical cached value")
	}
}

func TestLookup_AbsentAndDeprecatedUncached(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "old_api", Kind: meta.KindFunction, Deprecated: true,
				Methods: []meta.FunctionInfo{{Name: "old_api", Invoke: noopFunc}}}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	if _, ok, err := pkg.Lookup("missing"); ok || err != nil {
		t.Fatal("absent symbol should be soft absence")
	}
	if _, ok, _ := pkg.Lookup("old_api"); ok {
		t.Fatal("deprecated symbol should be absent")
	}

	// Absence is not cached: the symbol table stays empty and the metadata
	// is re-queried on next access.
	pkg.mu.RLock()
	defer pkg.mu.RUnlock()
	if len(pkg.symbols) != 0 {
		t.Fatalf("negative results must not be cached, table has %d entries", len(pkg.symbols))
	}
}

func TestEnum_ReverseLookup(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "Align", Kind: meta.KindEnum,
				Values: []meta.ValueInfo{{Name: "A", Value: 1}, {Name: "B", Value: 2}}}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	v, _, _ := pkg.Lookup("Align")
	e := v.(*Enum)

	if name, ok := e.Name(1); !ok || name != "A" {
		t.Fatalf("Name(1) = %q, %v", name, ok)
	}
	if _, ok := e.Name(3); ok {
		t.Fatal("reverse lookup of an unbound value should miss")
	}
	if val, ok := e.Value("B"); !ok || val != 2 {
		t.Fatalf("Value(B) = %d, %v", val, ok)
	}
}

func TestFlags_Decompose(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "Mode", Kind: meta.KindFlags,
				Values: []meta.ValueInfo{
					{Name: "READ", Value: 1},
					{Name: "WRITE", Value: 2},
					{Name: "EXEC", Value: 4},
				}}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	v, _, _ := pkg.Lookup("Mode")
	f := v.(*Flags)

	names := f.Decompose(5)
	if len(names) != 2 || names[0] != "READ" || names[1] != "EXEC" {
		t.Fatalf("Decompose(5) = %v, want [READ EXEC]", names)
	}
	if names := f.Decompose(0); len(names) != 0 {
		t.Fatalf("Decompose(0) = %v", names)
	}
}

func TestStruct_DisposerPrecedence(t *testing.T) {
	var unrefs, frees int
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{
				Name: "Blob", Kind: meta.KindStruct, TypeName: "DemoBlob",
				Methods: []meta.FunctionInfo{
					{Name: "unref", Invoke: func([]host.Value) (host.Value, error) { unrefs++; return nil, nil }},
					{Name: "free", Invoke: func([]host.Value) (host.Value, error) { frees++; return nil, nil }},
					{Name: "size", Invoke: noopFunc},
				},
			}))
	l, _, compounds := newLoader(repo)
	pkg, _ := l.Package("Demo")

	v, ok, _ := pkg.Lookup("Blob")
	if !ok {
		t.Fatal("Lookup(Blob) failed")
	}
	s := v.(*Struct)

	if _, ok := s.Method("unref"); ok {
		t.Fatal("chosen disposer must be removed from the public table")
	}
	if _, ok := s.Method("free"); !ok {
		t.Fatal("free should stay public when unref is chosen")
	}
	if _, ok := s.Method("size"); !ok {
		t.Fatal("unrelated methods should stay public")
	}

	d, ok := compounds.Disposer("DemoBlob")
	if !ok {
		t.Fatal("disposer should be registered by type name")
	}
	d(girt.Ref(1))
	if unrefs != 1 || frees != 0 {
		t.Fatalf("unref should be preferred: unrefs=%d frees=%d", unrefs, frees)
	}
}

func TestStruct_DisposerFirstRegistrationWins(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{
				Name: "Blob", Kind: meta.KindStruct, TypeName: "DemoBlob",
				Methods: []meta.FunctionInfo{{Name: "free", Invoke: noopFunc}},
			}))
	l, _, compounds := newLoader(repo)

	var early int
	compounds.RegisterDisposer("DemoBlob", func(girt.Ref) { early++ })

	pkg, _ := l.Package("Demo")
	if _, ok, _ := pkg.Lookup("Blob"); !ok {
		t.Fatal("Lookup(Blob) failed")
	}

	d, _ := compounds.Disposer("DemoBlob")
	d(girt.Ref(1))
	if early != 1 {
		t.Fatal("pre-registered disposer must win over the loader's heuristic")
	}
}

func TestStruct_TypeStructSuppressed(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "WidgetClass", Kind: meta.KindStruct, TypeStruct: true}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	if _, ok, err := pkg.Lookup("WidgetClass"); ok || err != nil {
		t.Fatal("type-implementation structs must produce no public value")
	}
}

func TestEntity_InheritanceFallback(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{
				Name: "Parent", Kind: meta.KindObject, TypeName: "DemoParent",
				Methods: []meta.FunctionInfo{{Name: "m", Invoke: noopFunc}},
			}).
			Add(&meta.Info{
				Name: "Child", Kind: meta.KindObject, TypeName: "DemoChild",
				Parent: "Parent",
			}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	v, _, _ := pkg.Lookup("Child")
	child := v.(*Entity)

	if _, ok := child.Lookup("m"); !ok {
		t.Fatal("lookup of m on Child should fall back to Parent")
	}
	if _, ok := child.Lookup("nope"); ok {
		t.Fatal("absent member should miss through the whole chain")
	}

	inh, ok := child.Lookup(InheritsKey)
	if !ok {
		t.Fatal("_inherits pseudo-entity should be exposed")
	}
	if inh.(*Ancestry).Len() != 1 {
		t.Fatal("Child should have exactly one ancestor fragment")
	}
}

func TestEntity_AncestorOrder(t *testing.T) {
	calls := []string{}
	mk := func(tag string) meta.FunctionInfo {
		return meta.FunctionInfo{Name: "m", Invoke: func([]host.Value) (host.Value, error) {
			calls = append(calls, tag)
			return tag, nil
		}}
	}
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "Parent", Kind: meta.KindObject, Methods: []meta.FunctionInfo{mk("parent")}}).
			Add(&meta.Info{Name: "Iface", Kind: meta.KindInterface, Methods: []meta.FunctionInfo{mk("iface")}}).
			Add(&meta.Info{
				Name: "Child", Kind: meta.KindObject,
				Parent:     "Parent",
				Interfaces: []string{"Iface"},
			}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	v, _, _ := pkg.Lookup("Child")
	m, ok := v.(*Entity).Lookup("m")
	if !ok {
		t.Fatal("fallback lookup failed")
	}
	// Parent precedes interfaces; the first hit wins.
	out, _ := m.(host.Func)(nil)
	if out != "parent" {
		t.Fatalf("lookup resolved to %v, want the parent's member", out)
	}
}

func TestEntity_CrossNamespaceAncestor(t *testing.T) {
	repo := meta.NewStaticRepository().
		Add(meta.NewStaticUnit("Base", "1.0").
			Add(&meta.Info{
				Name: "Object", Kind: meta.KindObject, TypeName: "BaseObject",
				Methods: []meta.FunctionInfo{{Name: "ref_count", Invoke: noopFunc}},
			})).
		Add(meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{
				Name: "Widget", Kind: meta.KindObject, TypeName: "DemoWidget",
				Parent: "Base.Object",
			}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	v, _, _ := pkg.Lookup("Widget")
	if _, ok := v.(*Entity).Lookup("ref_count"); !ok {
		t.Fatal("cross-namespace ancestor lookup should lazily load Base")
	}

	// The ancestor namespace is now cached in the loader.
	if _, err := l.Package("Base"); err != nil {
		t.Fatalf("Base should be loaded: %v", err)
	}
}

func TestLoadPackage_IdempotentAcrossVersions(t *testing.T) {
	repo := meta.NewStaticRepository().Add(meta.NewStaticUnit("Demo", "1.2"))
	l, _, _ := newLoader(repo)

	a, err := l.LoadPackage("Demo", "1.0")
	if err != nil {
		t.Fatalf("LoadPackage failed: %v", err)
	}
	b, err := l.LoadPackage("Demo", "9.9")
	if err != nil {
		t.Fatalf("already-loaded namespace must ignore the requested version: %v", err)
	}
	if a != b {
		t.Fatal("LoadPackage must be idempotent")
	}
}

func TestLoadPackage_Dependencies(t *testing.T) {
	repo := meta.NewStaticRepository().
		Add(meta.NewStaticUnit("A", "1.0").Depend("B-1.0")).
		Add(meta.NewStaticUnit("B", "1.0").Depend("C-2.0")).
		Add(meta.NewStaticUnit("C", "2.0"))
	l, _, _ := newLoader(repo)

	a, err := l.Package("A")
	if err != nil {
		t.Fatalf("Package(A) failed: %v", err)
	}

	b, ok := a.Dependency("B")
	if !ok {
		t.Fatal("A should hold its dependency B")
	}
	if _, ok := b.Dependency("C"); !ok {
		t.Fatal("B should hold its transitive dependency C")
	}

	// Memoized: loading B again yields the same package.
	b2, _ := l.Package("B")
	if b != b2 {
		t.Fatal("dependency should be loaded exactly once")
	}
}

func TestLoadPackage_EagerDependencies(t *testing.T) {
	repo := meta.NewStaticRepository().
		Add(meta.NewStaticUnit("A", "1.0").Depend("B-1.0")).
		Add(meta.NewStaticUnit("B", "1.0").
			Add(&meta.Info{Name: "MAX_DEPTH", Kind: meta.KindConstant,
				Constants: []meta.ConstantInfo{{Name: "MAX_DEPTH", Value: int64(32)}}}))
	types := typesys.NewRegistry()
	l := New(repo, types, compound.NewRegistry(types), Options{EagerDependencies: true})

	a, err := l.Package("A")
	if err != nil {
		t.Fatalf("Package(A) failed: %v", err)
	}

	b, ok := a.Dependency("B")
	if !ok {
		t.Fatal("A should hold its dependency B")
	}

	// Eager loading resolves the dependency's symbols without a Lookup.
	b.mu.RLock()
	defer b.mu.RUnlock()
	if _, ok := b.symbols["MAX_DEPTH"]; !ok {
		t.Fatal("dependency symbols should be resolved eagerly")
	}
}

func TestResolve_BestEffort(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "good", Kind: meta.KindConstant,
				Constants: []meta.ConstantInfo{{Name: "good", Value: 1}}}).
			Add(&meta.Info{Name: "broken", Kind: meta.KindFunction}). // no accessor
			Add(&meta.Info{Name: "Align", Kind: meta.KindEnum,
				Values: []meta.ValueInfo{{Name: "A", Value: 1}}}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	pkg.Resolve()

	if _, ok, _ := pkg.Lookup("good"); !ok {
		t.Fatal("good symbol should resolve")
	}
	if _, ok, _ := pkg.Lookup("Align"); !ok {
		t.Fatal("per-symbol failure must not abort eager resolution")
	}
}

func TestLookup_ConcurrentFirstResolution(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "Align", Kind: meta.KindEnum,
				Values: []meta.ValueInfo{{Name: "A", Value: 1}}}))
	l, _, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	const workers = 16
	results := make([]any, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			v, _, _ := pkg.Lookup("Align")
			results[i] = v
		}(i)
	}
	wg.Wait()

	for i := 1; i < workers; i++ {
		if results[i] != results[0] {
			t.Fatal("concurrent first resolution must never produce two distinct values")
		}
	}
}

func TestLookup_RegistersTypes(t *testing.T) {
	repo := meta.NewStaticRepository().Add(
		meta.NewStaticUnit("Demo", "1.0").
			Add(&meta.Info{Name: "Widget", Kind: meta.KindObject, TypeName: "DemoWidget"}))
	l, types, _ := newLoader(repo)
	pkg, _ := l.Package("Demo")

	pkg.Lookup("Widget")

	id, ok := types.ByName("DemoWidget")
	if !ok {
		t.Fatal("resolution should register the native type")
	}
	if types.Fundamental(id) != typesys.FundObject {
		t.Fatal("wrong fundamental for registered object type")
	}
}
