package meta

import (
	"testing"

	"github.com/bindlab/girt/errors"
)

func TestParseDependency(t *testing.T) {
	d, err := ParseDependency("GLib-2.0")
	if err != nil {
		t.Fatalf("ParseDependency failed: %v", err)
	}
	if d.Namespace != "GLib" {
		t.Errorf("namespace = %q", d.Namespace)
	}
	if d.Version.String() != "2.0.0" {
		t.Errorf("version = %s, want 2.0.0", d.Version)
	}

	// Namespace names may themselves contain a dash.
	d, err = ParseDependency("Gtk-4.12.1")
	if err != nil {
		t.Fatalf("ParseDependency failed: %v", err)
	}
	if d.Version.String() != "4.12.1" {
		t.Errorf("version = %s", d.Version)
	}

	for _, bad := range []string{"GLib", "-2.0", "GLib-", "GLib-x.y"} {
		if _, err := ParseDependency(bad); err == nil {
			t.Errorf("ParseDependency(%q) should fail", bad)
		}
	}
}

func TestStaticUnit_Lookup(t *testing.T) {
	u := NewStaticUnit("Demo", "1.0").
		Add(&Info{Name: "Flag", Kind: KindFlags}).
		Add(&Info{Name: "run", Kind: KindFunction})

	if u.InfoCount() != 2 {
		t.Fatalf("InfoCount = %d", u.InfoCount())
	}
	info := u.FindByName("Flag")
	if info == nil || info.Kind != KindFlags {
		t.Fatal("FindByName(Flag) failed")
	}
	if info.Namespace != "Demo" {
		t.Errorf("namespace not stamped: %q", info.Namespace)
	}
	if u.FindByName("absent") != nil {
		t.Fatal("absent name should return nil")
	}
}

func TestStaticRepository_Require(t *testing.T) {
	repo := NewStaticRepository().
		Add(NewStaticUnit("Demo", "1.2"))

	if _, err := repo.Require("Demo", ""); err != nil {
		t.Fatalf("Require without version failed: %v", err)
	}
	if _, err := repo.Require("Demo", "1.0"); err != nil {
		t.Fatalf("Require with older compatible version failed: %v", err)
	}
	if _, err := repo.Require("Demo", "2.0"); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatal("major mismatch should fail")
	}
	if _, err := repo.Require("Demo", "1.5"); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatal("newer requested minor should fail")
	}
	if _, err := repo.Require("Nope", ""); !errors.IsKind(err, errors.KindNotFound) {
		t.Fatal("unknown namespace should fail")
	}
}

func TestStaticRepository_FindByTypeName(t *testing.T) {
	repo := NewStaticRepository().
		Add(NewStaticUnit("Demo", "1.0").
			Add(&Info{Name: "Widget", Kind: KindObject, TypeName: "DemoWidget"}))

	info := repo.FindByTypeName("DemoWidget")
	if info == nil || info.Name != "Widget" {
		t.Fatal("FindByTypeName failed")
	}
	if repo.FindByTypeName("") != nil || repo.FindByTypeName("Nope") != nil {
		t.Fatal("unknown type name should return nil")
	}
}

func TestKind_Fundamental(t *testing.T) {
	if KindObject.Fundamental().String() != "object" {
		t.Error("object kind should map to object fundamental")
	}
	if KindFunction.Fundamental().String() != "invalid" {
		t.Error("function kind names no registered type")
	}
}
