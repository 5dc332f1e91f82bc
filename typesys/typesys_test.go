package typesys

import (
	"testing"
)

func TestRegistry_Builtins(t *testing.T) {
	r := NewRegistry()

	if f := r.Fundamental(IDBool); f != FundBool {
		t.Fatalf("expected FundBool, got %v", f)
	}
	if n := r.Name(IDString); n != "gchararray" {
		t.Fatalf("expected gchararray, got %q", n)
	}
	if id, ok := r.ByName("gint"); !ok || id != IDInt {
		t.Fatalf("ByName(gint) = %v, %v", id, ok)
	}
}

func TestRegistry_RegisterIdempotent(t *testing.T) {
	r := NewRegistry()

	a := r.Register("GtkWindow", FundObject)
	b := r.Register("GtkWindow", FundObject)
	if a != b {
		t.Fatalf("re-registration returned a different ID: %v vs %v", a, b)
	}
	if a < IDFirstRegistered {
		t.Fatalf("registered ID %v collides with builtin space", a)
	}
	if r.Fundamental(a) != FundObject {
		t.Fatal("wrong fundamental for registered type")
	}
	if r.Name(a) != "GtkWindow" {
		t.Fatalf("wrong name: %q", r.Name(a))
	}
}

func TestRegistry_UnknownID(t *testing.T) {
	r := NewRegistry()

	if r.Fundamental(ID(9999)) != FundInvalid {
		t.Fatal("unknown ID should be invalid")
	}
	if r.Name(ID(9999)) != "" {
		t.Fatal("unknown ID should have empty name")
	}
	if r.Fundamental(IDInvalid) != FundInvalid {
		t.Fatal("ID 0 should be invalid")
	}
}
