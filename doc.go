// Package girt provides a runtime binding layer that projects an
// introspected native type system onto values and callables usable from a
// dynamically-typed scripting host, without hand-written glue per symbol.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	girt/             Root package with opaque native reference types
//	├── typetag/      Closed type-tag enum and conversion registry
//	├── typesys/      Registered native type identities and fundamentals
//	├── compound/     Native object/boxed instances, proxies, disposers
//	├── host/         Host value model, callables, owning execution context
//	├── marshal/      Tagged-value marshalling between host and native
//	├── closure/      Native-invocable trampolines around host callables
//	├── logbridge/    Native log forwarding with fatal escalation
//	├── meta/         Introspection metadata model and repositories
//	├── loader/       Lazy, cached, inheritance-aware namespace loader
//	└── errors/       Structured error types for debugging
//
// # Quick Start
//
// Load a namespace and resolve symbols lazily:
//
//	types := typesys.NewRegistry()
//	compounds := compound.NewRegistry(types)
//	ld := loader.New(repo, types, compounds, loader.DefaultOptions())
//
//	pkg, err := ld.Package("GLib")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	sym, ok, err := pkg.Lookup("Variant")
//
// # Thread Safety
//
// Scheduling is single-threaded cooperative from the host's viewpoint.
// Loader caches use resolve-and-check-before-write memoization behind a
// read-preferring lock, so concurrent first resolution of a symbol yields
// exactly one value. Native code may invoke a closure trampoline from a
// foreign goroutine; such calls are enqueued on the owning host.Context and
// drained by its single scheduler rather than reentering the interpreter
// from an arbitrary caller.
package girt
