// Package errors provides structured error types for the girt binding layer.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error
// category). The Error type includes rich context: symbol path, host/native
// type names, and cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseLoad, errors.KindConversion).
//		Path("Gtk", "Window", "title").
//		HostType("float64").
//		NativeType("utf8").
//		Detail("cannot convert number to string").
//		Build()
//
// Or use convenience constructors for the binding error taxonomy:
//
//	err := errors.UnsupportedType(errors.PhaseLookup, "array")
//	err := errors.NotCallable(errors.PhaseCreate, "int")
//
// All errors implement the standard error interface and support errors.Is/As.
package errors
