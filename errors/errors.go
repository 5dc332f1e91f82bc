package errors

import (
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseLookup  Phase = "lookup"  // type-tag registry lookup
	PhaseInit    Phase = "init"    // tagged-value initialization
	PhaseLoad    Phase = "load"    // host to native
	PhaseStore   Phase = "store"   // native to host
	PhaseCreate  Phase = "create"  // closure creation
	PhaseInvoke  Phase = "invoke"  // closure invocation
	PhaseResolve Phase = "resolve" // symbol resolution
	PhaseLog     Phase = "log"     // log bridging
)

// Kind categorizes the error
type Kind string

const (
	KindUnsupportedType Kind = "unsupported_type"
	KindBadInterface    Kind = "bad_interface"
	KindConversion      Kind = "conversion"
	KindUnknownCompound Kind = "unknown_compound"
	KindNotCallable     Kind = "not_callable"
	KindMetadataLookup  Kind = "metadata_lookup"
	KindForcedLog       Kind = "forced_log"
	KindInvalidInput    Kind = "invalid_input"
	KindNotFound        Kind = "not_found"
	KindRegistration    Kind = "registration"
)

// Error is the structured error type used throughout the binding layer
type Error struct {
	Value      any
	Cause      error
	Phase      Phase
	Kind       Kind
	HostType   string
	NativeType string
	Detail     string
	Path       []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.HostType != "" || e.NativeType != "" {
		b.WriteString(": ")
		if e.HostType != "" && e.NativeType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
			b.WriteString(", native type ")
			b.WriteString(e.NativeType)
		} else if e.HostType != "" {
			b.WriteString("host type ")
			b.WriteString(e.HostType)
		} else {
			b.WriteString("native type ")
			b.WriteString(e.NativeType)
		}
	}

	if e.Detail != "" {
		if e.HostType != "" || e.NativeType != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether err is an *Error of the given kind, in any phase.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Kind == kind {
			return true
		}
		u, ok := err.(interface{ Unwrap() error })
		if !ok {
			return false
		}
		err = u.Unwrap()
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the symbol path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// HostType sets the host-side type name
func (b *Builder) HostType(t string) *Builder {
	b.err.HostType = t
	return b
}

// NativeType sets the native type name
func (b *Builder) NativeType(t string) *Builder {
	b.err.NativeType = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for the binding error taxonomy

// UnsupportedType creates an error for a type tag the registry cannot handle
func UnsupportedType(phase Phase, tag string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindUnsupportedType,
		NativeType: tag,
		Detail:     fmt.Sprintf("no handling for type tag %q", tag),
	}
}

// BadInterface creates an error for an interface reference that is not a
// registered type, carrying the raw interface kind
func BadInterface(phase Phase, ifaceKind string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindBadInterface,
		NativeType: ifaceKind,
		Detail:     fmt.Sprintf("interface kind %q is not a registered type", ifaceKind),
	}
}

// Conversion creates an error for a host value whose shape does not satisfy
// the declared native type
func Conversion(phase Phase, v any, nativeType string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindConversion,
		Value:      v,
		HostType:   fmt.Sprintf("%T", v),
		NativeType: nativeType,
	}
}

// UnknownCompound creates an error for a compound type with no registered
// metadata
func UnknownCompound(phase Phase, typeName string) *Error {
	return &Error{
		Phase:      phase,
		Kind:       KindUnknownCompound,
		NativeType: typeName,
		Detail:     fmt.Sprintf("no registered metadata for type %q", typeName),
	}
}

// NotCallable creates an error for a host value that is not a recognized
// callable shape
func NotCallable(phase Phase, hostType string) *Error {
	return &Error{
		Phase:    phase,
		Kind:     KindNotCallable,
		HostType: hostType,
		Detail:   "value is not callable (expected function, table or callable object)",
	}
}

// MetadataLookup creates an informational error for a failed metadata query.
// Loader absence is soft: this is never raised, only reported.
func MetadataLookup(namespace, name string) *Error {
	return &Error{
		Phase:  PhaseResolve,
		Kind:   KindMetadataLookup,
		Path:   []string{namespace, name},
		Detail: "symbol not found in metadata",
	}
}

// ForcedLog creates the unsuppressible error raised for fatal-flagged log
// messages. The message format embeds domain, level and text.
func ForcedLog(domain, level, message string) *Error {
	return &Error{
		Phase:  PhaseLog,
		Kind:   KindForcedLog,
		Detail: fmt.Sprintf("%s-%s **: %s", domain, level, message),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// NotFound creates a not found error
func NotFound(phase Phase, what string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: what,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}
