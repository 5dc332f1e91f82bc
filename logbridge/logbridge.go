// Package logbridge forwards native log events to an optional host handler
// and enforces fatal-level escalation. The symbolic level names and their
// bit encoding follow the native logging convention: ERROR is the lowest
// level bit above the per-message fatal and recursion flags, DEBUG the
// highest.
package logbridge

import (
	"sync"

	"go.uber.org/zap"

	"github.com/bindlab/girt/errors"
)

// Native log level bits. The two low bits are per-message flags.
const (
	FlagRecursion = 1 << 0
	FlagFatal     = 1 << 1

	LevelError    = 1 << 2
	LevelCritical = 1 << 3
	LevelWarning  = 1 << 4
	LevelMessage  = 1 << 5
	LevelInfo     = 1 << 6
	LevelDebug    = 1 << 7
)

var levelNames = [...]string{"ERROR", "CRITICAL", "WARNING", "MESSAGE", "INFO", "DEBUG"}

// LevelBits maps a symbolic level name to its native bit. Unknown names
// map to DEBUG.
func LevelBits(name string) int {
	for i, n := range levelNames {
		if n == name {
			return 1 << (i + 2)
		}
	}
	return LevelDebug
}

// LevelName maps native level bits to the first matching symbolic name, or
// "???" when no level bit is set.
func LevelName(bits int) string {
	for i, n := range levelNames {
		if bits&(1<<(i+2)) != 0 {
			return n
		}
	}
	return "???"
}

// Handler is the host-side log handler. A true result suppresses the
// default sink for the message; a returned error forces escalation.
type Handler func(domain, level, message string) (handled bool, err error)

// Sink is the native logging sink collaborator.
type Sink interface {
	Emit(domain string, bits int, message string)
}

// Bridge forwards native log events. One process-wide handler reference is
// installed once at startup and never explicitly uninstalled.
type Bridge struct {
	sink        Sink
	handler     Handler
	installOnce sync.Once
}

// New creates a bridge over the given default sink. A nil sink falls back
// to the package zap logger.
func New(sink Sink) *Bridge {
	if sink == nil {
		sink = &zapSink{log: Logger()}
	}
	return &Bridge{sink: sink}
}

// InstallHandler registers the process-wide host handler. Only the first
// installation takes effect.
func (b *Bridge) InstallHandler(h Handler) {
	b.installOnce.Do(func() {
		b.handler = h
	})
}

// Log emits a message at a symbolic level through the native log path.
// The returned error is non-nil exactly when the message escalated.
func (b *Bridge) Log(domain, levelName, message string) error {
	return b.NativeLog(domain, LevelBits(levelName), message)
}

// NativeLog is the native log entry point. If a host handler is registered
// it is invoked first; a truthy result suppresses the default sink. A
// handler failure, or error/fatal level bits, escalates unconditionally to
// a forced error that must terminate the current script execution - the
// handler's return value cannot suppress this. Absent a handler, the
// message always reaches the default sink.
func (b *Bridge) NativeLog(domain string, bits int, message string) error {
	level := LevelName(bits)

	handled := false
	forced := false
	if b.handler != nil {
		ok, err := b.handler(domain, level, message)
		if err != nil {
			forced = true
		} else {
			handled = ok
		}
	}

	if forced || bits&(FlagFatal|LevelError) != 0 {
		return errors.ForcedLog(domain, level, message)
	}

	if !handled {
		b.sink.Emit(domain, bits, message)
	}
	return nil
}

// zapSink adapts the package zap logger as the default native sink.
type zapSink struct {
	log *zap.Logger
}

func (s *zapSink) Emit(domain string, bits int, message string) {
	fields := []zap.Field{zap.String("domain", domain)}
	switch {
	case bits&(LevelError|LevelCritical) != 0:
		s.log.Error(message, fields...)
	case bits&LevelWarning != 0:
		s.log.Warn(message, fields...)
	case bits&(LevelMessage|LevelInfo) != 0:
		s.log.Info(message, fields...)
	default:
		s.log.Debug(message, fields...)
	}
}
