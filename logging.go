package savestate

import (
	"context"
	"log/slog"
	"time"
)

// DiagnosticKind classifies recoverable events reported while registering,
// saving or loading.
type DiagnosticKind string

const (
	DiagnosticTypeMismatch     DiagnosticKind = "type_mismatch"
	DiagnosticIntegrity        DiagnosticKind = "integrity"
	DiagnosticGuard            DiagnosticKind = "guard"
	DiagnosticSchemaMigration  DiagnosticKind = "schema_migration"
	DiagnosticPendingDiscarded DiagnosticKind = "pending_discarded"
	DiagnosticSave             DiagnosticKind = "save"
	DiagnosticLoad             DiagnosticKind = "load"
	DiagnosticActivity         DiagnosticKind = "activity"
)

// Diagnostic describes one event for logging. Position is -1 when the event
// concerns a whole entity or operation.
type Diagnostic struct {
	Kind     DiagnosticKind
	EntityID EntityID
	Position int
	Entities int
	Duration time.Duration
	Err      error
}

// Logger records diagnostics.
type Logger interface {
	LogDiagnostic(Diagnostic)
}

// LoggerFunc adapts a function to Logger.
type LoggerFunc func(Diagnostic)

// LogDiagnostic implements Logger.
func (f LoggerFunc) LogDiagnostic(d Diagnostic) {
	if f != nil {
		f(d)
	}
}

type noopLogger struct{}

func (noopLogger) LogDiagnostic(Diagnostic) {}

// NewSlogLogger forwards diagnostics to a structured logger. Events carrying
// an error log at warn level, the rest at debug (save/load at info).
func NewSlogLogger(logger *slog.Logger) Logger {
	if logger == nil {
		return noopLogger{}
	}
	return LoggerFunc(func(d Diagnostic) {
		attrs := []slog.Attr{slog.String("kind", string(d.Kind))}
		switch d.Kind {
		case DiagnosticSave, DiagnosticLoad:
			attrs = append(attrs, slog.Int("entities", d.Entities), slog.Duration("duration", d.Duration))
		default:
			attrs = append(attrs, slog.Int64("entity_id", int64(d.EntityID)))
			if d.Position >= 0 {
				attrs = append(attrs, slog.Int("position", d.Position))
			}
		}
		level := slog.LevelDebug
		if d.Kind == DiagnosticSave || d.Kind == DiagnosticLoad {
			level = slog.LevelInfo
		}
		if d.Err != nil {
			attrs = append(attrs, slog.String("error", d.Err.Error()))
			level = slog.LevelWarn
		}
		logger.LogAttrs(context.Background(), level, "savestate", attrs...)
	})
}
