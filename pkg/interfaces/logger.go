package interfaces

import "context"

// Logger defines the leveled logging contract used across the build pipeline.
// The method set matches github.com/goliatone/go-logger so hosts can pass
// those loggers straight through.
type Logger interface {
	Trace(msg string, args ...any)
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Fatal(msg string, args ...any)
	WithContext(ctx context.Context) Logger
}

// LoggerProvider hands out named loggers, one per pipeline module.
type LoggerProvider interface {
	GetLogger(name string) Logger
}

// FieldsLogger is the optional extension for loggers that can carry
// persistent structured fields.
type FieldsLogger interface {
	WithFields(fields map[string]any) Logger
}
