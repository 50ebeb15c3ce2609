package logging

import (
	"context"
	"maps"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// WithFields attaches fields when logger implements interfaces.FieldsLogger
// and returns it unchanged otherwise. The map is copied.
func WithFields(logger interfaces.Logger, fields map[string]any) interfaces.Logger {
	if logger == nil || len(fields) == 0 {
		return logger
	}
	fieldsLogger, ok := logger.(interfaces.FieldsLogger)
	if !ok {
		return logger
	}
	return fieldsLogger.WithFields(maps.Clone(fields))
}

type fieldsKey struct{}

// ContextWithFields stores fields on ctx, merged over any stored earlier.
// Loggers read them back when WithContext is called.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	merged := ContextFields(ctx)
	if merged == nil {
		merged = make(map[string]any, len(fields))
	}
	maps.Copy(merged, fields)
	return context.WithValue(ctx, fieldsKey{}, merged)
}

// ContextFields returns a copy of the fields stored on ctx, or nil.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(fieldsKey{}).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	return maps.Clone(fields)
}
