package logging

import (
	"context"
	"strings"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

const (
	rootModule    = "refdocs"
	parseModule   = "refdocs.parse"
	expandModule  = "refdocs.expand"
	symbolsModule = "refdocs.symbols"
	renderModule  = "refdocs.render"
)

const (
	fieldPage    = "page"
	fieldStage   = "stage"
	fieldBuildID = "build_id"
)

// ModuleLogger returns a module-scoped logger, falling back to a no-op
// logger when no provider is supplied. The module name is attached as a
// structured field.
func ModuleLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	if module == "" {
		module = rootModule
	}

	logger := NoOp()
	if provider != nil {
		if provided := provider.GetLogger(module); provided != nil {
			logger = provided
		}
	}

	return WithFields(logger, map[string]any{
		"module": module,
	})
}

// ParseLogger is used while pages are read and parsed.
func ParseLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, parseModule)
}

// ExpandLogger is used by the expansion engine stages.
func ExpandLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, expandModule)
}

// SymbolsLogger is used by symbol resolution and providers.
func SymbolsLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, symbolsModule)
}

// RenderLogger is used by output writers.
func RenderLogger(provider interfaces.LoggerProvider) interfaces.Logger {
	return ModuleLogger(provider, renderModule)
}

// WithBuildContext adds the build id, stage and page fields to logger.
// Empty values are skipped.
func WithBuildContext(logger interfaces.Logger, buildID, stage, page string) interfaces.Logger {
	fields := map[string]any{}
	if trimmed := strings.TrimSpace(buildID); trimmed != "" {
		fields[fieldBuildID] = trimmed
	}
	if trimmed := strings.TrimSpace(stage); trimmed != "" {
		fields[fieldStage] = trimmed
	}
	if trimmed := strings.TrimSpace(page); trimmed != "" {
		fields[fieldPage] = trimmed
	}
	return WithFields(logger, fields)
}

// NoOp returns a logger that drops every entry.
func NoOp() interfaces.Logger {
	return noopLogger{}
}

type noopLogger struct{}

var _ interfaces.Logger = noopLogger{}

func (noopLogger) Trace(string, ...any) {}
func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}
func (noopLogger) Fatal(string, ...any) {}

func (n noopLogger) WithFields(map[string]any) interfaces.Logger {
	return n
}

func (n noopLogger) WithContext(context.Context) interfaces.Logger {
	return n
}
