package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// TelemetryStatus is the outcome class of one command run.
type TelemetryStatus string

const (
	TelemetryStatusSuccess      TelemetryStatus = "success"
	TelemetryStatusFailed       TelemetryStatus = "failed"
	TelemetryStatusContextError TelemetryStatus = "context_error"
)

// TelemetryInfo is handed to a Telemetry hook after every run.
type TelemetryInfo struct {
	Command   string
	Operation string
	Fields    map[string]any
	Duration  time.Duration
	Error     error
	Status    TelemetryStatus
	Logger    interfaces.Logger
}

// Failed reports whether the run ended with an error.
func (i TelemetryInfo) Failed() bool { return i.Status != TelemetryStatusSuccess }

// Telemetry observes command outcomes.
type Telemetry[T command.Message] func(ctx context.Context, msg T, info TelemetryInfo)

// DefaultTelemetry writes one line per run to logger, falling back to the
// handler's logger.
func DefaultTelemetry[T command.Message](logger interfaces.Logger) Telemetry[T] {
	return func(_ context.Context, _ T, info TelemetryInfo) {
		base := logger
		if base == nil {
			base = EnsureLogger(info.Logger)
		}
		entry := logging.WithFields(base, info.Fields)
		event := "command.execute." + string(info.Status)
		if !info.Failed() {
			entry.Info(event, "duration_ms", info.Duration.Milliseconds())
			return
		}
		entry.Error(event, "duration_ms", info.Duration.Milliseconds(), "error", info.Error)
	}
}
