package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

type pingMessage struct{}

func (pingMessage) Type() string { return "refdocs.test.ping" }

func (pingMessage) Validate() error { return nil }

type rejectedMessage struct{}

func (rejectedMessage) Type() string { return "refdocs.test.rejected" }

func (rejectedMessage) Validate() error { return errors.New("content dir missing") }

func TestHandlerExecuteSuccess(t *testing.T) {
	called := false
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		called = true
		return nil
	})

	if err := h.Execute(context.Background(), pingMessage{}); err != nil {
		t.Fatalf("expected nil error, got %v", err)
	}
	if !called {
		t.Fatal("expected handler to be invoked")
	}
}

func TestHandlerValidationShortCircuitsExecution(t *testing.T) {
	called := false
	h := NewHandler[rejectedMessage](func(ctx context.Context, msg rejectedMessage) error {
		called = true
		return nil
	})

	err := h.Execute(context.Background(), rejectedMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryValidation) {
		t.Fatalf("expected validation category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when validation fails")
	}
}

func TestHandlerContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		called = true
		return nil
	})

	err := h.Execute(ctx, pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if called {
		t.Fatal("expected handler not to run when context is cancelled")
	}
}

func TestHandlerWrapsExecutionError(t *testing.T) {
	execErr := errors.New("boom")
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return execErr
	}, WithOperation[pingMessage]("docs.ping"))

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category, got %v", err)
	}
	if !errors.Is(err, execErr) {
		t.Fatalf("expected the execution error to stay reachable, got %v", err)
	}
	var typed *goerrors.Error
	if !errors.As(err, &typed) || typed.TextCode != TextCodeFailed || typed.Metadata["operation"] != "docs.ping" {
		t.Fatalf("expected text code and operation metadata, got %#v", typed)
	}
}

func TestHandlerKeepsCategorisedErrors(t *testing.T) {
	typed := goerrors.New("provider offline", goerrors.CategoryExternal)
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		return typed
	})

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryExternal) {
		t.Fatalf("expected external category to survive, got %v", err)
	}
}

func TestHandlerHonoursTimeoutOption(t *testing.T) {
	var status TelemetryStatus
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Second):
			return nil
		}
	},
		WithTimeout[pingMessage](10*time.Millisecond),
		WithTelemetry[pingMessage](func(_ context.Context, _ pingMessage, info TelemetryInfo) {
			status = info.Status
		}),
	)

	err := h.Execute(context.Background(), pingMessage{})
	if !goerrors.IsCategory(err, goerrors.CategoryCommand) {
		t.Fatalf("expected command category for timeout, got %v", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
	if status != TelemetryStatusContextError {
		t.Fatalf("expected context_error telemetry, got %q", status)
	}
}

func TestHandlerTelemetryReceivesFields(t *testing.T) {
	var got TelemetryInfo
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error { return nil },
		WithOperation[pingMessage]("docs.build"),
		WithTelemetry[pingMessage](func(_ context.Context, _ pingMessage, info TelemetryInfo) {
			got = info
		}),
	)
	if err := h.Execute(context.Background(), pingMessage{}); err != nil {
		t.Fatalf("Execute: %v", err)
	}
	if got.Status != TelemetryStatusSuccess || got.Command != "refdocs.test.ping" || got.Operation != "docs.build" {
		t.Fatalf("unexpected telemetry %#v", got)
	}
	if got.Fields["operation"] != "docs.build" {
		t.Fatalf("expected operation field, got %#v", got.Fields)
	}
}

type recordingLogger struct {
	entries []string
	fields  map[string]any
}

func (r *recordingLogger) Trace(msg string, args ...any) { r.entries = append(r.entries, msg) }
func (r *recordingLogger) Debug(msg string, args ...any) { r.entries = append(r.entries, msg) }
func (r *recordingLogger) Info(msg string, args ...any)  { r.entries = append(r.entries, msg) }
func (r *recordingLogger) Warn(msg string, args ...any)  { r.entries = append(r.entries, msg) }
func (r *recordingLogger) Error(msg string, args ...any) { r.entries = append(r.entries, msg) }
func (r *recordingLogger) Fatal(msg string, args ...any) { r.entries = append(r.entries, msg) }

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	if r.fields == nil {
		r.fields = map[string]any{}
	}
	for k, v := range fields {
		r.fields[k] = v
	}
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

type recordingProvider struct {
	logger *recordingLogger
	names  []string
}

func (p *recordingProvider) GetLogger(name string) interfaces.Logger {
	p.names = append(p.names, name)
	return p.logger
}

func TestDefaultTelemetryLogsOutcome(t *testing.T) {
	logger := &recordingLogger{}
	h := NewHandler[pingMessage](func(ctx context.Context, msg pingMessage) error { return errors.New("boom") },
		WithTelemetry[pingMessage](DefaultTelemetry[pingMessage](logger)),
	)
	_ = h.Execute(context.Background(), pingMessage{})

	if len(logger.entries) != 1 || logger.entries[0] != "command.execute.failed" {
		t.Fatalf("unexpected entries %v", logger.entries)
	}
	if logger.fields["command"] != "refdocs.test.ping" {
		t.Fatalf("expected command field, got %#v", logger.fields)
	}
}

func TestCommandLoggerScopesModule(t *testing.T) {
	provider := &recordingProvider{logger: &recordingLogger{}}
	CommandLogger(provider, " build ")

	if len(provider.names) != 1 || provider.names[0] != "refdocs.commands.build" {
		t.Fatalf("unexpected logger names %v", provider.names)
	}
	fields := provider.logger.fields
	if fields["command_module"] != "build" || fields["component"] != "command" || fields["module"] != "refdocs.commands.build" {
		t.Fatalf("unexpected fields %#v", fields)
	}
}
