package commands

import (
	"context"
	"time"

	command "github.com/goliatone/go-command"

	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// DefaultCommandTimeout bounds a command run unless overridden.
const DefaultCommandTimeout = 5 * time.Minute

// HandlerOption configures a Handler instance.
type HandlerOption[T command.Message] func(*Handler[T])

// Handler wraps command execution with validation, timeouts, logging and
// error tagging.
type Handler[T command.Message] struct {
	exec      command.CommandFunc[T]
	logger    interfaces.Logger
	timeout   time.Duration
	operation string
	telemetry Telemetry[T]
}

// NewHandler creates a handler that satisfies go-command's Commander
// interface.
func NewHandler[T command.Message](fn command.CommandFunc[T], opts ...HandlerOption[T]) *Handler[T] {
	if fn == nil {
		panic("commands: handler function cannot be nil")
	}
	h := &Handler[T]{
		exec:    fn,
		logger:  logging.NoOp(),
		timeout: DefaultCommandTimeout,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Execute validates msg, applies the timeout and runs the wrapped function.
func (h *Handler[T]) Execute(ctx context.Context, msg T) error {
	if err := command.ValidateMessage(msg); err != nil {
		return classify(err, validationClass, h.operation)
	}

	ctx = EnsureContext(ctx)
	ctx, cancel := WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return classify(err, contextClassOf(err), h.operation)
	}

	fields := map[string]any{
		"command": command.GetMessageType(msg),
	}
	if h.operation != "" {
		fields["operation"] = h.operation
	}
	logger := logging.WithFields(h.logger, fields)
	logger.Debug("command.execute.start")
	started := time.Now()

	err := h.exec(ctx, msg)
	status := TelemetryStatusSuccess
	switch {
	case err != nil:
		status = TelemetryStatusFailed
		if isContextError(err) {
			status = TelemetryStatusContextError
			err = classify(err, contextClassOf(err), h.operation)
		} else {
			err = classify(err, failedClass, h.operation)
		}
	case ctx.Err() != nil:
		status = TelemetryStatusContextError
		err = classify(ctx.Err(), contextClassOf(ctx.Err()), h.operation)
	}

	if h.telemetry != nil {
		h.telemetry(ctx, msg, TelemetryInfo{
			Command:   command.GetMessageType(msg),
			Operation: h.operation,
			Fields:    fields,
			Duration:  time.Since(started),
			Error:     err,
			Status:    status,
			Logger:    logger,
		})
	} else if err != nil {
		logger.Error("command.execute."+string(status), "error", err)
	} else {
		logger.Info("command.execute.success")
	}
	return err
}

// WithTimeout overrides the default execution timeout. Zero or less
// disables it.
func WithTimeout[T command.Message](timeout time.Duration) HandlerOption[T] {
	return func(h *Handler[T]) {
		if timeout <= 0 {
			h.timeout = 0
			return
		}
		h.timeout = timeout
	}
}

// WithLogger injects the logger used during execution.
func WithLogger[T command.Message](logger interfaces.Logger) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.logger = EnsureLogger(logger)
	}
}

// WithOperation sets the operation name emitted with every log entry.
func WithOperation[T command.Message](operation string) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.operation = operation
	}
}

// WithTelemetry replaces the outcome log lines with fn.
func WithTelemetry[T command.Message](fn Telemetry[T]) HandlerOption[T] {
	return func(h *Handler[T]) {
		h.telemetry = fn
	}
}

// EnsureContext returns a non-nil context.
func EnsureContext(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// WithCommandTimeout applies timeout unless it is zero or negative.
func WithCommandTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if timeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// EnsureLogger returns a usable logger, defaulting to a no-op logger.
func EnsureLogger(logger interfaces.Logger) interfaces.Logger {
	if logger == nil {
		return logging.NoOp()
	}
	return logger
}
