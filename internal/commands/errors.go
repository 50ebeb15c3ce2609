package commands

import (
	"context"
	"errors"

	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to errors leaving a Handler.
const (
	TextCodeValidation = "COMMAND_VALIDATION_FAILED"
	TextCodeCanceled   = "COMMAND_CONTEXT_CANCELED"
	TextCodeTimeout    = "COMMAND_CONTEXT_TIMEOUT"
	TextCodeContext    = "COMMAND_CONTEXT_ERROR"
	TextCodeFailed     = "COMMAND_EXECUTION_FAILED"
)

type errorClass struct {
	category goerrors.Category
	message  string
	code     string
}

var (
	validationClass = errorClass{goerrors.CategoryValidation, "command validation failed", TextCodeValidation}
	canceledClass   = errorClass{goerrors.CategoryCommand, "command execution cancelled", TextCodeCanceled}
	timeoutClass    = errorClass{goerrors.CategoryCommand, "command execution deadline exceeded", TextCodeTimeout}
	contextClass    = errorClass{goerrors.CategoryCommand, "command context error", TextCodeContext}
	failedClass     = errorClass{goerrors.CategoryCommand, "command execution failed", TextCodeFailed}
)

// classify wraps err unless it already carries a go-errors value somewhere
// in its chain, in which case the original category is kept.
func classify(err error, class errorClass, operation string) error {
	if err == nil || goerrors.IsWrapped(err) {
		return err
	}
	wrapped := goerrors.Wrap(err, class.category, class.message).WithTextCode(class.code)
	if operation != "" {
		wrapped = wrapped.WithMetadata(map[string]any{"operation": operation})
	}
	return wrapped
}

func contextClassOf(err error) errorClass {
	switch {
	case errors.Is(err, context.Canceled):
		return canceledClass
	case errors.Is(err, context.DeadlineExceeded):
		return timeoutClass
	default:
		return contextClass
	}
}

func isContextError(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
