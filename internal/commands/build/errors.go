package buildcmd

import (
	"errors"
	"fmt"

	goerrors "github.com/goliatone/go-errors"

	"github.com/goliatone/go-refdocs/diagnostics"
	"github.com/goliatone/go-refdocs/internal/expand"
)

// ErrBuildFailed is matched by every BuildFailedError.
var ErrBuildFailed = errors.New("refdocs: build failed")

// BuildFailedError reports a build that completed with error diagnostics.
// Cause aggregates them through a go-errors collector.
type BuildFailedError struct {
	Result  *expand.Result
	Summary diagnostics.Summary
	Cause   *goerrors.Error
}

func (e *BuildFailedError) Error() string {
	return fmt.Sprintf("%s: %s", ErrBuildFailed.Error(), e.Summary)
}

func (e *BuildFailedError) Unwrap() []error {
	if e.Cause == nil {
		return []error{ErrBuildFailed}
	}
	return []error{ErrBuildFailed, e.Cause}
}

// failure returns a BuildFailedError when res has errors, or warnings when
// strict is set, and nil otherwise.
func failure(res *expand.Result, strict bool) error {
	failing := func(d diagnostics.Diagnostic) bool {
		return d.IsError() || (strict && d.Severity == diagnostics.SeverityWarning)
	}

	count := 0
	for _, d := range res.Diagnostics {
		if failing(d) {
			count++
		}
	}
	if count == 0 {
		return nil
	}

	collector := goerrors.NewCollector(goerrors.WithMaxErrors(count))
	for _, d := range res.Diagnostics {
		if failing(d) {
			collector.Add(d.Err())
		}
	}
	cause := collector.Merge().WithMetadata(map[string]any{"build_id": res.BuildID})
	if cause.TextCode == "" {
		cause = cause.WithTextCode("BUILD_FAILED")
	}
	return &BuildFailedError{
		Result:  res,
		Summary: res.Summary,
		Cause:   cause,
	}
}
