package buildcmd

import (
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

const buildMessageType = "refdocs.docs.build"

// BuildCommand runs a full build: load pages, expand, resolve and write.
type BuildCommand struct {
	// ContentDir is the root pages are read from and page ids are relative to.
	ContentDir string `json:"content_dir"`
	// Pages fixes the build order. Empty loads every page below ContentDir.
	Pages []string `json:"pages,omitempty"`
	// OutputDir receives the resolved pages. Ignored on a dry run.
	OutputDir string `json:"output_dir,omitempty"`
	// Format is markdown or html.
	Format string `json:"format,omitempty"`
	// DryRun builds and reports diagnostics without writing anything.
	DryRun bool `json:"dry_run,omitempty"`
	// Clean empties OutputDir before writing.
	Clean bool `json:"clean,omitempty"`
	// FailOnWarnings treats warnings as build failures.
	FailOnWarnings bool `json:"fail_on_warnings,omitempty"`
}

// Type implements command.Message.
func (BuildCommand) Type() string { return buildMessageType }

// Validate checks the directories and format before the handler runs.
func (cmd BuildCommand) Validate() error {
	return validation.ValidateStruct(&cmd,
		validation.Field(&cmd.ContentDir, validation.Required, validation.By(notBlank("content_dir"))),
		validation.Field(&cmd.OutputDir,
			validation.When(!cmd.DryRun, validation.Required, validation.By(notBlank("output_dir"))),
		),
		validation.Field(&cmd.Format, validation.In("", "md", "markdown", "html")),
		validation.Field(&cmd.Pages, validation.Each(validation.Required)),
	)
}

func notBlank(field string) validation.RuleFunc {
	return func(value any) error {
		s, _ := value.(string)
		if strings.TrimSpace(s) == "" {
			return validation.NewError("refdocs.docs.build."+field+"_required", field+" is required")
		}
		return nil
	}
}
