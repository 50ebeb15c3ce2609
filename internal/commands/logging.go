package commands

import (
	"strings"

	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// CommandLogger returns a logger scoped to one command module under
// refdocs.commands.
func CommandLogger(provider interfaces.LoggerProvider, module string) interfaces.Logger {
	name := strings.TrimSpace(module)
	if name == "" {
		name = "core"
	}
	logger := logging.ModuleLogger(provider, "refdocs.commands."+name)
	return logging.WithFields(logger, map[string]any{
		"component":      "command",
		"command_module": name,
	})
}
