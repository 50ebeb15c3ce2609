package runtimeconfig_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-refdocs/internal/runtimeconfig"
)

func TestConfigValidate_DefaultsAreValid(t *testing.T) {
	if err := runtimeconfig.DefaultConfig().Validate(); err != nil {
		t.Fatalf("Validate() returned unexpected error: %v", err)
	}
}

func TestConfigValidate_RequiresContentDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Markdown.ContentDir = " "

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrContentDirRequired) {
		t.Fatalf("expected ErrContentDirRequired, got %v", err)
	}
}

func TestConfigValidate_RequiresOutputDir(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Output.Dir = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrOutputDirRequired) {
		t.Fatalf("expected ErrOutputDirRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownOutputFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Output.Format = "pdf"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrOutputFormatInvalid) {
		t.Fatalf("expected ErrOutputFormatInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsNegativeWorkers(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Build.Workers = -1

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrWorkersInvalid) {
		t.Fatalf("expected ErrWorkersInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsBadModuleNames(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Build.Modules = []string{"Base", "Base..Iterators"}

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrModuleNameInvalid) {
		t.Fatalf("expected ErrModuleNameInvalid, got %v", err)
	}

	cfg.Build.Modules = []string{"Base", "Base.Iterators"}
	cfg.Build.DefaultModule = "2Main"
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrModuleNameInvalid) {
		t.Fatalf("expected ErrModuleNameInvalid for default module, got %v", err)
	}
}

func TestConfigValidate_ProviderSettings(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Provider.Path = ""
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrProviderPathRequired) {
		t.Fatalf("expected ErrProviderPathRequired, got %v", err)
	}

	cfg.Provider = runtimeconfig.ProviderConfig{Kind: "sql", Driver: "sqlite3"}
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrProviderDSNRequired) {
		t.Fatalf("expected ErrProviderDSNRequired, got %v", err)
	}

	cfg.Provider = runtimeconfig.ProviderConfig{Kind: "ldap"}
	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrProviderUnknown) {
		t.Fatalf("expected ErrProviderUnknown, got %v", err)
	}

	cfg.Provider = runtimeconfig.ProviderConfig{Kind: "Memory"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected memory provider to validate, got %v", err)
	}
}

func TestConfigValidate_RequiresLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = ""

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderRequired) {
		t.Fatalf("expected ErrLoggingProviderRequired, got %v", err)
	}
}

func TestConfigValidate_RejectsUnknownLoggingProvider(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "syslog"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingProviderUnknown) {
		t.Fatalf("expected ErrLoggingProviderUnknown, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingLevel(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Level = "loud"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingLevelInvalid) {
		t.Fatalf("expected ErrLoggingLevelInvalid, got %v", err)
	}
}

func TestConfigValidate_RejectsInvalidLoggingFormat(t *testing.T) {
	cfg := runtimeconfig.DefaultConfig()
	cfg.Logging.Provider = "gologger"
	cfg.Logging.Format = "xml"

	if err := cfg.Validate(); !errors.Is(err, runtimeconfig.ErrLoggingFormatInvalid) {
		t.Fatalf("expected ErrLoggingFormatInvalid, got %v", err)
	}
}
