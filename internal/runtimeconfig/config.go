package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
)

var ErrContentDirRequired = errors.New("refdocs config: markdown content directory is required")
var ErrOutputDirRequired = errors.New("refdocs config: output directory is required")
var ErrOutputFormatInvalid = errors.New("refdocs config: output format is invalid")
var ErrWorkersInvalid = errors.New("refdocs config: build workers must be zero or positive")
var ErrModuleNameInvalid = errors.New("refdocs config: module name is invalid")

// ErrProviderUnknown is returned for symbol providers other than memory, file and sql.
var ErrProviderUnknown = errors.New("refdocs config: symbol provider is invalid")
var ErrProviderPathRequired = errors.New("refdocs config: file symbol provider requires a path")
var ErrProviderDSNRequired = errors.New("refdocs config: sql symbol provider requires a driver and dsn")
var ErrLoggingProviderRequired = errors.New("refdocs config: logging provider is required")
var ErrLoggingProviderUnknown = errors.New("refdocs config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("refdocs config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("refdocs config: logging format is invalid")

// Config aggregates everything a build reads. Field tags follow the keys
// used in refdocs.yaml and REFDOCS_* environment variables.
type Config struct {
	Build    BuildConfig    `mapstructure:"build"`
	Markdown MarkdownConfig `mapstructure:"markdown"`
	Output   OutputConfig   `mapstructure:"output"`
	Provider ProviderConfig `mapstructure:"provider"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// BuildConfig controls expansion.
type BuildConfig struct {
	// Modules is the build-level module list docs targets resolve against.
	Modules []string `mapstructure:"modules"`
	// DefaultModule seeds pages that do not set current_module.
	DefaultModule string `mapstructure:"default_module"`
	// Pages fixes the build order; empty means every page in lexical order.
	Pages      []string `mapstructure:"pages"`
	StrictRefs bool     `mapstructure:"strict_refs"`
	Workers    int      `mapstructure:"workers"`
}

// MarkdownConfig captures where pages are read from and how HTML is rendered.
type MarkdownConfig struct {
	ContentDir string               `mapstructure:"content_dir"`
	Pattern    string               `mapstructure:"pattern"`
	Recursive  bool                 `mapstructure:"recursive"`
	Parser     MarkdownParserConfig `mapstructure:"parser"`
}

// MarkdownParserConfig mirrors interfaces.ParseOptions.
type MarkdownParserConfig struct {
	Extensions []string `mapstructure:"extensions"`
	Sanitize   bool     `mapstructure:"sanitize"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}

// OutputConfig captures where and how resolved pages are written.
type OutputConfig struct {
	Dir      string `mapstructure:"dir"`
	Format   string `mapstructure:"format"`
	Manifest bool   `mapstructure:"manifest"`
	Clean    bool   `mapstructure:"clean"`
}

// ProviderConfig selects the symbol provider.
type ProviderConfig struct {
	Kind   string `mapstructure:"kind"`
	Path   string `mapstructure:"path"`
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string   `mapstructure:"provider"`
	Level     string   `mapstructure:"level"`
	Format    string   `mapstructure:"format"`
	AddSource bool     `mapstructure:"add_source"`
	Focus     []string `mapstructure:"focus"`
}

const (
	ProviderMemory = "memory"
	ProviderFile   = "file"
	ProviderSQL    = "sql"
)

// DefaultConfig returns the settings used when no file or flag overrides them.
func DefaultConfig() Config {
	return Config{
		Build: BuildConfig{
			Workers: 0,
		},
		Markdown: MarkdownConfig{
			ContentDir: "docs",
			Pattern:    "*.md",
			Recursive:  true,
			Parser: MarkdownParserConfig{
				Extensions: []string{"gfm"},
			},
		},
		Output: OutputConfig{
			Dir:      "build",
			Format:   "markdown",
			Manifest: true,
		},
		Provider: ProviderConfig{
			Kind: ProviderFile,
			Path: "symbols.yaml",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
		return ErrContentDirRequired
	}
	if strings.TrimSpace(cfg.Output.Dir) == "" {
		return ErrOutputDirRequired
	}
	if format := strings.TrimSpace(cfg.Output.Format); format != "" && !isSupportedOutput(format) {
		return fmt.Errorf("%w: %s", ErrOutputFormatInvalid, format)
	}
	if cfg.Build.Workers < 0 {
		return ErrWorkersInvalid
	}
	for _, m := range append(append([]string{}, cfg.Build.Modules...), cfg.Build.DefaultModule) {
		if m != "" && !validModule(m) {
			return fmt.Errorf("%w: %q", ErrModuleNameInvalid, m)
		}
	}

	switch kind := normalize(cfg.Provider.Kind); kind {
	case ProviderMemory:
	case ProviderFile:
		if strings.TrimSpace(cfg.Provider.Path) == "" {
			return ErrProviderPathRequired
		}
	case ProviderSQL:
		if strings.TrimSpace(cfg.Provider.Driver) == "" || strings.TrimSpace(cfg.Provider.DSN) == "" {
			return ErrProviderDSNRequired
		}
	default:
		return fmt.Errorf("%w: %s", ErrProviderUnknown, kind)
	}

	provider := normalize(cfg.Logging.Provider)
	if provider == "" {
		return ErrLoggingProviderRequired
	}
	if !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalize(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

func isSupportedOutput(format string) bool {
	switch normalize(format) {
	case "markdown", "md", "html":
		return true
	default:
		return false
	}
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch normalize(level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch normalize(format) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}

func validModule(name string) bool {
	for _, seg := range strings.Split(name, ".") {
		if seg == "" {
			return false
		}
		for i, r := range seg {
			letter := r == '_' || ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z') || r > 127
			digit := '0' <= r && r <= '9'
			if !letter && !(digit && i > 0) {
				return false
			}
		}
	}
	return true
}
