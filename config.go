package refdocs

import "github.com/goliatone/go-refdocs/internal/runtimeconfig"

var (
	ErrContentDirRequired      = runtimeconfig.ErrContentDirRequired
	ErrOutputDirRequired       = runtimeconfig.ErrOutputDirRequired
	ErrOutputFormatInvalid     = runtimeconfig.ErrOutputFormatInvalid
	ErrWorkersInvalid          = runtimeconfig.ErrWorkersInvalid
	ErrModuleNameInvalid       = runtimeconfig.ErrModuleNameInvalid
	ErrProviderUnknown         = runtimeconfig.ErrProviderUnknown
	ErrProviderPathRequired    = runtimeconfig.ErrProviderPathRequired
	ErrProviderDSNRequired     = runtimeconfig.ErrProviderDSNRequired
	ErrLoggingProviderRequired = runtimeconfig.ErrLoggingProviderRequired
	ErrLoggingProviderUnknown  = runtimeconfig.ErrLoggingProviderUnknown
	ErrLoggingLevelInvalid     = runtimeconfig.ErrLoggingLevelInvalid
	ErrLoggingFormatInvalid    = runtimeconfig.ErrLoggingFormatInvalid
)

type (
	Config               = runtimeconfig.Config
	BuildConfig          = runtimeconfig.BuildConfig
	MarkdownConfig       = runtimeconfig.MarkdownConfig
	MarkdownParserConfig = runtimeconfig.MarkdownParserConfig
	OutputConfig         = runtimeconfig.OutputConfig
	ProviderConfig       = runtimeconfig.ProviderConfig
	LoggingConfig        = runtimeconfig.LoggingConfig
)

// DefaultConfig returns the baseline configuration.
func DefaultConfig() Config {
	return runtimeconfig.DefaultConfig()
}
