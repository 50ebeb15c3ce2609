package interfaces

// MarkdownRenderer converts resolved markdown into HTML. The build pipeline
// never calls it; output writers use it after references are resolved.
type MarkdownRenderer interface {
	// Parse converts Markdown into HTML using the renderer's default settings.
	Parse(markdown []byte) ([]byte, error)
	// ParseWithOptions converts Markdown into HTML using the supplied overrides.
	ParseWithOptions(markdown []byte, opts ParseOptions) ([]byte, error)
}

// ParseOptions customises HTML rendering, keeping option names readable for
// configuration unmarshalling and CLI flags.
type ParseOptions struct {
	Extensions []string `mapstructure:"extensions"`
	Sanitize   bool     `mapstructure:"sanitize"`
	HardWraps  bool     `mapstructure:"hard_wraps"`
	SafeMode   bool     `mapstructure:"safe_mode"`
}
