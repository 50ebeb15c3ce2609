package main

import (
	"errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/goliatone/go-refdocs"
)

const envPrefix = "REFDOCS"

// flagKeys maps CLI flags onto configuration keys.
var flagKeys = map[string]string{
	"content":      "markdown.content_dir",
	"out":          "output.dir",
	"format":       "output.format",
	"clean":        "output.clean",
	"pages":        "build.pages",
	"modules":      "build.modules",
	"strict-refs":  "build.strict_refs",
	"workers":      "build.workers",
	"provider":     "provider.kind",
	"symbols":      "provider.path",
	"log-level":    "logging.level",
	"log-provider": "logging.provider",
}

// loadConfig layers defaults, the config file, REFDOCS_* variables and
// flags, in increasing precedence.
func loadConfig(cmd *cobra.Command) (refdocs.Config, error) {
	v := viper.New()
	setDefaults(v, refdocs.DefaultConfig())

	if path, _ := cmd.Flags().GetString("config"); path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("refdocs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return refdocs.Config{}, err
		}
	}

	for name, key := range flagKeys {
		if flag := cmd.Flags().Lookup(name); flag != nil {
			if err := v.BindPFlag(key, flag); err != nil {
				return refdocs.Config{}, err
			}
		}
	}

	cfg := refdocs.DefaultConfig()
	if err := v.Unmarshal(&cfg); err != nil {
		return refdocs.Config{}, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg refdocs.Config) {
	v.SetDefault("build.modules", cfg.Build.Modules)
	v.SetDefault("build.default_module", cfg.Build.DefaultModule)
	v.SetDefault("build.pages", cfg.Build.Pages)
	v.SetDefault("build.strict_refs", cfg.Build.StrictRefs)
	v.SetDefault("build.workers", cfg.Build.Workers)

	v.SetDefault("markdown.content_dir", cfg.Markdown.ContentDir)
	v.SetDefault("markdown.pattern", cfg.Markdown.Pattern)
	v.SetDefault("markdown.recursive", cfg.Markdown.Recursive)
	v.SetDefault("markdown.parser.extensions", cfg.Markdown.Parser.Extensions)
	v.SetDefault("markdown.parser.sanitize", cfg.Markdown.Parser.Sanitize)
	v.SetDefault("markdown.parser.hard_wraps", cfg.Markdown.Parser.HardWraps)
	v.SetDefault("markdown.parser.safe_mode", cfg.Markdown.Parser.SafeMode)

	v.SetDefault("output.dir", cfg.Output.Dir)
	v.SetDefault("output.format", cfg.Output.Format)
	v.SetDefault("output.manifest", cfg.Output.Manifest)
	v.SetDefault("output.clean", cfg.Output.Clean)

	v.SetDefault("provider.kind", cfg.Provider.Kind)
	v.SetDefault("provider.path", cfg.Provider.Path)
	v.SetDefault("provider.driver", cfg.Provider.Driver)
	v.SetDefault("provider.dsn", cfg.Provider.DSN)

	v.SetDefault("logging.provider", cfg.Logging.Provider)
	v.SetDefault("logging.level", cfg.Logging.Level)
	v.SetDefault("logging.format", cfg.Logging.Format)
	v.SetDefault("logging.add_source", cfg.Logging.AddSource)
	v.SetDefault("logging.focus", cfg.Logging.Focus)
}
