package gologger

import (
	"context"
	"fmt"
	"sort"
	"strings"

	glog "github.com/goliatone/go-logger/glog"

	"github.com/goliatone/go-refdocs/internal/logging"
	"github.com/goliatone/go-refdocs/pkg/interfaces"
)

// Config selects the go-logger level, output format and focus filters.
type Config struct {
	Level     string
	Format    string
	AddSource bool
	// Focus limits output to the named loggers, e.g. refdocs.expand.
	Focus []string
}

// Provider hands out go-logger children as refdocs loggers.
type Provider struct {
	root *glog.BaseLogger
}

var _ interfaces.LoggerProvider = (*Provider)(nil)

// NewProvider builds the root go-logger from cfg.
func NewProvider(cfg Config) (*Provider, error) {
	var options []glog.Option

	level, err := levelOption(cfg.Level)
	if err != nil {
		return nil, err
	}
	if level != "" {
		options = append(options, glog.WithLevel(level))
	}

	switch strings.ToLower(strings.TrimSpace(cfg.Format)) {
	case "", "console":
		options = append(options, glog.WithLoggerTypeConsole())
	case "json":
		options = append(options, glog.WithLoggerTypeJSON())
	case "pretty":
		options = append(options, glog.WithLoggerTypePretty())
	default:
		return nil, fmt.Errorf("logging: unsupported go-logger format %q", cfg.Format)
	}

	if cfg.AddSource {
		options = append(options, glog.WithAddSource(true))
	}

	root := glog.NewLogger(options...)
	if focus := trimAll(cfg.Focus); len(focus) > 0 {
		root.Focus(focus...)
	}
	return &Provider{root: root}, nil
}

// GetLogger returns the named child logger. An empty name yields the root.
func (p *Provider) GetLogger(name string) interfaces.Logger {
	if p == nil || p.root == nil {
		return logging.NoOp()
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return adapt(p.root)
	}
	return adapt(p.root.GetLogger(name))
}

func adapt(inner glog.Logger) interfaces.Logger {
	if inner == nil {
		return logging.NoOp()
	}
	return &adapter{inner: inner}
}

// adapter exposes a glog.Logger as a refdocs logger. When the inner logger
// cannot carry fields they are kept here as sorted key/value pairs and
// appended to every entry.
type adapter struct {
	inner glog.Logger
	extra []any
}

var (
	_ interfaces.Logger       = (*adapter)(nil)
	_ interfaces.FieldsLogger = (*adapter)(nil)
)

func (l *adapter) Trace(msg string, args ...any) { l.inner.Trace(msg, l.args(args)...) }
func (l *adapter) Debug(msg string, args ...any) { l.inner.Debug(msg, l.args(args)...) }
func (l *adapter) Info(msg string, args ...any)  { l.inner.Info(msg, l.args(args)...) }
func (l *adapter) Warn(msg string, args ...any)  { l.inner.Warn(msg, l.args(args)...) }
func (l *adapter) Error(msg string, args ...any) { l.inner.Error(msg, l.args(args)...) }
func (l *adapter) Fatal(msg string, args ...any) { l.inner.Fatal(msg, l.args(args)...) }

func (l *adapter) args(args []any) []any {
	if len(l.extra) == 0 {
		return args
	}
	return append(append(make([]any, 0, len(l.extra)+len(args)), l.extra...), args...)
}

func (l *adapter) WithFields(fields map[string]any) interfaces.Logger {
	if len(fields) == 0 {
		return l
	}
	if fl, ok := l.inner.(glog.FieldsLogger); ok {
		copied := make(map[string]any, len(fields))
		for k, v := range fields {
			copied[k] = v
		}
		return &adapter{inner: fl.WithFields(copied), extra: l.extra}
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	extra := append(make([]any, 0, len(l.extra)+2*len(keys)), l.extra...)
	for _, k := range keys {
		extra = append(extra, k, fields[k])
	}
	return &adapter{inner: l.inner, extra: extra}
}

// WithContext hands ctx to go-logger and applies fields stored with
// logging.ContextWithFields.
func (l *adapter) WithContext(ctx context.Context) interfaces.Logger {
	if ctx == nil {
		return l
	}
	next := &adapter{inner: l.inner.WithContext(ctx), extra: l.extra}
	return logging.WithFields(next, logging.ContextFields(ctx))
}

var levels = map[string]string{
	"trace":   glog.Trace,
	"debug":   glog.Debug,
	"info":    glog.Info,
	"warn":    glog.Warn,
	"warning": glog.Warn,
	"error":   glog.Error,
	"fatal":   glog.Fatal,
}

func levelOption(level string) (string, error) {
	key := strings.ToLower(strings.TrimSpace(level))
	if key == "" {
		return "", nil
	}
	if value, ok := levels[key]; ok {
		return value, nil
	}
	return "", fmt.Errorf("logging: unsupported go-logger level %q", level)
}

func trimAll(names []string) []string {
	var out []string
	for _, name := range names {
		if name = strings.TrimSpace(name); name != "" {
			out = append(out, name)
		}
	}
	return out
}
