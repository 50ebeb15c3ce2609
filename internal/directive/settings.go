package directive

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/goliatone/go-refdocs/document"
)

// Setting keys recognised in directive bodies.
const (
	KeyPages         = "Pages"
	KeyDepth         = "Depth"
	KeyCurrentModule = "CurrentModule"
	KeyModules       = "Modules"
)

var allowedKeys = map[document.DirectiveKind][]string{
	document.DirectiveContents: {KeyPages, KeyDepth},
	document.DirectiveIndex:    {KeyPages, KeyModules},
	document.DirectiveMeta:     {KeyCurrentModule},
}

var errNotList = errors.New("expected a [...] list")

func (s *pageState) setting(d *document.Directive, text string, line int) {
	key, value, ok := strings.Cut(text, "=")
	key = strings.TrimSpace(key)
	value = strings.TrimSpace(value)
	if !ok || key == "" || value == "" {
		s.errorf(line, "malformed %s setting %q, expected Key = value", d.Kind, text)
		return
	}

	if !knownKey(key) {
		s.warnf(line, "unknown %s setting %q ignored", d.Kind, key)
		return
	}
	if !allowed(d.Kind, key) {
		s.warnf(line, "setting %q is not used by %s directives", key, d.Kind)
		return
	}

	var err error
	switch key {
	case KeyPages:
		var pages []string
		if pages, err = parseList(value, false); err == nil {
			d.Settings.Pages = pages
		}
	case KeyModules:
		var modules []string
		if modules, err = parseList(value, true); err == nil {
			d.Settings.Modules = modules
		}
	case KeyDepth:
		var depth int
		if depth, err = parseDepth(value); err == nil {
			d.Settings.Depth = depth
		}
	case KeyCurrentModule:
		var module string
		if module, err = parseModule(value); err == nil {
			d.Settings.CurrentModule = module
		}
	}
	if err != nil {
		s.errorf(line, "invalid %s value %q: %v", key, value, err)
	}
}

func knownKey(key string) bool {
	switch key {
	case KeyPages, KeyDepth, KeyCurrentModule, KeyModules:
		return true
	}
	return false
}

func allowed(kind document.DirectiveKind, key string) bool {
	for _, k := range allowedKeys[kind] {
		if k == key {
			return true
		}
	}
	return false
}

// decodeValue reads value as a TOML value.
func decodeValue(value string) (any, error) {
	var holder map[string]any
	if _, err := toml.Decode("v = "+value, &holder); err != nil {
		return nil, err
	}
	return holder["v"], nil
}

// parseList accepts a TOML array of strings. When bare is set, unquoted
// identifiers are accepted too, so Modules = [Base, Core] works.
func parseList(value string, bare bool) ([]string, error) {
	if decoded, err := decodeValue(value); err == nil {
		items, ok := decoded.([]any)
		if !ok {
			return nil, errNotList
		}
		out := make([]string, 0, len(items))
		for _, item := range items {
			str, ok := item.(string)
			if !ok || strings.TrimSpace(str) == "" {
				return nil, fmt.Errorf("list items must be non-empty strings, got %v", item)
			}
			out = append(out, strings.TrimSpace(str))
		}
		return out, nil
	}
	if !bare || !strings.HasPrefix(value, "[") || !strings.HasSuffix(value, "]") {
		return nil, errNotList
	}
	inner := strings.TrimSpace(value[1 : len(value)-1])
	if inner == "" {
		return []string{}, nil
	}
	var out []string
	for _, part := range strings.Split(inner, ",") {
		item := strings.TrimSpace(part)
		if unq, err := strconv.Unquote(item); err == nil {
			item = unq
		}
		if !isModuleName(item) {
			return nil, fmt.Errorf("invalid module name %q", item)
		}
		out = append(out, item)
	}
	return out, nil
}

func parseDepth(value string) (int, error) {
	decoded, err := decodeValue(value)
	if err != nil {
		return 0, err
	}
	n, ok := decoded.(int64)
	if !ok || n < 1 || n > 6 {
		return 0, errors.New("expected an integer between 1 and 6")
	}
	return int(n), nil
}

func parseModule(value string) (string, error) {
	if decoded, err := decodeValue(value); err == nil {
		str, ok := decoded.(string)
		if !ok {
			return "", errors.New("expected a module name")
		}
		value = str
	}
	value = strings.TrimSpace(value)
	if !isModuleName(value) {
		return "", fmt.Errorf("invalid module name %q", value)
	}
	return value, nil
}

func isModuleName(name string) bool {
	spec, err := document.ParseTargetSpec(name)
	return err == nil && !spec.HasSignature()
}
