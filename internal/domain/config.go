package domain

import (
	"fmt"
	"path"
	"regexp"
	"strings"
)

// DefaultBase is the reference changed files are computed against.
const DefaultBase = "develop"

// DefaultInclude selects the files the style tools understand.
var DefaultInclude = []string{`\.py$`, `^bin/spack$`}

// StyleConfig holds repository-level configuration loaded from .spack-style.yaml.
type StyleConfig struct {
	Base    string                `yaml:"base"    json:"base,omitempty"`
	Tools   map[string]ToolConfig `yaml:"tools"   json:"tools,omitempty"`
	Include []string              `yaml:"include" json:"include,omitempty"`
	Exclude []string              `yaml:"exclude" json:"exclude,omitempty"`
}

// ToolConfig overrides one tool. Pointer types distinguish "not specified"
// from false.
type ToolConfig struct {
	Enabled    *bool    `yaml:"enabled,omitempty"     json:"enabled,omitempty"`
	Executable string   `yaml:"executable,omitempty"  json:"executable,omitempty"`
	ExtraArgs  []string `yaml:"extra_args,omitempty"  json:"extra_args,omitempty"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() StyleConfig {
	return StyleConfig{
		Base:    DefaultBase,
		Include: append([]string(nil), DefaultInclude...),
		Exclude: []string{ExternalPathRel},
	}
}

// Tool returns the overrides for the named tool, if any.
func (c StyleConfig) Tool(name string) ToolConfig {
	return c.Tools[name]
}

// Validate checks the config for invalid values and returns a descriptive error.
func (c StyleConfig) Validate() error {
	for name, tc := range c.Tools {
		if !IsValidTool(name) {
			return fmt.Errorf("unknown tool %q in tools (valid: %s)", name, strings.Join(ToolOrder, ", "))
		}
		if strings.ContainsAny(tc.Executable, " \t") {
			return fmt.Errorf("tools.%s.executable must be a single program name (got %q)", name, tc.Executable)
		}
	}

	for i, pattern := range c.Include {
		if _, err := regexp.Compile(pattern); err != nil {
			return fmt.Errorf("include[%d] is not a valid regular expression: %w", i, err)
		}
	}

	for i, p := range c.Exclude {
		if p == "" {
			return fmt.Errorf("exclude[%d] must not be empty", i)
		}
		if path.IsAbs(p) {
			return fmt.Errorf("exclude[%d] must be relative to the repository root (got %q)", i, p)
		}
	}

	return nil
}

// FileFilter decides which changed files are style-checked.
type FileFilter struct {
	include []*regexp.Regexp
	exclude []string
}

// Filter compiles the include and exclude rules. Call Validate first.
func (c StyleConfig) Filter() (*FileFilter, error) {
	f := &FileFilter{}
	for _, pattern := range c.Include {
		re, err := regexp.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("compiling include pattern %q: %w", pattern, err)
		}
		f.include = append(f.include, re)
	}
	for _, p := range c.Exclude {
		f.exclude = append(f.exclude, strings.TrimSuffix(path.Clean(p), "/"))
	}
	return f, nil
}

// Keep reports whether the root-relative path passes the filter.
func (f *FileFilter) Keep(rel string) bool {
	for _, ex := range f.exclude {
		if IsUnder(rel, ex) {
			return false
		}
	}
	if len(f.include) == 0 {
		return true
	}
	for _, re := range f.include {
		if re.MatchString(rel) {
			return true
		}
	}
	return false
}

// Apply returns the files that pass the filter, preserving order.
func (f *FileFilter) Apply(files ChangeSet) ChangeSet {
	out := make(ChangeSet, 0, len(files))
	for _, rel := range files {
		if f.Keep(rel) {
			out = append(out, rel)
		}
	}
	return out
}
