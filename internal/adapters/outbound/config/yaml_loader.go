package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/openkraft/spackstyle/internal/domain"
	"gopkg.in/yaml.v3"
)

// FileName is the style configuration file looked up at the repository root.
const FileName = ".spack-style.yaml"

// YAMLLoader implements domain.ConfigLoader by reading .spack-style.yaml.
type YAMLLoader struct{}

// New creates a YAMLLoader.
func New() *YAMLLoader { return &YAMLLoader{} }

// Load reads .spack-style.yaml from root.
// Returns DefaultConfig if the file does not exist, so external roots
// without configuration files work.
func (l *YAMLLoader) Load(root string) (domain.StyleConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, FileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return domain.DefaultConfig(), nil
		}
		return domain.StyleConfig{}, err
	}

	var cfg domain.StyleConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.StyleConfig{}, fmt.Errorf("parsing %s: %w", FileName, err)
	}

	// Validate before merging so typos in the raw input are caught.
	if err := cfg.Validate(); err != nil {
		return domain.StyleConfig{}, fmt.Errorf("invalid %s: %w", FileName, err)
	}

	return mergeConfig(domain.DefaultConfig(), cfg), nil
}

// mergeConfig overlays explicit overrides on top of defaults.
// Explicit (non-zero) values always win.
func mergeConfig(base, override domain.StyleConfig) domain.StyleConfig {
	result := base

	if override.Base != "" {
		result.Base = override.Base
	}
	if len(override.Tools) > 0 {
		result.Tools = override.Tools
	}

	// Explicit lists replace the defaults entirely.
	if len(override.Include) > 0 {
		result.Include = override.Include
	}
	if len(override.Exclude) > 0 {
		result.Exclude = override.Exclude
	}

	return result
}
