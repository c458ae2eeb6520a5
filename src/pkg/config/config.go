// Package config resolves the changelog-gate options using koanf.
// Sources are applied with ascending priority: built-in defaults, the YAML
// config file, the ambient GitHub Actions environment (GITHUB_*), action
// inputs (INPUT_*), CHANGELOG_GATE_* variables and finally explicit CLI flags.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

var logger = log.WithField("package", "config")

const EnvPrefix = "CHANGELOG_GATE_"

// githubEnvKeys maps the variables GitHub Actions sets on every job to options
var githubEnvKeys = map[string]string{
	"GITHUB_TOKEN":      "github_token",
	"GITHUB_REPOSITORY": "repository",
	"GITHUB_BASE_REF":   "base_ref",
	"GITHUB_HEAD_REF":   "head_ref",
	"GITHUB_API_URL":    "api_url",
	"GITHUB_REF":        "pull_request_number",
	"GITHUB_WORKSPACE":  "repo_dir",
}

var pullRefPattern = regexp.MustCompile(`^refs/pull/(\d+)/`)

// ConfigLoader defines the interface for loading configuration
type ConfigLoader interface {
	// Load resolves the options from every source
	Load(opts LoadOptions) (*Options, error)
}

// LoadOptions configures how configuration is loaded
type LoadOptions struct {
	// ConfigPath is the YAML config file; when empty DefaultConfigPath is
	// used if it exists
	ConfigPath string
	// Overrides holds explicitly set CLI flags keyed by option name
	Overrides map[string]any
}

// Loader handles loading configuration
type Loader struct{}

// Ensure Loader implements ConfigLoader
var _ ConfigLoader = (*Loader)(nil)

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// Load resolves the options from every source
func (l *Loader) Load(opts LoadOptions) (*Options, error) {
	k := koanf.New(".")

	for key, value := range GetDefaults() {
		if err := k.Set(key, value); err != nil {
			return nil, fmt.Errorf("failed to set default %s: %w", key, err)
		}
	}

	if err := loadConfigFile(k, opts.ConfigPath); err != nil {
		return nil, err
	}

	if err := loadEnvironment(k); err != nil {
		return nil, err
	}

	for key, value := range opts.Overrides {
		if err := k.Set(NormalizeKey(key), value); err != nil {
			return nil, fmt.Errorf("failed to set flag %s: %w", key, err)
		}
	}

	var options Options
	if err := k.Unmarshal("", &options); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &options, nil
}

// loadConfigFile merges the YAML file. Keys may use dashes or underscores.
func loadConfigFile(k *koanf.Koanf, path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultConfigPath
	}

	if _, err := os.Stat(path); err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("failed to load config file %s: %w", path, err)
	}
	for key, value := range fk.All() {
		if err := k.Set(NormalizeKey(key), value); err != nil {
			return fmt.Errorf("failed to set %s from config file: %w", key, err)
		}
	}
	logger.WithField("path", path).Debug("Loaded config file")
	return nil
}

// loadEnvironment merges the environment sources in priority order
func loadEnvironment(k *koanf.Koanf) error {
	providers := []struct {
		name     string
		provider *env.Env
	}{
		{name: "github", provider: env.ProviderWithValue("GITHUB_", ".", githubEnvTransform)},
		{name: "action inputs", provider: env.ProviderWithValue("INPUT_", ".", prefixedEnvTransform("INPUT_"))},
		{name: EnvPrefix, provider: env.ProviderWithValue(EnvPrefix, ".", prefixedEnvTransform(EnvPrefix))},
	}

	for _, p := range providers {
		if err := k.Load(p.provider, nil); err != nil {
			return fmt.Errorf("failed to load %s environment: %w", p.name, err)
		}
	}
	return nil
}

func githubEnvTransform(key, value string) (string, any) {
	name, ok := githubEnvKeys[key]
	if !ok || value == "" {
		return "", nil
	}
	if key == "GITHUB_REF" {
		m := pullRefPattern.FindStringSubmatch(value)
		if m == nil {
			return "", nil
		}
		return name, m[1]
	}
	return name, value
}

// prefixedEnvTransform keeps non-empty variables naming a known option.
// Actions exports unset optional inputs as empty strings, which must not
// shadow defaults.
func prefixedEnvTransform(prefix string) func(string, string) (string, any) {
	return func(key, value string) (string, any) {
		name := NormalizeKey(strings.TrimPrefix(key, prefix))
		if value == "" || !IsKnownKey(name) {
			return "", nil
		}
		return name, value
	}
}

// NormalizeKey maps "label-name", "LABEL_NAME" and "label_name" to "label_name"
func NormalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}
