package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/adrg/xdg"
	"github.com/gobwas/glob"
	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	serr "dirtidy/internal/errors"
	"dirtidy/internal/log"
)

const (
	// LocalConfigName is looked up in the working directory
	LocalConfigName = ".dirtidyrc.toml"
	// appName is the directory under $XDG_CONFIG_HOME
	appName = "dirtidy"
)

// Config is the on-disk configuration document.
type Config struct {
	Filters FilterConfig `toml:"filters" yaml:"filters"`
}

// FilterConfig decides which files take part in organization.
type FilterConfig struct {
	EnableHiddenFiles bool         `toml:"enable_hidden_files" yaml:"enable_hidden_files"`
	Exclude           ExcludeRules `toml:"exclude" yaml:"exclude"`
	Include           IncludeRules `toml:"include" yaml:"include"`
}

// ExcludeRules are evaluated after include rules and the hidden-file check.
type ExcludeRules struct {
	Filenames  []string `toml:"filenames" yaml:"filenames"`   // exact, case-sensitive
	Patterns   []string `toml:"patterns" yaml:"patterns"`     // globs
	Extensions []string `toml:"extensions" yaml:"extensions"` // case-insensitive, with or without the dot
	Regex      []string `toml:"regex" yaml:"regex"`           // applied to the file name only
}

// IncludeRules override every exclude rule.
type IncludeRules struct {
	Patterns []string `toml:"patterns" yaml:"patterns"`
}

// New returns the default configuration: hidden files excluded, no rules.
func New() *Config {
	return &Config{}
}

// LoadConfig resolves the configuration to use. An explicit path wins;
// otherwise ./.dirtidyrc.toml in workDir, then
// $XDG_CONFIG_HOME/dirtidy/config.toml. When none exists the defaults are
// returned with an empty source path.
func LoadConfig(explicit, workDir string) (*Config, string, error) {
	if explicit != "" {
		cfg, err := LoadConfigFile(explicit)
		return cfg, explicit, err
	}

	candidates := []string{filepath.Join(workDir, LocalConfigName)}
	if userPath, err := xdg.SearchConfigFile(filepath.Join(appName, "config.toml")); err == nil {
		candidates = append(candidates, userPath)
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		cfg, err := LoadConfigFile(path)
		return cfg, path, err
	}

	log.Debug("No configuration file found, using defaults")
	return New(), "", nil
}

// LoadConfigFile loads configuration from a specific file path. Files
// ending in .yaml or .yml are decoded as YAML, everything else as TOML.
// Unlike discovery, a missing explicit file is an error.
func LoadConfigFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, serr.NewConfigError("configuration file not found", path, serr.ConfigNotFound, err)
		}
		return nil, serr.NewConfigError("error reading config file", path, serr.InvalidConfig, err)
	}

	cfg, unknown, err := parse(data, formatOf(path))
	if err != nil {
		return nil, serr.NewConfigError("error parsing config file", path, serr.InvalidConfig, err)
	}
	if len(unknown) > 0 {
		log.LogWithFields(log.F("path", path), log.F("keys", unknown)).Warn("Ignoring unknown configuration keys")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.LogWithFields(log.F("path", path)).Debugf(
		"Configuration loaded: %d include patterns, %d exclude rules",
		len(cfg.Filters.Include.Patterns), cfg.Filters.Exclude.count())
	return cfg, nil
}

// Format is a configuration file syntax
type Format int

const (
	TOML Format = iota
	YAML
)

func formatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML
	default:
		return TOML
	}
}

// Parse decodes a configuration document. Keys the schema does not know
// are ignored; LoadConfigFile logs them so a misspelled rule is visible.
func Parse(data []byte, format Format) (*Config, error) {
	cfg, _, err := parse(data, format)
	return cfg, err
}

// parse decodes strictly first to learn which keys are unknown, then
// leniently when unknown keys were the only problem.
func parse(data []byte, format Format) (*Config, []string, error) {
	cfg, err := decode(data, format, true)
	if err == nil {
		return cfg, nil, nil
	}
	unknown := unknownKeys(err)
	if len(unknown) == 0 {
		return nil, nil, err
	}
	cfg, err = decode(data, format, false)
	if err != nil {
		return nil, nil, err
	}
	return cfg, unknown, nil
}

func decode(data []byte, format Format, strict bool) (*Config, error) {
	cfg := New()
	switch format {
	case YAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(strict)
		if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
	default:
		dec := toml.NewDecoder(bytes.NewReader(data))
		if strict {
			dec.DisallowUnknownFields()
		}
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// unknownKeys lists the keys a strict decode rejected, nil when err is
// about something else.
func unknownKeys(err error) []string {
	var missing *toml.StrictMissingError
	if errors.As(err, &missing) {
		keys := make([]string, 0, len(missing.Errors))
		for i := range missing.Errors {
			keys = append(keys, strings.Join(missing.Errors[i].Key(), "."))
		}
		return keys
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		var keys []string
		for _, msg := range typeErr.Errors {
			if !strings.Contains(msg, "not found in type") {
				return nil
			}
			keys = append(keys, msg)
		}
		return keys
	}
	return nil
}

func (r ExcludeRules) count() int {
	return len(r.Filenames) + len(r.Patterns) + len(r.Extensions) + len(r.Regex)
}

// Validate checks that every glob and regex compiles, so a bad pattern is
// reported before anything on disk changes.
func (c *Config) Validate() error {
	if c == nil {
		return serr.NewConfigError("nil config", "", serr.InvalidConfig, nil)
	}

	f := c.Filters
	for i, p := range f.Include.Patterns {
		if err := validateGlob(p); err != nil {
			return serr.NewConfigError("invalid glob pattern", fmt.Sprintf("filters.include.patterns[%d]", i), serr.InvalidConfig, err)
		}
	}
	for i, p := range f.Exclude.Patterns {
		if err := validateGlob(p); err != nil {
			return serr.NewConfigError("invalid glob pattern", fmt.Sprintf("filters.exclude.patterns[%d]", i), serr.InvalidConfig, err)
		}
	}
	for i, r := range f.Exclude.Regex {
		if _, err := regexp.Compile(r); err != nil {
			return serr.NewConfigError("invalid regex pattern", fmt.Sprintf("filters.exclude.regex[%d]", i), serr.InvalidConfig, err)
		}
	}
	for i, ext := range f.Exclude.Extensions {
		if strings.TrimPrefix(strings.TrimSpace(ext), ".") == "" {
			return serr.NewConfigError("empty extension", fmt.Sprintf("filters.exclude.extensions[%d]", i), serr.InvalidConfig, nil)
		}
	}
	return nil
}

func validateGlob(pattern string) error {
	if strings.TrimSpace(pattern) == "" {
		return fmt.Errorf("empty pattern")
	}
	_, err := glob.Compile(pattern, '/')
	return err
}
