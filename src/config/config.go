package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	defaultParallel  = 8
	defaultHashCheck = true
)

// Load reads and parses a YAML config file.
func Load(path string) (*Config, error) {
	return LoadMultiple([]string{path})
}

// LoadMultiple reads and merges multiple YAML config files.
// Later configs override earlier ones for aliases, mirror, and settings.
// Tasks and headers are accumulated across all configs.
func LoadMultiple(paths []string) (*Config, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no config files specified")
	}

	// Load first config without validation.
	baseConfig, err := loadWithoutValidation(paths[0])
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", paths[0], err)
	}

	// Merge remaining configs.
	for _, path := range paths[1:] {
		cfg, err := loadWithoutValidation(path)
		if err != nil {
			return nil, fmt.Errorf("loading %s: %w", path, err)
		}

		mergeConfigs(baseConfig, cfg)
	}

	// Apply defaults.
	ApplyDefaults(baseConfig)

	// Validate merged configuration.
	err = Validate(baseConfig)
	if err != nil {
		return nil, fmt.Errorf("validating merged config: %w", err)
	}

	return baseConfig, nil
}

func loadWithoutValidation(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config

	err = yaml.Unmarshal(data, &cfg)
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	// Expand environment variables in aliases, headers and proxies.
	expandEnv(&cfg)

	return &cfg, nil
}

func mergeConfigs(base *Config, override *Config) {
	if base.Aliases == nil {
		base.Aliases = make(map[string]Alias)
	}

	// Merge aliases (add new or override existing).
	for name, alias := range override.Aliases {
		base.Aliases[name] = alias
	}

	// Override mirror settings if specified.
	if override.Mirror.Alias != "" {
		base.Mirror.Alias = override.Mirror.Alias
	}

	if override.Mirror.Enabled {
		base.Mirror.Enabled = true
	}

	mergeSettings(&base.Settings, &override.Settings)

	// Accumulate tasks.
	base.Tasks = append(base.Tasks, override.Tasks...)
}

// mergeSettings copies the non-zero values of override onto base.
func mergeSettings(base *Settings, override *Settings) {
	if override.Destination != "" {
		base.Destination = override.Destination
	}

	if override.Parallel > 0 {
		base.Parallel = override.Parallel
	}

	if override.Timeout > 0 {
		base.Timeout = override.Timeout
	}

	if override.Retries > 0 {
		base.Retries = override.Retries
	}

	if override.HashCheck != nil {
		hashCheck := *override.HashCheck
		base.HashCheck = &hashCheck
	}

	base.OnlyBinary = base.OnlyBinary || override.OnlyBinary
	base.AutoRename = base.AutoRename || override.AutoRename
	base.NoDefaultProxy = base.NoDefaultProxy || override.NoDefaultProxy

	// Headers accumulate; a later proxy list replaces the earlier one.
	base.Headers = append(base.Headers, override.Headers...)

	if len(override.Proxies) > 0 {
		base.Proxies = override.Proxies
	}
}

// ApplyDefaults fills unset settings.
func ApplyDefaults(cfg *Config) {
	if cfg.Settings.Parallel <= 0 {
		cfg.Settings.Parallel = defaultParallel
	}

	if cfg.Settings.HashCheck == nil {
		hashCheck := defaultHashCheck
		cfg.Settings.HashCheck = &hashCheck
	}

	for i := range cfg.Tasks {
		if cfg.Tasks[i].Path == "" {
			cfg.Tasks[i].Path = "."
		}
	}
}

// Validate checks a merged config. Callers that change settings after
// loading, such as command-line overrides, run it again.
func Validate(cfg *Config) error {
	// Validate mirror alias exists if mirroring is enabled.
	if cfg.Mirror.Enabled {
		if cfg.Mirror.Alias == "" {
			return fmt.Errorf("mirror enabled but no alias specified")
		}

		if _, exists := cfg.Aliases[cfg.Mirror.Alias]; !exists {
			return fmt.Errorf("mirror alias %q not found in aliases", cfg.Mirror.Alias)
		}
	}

	// Validate settings.
	if cfg.Settings.Timeout < 0 {
		return fmt.Errorf("timeout must not be negative")
	}

	for i, header := range cfg.Settings.Headers {
		if strings.TrimSpace(header.Name) == "" {
			return fmt.Errorf("header %d: name is required", i)
		}
	}

	for i, proxy := range cfg.Settings.Proxies {
		if proxy.URL == "" {
			return fmt.Errorf("proxy %d: url is required", i)
		}

		if !validScope(proxy.Scope) {
			return fmt.Errorf("proxy %d: scope must be http, https or all, got %q", i, proxy.Scope)
		}
	}

	// Validate tasks.
	for i, task := range cfg.Tasks {
		if task.URL == "" {
			return fmt.Errorf("task %d: url is required", i)
		}
	}

	return nil
}

func validScope(scope string) bool {
	switch strings.ToLower(scope) {
	case "http", "https", "all":
		return true
	default:
		return false
	}
}

// GetAlias returns an alias by name.
func (config *Config) GetAlias(name string) (Alias, bool) {
	alias, exists := config.Aliases[name]

	return alias, exists
}

// GetMirrorAlias returns the mirror alias if mirroring is enabled.
func (config *Config) GetMirrorAlias() (Alias, bool) {
	if !config.Mirror.Enabled {
		return Alias{}, false
	}

	return config.GetAlias(config.Mirror.Alias)
}

// HashCheckEnabled reports the effective hash_check setting.
func (settings Settings) HashCheckEnabled() bool {
	if settings.HashCheck == nil {
		return defaultHashCheck
	}

	return *settings.HashCheck
}
