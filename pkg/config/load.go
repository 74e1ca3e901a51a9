package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads the bootstrap configuration from a YAML file, applies
// defaults and validates the result. Environment variables are not
// consulted; use LoadWithEnvOverrides for that.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap config %q: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap config %q: %w", path, err)
	}

	ApplyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadWithEnvOverrides loads the bootstrap configuration and then
// applies TEMPESTA_* environment variable overrides. Variables follow
// TEMPESTA_SECTION_FIELD naming (e.g. TEMPESTA_SOURCE_PATH) and always
// win over file values. The result is validated again afterwards.
func LoadWithEnvOverrides(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("after environment overrides: %w", err)
	}

	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	// Source overrides
	if val := os.Getenv("TEMPESTA_SOURCE_TYPE"); val != "" {
		cfg.Source.Type = val
	}
	if val := os.Getenv("TEMPESTA_SOURCE_PATH"); val != "" {
		cfg.Source.Path = val
	}
	if val := os.Getenv("TEMPESTA_SOURCE_MAX_SIZE"); val != "" {
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			cfg.Source.MaxSize = n
		}
	}
	if val := os.Getenv("TEMPESTA_SOURCE_GIT_URL"); val != "" {
		cfg.Source.Git.URL = val
	}
	if val := os.Getenv("TEMPESTA_SOURCE_GIT_BRANCH"); val != "" {
		cfg.Source.Git.Branch = val
	}
	if val := os.Getenv("TEMPESTA_SOURCE_GIT_PATH"); val != "" {
		cfg.Source.Git.Path = val
	}
	if val := os.Getenv("TEMPESTA_SOURCE_GIT_DIR"); val != "" {
		cfg.Source.Git.Dir = val
	}
	if val := os.Getenv("TEMPESTA_SOURCE_GIT_PULL_ON_LOAD"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Source.Git.PullOnLoad = b
		}
	}
	if val := os.Getenv("TEMPESTA_SOURCE_GIT_DEPTH"); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			cfg.Source.Git.Depth = n
		}
	}

	// Control overrides
	if val := os.Getenv("TEMPESTA_CONTROL_STATE_FILE"); val != "" {
		cfg.Control.StateFile = val
	}
	if val := os.Getenv("TEMPESTA_CONTROL_AUTOSTART"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Control.Autostart = b
		}
	}
	if val := os.Getenv("TEMPESTA_CONTROL_DEBOUNCE"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Control.Debounce = d
		}
	}

	// Logging overrides
	if val := os.Getenv("TEMPESTA_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("TEMPESTA_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}
	if val := os.Getenv("TEMPESTA_LOGGING_ADD_SOURCE"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Logging.AddSource = b
		}
	}
}
