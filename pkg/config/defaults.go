package config

// ApplyDefaults fills every unset field with its default. It is called
// by Load but is also safe to run on a hand-built Config.
func ApplyDefaults(cfg *Config) {
	if cfg.Source.Type == "" {
		cfg.Source.Type = DefaultSourceType
	}
	if cfg.Source.Path == "" {
		cfg.Source.Path = DefaultConfigPath
	}
	if cfg.Source.MaxSize == 0 {
		cfg.Source.MaxSize = DefaultMaxSize
	}
	if cfg.Source.Git.Branch == "" {
		cfg.Source.Git.Branch = DefaultGitBranch
	}
	if cfg.Source.Git.Path == "" {
		cfg.Source.Git.Path = "tempesta.conf"
	}

	if cfg.Control.StateFile == "" {
		cfg.Control.StateFile = DefaultStateFile
	}
	if cfg.Control.Debounce == 0 {
		cfg.Control.Debounce = DefaultDebounce
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = DefaultLogLevel
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = DefaultLogFormat
	}
}

// Default returns a complete configuration with every field at its
// default, for running without a bootstrap file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
