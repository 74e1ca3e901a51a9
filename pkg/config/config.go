package config

import "time"

// Config is the daemon's bootstrap configuration: where the tempesta
// configuration document comes from, how the control channel is wired,
// and how the process logs. It configures the host process only;
// everything the modules consume lives in the tempesta configuration
// language itself.
type Config struct {
	Source  SourceConfig  `yaml:"source"`
	Control ControlConfig `yaml:"control"`
	Logging LoggingConfig `yaml:"logging"`
}

// SourceConfig selects where the configuration document is loaded from
// on each apply.
type SourceConfig struct {
	// Type selects the source implementation: "file" or "git".
	Type string `yaml:"type"`

	// Path is the document path for the file source.
	Path string `yaml:"path"`

	// MaxSize bounds the document size in bytes for the file source.
	// A larger file is an error, never a truncation.
	MaxSize int64 `yaml:"max_size"`

	// Git configures the git source when Type is "git".
	Git GitConfig `yaml:"git"`
}

// GitConfig describes a repository holding the configuration document.
type GitConfig struct {
	// URL is the clone URL.
	URL string `yaml:"url"`

	// Branch to check out; defaults to "main".
	Branch string `yaml:"branch"`

	// Path is the document path inside the repository.
	Path string `yaml:"path"`

	// Dir is the local clone directory.
	Dir string `yaml:"dir"`

	// PullOnLoad refreshes the clone before each load.
	PullOnLoad bool `yaml:"pull_on_load"`

	// Depth limits clone history; 0 clones everything.
	Depth int `yaml:"depth"`
}

// ControlConfig wires the operator control channel.
type ControlConfig struct {
	// StateFile is the watched control file. Writing "start" or
	// "stop" into it drives the configuration lifecycle.
	StateFile string `yaml:"state_file"`

	// Autostart applies the configuration once at daemon boot.
	Autostart bool `yaml:"autostart"`

	// Debounce coalesces bursts of file events into one transition.
	Debounce time.Duration `yaml:"debounce"`
}

// LoggingConfig configures the process logger.
type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`

	// AddSource includes file:line of the log call site.
	AddSource bool `yaml:"add_source"`
}

// Source type names accepted in SourceConfig.Type.
const (
	SourceTypeFile = "file"
	SourceTypeGit  = "git"
)

// Defaults applied by ApplyDefaults.
const (
	DefaultSourceType = SourceTypeFile
	DefaultConfigPath = "/etc/tempesta/tempesta.conf"
	DefaultMaxSize    = int64(1 << 20) // 1 MiB
	DefaultGitBranch  = "main"
	DefaultStateFile  = "/run/tempesta/state"
	DefaultDebounce   = 200 * time.Millisecond
	DefaultLogLevel   = "info"
	DefaultLogFormat  = "text"
)
