// Package config loads the daemon's own bootstrap configuration.
//
// The bootstrap file is ordinary YAML and describes everything the daemon
// needs before it can read a Tempesta configuration document: where the
// document comes from (a local file or a git repository), how the runtime
// control channel behaves, and how the process logs. It is deliberately
// separate from the Tempesta configuration language itself, which is parsed
// by pkg/cfg.
//
// # Configuration Loading
//
// Configuration can be loaded in two ways:
//
//  1. From a YAML file only:
//     cfg, err := config.Load("bootstrap.yaml")
//
//  2. From a YAML file with environment variable overrides:
//     cfg, err := config.LoadWithEnvOverrides("bootstrap.yaml")
//
// # Environment Variable Overrides
//
// Environment variables follow the naming convention TEMPESTA_SECTION_FIELD.
// For example:
//
//   - TEMPESTA_SOURCE_PATH overrides source.path
//   - TEMPESTA_SOURCE_GIT_URL overrides source.git.url
//   - TEMPESTA_CONTROL_STATE_FILE overrides control.state_file
//   - TEMPESTA_LOGGING_LEVEL overrides logging.level
//
// Environment variables always take precedence over file-based configuration.
//
// # Configuration Precedence
//
// Configuration values are applied in the following order (later overrides
// earlier):
//
//  1. Default values (defined in defaults.go)
//  2. Values from the YAML file
//  3. Environment variable overrides
//  4. Validation (fails fast if invalid)
//
// # Validation
//
// All configuration is validated automatically during loading. Validation
// errors include field paths and helpful messages:
//
//	configuration validation failed with 2 errors:
//	  - source.git.url: field is required when source.type is "git"
//	  - logging.level: must be one of: debug, info, warn, error
//
// # Example Configuration
//
// Here is a minimal bootstrap file:
//
//	source:
//	  type: "file"
//	  path: "/etc/tempesta/tempesta.conf"
//
//	control:
//	  state_file: "/run/tempesta/state"
//	  autostart: true
//
//	logging:
//	  level: "info"
//	  format: "text"
//
// And one that pulls the configuration document from git:
//
//	source:
//	  type: "git"
//	  git:
//	    url: "https://example.com/ops/tempesta-config.git"
//	    branch: "main"
//	    path: "tempesta.conf"
//	    dir: "/var/lib/tempesta/config-repo"
//	    pull_on_load: true
//
// # Thread Safety
//
// A Config is immutable after Load returns. Callers that reload configuration
// construct a fresh Config and swap it themselves; this package keeps no
// global state.
package config
