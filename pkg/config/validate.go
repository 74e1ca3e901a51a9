package config

import (
	"fmt"
	"strings"
)

// FieldError is a validation failure on one configuration field.
type FieldError struct {
	// Field is the dotted path to the field, e.g. "source.path".
	Field string

	// Message is the human-readable problem.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every validation failure found in a
// configuration, so one fix cycle sees all problems at once.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	switch len(e.Errors) {
	case 0:
		return "configuration validation failed"
	case 1:
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the whole configuration and returns a
// ValidationError listing every problem, or nil.
func Validate(cfg *Config) error {
	var errs []FieldError

	errs = append(errs, validateSource(&cfg.Source)...)
	errs = append(errs, validateControl(&cfg.Control)...)
	errs = append(errs, validateLogging(&cfg.Logging)...)

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

func validateSource(cfg *SourceConfig) []FieldError {
	var errs []FieldError

	switch cfg.Type {
	case SourceTypeFile:
		if cfg.Path == "" {
			errs = append(errs, FieldError{
				Field:   "source.path",
				Message: "a document path is required for the file source",
			})
		}
		if cfg.MaxSize <= 0 {
			errs = append(errs, FieldError{
				Field:   "source.max_size",
				Message: "must be a positive byte count",
			})
		}
	case SourceTypeGit:
		if cfg.Git.URL == "" {
			errs = append(errs, FieldError{
				Field:   "source.git.url",
				Message: "a clone URL is required for the git source",
			})
		}
		if cfg.Git.Dir == "" {
			errs = append(errs, FieldError{
				Field:   "source.git.dir",
				Message: "a local clone directory is required for the git source",
			})
		}
		if cfg.Git.Path == "" {
			errs = append(errs, FieldError{
				Field:   "source.git.path",
				Message: "a document path inside the repository is required",
			})
		}
		if cfg.Git.Depth < 0 {
			errs = append(errs, FieldError{
				Field:   "source.git.depth",
				Message: "must be zero or positive",
			})
		}
	default:
		errs = append(errs, FieldError{
			Field:   "source.type",
			Message: fmt.Sprintf("unknown source type %q (want %q or %q)", cfg.Type, SourceTypeFile, SourceTypeGit),
		})
	}

	return errs
}

func validateControl(cfg *ControlConfig) []FieldError {
	var errs []FieldError

	if cfg.StateFile == "" {
		errs = append(errs, FieldError{
			Field:   "control.state_file",
			Message: "a state file path is required",
		})
	}
	if cfg.Debounce < 0 {
		errs = append(errs, FieldError{
			Field:   "control.debounce",
			Message: "must be zero or positive",
		})
	}

	return errs
}

func validateLogging(cfg *LoggingConfig) []FieldError {
	var errs []FieldError

	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.level",
			Message: fmt.Sprintf("unknown level %q (want debug, info, warn or error)", cfg.Level),
		})
	}

	switch cfg.Format {
	case "text", "json":
	default:
		errs = append(errs, FieldError{
			Field:   "logging.format",
			Message: fmt.Sprintf("unknown format %q (want text or json)", cfg.Format),
		})
	}

	return errs
}
