// Package logging builds the daemon's structured logger.
//
// # Overview
//
// The logging package configures Go's standard log/slog package:
//   - JSON or text output
//   - Configurable minimum level (debug, info, warn, error)
//   - Optional file:line source attribution
//
// It returns a plain *slog.Logger so every other package depends only
// on the standard logging interface, never on this package. Components
// derive their own loggers with With:
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//
//	reg := lifecycle.New(lifecycle.Config{Logger: logger})
//	ctl := logger.With("component", "control")
//
// # Levels
//
// Levels follow slog's ordering: debug < info < warn < error. Records
// below the configured minimum are dropped by the handler, so disabled
// levels cost almost nothing.
package logging
