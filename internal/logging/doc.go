// Package logging provides structured logging for sitepipe.
//
// This package wraps Go's log/slog with context helpers for the build
// domain: every task invocation, pipeline and watch binding can carry its
// identity on every log line. Human-readable progress is rendered by the
// console package; this logger is for diagnostics.
//
// # Basic Usage
//
//	logger, err := logging.New(logging.Options{Level: "debug", Format: "text"})
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	taskLogger := logger.WithPipeline("build").WithTask("styles")
//	taskLogger.Info("wrote output", "path", "css/style.css")
//
// # Testing
//
// Use [NopLogger] to discard all output.
//
// # Configuration
//
//	logging:
//	  level: warn
//	  format: text   # or json
//	  file: ""       # append JSON logs to this file instead of stderr
package logging
