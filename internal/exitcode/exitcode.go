package exitcode

import (
	"context"
	"os"
	"strings"

	"github.com/sitepipe/sitepipe/internal/config"
	"github.com/sitepipe/sitepipe/internal/errors"
)

// Exit codes for consistent error handling across the CLI
const (
	// Success indicates successful execution, including a dev session
	// ended by a signal
	Success = 0

	// GeneralError indicates a failure that is not a build failure
	GeneralError = 1

	// UsageError indicates invalid command usage (bad flags, missing args, etc.)
	UsageError = 2

	// ConfigError indicates an invalid configuration
	ConfigError = 3

	// SourceFormat indicates a converter rejected a source file
	SourceFormat = 4

	// MissingInput indicates a mandatory input was not found
	MissingInput = 5

	// Filesystem indicates cleaning, copying or writing failed
	Filesystem = 6

	// ConverterUnavailable indicates an external tool could not be started
	ConverterUnavailable = 7
)

// Exit terminates the program with the given exit code
func Exit(code int) {
	os.Exit(code)
}

// ExitWithError exits with an appropriate code based on error type
func ExitWithError(err error) {
	Exit(DetermineExitCode(err))
}

// DetermineExitCode maps an error to an exit code. Build failures are
// classified by kind; cancellation is a clean exit.
func DetermineExitCode(err error) int {
	if err == nil {
		return Success
	}
	if errors.Is(err, context.Canceled) {
		return Success
	}

	switch errors.KindOf(err) {
	case "source_format":
		return SourceFormat
	case "missing_input":
		return MissingInput
	case "filesystem":
		return Filesystem
	case "converter_unavailable":
		return ConverterUnavailable
	}

	var verrs config.ValidationErrors
	if errors.As(err, &verrs) {
		return ConfigError
	}

	errMsg := strings.ToLower(err.Error())

	// Usage errors reported by cobra
	if strings.Contains(errMsg, "unknown flag") || strings.Contains(errMsg, "unknown command") {
		return UsageError
	}
	if strings.Contains(errMsg, "required flag") || strings.Contains(errMsg, "accepts ") {
		return UsageError
	}

	// Default to general error
	return GeneralError
}

// GetExitCodeDescription returns a human-readable description of an exit code
func GetExitCodeDescription(code int) string {
	switch code {
	case Success:
		return "Success"
	case GeneralError:
		return "General error"
	case UsageError:
		return "Usage error (invalid flags or arguments)"
	case ConfigError:
		return "Invalid configuration"
	case SourceFormat:
		return "Malformed source file"
	case MissingInput:
		return "Missing input"
	case Filesystem:
		return "Filesystem error"
	case ConverterUnavailable:
		return "Converter unavailable"
	default:
		return "Unknown error"
	}
}
