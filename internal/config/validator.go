package config

import (
	"fmt"
	"path/filepath"
	"slices"
	"strings"
)

// ValidationError represents a single validation failure
type ValidationError struct {
	Field   string // The config field path (e.g., "server.port")
	Value   any    // The invalid value
	Message string // Human-readable error description
}

// Error implements the error interface for ValidationError
func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

// Error implements the error interface for ValidationErrors
func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e)))
	for i, err := range e {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// ValidLogLevels returns the list of valid log levels
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidLogFormats returns the list of valid log formats
func ValidLogFormats() []string {
	return []string{"text", "json"}
}

// ValidColorModes returns the list of valid console color modes
func ValidColorModes() []string {
	return []string{"auto", "always", "never"}
}

// Validate checks the Config for invalid values and returns all validation errors found
func (c *Config) Validate() []ValidationError {
	var errors []ValidationError

	errors = append(errors, c.validatePaths()...)
	errors = append(errors, c.validateStyles()...)
	errors = append(errors, c.validateImages()...)
	errors = append(errors, c.validateServer()...)
	errors = append(errors, c.validateWatch()...)
	errors = append(errors, c.validateConverters()...)
	errors = append(errors, c.validateLogging()...)
	errors = append(errors, c.validateConsole()...)

	return errors
}

// validatePaths rejects empty trees and an output tree that would contain
// or equal the source tree, since clean deletes the output tree wholesale.
func (c *Config) validatePaths() []ValidationError {
	var errors []ValidationError

	if strings.TrimSpace(c.Paths.Source) == "" {
		errors = append(errors, ValidationError{
			Field:   "paths.source",
			Value:   c.Paths.Source,
			Message: "must not be empty",
		})
	}
	if strings.TrimSpace(c.Paths.Output) == "" {
		errors = append(errors, ValidationError{
			Field:   "paths.output",
			Value:   c.Paths.Output,
			Message: "must not be empty",
		})
	}
	if len(errors) > 0 {
		return errors
	}

	src := c.Paths.ResolveSource("/")
	out := c.Paths.ResolveOutput("/")
	if out == c.Paths.ResolveRoot("/") || isWithin(src, out) {
		errors = append(errors, ValidationError{
			Field:   "paths.output",
			Value:   c.Paths.Output,
			Message: "must not be the project root or contain the source tree",
		})
	}

	return errors
}

// isWithin reports whether child equals parent or lies below it.
func isWithin(child, parent string) bool {
	rel, err := filepath.Rel(parent, child)
	if err != nil {
		return false
	}
	return rel == "." || (!strings.HasPrefix(rel, "..") && !filepath.IsAbs(rel))
}

func (c *Config) validateStyles() []ValidationError {
	var errors []ValidationError

	if c.Styles.Entry == "" {
		errors = append(errors, ValidationError{
			Field:   "styles.entry",
			Value:   c.Styles.Entry,
			Message: "must not be empty",
		})
	} else if filepath.IsAbs(c.Styles.Entry) || strings.HasPrefix(filepath.Clean(c.Styles.Entry), "..") {
		errors = append(errors, ValidationError{
			Field:   "styles.entry",
			Value:   c.Styles.Entry,
			Message: "must be relative to the source tree",
		})
	}

	if filepath.IsAbs(c.Styles.OutputDir) || strings.HasPrefix(filepath.Clean(c.Styles.OutputDir), "..") {
		errors = append(errors, ValidationError{
			Field:   "styles.output_dir",
			Value:   c.Styles.OutputDir,
			Message: "must be relative to the output tree",
		})
	}

	return errors
}

func (c *Config) validateImages() []ValidationError {
	var errors []ValidationError

	if c.Images.WebPQuality < 0 || c.Images.WebPQuality > 100 {
		errors = append(errors, ValidationError{
			Field:   "images.webp_quality",
			Value:   c.Images.WebPQuality,
			Message: "must be between 0 and 100",
		})
	}
	if c.Images.JPEGQuality < 1 || c.Images.JPEGQuality > 100 {
		errors = append(errors, ValidationError{
			Field:   "images.jpeg_quality",
			Value:   c.Images.JPEGQuality,
			Message: "must be between 1 and 100",
		})
	}

	return errors
}

func (c *Config) validateServer() []ValidationError {
	var errors []ValidationError

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		errors = append(errors, ValidationError{
			Field:   "server.port",
			Value:   c.Server.Port,
			Message: "must be between 0 and 65535",
		})
	}

	return errors
}

func (c *Config) validateWatch() []ValidationError {
	var errors []ValidationError

	if c.Watch.DebounceMs < 0 {
		errors = append(errors, ValidationError{
			Field:   "watch.debounce_ms",
			Value:   c.Watch.DebounceMs,
			Message: "must be non-negative",
		})
	}

	return errors
}

func (c *Config) validateConverters() []ValidationError {
	var errors []ValidationError

	if c.Converters.Lessc == "" {
		errors = append(errors, ValidationError{
			Field:   "converters.lessc",
			Value:   c.Converters.Lessc,
			Message: "must not be empty",
		})
	}
	if c.Converters.Cwebp == "" {
		errors = append(errors, ValidationError{
			Field:   "converters.cwebp",
			Value:   c.Converters.Cwebp,
			Message: "must not be empty",
		})
	}

	return errors
}

func (c *Config) validateLogging() []ValidationError {
	var errors []ValidationError

	if c.Logging.Level != "" && !slices.Contains(ValidLogLevels(), strings.ToLower(c.Logging.Level)) {
		errors = append(errors, ValidationError{
			Field:   "logging.level",
			Value:   c.Logging.Level,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogLevels(), ", ")),
		})
	}
	if c.Logging.Format != "" && !slices.Contains(ValidLogFormats(), strings.ToLower(c.Logging.Format)) {
		errors = append(errors, ValidationError{
			Field:   "logging.format",
			Value:   c.Logging.Format,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidLogFormats(), ", ")),
		})
	}

	return errors
}

func (c *Config) validateConsole() []ValidationError {
	var errors []ValidationError

	if c.Console.Color != "" && !slices.Contains(ValidColorModes(), c.Console.Color) {
		errors = append(errors, ValidationError{
			Field:   "console.color",
			Value:   c.Console.Color,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(ValidColorModes(), ", ")),
		})
	}

	return errors
}
