// Package errors provides the error taxonomy used by sitepipe tasks and
// pipelines. It defines the four build failure kinds, the wrappers that
// composite tasks use to attach task identity, and classification helpers
// used by the CLI to pick an exit code and by the console to render failures.
//
// # Error Types
//
// Build failure kinds, produced by leaf tasks:
//   - SourceFormatError: a converter rejected malformed input
//   - MissingInputError: a mandatory pattern matched zero files
//   - FilesystemError: clean/copy/write failed at the OS level
//   - ConverterUnavailableError: an external tool could not be started
//
// Composition wrappers, produced by the task package:
//   - TaskError: a named task failed; wraps the cause unchanged
//   - AggregateError: one or more children of a parallel composite failed
//
// # Usage
//
//	err := errors.NewSourceFormatError("unexpected token", cause).
//	    WithPath("less/style.less").WithTool("lessc")
//
//	var sfe *errors.SourceFormatError
//	if errors.As(err, &sfe) { ... }
//
//	if errors.Is(err, errors.ErrMissingInput) { ... }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Severity represents the severity level of an error.
type Severity int

const (
	// SeverityWarning is for errors that are reported but do not stop a session.
	SeverityWarning Severity = iota
	// SeverityError is for errors that fail a task.
	SeverityError
	// SeverityCritical is for errors that prevent the pipeline from starting at all.
	SeverityCritical
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// -----------------------------------------------------------------------------
// Sentinel Errors
// -----------------------------------------------------------------------------

var (
	// ErrSourceFormat indicates a converter rejected its input.
	ErrSourceFormat = New("malformed source")
	// ErrMissingInput indicates a mandatory input was not found.
	ErrMissingInput = New("missing input")
	// ErrFilesystem indicates a filesystem operation failed.
	ErrFilesystem = New("filesystem error")
	// ErrConverterUnavailable indicates an external converter could not be used.
	ErrConverterUnavailable = New("converter unavailable")
	// ErrOutsideOutput indicates a task attempted to write outside the output tree.
	ErrOutsideOutput = New("path escapes output tree")
	// ErrTaskNotFound indicates a registry lookup for an unknown name.
	ErrTaskNotFound = New("task not found")
	// ErrDuplicateTask indicates a name was registered twice.
	ErrDuplicateTask = New("task already registered")
)

// -----------------------------------------------------------------------------
// Base Error Interface
// -----------------------------------------------------------------------------

// BuildError is the interface implemented by every sitepipe error kind.
type BuildError interface {
	error

	// Unwrap returns the underlying error, if any.
	Unwrap() error

	// Kind returns a short stable identifier, e.g. "source_format".
	Kind() string

	// Severity returns the severity level of this error.
	Severity() Severity

	// IsUserFacing returns true if the error message is safe to display
	// without the surrounding log context.
	IsUserFacing() bool
}

// baseError provides common functionality for all error types.
type baseError struct {
	kind       string
	sentinel   error
	message    string
	cause      error
	severity   Severity
	userFacing bool

	// Context shared by the failure kinds.
	Path string
	Task string
	Tool string
}

func newBase(kind string, sentinel error, message string, cause error) baseError {
	return baseError{
		kind:       kind,
		sentinel:   sentinel,
		message:    message,
		cause:      cause,
		severity:   SeverityError,
		userFacing: true,
	}
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Kind returns the error kind identifier.
func (e *baseError) Kind() string {
	return e.kind
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// IsUserFacing returns whether the error is safe to show users.
func (e *baseError) IsUserFacing() bool {
	return e.userFacing
}

// Is matches the kind sentinel, then defers to the cause.
func (e *baseError) Is(target error) bool {
	if target == e.sentinel {
		return true
	}
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// format renders "<kind> [task=..., path=..., tool=...]: message: cause".
func (e *baseError) format(label string) string {
	return e.formatPath(label, e.Path)
}

func (e *baseError) formatPath(label, path string) string {
	var parts []string
	if e.Task != "" {
		parts = append(parts, fmt.Sprintf("task=%s", e.Task))
	}
	if path != "" {
		parts = append(parts, fmt.Sprintf("path=%s", path))
	}
	if e.Tool != "" {
		parts = append(parts, fmt.Sprintf("tool=%s", e.Tool))
	}

	prefix := label
	if len(parts) > 0 {
		prefix = fmt.Sprintf("%s [%s]", label, strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// -----------------------------------------------------------------------------
// Build Failure Kinds
// -----------------------------------------------------------------------------

// SourceFormatError is returned when a converter rejects malformed input
// (stylesheet syntax, markup, vector data).
//
// Example:
//
//	err := errors.NewSourceFormatError("unclosed block", cause).WithPath("less/style.less")
//	fmt.Println(err) // "source format error [path=less/style.less]: unclosed block: ..."
type SourceFormatError struct {
	baseError
	Line int
}

// NewSourceFormatError creates a new SourceFormatError.
func NewSourceFormatError(message string, cause error) *SourceFormatError {
	return &SourceFormatError{baseError: newBase("source_format", ErrSourceFormat, message, cause)}
}

// WithPath adds the offending source path.
func (e *SourceFormatError) WithPath(path string) *SourceFormatError {
	e.Path = path
	return e
}

// WithTool adds the converter name.
func (e *SourceFormatError) WithTool(tool string) *SourceFormatError {
	e.Tool = tool
	return e
}

// WithLine adds the line reported by the converter, if known.
func (e *SourceFormatError) WithLine(line int) *SourceFormatError {
	e.Line = line
	return e
}

// Error returns the formatted error message.
func (e *SourceFormatError) Error() string {
	if e.Line > 0 && e.Path != "" {
		return e.formatPath("source format error", fmt.Sprintf("%s:%d", e.Path, e.Line))
	}
	return e.format("source format error")
}

// MissingInputError is returned when a pattern marked mandatory matched no
// files, e.g. the stylesheet entry point.
type MissingInputError struct {
	baseError
	Pattern string
}

// NewMissingInputError creates a new MissingInputError for the given pattern.
func NewMissingInputError(pattern string) *MissingInputError {
	return &MissingInputError{
		baseError: newBase("missing_input", ErrMissingInput, fmt.Sprintf("no files match %q", pattern), nil),
		Pattern:   pattern,
	}
}

// WithTask adds the task name.
func (e *MissingInputError) WithTask(name string) *MissingInputError {
	e.Task = name
	return e
}

// Error returns the formatted error message.
func (e *MissingInputError) Error() string {
	return e.format("missing input")
}

// FilesystemError is returned for permission, disk-full and not-found errors
// raised while cleaning, copying or writing.
type FilesystemError struct {
	baseError
	Op string
}

// NewFilesystemError creates a new FilesystemError for the given operation.
func NewFilesystemError(op, path string, cause error) *FilesystemError {
	e := &FilesystemError{
		baseError: newBase("filesystem", ErrFilesystem, op+" failed", cause),
		Op:        op,
	}
	e.Path = path
	return e
}

// WithSeverity sets the error severity.
func (e *FilesystemError) WithSeverity(s Severity) *FilesystemError {
	e.severity = s
	return e
}

// Error returns the formatted error message.
func (e *FilesystemError) Error() string {
	return e.format("filesystem error")
}

// ConverterUnavailableError is returned when an external transformation tool
// cannot be located or fails to initialize.
type ConverterUnavailableError struct {
	baseError
}

// NewConverterUnavailableError creates a new ConverterUnavailableError.
func NewConverterUnavailableError(tool string, cause error) *ConverterUnavailableError {
	e := &ConverterUnavailableError{
		baseError: newBase("converter_unavailable", ErrConverterUnavailable, "cannot start converter", cause),
	}
	e.Tool = tool
	e.severity = SeverityCritical
	return e
}

// Error returns the formatted error message.
func (e *ConverterUnavailableError) Error() string {
	return e.format("converter unavailable")
}

// -----------------------------------------------------------------------------
// Composition Wrappers
// -----------------------------------------------------------------------------

// TaskError attaches a task name to a failure. The cause is preserved so
// that errors.As still reaches the underlying kind.
type TaskError struct {
	Name  string
	Cause error
}

// NewTaskError wraps cause with the failing task's name. A cause that is
// already a TaskError for the same name is returned unchanged.
func NewTaskError(name string, cause error) error {
	if cause == nil {
		return nil
	}
	var te *TaskError
	if errors.As(cause, &te) && te.Name == name {
		return cause
	}
	return &TaskError{Name: name, Cause: cause}
}

// Error returns "task <name>: <cause>".
func (e *TaskError) Error() string {
	return fmt.Sprintf("task %q: %v", e.Name, e.Cause)
}

// Unwrap returns the cause.
func (e *TaskError) Unwrap() error {
	return e.Cause
}

// AggregateError collects the failures of a parallel composite in
// registration order. The first entry is the reported cause.
type AggregateError struct {
	Name string
	Errs []error
}

// Error reports the first failure and the number of additional ones.
func (e *AggregateError) Error() string {
	switch len(e.Errs) {
	case 0:
		return fmt.Sprintf("parallel %q failed", e.Name)
	case 1:
		return e.Errs[0].Error()
	default:
		return fmt.Sprintf("%v (and %d more failures in %q)", e.Errs[0], len(e.Errs)-1, e.Name)
	}
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e *AggregateError) Unwrap() []error {
	return e.Errs
}

// First returns the first failure in registration order.
func (e *AggregateError) First() error {
	if len(e.Errs) == 0 {
		return nil
	}
	return e.Errs[0]
}

// -----------------------------------------------------------------------------
// Error Classification Helpers
// -----------------------------------------------------------------------------

// KindOf returns the kind of the first BuildError found in err's tree, or
// "internal" when none is present.
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	var be BuildError
	if As(err, &be) {
		return be.Kind()
	}
	return "internal"
}

// IsUserFacing returns true if the error message is safe to display to end users.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	var be BuildError
	if As(err, &be) {
		return be.IsUserFacing()
	}
	return false
}

// GetSeverity returns the severity level of the error.
// Returns SeverityError for errors that don't implement BuildError.
func GetSeverity(err error) Severity {
	var be BuildError
	if As(err, &be) {
		return be.Severity()
	}
	return SeverityError
}

// Wrap wraps an error with additional context message.
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
