package errors

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestSeverity_String(t *testing.T) {
	tests := []struct {
		severity Severity
		want     string
	}{
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{SeverityCritical, "critical"},
		{Severity(99), "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.severity.String(); got != tt.want {
				t.Errorf("Severity.String() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSourceFormatError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *SourceFormatError
		want string
	}{
		{
			name: "message only",
			err:  NewSourceFormatError("unclosed block", nil),
			want: "source format error: unclosed block",
		},
		{
			name: "with path and tool",
			err:  NewSourceFormatError("unclosed block", nil).WithPath("less/style.less").WithTool("lessc"),
			want: "source format error [path=less/style.less, tool=lessc]: unclosed block",
		},
		{
			name: "with line",
			err:  NewSourceFormatError("unclosed block", nil).WithPath("less/style.less").WithLine(12),
			want: "source format error [path=less/style.less:12]: unclosed block",
		},
		{
			name: "with cause",
			err:  NewSourceFormatError("rejected", fmt.Errorf("bad token")),
			want: "source format error: rejected: bad token",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestKinds_MatchSentinels(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		sentinel error
		kind     string
	}{
		{"source format", NewSourceFormatError("x", nil), ErrSourceFormat, "source_format"},
		{"missing input", NewMissingInputError("less/style.less"), ErrMissingInput, "missing_input"},
		{"filesystem", NewFilesystemError("remove", "build", nil), ErrFilesystem, "filesystem"},
		{"converter", NewConverterUnavailableError("lessc", nil), ErrConverterUnavailable, "converter_unavailable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !Is(tt.err, tt.sentinel) {
				t.Errorf("Is(%v, sentinel) = false, want true", tt.err)
			}
			if got := KindOf(tt.err); got != tt.kind {
				t.Errorf("KindOf() = %q, want %q", got, tt.kind)
			}
			if !IsUserFacing(tt.err) {
				t.Error("IsUserFacing() = false, want true")
			}
		})
	}
}

func TestFilesystemError_PreservesCause(t *testing.T) {
	cause := fmt.Errorf("permission denied")
	err := NewFilesystemError("write", "build/css/style.css", cause)

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
	if !strings.Contains(err.Error(), "path=build/css/style.css") {
		t.Errorf("Error() = %q, want path context", err.Error())
	}
}

func TestConverterUnavailable_IsCritical(t *testing.T) {
	err := NewConverterUnavailableError("cwebp", nil)
	if GetSeverity(err) != SeverityCritical {
		t.Errorf("GetSeverity() = %v, want critical", GetSeverity(err))
	}
	if GetSeverity(fmt.Errorf("plain")) != SeverityError {
		t.Error("plain errors should default to SeverityError")
	}
}

func TestTaskError(t *testing.T) {
	cause := NewSourceFormatError("bad", nil)
	err := NewTaskError("styles", cause)

	var sfe *SourceFormatError
	if !As(err, &sfe) {
		t.Fatal("As(SourceFormatError) = false through TaskError")
	}
	if got := err.Error(); !strings.HasPrefix(got, `task "styles": `) {
		t.Errorf("Error() = %q", got)
	}

	// Re-wrapping under the same name is a no-op.
	if again := NewTaskError("styles", err); again != err {
		t.Error("NewTaskError should not double-wrap the same task")
	}
	if NewTaskError("styles", nil) != nil {
		t.Error("NewTaskError(nil) should return nil")
	}
}

func TestAggregateError(t *testing.T) {
	first := NewTaskError("html", NewSourceFormatError("bad markup", nil))
	second := NewTaskError("svg", NewFilesystemError("write", "img/a.svg", nil))
	agg := &AggregateError{Name: "assets", Errs: []error{first, second}}

	if agg.First() != first {
		t.Error("First() should return the first registered failure")
	}
	if !strings.Contains(agg.Error(), "and 1 more") {
		t.Errorf("Error() = %q, want count of extra failures", agg.Error())
	}

	var fse *FilesystemError
	if !As(agg, &fse) {
		t.Error("As(FilesystemError) = false, want true for second child")
	}
	if !Is(agg, ErrSourceFormat) {
		t.Error("Is(ErrSourceFormat) = false, want true for first child")
	}
}

func TestKindOf_Internal(t *testing.T) {
	if got := KindOf(nil); got != "" {
		t.Errorf("KindOf(nil) = %q, want empty", got)
	}
	if got := KindOf(fmt.Errorf("boom")); got != "internal" {
		t.Errorf("KindOf(plain) = %q, want internal", got)
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, "x") != nil {
		t.Error("Wrap(nil) should be nil")
	}
	base := NewMissingInputError("a")
	err := Wrapf(base, "loading %s", "styles")
	if !Is(err, ErrMissingInput) {
		t.Error("Wrapf should preserve the chain")
	}
	if !strings.HasPrefix(err.Error(), "loading styles: ") {
		t.Errorf("Wrapf() = %q", err.Error())
	}
}
