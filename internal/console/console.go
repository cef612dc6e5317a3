// Package console renders the human-readable build log from bus events:
//
//	[14:02:11] Starting 'styles'...
//	[14:02:11] Finished 'styles' after 41 ms
//
// It is the primary terminal output of the CLI; structured logs go to the
// logging package and default to warnings only.
package console

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/sitepipe/sitepipe/internal/event"
)

// Color modes.
const (
	ColorAuto   = "auto"
	ColorAlways = "always"
	ColorNever  = "never"
)

// Options configures a Reporter.
type Options struct {
	// Color is "auto", "always" or "never".
	Color string
	// Now overrides the clock, for tests.
	Now func() time.Time
}

// Reporter writes one line per task lifecycle, watch and server event.
type Reporter struct {
	mu  sync.Mutex
	w   io.Writer
	p   palette
	now func() time.Time
}

// New creates a Reporter writing to w.
func New(w io.Writer, opts Options) *Reporter {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Reporter{
		w:   w,
		p:   newPalette(lipgloss.NewRenderer(w), UseColor(w, opts.Color)),
		now: opts.Now,
	}
}

// UseColor decides whether output to w should be colored. In auto mode
// that means w is a terminal and NO_COLOR is unset.
func UseColor(w io.Writer, mode string) bool {
	switch mode {
	case ColorAlways:
		return true
	case ColorNever:
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Attach subscribes the reporter to bus and returns a function that
// detaches it.
func (r *Reporter) Attach(bus *event.Bus) func() {
	id := bus.SubscribeAll(r.Handle)
	return func() { bus.Unsubscribe(id) }
}

// Handle renders a single event. Unknown events are ignored.
func (r *Reporter) Handle(e event.Event) {
	switch ev := e.(type) {
	case event.TaskStartedEvent:
		r.line("Starting %s...", r.quote(ev.Task))
	case event.TaskFinishedEvent:
		if ev.Succeeded() {
			r.line("Finished %s after %s", r.quote(ev.Task), r.p.duration.Render(FormatDuration(ev.Duration)))
			return
		}
		r.line("%s %s after %s", r.quote(ev.Task), r.p.failure.Render("errored"),
			r.p.duration.Render(FormatDuration(ev.Duration)))
	case event.WatchTriggeredEvent:
		r.line("Changed %s, running %s", strings.Join(ev.Paths, ", "), r.quote(ev.Task))
	case event.WatchErrorEvent:
		r.line("%s %s", r.p.warning.Render("Rebuild failed:"), describe(ev.Err))
	case event.ServerListeningEvent:
		r.line("Serving at %s", r.p.bold.Render(ev.URL))
	case event.ReloadSentEvent:
		if ev.Action == "inject" {
			r.line("Injected %s into %d client(s)", strings.Join(ev.Assets, ", "), ev.Clients)
			return
		}
		r.line("Reloading %d client(s)", ev.Clients)
	}
}

// Failure prints the final error of a command.
func (r *Reporter) Failure(err error) {
	if err == nil {
		return
	}
	r.line("%s %s", r.p.failure.Render("Failed:"), describe(err))
}

// Success prints a closing line for a command that completed.
func (r *Reporter) Success(format string, args ...any) {
	r.line("%s", r.p.success.Render(fmt.Sprintf(format, args...)))
}

func (r *Reporter) quote(name string) string {
	return "'" + r.p.task.Render(name) + "'"
}

func (r *Reporter) line(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stamp := r.p.time.Render("[" + r.now().Format("15:04:05") + "]")
	_, _ = fmt.Fprintf(r.w, "%s %s\n", stamp, fmt.Sprintf(format, args...))
}

// describe prefers the innermost build error's message: composite wrapping
// adds task names the log lines already show.
func describe(err error) string {
	var be errors.BuildError
	if errors.As(err, &be) {
		return be.Error()
	}
	return err.Error()
}

// FormatDuration renders d the way the build log does: milliseconds under a
// second, otherwise seconds with two decimals.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%d ms", d.Milliseconds())
	}
	return fmt.Sprintf("%.2f s", d.Seconds())
}
