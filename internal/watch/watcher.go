package watch

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/afero"

	"github.com/sitepipe/sitepipe/internal/errors"
	"github.com/sitepipe/sitepipe/internal/event"
	"github.com/sitepipe/sitepipe/internal/fsutil"
	"github.com/sitepipe/sitepipe/internal/logging"
	"github.com/sitepipe/sitepipe/internal/task"
)

// DefaultDebounce is the quiescence window used when Options.Debounce is zero.
const DefaultDebounce = 100 * time.Millisecond

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiescence window W.
	Debounce time.Duration
	// Reloader receives post-actions. Nil disables them.
	Reloader Reloader
	// Output is read to fetch rebuilt stylesheets for ActionInject.
	Output *fsutil.Output
	Bus    *event.Bus
	Logger *logging.Logger
}

// Watcher dispatches source changes to bindings.
type Watcher struct {
	root     string
	bindings []*binding
	opts     Options
	logger   *logging.Logger

	ctx    context.Context
	cancel context.CancelFunc

	mu        sync.Mutex
	closed    bool
	running   sync.WaitGroup
	fsw       *fsnotify.Watcher
	loop      sync.WaitGroup
	closeOnce sync.Once
	closeErr  error

	// Paths to ignore (editor droppings, VCS metadata)
	ignorePaths []string
}

// New creates a Watcher over root. Globs are compiled eagerly so that a bad
// binding fails here and not on the first event.
func New(root string, bindings []Binding, opts Options) (*Watcher, error) {
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NopLogger()
	}

	w := &Watcher{
		root:        filepath.Clean(root),
		opts:        opts,
		logger:      logger,
		ignorePaths: []string{".git", "node_modules", ".DS_Store"},
	}
	for _, b := range bindings {
		if b.Task == nil {
			return nil, fmt.Errorf("watch: binding %q has no task", b.Glob)
		}
		m, err := fsutil.Compile(b.Glob)
		if err != nil {
			return nil, fmt.Errorf("watch: %w", err)
		}
		w.bindings = append(w.bindings, &binding{
			Binding: b,
			matcher: m,
			paths:   make(map[string]struct{}),
		})
	}
	w.ctx, w.cancel = context.WithCancel(context.Background())
	return w, nil
}

// Start begins watching the filesystem under root. The Watcher closes itself
// when ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watch: watcher closed")
	}
	if w.fsw != nil {
		return fmt.Errorf("watch: already started")
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.NewFilesystemError("watch", w.root, err)
	}
	w.fsw = fsw
	if err := w.watchDirRecursive(w.root); err != nil {
		_ = fsw.Close()
		w.fsw = nil
		return err
	}

	w.loop.Add(1)
	go func() {
		defer w.loop.Done()
		w.watchLoop(ctx)
	}()
	w.logger.Info("watching", "root", w.root, "bindings", len(w.bindings))
	return nil
}

// watchDirRecursive adds root and all subdirectories to the fsnotify watcher.
func (w *Watcher) watchDirRecursive(root string) error {
	if err := w.fsw.Add(root); err != nil {
		return errors.NewFilesystemError("watch", root, err)
	}
	return filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if w.ignored(p) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() && p != root {
			_ = w.fsw.Add(p)
		}
		return nil
	})
}

func (w *Watcher) ignored(p string) bool {
	base := filepath.Base(p)
	for _, ignore := range w.ignorePaths {
		if base == ignore {
			return true
		}
	}
	return false
}

// watchLoop forwards fsnotify events until ctx is done or the watcher is
// closed.
func (w *Watcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			go func() { _ = w.Close() }()
			return

		case <-w.ctx.Done():
			return

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleFSEvent(ev)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "error", err.Error())
		}
	}
}

func (w *Watcher) handleFSEvent(ev fsnotify.Event) {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) == 0 {
		return
	}
	if w.ignored(ev.Name) {
		return
	}

	// New directories need their own watch; files created inside them
	// before the add are picked up by the walk.
	if ev.Op&fsnotify.Create != 0 {
		if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
			w.mu.Lock()
			if w.fsw != nil && !w.closed {
				_ = w.watchDirRecursive(ev.Name)
			}
			w.mu.Unlock()
			w.notifyTree(ev.Name)
			return
		}
	}

	rel, err := filepath.Rel(w.root, ev.Name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	w.Notify(rel)
}

// notifyTree notifies every file under dir, for directories that appear
// with content already in them (moves, unpacks).
func (w *Watcher) notifyTree(dir string) {
	_ = filepath.Walk(dir, func(p string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return nil
		}
		if rel, err := filepath.Rel(w.root, p); err == nil {
			w.Notify(rel)
		}
		return nil
	})
}

// Notify reports a change to rel, a path relative to the watched root. It
// is what the fsnotify loop calls and may be called directly. It returns
// the number of bindings that matched.
func (w *Watcher) Notify(rel string) int {
	rel = path.Clean(filepath.ToSlash(rel))

	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		return 0
	}

	matched := 0
	for _, b := range w.bindings {
		if !b.matcher.Match(rel) {
			continue
		}
		matched++
		if b.trigger(rel, w.opts.Debounce, w.fireFunc(b)) {
			w.logger.WithBinding(b.Glob).Debug("change detected", "path", rel)
		}
	}
	return matched
}

func (w *Watcher) fireFunc(b *binding) func(uint64) {
	return func(gen uint64) { w.fire(b, gen) }
}

// fire runs on the timer goroutine when a window elapses.
func (w *Watcher) fire(b *binding, gen uint64) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	paths, ok := b.begin(gen)
	if !ok {
		w.mu.Unlock()
		return
	}
	w.running.Add(1)
	w.mu.Unlock()

	defer w.running.Done()
	w.invoke(b, paths)

	w.mu.Lock()
	closed := w.closed
	w.mu.Unlock()
	if closed {
		b.stop()
		return
	}
	b.finish(w.opts.Debounce, w.fireFunc(b))
}

// invoke runs the binding's task and performs its post-action.
func (w *Watcher) invoke(b *binding, paths []string) {
	logger := w.logger.WithBinding(b.Glob).WithTask(b.Task.Name())
	w.opts.Bus.Publish(event.NewWatchTriggeredEvent(b.Glob, b.Task.Name(), paths))
	logger.Info("rebuilding", "changed", len(paths))

	res, err := runTask(w.ctx, b.Task)
	if err != nil {
		if w.ctx.Err() != nil {
			return
		}
		logger.Error("rebuild failed", "error", err.Error())
		w.opts.Bus.Publish(event.NewWatchErrorEvent(b.Glob, b.Task.Name(), err))
		return
	}
	w.postAction(b, res, logger)
}

// runTask invokes t, converting a panic into an error so a broken task
// does not end the session.
func runTask(ctx context.Context, t task.Task) (res task.Result, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("task %q panicked: %v", t.Name(), r)
		}
	}()
	return t.Run(ctx)
}

func (w *Watcher) postAction(b *binding, res task.Result, logger *logging.Logger) {
	r := w.opts.Reloader
	if r == nil {
		return
	}

	switch b.Action {
	case ActionReload:
		r.ReloadAll()
		logger.Debug("reload sent")

	case ActionInject:
		injected := 0
		for _, out := range res.Sorted() {
			if path.Ext(out) != ".css" || w.opts.Output == nil {
				continue
			}
			dst, err := w.opts.Output.Resolve(out)
			if err != nil {
				continue
			}
			content, err := afero.ReadFile(w.opts.Output.Fs(), dst)
			if err != nil {
				logger.Warn("cannot read rebuilt asset", "path", out, "error", err.Error())
				continue
			}
			r.InjectAsset(out, content)
			injected++
		}
		if injected == 0 {
			r.ReloadAll()
		}
		logger.Debug("assets injected", "count", injected)
	}
}

// Close stops watching, cancels pending windows and waits for running
// invocations to finish. It is idempotent, and concurrent callers all wait.
func (w *Watcher) Close() error {
	w.closeOnce.Do(func() {
		w.mu.Lock()
		w.closed = true
		fsw := w.fsw
		w.mu.Unlock()

		for _, b := range w.bindings {
			b.stop()
		}
		w.cancel()

		if fsw != nil {
			w.closeErr = fsw.Close()
		}
		w.loop.Wait()
		w.running.Wait()
	})
	return w.closeErr
}
