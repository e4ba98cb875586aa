// Package watch reruns a brainfuck source file through the pipeline
// every time it changes on disk. Runs are keyed by the fingerprint of
// the compiled instruction tree, so edits that only touch comment text
// do not trigger a rerun.
package watch

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/mityu/bf/runtime"
	"github.com/mityu/bf/runtime/executor"
)

// Config configures a watch session
type Config struct {
	Debounce  time.Duration           // Settle window for editor save bursts (default 200ms)
	Debug     executor.DebugLevel     // Evaluator debug tracing for each run
	Telemetry executor.TelemetryLevel // Evaluator telemetry for each run
	Stdin     io.Reader               // Shared across runs: a rerun keeps consuming where the last one stopped
	Stdout    io.Writer               // Program output
	Stderr    io.Writer               // Watch notices and run errors
}

// Watcher reruns one source file on every effective change. A run
// failure is reported and the session keeps watching.
type Watcher struct {
	path   string // Absolute path to the watched file
	config Config

	lastRun [32]byte // Fingerprint of the last successfully run tree
	hasRun  bool
}

// New returns a watcher for path. The file does not have to exist yet;
// a read failure is reported per run like any other.
func New(path string, config Config) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", path, err)
	}

	if config.Debounce <= 0 {
		config.Debounce = 200 * time.Millisecond
	}
	if config.Stdin != nil {
		// Buffered once for the whole session: the evaluator reads
		// lines through this same buffer on every run, so a rerun
		// resumes at the first unread line.
		config.Stdin = bufio.NewReader(config.Stdin)
	}
	if config.Stdout == nil {
		config.Stdout = io.Discard
	}
	if config.Stderr == nil {
		config.Stderr = io.Discard
	}

	return &Watcher{path: abs, config: config}, nil
}

// Run performs an initial run, then blocks rerunning the file on each
// change until ctx is cancelled. It returns nil on cancellation; only
// setting up the filesystem watch can fail.
func (w *Watcher) Run(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create filesystem watcher: %w", err)
	}
	defer func() { _ = watcher.Close() }()

	// Watch the directory, not the file: editors that save through a
	// rename swap the inode and a file-level watch would go stale.
	dir := filepath.Dir(w.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}

	w.notify("watching %s", w.path)
	w.runOnce()

	settle := time.NewTimer(time.Hour)
	settle.Stop()
	defer settle.Stop()
	pending := false

	for {
		select {
		case <-ctx.Done():
			w.notify("stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !w.concerns(event) {
				continue
			}
			pending = true
			settle.Reset(w.config.Debounce)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.notify("watch error: %v", err)

		case <-settle.C:
			if pending {
				pending = false
				w.runOnce()
			}
		}
	}
}

// concerns reports whether an event is a content change of the watched
// file. Chmod and removal are ignored; a removed file that comes back
// arrives as Create.
func (w *Watcher) concerns(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// runOnce reads, compiles and runs the file, skipping the run when the
// tree fingerprint matches the last successful one. Every failure is a
// notice, never a session end.
func (w *Watcher) runOnce() {
	src, err := os.ReadFile(w.path)
	if err != nil {
		w.notify("read %s: %v", w.path, err)
		return
	}

	program, err := runtime.Compile(src)
	if err != nil {
		w.notify("%v", err)
		return
	}

	digest, err := Fingerprint(program)
	if err != nil {
		w.notify("fingerprint: %v", err)
		return
	}
	if w.hasRun && digest == w.lastRun {
		w.notify("no effective change, skipping run")
		return
	}

	w.notify("running %s", filepath.Base(w.path))
	result, err := runtime.ExecuteProgram(program, runtime.ExecutionOptions{
		Debug:     w.config.Debug,
		Telemetry: w.config.Telemetry,
		Stdin:     w.config.Stdin,
		Stdout:    w.config.Stdout,
		Stderr:    w.config.Stderr,
	})
	if err != nil {
		w.notify("run failed: %v", err)
		return
	}

	w.lastRun = digest
	w.hasRun = true
	w.notify("done in %v (%d steps)", result.Duration, result.StepsRun)
}

func (w *Watcher) notify(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w.config.Stderr, "[watch] "+format+"\n", args...)
}
