// Package iconwatch reloads the indicator when icon files change on disk.
package iconwatch

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"langtray/internal/debounce"
	"langtray/internal/loop"
)

// DefaultDelay coalesces the burst of events produced by copying an icon pack.
const DefaultDelay = 250 * time.Millisecond

// Watcher observes the executable directory and the icon directories and
// calls onChange once per burst of relevant events.
type Watcher struct {
	root  string
	dirs  []string
	delay time.Duration

	debouncer *debounce.Debouncer
	fsw       *fsnotify.Watcher
	watched   map[string]bool
}

// New returns a watcher. onChange runs through sched, so with a loop
// scheduler it executes on the loop thread.
func New(root string, dirs []string, delay time.Duration, sched loop.Scheduler, onChange func()) *Watcher {
	if delay <= 0 {
		delay = DefaultDelay
	}
	clean := make([]string, 0, len(dirs))
	for _, dir := range dirs {
		clean = append(clean, filepath.Clean(dir))
	}
	return &Watcher{
		root:      filepath.Clean(root),
		dirs:      clean,
		delay:     delay,
		debouncer: debounce.New(sched, onChange),
		watched:   make(map[string]bool),
	}
}

// Start creates the OS watch. The root must exist; missing icon directories
// are picked up when they are created.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create icon watcher: %w", err)
	}
	if err := fsw.Add(w.root); err != nil {
		fsw.Close()
		return fmt.Errorf("watch %s: %w", w.root, err)
	}
	w.fsw = fsw
	w.watched[w.root] = true
	for _, dir := range w.dirs {
		w.addDir(dir)
	}
	return nil
}

// Run forwards events until ctx ends, then closes the OS watch.
func (w *Watcher) Run(ctx context.Context) {
	if w.fsw == nil {
		return
	}
	defer func() {
		w.debouncer.Cancel()
		if err := w.fsw.Close(); err != nil {
			slog.Debug("[iconwatch] close failed", "error", err)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Warn("[iconwatch] watch error", "error", err)
		}
	}
}

// Pending reports whether a reload is scheduled.
func (w *Watcher) Pending() bool {
	return w.debouncer.Armed()
}

func (w *Watcher) handle(ev fsnotify.Event) {
	name := filepath.Clean(ev.Name)
	if dir, ok := w.iconDir(name); ok {
		switch {
		case ev.Has(fsnotify.Create):
			w.addDir(dir)
		case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
			delete(w.watched, dir)
		}
		w.schedule(ev)
		return
	}
	if w.relevantFile(name) && !ev.Has(fsnotify.Chmod) {
		w.schedule(ev)
	}
}

func (w *Watcher) schedule(ev fsnotify.Event) {
	if w.debouncer.Arm(w.delay) {
		slog.Debug("[iconwatch] icon change detected", "path", ev.Name, "op", ev.Op.String())
	}
}

func (w *Watcher) addDir(dir string) {
	if w.watched[dir] {
		return
	}
	info, err := os.Stat(dir)
	if err != nil || !info.IsDir() {
		return
	}
	if err := w.fsw.Add(dir); err != nil {
		slog.Warn("[iconwatch] cannot watch icon directory", "dir", dir, "error", err)
		return
	}
	w.watched[dir] = true
}

func (w *Watcher) iconDir(path string) (string, bool) {
	for _, dir := range w.dirs {
		if samePath(path, dir) {
			return dir, true
		}
	}
	return "", false
}

// relevantFile reports whether path is an .ico file directly inside an icon directory.
func (w *Watcher) relevantFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".ico") {
		return false
	}
	_, ok := w.iconDir(filepath.Dir(path))
	return ok
}

func samePath(a, b string) bool {
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}
