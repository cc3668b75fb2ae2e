package iconwatch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"langtray/internal/loop"
	"langtray/internal/testutil"
)

func newTestWatcher(t *testing.T) (*Watcher, *testutil.FakeScheduler, *atomic.Int32, string, string) {
	t.Helper()
	root := t.TempDir()
	icons := filepath.Join(root, "icons")
	flags := filepath.Join(root, "flags")
	sched := testutil.NewFakeScheduler()
	calls := &atomic.Int32{}
	w := New(root, []string{icons, flags}, 0, sched, func() { calls.Add(1) })
	return w, sched, calls, icons, flags
}

func TestHandleCoalescesIconEvents(t *testing.T) {
	w, sched, calls, icons, _ := newTestWatcher(t)

	for _, name := range []string{"1033.ico", "ru.ICO", "default.ico"} {
		w.handle(fsnotify.Event{Name: filepath.Join(icons, name), Op: fsnotify.Create})
	}
	if !w.Pending() {
		t.Fatal("Pending() = false after icon events")
	}
	sched.Advance(DefaultDelay - time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("onChange ran %d times before the delay", got)
	}
	sched.Advance(time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("onChange ran %d times, want 1", got)
	}
}

func TestHandleIgnoresIrrelevantEvents(t *testing.T) {
	w, sched, calls, icons, _ := newTestWatcher(t)

	events := []fsnotify.Event{
		{Name: filepath.Join(icons, "readme.txt"), Op: fsnotify.Write},
		{Name: filepath.Join(w.root, "1033.ico"), Op: fsnotify.Create},
		{Name: filepath.Join(icons, "1033.ico"), Op: fsnotify.Chmod},
		{Name: filepath.Join(w.root, "langtray.exe"), Op: fsnotify.Write},
	}
	for _, ev := range events {
		w.handle(ev)
	}
	sched.Advance(time.Second)
	if got := calls.Load(); got != 0 {
		t.Fatalf("onChange ran %d times for irrelevant events", got)
	}
}

func TestHandleIconDirectoryRemoval(t *testing.T) {
	w, sched, calls, _, flags := newTestWatcher(t)

	w.watched[flags] = true
	w.handle(fsnotify.Event{Name: flags, Op: fsnotify.Remove})
	if w.watched[flags] {
		t.Fatal("removed directory still marked as watched")
	}
	sched.Advance(DefaultDelay)
	if got := calls.Load(); got != 1 {
		t.Fatalf("onChange ran %d times, want 1", got)
	}
}

func TestStartFailsForMissingRoot(t *testing.T) {
	w := New(filepath.Join(t.TempDir(), "missing"), nil, 0, testutil.NewFakeScheduler(), func() {})
	if err := w.Start(); err == nil {
		t.Fatal("Start() error = nil for missing root")
	}
}

func TestRunReloadsWhenIconDropped(t *testing.T) {
	root := t.TempDir()
	icons := filepath.Join(root, "icons")

	q := loop.NewQueue(16)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go q.Run(ctx)

	reloaded := make(chan struct{}, 4)
	w := New(root, []string{icons}, 20*time.Millisecond, q, func() { reloaded <- struct{}{} })
	if err := w.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	if err := os.Mkdir(icons, 0o755); err != nil {
		t.Fatal(err)
	}
	waitReload(t, reloaded)

	// The directory was created after Start; writes inside it must be seen too.
	deadline := time.Now().Add(2 * time.Second)
	for {
		testutil.WriteFile(t, icons, "1033.ico", "icon")
		select {
		case <-reloaded:
			cancel()
			<-done
			return
		case <-time.After(100 * time.Millisecond):
		}
		if time.Now().After(deadline) {
			t.Fatal("no reload after writing into the new icon directory")
		}
	}
}

func waitReload(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for reload")
	}
}
