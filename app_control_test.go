package main

import (
	"log/slog"
	"reflect"
	"strings"
	"testing"

	"langtray/internal/ipc"
	"langtray/internal/logging"
	"langtray/internal/testutil"
)

func TestExecuteStatus(t *testing.T) {
	env := newTestEnv(t)
	testutil.WriteFile(t, env.icons, "1033.ico", "icon")
	ring := logging.NewRing(4, slog.LevelWarn)
	env.app.logs = &logging.Logging{Recent: ring}
	if err := env.app.startup(); err != nil {
		t.Fatalf("startup() error = %v", err)
	}
	slog.New(ring).Warn("icon pack incomplete", "missing", 2)

	resp := env.app.Execute(ipc.Request{Command: ipc.CommandStatus})
	if !resp.OK || resp.Status == nil {
		t.Fatalf("Execute(status) = %+v", resp)
	}
	st := resp.Status
	if st.Language != 0x0409 || st.LanguageHex != "0409" {
		t.Fatalf("status language = %d/%q", st.Language, st.LanguageHex)
	}
	if !strings.HasSuffix(st.IconSource, "1033.ico") || st.Tooltip != "English (United States)" || !st.Published {
		t.Fatalf("status = %+v", st)
	}
	if len(st.Strategies) != 1 || st.Strategies[0] != "hook" {
		t.Fatalf("status strategies = %v", st.Strategies)
	}
	if !reflect.DeepEqual(st.IconDirs, env.cfg.IconDirs) {
		t.Fatalf("status icon dirs = %v, want %v", st.IconDirs, env.cfg.IconDirs)
	}
	if len(st.Candidates) == 0 || st.Candidates[0] != "1033.ico" || st.Candidates[len(st.Candidates)-1] != "default.ico" {
		t.Fatalf("status candidates = %v", st.Candidates)
	}
	entries := ring.Entries()
	if len(st.Recent) != 1 || len(entries) != 1 || st.Recent[0] != entries[0].String() {
		t.Fatalf("status recent = %v, ring = %v", st.Recent, entries)
	}
	if !strings.HasSuffix(st.Recent[0], "WARN icon pack incomplete missing=2") {
		t.Fatalf("status recent = %q", st.Recent[0])
	}
}

func TestExecuteRefreshRepublishes(t *testing.T) {
	env := newTestEnv(t)
	if err := env.app.startup(); err != nil {
		t.Fatalf("startup() error = %v", err)
	}
	adds := env.log.count("area.add:")

	env.lang = 0x0419
	resp := env.app.Execute(ipc.Request{Command: ipc.CommandRefresh})
	if !resp.OK {
		t.Fatalf("Execute(refresh) = %+v", resp)
	}
	if got := env.log.count("area.add:"); got != adds+1 {
		t.Fatalf("adds after refresh = %d, want %d", got, adds+1)
	}
	if resp.Status == nil || resp.Status.Language != 0x0419 {
		t.Fatalf("refresh status = %+v, want re-checked language 0x0419", resp.Status)
	}
}

func TestExecuteRejects(t *testing.T) {
	env := newTestEnv(t)
	if err := env.app.startup(); err != nil {
		t.Fatalf("startup() error = %v", err)
	}

	resp := env.app.Execute(ipc.Request{Command: "dance"})
	if resp.OK || !strings.Contains(resp.Error, "unknown command") {
		t.Fatalf("Execute(dance) = %+v", resp)
	}

	env.app.shutdown()
	resp = env.app.Execute(ipc.Request{Command: ipc.CommandStatus})
	if resp.OK || resp.Error != errShuttingDown.Error() {
		t.Fatalf("Execute after shutdown = %+v", resp)
	}
}

func TestCallOnLoopReportsClosedLoop(t *testing.T) {
	env := newTestEnv(t)
	env.loop.closed = true
	if err := env.app.callOnLoop(func() {}); err == nil {
		t.Fatal("callOnLoop() on closed loop error = nil")
	}
}
