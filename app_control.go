package main

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"langtray/internal/ipc"
)

const controlCallTimeout = 2 * time.Second

var errShuttingDown = errors.New("shutting down")

// Execute implements ipc.CommandExecutor. It runs on a pipe goroutine and
// hands the work to the loop thread.
func (a *App) Execute(req ipc.Request) ipc.Response {
	if a.shuttingDown.Load() {
		return ipc.ErrorResponse(errShuttingDown.Error())
	}

	var status ipc.Status
	var run func()
	switch req.Command {
	case ipc.CommandRefresh:
		run = func() {
			a.refreshFromControl()
			status = a.status()
		}
	case ipc.CommandStatus:
		run = func() { status = a.status() }
	default:
		return ipc.ErrorResponse(fmt.Sprintf("unknown command %q", req.Command))
	}

	if err := a.callOnLoop(run); err != nil {
		return ipc.ErrorResponse(err.Error())
	}
	return ipc.Response{OK: true, Status: &status}
}

// refreshFromControl re-publishes the icon, reloads icon files and re-checks
// the foreground language.
func (a *App) refreshFromControl() {
	if a.shuttingDown.Load() {
		return
	}
	slog.Info("[app] refresh requested over control pipe")
	if err := a.indicator.Publish(); err != nil {
		slog.Warn("[app] re-publish failed", "error", err)
	}
	a.indicator.Refresh()
	a.detector.Recheck()
}

func (a *App) status() ipc.Status {
	snap := a.indicator.Snapshot()
	st := ipc.Status{
		Language:    uint16(snap.Language),
		LanguageHex: snap.Language.Hex4(),
		Tooltip:     snap.Tooltip,
		IconSource:  snap.Source,
		Published:   snap.Published,
	}
	if snap.Language.IsUnknown() {
		st.LanguageHex = ""
	}
	for _, s := range a.detector.Active() {
		st.Strategies = append(st.Strategies, string(s))
	}
	st.IconDirs = a.resolver.Dirs()
	if !snap.Language.IsUnknown() {
		st.Candidates = a.resolver.Candidates(snap.Language)
	}
	if a.logs != nil && a.logs.Recent != nil {
		for _, e := range a.logs.Recent.Entries() {
			st.Recent = append(st.Recent, e.String())
		}
	}
	return st
}

// callOnLoop runs fn on the loop thread and waits for it.
func (a *App) callOnLoop(fn func()) error {
	done := make(chan struct{})
	if err := a.plat.Loop.Post(func() {
		defer close(done)
		fn()
	}); err != nil {
		return fmt.Errorf("post to loop: %w", err)
	}

	timer := time.NewTimer(controlCallTimeout)
	defer timer.Stop()
	select {
	case <-done:
		return nil
	case <-a.stopping:
		return errShuttingDown
	case <-timer.C:
		return errors.New("loop did not respond")
	}
}
