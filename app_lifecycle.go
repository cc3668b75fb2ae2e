package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"langtray/internal/detector"
	"langtray/internal/iconres"
	"langtray/internal/iconwatch"
	"langtray/internal/indicator"
	"langtray/internal/ipc"
	"langtray/internal/workerutil"
)

// test seams
var (
	newPipeServerFn = ipc.NewPipeServer
	statFn          = os.Stat
)

// startup builds the core and shows the initial icon. Only a missing query
// binding is fatal; every other failure degrades.
func (a *App) startup() error {
	if a.plat.Loop == nil || a.plat.Area == nil || a.plat.Loader == nil {
		return errors.New("platform binding is incomplete")
	}

	a.resolver = iconres.NewResolver(a.cfg.IconDirs, a.plat.Loader, a.locales)
	a.indicator = indicator.New(a.plat.Area, a.resolver, a.describe)
	a.detector = detector.New(a.plat.Sources, a.indicator, a.plat.Loop, a.cfg.DetectorOptions())

	if err := a.indicator.Publish(); err != nil {
		// The taskbar may not exist yet; TaskbarCreated publishes later.
		slog.Warn("[app] initial icon publish failed", "error", err)
	}
	if err := a.detector.Start(); err != nil {
		a.indicator.Close()
		return fmt.Errorf("start detector: %w", err)
	}
	slog.Info("[app] detector running", "strategies", a.detector.Active())

	a.workers = workerutil.NewGroup(context.Background(), workerutil.RecoveryOptions{
		IsShutdown: a.shuttingDown.Load,
		OnFatal: func(worker string, maxRetries int) {
			slog.Error("[app] background worker stopped permanently", "worker", worker, "maxRetries", maxRetries)
		},
	})
	a.startIconWatch()
	a.startControlPipe()
	return nil
}

func (a *App) startIconWatch() {
	if !a.cfg.IconWatch.Enabled {
		return
	}
	a.watcher = iconwatch.New(a.cfg.ExeDir, a.cfg.IconDirs, a.cfg.IconWatch.Delay, a.plat.Loop, a.refreshIcons)
	if err := a.watcher.Start(); err != nil {
		slog.Warn("[app] icon directory watch unavailable", "error", err)
		a.watcher = nil
		return
	}
	a.workers.Go("icon-watch", a.watcher.Run)
}

func (a *App) startControlPipe() {
	if a.cfg.PipeName == "" {
		return
	}
	a.pipe = newPipeServerFn(a.cfg.PipeName, a)
	if err := a.pipe.Start(); err != nil {
		slog.Warn("[app] control pipe unavailable", "error", err)
		a.pipe = nil
		return
	}
	slog.Info("[app] control pipe listening", "pipe", a.pipe.PipeName())
	pipe := a.pipe
	a.workers.Go("control-pipe", func(ctx context.Context) {
		<-ctx.Done()
		if err := pipe.Stop(); err != nil {
			slog.Warn("[app] control pipe stop failed", "error", err)
		}
	})
}

// refreshIcons re-resolves the current language after icon files changed.
func (a *App) refreshIcons() {
	if a.shuttingDown.Load() {
		return
	}
	if a.indicator.Refresh() {
		slog.Info("[app] icons reloaded", "source", a.indicator.Snapshot().Source)
	}
}

// openIconsFolder opens the primary icon directory, or the executable
// directory when it does not exist.
func (a *App) openIconsFolder() {
	dir := a.cfg.PrimaryIconDir()
	if info, err := statFn(dir); err != nil || !info.IsDir() {
		dir = a.cfg.ExeDir
	}
	if a.plat.OpenFolder == nil {
		return
	}
	if err := a.plat.OpenFolder(dir); err != nil {
		slog.Warn("[app] failed to open icon folder", "dir", dir, "error", err)
	}
}

// shutdown stops the hook and timers, withdraws and releases the icon,
// stops background workers and finally releases the platform. Idempotent.
func (a *App) shutdown() {
	a.shutdownOnce.Do(func() {
		a.shuttingDown.Store(true)
		close(a.stopping)
		slog.Info("[app] shutting down")

		if a.detector != nil {
			a.detector.Stop()
		}
		if a.indicator != nil {
			a.indicator.Close()
		}
		if a.workers != nil {
			a.workers.Stop()
		}
		if a.plat.Release != nil {
			a.plat.Release()
		}
	})
}

var _ detector.Updater = (*indicator.Manager)(nil)
