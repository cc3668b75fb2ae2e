package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"time"

	"langtray/internal/config"
	"langtray/internal/ipc"
	"langtray/internal/logging"
	"langtray/internal/singleinstance"
)

const signalTimeout = 3 * time.Second

func main() {
	os.Exit(run())
}

func run() int {
	cfg, cfgErr := config.FromExecutable()
	logs := logging.Setup(logging.Options{
		Level:    cfg.Level(),
		FilePath: cfg.LogFile,
		Console:  os.Stderr,
	})
	defer logs.Close()
	slog.SetDefault(logs.Logger)

	if cfgErr != nil {
		slog.Error("[app] configuration rejected", "error", cfgErr)
		return 1
	}

	// Single-instance check before any window or hook exists, so a second
	// launch never shows a second icon.
	lock, err := singleinstance.TryLock(cfg.MutexName)
	if errors.Is(err, singleinstance.ErrAlreadyRunning) {
		slog.Info("[app] another instance is already running, asking it to refresh")
		return signalRunningInstance(cfg.PipeName)
	}
	if err != nil {
		slog.Warn("[app] mutex creation failed, proceeding without single-instance guard", "error", err)
	}
	if lock != nil {
		defer func() {
			if releaseErr := lock.Release(); releaseErr != nil {
				slog.Warn("[app] mutex release failed", "error", releaseErr)
			}
		}()
	}

	slog.Info("[app] starting", "config", cfg.String())
	return runPlatform(cfg, logs)
}

// signalRunningInstance sends refresh to the running instance and logs its status.
func signalRunningInstance(pipeName string) int {
	ctx, cancel := context.WithTimeout(context.Background(), signalTimeout)
	defer cancel()

	resp, err := ipc.Send(ctx, pipeName, ipc.Request{Command: ipc.CommandRefresh})
	if err != nil {
		slog.Warn("[app] failed to signal running instance", "pipe", pipeName, "error", err)
		return 1
	}
	if !resp.OK {
		slog.Warn("[app] running instance rejected refresh", "error", resp.Error)
		return 1
	}
	if resp.Status != nil {
		slog.Info("[app] running instance refreshed",
			"lang", resp.Status.LanguageHex,
			"icon", resp.Status.IconSource,
			"tooltip", resp.Status.Tooltip,
			"strategies", resp.Status.Strategies,
		)
	}
	return 0
}
