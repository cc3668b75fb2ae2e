//go:build windows

package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"runtime"

	"langtray/internal/config"
	"langtray/internal/detector"
	"langtray/internal/langid"
	"langtray/internal/locale"
	"langtray/internal/logging"
	"langtray/internal/tray"
	"langtray/internal/winapi"
)

// The hidden window, the keyboard hook and every timer belong to the main
// thread; main must never migrate.
func init() {
	runtime.LockOSThread()
}

func runPlatform(cfg config.Config, logs *logging.Logging) int {
	setConsoleUTF8()
	if err := winapi.Load(); err != nil {
		slog.Error("[app] system libraries unavailable", "error", err)
		return 1
	}

	exePath, err := os.Executable()
	if err != nil {
		slog.Warn("[app] executable path unavailable, icon GUID disabled", "error", err)
		exePath = ""
	}

	var app *App
	raw := winapi.NewRawKeyboard()
	window, err := tray.New(tray.Events{
		HostRecreated:   func() { app.hostRecreated() },
		Shell:           func(ev detector.ShellEvent) { app.handleShell(ev) },
		InputLangChange: func(id langid.ID) { app.handleInputLangChange(id) },
		KeyActivity:     raw.Observe,
		OpenFolder:      func() { app.openIconsFolder() },
		Exit:            func() { app.shutdown() },
	}, exePath)
	if err != nil {
		slog.Error("[app] tray window creation failed", "error", err)
		return 1
	}

	var activity detector.ActivityClock = raw
	if err := raw.Register(window.HWND()); err != nil {
		slog.Warn("[app] raw keyboard input unavailable, hook watchdog falls back to last input time", "error", err)
		activity = winapi.NewLastInputClock()
	}

	app = NewApp(cfg, logs, platform{
		Sources: detector.Sources{
			Query:    winapi.ForegroundQuery{},
			Hook:     winapi.NewKeyboardHook(),
			Shell:    winapi.NewShellHook(window.HWND()),
			Activity: activity,
		},
		Loader:     winapi.NewIconLoader(),
		Locales:    locale.Chain{winapi.SystemLocales{}, locale.Builtin()},
		Area:       window,
		Loop:       window,
		OpenFolder: winapi.OpenFolder,
		Release: func() {
			if err := raw.Unregister(); err != nil {
				slog.Debug("[app] raw input unregister failed", "error", err)
			}
			window.Destroy()
		},
	})
	if err := app.startup(); err != nil {
		slog.Error("[app] startup failed", "error", err)
		app.shutdown()
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		if err := window.Post(app.shutdown); err != nil {
			slog.Debug("[app] interrupt after loop ended", "error", err)
		}
	}()

	code := window.Run()
	app.shutdown()
	stop()
	slog.Info("[app] exited", "code", code)
	return code
}
