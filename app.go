package main

import (
	"sync"
	"sync/atomic"

	"langtray/internal/config"
	"langtray/internal/detector"
	"langtray/internal/iconres"
	"langtray/internal/iconwatch"
	"langtray/internal/indicator"
	"langtray/internal/ipc"
	"langtray/internal/langid"
	"langtray/internal/locale"
	"langtray/internal/logging"
	"langtray/internal/loop"
	"langtray/internal/workerutil"
)

// loopHost is the single thread all indicator and detector state lives on.
type loopHost interface {
	loop.Poster
	loop.Scheduler
}

// platform is what the operating system binding hands to the App.
type platform struct {
	Sources    detector.Sources
	Loader     iconres.Loader
	Locales    locale.Lookup
	Area       indicator.StatusArea
	Loop       loopHost
	OpenFolder func(dir string) error
	// Release frees the binding after everything else stopped; it ends the loop.
	Release func()
}

// App wires the detector, the icon resolver and the indicator together.
// Apart from Execute every method runs on the loop thread.
type App struct {
	cfg  config.Config
	logs *logging.Logging
	plat platform

	locales   locale.Lookup
	resolver  *iconres.Resolver
	indicator *indicator.Manager
	detector  *detector.Detector
	watcher   *iconwatch.Watcher
	pipe      *ipc.PipeServer
	workers   *workerutil.Group

	// stopping is closed at the start of shutdown; control requests waiting
	// on the loop give up when it closes.
	stopping     chan struct{}
	shuttingDown atomic.Bool
	shutdownOnce sync.Once
}

// NewApp creates a stopped App.
func NewApp(cfg config.Config, logs *logging.Logging, plat platform) *App {
	locales := plat.Locales
	if locales == nil {
		locales = locale.Builtin()
	}
	return &App{
		cfg:      cfg,
		logs:     logs,
		plat:     plat,
		locales:  locales,
		stopping: make(chan struct{}),
	}
}

// describe names a language for the tooltip.
func (a *App) describe(id langid.ID) string {
	return locale.Describe(a.locales.Lookup(id))
}

func (a *App) handleShell(ev detector.ShellEvent) {
	if a.detector == nil || a.shuttingDown.Load() {
		return
	}
	a.detector.HandleShell(ev)
}

func (a *App) handleInputLangChange(id langid.ID) {
	if a.detector == nil || a.shuttingDown.Load() {
		return
	}
	a.detector.LanguageReported(id)
}

func (a *App) hostRecreated() {
	a.handleShell(detector.ShellSurfaceRecreated)
}
