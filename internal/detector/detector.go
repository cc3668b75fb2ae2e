// Package detector notices keyboard layout changes in the foreground
// application using polling, a global key observer and shell notifications,
// and degrades to polling whenever an event source is unavailable.
//
// All methods must be called from the loop that owns the Scheduler.
package detector

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"langtray/internal/debounce"
	"langtray/internal/langid"
	"langtray/internal/loop"
)

// Mode selects which strategies the detector starts with.
type Mode string

const (
	ModeAuto    Mode = "auto"
	ModePolling Mode = "polling"
	ModeHook    Mode = "hook"
	ModeNotify  Mode = "notify"
)

// ParseMode validates a mode name. Empty means auto.
func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return ModeAuto, nil
	case ModeAuto, ModePolling, ModeHook, ModeNotify:
		return m, nil
	default:
		return "", fmt.Errorf("unknown detection mode %q", s)
	}
}

// Strategy names one running detection mechanism.
type Strategy string

const (
	StrategyPolling Strategy = "polling"
	StrategyHook    Strategy = "hook"
	StrategyNotify  Strategy = "notify"
)

// ShellEvent is a notification delivered by the shell.
type ShellEvent int

const (
	// ShellActivated fires when another top-level window takes the foreground.
	ShellActivated ShellEvent = iota + 1
	// ShellLanguage fires when the shell reports an input language change.
	ShellLanguage
	// ShellSurfaceRecreated fires when the notification area host restarts.
	ShellSurfaceRecreated
)

func (e ShellEvent) String() string {
	switch e {
	case ShellActivated:
		return "activated"
	case ShellLanguage:
		return "language"
	case ShellSurfaceRecreated:
		return "surface-recreated"
	default:
		return fmt.Sprintf("shell(%d)", int(e))
	}
}

// Query reads the input language of the foreground window.
type Query interface {
	// ForegroundLanguage returns ok=false when there is no foreground window or owning thread.
	ForegroundLanguage() (langid.ID, bool)
}

// QueryFunc adapts a function to Query.
type QueryFunc func() (langid.ID, bool)

// ForegroundLanguage implements Query.
func (f QueryFunc) ForegroundLanguage() (langid.ID, bool) { return f() }

// KeyHook installs a global key observer. The binding must call handler for a
// key-down before forwarding the event and for a key-up after forwarding it.
type KeyHook interface {
	Install(handler func(KeyEvent)) error
	Uninstall() error
}

// ShellSource subscribes the process to shell notifications. Events are fed
// back through Detector.HandleShell.
type ShellSource interface {
	Subscribe() error
	Unsubscribe() error
}

// ActivityClock reports the time of the most recent keyboard input seen by the
// system through a channel the platform cannot silently drop.
type ActivityClock interface {
	LastKeyInput() (time.Time, bool)
}

// Updater receives confirmed languages.
type Updater interface {
	UpdateIfChanged(id langid.ID) bool
	Publish() error
}

// Sources are the platform bindings. Only Query is required.
type Sources struct {
	Query    Query
	Hook     KeyHook
	Shell    ShellSource
	Activity ActivityClock
}

// Options tune the detector. Zero values take the defaults.
type Options struct {
	Mode              Mode
	PollInterval      time.Duration
	DebounceDelay     time.Duration
	WatchdogInterval  time.Duration
	WatchdogGrace     time.Duration
	MaxHookReinstalls int
}

const (
	DefaultPollInterval      = 500 * time.Millisecond
	DefaultWatchdogInterval  = 5 * time.Second
	DefaultWatchdogGrace     = time.Second
	DefaultMaxHookReinstalls = 3

	// NoHookReinstall disables reinstalling a lost hook.
	NoHookReinstall = -1
)

func (o Options) withDefaults() Options {
	if o.Mode == "" {
		o.Mode = ModeAuto
	}
	if o.PollInterval <= 0 {
		o.PollInterval = DefaultPollInterval
	}
	if o.DebounceDelay <= 0 {
		o.DebounceDelay = debounce.DefaultDelay
	}
	if o.WatchdogInterval <= 0 {
		o.WatchdogInterval = DefaultWatchdogInterval
	}
	if o.WatchdogGrace <= 0 {
		o.WatchdogGrace = DefaultWatchdogGrace
	}
	switch {
	case o.MaxHookReinstalls < 0:
		o.MaxHookReinstalls = 0
	case o.MaxHookReinstalls == 0:
		o.MaxHookReinstalls = DefaultMaxHookReinstalls
	}
	return o
}

// Detector turns low-level signals into re-checks of the foreground language.
type Detector struct {
	src     Sources
	updater Updater
	sched   loop.Scheduler
	opts    Options
	now     func() time.Time

	debouncer *debounce.Debouncer
	mods      Modifiers

	started      bool
	hookActive   bool
	notifyActive bool
	pollTimer    loop.Timer
	watchTimer   loop.Timer

	lastHookEvent time.Time
	reinstalls    int
}

// New builds a stopped detector.
func New(src Sources, updater Updater, sched loop.Scheduler, opts Options) *Detector {
	d := &Detector{
		src:     src,
		updater: updater,
		sched:   sched,
		opts:    opts.withDefaults(),
		now:     time.Now,
	}
	d.debouncer = debounce.New(sched, d.Recheck)
	return d
}

// Start brings up the strategies for the configured mode and performs the
// initial re-check. Missing or failing event sources fall back to polling.
func (d *Detector) Start() error {
	if d.src.Query == nil {
		return errors.New("detector: foreground query is required")
	}
	if d.updater == nil {
		return errors.New("detector: updater is required")
	}
	if d.started {
		return nil
	}
	d.started = true

	mode := d.opts.Mode
	if mode == ModeAuto || mode == ModeNotify {
		d.startNotify()
	}
	if mode == ModeAuto || mode == ModeHook {
		d.startHook()
	}

	needPolling := mode == ModePolling ||
		(mode == ModeHook && !d.hookActive) ||
		(mode == ModeNotify && !d.notifyActive) ||
		(mode == ModeAuto && !d.hookActive)
	if needPolling {
		d.startPolling()
	}

	slog.Info("[detector] started", "mode", string(mode), "strategies", d.Active())
	d.Recheck()
	return nil
}

func (d *Detector) startNotify() {
	if d.src.Shell == nil {
		slog.Warn("[detector] shell notifications unavailable")
		return
	}
	if err := d.src.Shell.Subscribe(); err != nil {
		slog.Warn("[detector] shell notification subscribe failed", "error", err)
		return
	}
	d.notifyActive = true
}

func (d *Detector) startHook() bool {
	if d.src.Hook == nil {
		slog.Warn("[detector] key hook unavailable")
		return false
	}
	if err := d.src.Hook.Install(d.HandleKey); err != nil {
		slog.Warn("[detector] key hook install failed, polling instead", "error", err)
		return false
	}
	d.hookActive = true
	d.lastHookEvent = d.now()
	d.mods = Modifiers{}
	d.scheduleWatchdog()
	return true
}

func (d *Detector) startPolling() {
	if d.pollTimer != nil {
		return
	}
	slog.Debug("[detector] polling enabled", "interval", d.opts.PollInterval)
	d.pollTimer = d.sched.AfterFunc(d.opts.PollInterval, d.pollTick)
}

func (d *Detector) stopPolling() {
	if d.pollTimer == nil {
		return
	}
	d.pollTimer.Stop()
	d.pollTimer = nil
	slog.Debug("[detector] polling disabled")
}

func (d *Detector) pollTick() {
	if !d.started || d.pollTimer == nil {
		return
	}
	d.Recheck()
	d.pollTimer = d.sched.AfterFunc(d.opts.PollInterval, d.pollTick)
}

func (d *Detector) scheduleWatchdog() {
	if d.src.Activity == nil || d.watchTimer != nil {
		return
	}
	d.watchTimer = d.sched.AfterFunc(d.opts.WatchdogInterval, d.watchdogTick)
}

func (d *Detector) watchdogTick() {
	d.watchTimer = nil
	if !d.started || !d.hookActive {
		return
	}
	last, ok := d.src.Activity.LastKeyInput()
	if ok && last.After(d.lastHookEvent.Add(d.opts.WatchdogGrace)) {
		d.hookLost(last)
		return
	}
	d.scheduleWatchdog()
}

// hookLost runs when keyboard input reached the system but not the hook.
func (d *Detector) hookLost(lastInput time.Time) {
	slog.Warn("[detector] key hook stopped receiving events",
		"lastInput", lastInput, "lastHookEvent", d.lastHookEvent)
	if err := d.src.Hook.Uninstall(); err != nil {
		slog.Debug("[detector] stale hook uninstall failed", "error", err)
	}
	d.hookActive = false
	d.debouncer.Cancel()
	d.startPolling()

	if d.reinstalls >= d.opts.MaxHookReinstalls {
		slog.Warn("[detector] key hook reinstall limit reached, staying on polling",
			"reinstalls", d.reinstalls)
		return
	}
	d.reinstalls++
	if d.startHook() {
		slog.Info("[detector] key hook reinstalled", "attempt", d.reinstalls)
		if d.opts.Mode != ModePolling {
			d.stopPolling()
		}
	}
	d.Recheck()
}

// Stop tears down in order: key hook, pending debounce timer, polling and
// watchdog timers, shell subscription. It is idempotent.
func (d *Detector) Stop() {
	if !d.started {
		return
	}
	d.started = false

	if d.hookActive {
		if err := d.src.Hook.Uninstall(); err != nil {
			slog.Warn("[detector] key hook uninstall failed", "error", err)
		}
		d.hookActive = false
	}
	d.debouncer.Cancel()
	d.stopPolling()
	if d.watchTimer != nil {
		d.watchTimer.Stop()
		d.watchTimer = nil
	}
	if d.notifyActive {
		if err := d.src.Shell.Unsubscribe(); err != nil {
			slog.Warn("[detector] shell notification unsubscribe failed", "error", err)
		}
		d.notifyActive = false
	}
	slog.Info("[detector] stopped")
}

// Recheck reads the foreground language and forwards it when known.
func (d *Detector) Recheck() {
	id, ok := d.src.Query.ForegroundLanguage()
	if !ok || id.IsUnknown() {
		return
	}
	d.updater.UpdateIfChanged(id)
}

// HandleKey is the key observer callback. It only updates modifier state and
// arms the debouncer, so it returns promptly.
func (d *Detector) HandleKey(ev KeyEvent) {
	d.lastHookEvent = d.now()
	var trigger bool
	d.mods, trigger = Step(d.mods, ev)
	if trigger {
		d.debouncer.Arm(d.opts.DebounceDelay)
	}
}

// HandleShell reacts to a shell notification.
func (d *Detector) HandleShell(ev ShellEvent) {
	switch ev {
	case ShellActivated, ShellLanguage:
		d.Recheck()
	case ShellSurfaceRecreated:
		if err := d.updater.Publish(); err != nil {
			slog.Warn("[detector] re-publish after host restart failed", "error", err)
		}
	default:
		slog.Debug("[detector] ignoring shell event", "event", ev.String())
	}
}

// LanguageReported applies a language delivered directly with an input
// language change message.
func (d *Detector) LanguageReported(id langid.ID) {
	if id.IsUnknown() {
		return
	}
	d.updater.UpdateIfChanged(id)
}

// Active lists the running strategies.
func (d *Detector) Active() []Strategy {
	var out []Strategy
	if d.notifyActive {
		out = append(out, StrategyNotify)
	}
	if d.hookActive {
		out = append(out, StrategyHook)
	}
	if d.pollTimer != nil {
		out = append(out, StrategyPolling)
	}
	return out
}

// Modifiers returns the tracked modifier state.
func (d *Detector) Modifiers() Modifiers {
	return d.mods
}

// Pending reports whether a debounced re-check is outstanding.
func (d *Detector) Pending() bool {
	return d.debouncer.Armed()
}
