// Package config holds the built-in runtime settings. There is no config file:
// every path derives from the executable location or the user profile.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"langtray/internal/debounce"
	"langtray/internal/detector"
	"langtray/internal/userutil"
)

// AppName prefixes per-user object names and the data directory.
const AppName = "LangTray"

const (
	PrimaryIconDirName   = "icons"
	SecondaryIconDirName = "flags"
	logFileName          = "langtray.log"
)

type durationRange struct {
	min, max time.Duration
}

var (
	pollIntervalRange     = durationRange{100 * time.Millisecond, 5 * time.Second}
	debounceDelayRange    = durationRange{10 * time.Millisecond, time.Second}
	watchdogIntervalRange = durationRange{time.Second, time.Minute}
	watchdogGraceRange    = durationRange{100 * time.Millisecond, 10 * time.Second}
	iconWatchDelayRange   = durationRange{50 * time.Millisecond, 5 * time.Second}
)

// test seams
var (
	userCacheDirFn = os.UserCacheDir
	userHomeDirFn  = os.UserHomeDir
)

// DetectionConfig tunes the language change detector.
type DetectionConfig struct {
	Mode              string        `yaml:"mode"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	DebounceDelay     time.Duration `yaml:"debounce_delay"`
	WatchdogInterval  time.Duration `yaml:"watchdog_interval"`
	WatchdogGrace     time.Duration `yaml:"watchdog_grace"`
	// MaxHookReinstalls of 0 means a lost hook is never reinstalled.
	MaxHookReinstalls int           `yaml:"max_hook_reinstalls"`
}

// IconWatchConfig controls reloading when icon files change on disk.
type IconWatchConfig struct {
	Enabled bool          `yaml:"enabled"`
	Delay   time.Duration `yaml:"delay"`
}

// Config is the LangTray runtime configuration.
type Config struct {
	ExeDir    string          `yaml:"exe_dir"`
	IconDirs  []string        `yaml:"icon_dirs"`
	Detection DetectionConfig `yaml:"detection"`
	IconWatch IconWatchConfig `yaml:"icon_watch"`
	LogLevel  string          `yaml:"log_level"`
	LogFile   string          `yaml:"log_file"`
	PipeName  string          `yaml:"pipe_name"`
	MutexName string          `yaml:"mutex_name"`
}

// DefaultConfig returns the built-in settings for an executable in exeDir.
func DefaultConfig(exeDir string) Config {
	return Config{
		ExeDir: exeDir,
		IconDirs: []string{
			filepath.Join(exeDir, PrimaryIconDirName),
			filepath.Join(exeDir, SecondaryIconDirName),
		},
		Detection: DetectionConfig{
			Mode:              string(detector.ModeAuto),
			PollInterval:      detector.DefaultPollInterval,
			DebounceDelay:     debounce.DefaultDelay,
			WatchdogInterval:  detector.DefaultWatchdogInterval,
			WatchdogGrace:     detector.DefaultWatchdogGrace,
			MaxHookReinstalls: detector.DefaultMaxHookReinstalls,
		},
		IconWatch: IconWatchConfig{
			Enabled: true,
			Delay:   250 * time.Millisecond,
		},
		LogLevel:  "info",
		LogFile:   DefaultLogPath(),
		PipeName:  DefaultPipeName(),
		MutexName: DefaultMutexName(),
	}
}

// DefaultPipeName is the per-user control pipe.
func DefaultPipeName() string {
	return `\\.\pipe\` + userutil.ObjectName(AppName)
}

// DefaultMutexName is the per-user single-instance mutex in the session namespace.
func DefaultMutexName() string {
	return `Local\` + userutil.ObjectName(AppName)
}

// DefaultLogPath prefers the user cache directory (%LOCALAPPDATA% on Windows),
// then ~/.cache, then the temp directory.
func DefaultLogPath() string {
	base, err := userCacheDirFn()
	if err != nil || strings.TrimSpace(base) == "" {
		home, homeErr := userHomeDirFn()
		if homeErr != nil {
			slog.Warn("[config] using temp dir for log file", "error", homeErr)
			base = os.TempDir()
		} else {
			base = filepath.Join(home, ".cache")
		}
	}
	return filepath.Join(base, AppName, logFileName)
}

// FromExecutable returns DefaultConfig for the running binary.
func FromExecutable() (Config, error) {
	exe, err := os.Executable()
	if err != nil {
		return Config{}, fmt.Errorf("locate executable: %w", err)
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}
	cfg := DefaultConfig(filepath.Dir(exe))
	cfg.Normalize()
	return cfg, cfg.Validate()
}

// PrimaryIconDir is the folder opened from the menu.
func (c Config) PrimaryIconDir() string {
	if len(c.IconDirs) == 0 {
		return filepath.Join(c.ExeDir, PrimaryIconDirName)
	}
	return c.IconDirs[0]
}

// Level parses LogLevel, defaulting to info.
func (c Config) Level() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo
	}
	return level
}

// Normalize clamps tunables into their supported ranges.
// MUTATES: c is modified in place.
func (c *Config) Normalize() {
	d := &c.Detection
	if d.Mode == "" {
		d.Mode = string(detector.ModeAuto)
	}
	d.Mode = strings.ToLower(strings.TrimSpace(d.Mode))
	d.PollInterval = clamp("detection.poll_interval", d.PollInterval, pollIntervalRange)
	d.DebounceDelay = clamp("detection.debounce_delay", d.DebounceDelay, debounceDelayRange)
	d.WatchdogInterval = clamp("detection.watchdog_interval", d.WatchdogInterval, watchdogIntervalRange)
	d.WatchdogGrace = clamp("detection.watchdog_grace", d.WatchdogGrace, watchdogGraceRange)
	if d.MaxHookReinstalls < 0 {
		d.MaxHookReinstalls = 0
	}
	c.IconWatch.Delay = clamp("icon_watch.delay", c.IconWatch.Delay, iconWatchDelayRange)
}

func clamp(name string, v time.Duration, r durationRange) time.Duration {
	switch {
	case v < r.min:
		slog.Warn("[config] value below minimum, clamped", "field", name, "value", v, "min", r.min)
		return r.min
	case v > r.max:
		slog.Warn("[config] value above maximum, clamped", "field", name, "value", v, "max", r.max)
		return r.max
	default:
		return v
	}
}

// Validate reports settings the program cannot run with.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.ExeDir) == "" {
		errs = append(errs, errors.New("exe_dir is required"))
	}
	if len(c.IconDirs) == 0 {
		errs = append(errs, errors.New("at least one icon directory is required"))
	}
	for _, dir := range c.IconDirs {
		if c.ExeDir != "" && !pathWithinDir(dir, c.ExeDir) {
			errs = append(errs, fmt.Errorf("icon directory %q is outside %q", dir, c.ExeDir))
		}
	}
	if _, err := detector.ParseMode(c.Detection.Mode); err != nil {
		errs = append(errs, err)
	}
	if strings.TrimSpace(c.PipeName) == "" {
		errs = append(errs, errors.New("pipe_name is required"))
	}
	if strings.TrimSpace(c.MutexName) == "" {
		errs = append(errs, errors.New("mutex_name is required"))
	}
	return errors.Join(errs...)
}

// DetectorOptions converts the detection settings.
func (c Config) DetectorOptions() detector.Options {
	mode, err := detector.ParseMode(c.Detection.Mode)
	if err != nil {
		mode = detector.ModeAuto
	}
	return detector.Options{
		Mode:              mode,
		PollInterval:      c.Detection.PollInterval,
		DebounceDelay:     c.Detection.DebounceDelay,
		WatchdogInterval:  c.Detection.WatchdogInterval,
		WatchdogGrace:     c.Detection.WatchdogGrace,
		MaxHookReinstalls: hookReinstalls(c.Detection.MaxHookReinstalls),
	}
}

func hookReinstalls(n int) int {
	if n <= 0 {
		return detector.NoHookReinstall
	}
	return n
}

// String renders the configuration as YAML for the startup log.
func (c Config) String() string {
	out, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Sprintf("%+v", struct {
			ExeDir string
			Mode   string
		}{c.ExeDir, c.Detection.Mode})
	}
	return string(out)
}

// pathWithinDir blocks directory traversal by ensuring path is under dir.
// It also rejects Windows cross-drive escapes because filepath.Rel returns
// an absolute path when roots differ.
func pathWithinDir(path string, dir string) bool {
	relativePath, err := filepath.Rel(filepath.Clean(dir), filepath.Clean(path))
	if err != nil {
		return false
	}
	if relativePath == "." {
		return true
	}
	if relativePath == ".." || strings.HasPrefix(relativePath, ".."+string(os.PathSeparator)) {
		return false
	}
	return !filepath.IsAbs(relativePath)
}
