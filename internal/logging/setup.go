package logging

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lmittmann/tint"
	"golang.org/x/term"
)

// RecentSize is the number of warnings kept for status replies.
const RecentSize = 32

// Options configure Setup.
type Options struct {
	Level    slog.Level
	FilePath string   // empty disables the file sink
	Console  *os.File // nil disables the console sink
}

// Logging is the configured logger and its sinks.
type Logging struct {
	Logger *slog.Logger
	Recent *Ring
	file   *os.File
}

// test seam
var isTerminalFn = term.IsTerminal

// Setup builds the logger. A log file that cannot be opened is reported on
// the returned logger and otherwise ignored.
func Setup(opts Options) *Logging {
	l := &Logging{Recent: NewRing(RecentSize, slog.LevelWarn)}
	handlers := []slog.Handler{l.Recent}

	var fileErr error
	if opts.FilePath != "" {
		f, err := openLogFile(opts.FilePath)
		if err != nil {
			fileErr = err
		} else {
			l.file = f
			handlers = append(handlers, slog.NewTextHandler(f, &slog.HandlerOptions{Level: opts.Level}))
		}
	}
	if opts.Console != nil && isTerminalFn(int(opts.Console.Fd())) {
		handlers = append(handlers, NewConsoleHandler(opts.Console, opts.Level, true))
	}

	l.Logger = slog.New(NewFanoutHandler(handlers...))
	if fileErr != nil {
		l.Logger.Warn("[logging] log file unavailable", "path", opts.FilePath, "error", fileErr)
	}
	return l
}

// NewConsoleHandler returns the tint handler used for interactive runs.
func NewConsoleHandler(w io.Writer, level slog.Level, color bool) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.TimeOnly,
		NoColor:    !color,
	})
}

// openLogFile truncates the previous run's log.
func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
}

// Close flushes and closes the log file. It is idempotent.
func (l *Logging) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}
