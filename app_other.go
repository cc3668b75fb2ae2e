//go:build !windows

package main

import (
	"log/slog"

	"langtray/internal/config"
	"langtray/internal/logging"
	"langtray/internal/tray"
)

func runPlatform(config.Config, *logging.Logging) int {
	slog.Error("[app] the notification area is only available on Windows", "error", tray.ErrUnsupported)
	return 1
}
