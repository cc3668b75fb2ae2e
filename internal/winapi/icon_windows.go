//go:build windows

package winapi

import (
	"fmt"
	"log/slog"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"langtray/internal/iconres"
)

const (
	imageIcon      = 1
	lrDefaultSize  = 0x00000040
	lrLoadFromFile = 0x00000010
	idiApplication = 32512

	iconResourceVersion = 0x00030000
	fallbackIconSize    = 32
)

// IconLoader loads .ico files with LoadImageW.
type IconLoader struct {
	builtinOnce sync.Once
	builtin     *iconres.Icon
}

// NewIconLoader returns a loader backed by user32.
func NewIconLoader() *IconLoader {
	return &IconLoader{}
}

// Load implements iconres.Loader.
func (l *IconLoader) Load(path string) (*iconres.Icon, error) {
	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return nil, fmt.Errorf("icon path %q: %w", path, err)
	}
	h, _, callE := procLoadImageW.Call(0, uintptrOf(p), imageIcon, 0, 0, lrLoadFromFile|lrDefaultSize)
	if h == 0 {
		return nil, callErr("LoadImageW", callE)
	}
	return iconres.NewIcon(h, path, func() {
		procDestroyIcon.Call(h)
	}), nil
}

// Fallback implements iconres.Loader. It builds the drawn fallback icon once
// and lives for the process; the stock application icon is used if that fails.
func (l *IconLoader) Fallback() *iconres.Icon {
	l.builtinOnce.Do(func() {
		h, err := createFallbackIcon()
		if err != nil {
			slog.Warn("[iconres] drawn fallback icon unavailable, using application icon", "error", err)
			h, _, _ = procLoadIconW.Call(0, idiApplication)
		}
		l.builtin = iconres.NewBuiltinIcon(h)
	})
	return l.builtin
}

func createFallbackIcon() (uintptr, error) {
	data, err := iconres.EncodeFallback(fallbackIconSize)
	if err != nil {
		return 0, err
	}
	entries, err := iconres.ParseICO(data)
	if err != nil {
		return 0, err
	}
	bits := entries[0].Image(data)
	h, _, callE := procCreateIconFromResourceEx.Call(
		uintptr(unsafe.Pointer(&bits[0])), uintptr(len(bits)), 1, iconResourceVersion, 0, 0, 0)
	if h == 0 {
		return 0, callErr("CreateIconFromResourceEx", callE)
	}
	return h, nil
}
