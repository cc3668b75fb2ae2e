// Package winapi binds the detector and icon resolver to Win32: foreground
// window language, the low-level keyboard hook, shell hook notifications,
// raw keyboard activity, icon files and the system locale database.
package winapi

import (
	"errors"

	"langtray/internal/detector"
)

// ErrUnsupported is returned by every binding on non-Windows platforms.
var ErrUnsupported = errors.New("winapi: not supported on this platform")

// Shell hook codes delivered with the SHELLHOOK message.
const (
	hshellWindowActivated  = 4
	hshellLanguage         = 8
	hshellRudeAppActivated = 0x8004
)

// ClassifyShellCode maps a SHELLHOOK wParam to a detector event.
func ClassifyShellCode(code uintptr) (detector.ShellEvent, bool) {
	switch code {
	case hshellWindowActivated, hshellRudeAppActivated:
		return detector.ShellActivated, true
	case hshellLanguage:
		return detector.ShellLanguage, true
	}
	return 0, false
}

// Keyboard message identifiers passed to a low-level keyboard hook.
const (
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
)

// KeyEventFromMessage converts a hook message and virtual key into a key
// event. ok is false for messages that are not key transitions.
func KeyEventFromMessage(msg uintptr, vk uint32) (ev detector.KeyEvent, ok bool) {
	switch msg {
	case wmKeyDown, wmSysKeyDown:
		return detector.KeyEvent{Key: detector.KeyFromVK(vk), Down: true}, true
	case wmKeyUp, wmSysKeyUp:
		return detector.KeyEvent{Key: detector.KeyFromVK(vk)}, true
	default:
		return detector.KeyEvent{}, false
	}
}
