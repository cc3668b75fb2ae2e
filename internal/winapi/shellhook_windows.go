//go:build windows

package winapi

import "errors"

// ShellHook subscribes a window to SHELLHOOK notifications.
type ShellHook struct {
	hwnd       uintptr
	subscribed bool
}

// NewShellHook binds the subscription to hwnd.
func NewShellHook(hwnd uintptr) *ShellHook {
	return &ShellHook{hwnd: hwnd}
}

// Subscribe implements detector.ShellSource.
func (s *ShellHook) Subscribe() error {
	if s.hwnd == 0 {
		return errors.New("shell hook requires a window")
	}
	if s.subscribed {
		return nil
	}
	r, _, err := procRegisterShellHookWindow.Call(s.hwnd)
	if r == 0 {
		return callErr("RegisterShellHookWindow", err)
	}
	s.subscribed = true
	return nil
}

// Unsubscribe implements detector.ShellSource.
func (s *ShellHook) Unsubscribe() error {
	if !s.subscribed {
		return nil
	}
	s.subscribed = false
	r, _, err := procDeregisterShellHookWindow.Call(s.hwnd)
	if r == 0 {
		return callErr("DeregisterShellHookWindow", err)
	}
	return nil
}
