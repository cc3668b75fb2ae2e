//go:build windows

package winapi

import (
	"errors"
	"fmt"
	"syscall"

	"golang.org/x/sys/windows"
)

var (
	user32   = windows.NewLazySystemDLL("user32.dll")
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetForegroundWindow       = user32.NewProc("GetForegroundWindow")
	procGetWindowThreadProcessID  = user32.NewProc("GetWindowThreadProcessId")
	procGetKeyboardLayout         = user32.NewProc("GetKeyboardLayout")
	procSetWindowsHookExW         = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx       = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx            = user32.NewProc("CallNextHookEx")
	procRegisterShellHookWindow   = user32.NewProc("RegisterShellHookWindow")
	procDeregisterShellHookWindow = user32.NewProc("DeregisterShellHookWindow")
	procRegisterWindowMessageW    = user32.NewProc("RegisterWindowMessageW")
	procRegisterRawInputDevices   = user32.NewProc("RegisterRawInputDevices")
	procLoadImageW                = user32.NewProc("LoadImageW")
	procLoadIconW                 = user32.NewProc("LoadIconW")
	procDestroyIcon               = user32.NewProc("DestroyIcon")
	procCreateIconFromResourceEx  = user32.NewProc("CreateIconFromResourceEx")
	procGetLastInputInfo          = user32.NewProc("GetLastInputInfo")
	procGetLocaleInfoW            = kernel32.NewProc("GetLocaleInfoW")
	procGetTickCount              = kernel32.NewProc("GetTickCount")
	procGetModuleHandleW          = kernel32.NewProc("GetModuleHandleW")
)

// Load checks that the system DLLs resolve so later calls cannot panic.
func Load() error {
	if err := user32.Load(); err != nil {
		return fmt.Errorf("user32.dll is unavailable: %w", err)
	}
	if err := kernel32.Load(); err != nil {
		return fmt.Errorf("kernel32.dll is unavailable: %w", err)
	}
	return nil
}

// callErr turns the error returned by LazyProc.Call after a failed call into a
// usable error; Call returns Errno(0) when the API did not set a last error.
func callErr(name string, err error) error {
	var errno syscall.Errno
	if errors.As(err, &errno) && errno != 0 {
		return fmt.Errorf("%s: %w", name, errno)
	}
	return fmt.Errorf("%s failed", name)
}

// RegisterWindowMessage returns the system-wide message id for name.
func RegisterWindowMessage(name string) (uint32, error) {
	p, err := windows.UTF16PtrFromString(name)
	if err != nil {
		return 0, err
	}
	r, _, callE := procRegisterWindowMessageW.Call(uintptrOf(p))
	if r == 0 {
		return 0, callErr("RegisterWindowMessageW", callE)
	}
	return uint32(r), nil
}
