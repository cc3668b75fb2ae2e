//go:build windows

package winapi

import (
	"errors"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"langtray/internal/detector"
)

const (
	whKeyboardLL = 13
	hcAction     = 0
)

// kbdllHookStruct mirrors KBDLLHOOKSTRUCT.
type kbdllHookStruct struct {
	vkCode      uint32
	scanCode    uint32
	flags       uint32
	time        uint32
	dwExtraInfo uintptr
}

var (
	hookCallbackOnce sync.Once
	hookCallback     uintptr
	activeHook       atomic.Pointer[KeyboardHook]
)

// KeyboardHook is the global WH_KEYBOARD_LL observer. The callback runs on
// the thread that installed it, inside its message loop.
type KeyboardHook struct {
	handle  uintptr
	handler func(detector.KeyEvent)
}

// NewKeyboardHook returns an uninstalled hook.
func NewKeyboardHook() *KeyboardHook {
	return &KeyboardHook{}
}

// Install implements detector.KeyHook. Only one hook may be active per process.
func (h *KeyboardHook) Install(handler func(detector.KeyEvent)) error {
	if handler == nil {
		return errors.New("key handler is required")
	}
	if h.handle != 0 {
		return errors.New("keyboard hook already installed")
	}
	if err := Load(); err != nil {
		return err
	}
	hookCallbackOnce.Do(func() {
		hookCallback = windows.NewCallback(lowLevelKeyboardProc)
	})

	h.handler = handler
	if !activeHook.CompareAndSwap(nil, h) {
		return errors.New("another keyboard hook is active")
	}
	mod, _, _ := procGetModuleHandleW.Call(0)
	r, _, err := procSetWindowsHookExW.Call(whKeyboardLL, hookCallback, mod, 0)
	if r == 0 {
		activeHook.CompareAndSwap(h, nil)
		return callErr("SetWindowsHookExW", err)
	}
	h.handle = r
	slog.Debug("[hook] keyboard hook installed")
	return nil
}

// Uninstall implements detector.KeyHook. It is idempotent.
func (h *KeyboardHook) Uninstall() error {
	activeHook.CompareAndSwap(h, nil)
	if h.handle == 0 {
		return nil
	}
	r, _, err := procUnhookWindowsHookEx.Call(h.handle)
	h.handle = 0
	if r == 0 {
		return callErr("UnhookWindowsHookEx", err)
	}
	slog.Debug("[hook] keyboard hook removed")
	return nil
}

func (h *KeyboardHook) dispatch(ev detector.KeyEvent) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[DEBUG-PANIC] key handler panicked", "panic", r, "stack", string(debug.Stack()))
		}
	}()
	h.handler(ev)
}

// lowLevelKeyboardProc updates state for key-downs before the event moves on
// and for key-ups after it, then returns without blocking.
func lowLevelKeyboardProc(nCode, wParam, lParam uintptr) uintptr {
	h := activeHook.Load()
	if int32(nCode) != hcAction || h == nil || lParam == 0 {
		r, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
		return r
	}
	kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
	ev, ok := KeyEventFromMessage(wParam, kb.vkCode)
	if ok && ev.Down {
		h.dispatch(ev)
	}
	r, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	if ok && !ev.Down {
		h.dispatch(ev)
	}
	return r
}
