//go:build windows

package tray

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"
	"unsafe"

	"github.com/lxn/win"
	"golang.org/x/sys/windows"

	"langtray/internal/iconres"
	"langtray/internal/indicator"
	"langtray/internal/langid"
	"langtray/internal/loop"
	"langtray/internal/winapi"
)

const (
	className   = "LangTrayHiddenWindow"
	windowTitle = "LangTray"
	iconUID     = 1

	wmApp          = 0x8000
	wmInvoke       = wmApp + 1
	wmTrayCallback = wmApp + 2

	wmNull            = 0x0000
	wmInputLangChange = 0x0051
	wmInput           = 0x00FF
	wmTimer           = 0x0113

	nifGUID = 0x00000020
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procAppendMenuW    = user32.NewProc("AppendMenuW")
	procTrackPopupMenu = user32.NewProc("TrackPopupMenu")
	procPostMessageW   = user32.NewProc("PostMessageW")
	procSetTimer       = user32.NewProc("SetTimer")
	procKillTimer      = user32.NewProc("KillTimer")
)

var (
	wndProcOnce sync.Once
	wndProcPtr  uintptr
	active      atomic.Pointer[Window]
)

// Window is the hidden top-level window. Only one exists per process. All
// methods except Post and AfterFunc must run on the thread that called New.
type Window struct {
	hwnd     win.HWND
	threadID uint32
	events   Events

	msgTaskbarCreated uint32
	msgShellHook      uint32

	nid      win.NOTIFYICONDATA
	guid     [16]byte
	useGUID  bool
	added    bool
	version4 bool

	opsMu  sync.Mutex
	ops    []func()
	closed bool

	timersMu  sync.Mutex
	timers    map[uintptr]*windowTimer
	nextTimer uintptr
}

// New creates the hidden window on the calling thread, which must stay
// locked to its goroutine for the window's lifetime.
func New(events Events, exePath string) (*Window, error) {
	w := &Window{
		events:   events,
		threadID: windows.GetCurrentThreadId(),
		timers:   make(map[uintptr]*windowTimer),
	}
	if !active.CompareAndSwap(nil, w) {
		return nil, errors.New("tray window already exists")
	}

	var err error
	if w.msgTaskbarCreated, err = winapi.RegisterWindowMessage("TaskbarCreated"); err != nil {
		slog.Warn("[tray] TaskbarCreated message unavailable", "error", err)
	}
	if w.msgShellHook, err = winapi.RegisterWindowMessage("SHELLHOOK"); err != nil {
		slog.Warn("[tray] SHELLHOOK message unavailable", "error", err)
	}

	if err := w.create(); err != nil {
		active.Store(nil)
		return nil, err
	}

	w.nid.CbSize = uint32(unsafe.Sizeof(w.nid))
	w.nid.HWnd = w.hwnd
	w.nid.UID = iconUID
	w.nid.UCallbackMessage = wmTrayCallback
	if exePath != "" {
		w.guid = guidBytes(IconGUID(exePath))
		w.useGUID = true
	}
	return w, nil
}

func (w *Window) create() error {
	wndProcOnce.Do(func() {
		wndProcPtr = windows.NewCallback(wndProc)
	})

	hInst := win.GetModuleHandle(nil)
	cls, err := windows.UTF16PtrFromString(className)
	if err != nil {
		return err
	}
	title, err := windows.UTF16PtrFromString(windowTitle)
	if err != nil {
		return err
	}

	wc := win.WNDCLASSEX{
		CbSize:        uint32(unsafe.Sizeof(win.WNDCLASSEX{})),
		LpfnWndProc:   wndProcPtr,
		HInstance:     hInst,
		LpszClassName: cls,
	}
	if win.RegisterClassEx(&wc) == 0 {
		if lastErr := windows.GetLastError(); lastErr != windows.ERROR_CLASS_ALREADY_EXISTS {
			return fmt.Errorf("RegisterClassEx: %w", lastErr)
		}
	}

	// A top-level window is required: message-only windows miss the
	// TaskbarCreated broadcast and cannot register as shell hook windows.
	w.hwnd = win.CreateWindowEx(0, cls, title, 0, 0, 0, 0, 0, 0, 0, hInst, nil)
	if w.hwnd == 0 {
		return fmt.Errorf("CreateWindowEx: %w", windows.GetLastError())
	}
	return nil
}

// HWND returns the native window handle.
func (w *Window) HWND() uintptr {
	return uintptr(w.hwnd)
}

// Run pumps messages until the window is destroyed and returns the exit code.
func (w *Window) Run() int {
	var msg win.MSG
	for {
		switch r := win.GetMessage(&msg, 0, 0, 0); {
		case r == 0:
			return int(msg.WParam)
		case r < 0:
			slog.Error("[tray] GetMessage failed", "error", windows.GetLastError())
			return 1
		}
		win.TranslateMessage(&msg)
		win.DispatchMessage(&msg)
	}
}

// Destroy tears the window down; Run returns afterwards.
func (w *Window) Destroy() {
	if w.hwnd != 0 {
		win.DestroyWindow(w.hwnd)
	}
}

// Post implements loop.Poster.
func (w *Window) Post(fn func()) error {
	w.opsMu.Lock()
	if w.closed {
		w.opsMu.Unlock()
		return loop.ErrClosed
	}
	w.ops = append(w.ops, fn)
	w.opsMu.Unlock()

	if r, _, err := procPostMessageW.Call(uintptr(w.hwnd), wmInvoke, 0, 0); r == 0 {
		return fmt.Errorf("PostMessageW: %w", err)
	}
	return nil
}

func (w *Window) drainOps() {
	w.opsMu.Lock()
	ops := w.ops
	w.ops = nil
	w.opsMu.Unlock()
	for _, fn := range ops {
		safeCall("posted", fn)
	}
}

type windowTimer struct {
	w  *Window
	id uintptr
	fn func()
}

// AfterFunc implements loop.Scheduler with a one-shot WM_TIMER.
func (w *Window) AfterFunc(d time.Duration, fn func()) loop.Timer {
	w.timersMu.Lock()
	w.nextTimer++
	t := &windowTimer{w: w, id: w.nextTimer, fn: fn}
	w.timers[t.id] = t
	w.timersMu.Unlock()

	ms := uint32(max(d/time.Millisecond, 1))
	w.onThread(func() {
		if !w.timerPending(t.id) {
			return
		}
		if r, _, err := procSetTimer.Call(uintptr(w.hwnd), t.id, uintptr(ms), 0); r == 0 {
			slog.Warn("[tray] SetTimer failed", "error", err)
		}
	})
	return t
}

// Stop implements loop.Timer.
func (t *windowTimer) Stop() bool {
	w := t.w
	w.timersMu.Lock()
	_, pending := w.timers[t.id]
	delete(w.timers, t.id)
	w.timersMu.Unlock()
	if !pending {
		return false
	}
	w.onThread(func() {
		procKillTimer.Call(uintptr(w.hwnd), t.id)
	})
	return true
}

func (w *Window) timerPending(id uintptr) bool {
	w.timersMu.Lock()
	defer w.timersMu.Unlock()
	_, ok := w.timers[id]
	return ok
}

func (w *Window) fireTimer(id uintptr) {
	procKillTimer.Call(uintptr(w.hwnd), id)
	w.timersMu.Lock()
	t, ok := w.timers[id]
	delete(w.timers, id)
	w.timersMu.Unlock()
	if ok {
		safeCall("timer", t.fn)
	}
}

// onThread runs fn now when called on the window thread, otherwise posts it.
func (w *Window) onThread(fn func()) {
	if windows.GetCurrentThreadId() == w.threadID {
		fn()
		return
	}
	if err := w.Post(fn); err != nil {
		slog.Debug("[tray] dropped cross-thread call", "error", err)
	}
}

// Add implements indicator.StatusArea.
func (w *Window) Add(icon *iconres.Icon, tooltip string) error {
	w.setData(icon, tooltip)
	if w.added {
		if w.notify(win.NIM_MODIFY) {
			return nil
		}
		w.added = false
	}
	if w.notify(win.NIM_ADD) {
		w.afterAdd()
		return nil
	}
	if w.useGUID {
		// The shell rejects a GUID registered to another executable path.
		slog.Warn("[tray] add with icon GUID failed, retrying without it")
		w.useGUID = false
		if w.notify(win.NIM_ADD) {
			w.afterAdd()
			return nil
		}
	}
	return errors.New("Shell_NotifyIcon(NIM_ADD) failed")
}

func (w *Window) afterAdd() {
	w.added = true
	w.nid.UVersion = win.NOTIFYICON_VERSION_4
	w.version4 = w.notify(win.NIM_SETVERSION)
	if !w.version4 {
		slog.Debug("[tray] notification icon version 4 unavailable")
	}
}

// Modify implements indicator.StatusArea.
func (w *Window) Modify(icon *iconres.Icon, tooltip string) error {
	w.setData(icon, tooltip)
	if !w.notify(win.NIM_MODIFY) {
		return errors.New("Shell_NotifyIcon(NIM_MODIFY) failed")
	}
	return nil
}

// Remove implements indicator.StatusArea.
func (w *Window) Remove() error {
	if !w.added {
		return nil
	}
	w.added = false
	if !w.notify(win.NIM_DELETE) {
		return errors.New("Shell_NotifyIcon(NIM_DELETE) failed")
	}
	return nil
}

func (w *Window) setData(icon *iconres.Icon, tooltip string) {
	w.nid.HIcon = 0
	if icon != nil {
		w.nid.HIcon = win.HICON(icon.Handle())
	}
	clear(w.nid.SzTip[:])
	tip, err := windows.UTF16FromString(indicator.TruncateUTF16(tooltip, indicator.MaxTooltipLen))
	if err != nil {
		tip, _ = windows.UTF16FromString(indicator.DefaultTooltip)
	}
	copy(w.nid.SzTip[:len(w.nid.SzTip)-1], tip)
}

func (w *Window) notify(message uint32) bool {
	w.nid.UFlags = win.NIF_ICON | win.NIF_MESSAGE | win.NIF_TIP
	if w.useGUID {
		w.nid.UFlags |= nifGUID
		*(*[16]byte)(unsafe.Pointer(&w.nid.GuidItem)) = w.guid
	}
	return win.Shell_NotifyIcon(message, &w.nid)
}

func (w *Window) showMenu() {
	menu := win.CreatePopupMenu()
	if menu == 0 {
		slog.Warn("[tray] CreatePopupMenu failed")
		return
	}
	defer win.DestroyMenu(menu)

	for _, item := range contextMenu {
		if item.separator {
			procAppendMenuW.Call(uintptr(menu), uintptr(win.MF_SEPARATOR), 0, 0)
			continue
		}
		label, err := windows.UTF16PtrFromString(item.label)
		if err != nil {
			continue
		}
		procAppendMenuW.Call(uintptr(menu), uintptr(win.MF_STRING), uintptr(item.cmd), uintptr(unsafe.Pointer(label)))
	}

	var pt win.POINT
	win.GetCursorPos(&pt)
	// The menu only closes on outside clicks when its owner is foreground.
	win.SetForegroundWindow(w.hwnd)
	cmd, _, _ := procTrackPopupMenu.Call(
		uintptr(menu),
		uintptr(win.TPM_RETURNCMD|win.TPM_RIGHTBUTTON),
		uintptr(pt.X),
		uintptr(pt.Y),
		0,
		uintptr(w.hwnd),
		0,
	)
	procPostMessageW.Call(uintptr(w.hwnd), wmNull, 0, 0)

	w.events.run(command(cmd))
}

func (w *Window) handle(hwnd win.HWND, msg uint32, wParam, lParam uintptr) (uintptr, bool) {
	if msg != 0 && msg == w.msgTaskbarCreated {
		w.added = false
		callIf(w.events.HostRecreated)
		return 0, true
	}
	if msg != 0 && msg == w.msgShellHook {
		if ev, ok := winapi.ClassifyShellCode(wParam); ok && w.events.Shell != nil {
			w.events.Shell(ev)
		}
		return 0, true
	}

	switch msg {
	case wmInvoke:
		w.drainOps()
		return 0, true
	case wmTimer:
		w.fireTimer(wParam)
		return 0, true
	case wmTrayCallback:
		switch classifyCallback(lParam, w.version4) {
		case actionMenu:
			w.showMenu()
		case actionOpenFolder:
			callIf(w.events.OpenFolder)
		}
		return 0, true
	case wmInputLangChange:
		if w.events.InputLangChange != nil {
			w.events.InputLangChange(langid.FromHKL(lParam))
		}
		return 1, true
	case wmInput:
		callIf(w.events.KeyActivity)
		// DefWindowProc must see WM_INPUT so the system frees the input data.
		return 0, false
	case win.WM_DESTROY:
		w.teardown()
		win.PostQuitMessage(0)
		return 0, true
	}
	return 0, false
}

func (w *Window) teardown() {
	w.opsMu.Lock()
	w.closed = true
	w.ops = nil
	w.opsMu.Unlock()

	w.timersMu.Lock()
	for id := range w.timers {
		procKillTimer.Call(uintptr(w.hwnd), id)
	}
	clear(w.timers)
	w.timersMu.Unlock()

	if w.added {
		if err := w.Remove(); err != nil {
			slog.Warn("[tray] icon removal during teardown failed", "error", err)
		}
	}
	active.Store(nil)
}

func wndProc(hwnd win.HWND, msg uint32, wParam, lParam uintptr) (ret uintptr) {
	w := active.Load()
	if w == nil || (w.hwnd != 0 && w.hwnd != hwnd) {
		return win.DefWindowProc(hwnd, msg, wParam, lParam)
	}
	handled := false
	func() {
		defer func() {
			if r := recover(); r != nil {
				slog.Error("[tray] window procedure recovered from panic",
					"message", msg, "panic", r, "stack", string(debug.Stack()))
				handled = false
			}
		}()
		ret, handled = w.handle(hwnd, msg, wParam, lParam)
	}()
	if handled {
		return ret
	}
	return win.DefWindowProc(hwnd, msg, wParam, lParam)
}

func callIf(fn func()) {
	if fn != nil {
		fn()
	}
}

func safeCall(kind string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("[tray] loop callback recovered from panic",
				"kind", kind, "panic", r, "stack", string(debug.Stack()))
		}
	}()
	fn()
}
