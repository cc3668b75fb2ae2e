// Package tray hosts the hidden window that owns the notification icon. The
// window's message loop is the application's loop: it runs posted closures,
// one-shot timers, shell notifications and the context menu.
package tray

import (
	"errors"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"langtray/internal/detector"
	"langtray/internal/langid"
)

// ErrUnsupported is returned where no notification area exists.
var ErrUnsupported = errors.New("tray: not supported on this platform")

// Menu labels.
const (
	MenuOpenFolder = "Open icons folder"
	MenuExit       = "Exit"
)

// Events receives what the window observes. Nil handlers are skipped.
type Events struct {
	// HostRecreated runs after the taskbar restarted and the icon is gone.
	HostRecreated func()
	// Shell runs for classified SHELLHOOK notifications.
	Shell func(detector.ShellEvent)
	// InputLangChange runs when the window itself is told its layout changed.
	InputLangChange func(langid.ID)
	// KeyActivity runs for every raw keyboard input message.
	KeyActivity func()
	OpenFolder  func()
	Exit        func()
}

type command uintptr

const (
	commandNone command = iota
	commandOpenFolder
	commandExit
)

type menuItem struct {
	cmd       command
	label     string
	separator bool
}

var contextMenu = []menuItem{
	{cmd: commandOpenFolder, label: MenuOpenFolder},
	{separator: true},
	{cmd: commandExit, label: MenuExit},
}

func (e Events) run(cmd command) {
	switch cmd {
	case commandOpenFolder:
		if e.OpenFolder != nil {
			e.OpenFolder()
		}
	case commandExit:
		if e.Exit != nil {
			e.Exit()
		}
	}
}

type trayAction int

const (
	actionNone trayAction = iota
	actionMenu
	actionOpenFolder
)

// Notification callback codes carried in the low word of lParam.
const (
	wmContextMenu   = 0x007B
	wmLButtonDblClk = 0x0203
	wmRButtonUp     = 0x0205
)

// classifyCallback maps a notification icon callback to an action. With
// version 4 semantics the shell sends WM_CONTEXTMENU for right clicks and
// keyboard menus, so WM_RBUTTONUP only opens the menu on older behaviour.
func classifyCallback(lParam uintptr, version4 bool) trayAction {
	switch uint32(lParam) & 0xFFFF {
	case wmContextMenu:
		return actionMenu
	case wmRButtonUp:
		if !version4 {
			return actionMenu
		}
	case wmLButtonDblClk:
		return actionOpenFolder
	}
	return actionNone
}

// IconGUID identifies the notification icon across restarts. The shell binds
// an icon GUID to one executable path, so the path is part of the name.
func IconGUID(exePath string) uuid.UUID {
	name := "langtray:" + strings.ToLower(filepath.Clean(exePath))
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(name))
}

// guidBytes lays u out as a Windows GUID: Data1..Data3 little-endian, Data4 as is.
func guidBytes(u uuid.UUID) [16]byte {
	var g [16]byte
	g[0], g[1], g[2], g[3] = u[3], u[2], u[1], u[0]
	g[4], g[5] = u[5], u[4]
	g[6], g[7] = u[7], u[6]
	copy(g[8:], u[8:])
	return g
}
