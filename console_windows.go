//go:build windows

package main

import "golang.org/x/sys/windows"

const cpUTF8 = 65001

var procSetConsoleOutputCP = windows.NewLazySystemDLL("kernel32.dll").NewProc("SetConsoleOutputCP")

// setConsoleUTF8 makes locale names render correctly when the tray is
// started from a console. Without a console the call fails harmlessly.
func setConsoleUTF8() {
	procSetConsoleOutputCP.Call(cpUTF8)
}
