//go:build windows

package winapi

import "langtray/internal/langid"

// ForegroundQuery reads the keyboard layout of the thread owning the
// foreground window.
type ForegroundQuery struct{}

// ForegroundLanguage implements detector.Query.
func (ForegroundQuery) ForegroundLanguage() (langid.ID, bool) {
	hwnd, _, _ := procGetForegroundWindow.Call()
	if hwnd == 0 {
		return langid.Unknown, false
	}
	tid, _, _ := procGetWindowThreadProcessID.Call(hwnd, 0)
	if tid == 0 {
		return langid.Unknown, false
	}
	hkl, _, _ := procGetKeyboardLayout.Call(tid)
	id := langid.FromHKL(hkl)
	return id, !id.IsUnknown()
}
