//go:build windows

package winapi

import "unsafe"

const (
	ridevRemove      = 0x00000001
	ridevInputSink   = 0x00000100
	hidUsagePageDesk = 0x01
	hidUsageKeyboard = 0x06
)

// rawInputDevice mirrors RAWINPUTDEVICE.
type rawInputDevice struct {
	usagePage  uint16
	usage      uint16
	flags      uint32
	hwndTarget uintptr
}

// Register asks for WM_INPUT keyboard messages on hwnd even while the window
// is in the background.
func (k *RawKeyboard) Register(hwnd uintptr) error {
	if err := k.register(ridevInputSink, hwnd); err != nil {
		return err
	}
	k.hwnd = hwnd
	return nil
}

// Unregister stops raw keyboard delivery. It is idempotent.
func (k *RawKeyboard) Unregister() error {
	if k.hwnd == 0 {
		return nil
	}
	k.hwnd = 0
	return k.register(ridevRemove, 0)
}

func (k *RawKeyboard) register(flags uint32, hwnd uintptr) error {
	dev := rawInputDevice{
		usagePage:  hidUsagePageDesk,
		usage:      hidUsageKeyboard,
		flags:      flags,
		hwndTarget: hwnd,
	}
	r, _, err := procRegisterRawInputDevices.Call(uintptrOf(&dev), 1, unsafe.Sizeof(dev))
	if r == 0 {
		return callErr("RegisterRawInputDevices", err)
	}
	return nil
}

// lastInputInfo mirrors LASTINPUTINFO.
type lastInputInfo struct {
	cbSize uint32
	dwTime uint32
}

func lastInputTicks() (now, lastInput uint32, ok bool) {
	info := lastInputInfo{cbSize: uint32(unsafe.Sizeof(lastInputInfo{}))}
	if r, _, _ := procGetLastInputInfo.Call(uintptrOf(&info)); r == 0 {
		return 0, 0, false
	}
	tick, _, _ := procGetTickCount.Call()
	return uint32(tick), info.dwTime, true
}
