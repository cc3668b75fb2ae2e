//go:build !windows

package winapi

import (
	"langtray/internal/detector"
	"langtray/internal/iconres"
	"langtray/internal/langid"
	"langtray/internal/locale"
)

// Load reports that no Win32 DLLs exist here.
func Load() error { return ErrUnsupported }

// RegisterWindowMessage is unavailable off Windows.
func RegisterWindowMessage(string) (uint32, error) { return 0, ErrUnsupported }

// ForegroundQuery always reports an unknown language off Windows.
type ForegroundQuery struct{}

// ForegroundLanguage implements detector.Query.
func (ForegroundQuery) ForegroundLanguage() (langid.ID, bool) { return langid.Unknown, false }

// KeyboardHook cannot be installed off Windows.
type KeyboardHook struct{}

// NewKeyboardHook returns a hook whose Install always fails.
func NewKeyboardHook() *KeyboardHook { return &KeyboardHook{} }

// Install implements detector.KeyHook.
func (*KeyboardHook) Install(func(detector.KeyEvent)) error { return ErrUnsupported }

// Uninstall implements detector.KeyHook.
func (*KeyboardHook) Uninstall() error { return nil }

// Register is unavailable off Windows.
func (*RawKeyboard) Register(uintptr) error { return ErrUnsupported }

// Unregister is a no-op off Windows.
func (*RawKeyboard) Unregister() error { return nil }

func lastInputTicks() (now, lastInput uint32, ok bool) { return 0, 0, false }

// ShellHook cannot subscribe off Windows.
type ShellHook struct{}

// NewShellHook returns a subscription whose Subscribe always fails.
func NewShellHook(uintptr) *ShellHook { return &ShellHook{} }

// Subscribe implements detector.ShellSource.
func (*ShellHook) Subscribe() error { return ErrUnsupported }

// Unsubscribe implements detector.ShellSource.
func (*ShellHook) Unsubscribe() error { return nil }

// IconLoader validates icon files without a native icon subsystem.
type IconLoader struct {
	iconres.FileLoader
}

// NewIconLoader returns a header-validating loader.
func NewIconLoader() *IconLoader { return &IconLoader{} }

// SystemLocales has no system database off Windows.
type SystemLocales struct{}

// Lookup implements locale.Lookup.
func (SystemLocales) Lookup(langid.ID) locale.Info { return locale.Info{} }

// OpenFolder is unavailable off Windows.
func OpenFolder(string) error { return ErrUnsupported }
