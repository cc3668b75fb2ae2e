//go:build windows

package winapi

import (
	"testing"
	"unsafe"
)

func TestStructLayouts(t *testing.T) {
	ptr := unsafe.Sizeof(uintptr(0))
	if got, wantKbd := unsafe.Sizeof(kbdllHookStruct{}), 16+ptr; got != wantKbd {
		t.Fatalf("sizeof(kbdllHookStruct) = %d, want %d", got, wantKbd)
	}
	if got, want := unsafe.Sizeof(rawInputDevice{}), 8+ptr; got != want {
		t.Fatalf("sizeof(rawInputDevice) = %d, want %d", got, want)
	}
}

func TestSystemLocalesKnownIdentifier(t *testing.T) {
	info := SystemLocales{}.Lookup(0x0409)
	if info.Language != "en" || info.Region != "US" {
		t.Fatalf("Lookup(0x0409) = %+v, want en/US", info)
	}
	if got := (SystemLocales{}).Lookup(0); got.Language != "" {
		t.Fatalf("Lookup(0) = %+v, want empty", got)
	}
}

func TestIconLoaderRejectsMissingFile(t *testing.T) {
	l := NewIconLoader()
	if _, err := l.Load(t.TempDir() + `\missing.ico`); err == nil {
		t.Fatal("Load(missing) error = nil")
	}
	fb := l.Fallback()
	if !fb.Builtin() || fb != l.Fallback() {
		t.Fatal("Fallback() must return the same builtin icon")
	}
}
