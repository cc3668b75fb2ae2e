//go:build windows

package winapi

import (
	"golang.org/x/sys/windows"

	"langtray/internal/langid"
	"langtray/internal/locale"
)

const (
	localeSISO639LangName  = 0x59
	localeSISO3166CtryName = 0x5A
	localeSEnglishLanguage = 0x1001
	localeSEnglishCountry  = 0x1002
	localeInfoBufferLength = 85
)

// SystemLocales answers locale questions from the Windows locale database.
type SystemLocales struct{}

// Lookup implements locale.Lookup.
func (SystemLocales) Lookup(id langid.ID) locale.Info {
	if id.IsUnknown() {
		return locale.Info{}
	}
	lcid := id.LCID()
	return locale.Info{
		Language:        localeString(lcid, localeSISO639LangName),
		Region:          localeString(lcid, localeSISO3166CtryName),
		EnglishLanguage: localeString(lcid, localeSEnglishLanguage),
		EnglishRegion:   localeString(lcid, localeSEnglishCountry),
	}
}

func localeString(lcid uint32, lctype uint32) string {
	var buf [localeInfoBufferLength]uint16
	n, _, _ := procGetLocaleInfoW.Call(uintptr(lcid), uintptr(lctype), uintptrOf(&buf[0]), uintptr(len(buf)))
	if n == 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
