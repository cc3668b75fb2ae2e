// Package langid models Windows language identifiers (LANGID) as taken from the
// low word of a keyboard layout handle.
package langid

import (
	"fmt"
	"strconv"
)

// ID is a 16-bit Windows language identifier. The zero value means unknown.
type ID uint16

// Unknown is the identifier reported when the foreground context cannot be read.
const Unknown ID = 0

// FromHKL extracts the language identifier from a keyboard layout handle.
func FromHKL(hkl uintptr) ID {
	return ID(hkl & 0xFFFF)
}

// IsUnknown reports whether id carries no language.
func (id ID) IsUnknown() bool {
	return id == Unknown
}

// Decimal renders the identifier in base 10, e.g. "1033".
func (id ID) Decimal() string {
	return strconv.FormatUint(uint64(id), 10)
}

// Hex4 renders the identifier as four uppercase hex digits, e.g. "0409".
func (id ID) Hex4() string {
	return fmt.Sprintf("%04X", uint16(id))
}

// LCID returns the locale identifier with the default sort order.
func (id ID) LCID() uint32 {
	return uint32(id)
}

func (id ID) String() string {
	if id.IsUnknown() {
		return "unknown"
	}
	return id.Decimal() + "/0x" + id.Hex4()
}
