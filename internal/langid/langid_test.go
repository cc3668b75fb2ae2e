package langid

import "testing"

func TestFormatting(t *testing.T) {
	tests := []struct {
		name    string
		id      ID
		decimal string
		hex     string
	}{
		{name: "english us", id: 1033, decimal: "1033", hex: "0409"},
		{name: "russian", id: 1049, decimal: "1049", hex: "0419"},
		{name: "german", id: 0x0407, decimal: "1031", hex: "0407"},
		{name: "chinese traditional", id: 0x7C04, decimal: "31748", hex: "7C04"},
		{name: "unknown", id: Unknown, decimal: "0", hex: "0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.id.Decimal(); got != tt.decimal {
				t.Errorf("Decimal() = %q, want %q", got, tt.decimal)
			}
			if got := tt.id.Hex4(); got != tt.hex {
				t.Errorf("Hex4() = %q, want %q", got, tt.hex)
			}
		})
	}
}

func TestFromHKL(t *testing.T) {
	tests := []struct {
		hkl  uintptr
		want ID
	}{
		{hkl: 0x04090409, want: 0x0409},
		{hkl: 0xF0A80419, want: 0x0419},
		{hkl: 0, want: Unknown},
	}
	for _, tt := range tests {
		if got := FromHKL(tt.hkl); got != tt.want {
			t.Errorf("FromHKL(%#x) = %#x, want %#x", tt.hkl, got, tt.want)
		}
	}
}

func TestParts(t *testing.T) {
	id := ID(0x0809) // en-GB
	if id.LCID() != 0x0809 {
		t.Fatalf("LCID() = %#x, want 0x0809", id.LCID())
	}
	if !Unknown.IsUnknown() || id.IsUnknown() {
		t.Fatal("IsUnknown mismatch")
	}
	if Unknown.String() != "unknown" {
		t.Fatalf("String() = %q", Unknown.String())
	}
	if id.String() != "2057/0x0809" {
		t.Fatalf("String() = %q", id.String())
	}
}
