package iconres

import (
	"bytes"
	"encoding/binary"
	"image/color"
	"testing"

	"langtray/internal/testutil"
)

func TestEncodeFallbackParses(t *testing.T) {
	data, err := EncodeFallback(32)
	if err != nil {
		t.Fatalf("EncodeFallback() error = %v", err)
	}
	entries, err := ParseICO(data)
	if err != nil {
		t.Fatalf("ParseICO() error = %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1", len(entries))
	}
	e := entries[0]
	if e.Width != 32 || e.Height != 32 || e.Offset != icoHeaderSize+icoEntrySize {
		t.Fatalf("entry = %+v", e)
	}
	if !bytes.HasPrefix(e.Image(data), []byte("\x89PNG")) {
		t.Fatal("fallback image is not PNG encoded")
	}
}

func TestEncodeFallbackRejectsSize(t *testing.T) {
	for _, size := range []int{0, -1, 257} {
		if _, err := EncodeFallback(size); err == nil {
			t.Fatalf("EncodeFallback(%d) error = nil", size)
		}
	}
}

func TestFallbackImage(t *testing.T) {
	img := FallbackImage(16)
	if got := img.Bounds().Dx(); got != 16 {
		t.Fatalf("width = %d, want 16", got)
	}
	if _, _, _, a := img.At(0, 0).RGBA(); a != 0 {
		t.Fatal("corner is not transparent")
	}
	if got := color.RGBAModel.Convert(img.At(2, 2)); got != fallbackBorder {
		t.Fatalf("border pixel = %v", got)
	}
	if got := color.RGBAModel.Convert(img.At(8, 8)); got != fallbackFill {
		t.Fatalf("fill pixel = %v", got)
	}
}

func icoHeader(reserved, kind, count uint16) []byte {
	b := make([]byte, icoHeaderSize)
	binary.LittleEndian.PutUint16(b[0:2], reserved)
	binary.LittleEndian.PutUint16(b[2:4], kind)
	binary.LittleEndian.PutUint16(b[4:6], count)
	return b
}

func icoEntry(w, h byte, size, offset uint32) []byte {
	b := make([]byte, icoEntrySize)
	b[0], b[1] = w, h
	binary.LittleEndian.PutUint32(b[8:12], size)
	binary.LittleEndian.PutUint32(b[12:16], offset)
	return b
}

func TestParseICO(t *testing.T) {
	payload := []byte("0123456789")
	valid := append(append(icoHeader(0, 1, 1), icoEntry(0, 0, 10, 22)...), payload...)

	tests := []struct {
		name    string
		data    []byte
		wantErr bool
	}{
		{name: "valid 256px", data: valid},
		{name: "empty", data: nil, wantErr: true},
		{name: "short header", data: []byte{0, 0, 1}, wantErr: true},
		{name: "cursor", data: append(icoHeader(0, 2, 1), icoEntry(16, 16, 1, 22)...), wantErr: true},
		{name: "reserved set", data: icoHeader(1, 1, 1), wantErr: true},
		{name: "no images", data: icoHeader(0, 1, 0), wantErr: true},
		{name: "directory truncated", data: icoHeader(0, 1, 2), wantErr: true},
		{name: "image out of range", data: append(icoHeader(0, 1, 1), icoEntry(16, 16, 100, 22)...), wantErr: true},
		{name: "zero sized image", data: append(icoHeader(0, 1, 1), icoEntry(16, 16, 0, 22)...), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entries, err := ParseICO(tt.data)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseICO() = %+v, want error", entries)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseICO() error = %v", err)
			}
			if entries[0].Width != 256 || string(entries[0].Image(tt.data)) != string(payload) {
				t.Fatalf("entry = %+v", entries[0])
			}
		})
	}
}

func TestFileLoaderLoadsEncodedIcon(t *testing.T) {
	data, err := EncodeFallback(16)
	if err != nil {
		t.Fatalf("EncodeFallback() error = %v", err)
	}
	path := testutil.WriteFile(t, t.TempDir(), "1033.ico", string(data))

	loader := &FileLoader{}
	first, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	second, err := loader.Load(path)
	if err != nil {
		t.Fatalf("Load() second error = %v", err)
	}
	if first.Handle() == 0 || first.Handle() == second.Handle() {
		t.Fatalf("handles = %d, %d; want distinct non-zero", first.Handle(), second.Handle())
	}
	if first.Path() != path || first.Builtin() {
		t.Fatalf("icon = %q builtin=%v", first.Path(), first.Builtin())
	}
}
