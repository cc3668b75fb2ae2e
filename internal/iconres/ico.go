package iconres

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/color"

	ico "github.com/Kodeworks/golang-image-ico"
	"github.com/pkg/errors"
)

const (
	icoHeaderSize = 6
	icoEntrySize  = 16
	icoTypeIcon   = 1
)

// Entry describes one image inside an .ico file.
type Entry struct {
	Width  int
	Height int
	Offset uint32
	Size   uint32
}

// ParseICO validates the ICONDIR header of an .ico file and returns its image
// entries. Every entry must lie inside data.
func ParseICO(data []byte) ([]Entry, error) {
	if len(data) < icoHeaderSize {
		return nil, errors.New("icon header truncated")
	}
	reserved := binary.LittleEndian.Uint16(data[0:2])
	kind := binary.LittleEndian.Uint16(data[2:4])
	count := int(binary.LittleEndian.Uint16(data[4:6]))
	if reserved != 0 || kind != icoTypeIcon {
		return nil, errors.Errorf("not an icon file (reserved=%d type=%d)", reserved, kind)
	}
	if count == 0 {
		return nil, errors.New("icon file has no images")
	}
	if len(data) < icoHeaderSize+count*icoEntrySize {
		return nil, errors.Errorf("icon directory truncated (%d entries)", count)
	}

	entries := make([]Entry, 0, count)
	for i := range count {
		raw := data[icoHeaderSize+i*icoEntrySize:]
		e := Entry{
			Width:  dimension(raw[0]),
			Height: dimension(raw[1]),
			Size:   binary.LittleEndian.Uint32(raw[8:12]),
			Offset: binary.LittleEndian.Uint32(raw[12:16]),
		}
		if e.Size == 0 || uint64(e.Offset)+uint64(e.Size) > uint64(len(data)) {
			return nil, errors.Errorf("icon image %d out of range (offset=%d size=%d)", i, e.Offset, e.Size)
		}
		entries = append(entries, e)
	}
	return entries, nil
}

// A zero byte in the directory means 256 pixels.
func dimension(b byte) int {
	if b == 0 {
		return 256
	}
	return int(b)
}

// Image returns the bytes of e inside data, which must be the file e was parsed from.
func (e Entry) Image(data []byte) []byte {
	return data[e.Offset : e.Offset+e.Size]
}

var (
	fallbackFill   = color.RGBA{R: 0x60, G: 0x6b, B: 0x78, A: 0xff}
	fallbackBorder = color.RGBA{R: 0xe8, G: 0xec, B: 0xf0, A: 0xff}
)

// FallbackImage draws the built-in indicator: a filled grey square with a
// light border on a transparent background.
func FallbackImage(size int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	inset := max(size/8, 1)
	for y := inset; y < size-inset; y++ {
		for x := inset; x < size-inset; x++ {
			c := fallbackFill
			if x == inset || y == inset || x == size-inset-1 || y == size-inset-1 {
				c = fallbackBorder
			}
			img.SetRGBA(x, y, c)
		}
	}
	return img
}

// EncodeFallback renders FallbackImage as a single-image .ico file.
func EncodeFallback(size int) ([]byte, error) {
	if size < 1 || size > 256 {
		return nil, errors.Errorf("fallback icon size %d out of range", size)
	}
	var buf bytes.Buffer
	if err := ico.Encode(&buf, FallbackImage(size)); err != nil {
		return nil, errors.Wrap(err, "encode fallback icon")
	}
	return buf.Bytes(), nil
}
