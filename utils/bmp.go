package utils

import (
	"encoding/binary"
	"image"
	"io"

	"golang.org/x/image/bmp"
)

const (
	bmpFileHeaderLen = 14
	bmpV4HeaderLen   = 108
	lcsSRGB          = 0x73524742 // 'sRGB'
)

// encodeBMP writes opaque images with x/image/bmp. Images with translucent
// pixels are written as 32-bit BGRA behind a BITMAPV4HEADER whose channel
// masks include alpha; readers ignore the alpha byte under the plain 40-byte
// header that bmp.Encode emits.
func encodeBMP(w io.Writer, img image.Image) error {
	if o, ok := img.(interface{ Opaque() bool }); ok && o.Opaque() {
		return bmp.Encode(w, img)
	}
	m := ToNRGBA(img)
	width, height := m.Rect.Dx(), m.Rect.Dy()
	pixLen := 4 * width * height
	offset := bmpFileHeaderLen + bmpV4HeaderLen

	h := make([]byte, offset)
	le := binary.LittleEndian
	h[0], h[1] = 'B', 'M'
	le.PutUint32(h[2:], uint32(offset+pixLen))
	le.PutUint32(h[10:], uint32(offset))

	info := h[bmpFileHeaderLen:]
	le.PutUint32(info[0:], bmpV4HeaderLen)
	le.PutUint32(info[4:], uint32(width))
	le.PutUint32(info[8:], uint32(height)) // positive: rows bottom-up
	le.PutUint16(info[12:], 1)             // planes
	le.PutUint16(info[14:], 32)            // bits per pixel
	le.PutUint32(info[16:], 3)             // BI_BITFIELDS
	le.PutUint32(info[20:], uint32(pixLen))
	le.PutUint32(info[40:], 0x00ff0000) // red mask
	le.PutUint32(info[44:], 0x0000ff00)
	le.PutUint32(info[48:], 0x000000ff)
	le.PutUint32(info[52:], 0xff000000) // alpha mask
	le.PutUint32(info[56:], lcsSRGB)
	if _, err := w.Write(h); err != nil {
		return err
	}

	row := make([]byte, 4*width)
	for y := height - 1; y >= 0; y-- {
		src := m.Pix[y*m.Stride : y*m.Stride+4*width]
		for i := 0; i < len(row); i += 4 {
			row[i+0] = src[i+2]
			row[i+1] = src[i+1]
			row[i+2] = src[i+0]
			row[i+3] = src[i+3]
		}
		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
