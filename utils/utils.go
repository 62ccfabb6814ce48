package utils

import (
	"image"
	"image/png"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/image/draw"

	// Decoders accepted for layer files. PNG registers through the import above.
	_ "image/gif"
	_ "image/jpeg"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// EncodeOptions carries per-format encoder settings.
type EncodeOptions struct {
	JPEGQuality    int
	PNGCompression png.CompressionLevel
	// Palette size for GIF output, at most 256.
	GIFColors int
}

func DefaultEncodeOptions() EncodeOptions {
	return EncodeOptions{
		JPEGQuality:    90,
		PNGCompression: png.DefaultCompression,
		GIFColors:      256,
	}
}

// ReadImage decodes the file at path with any registered codec.
func ReadImage(path string) (image.Image, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer file.Close()
	img, _, err := image.Decode(file)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return img, nil
}

// ToNRGBA copies img into a new 8-bit non-premultiplied image anchored at
// (0,0). The copy is made even when img is already an *image.NRGBA.
func ToNRGBA(img image.Image) *image.NRGBA {
	b := img.Bounds()
	out := image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	if src, ok := img.(*image.NRGBA); ok {
		// Row copy; draw.Src would round-trip through premultiplied alpha.
		for y := 0; y < b.Dy(); y++ {
			i := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Stride:(y+1)*out.Stride], src.Pix[i:i+4*b.Dx()])
		}
		return out
	}
	draw.Draw(out, out.Bounds(), img, b.Min, draw.Src)
	return out
}

// ReadNRGBA is ReadImage followed by ToNRGBA.
func ReadNRGBA(path string) (*image.NRGBA, error) {
	img, err := ReadImage(path)
	if err != nil {
		return nil, err
	}
	return ToNRGBA(img), nil
}

// SaveImage encodes img as format and writes it to filename, truncating any
// existing file.
func SaveImage(img image.Image, filename string, format Format, opt EncodeOptions) error {
	f, err := os.Create(filename)
	if err != nil {
		return errors.Wrapf(err, "create %s", filename)
	}
	if err := Encode(f, img, format, opt); err != nil {
		f.Close()
		return errors.Wrapf(err, "encode %s as %s", filename, format)
	}
	return errors.Wrapf(f.Close(), "close %s", filename)
}
