package utils

import (
	"image"
	"image/gif"
	"image/jpeg"
	"image/png"
	"io"
	"path/filepath"
	"strings"

	"golang.org/x/image/draw"
	"golang.org/x/image/tiff"
)

type Format int

const (
	FormatBMP Format = iota
	FormatJPEG
	FormatPNG
	FormatGIF
	FormatTIFF
)

func (f Format) String() string {
	switch f {
	case FormatJPEG:
		return "jpeg"
	case FormatPNG:
		return "png"
	case FormatGIF:
		return "gif"
	case FormatTIFF:
		return "tiff"
	default:
		return "bmp"
	}
}

// FormatFromPath picks the output encoding from the extension of path.
// Unknown or missing extensions fall back to BMP.
//
// With legacy set every path maps to BMP. Older releases compared the dotted
// extension against undotted names, so no case ever matched and all output
// was written as BMP.
func FormatFromPath(path string, legacy bool) Format {
	if legacy {
		return FormatBMP
	}
	ext := strings.TrimPrefix(strings.ToUpper(filepath.Ext(path)), ".")
	switch ext {
	case "JPEG", "JPG":
		return FormatJPEG
	case "PNG":
		return FormatPNG
	case "GIF":
		return FormatGIF
	case "TIF", "TIFF":
		return FormatTIFF
	default:
		return FormatBMP
	}
}

// Encode writes img to w in the given format.
func Encode(w io.Writer, img image.Image, format Format, opt EncodeOptions) error {
	switch format {
	case FormatJPEG:
		q := opt.JPEGQuality
		if q <= 0 {
			q = jpeg.DefaultQuality
		}
		return jpeg.Encode(w, img, &jpeg.Options{Quality: min(q, 100)})
	case FormatPNG:
		enc := &png.Encoder{CompressionLevel: opt.PNGCompression}
		return enc.Encode(w, img)
	case FormatGIF:
		n := opt.GIFColors
		if n <= 0 || n > 256 {
			n = 256
		}
		return gif.Encode(w, img, &gif.Options{
			NumColors: n,
			Quantizer: KMeansQuantizer{},
			Drawer:    draw.FloydSteinberg,
		})
	case FormatTIFF:
		return tiff.Encode(w, img, &tiff.Options{Compression: tiff.Deflate, Predictor: true})
	default:
		return encodeBMP(w, img)
	}
}
