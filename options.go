package layermerge

import (
	"image/png"

	"github.com/setanarut/layermerge/utils"
)

type KeyMode int

const (
	// KeyCorner keys out the color of the bottom-left pixel, provided that
	// pixel is fully opaque.
	KeyCorner KeyMode = iota
	// KeyDominant keys out the most dominant color of the layer.
	KeyDominant
)

func (m KeyMode) String() string {
	switch m {
	case KeyDominant:
		return "dominant"
	default:
		return "corner"
	}
}

type Options struct {
	// Write every output as BMP regardless of the target extension, matching
	// the format selection of older releases.
	LegacyFormat bool
	// How the transparent key color of a keyed layer is chosen.
	KeyMode KeyMode
	// Maximum CIE-Lab distance from the key color that still counts as a
	// match. Zero requires an exact match.
	// Useful range: 0-0.1. JPEG sources usually need 0.02 or more.
	KeyTolerance float64
	// JPEG quality, 1-100.
	JPEGQuality int
	PNGCompression png.CompressionLevel
	// Palette size for GIF output, 2-256.
	GIFColors int
}

func DefaultOptions() Options {
	enc := utils.DefaultEncodeOptions()
	return Options{
		KeyMode:        KeyCorner,
		JPEGQuality:    enc.JPEGQuality,
		PNGCompression: enc.PNGCompression,
		GIFColors:      enc.GIFColors,
	}
}

func (o Options) encodeOptions() utils.EncodeOptions {
	return utils.EncodeOptions{
		JPEGQuality:    o.JPEGQuality,
		PNGCompression: o.PNGCompression,
		GIFColors:      o.GIFColors,
	}
}
