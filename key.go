package layermerge

import (
	"image"
	"image/color"

	"github.com/cenkalti/dominantcolor"
	"github.com/lucasb-eyer/go-colorful"
)

// KeyColor returns the color that MakeTransparent would clear in img, and
// false when keying does not apply (empty image or non-opaque key).
func KeyColor(img *image.NRGBA, mode KeyMode) (color.NRGBA, bool) {
	b := img.Bounds()
	if b.Empty() {
		return color.NRGBA{}, false
	}
	var key color.NRGBA
	switch mode {
	case KeyDominant:
		c := dominantcolor.Find(img)
		key = color.NRGBA{R: c.R, G: c.G, B: c.B, A: 255}
	default:
		key = img.NRGBAAt(b.Min.X, b.Max.Y-1)
	}
	if key.A != 255 {
		return color.NRGBA{}, false
	}
	return key, true
}

// MakeTransparent clears every pixel of img that matches its key color,
// setting it to fully transparent black. It reports whether a key was
// applied.
func MakeTransparent(img *image.NRGBA, mode KeyMode, tolerance float64) bool {
	key, ok := KeyColor(img, mode)
	if !ok {
		return false
	}
	match := exactMatch(key)
	if tolerance > 0 {
		match = labMatch(key, tolerance)
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if match(img.NRGBAAt(x, y)) {
				img.SetNRGBA(x, y, color.NRGBA{})
			}
		}
	}
	return true
}

func exactMatch(key color.NRGBA) func(color.NRGBA) bool {
	return func(c color.NRGBA) bool { return c == key }
}

func labMatch(key color.NRGBA, tolerance float64) func(color.NRGBA) bool {
	k := colorful.Color{
		R: float64(key.R) / 255,
		G: float64(key.G) / 255,
		B: float64(key.B) / 255,
	}
	return func(c color.NRGBA) bool {
		if c.A != 255 {
			return false
		}
		col, _ := colorful.MakeColor(c)
		return col.DistanceLab(k) <= tolerance
	}
}
