package layermerge

import (
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/setanarut/layermerge/utils"
)

// Merge composites items and writes the canvas to the last target. It
// reports whether a file was written.
func Merge(items []Item, opt Options) (bool, error) {
	canvas, target, err := Composite(items, opt)
	if err != nil {
		return false, err
	}
	return Save(canvas, target, opt)
}

// Composite scans items once. The first layer becomes the canvas; later
// layers are blended onto it. It returns the canvas (nil without layers)
// and the last target seen.
func Composite(items []Item, opt Options) (*image.NRGBA, string, error) {
	var canvas *image.NRGBA
	target := ""
	for _, it := range items {
		switch it := it.(type) {
		case Target:
			target = string(it)
			Logger().Debug("target set", zap.String("path", target))
		case Layer:
			if canvas == nil {
				c, err := NewCanvas(it.Path)
				if err != nil {
					return nil, "", err
				}
				canvas = c
				continue
			}
			if err := overlayFile(canvas, it, opt); err != nil {
				return nil, "", err
			}
		}
	}
	return canvas, target, nil
}

// NewCanvas decodes the base layer at path into a fresh NRGBA canvas.
func NewCanvas(path string) (*image.NRGBA, error) {
	canvas, err := utils.ReadNRGBA(path)
	if err != nil {
		return nil, err
	}
	Logger().Debug("canvas created",
		zap.String("path", path),
		zap.Int("width", canvas.Rect.Dx()),
		zap.Int("height", canvas.Rect.Dy()),
	)
	return canvas, nil
}

func overlayFile(canvas *image.NRGBA, l Layer, opt Options) error {
	src, err := utils.ReadImage(l.Path)
	if err != nil {
		return err
	}
	Overlay(canvas, src, l, opt)
	return nil
}

// Overlay blends src onto canvas at l.Origin with l.Alpha, keying out the
// transparent color first when l.Transparent is set. The part of src that
// falls outside the canvas is dropped; the canvas is never resized.
func Overlay(canvas *image.NRGBA, src image.Image, l Layer, opt Options) {
	layer := utils.ToNRGBA(src)
	if l.Transparent {
		MakeTransparent(layer, opt.KeyMode, opt.KeyTolerance)
	}
	AlphaMatrix(l.Alpha).Transform(layer)

	dst := layer.Rect.Add(l.Origin).Intersect(canvas.Rect)
	Logger().Debug("layer blended",
		zap.String("path", l.Path),
		zap.Int("x", l.Origin.X),
		zap.Int("y", l.Origin.Y),
		zap.Float64("alpha", l.Alpha),
		zap.Bool("transparent", l.Transparent),
		zap.Bool("visible", !dst.Empty()),
	)
	for y := dst.Min.Y; y < dst.Max.Y; y++ {
		for x := dst.Min.X; x < dst.Max.X; x++ {
			s := layer.NRGBAAt(x-l.Origin.X, y-l.Origin.Y)
			canvas.SetNRGBA(x, y, over(s, canvas.NRGBAAt(x, y)))
		}
	}
}

// over composites s onto d (both non-premultiplied) with the source-over
// operator.
func over(s, d color.NRGBA) color.NRGBA {
	switch s.A {
	case 0:
		return d
	case 255:
		return s
	}
	sa := float64(s.A) / 255
	da := float64(d.A) / 255
	dw := da * (1 - sa)
	oa := sa + dw
	mix := func(sc, dc uint8) uint8 {
		return channel8((float64(sc)/255*sa + float64(dc)/255*dw) / oa)
	}
	return color.NRGBA{
		R: mix(s.R, d.R),
		G: mix(s.G, d.G),
		B: mix(s.B, d.B),
		A: channel8(oa),
	}
}

// Save writes canvas to target in the format selected by the target's
// extension. Nothing is written, and no error returned, when there is no
// canvas, no target, or the target's directory does not exist.
func Save(canvas *image.NRGBA, target string, opt Options) (bool, error) {
	if canvas == nil || target == "" {
		Logger().Debug("nothing to save", zap.Bool("canvas", canvas != nil), zap.String("target", target))
		return false, nil
	}
	dir := filepath.Dir(target)
	if fi, err := os.Stat(dir); err != nil || !fi.IsDir() {
		Logger().Debug("target directory missing", zap.String("dir", dir))
		return false, nil
	}
	format := utils.FormatFromPath(target, opt.LegacyFormat)
	if err := utils.SaveImage(canvas, target, format, opt.encodeOptions()); err != nil {
		return false, errors.Wrap(err, "layermerge: save")
	}
	Logger().Debug("canvas written", zap.String("path", target), zap.Stringer("format", format))
	return true, nil
}
