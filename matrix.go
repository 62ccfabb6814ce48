package layermerge

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ColorMatrix is a 5×5 color transform applied to row vectors
// [r g b a 1] with channels normalized to [0,1]. Row 4 holds translations.
type ColorMatrix struct {
	m *mat.Dense
}

func IdentityColorMatrix() ColorMatrix {
	m := mat.NewDense(5, 5, nil)
	for i := 0; i < 5; i++ {
		m.Set(i, i, 1)
	}
	return ColorMatrix{m: m}
}

// AlphaMatrix scales the alpha channel by alpha and passes the color
// channels through unchanged.
func AlphaMatrix(alpha float64) ColorMatrix {
	cm := IdentityColorMatrix()
	cm.set(3, 3, alpha)
	return cm
}

func (cm ColorMatrix) set(i, j int, v float64) {
	cm.m.Set(i, j, v)
}

// Transform applies the matrix to every pixel of img in place. Results are
// clamped to [0,255]. A NaN result becomes 0.
func (cm ColorMatrix) Transform(img *image.NRGBA) {
	b := img.Bounds()
	w := b.Dx()
	if w == 0 || b.Dy() == 0 {
		return
	}
	row := mat.NewDense(w, 5, nil)
	out := mat.NewDense(w, 5, nil)
	for y := b.Min.Y; y < b.Max.Y; y++ {
		pix := img.Pix[img.PixOffset(b.Min.X, y):]
		for x := 0; x < w; x++ {
			i := x * 4
			row.Set(x, 0, float64(pix[i])/255)
			row.Set(x, 1, float64(pix[i+1])/255)
			row.Set(x, 2, float64(pix[i+2])/255)
			row.Set(x, 3, float64(pix[i+3])/255)
			row.Set(x, 4, 1)
		}
		out.Mul(row, cm.m)
		for x := 0; x < w; x++ {
			i := x * 4
			pix[i] = channel8(out.At(x, 0))
			pix[i+1] = channel8(out.At(x, 1))
			pix[i+2] = channel8(out.At(x, 2))
			pix[i+3] = channel8(out.At(x, 3))
		}
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func channel8(v float64) uint8 {
	return uint8(math.Round(clamp01(v) * 255))
}
