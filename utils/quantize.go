package utils

import (
	"image"
	"image/color"
	"image/color/palette"
	"math"
	"slices"

	"github.com/muesli/clusters"
	"github.com/muesli/kmeans"
)

// KMeansQuantizer builds a GIF palette from k-means cluster centers of the
// image's opaque pixels. Fully transparent pixels, if any, get one palette
// slot of their own.
type KMeansQuantizer struct {
	// MaxSamples caps the number of pixels fed to k-means. Zero means 12000.
	MaxSamples int
}

func (q KMeansQuantizer) Quantize(p color.Palette, m image.Image) color.Palette {
	k := cap(p) - len(p)
	if k <= 0 {
		return p
	}

	b := m.Bounds()
	width, height := b.Dx(), b.Dy()
	if width == 0 || height == 0 {
		return p
	}

	// Subsample to keep kmeans tractable on large images.
	maxSamples := q.MaxSamples
	if maxSamples <= 0 {
		maxSamples = 12000
	}
	step := 1
	if width*height > maxSamples {
		step = int(math.Sqrt(float64(width*height)/float64(maxSamples))) + 1
	}

	hasTransparent := false
	dataset := make(clusters.Observations, 0, min(width*height, maxSamples))
	for y := b.Min.Y; y < b.Max.Y; y += step {
		for x := b.Min.X; x < b.Max.X; x += step {
			r16, g16, b16, a16 := m.At(x, y).RGBA()
			if a16 == 0 {
				hasTransparent = true
				continue
			}
			// Un-premultiply so translucent pixels cluster by hue.
			dataset = append(dataset, clusters.Coordinates{
				float64(r16) / float64(a16),
				float64(g16) / float64(a16),
				float64(b16) / float64(a16),
			})
		}
	}
	if hasTransparent {
		p = append(p, color.NRGBA{})
		k--
	}
	if len(dataset) == 0 || k <= 0 {
		return p
	}

	workK := min(k, len(dataset))
	cc, err := kmeans.New().Partition(dataset, workK)
	if err != nil || len(cc) == 0 {
		return append(p, palette.Plan9[:k]...)
	}

	// Sort by cluster population so dominant colors come first.
	slices.SortFunc(cc, func(a, b clusters.Cluster) int {
		return len(b.Observations) - len(a.Observations)
	})

	for _, c := range cc {
		if len(c.Center) < 3 || len(c.Observations) == 0 {
			continue
		}
		p = append(p, color.NRGBA{
			R: unit8(c.Center[0]),
			G: unit8(c.Center[1]),
			B: unit8(c.Center[2]),
			A: 255,
		})
	}
	return p
}

func unit8(v float64) uint8 {
	return uint8(max(0, min(255, math.Round(v*255))))
}
