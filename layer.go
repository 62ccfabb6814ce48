// Package layermerge composites a sequence of images onto one canvas and
// writes the result in a format chosen from the target file extension.
//
// Each command line token is either a target marker or a layer:
//
//	/TARGET:<path>
//	<path>[,<x>,<y>[,<alphaPercent>[,<transparentFlag>]]]
//
// The first layer becomes the canvas. Every later layer is alpha blended
// onto it at its origin. The last target marker names the output file.
package layermerge

import (
	"fmt"
	"image"
	"os"
	"strconv"
	"strings"

	"go.uber.org/zap"
)

// TargetPrefix marks a token as the output path. Matched case-insensitively.
const TargetPrefix = "/TARGET:"

// Item is a parsed token: a Layer or a Target.
type Item interface {
	item()
}

// Layer is one input image with its placement and blending settings.
type Layer struct {
	Path string
	// Top-left corner of the layer on the canvas.
	Origin image.Point
	// Blend factor in [0,1].
	Alpha float64
	// Key out the layer's transparent color before blending.
	Transparent bool
}

// Target is the output file path.
type Target string

func (Layer) item()  {}
func (Target) item() {}

// NewLayer returns a layer with default placement: origin (0,0), full
// opacity, no color key.
func NewLayer(path string) Layer {
	return Layer{Path: path, Alpha: 1}
}

// ParseError reports a malformed numeric field in a layer token.
type ParseError struct {
	Token string
	Field string
	Err   error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("layermerge: token %q: bad %s: %v", e.Token, e.Field, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Parse converts command line tokens into items, keeping their order.
//
// Layer tokens whose path does not name an existing regular file are dropped
// without error. A malformed offset, alpha or transparency field returns a
// *ParseError.
func Parse(tokens []string) ([]Item, error) {
	items := make([]Item, 0, len(tokens))
	for _, tok := range tokens {
		if isTarget(tok) {
			items = append(items, Target(tok[len(TargetPrefix):]))
			continue
		}
		l, ok, err := parseLayer(tok)
		if err != nil {
			return nil, err
		}
		if !ok {
			Logger().Debug("skipping token, no such file", zap.String("token", tok))
			continue
		}
		items = append(items, l)
	}
	return items, nil
}

func isTarget(tok string) bool {
	return len(tok) >= len(TargetPrefix) && strings.EqualFold(tok[:len(TargetPrefix)], TargetPrefix)
}

func parseLayer(tok string) (Layer, bool, error) {
	parts := strings.Split(tok, ",")
	if !fileExists(parts[0]) {
		return Layer{}, false, nil
	}
	l := NewLayer(parts[0])
	var err error
	if len(parts) >= 3 {
		if l.Origin.X, err = parseInt(parts[1]); err != nil {
			return Layer{}, false, &ParseError{Token: tok, Field: "x offset", Err: err}
		}
		if l.Origin.Y, err = parseInt(parts[2]); err != nil {
			return Layer{}, false, &ParseError{Token: tok, Field: "y offset", Err: err}
		}
	}
	if len(parts) >= 4 {
		pct, err := parsePercent(parts[3])
		if err != nil {
			return Layer{}, false, &ParseError{Token: tok, Field: "alpha", Err: err}
		}
		l.Alpha = pct / 100
	}
	if len(parts) >= 5 {
		flag, err := parseInt(parts[4])
		if err != nil {
			return Layer{}, false, &ParseError{Token: tok, Field: "transparent flag", Err: err}
		}
		l.Transparent = flag == 1
	}
	return l, true, nil
}

// parseInt accepts a decimal 32-bit integer with optional surrounding space.
func parseInt(s string) (int, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 32)
	return int(n), err
}

// parsePercent accepts plain decimal floats. Go literal forms such as digit
// separators and hex mantissas are rejected.
func parsePercent(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if strings.ContainsAny(s, "_xXpP") {
		return 0, &strconv.NumError{Func: "ParseFloat", Num: s, Err: strconv.ErrSyntax}
	}
	return strconv.ParseFloat(s, 64)
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}
