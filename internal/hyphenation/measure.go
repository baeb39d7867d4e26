package hyphenation

import (
	"fmt"

	"github.com/rivo/uniseg"
	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Style is a font style variant.
type Style uint8

const (
	StyleNormal Style = iota
	StyleBold
	StyleItalic
	StyleBoldItalic
)

// String returns the style name.
func (s Style) String() string {
	switch s {
	case StyleNormal:
		return "normal"
	case StyleBold:
		return "bold"
	case StyleItalic:
		return "italic"
	case StyleBoldItalic:
		return "bold-italic"
	default:
		return "unknown"
	}
}

// ParseStyle parses a style name. Unknown names map to StyleNormal.
func ParseStyle(s string) Style {
	switch s {
	case "bold":
		return StyleBold
	case "italic":
		return StyleItalic
	case "bold-italic", "bolditalic":
		return StyleBoldItalic
	default:
		return StyleNormal
	}
}

// FontKey identifies the font a width was measured with.
type FontKey struct {
	Font  string
	Size  float64
	Style Style
}

// String returns a human-readable representation of the key.
func (k FontKey) String() string {
	return fmt.Sprintf("%s/%g/%s", k.Font, k.Size, k.Style)
}

// Measurer measures the advance width of a grapheme cluster.
type Measurer interface {
	Measure(key FontKey, cluster string) float64
}

// MeasurerFunc adapts a function to the Measurer interface.
type MeasurerFunc func(key FontKey, cluster string) float64

// Measure calls f.
func (f MeasurerFunc) Measure(key FontKey, cluster string) float64 {
	return f(key, cluster)
}

// CellMeasurer measures clusters in monospace cells: narrow characters are
// one cell and East Asian wide characters two, scaled by the font size.
type CellMeasurer struct{}

// Measure implements Measurer.
func (CellMeasurer) Measure(key FontKey, cluster string) float64 {
	size := key.Size
	if size <= 0 {
		size = 1
	}
	return float64(uniseg.StringWidth(cluster)) * size
}

// FaceMeasurer measures clusters with font faces, one per FontKey.
type FaceMeasurer struct {
	faces    map[FontKey]font.Face
	fallback font.Face
}

// NewFaceMeasurer creates a FaceMeasurer that uses fallback for keys
// without a registered face.
func NewFaceMeasurer(fallback font.Face) *FaceMeasurer {
	return &FaceMeasurer{
		faces:    make(map[FontKey]font.Face),
		fallback: fallback,
	}
}

// AddFace registers the face used for key.
func (m *FaceMeasurer) AddFace(key FontKey, face font.Face) {
	m.faces[key] = face
}

// Measure implements Measurer. Glyphs missing from the face measure as the
// face's advance for U+FFFD, or zero if that is missing too.
func (m *FaceMeasurer) Measure(key FontKey, cluster string) float64 {
	face, ok := m.faces[key]
	if !ok {
		face = m.fallback
	}
	if face == nil {
		return 0
	}

	var adv fixed.Int26_6
	prev := rune(-1)
	for _, r := range cluster {
		if prev >= 0 {
			adv += face.Kern(prev, r)
		}
		a, ok := face.GlyphAdvance(r)
		if !ok {
			a, _ = face.GlyphAdvance('�')
		}
		adv += a
		prev = r
	}
	return float64(adv) / 64
}
