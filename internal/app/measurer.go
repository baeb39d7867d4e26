package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"

	"github.com/dshills/rubytext/internal/config"
	"github.com/dshills/rubytext/internal/hyphenation"
)

// defaultFaceSize is the point size used for font files when ruler.size is
// left at its cell default.
const defaultFaceSize = 16

// newMeasurer builds the width source named by ruler.measurer. The face
// measurer loads ruler.font when it names an OpenType or TrueType file and
// measures everything else with the fixed 7x13 face.
func newMeasurer(rc config.RulerConfig) (hyphenation.Measurer, error) {
	switch rc.Measurer {
	case config.MeasurerCell, "":
		return hyphenation.CellMeasurer{}, nil
	case config.MeasurerFace:
		m := hyphenation.NewFaceMeasurer(basicfont.Face7x13)
		if isFontFile(rc.Font) {
			face, err := loadFace(rc.Font, rc.Size)
			if err != nil {
				return nil, err
			}
			m.AddFace(rc.FontKey(), face)
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMeasurer, rc.Measurer)
	}
}

func isFontFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".ttf", ".otf":
		return true
	default:
		return false
	}
}

func loadFace(path string, size float64) (font.Face, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading font: %w", err)
	}
	f, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing font %s: %w", path, err)
	}
	if size <= 1 {
		size = defaultFaceSize
	}
	face, err := opentype.NewFace(f, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
	if err != nil {
		return nil, fmt.Errorf("creating face for %s: %w", path, err)
	}
	return face, nil
}
