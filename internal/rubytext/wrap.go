package rubytext

import (
	"github.com/dshills/rubytext/internal/hyphenation"
)

// WrapWithHyphenation inserts newlines where ruler breaks the body for
// maxWidth. Ruby-annotated runs are kept on one line unless a single run is
// wider than maxWidth.
func (t RichText) WrapWithHyphenation(ruler *hyphenation.Ruler, maxWidth float64) (RichText, error) {
	spans := make([]hyphenation.Span, len(t.Rubies))
	for i, r := range t.Rubies {
		spans[i] = hyphenation.Span{Start: r.BodyStringRange.Start, End: r.BodyStringRange.End()}
	}

	breaks := ruler.Breaks(t.Body, maxWidth, spans)
	if len(breaks) == 0 {
		return t, nil
	}

	newline := New("\n")
	out := t
	for i := len(breaks) - 1; i >= 0; i-- {
		var err error
		if out, err = out.Insert(breaks[i], newline); err != nil {
			return RichText{}, err
		}
	}
	return out, nil
}
