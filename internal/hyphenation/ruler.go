package hyphenation

import (
	"unicode/utf8"

	"github.com/rivo/uniseg"
)

// epsilon absorbs floating point error when comparing widths.
const epsilon = 1e-9

// Span is a half-open character range [Start, End) that must not be broken.
type Span struct {
	Start int
	End   int
}

// Ruler computes line-break positions for a width budget.
//
// A Ruler caches cluster widths for its current FontKey. Changing the key
// with SetFont discards the cache. A Ruler is meant for a single owner and
// is not safe for concurrent use.
type Ruler struct {
	rules    ruleSet
	measurer Measurer
	key      FontKey
	cache    map[string]float64
}

// NewRuler creates a Ruler. A nil measurer defaults to CellMeasurer.
func NewRuler(rules Rules, measurer Measurer) *Ruler {
	if measurer == nil {
		measurer = CellMeasurer{}
	}
	return &Ruler{
		rules:    rules.compile(),
		measurer: measurer,
		key:      FontKey{Size: 1},
		cache:    make(map[string]float64),
	}
}

// Font returns the current font key.
func (r *Ruler) Font() FontKey {
	return r.key
}

// SetFont switches the font used for measuring. The width cache is cleared
// when the key changes.
func (r *Ruler) SetFont(key FontKey) {
	if key == r.key {
		return
	}
	r.key = key
	clear(r.cache)
}

// CacheLen returns the number of cached cluster widths.
func (r *Ruler) CacheLen() int {
	return len(r.cache)
}

// Width returns the advance width of a grapheme cluster.
func (r *Ruler) Width(cluster string) float64 {
	if w, ok := r.cache[cluster]; ok {
		return w
	}
	w := r.measurer.Measure(r.key, cluster)
	r.cache[cluster] = w
	return w
}

// MeasureString returns the total advance width of s.
func (r *Ruler) MeasureString(s string) float64 {
	total := 0.0
	for _, c := range segment(s) {
		if !c.newline {
			total += r.Width(c.text)
		}
	}
	return total
}

// cluster is one grapheme cluster of the text being broken.
type cluster struct {
	text    string
	start   int // character offset
	newline bool
}

func segment(text string) []cluster {
	var clusters []cluster
	state := -1
	offset := 0
	for rest := text; len(rest) > 0; {
		var c string
		c, rest, _, state = uniseg.StepString(rest, state)
		clusters = append(clusters, cluster{
			text:    c,
			start:   offset,
			newline: c == "\n" || c == "\r\n" || c == "\r",
		})
		offset += utf8.RuneCountInString(c)
	}
	return clusters
}

// Breaks returns the ascending character offsets at which a newline must be
// inserted so that no line of text is wider than maxWidth.
//
// Lines are filled greedily with words: runs of clusters between break
// opportunities. A break opportunity exists between two clusters unless the
// kinsoku rules forbid it or it falls strictly inside one of the
// unsplittable spans. Existing newlines end a line. A word wider than
// maxWidth on its own is broken between clusters as a last resort.
// A non-positive maxWidth disables wrapping.
func (r *Ruler) Breaks(text string, maxWidth float64, unsplittable []Span) []int {
	if maxWidth <= 0 || text == "" {
		return nil
	}

	clusters := segment(text)
	size := utf8.RuneCountInString(text)

	blocked := make([]bool, size+1)
	for _, s := range unsplittable {
		for p := max(s.Start+1, 0); p < s.End && p <= size; p++ {
			blocked[p] = true
		}
	}

	canBreak := func(i int) bool {
		if blocked[clusters[i].start] {
			return false
		}
		return r.rules.canBreakBetween(clusters[i-1].text, clusters[i].text)
	}

	var breaks []int
	lineWidth := 0.0
	for i := 0; i < len(clusters); {
		if clusters[i].newline {
			lineWidth = 0
			i++
			continue
		}

		j := i + 1
		for j < len(clusters) && !clusters[j].newline && !canBreak(j) {
			j++
		}

		wordWidth := 0.0
		for k := i; k < j; k++ {
			wordWidth += r.Width(clusters[k].text)
		}

		switch {
		case lineWidth+wordWidth <= maxWidth+epsilon:
			lineWidth += wordWidth
		case wordWidth <= maxWidth+epsilon:
			if lineWidth > 0 {
				breaks = append(breaks, clusters[i].start)
			}
			lineWidth = wordWidth
		default:
			if lineWidth > 0 {
				breaks = append(breaks, clusters[i].start)
				lineWidth = 0
			}
			for k := i; k < j; k++ {
				w := r.Width(clusters[k].text)
				if lineWidth > 0 && lineWidth+w > maxWidth+epsilon {
					breaks = append(breaks, clusters[k].start)
					lineWidth = 0
				}
				lineWidth += w
			}
		}
		i = j
	}
	return breaks
}
