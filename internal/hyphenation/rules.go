package hyphenation

import (
	"golang.org/x/text/width"
)

// Rules holds the configurable line-break prohibition (kinsoku) classes.
type Rules struct {
	// NoStart lists characters that must not begin a line.
	NoStart string
	// NoEnd lists characters that must not end a line.
	NoEnd string
	// NoSplit lists character classes. Two adjacent characters of the same
	// class are never separated.
	NoSplit []string
}

// DefaultRules returns the Japanese kinsoku rules used when none are
// configured.
func DefaultRules() Rules {
	return Rules{
		NoStart: ",)]}、〕〉》」』】〙〗〟’”｠»" +
			"ゝゞーァィゥェォッャュョヮヵヶぁぃぅぇぉっゃゅょゎゕゖ" +
			"ㇰㇱㇲㇳㇴㇵㇶㇷㇸㇹㇺㇻㇼㇽㇾㇿ々〻" +
			"‐゠–〜～?!‼⁇⁈⁉・:;/。. ",
		NoEnd: "([{〔〈《「『【〘〖〝‘“｟«",
		NoSplit: []string{
			"0123456789.,",
			"ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz",
			"—",
			"…",
			"‥",
			"〳〴〵",
		},
	}
}

// ruleSet is Rules compiled for lookup. Characters are compared after width
// folding, so full-width and half-width forms share a class.
type ruleSet struct {
	noStart map[rune]bool
	noEnd   map[rune]bool
	class   map[rune]int
}

func (r Rules) compile() ruleSet {
	rs := ruleSet{
		noStart: make(map[rune]bool),
		noEnd:   make(map[rune]bool),
		class:   make(map[rune]int),
	}
	for _, c := range r.NoStart {
		rs.noStart[fold(c)] = true
	}
	for _, c := range r.NoEnd {
		rs.noEnd[fold(c)] = true
	}
	for i, set := range r.NoSplit {
		for _, c := range set {
			rs.class[fold(c)] = i + 1
		}
	}
	return rs
}

// fold maps c to its canonical width form.
func fold(c rune) rune {
	for _, f := range width.Fold.String(string(c)) {
		return f
	}
	return c
}

// first returns the folded leading character of a grapheme cluster.
func first(cluster string) rune {
	for _, c := range cluster {
		return fold(c)
	}
	return 0
}

// canBreakBetween reports whether a line may end after prev and start
// with next.
func (rs ruleSet) canBreakBetween(prev, next string) bool {
	p, n := first(prev), first(next)
	if rs.noStart[n] || rs.noEnd[p] {
		return false
	}
	if cp, cn := rs.class[p], rs.class[n]; cp != 0 && cp == cn {
		return false
	}
	return true
}
