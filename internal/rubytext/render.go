package rubytext

import (
	"maps"
	"slices"
	"strings"
)

// literal is one tag text placed back into the body.
type literal struct {
	index   int  // body offset
	tag     int  // position in the tag slice
	closing bool // closing text of a paired tag
}

func (l literal) text(tags []Tag) string {
	if l.closing {
		return *tags[l.tag].Right
	}
	return tags[l.tag].Left
}

// layout returns the literal texts of tags in document order.
//
// At one body offset, closings of tags that end there come first, earliest
// tag first, and openings of tags that start there come last, latest tag
// first, so later tags enclose earlier ones. A zero-width tag (unterminated,
// or an empty pair) stands before the first closing whose tag comes after it,
// or else after every opening whose tag comes after it. Zero-width tags in
// the same place keep slice order, and consecutive empty pairs nest with the
// first one innermost.
func layout(tags []Tag) []literal {
	byOffset := make(map[int][]int)
	for i, tg := range tags {
		byOffset[tg.LeftIndex] = append(byOffset[tg.LeftIndex], i)
		if tg.spansText() {
			byOffset[tg.RightIndex] = append(byOffset[tg.RightIndex], i)
		}
	}

	lits := make([]literal, 0, 2*len(tags))
	for _, index := range slices.Sorted(maps.Keys(byOffset)) {
		lits = layoutOffset(lits, tags, index, byOffset[index])
	}
	return lits
}

// layoutOffset appends the literals at one body offset. ids is ascending.
func layoutOffset(lits []literal, tags []Tag, index int, ids []int) []literal {
	var closings, openings, zero []int
	for _, i := range ids {
		switch tg := tags[i]; {
		case !tg.spansText():
			zero = append(zero, i)
		case tg.RightIndex == index:
			closings = append(closings, i)
		default:
			openings = append(openings, i)
		}
	}
	slices.Reverse(openings)

	before := make([][]int, len(closings))
	after := make([][]int, len(openings)+1)
	for _, i := range zero {
		if k := countBelow(closings, i); k < len(closings) {
			before[k] = append(before[k], i)
			continue
		}
		k := len(openings) - countBelow(openings, i)
		after[k] = append(after[k], i)
	}

	for k, i := range closings {
		lits = appendZeroWidth(lits, tags, index, before[k])
		lits = append(lits, literal{index: index, tag: i, closing: true})
	}
	for k, i := range openings {
		lits = appendZeroWidth(lits, tags, index, after[k])
		lits = append(lits, literal{index: index, tag: i})
	}
	return appendZeroWidth(lits, tags, index, after[len(openings)])
}

func countBelow(ids []int, i int) int {
	n := 0
	for _, id := range ids {
		if id < i {
			n++
		}
	}
	return n
}

// appendZeroWidth appends zero-width tags in order. A run of empty pairs is
// written nested, the first pair of the run innermost.
func appendZeroWidth(lits []literal, tags []Tag, index int, ids []int) []literal {
	var run []int
	flush := func() {
		for _, i := range slices.Backward(run) {
			lits = append(lits, literal{index: index, tag: i})
		}
		for _, i := range run {
			lits = append(lits, literal{index: index, tag: i, closing: true})
		}
		run = run[:0]
	}

	for _, i := range ids {
		if tags[i].IsTerminated() {
			run = append(run, i)
			continue
		}
		flush()
		lits = append(lits, literal{index: index, tag: i})
	}
	flush()
	return lits
}

// ToStringWithRuby puts every tag's literal text back into the body and
// moves the ruby ranges accordingly.
func (t RichText) ToStringWithRuby() StringWithRuby {
	if len(t.Tags) == 0 {
		return t.WithoutTags()
	}

	lits := layout(t.Tags)

	var rubies []Ruby
	if len(t.Rubies) > 0 {
		rubies = slices.Clone(t.Rubies)
		for _, l := range slices.Backward(lits) {
			n := runeLen(l.text(t.Tags))
			for i := range rubies {
				rubies[i].BodyStringRange = ShiftForInsert(rubies[i].BodyStringRange, l.index, n)
			}
		}
	}

	body := []rune(t.Body)
	var b strings.Builder
	cursor := 0
	for _, l := range lits {
		index := min(max(l.index, cursor), len(body))
		b.WriteString(string(body[cursor:index]))
		b.WriteString(l.text(t.Tags))
		cursor = index
	}
	b.WriteString(string(body[cursor:]))

	return StringWithRuby{
		Body:           b.String(),
		Rubies:         rubies,
		JoinedRubyText: t.JoinedRubyText,
	}
}

// String renders t as markup: tags are put back and rubies are written in
// {body:ruby} notation.
func (t RichText) String() string {
	return t.ToStringWithRuby().Annotated()
}
