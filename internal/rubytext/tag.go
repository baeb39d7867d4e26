package rubytext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Tag is a markup span over the body, kept out of band.
//
// Left and Right hold the literal opening and closing tag text. A tag whose
// closing was never found has a nil Right and RightIndex equal to LeftIndex;
// it is preserved and rendered back as literal text.
type Tag struct {
	LeftIndex  int
	Left       string
	RightIndex int
	Right      *string
}

// NewTag creates a paired tag.
func NewTag(leftIndex int, left string, rightIndex int, right string) Tag {
	return Tag{LeftIndex: leftIndex, Left: left, RightIndex: rightIndex, Right: &right}
}

// NewUnterminatedTag creates a tag with no closing part.
func NewUnterminatedTag(index int, left string) Tag {
	return Tag{LeftIndex: index, Left: left, RightIndex: index}
}

// IsTerminated returns true if the tag has a closing part.
func (t Tag) IsTerminated() bool {
	return t.Right != nil
}

// spansText reports whether the tag's opening and closing sit at
// different offsets.
func (t Tag) spansText() bool {
	return t.Right != nil && t.RightIndex != t.LeftIndex
}

// Range returns the body range enclosed by the tag.
func (t Tag) Range() Range {
	return Range{Start: t.LeftIndex, Length: t.RightIndex - t.LeftIndex}
}

// withRange returns a copy of t enclosing r. Unterminated tags stay
// self-referential.
func (t Tag) withRange(r Range) Tag {
	t.LeftIndex = r.Start
	if t.Right == nil {
		t.RightIndex = r.Start
	} else {
		t.RightIndex = r.End()
	}
	return t
}

// Equal reports whether two tags have the same positions and text.
func (t Tag) Equal(other Tag) bool {
	if t.LeftIndex != other.LeftIndex || t.RightIndex != other.RightIndex || t.Left != other.Left {
		return false
	}
	if t.Right == nil || other.Right == nil {
		return t.Right == nil && other.Right == nil
	}
	return *t.Right == *other.Right
}

// String returns a human-readable representation of the tag.
func (t Tag) String() string {
	if t.Right == nil {
		return fmt.Sprintf("Tag(%d %q, unterminated)", t.LeftIndex, t.Left)
	}
	return fmt.Sprintf("Tag(%d %q, %d %q)", t.LeftIndex, t.Left, t.RightIndex, *t.Right)
}

// tagSpan is a tag literal found in a body, in character offsets.
type tagSpan struct {
	start  int
	length int
	text   string
}

// scanTags finds every <...> literal in body. A '<' without a later '>'
// ends the scan; a literal with an empty name is left as text.
func scanTags(body string) []tagSpan {
	var spans []tagSpan
	rest := body
	offset := 0
	for {
		open := strings.IndexByte(rest, '<')
		if open < 0 {
			break
		}
		end := strings.IndexByte(rest[open:], '>')
		if end < 0 {
			break
		}

		text := rest[open : open+end+1]
		start := offset + utf8.RuneCountInString(rest[:open])
		length := utf8.RuneCountInString(text)
		if name, _ := tagName(text); name != "" {
			spans = append(spans, tagSpan{start: start, length: length, text: text})
		}

		offset = start + length
		rest = rest[open+end+1:]
	}
	return spans
}

// tagName returns the name of a tag literal and whether it is a closing tag.
// "</ b>" and "</b>" are closings of "b"; "<color=red>" opens "color".
func tagName(text string) (name string, closing bool) {
	inner := strings.TrimSpace(text[1 : len(text)-1])
	if strings.HasPrefix(inner, "/") {
		closing = true
		inner = inner[1:]
	}
	if i := strings.IndexByte(inner, '='); i >= 0 {
		inner = inner[:i]
	}
	return strings.TrimSpace(inner), closing
}

// ParseTags moves the tag literals of s.Body out of band.
//
// Openings and closings are matched by name with one stack per name, so
// crossing tags such as "<b><a>x</b></a>" pair up by name rather than by
// position. Tag positions are offsets into the tag-free body. Openings that
// are never closed, and closings with nothing to close, become unterminated
// tags and render back as literal text where they stood.
func ParseTags(s StringWithRuby) RichText {
	rt := RichText{Body: s.Body, Rubies: s.Rubies, JoinedRubyText: s.JoinedRubyText}

	spans := scanTags(s.Body)
	if len(spans) == 0 {
		return rt
	}

	type opening struct {
		text string
		pos  int
		seq  int
	}

	stacks := make(map[string][]opening)
	var tags []Tag
	var seqs []tagSeq

	removed := 0
	for seq, sp := range spans {
		pos := sp.start - removed
		removed += sp.length

		name, closing := tagName(sp.text)
		if !closing {
			stacks[name] = append(stacks[name], opening{text: sp.text, pos: pos, seq: seq})
			continue
		}

		stack := stacks[name]
		if len(stack) == 0 {
			tags = append(tags, NewUnterminatedTag(pos, sp.text))
			seqs = append(seqs, tagSeq{open: seq, close: seq})
			continue
		}
		open := stack[len(stack)-1]
		stacks[name] = stack[:len(stack)-1]
		tags = append(tags, NewTag(open.pos, open.text, pos, sp.text))
		seqs = append(seqs, tagSeq{open: open.seq, close: seq})
	}

	for _, stack := range stacks {
		for _, o := range stack {
			tags = append(tags, NewUnterminatedTag(o.pos, o.text))
			seqs = append(seqs, tagSeq{open: o.seq, close: o.seq})
		}
	}

	for i := len(spans) - 1; i >= 0; i-- {
		rt = rt.remove(Range{Start: spans[i].start, Length: spans[i].length})
	}
	return rt.InsertTags(orderTags(tags, seqs)...)
}
