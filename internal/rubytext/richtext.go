package rubytext

import (
	"slices"
	"sort"
	"strings"
)

// RichText is a body string with out-of-band ruby annotations and markup
// tags. It is an immutable value: every operation returns a new RichText and
// leaves the receiver untouched. Slices held by a RichText are never written
// after construction, so values may share them.
type RichText struct {
	Body           string
	Rubies         []Ruby
	JoinedRubyText string
	Tags           []Tag
}

// New creates a RichText holding plain text.
func New(body string) RichText {
	return RichText{Body: body}
}

// FromStringWithRuby creates a tagless RichText from s.
func FromStringWithRuby(s StringWithRuby) RichText {
	return RichText{Body: s.Body, Rubies: s.Rubies, JoinedRubyText: s.JoinedRubyText}
}

// Parse parses {body:ruby} annotations and then <tag> markup out of original.
func Parse(original string) (RichText, error) {
	s, err := ParseRuby(original)
	if err != nil {
		return RichText{}, err
	}
	return ParseTags(s), nil
}

// MustParse is like Parse but panics on malformed input.
func MustParse(original string) RichText {
	rt, err := Parse(original)
	if err != nil {
		panic(err)
	}
	return rt
}

// Len returns the body length in characters.
func (t RichText) Len() int {
	return runeLen(t.Body)
}

// RubyCount returns the number of rubies.
func (t RichText) RubyCount() int {
	return len(t.Rubies)
}

// WithoutTags returns the body and rubies without tag information.
func (t RichText) WithoutTags() StringWithRuby {
	return StringWithRuby{Body: t.Body, Rubies: t.Rubies, JoinedRubyText: t.JoinedRubyText}
}

// RubyText returns the annotation text of the i-th ruby.
func (t RichText) RubyText(i int) string {
	return t.WithoutTags().RubyText(i)
}

// RubyBody returns the body text annotated by the i-th ruby.
func (t RichText) RubyBody(i int) string {
	return t.WithoutTags().RubyBody(i)
}

// Equal reports whether two values hold the same body, rubies and tags.
func (t RichText) Equal(other RichText) bool {
	return t.Body == other.Body &&
		t.JoinedRubyText == other.JoinedRubyText &&
		slices.Equal(t.Rubies, other.Rubies) &&
		slices.EqualFunc(t.Tags, other.Tags, Tag.Equal)
}

// Combine concatenates a and b. Offsets of b are moved past a's body and
// ruby text. Tags meeting at the seam render with a's literals first.
func Combine(a, b RichText) RichText {
	bodyShift := runeLen(a.Body)
	textShift := runeLen(a.JoinedRubyText)

	rubies := a.Rubies
	if len(b.Rubies) > 0 {
		rubies = make([]Ruby, 0, len(a.Rubies)+len(b.Rubies))
		rubies = append(rubies, a.Rubies...)
		for _, r := range b.Rubies {
			rubies = append(rubies, Ruby{
				TextPosition:    r.TextPosition + textShift,
				TextLength:      r.TextLength,
				BodyStringRange: r.BodyStringRange.Shift(bodyShift),
			})
		}
	}

	tags := a.Tags
	if len(b.Tags) > 0 {
		tags = make([]Tag, 0, len(a.Tags)+len(b.Tags))
		tags = append(tags, a.Tags...)
		for _, tg := range b.Tags {
			tags = append(tags, tg.withRange(tg.Range().Shift(bodyShift)))
		}
		if len(a.Tags) > 0 {
			left := layout(a.Tags)
			seqs := seqsOf(a.Tags, left)
			for _, sq := range seqsOf(b.Tags, layout(b.Tags)) {
				seqs = append(seqs, tagSeq{open: sq.open + len(left), close: sq.close + len(left)})
			}
			tags = orderTags(tags, seqs)
		}
	}

	return RichText{
		Body:           a.Body + b.Body,
		Rubies:         rubies,
		JoinedRubyText: a.JoinedRubyText + b.JoinedRubyText,
		Tags:           tags,
	}
}

// Append returns t followed by other.
func (t RichText) Append(other RichText) RichText {
	return Combine(t, other)
}

// Substring returns the part of t covering [start, start+length).
//
// Rubies survive only when their whole body range lies inside the window.
// Tags overlapping the window are clamped to it; tags outside it are dropped.
// Unterminated and empty tags survive when their position is inside the
// window, or at its end when the window reaches the end of the body. A
// zero-width tag at the end of a window that stops short of the body end
// belongs to the text after the window and is dropped, so Substring(0, 2)
// of "ab<x>cd" is "ab".
func (t RichText) Substring(start, length int) (RichText, error) {
	body := []rune(t.Body)
	if start < 0 || length < 0 || start+length > len(body) {
		return RichText{}, rangeError("Substring", start, length, len(body))
	}

	window := Range{Start: start, Length: length}
	end := window.End()

	entries := make([]rubyEntry, 0, len(t.Rubies))
	joined := []rune(t.JoinedRubyText)
	for _, r := range t.Rubies {
		if !window.ContainsRange(r.BodyStringRange) {
			continue
		}
		entries = append(entries, rubyEntry{
			body: r.BodyStringRange.Shift(-start),
			text: joined[r.TextPosition : r.TextPosition+r.TextLength],
		})
	}
	rubies, text := joinRubies(entries)

	var tags []Tag
	var seqs []tagSeq
	all := seqsOf(t.Tags, layout(t.Tags))
	for i, tg := range t.Tags {
		r := tg.Range()
		if r.Length == 0 {
			pos := r.Start
			if (pos >= start && pos < end) || (pos == end && end == len(body)) {
				tags = append(tags, tg.withRange(Range{Start: pos - start}))
				seqs = append(seqs, all[i])
			}
			continue
		}
		s := max(r.Start, start)
		e := min(r.End(), end)
		if e <= s {
			continue
		}
		tags = append(tags, tg.withRange(Range{Start: s - start, Length: e - s}))
		seqs = append(seqs, all[i])
	}

	return RichText{
		Body:           string(body[start:end]),
		Rubies:         rubies,
		JoinedRubyText: text,
		Tags:           orderTags(tags, seqs),
	}, nil
}

// Remove deletes count characters starting at start.
//
// Ruby and tag ranges are trimmed with TrimRange. A ruby or paired tag whose
// non-empty range collapses is dropped; unterminated tags are never dropped.
// A surviving ruby keeps its whole annotation text even when part of its
// body is deleted.
func (t RichText) Remove(start, count int) (RichText, error) {
	size := t.Len()
	if start < 0 || count < 0 || start+count > size {
		return RichText{}, rangeError("Remove", start, count, size)
	}
	return t.remove(Range{Start: start, Length: count}), nil
}

func (t RichText) remove(removed Range) RichText {
	body := []rune(t.Body)
	joined := []rune(t.JoinedRubyText)

	entries := make([]rubyEntry, 0, len(t.Rubies))
	for _, r := range t.Rubies {
		trimmed := TrimRange(r.BodyStringRange, removed)
		if trimmed.Length == 0 && r.BodyStringRange.Length > 0 {
			continue
		}
		entries = append(entries, rubyEntry{
			body: trimmed,
			text: joined[r.TextPosition : r.TextPosition+r.TextLength],
		})
	}
	rubies, text := joinRubies(entries)

	tags := make([]Tag, 0, len(t.Tags))
	seqs := make([]tagSeq, 0, len(t.Tags))
	all := seqsOf(t.Tags, layout(t.Tags))
	for i, tg := range t.Tags {
		r := tg.Range()
		trimmed := TrimRange(r, removed)
		if tg.IsTerminated() && trimmed.Length == 0 {
			if r.Length > 0 || (r.Start > removed.Start && r.Start < removed.End()) {
				continue
			}
		}
		tags = append(tags, tg.withRange(trimmed))
		seqs = append(seqs, all[i])
	}

	var b strings.Builder
	b.WriteString(string(body[:removed.Start]))
	b.WriteString(string(body[removed.End():]))

	return RichText{
		Body:           b.String(),
		Rubies:         rubies,
		JoinedRubyText: text,
		Tags:           orderTags(tags, seqs),
	}
}

// Insert splices other into t at start.
//
// Rubies and tags of t that span the insertion point widen to absorb the
// inserted text; those starting at or after it move right. At the insertion
// point the tags of other render after the closings and zero-width tags of
// t that stay there. The rubies of other are moved into the new
// coordinates, and all rubies are re-sorted by body start so that the joined
// ruby text follows body order.
func (t RichText) Insert(start int, other RichText) (RichText, error) {
	body := []rune(t.Body)
	if start < 0 || start > len(body) {
		return RichText{}, rangeError("Insert", start, 0, len(body))
	}

	n := runeLen(other.Body)
	joined := []rune(t.JoinedRubyText)
	otherJoined := []rune(other.JoinedRubyText)

	entries := make([]rubyEntry, 0, len(t.Rubies)+len(other.Rubies))
	for _, r := range t.Rubies {
		entries = append(entries, rubyEntry{
			body: ShiftForInsert(r.BodyStringRange, start, n),
			text: joined[r.TextPosition : r.TextPosition+r.TextLength],
		})
	}
	for _, r := range other.Rubies {
		entries = append(entries, rubyEntry{
			body: r.BodyStringRange.Shift(start),
			text: otherJoined[r.TextPosition : r.TextPosition+r.TextLength],
		})
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].body.Start < entries[j].body.Start
	})
	rubies, text := joinRubies(entries)

	tags := make([]Tag, 0, len(t.Tags)+len(other.Tags))
	for _, tg := range t.Tags {
		tags = append(tags, tg.withRange(ShiftForInsert(tg.Range(), start, n)))
	}
	for _, tg := range other.Tags {
		tags = append(tags, tg.withRange(tg.Range().Shift(start)))
	}
	tags = orderTags(tags, insertionSeqs(t.Tags, other.Tags, tags, start))

	var b strings.Builder
	b.WriteString(string(body[:start]))
	b.WriteString(other.Body)
	b.WriteString(string(body[start:]))

	return RichText{
		Body:           b.String(),
		Rubies:         rubies,
		JoinedRubyText: text,
		Tags:           tags,
	}, nil
}

// insertionSeqs returns the document positions of the literals of moved,
// which holds the tags of t shifted for an insertion at start followed by
// the tags of other moved to start.
func insertionSeqs(t, other, moved []Tag, start int) []tagSeq {
	type placed struct {
		index, phase, rank int
		lit                literal
	}

	all := make([]placed, 0, 2*len(moved))
	for rank, l := range layout(t) {
		tg := moved[l.tag]
		index := tg.LeftIndex
		if l.closing {
			index = tg.RightIndex
		}
		phase := 0
		if l.index > start || (l.index == start && !l.closing && t[l.tag].spansText()) {
			phase = 2
		}
		all = append(all, placed{index: index, phase: phase, rank: rank, lit: literal{index: index, tag: l.tag, closing: l.closing}})
	}
	for rank, l := range layout(other) {
		lit := literal{index: l.index + start, tag: len(t) + l.tag, closing: l.closing}
		all = append(all, placed{index: lit.index, phase: 1, rank: rank, lit: lit})
	}

	sort.Slice(all, func(i, j int) bool {
		x, y := all[i], all[j]
		if x.index != y.index {
			return x.index < y.index
		}
		if x.phase != y.phase {
			return x.phase < y.phase
		}
		return x.rank < y.rank
	})

	lits := make([]literal, len(all))
	for i, p := range all {
		lits[i] = p.lit
	}
	return seqsOf(moved, lits)
}

// InsertString inserts plain text at start.
func (t RichText) InsertString(start int, s string) (RichText, error) {
	return t.Insert(start, New(s))
}

// RemoveRubyAt removes the i-th ruby and its annotation text. The body and
// tags are unchanged.
func (t RichText) RemoveRubyAt(i int) (RichText, error) {
	if i < 0 || i >= len(t.Rubies) {
		return RichText{}, ErrIndexOutOfRange
	}

	removed := t.Rubies[i]
	rubies := make([]Ruby, 0, len(t.Rubies)-1)
	rubies = append(rubies, t.Rubies[:i]...)
	for _, r := range t.Rubies[i+1:] {
		r.TextPosition -= removed.TextLength
		rubies = append(rubies, r)
	}

	joined := []rune(t.JoinedRubyText)
	var b strings.Builder
	b.WriteString(string(joined[:removed.TextPosition]))
	b.WriteString(string(joined[removed.TextPosition+removed.TextLength:]))

	return RichText{
		Body:           t.Body,
		Rubies:         rubies,
		JoinedRubyText: b.String(),
		Tags:           t.Tags,
	}, nil
}

// InsertTag returns t with tag added. Positions are not validated.
func (t RichText) InsertTag(tag Tag) RichText {
	return t.InsertTags(tag)
}

// InsertTags returns t with tags added. Positions are not validated.
func (t RichText) InsertTags(tags ...Tag) RichText {
	if len(tags) == 0 {
		return t
	}
	t.Tags = slices.Concat(t.Tags, tags)
	return t
}

// rubyEntry is a ruby body range paired with its annotation text while the
// joined ruby text is being rebuilt.
type rubyEntry struct {
	body Range
	text []rune
}

// joinRubies concatenates the annotation texts of entries in order and
// assigns contiguous text positions.
func joinRubies(entries []rubyEntry) ([]Ruby, string) {
	if len(entries) == 0 {
		return nil, ""
	}

	rubies := make([]Ruby, len(entries))
	var b strings.Builder
	pos := 0
	for i, e := range entries {
		rubies[i] = Ruby{
			TextPosition:    pos,
			TextLength:      len(e.text),
			BodyStringRange: e.body,
		}
		b.WriteString(string(e.text))
		pos += len(e.text)
	}
	return rubies, b.String()
}
