package rubytext

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// Ruby is a phonetic annotation over a run of body text.
//
// TextPosition and TextLength locate the annotation inside the joined ruby
// text. BodyStringRange locates the annotated run inside the body.
type Ruby struct {
	TextPosition    int
	TextLength      int
	BodyStringRange Range
}

// NewRuby creates a Ruby.
func NewRuby(textPosition, textLength int, body Range) Ruby {
	return Ruby{TextPosition: textPosition, TextLength: textLength, BodyStringRange: body}
}

// TextRange returns the annotation's range inside the joined ruby text.
func (r Ruby) TextRange() Range {
	return Range{Start: r.TextPosition, Length: r.TextLength}
}

// String returns a human-readable representation of the ruby.
func (r Ruby) String() string {
	return fmt.Sprintf("Ruby(text=%s, body=%s)", r.TextRange(), r.BodyStringRange)
}

// StringWithRuby is a plain body string with out-of-band ruby annotations.
type StringWithRuby struct {
	Body           string
	Rubies         []Ruby
	JoinedRubyText string
}

// ParseRuby extracts {body:ruby} annotations from original.
//
// Text outside annotations is copied to the body verbatim. The annotation
// ends at the first '}' after its '{', and only the first two ':' fields are
// used, so a '{' inside an annotation is ordinary body text. A '{' without a
// closing '}', or an annotation without ':', is reported as a *ParseError.
func ParseRuby(original string) (StringWithRuby, error) {
	if strings.IndexByte(original, '{') < 0 {
		return StringWithRuby{Body: original}, nil
	}

	var body, joined strings.Builder
	var rubies []Ruby
	bodyLen, textLen := 0, 0

	rest := original
	consumed := 0
	for {
		open := strings.IndexByte(rest, '{')
		if open < 0 {
			body.WriteString(rest)
			break
		}

		plain := rest[:open]
		body.WriteString(plain)
		bodyLen += utf8.RuneCountInString(plain)

		end := strings.IndexByte(rest[open+1:], '}')
		if end < 0 {
			return StringWithRuby{}, &ParseError{
				Offset: utf8.RuneCountInString(original[:consumed+open]),
				Token:  rest[open:],
				Err:    ErrUnterminatedRuby,
			}
		}

		token := rest[open+1 : open+1+end]
		fields := strings.Split(token, ":")
		if len(fields) < 2 {
			return StringWithRuby{}, &ParseError{
				Offset: utf8.RuneCountInString(original[:consumed+open]),
				Token:  rest[open : open+end+2],
				Err:    ErrMissingRubySeparator,
			}
		}

		rubyBody, rubyText := fields[0], fields[1]
		rubyBodyLen := utf8.RuneCountInString(rubyBody)
		rubyTextLen := utf8.RuneCountInString(rubyText)

		rubies = append(rubies, Ruby{
			TextPosition:    textLen,
			TextLength:      rubyTextLen,
			BodyStringRange: Range{Start: bodyLen, Length: rubyBodyLen},
		})
		body.WriteString(rubyBody)
		joined.WriteString(rubyText)
		bodyLen += rubyBodyLen
		textLen += rubyTextLen

		next := open + end + 2
		rest = rest[next:]
		consumed += next
	}

	return StringWithRuby{
		Body:           body.String(),
		Rubies:         rubies,
		JoinedRubyText: joined.String(),
	}, nil
}

// RubyText returns the annotation text of the i-th ruby.
func (s StringWithRuby) RubyText(i int) string {
	return substring(s.JoinedRubyText, s.Rubies[i].TextRange())
}

// RubyBody returns the body text annotated by the i-th ruby.
func (s StringWithRuby) RubyBody(i int) string {
	return substring(s.Body, s.Rubies[i].BodyStringRange)
}

// Annotated re-inserts the ruby annotations into the body using the
// {body:ruby} notation. A ruby overlapping an already written one is
// omitted because braces cannot express overlap.
func (s StringWithRuby) Annotated() string {
	if len(s.Rubies) == 0 {
		return s.Body
	}

	body := []rune(s.Body)
	text := []rune(s.JoinedRubyText)

	var b strings.Builder
	cursor := 0
	for _, r := range s.Rubies {
		br := r.BodyStringRange
		if br.Start < cursor || br.End() > len(body) || r.TextPosition+r.TextLength > len(text) {
			continue
		}
		b.WriteString(string(body[cursor:br.Start]))
		b.WriteByte('{')
		b.WriteString(string(body[br.Start:br.End()]))
		b.WriteByte(':')
		b.WriteString(string(text[r.TextPosition : r.TextPosition+r.TextLength]))
		b.WriteByte('}')
		cursor = br.End()
	}
	b.WriteString(string(body[cursor:]))
	return b.String()
}

// substring returns the runes of s covered by r.
func substring(s string, r Range) string {
	return string([]rune(s)[r.Start:r.End()])
}

// runeLen returns the number of characters in s.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
