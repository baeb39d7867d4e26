package rubytext

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

// MarshalJSON encodes t as
//
//	{"body":..., "joinedRubyText":..., "rubies":[...], "tags":[...]}
//
// Unterminated tags have no "right" member.
func (t RichText) MarshalJSON() ([]byte, error) {
	doc := `{"rubies":[],"tags":[]}`
	var err error

	if doc, err = sjson.Set(doc, "body", t.Body); err != nil {
		return nil, err
	}
	if doc, err = sjson.Set(doc, "joinedRubyText", t.JoinedRubyText); err != nil {
		return nil, err
	}

	for _, r := range t.Rubies {
		obj, err := jsonObject(
			"textPosition", r.TextPosition,
			"textLength", r.TextLength,
			"bodyStart", r.BodyStringRange.Start,
			"bodyLength", r.BodyStringRange.Length,
		)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRaw(doc, "rubies.-1", obj); err != nil {
			return nil, err
		}
	}

	for _, tg := range t.Tags {
		kv := []any{"leftIndex", tg.LeftIndex, "left", tg.Left, "rightIndex", tg.RightIndex}
		if tg.Right != nil {
			kv = append(kv, "right", *tg.Right)
		}
		obj, err := jsonObject(kv...)
		if err != nil {
			return nil, err
		}
		if doc, err = sjson.SetRaw(doc, "tags.-1", obj); err != nil {
			return nil, err
		}
	}

	return []byte(doc), nil
}

// jsonObject builds a JSON object from alternating keys and values.
func jsonObject(kv ...any) (string, error) {
	if len(kv)%2 != 0 {
		return "", fmt.Errorf("odd key/value count %d", len(kv))
	}
	obj := "{}"
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return "", fmt.Errorf("key %v is not a string", kv[i])
		}
		var err error
		if obj, err = sjson.Set(obj, key, kv[i+1]); err != nil {
			return "", fmt.Errorf("set %q: %w", key, err)
		}
	}
	return obj, nil
}

// UnmarshalJSON decodes the form written by MarshalJSON.
func (t *RichText) UnmarshalJSON(data []byte) error {
	rt, err := FromJSON(data)
	if err != nil {
		return err
	}
	*t = rt
	return nil
}

// FromJSON decodes a RichText from the form written by MarshalJSON and
// checks that every range fits inside its string.
func FromJSON(data []byte) (RichText, error) {
	if !gjson.ValidBytes(data) {
		return RichText{}, ErrInvalidJSON
	}
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return RichText{}, ErrInvalidJSON
	}

	rt := RichText{
		Body:           doc.Get("body").String(),
		JoinedRubyText: doc.Get("joinedRubyText").String(),
	}
	bodyLen := runeLen(rt.Body)
	textLen := runeLen(rt.JoinedRubyText)

	var err error
	doc.Get("rubies").ForEach(func(_, v gjson.Result) bool {
		r := Ruby{
			TextPosition: int(v.Get("textPosition").Int()),
			TextLength:   int(v.Get("textLength").Int()),
			BodyStringRange: Range{
				Start:  int(v.Get("bodyStart").Int()),
				Length: int(v.Get("bodyLength").Int()),
			},
		}
		if !fits(r.TextRange(), textLen) || !fits(r.BodyStringRange, bodyLen) {
			err = fmt.Errorf("ruby %s: %w", r, ErrInvalidJSON)
			return false
		}
		rt.Rubies = append(rt.Rubies, r)
		return true
	})
	if err != nil {
		return RichText{}, err
	}

	doc.Get("tags").ForEach(func(_, v gjson.Result) bool {
		tg := Tag{
			LeftIndex:  int(v.Get("leftIndex").Int()),
			Left:       v.Get("left").String(),
			RightIndex: int(v.Get("rightIndex").Int()),
		}
		if right := v.Get("right"); right.Exists() {
			s := right.String()
			tg.Right = &s
		} else {
			tg.RightIndex = tg.LeftIndex
		}
		if tg.RightIndex < tg.LeftIndex || !fits(tg.Range(), bodyLen) {
			err = fmt.Errorf("%s: %w", tg, ErrInvalidJSON)
			return false
		}
		rt.Tags = append(rt.Tags, tg)
		return true
	})
	if err != nil {
		return RichText{}, err
	}

	return rt, nil
}

func fits(r Range, size int) bool {
	return r.Start >= 0 && r.Length >= 0 && r.End() <= size
}
