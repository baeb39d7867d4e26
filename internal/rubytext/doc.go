// Package rubytext models text annotated with ruby (furigana) and markup tags.
//
// Source text uses two notations:
//
//	{漢字:かんじ}       a ruby annotation over a run of body text
//	<b>...</b>          a markup tag, matched by name
//
// Parse moves both out of band. The result is a RichText: a plain Body, the
// Rubies with their ranges, the JoinedRubyText holding every annotation in
// body order, and the Tags with their positions in the body.
//
//	rt, err := rubytext.Parse("<b>{上等だ:ハイ・クラス}</b>！！")
//	// rt.Body           == "上等だ！！"
//	// rt.JoinedRubyText == "ハイ・クラス"
//	// rt.String()       == "<b>{上等だ:ハイ・クラス}</b>！！"
//
// # Offsets
//
// All offsets and lengths count characters (runes), not bytes.
//
// # Immutability
//
// RichText is a value. Substring, Remove, Insert, Combine, RemoveRubyAt and
// the tag operations return a new RichText with every ruby and tag range
// recomputed; the receiver is never modified.
//
// ToStringWithRuby puts the tags back into the body for display while
// keeping the rubies out of band.
package rubytext
