// Package hyphenation computes line-break positions for Japanese text.
//
// A Ruler fills lines greedily under a width budget while honouring kinsoku
// (line-break prohibition) rules: characters that must not start a line,
// characters that must not end a line, and character classes whose runs
// must stay together. Grapheme clusters are never split.
//
// Basic usage:
//
//	r := hyphenation.NewRuler(hyphenation.DefaultRules(), hyphenation.CellMeasurer{})
//	r.SetFont(hyphenation.FontKey{Font: "mono", Size: 1})
//	breaks := r.Breaks("吾輩は猫である。名前はまだ無い。", 10, nil)
//
// Widths come from a Measurer. CellMeasurer counts terminal cells;
// FaceMeasurer uses golang.org/x/image/font faces.
package hyphenation
