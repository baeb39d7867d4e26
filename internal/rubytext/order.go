package rubytext

import "sort"

// tagSeq holds the document positions of a tag's opening and closing
// literals. A tag with a single literal has open == close.
type tagSeq struct {
	open  int
	close int
}

// orderTags sorts tags into the slice order layout expects, given where
// each tag's literals sit in the document.
//
// Tags are ordered by the position of their last literal, so enclosed tags
// come before the tags enclosing them. A zero-width tag that precedes
// openings at its offset without being inside a closing there is placed
// right after the outermost of those openings.
func orderTags(tags []Tag, seqs []tagSeq) []Tag {
	if len(tags) < 2 {
		return tags
	}

	type key struct{ major, minor, own int }

	keys := make([]key, len(tags))
	for i, tg := range tags {
		done := seqs[i].close
		keys[i] = key{major: done, own: done}
		if tg.spansText() {
			continue
		}

		inside := false
		target := -1
		for j, other := range tags {
			if !other.spansText() {
				continue
			}
			if other.RightIndex == tg.LeftIndex && seqs[j].close > done {
				inside = true
				break
			}
			if other.LeftIndex == tg.LeftIndex && seqs[j].open > done {
				target = max(target, seqs[j].close)
			}
		}
		if !inside && target >= 0 {
			keys[i] = key{major: target, minor: 1, own: done}
		}
	}

	idx := make([]int, len(tags))
	for i := range idx {
		idx[i] = i
	}
	sort.Slice(idx, func(a, b int) bool {
		x, y := keys[idx[a]], keys[idx[b]]
		if x.major != y.major {
			return x.major < y.major
		}
		if x.minor != y.minor {
			return x.minor < y.minor
		}
		return x.own < y.own
	})

	ordered := make([]Tag, len(tags))
	for i, j := range idx {
		ordered[i] = tags[j]
	}
	return ordered
}

// seqsOf returns the document positions of the literals of tags, where lits
// is a document-order listing of them.
func seqsOf(tags []Tag, lits []literal) []tagSeq {
	seqs := make([]tagSeq, len(tags))
	for pos, l := range lits {
		if l.closing {
			seqs[l.tag].close = pos
			continue
		}
		seqs[l.tag].open = pos
		if !tags[l.tag].IsTerminated() {
			seqs[l.tag].close = pos
		}
	}
	return seqs
}
