package rubytext

import "fmt"

// Range is a half-open character range [Start, Start+Length) in a string.
// Offsets count runes, not bytes.
type Range struct {
	Start  int
	Length int
}

// NewRange creates a Range from a start offset and a length.
func NewRange(start, length int) Range {
	return Range{Start: start, Length: length}
}

// End returns the exclusive end offset.
func (r Range) End() int {
	return r.Start + r.Length
}

// IsEmpty returns true if the range has zero length.
func (r Range) IsEmpty() bool {
	return r.Length == 0
}

// Contains returns true if the given offset is within the range.
func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End()
}

// ContainsRange returns true if other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return other.Start >= r.Start && other.End() <= r.End()
}

// Shift returns the range moved by delta.
func (r Range) Shift(delta int) Range {
	return Range{Start: r.Start + delta, Length: r.Length}
}

// String returns a human-readable representation of the range.
func (r Range) String() string {
	return fmt.Sprintf("[%d:%d)", r.Start, r.End())
}

// TrimRange returns original adjusted for the deletion of removed from the
// underlying string.
//
// Cases, in order:
//   - original entirely before the removal: unchanged
//   - original entirely after the removal: shifted left by the removed length
//   - original inside the removal: collapses to zero length at the removal start
//   - original contains the removal: shrunk by the removed length
//   - original overlaps the removal on its tail: truncated at the removal start
//   - original overlaps the removal on its head: starts at the removal start
//     and keeps only the part past the removal
func TrimRange(original, removed Range) Range {
	switch {
	case original.End() <= removed.Start:
		return original
	case original.Start >= removed.End():
		return original.Shift(-removed.Length)
	case original.Start >= removed.Start && original.End() <= removed.End():
		return Range{Start: removed.Start, Length: 0}
	case original.Start <= removed.Start && original.End() >= removed.End():
		return Range{Start: original.Start, Length: original.Length - removed.Length}
	case original.Start < removed.Start:
		return Range{Start: original.Start, Length: removed.Start - original.Start}
	default:
		return Range{Start: removed.Start, Length: original.End() - removed.End()}
	}
}

// ShiftForInsert returns original adjusted for n characters inserted at
// offset at. Ranges ending at or before the insertion point are unchanged,
// ranges starting at or after it move right, and ranges spanning it widen.
func ShiftForInsert(original Range, at, n int) Range {
	switch {
	case original.End() <= at:
		return original
	case original.Start >= at:
		return original.Shift(n)
	default:
		return Range{Start: original.Start, Length: original.Length + n}
	}
}
