// Package cloze maintains the cloze deletions of a single transcription.
//
// A deletion is a set of character ranges that will be blanked out together
// on one flashcard. Ranges of different deletions never overlap; when a new
// range is confirmed, older deletions are clipped around it.
//
// All functions are pure. When an operation changes nothing it returns the
// slice it was given, so callers can detect a no-op with Same or SameRanges
// instead of comparing element by element.
package cloze

import (
	"fmt"
	"slices"
)

// NoIndex marks the absence of an active deletion.
const NoIndex = -1

// MaxDeletions is the number of cloze ids (c1 to c10) a card can carry.
const MaxDeletions = 10

// Range is an end-exclusive span of character offsets into a transcription.
// Offsets count runes, not bytes.
type Range struct {
	Start int `yaml:"start"`
	End   int `yaml:"end"`
}

// Empty reports whether the range covers no characters.
func (r Range) Empty() bool {
	return r.Start == r.End
}

// Overlaps reports whether r and o share at least one character.
// Touching or empty ranges do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && r.End > o.Start
}

// Normalize returns r with Start <= End.
func (r Range) Normalize() Range {
	if r.Start > r.End {
		return Range{Start: r.End, End: r.Start}
	}
	return r
}

func (r Range) String() string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}

// Deletion is one cloze blank, made of ranges sorted by Start.
type Deletion struct {
	Ranges []Range `yaml:"ranges"`
}

// Empty reports whether the deletion has no non-empty range left.
func (d Deletion) Empty() bool {
	for _, r := range d.Ranges {
		if !r.Empty() {
			return false
		}
	}
	return true
}

// ID returns the Anki cloze id for the deletion at index i.
func ID(i int) string {
	return fmt.Sprintf("c%d", i+1)
}

// Same reports whether a and b are the same slice, not merely equal ones.
// Two empty slices are always the same.
func Same(a, b []Deletion) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

// SameRanges is Same for range slices.
func SameRanges(a, b []Range) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	return &a[0] == &b[0]
}

func byStart(a, b Range) int {
	return a.Start - b.Start
}

func sortedCopy(ranges []Range) []Range {
	if slices.IsSortedFunc(ranges, byStart) {
		return ranges
	}
	out := slices.Clone(ranges)
	slices.SortStableFunc(out, byStart)
	return out
}
