package cloze

import "slices"

// TrimOverlaps places candidate at index and clips every other deletion so
// that none of its ranges overlaps a candidate range. A clipped range keeps
// the part before the candidate range and the part after it; a range the
// candidate covers entirely is dropped. The candidate itself is never cut.
//
// index may be len(deletions), in which case the candidate is appended as a
// new deletion. Other deletions are left in the result even when clipping
// empties them; pruning them is up to the caller (see AddDeletion).
//
// When no other deletion was clipped, the input slice is returned unchanged
// if the candidate has no non-empty range, whatever the slot holds, or if
// the slot at index already holds exactly the candidate. In that second
// case the slot keeps its own backing array rather than candidate.
//
// An index outside 0..len(deletions) panics.
func TrimOverlaps(deletions []Deletion, candidate []Range, index int) []Deletion {
	candidate = sortedCopy(candidate)

	out := make([]Deletion, len(deletions), max(len(deletions), index+1))
	changed := false
	for i, d := range deletions {
		if i == index {
			out[i] = d
			continue
		}
		if ranges, cut := clip(d.Ranges, candidate); cut {
			d = Deletion{Ranges: ranges}
			changed = true
		}
		out[i] = d
	}

	if !changed {
		if (Deletion{Ranges: candidate}).Empty() {
			return deletions
		}
		if index < len(deletions) && slices.Equal(deletions[index].Ranges, candidate) {
			return deletions
		}
	}

	if index == len(deletions) {
		return append(out, Deletion{Ranges: candidate})
	}
	out[index] = Deletion{Ranges: candidate}
	return out
}

// clip cuts every range in ranges by each candidate range in turn. The
// fragments left by one cut are what the next candidate range is tested
// against. The bool reports whether anything was cut.
func clip(ranges, candidate []Range) ([]Range, bool) {
	fragments := ranges
	cut := false
	for _, c := range candidate {
		if c.Empty() {
			continue
		}
		var next []Range
		hit := false
		for _, f := range fragments {
			if !f.Overlaps(c) {
				next = append(next, f)
				continue
			}
			hit = true
			if f.Start < c.Start {
				next = append(next, Range{Start: f.Start, End: c.Start})
			}
			if f.End > c.End {
				next = append(next, Range{Start: c.End, End: f.End})
			}
		}
		if hit {
			fragments = next
			cut = true
		}
	}
	return fragments, cut
}
