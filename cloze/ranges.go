package cloze

import "slices"

// JoinRanges merges r into the ranges of a single deletion. Every range that
// overlaps or touches r is absorbed into one range spanning all of them;
// the rest are kept. The result is sorted by Start.
//
// If the merge leaves the ranges as they were, base itself is returned.
func JoinRanges(base []Range, r Range) []Range {
	ranges := make([]Range, 0, len(base)+1)
	merged := r
	for _, x := range base {
		overlapping := r.Start <= x.End && r.End >= x.Start
		adjacent := x.End == r.Start || r.End == x.Start
		if overlapping || adjacent {
			merged = Range{
				Start: min(merged.Start, x.Start),
				End:   max(merged.End, x.End),
			}
			continue
		}
		ranges = append(ranges, x)
	}
	ranges = append(ranges, merged)
	slices.SortStableFunc(ranges, byStart)

	if slices.Equal(ranges, base) {
		return base
	}
	return ranges
}

// RemoveRange subtracts del from every range of base it meets, leaving at
// most a part before del and a part after it. Ranges del does not reach are
// kept as they are.
//
// An empty del removes nothing. When no range is affected base itself is
// returned.
func RemoveRange(base []Range, del Range) []Range {
	if del.Empty() {
		return base
	}

	var ranges []Range
	affected := false
	for _, x := range base {
		if del.Start > x.End || del.End < x.Start {
			ranges = append(ranges, x)
			continue
		}
		n := len(ranges)
		if del.Start > x.Start {
			ranges = append(ranges, Range{Start: x.Start, End: del.Start})
		}
		if del.End < x.End {
			ranges = append(ranges, Range{Start: del.End, End: x.End})
		}
		// a range that only touches del comes back whole
		if len(ranges)-n != 1 || ranges[n] != x {
			affected = true
		}
	}
	if !affected {
		return base
	}
	return ranges
}
