package cloze

// AddDeletion appends d as a new deletion, clipping the existing ones around
// it, and drops any deletion left without ranges.
func AddDeletion(current []Deletion, d Deletion) []Deletion {
	trimmed := TrimOverlaps(current, d.Ranges, len(current))

	kept := trimmed[:0:0]
	for _, del := range trimmed {
		if len(del.Ranges) > 0 {
			kept = append(kept, del)
		}
	}
	if len(kept) == len(trimmed) {
		return trimmed
	}
	return kept
}

// EditDeletion replaces the ranges of the deletion at index, clipping the
// others around them. Deletions emptied by the clipping are kept. Ranges
// that cover nothing change nothing; use RemoveDeletion to drop a deletion.
func EditDeletion(current []Deletion, index int, ranges []Range) []Deletion {
	return TrimOverlaps(current, ranges, index)
}

// RemoveDeletion drops the deletion at index. Deletions after it move down
// by one, so their cloze ids change too.
func RemoveDeletion(current []Deletion, index int) []Deletion {
	if index < 0 || index >= len(current) {
		return current
	}
	out := make([]Deletion, 0, len(current)-1)
	out = append(out, current[:index]...)
	return append(out, current[index+1:]...)
}
