package cloze

import (
	"math/rand/v2"
	"slices"
	"testing"
)

// rs builds ranges from start/end pairs.
func rs(bounds ...int) []Range {
	var out []Range
	for i := 0; i+1 < len(bounds); i += 2 {
		out = append(out, Range{Start: bounds[i], End: bounds[i+1]})
	}
	return out
}

// ds builds a collection, one deletion per range list.
func ds(ranges ...[]Range) []Deletion {
	out := make([]Deletion, len(ranges))
	for i, r := range ranges {
		out[i] = Deletion{Ranges: r}
	}
	return out
}

func equalDeletions(a, b []Deletion) bool {
	return slices.EqualFunc(a, b, func(x, y Deletion) bool {
		return slices.Equal(x.Ranges, y.Ranges)
	})
}

// checkInvariants ignores empty ranges; they cover no characters.
func checkInvariants(t *testing.T, dels []Deletion) {
	t.Helper()
	for i, d := range dels {
		if !slices.IsSortedFunc(d.Ranges, byStart) {
			t.Errorf("deletion %d not sorted: %v", i, d.Ranges)
		}
		for j := i + 1; j < len(dels); j++ {
			for _, a := range d.Ranges {
				for _, b := range dels[j].Ranges {
					if !a.Empty() && !b.Empty() && a.Overlaps(b) {
						t.Errorf("deletion %d range %v overlaps deletion %d range %v", i, a, j, b)
					}
				}
			}
		}
	}
}

func TestTrimOverlaps(t *testing.T) {
	tests := []struct {
		name      string
		deletions []Deletion
		candidate []Range
		index     int
		want      []Deletion
	}{
		{
			name:      "splits existing range around new deletion",
			deletions: ds(rs(0, 10), nil),
			candidate: rs(3, 6),
			index:     1,
			want:      ds(rs(0, 3, 6, 10), rs(3, 6)),
		},
		{
			name:      "appends at pending index",
			deletions: ds(rs(0, 10)),
			candidate: rs(3, 6),
			index:     1,
			want:      ds(rs(0, 3, 6, 10), rs(3, 6)),
		},
		{
			name:      "several candidate ranges cut one existing range",
			deletions: ds(rs(0, 10)),
			candidate: rs(2, 4, 6, 8),
			index:     1,
			want:      ds(rs(0, 2, 4, 6, 8, 10), rs(2, 4, 6, 8)),
		},
		{
			name:      "candidate spans several existing ranges",
			deletions: ds(rs(0, 3, 5, 8), rs(10, 12)),
			candidate: rs(2, 11),
			index:     2,
			want:      ds(rs(0, 2), rs(11, 12), rs(2, 11)),
		},
		{
			name:      "fully covered deletion is emptied but kept",
			deletions: ds(rs(3, 5)),
			candidate: rs(0, 10),
			index:     1,
			want:      ds(nil, rs(0, 10)),
		},
		{
			name:      "touching ranges are not cut",
			deletions: ds(rs(0, 5)),
			candidate: rs(5, 8),
			index:     1,
			want:      ds(rs(0, 5), rs(5, 8)),
		},
		{
			name:      "editing an existing index clips the others",
			deletions: ds(rs(0, 4), rs(6, 9)),
			candidate: rs(3, 7),
			index:     0,
			want:      ds(rs(3, 7), rs(7, 9)),
		},
		{
			name:      "candidate is not trimmed against its own slot",
			deletions: ds(rs(0, 10)),
			candidate: rs(2, 3),
			index:     0,
			want:      ds(rs(2, 3)),
		},
		{
			name:      "empty candidate range cuts nothing",
			deletions: ds(rs(0, 10)),
			candidate: rs(5, 5, 12, 14),
			index:     1,
			want:      ds(rs(0, 10), rs(5, 5, 12, 14)),
		},
		{
			name:      "unsorted candidate is stored sorted",
			deletions: ds(rs(0, 2)),
			candidate: rs(8, 9, 4, 5),
			index:     1,
			want:      ds(rs(0, 2), rs(4, 5, 8, 9)),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := slices.Clone(tt.deletions)
			got := TrimOverlaps(tt.deletions, tt.candidate, tt.index)
			if !equalDeletions(got, tt.want) {
				t.Errorf("TrimOverlaps() = %v, want %v", got, tt.want)
			}
			if !equalDeletions(tt.deletions, before) {
				t.Errorf("TrimOverlaps() modified its input: %v", tt.deletions)
			}
			checkInvariants(t, got)
		})
	}
}

func TestTrimOverlapsCandidateStoredVerbatim(t *testing.T) {
	dels := ds(rs(0, 10), rs(12, 20))
	candidate := rs(4, 6, 14, 16)
	got := TrimOverlaps(dels, candidate, 2)
	if !SameRanges(got[2].Ranges, candidate) {
		t.Errorf("candidate was copied: got %v", got[2].Ranges)
	}
}

func TestTrimOverlapsNoOp(t *testing.T) {
	dels := ds(rs(0, 3), rs(5, 6))

	tests := []struct {
		name      string
		candidate []Range
		index     int
	}{
		{"no candidate at pending index", nil, 2},
		{"empty candidate range at pending index", rs(4, 4), 2},
		{"slot already holds candidate", rs(0, 3), 0},
		{"no candidate over a non-empty slot", nil, 0},
		{"empty candidate range over a non-empty slot", rs(1, 1), 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TrimOverlaps(dels, tt.candidate, tt.index); !Same(got, dels) {
				t.Errorf("TrimOverlaps() = %v, want the input slice back", got)
			}
		})
	}
}

func TestTrimOverlapsEmptyCandidateKeepsSlot(t *testing.T) {
	dels := ds(rs(0, 5), rs(7, 9))
	got := TrimOverlaps(dels, nil, 0)
	if !Same(got, dels) {
		t.Fatalf("TrimOverlaps() = %v, want the input slice back", got)
	}
	if want := ds(rs(0, 5), rs(7, 9)); !equalDeletions(got, want) {
		t.Errorf("TrimOverlaps() = %v, want %v", got, want)
	}
}

func TestTrimOverlapsRandomKeepsInvariants(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	randRange := func() Range {
		a, b := rng.IntN(60), rng.IntN(60)
		if a == b {
			b++
		}
		return Range{Start: a, End: b}.Normalize()
	}

	var dels []Deletion
	for step := 0; step < 500; step++ {
		if len(dels) > 0 && rng.IntN(2) == 0 {
			i := rng.IntN(len(dels))
			dels = EditDeletion(dels, i, JoinRanges(dels[i].Ranges, randRange()))
		} else {
			dels = AddDeletion(dels, Deletion{Ranges: []Range{randRange()}})
		}
		checkInvariants(t, dels)
		if t.Failed() {
			t.Fatalf("invariants broken at step %d: %v", step, dels)
		}
	}
}
