package cloze

import (
	"fmt"
	"strings"
)

// Segment is a run of text that belongs wholly to one deletion range, or to
// none (Deletion == NoIndex).
type Segment struct {
	Text     string
	Range    Range
	Deletion int
}

// Segments splits text at every range boundary of deletions. Ranges are
// clamped to the text; empty ranges produce no boundary.
func Segments(text string, deletions []Deletion) []Segment {
	runes := []rune(text)
	n := len(runes)
	if n == 0 {
		return nil
	}

	owner := make([]int, n)
	for i := range owner {
		owner[i] = NoIndex
	}
	cut := make([]bool, n+1)
	for di, d := range deletions {
		for _, r := range d.Ranges {
			r = clamp(r.Normalize(), n)
			if r.Empty() {
				continue
			}
			cut[r.Start], cut[r.End] = true, true
			for i := r.Start; i < r.End; i++ {
				owner[i] = di
			}
		}
	}

	var segs []Segment
	start := 0
	for i := 1; i <= n; i++ {
		if i < n && !cut[i] && owner[i] == owner[i-1] {
			continue
		}
		segs = append(segs, Segment{
			Text:     string(runes[start:i]),
			Range:    Range{Start: start, End: i},
			Deletion: owner[start],
		})
		start = i
	}
	return segs
}

// Markup renders text in Anki cloze syntax, e.g. "the {{c1::cat}} sat".
func Markup(text string, deletions []Deletion) string {
	var b strings.Builder
	for _, seg := range Segments(text, deletions) {
		if seg.Deletion == NoIndex {
			b.WriteString(seg.Text)
			continue
		}
		fmt.Fprintf(&b, "{{%s::%s}}", ID(seg.Deletion), seg.Text)
	}
	return b.String()
}

func clamp(r Range, n int) Range {
	r.Start = min(max(r.Start, 0), n)
	r.End = min(max(r.End, 0), n)
	return r
}
