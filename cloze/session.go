package cloze

// Store persists the deletions of the card being edited. A Session reads the
// collection back after every write, so implementations must make writes
// visible to the next Deletions call.
type Store interface {
	Deletions() []Deletion
	AddDeletion(d Deletion)
	EditDeletion(index int, ranges []Range)
	RemoveDeletion(index int)
}

// Surface is the text field the user selects in. Offsets are characters
// into the transcription; Selection returns false when nothing is focused.
type Surface interface {
	Selection() (Range, bool)
	SetSelection(start, end int)
}

// Session tracks which deletion is being edited while the user draws
// selections over a transcription. It holds no deletions itself; every
// operation reads the current collection from the Store.
//
// The active index is NoIndex when no deletion is selected, an existing
// index while editing, and len(deletions) while a new deletion is pending.
type Session struct {
	store   Store
	surface Surface
	index   int
}

func NewSession(store Store, surface Surface) *Session {
	return &Session{store: store, surface: surface, index: NoIndex}
}

// Index returns the active deletion index.
func (s *Session) Index() int {
	s.clamp()
	return s.index
}

// Editing reports whether the active index refers to an existing deletion.
func (s *Session) Editing() bool {
	i := s.Index()
	return i != NoIndex && i < len(s.store.Deletions())
}

// Pending reports whether the next confirmed selection becomes a new
// deletion that is then edited.
func (s *Session) Pending() bool {
	return s.Index() == len(s.store.Deletions())
}

// clamp pulls the index back when deletions disappeared underneath it.
func (s *Session) clamp() {
	if n := len(s.store.Deletions()); s.index > n {
		s.index = n
	}
}

// SetIndex makes i the active index. A deletion that is left with no
// characters is removed from the store on the way out, and i is shifted
// down if it pointed past it.
func (s *Session) SetIndex(i int) {
	s.clamp()
	dels := s.store.Deletions()
	if s.index >= 0 && s.index < len(dels) && dels[s.index].Empty() {
		s.store.RemoveDeletion(s.index)
		if i > s.index {
			i--
		}
	}
	s.index = i
}

// GivesNewDeletion reports whether confirming sel would create a deletion.
func (s *Session) GivesNewDeletion(sel Range) bool {
	i := s.Index()
	dels := s.store.Deletions()
	if i != NoIndex && i != len(dels) {
		return false
	}
	if len(dels) >= MaxDeletions {
		return false
	}
	return !Same(TrimOverlaps(dels, []Range{sel}, len(dels)), dels)
}

// Select applies a selection: it starts a new deletion when none is being
// edited, or grows the active one. Empty selections are ignored.
func (s *Session) Select(sel Range) {
	sel = sel.Normalize()
	if sel.Empty() {
		return
	}
	if s.GivesNewDeletion(sel) {
		pending := s.Pending()
		s.store.AddDeletion(Deletion{Ranges: []Range{sel}})
		if pending {
			// swallowed deletions are dropped, so the new one may sit lower
			s.index = len(s.store.Deletions()) - 1
		}
		return
	}
	if s.Editing() {
		base := s.store.Deletions()[s.index].Ranges
		s.edit(base, JoinRanges(base, sel))
	}
}

// Confirm applies the surface's current selection and collapses the cursor
// to its end.
func (s *Session) Confirm() (Range, bool) {
	sel, ok := s.surface.Selection()
	if !ok {
		return Range{}, false
	}
	s.Select(sel)
	s.surface.SetSelection(sel.End, sel.End)
	return sel, true
}

// CycleOrConfirm confirms a non-empty selection. With nothing selected it
// steps to the next deletion, then to the pending slot, then back to none.
func (s *Session) CycleOrConfirm() {
	if sel, ok := s.surface.Selection(); ok && !sel.Empty() {
		s.Confirm()
		return
	}
	next := s.Index() + 1
	if next > len(s.store.Deletions()) {
		next = NoIndex
	}
	s.SetIndex(next)
}

// Backspace removes the selection, or the character before a collapsed
// cursor, from the active deletion.
func (s *Session) Backspace(sel Range) {
	if !s.Editing() {
		return
	}
	sel = sel.Normalize()
	cut, cursor := sel, sel.Start
	if sel.Empty() && sel.Start != 0 {
		cursor = sel.Start - 1
		cut = Range{Start: cursor, End: sel.Start}
	}
	s.surface.SetSelection(cursor, cursor)
	base := s.store.Deletions()[s.index].Ranges
	s.edit(base, RemoveRange(base, cut))
}

// Delete removes the selection, or the character after a collapsed cursor,
// from the active deletion. The cursor moves past what was removed.
func (s *Session) Delete(sel Range) {
	if !s.Editing() {
		return
	}
	sel = sel.Normalize()
	cut, cursor := sel, sel.End
	if sel.Empty() {
		cursor = sel.End + 1
		cut = Range{Start: sel.End, End: sel.End + 1}
	}
	s.surface.SetSelection(cursor, cursor)
	base := s.store.Deletions()[s.index].Ranges
	s.edit(base, RemoveRange(base, cut))
}

// Commit ends editing of the active deletion.
func (s *Session) Commit() {
	if s.Index() != NoIndex {
		s.SetIndex(NoIndex)
	}
}

// Escape drops back to no active deletion.
func (s *Session) Escape() {
	s.SetIndex(NoIndex)
}

// edit stores ranges for the active deletion. A deletion edited down to
// nothing is removed and editing ends.
func (s *Session) edit(base, ranges []Range) {
	if SameRanges(base, ranges) {
		return
	}
	if (Deletion{Ranges: ranges}).Empty() {
		s.store.RemoveDeletion(s.index)
		s.index = NoIndex
		return
	}
	s.store.EditDeletion(s.index, ranges)
}
