package main

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/wordwrap"

	"github.com/aschmelyun/tcloze/cloze"
)

const defaultEditorWidth = 64

// clozeEditor is the text field a card's transcription is edited in. It
// keeps a cursor and an optional selection anchor, and hands every cloze
// decision to its session.
type clozeEditor struct {
	card    *Card
	runes   []rune
	cursor  int
	anchor  int // -1 while the selection is collapsed
	session *cloze.Session
}

func newClozeEditor(card *Card) *clozeEditor {
	e := &clozeEditor{
		card:   card,
		runes:  []rune(card.Transcription),
		anchor: -1,
	}
	e.session = cloze.NewSession(cardStore{card: card}, e)
	return e
}

func (e *clozeEditor) Selection() (cloze.Range, bool) {
	if e.anchor < 0 {
		return cloze.Range{Start: e.cursor, End: e.cursor}, true
	}
	return cloze.Range{Start: e.anchor, End: e.cursor}.Normalize(), true
}

func (e *clozeEditor) SetSelection(start, end int) {
	start, end = e.clampOffset(start), e.clampOffset(end)
	e.cursor = end
	e.anchor = -1
	if start != end {
		e.anchor = start
	}
}

func (e *clozeEditor) clampOffset(offset int) int {
	return min(max(offset, 0), len(e.runes))
}

func (e *clozeEditor) moveTo(offset int, extend bool) {
	if !extend {
		e.anchor = -1
	} else if e.anchor < 0 {
		e.anchor = e.cursor
	}
	e.cursor = e.clampOffset(offset)
	if e.anchor == e.cursor {
		e.anchor = -1
	}
}

// handleKey applies one key press and reports whether the user asked to
// leave the editor.
func (e *clozeEditor) handleKey(msg tea.KeyMsg) bool {
	switch msg.String() {
	case "left":
		e.moveTo(e.cursor-1, false)
	case "right":
		e.moveTo(e.cursor+1, false)
	case "shift+left":
		e.moveTo(e.cursor-1, true)
	case "shift+right":
		e.moveTo(e.cursor+1, true)
	case "home":
		e.moveTo(0, false)
	case "end":
		e.moveTo(len(e.runes), false)
	case "shift+home":
		e.moveTo(0, true)
	case "shift+end":
		e.moveTo(len(e.runes), true)

	case "c":
		e.session.CycleOrConfirm()

	case "enter":
		if sel, _ := e.Selection(); !sel.Empty() {
			e.session.Confirm()
		} else {
			e.session.Commit()
		}

	case "backspace":
		sel, _ := e.Selection()
		e.session.Backspace(sel)

	case "delete":
		sel, _ := e.Selection()
		e.session.Delete(sel)

	case "esc":
		if e.session.Index() == cloze.NoIndex {
			return true
		}
		e.session.Escape()
	}
	return false
}

func (e *clozeEditor) status() string {
	dels := e.card.Cloze
	switch i := e.session.Index(); {
	case i == cloze.NoIndex:
		return fmt.Sprintf("%d deletion(s). Select text and press c to add one, or c to step through them.", len(dels))
	case i == len(dels):
		if i >= cloze.MaxDeletions {
			return "Every cloze id is taken."
		}
		return "New deletion " + DeletionStyle(i).Render(cloze.ID(i)) + ": select text and press c or enter."
	default:
		return "Editing " + DeletionStyle(i).Render(cloze.ID(i)) + ": select to extend, backspace/delete to trim."
	}
}

// render draws the transcription with each deletion in its colour, the
// active deletion underlined, and the selection or cursor highlighted.
func (e *clozeEditor) render() string {
	n := len(e.runes)
	owner := make([]int, n)
	for i := range owner {
		owner[i] = cloze.NoIndex
	}
	for _, seg := range cloze.Segments(e.card.Transcription, e.card.Cloze) {
		for i := seg.Range.Start; i < seg.Range.End; i++ {
			owner[i] = seg.Deletion
		}
	}

	active := e.session.Index()
	sel, _ := e.Selection()
	styleAt := func(i int) lipgloss.Style {
		st := TextStyle
		if owner[i] != cloze.NoIndex {
			st = DeletionStyle(owner[i])
			if owner[i] == active {
				st = st.Underline(true).Bold(true)
			}
		}
		switch {
		case !sel.Empty() && i >= sel.Start && i < sel.End:
			st = st.Inherit(SelectionStyle)
		case sel.Empty() && i == e.cursor:
			st = st.Inherit(CursorStyle)
		}
		return st
	}

	var b strings.Builder
	start := 0
	for i := 1; i <= n; i++ {
		if i < n && sameRunStyle(owner, sel, e.cursor, i-1, i) {
			continue
		}
		b.WriteString(styleAt(start).Render(string(e.runes[start:i])))
		start = i
	}
	if e.cursor == n && sel.Empty() {
		b.WriteString(CursorStyle.Render(" "))
	}
	return b.String()
}

// sameRunStyle reports whether runes a and b render identically.
func sameRunStyle(owner []int, sel cloze.Range, cursor, a, b int) bool {
	inSel := func(i int) bool { return i >= sel.Start && i < sel.End }
	return owner[a] == owner[b] &&
		inSel(a) == inSel(b) &&
		(a == cursor) == (b == cursor)
}

func (e *clozeEditor) View(width int) string {
	if width <= 0 {
		width = defaultEditorWidth
	}

	var b strings.Builder
	b.WriteString(TimestampStyle.Render(e.card.StartTime+" - "+e.card.EndTime) + "\n\n")
	b.WriteString(wordwrap.String(e.render(), width) + "\n\n")
	b.WriteString(TextStyle.Render(e.status()) + "\n")
	if len(e.card.Cloze) > 0 {
		b.WriteString(DimTextStyle.Render(wordwrap.String(cloze.Markup(e.card.Transcription, e.card.Cloze), width)) + "\n")
	}
	b.WriteString("\n" + DimTextStyle.Render("←/→ move • shift+←/→ select • c confirm/next • enter confirm/done • backspace/delete trim • esc back"))
	return b.String()
}
