package main

import (
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
)

type audioExtractedMsg struct {
	audioFile string
}

type transcriptionDoneMsg struct {
	transcriptItems []TranscriptItem
}

type errorMsg struct {
	err error
}

type exportDoneMsg struct {
	csvFile string
	cards   int
}

type deckSavedMsg struct {
	path string
}

type TranscriptItem struct {
	StartTime string
	EndTime   string
	Text      string
}

type mode int

const (
	modeList mode = iota
	modeCloze
	modeField
)

type model struct {
	spinner    spinner.Model
	loading    bool
	loadingMsg string
	list       list.Model
	quitting   bool
	inputFile  string
	deckFile   string
	lang       string
	prompt     string
	errorMsg   string
	notice     string
	deck       *Deck
	statuses   []string
	mode       mode
	editor     *clozeEditor
	field      textinput.Model
	fieldName  string
	fieldCard  *Card
	width      int
}

type item struct {
	card *Card
}

type itemDelegate struct{}
