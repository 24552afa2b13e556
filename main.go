package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"syscall"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"
	"github.com/zalando/go-keyring"
	"golang.org/x/term"

	"github.com/aschmelyun/tcloze/cloze"
)

const VERSION = "1.0.0"

const keyringService = "tcloze"

func (i item) FilterValue() string { return i.card.Transcription }

func (d itemDelegate) Height() int                             { return 2 }
func (d itemDelegate) Spacing() int                            { return 0 }
func (d itemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, listItem list.Item) {
	i, ok := listItem.(item)
	if !ok {
		return
	}

	checkbox := "☐"
	if i.card.Selected {
		checkbox = "◼"
	}

	timestampLine := TimestampStyle.Render(i.card.StartTime + " - " + i.card.EndTime)
	for n := range i.card.Cloze {
		timestampLine += " " + DeletionStyle(n).Render(cloze.ID(n))
	}

	title := strings.ReplaceAll(i.card.Transcription, "\n", " ")
	str := fmt.Sprintf("%s %s", checkbox, title)

	fn := ItemStyle.Render
	if index == m.Index() {
		fn = func(s ...string) string {
			return SelectedItemStyle.Render("> " + strings.Join(s, " "))
		}
	}

	fmt.Fprintf(w, "%s\n%s\n", timestampLine, fn(str))
}

func newCueList(deck *Deck) list.Model {
	items := make([]list.Item, len(deck.Cards))
	for i := range deck.Cards {
		items[i] = item{card: &deck.Cards[i]}
	}

	l := list.New(items, itemDelegate{}, 64, 16)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(true)
	l.SetShowHelp(true)
	l.SetShowPagination(false)

	l.AdditionalShortHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "cloze")),
			key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "select")),
			key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
			key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "export")),
		}
	}
	l.AdditionalFullHelpKeys = func() []key.Binding {
		return []key.Binding{
			key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "meaning")),
			key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "notes")),
			key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tags")),
		}
	}
	return l
}

func newFieldInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 500
	ti.Width = 60
	return ti
}

func (m model) Init() tea.Cmd {
	if m.loading {
		// Start the spinner and begin audio extraction
		return tea.Batch(
			m.spinner.Tick,
			extractAudioCmd(m.inputFile),
		)
	}
	return nil
}

func (m model) selectedCard() *Card {
	if m.deck == nil {
		return nil
	}
	if i, ok := m.list.SelectedItem().(item); ok {
		return i.card
	}
	return nil
}

func (m model) save() tea.Cmd {
	if m.deck == nil {
		return nil
	}
	return saveDeckCmd(m.deckFile, m.deck)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		if m.deck != nil {
			m.list.SetWidth(msg.Width)
		}
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.quitting = true
			return m, tea.Sequence(m.save(), tea.Quit)
		}

		switch m.mode {
		case modeCloze:
			return m.updateCloze(msg)
		case modeField:
			return m.updateField(msg)
		}

		if m.loading || m.deck == nil {
			if msg.String() == "q" {
				m.quitting = true
				return m, tea.Quit
			}
			return m, nil
		}

		// While filtering, every key belongs to the filter input
		if m.list.FilterState() == list.Filtering {
			var cmd tea.Cmd
			m.list, cmd = m.list.Update(msg)
			return m, cmd
		}

		m.notice = ""
		switch msg.String() {
		case "q":
			m.quitting = true
			return m, tea.Sequence(m.save(), tea.Quit)

		case " ":
			if card := m.selectedCard(); card != nil {
				card.Selected = !card.Selected
				return m, m.save()
			}
			return m, nil

		case "enter", "e":
			if card := m.selectedCard(); card != nil {
				m.editor = newClozeEditor(card)
				m.mode = modeCloze
				logger.Debug("editor opened", "comp", "editor", "card", card.ID)
			}
			return m, nil

		case "m", "n", "t":
			if card := m.selectedCard(); card != nil {
				return m.openField(card, msg.String())
			}
			return m, nil

		case "p":
			if card := m.selectedCard(); card != nil {
				go previewClip(m.inputFile, card.StartTime, card.EndTime)
			}
			return m, nil

		case "x":
			cards := m.deck.selectedCards()
			if len(cards) == 0 {
				m.notice = ErrorStyle.Render(errNoCardsSelected.Error() + ", press space to select cards")
				return m, nil
			}
			m.loading = true
			m.loadingMsg = fmt.Sprintf("Exporting %d card(s) with ffmpeg...", len(cards))
			return m, tea.Batch(
				m.spinner.Tick,
				exportDeckCmd(m.inputFile, cards),
			)
		}

		var cmd tea.Cmd
		m.list, cmd = m.list.Update(msg)
		return m, cmd

	case audioExtractedMsg:
		m.statuses = append(m.statuses, "Audio extracted from ffmpeg.")
		m.loadingMsg = "Transcribing with OpenAI Whisper..."
		return m, transcribeAudioCmd(msg.audioFile, m.lang, m.prompt)

	case transcriptionDoneMsg:
		m.statuses = append(m.statuses, "Transcription finished and saved locally.")
		m.loading = false
		m.deck = newDeck(m.inputFile, msg.transcriptItems)
		m.list = newCueList(m.deck)
		if m.width > 0 {
			m.list.SetWidth(m.width)
		}
		return m, m.save()

	case exportDoneMsg:
		m.loading = false
		m.notice = SuccessStyle.Render(fmt.Sprintf("Exported %d card(s) to %s", msg.cards, msg.csvFile))
		return m, nil

	case deckSavedMsg:
		logger.Debug("deck saved", "comp", "deck", "path", msg.path)
		return m, nil

	case errorMsg:
		logger.Error("operation failed", "err", msg.err)
		m.loading = false
		if m.deck != nil {
			// the deck is still usable, keep the session going
			m.notice = ErrorStyle.Render(msg.err.Error())
			return m, nil
		}
		m.statuses = append(m.statuses, msg.err.Error())
		m.errorMsg = msg.err.Error()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.mode == modeField {
		var cmd tea.Cmd
		m.field, cmd = m.field.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m model) updateCloze(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if done := m.editor.handleKey(msg); !done {
		return m, nil
	}
	logger.Debug("editor closed", "comp", "editor", "card", m.editor.card.ID, "deletions", len(m.editor.card.Cloze))
	m.editor = nil
	m.mode = modeList
	return m, m.save()
}

func (m model) openField(card *Card, keyName string) (tea.Model, tea.Cmd) {
	m.field = newFieldInput()
	m.fieldCard = card
	switch keyName {
	case "m":
		m.fieldName = "meaning"
		m.field.SetValue(card.Meaning)
	case "n":
		m.fieldName = "notes"
		m.field.SetValue(card.Notes)
	case "t":
		m.fieldName = "tags"
		m.field.SetValue(strings.Join(card.Tags, " "))
	}
	m.field.Placeholder = m.fieldName
	m.mode = modeField
	return m, m.field.Focus()
}

func (m model) updateField(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeList
		m.fieldCard = nil
		return m, nil

	case "enter":
		applyField(m.fieldCard, m.fieldName, m.field.Value())
		m.mode = modeList
		m.fieldCard = nil
		return m, m.save()
	}

	var cmd tea.Cmd
	m.field, cmd = m.field.Update(msg)
	return m, cmd
}

func applyField(card *Card, name, value string) {
	value = strings.TrimSpace(value)
	switch name {
	case "meaning":
		card.Meaning = value
	case "notes":
		card.Notes = value
	case "tags":
		card.Tags = strings.FieldsFunc(value, func(r rune) bool {
			return r == ' ' || r == ','
		})
	}
}

func (m model) View() string {
	if m.quitting {
		return styleOutput(m.statuses)
	}

	// Content area
	if m.errorMsg != "" {
		return styleOutput(m.statuses) + "\nPress 'q' to quit"
	} else if m.loading {
		loadingText := fmt.Sprintf("%s%s", m.spinner.View(), m.loadingMsg)
		if len(m.statuses) > 0 {
			return styleOutput(m.statuses) + loadingText
		}
		return loadingText
	}

	switch m.mode {
	case modeCloze:
		return m.editor.View(m.width)
	case modeField:
		return TitleStyle.Render("Edit "+m.fieldName) + "\n" +
			TimestampStyle.Render(strings.ReplaceAll(m.fieldCard.Transcription, "\n", " ")) + "\n\n" +
			m.field.View() + "\n\n" +
			DimTextStyle.Render("enter save • esc cancel")
	}

	if m.deck == nil || len(m.deck.Cards) == 0 {
		return styleOutput(m.statuses) + "No transcript items found"
	}

	firstStart := m.deck.Cards[0].StartTime
	lastEnd := m.deck.Cards[len(m.deck.Cards)-1].EndTime
	header := fmt.Sprintf("  Start: %s | End: %s\n", firstStart, lastEnd)
	if m.notice != "" {
		header += "  " + m.notice + "\n"
	}

	return styleOutput(m.statuses) + header + m.list.View()
}

func resolveAPIKey() error {
	username := getSystemUser()

	apiKey, err := keyring.Get(keyringService, username)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("reading API key: %w", err)
	}

	if apiKey != "" && os.Getenv("OPENAI_API_KEY") == "" {
		os.Setenv("OPENAI_API_KEY", apiKey)
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("API key set for this session."))
	}

	if os.Getenv("OPENAI_API_KEY") != "" {
		return nil
	}

	fmt.Print(BulletStyle.Render("├") + TextStyle.Render("OPENAI_API_KEY not found, enter one: "))

	byteApiKey, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return fmt.Errorf("reading API key: %w", err)
	}

	fmt.Println()
	apiKey = strings.TrimSpace(string(byteApiKey))
	if apiKey == "" {
		return errors.New("an OpenAI API key is required to proceed")
	}

	if err := keyring.Set(keyringService, username, apiKey); err != nil {
		return fmt.Errorf("saving API key: %w", err)
	}

	os.Setenv("OPENAI_API_KEY", apiKey)
	fmt.Println(BulletStyle.Render("├") + TextStyle.Render("API key set for this session."))
	return nil
}

func fail(format string, args ...any) {
	fmt.Fprintf(os.Stderr, BulletStyle.Render("└")+TextStyle.Render(format)+"\n", args...)
	logger.Error("startup failed", "err", fmt.Sprintf(format, args...))
	closeLogger()
	os.Exit(1)
}

func main() {
	fmt.Println(BulletStyle.Render("┌") + TitleStyle.Render("tcloze"))

	// A missing .env is fine; variables already set always win
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		fail("Error: could not read .env: %v", err)
	}

	defaultLang := os.Getenv("TCLOZE_LANG")
	if defaultLang == "" {
		defaultLang = "auto"
	}

	var lang string
	var prompt string
	var logFile string
	var help bool
	var version bool

	flag.StringVar(&lang, "lang", defaultLang, "Language for transcription (e.g. en, es, fr)")
	flag.StringVar(&prompt, "prompt", "", "Optional prompt used to create a more accurate transcription")
	flag.StringVar(&logFile, "log", os.Getenv("TCLOZE_LOG"), "Write a JSON debug log to this file")
	flag.BoolVar(&help, "help", false, "Show usage info")
	flag.BoolVar(&version, "version", false, "Show version info")
	flag.Usage = func() {
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Usage: tcloze [options] <input-file>"))
		fmt.Println(BulletStyle.Render("│"))
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Options:"))
		fmt.Println(BulletStyle.Render("├────") + TextStyle.Render("--lang") + DimTextStyle.Render("    language for transcription (e.g. en, es, fr)"))
		fmt.Println(BulletStyle.Render("├────") + TextStyle.Render("--prompt") + DimTextStyle.Render("  optional prompt used to create a more accurate transcription"))
		fmt.Println(BulletStyle.Render("├────") + TextStyle.Render("--log") + DimTextStyle.Render("     write a JSON debug log to this file"))
		fmt.Println(BulletStyle.Render("│"))
		fmt.Println(BulletStyle.Render("├") + TextStyle.Render("Requirements:"))

		dependencies := []string{"ffmpeg", "mpv"}
		for _, dependency := range dependencies {
			status := "✔ installed"
			if !checkDependency(dependency) {
				status = "✗ missing"
			}
			spaces := strings.Repeat(" ", 10-len(dependency))
			fmt.Println(BulletStyle.Render("├────") + TextStyle.Render(dependency) + DimTextStyle.Render(spaces+status))
		}

		fmt.Println(BulletStyle.Render("│"))
		fmt.Println(BulletStyle.Render("└") + TextStyle.Render("Supported formats:") + DimTextStyle.Render(" .mp4, .avi, .mov, .mkv, .m4v"))
	}

	flag.Parse()

	if help {
		flag.Usage()
		os.Exit(0)
	}

	if version {
		fmt.Println(BulletStyle.Render("└") + TextStyle.Render(VERSION))
		os.Exit(0)
	}

	args := flag.Args()
	if len(args) != 1 || args[0] == "help" {
		flag.Usage()
		os.Exit(0)
	}

	// Validate the file exists
	inputFile := args[0]
	if _, err := os.Stat(inputFile); os.IsNotExist(err) {
		fail("Error: file '%s' does not exist.", inputFile)
	}

	// Validate the input file is a video file
	validExtensions := []string{".mp4", ".avi", ".mov", ".mkv", ".m4v"}
	fileExt := strings.ToLower(filepath.Ext(inputFile))
	if !slices.Contains(validExtensions, fileExt) {
		fail("Error: file '%s' is not a valid video file.", inputFile)
	}

	if err := initLogger(logFile); err != nil {
		fail("Error: %v", err)
	}
	defer closeLogger()

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	initialModel := model{
		spinner:    s,
		loading:    true,
		loadingMsg: "Extracting audio with ffmpeg...",
		inputFile:  inputFile,
		deckFile:   deckFileFor(inputFile),
		lang:       lang,
		prompt:     prompt,
	}

	basename := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	vttFile := basename + ".vtt"

	var deck *Deck
	if _, err := os.Stat(initialModel.deckFile); err == nil {
		deck, err = loadDeck(initialModel.deckFile)
		if err != nil {
			fail("There was a problem reading the existing deck: %v", err)
		}
		initialModel.statuses = append(initialModel.statuses, "Deck already exists locally")
	} else if _, err := os.Stat(vttFile); err == nil {
		vttBytes, err := os.ReadFile(vttFile)
		if err != nil {
			fail("There was a problem reading the existing VTT file: %v", err)
		}

		transcriptItems, err := parseVTT(string(vttBytes))
		if err != nil {
			fail("There was a problem parsing the existing VTT file: %v", err)
		}

		deck = newDeck(inputFile, transcriptItems)
		if err := deck.save(initialModel.deckFile); err != nil {
			fail("There was a problem saving the deck: %v", err)
		}
		initialModel.statuses = append(initialModel.statuses, "Transcript already exists locally")
	} else if err := resolveAPIKey(); err != nil {
		fail("Error: %v", err)
	}

	if deck != nil {
		initialModel.loading = false
		initialModel.deck = deck
		initialModel.list = newCueList(deck)
	}

	p := tea.NewProgram(initialModel)
	if _, err := p.Run(); err != nil {
		logger.Error("program failed", "err", err)
		fmt.Printf("Error running program: %v", err)
	}
}
