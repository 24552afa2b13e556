package main

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/aschmelyun/tcloze/cloze"
)

var errNoCardsSelected = errors.New("no cards selected")

var (
	timestampEscaper = strings.NewReplacer(":", "-", ".", "_")
	bracketEscaper   = strings.NewReplacer("[", "__br__", "]", "__rb__")
)

func exportDeckCmd(inputFile string, cards []Card) tea.Cmd {
	return func() tea.Msg {
		csvFile, err := exportCards(inputFile, cards, extractClip)
		if err != nil {
			return errorMsg{err: err}
		}
		return exportDoneMsg{csvFile: csvFile, cards: len(cards)}
	}
}

type clipExtractor func(inputFile, startTime, endTime, outputFile string) error

// exportCards cuts one mp3 per card into <base>_media/ and writes
// <base>_deck.csv next to the video, ready for Anki's CSV import.
func exportCards(inputFile string, cards []Card, extract clipExtractor) (string, error) {
	if len(cards) == 0 {
		return "", errNoCardsSelected
	}

	dir := filepath.Dir(inputFile)
	basename := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	mediaDir := filepath.Join(dir, basename+"_media")
	if err := os.MkdirAll(mediaDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}

	rows := make([][]string, 0, len(cards))
	for _, card := range cards {
		if err := checkClipTimes(card); err != nil {
			return "", err
		}

		clipFile := clipFilename(basename, card)
		if err := extract(inputFile, card.StartTime, card.EndTime, filepath.Join(mediaDir, clipFile)); err != nil {
			return "", err
		}
		rows = append(rows, csvRow(card, clipFile))
	}

	csvFile := filepath.Join(dir, basename+"_deck.csv")
	if err := writeCSV(csvFile, rows); err != nil {
		return "", err
	}

	logger.Info("deck exported", "comp", "export", "csv", csvFile, "cards", len(cards))
	return csvFile, nil
}

func checkClipTimes(card Card) error {
	start, err := parseTimeToSeconds(card.StartTime)
	if err != nil {
		return fmt.Errorf("could not parse start time '%s': %w", card.StartTime, err)
	}
	end, err := parseTimeToSeconds(card.EndTime)
	if err != nil {
		return fmt.Errorf("could not parse end time '%s': %w", card.EndTime, err)
	}
	if end <= start {
		return fmt.Errorf("card %s ends before it starts (%s - %s)", card.ID, card.StartTime, card.EndTime)
	}
	return nil
}

func clipFilename(basename string, card Card) string {
	return fmt.Sprintf("%s___%s-%s___%s.mp3",
		bracketEscaper.Replace(basename),
		timestampEscaper.Replace(card.StartTime),
		timestampEscaper.Replace(card.EndTime),
		card.ID,
	)
}

// csvRow columns: id, transcription, meaning, notes, sound, tags.
func csvRow(card Card, clipFile string) []string {
	return []string{
		card.ID,
		roughEscape(cloze.Markup(card.Transcription, card.Cloze)),
		roughEscape(card.Meaning),
		roughEscape(card.Notes),
		"[sound:" + clipFile + "]",
		strings.Join(card.Tags, " "),
	}
}

func roughEscape(text string) string {
	return strings.ReplaceAll(text, "\n", "<br />")
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv: %w", err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return f.Close()
}
