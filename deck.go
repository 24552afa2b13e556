package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/aschmelyun/tcloze/cloze"
)

const deckExt = ".tcloze.yaml"

type Card struct {
	ID            string           `yaml:"id"`
	StartTime     string           `yaml:"start"`
	EndTime       string           `yaml:"end"`
	Transcription string           `yaml:"transcription"`
	Meaning       string           `yaml:"meaning,omitempty"`
	Notes         string           `yaml:"notes,omitempty"`
	Tags          []string         `yaml:"tags,omitempty"`
	Selected      bool             `yaml:"selected,omitempty"`
	Cloze         []cloze.Deletion `yaml:"cloze,omitempty"`
}

// Deck is everything tcloze knows about one video, saved next to its
// transcript so work survives restarts.
type Deck struct {
	Source string `yaml:"source"`
	Cards  []Card `yaml:"cards"`
}

func deckFileFor(inputFile string) string {
	basename := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	return basename + deckExt
}

func newDeck(source string, transcriptItems []TranscriptItem) *Deck {
	deck := &Deck{Source: source, Cards: make([]Card, len(transcriptItems))}
	for i, t := range transcriptItems {
		deck.Cards[i] = Card{
			ID:            uuid.New().String(),
			StartTime:     t.StartTime,
			EndTime:       t.EndTime,
			Transcription: t.Text,
		}
	}
	return deck
}

func loadDeck(path string) (*Deck, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read deck: %w", err)
	}

	var deck Deck
	if err := yaml.Unmarshal(data, &deck); err != nil {
		return nil, fmt.Errorf("failed to parse deck %s: %w", path, err)
	}

	for i := range deck.Cards {
		if deck.Cards[i].ID == "" {
			deck.Cards[i].ID = uuid.New().String()
		}
	}

	logger.Info("deck loaded", "comp", "deck", "path", path, "cards", len(deck.Cards))
	return &deck, nil
}

func (d *Deck) marshal() ([]byte, error) {
	data, err := yaml.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode deck: %w", err)
	}
	return data, nil
}

func (d *Deck) save(path string) error {
	data, err := d.marshal()
	if err != nil {
		return err
	}
	return writeDeckFile(path, data)
}

// writeDeckFile replaces path atomically so a crash never leaves half a deck.
func writeDeckFile(path string, data []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp deck: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write deck: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write deck: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace deck: %w", err)
	}
	return nil
}

// selectedCards returns copies, safe to hand to a background command.
func (d *Deck) selectedCards() []Card {
	var cards []Card
	for _, c := range d.Cards {
		if c.Selected {
			cards = append(cards, c)
		}
	}
	return cards
}

// cardStore lets a cloze.Session edit the deletions of one card.
type cardStore struct {
	card *Card
}

func (s cardStore) Deletions() []cloze.Deletion {
	return s.card.Cloze
}

func (s cardStore) AddDeletion(d cloze.Deletion) {
	s.card.Cloze = cloze.AddDeletion(s.card.Cloze, d)
	logger.Debug("deletion added", "comp", "editor", "card", s.card.ID, "ranges", d.Ranges, "count", len(s.card.Cloze))
}

func (s cardStore) EditDeletion(index int, ranges []cloze.Range) {
	s.card.Cloze = cloze.EditDeletion(s.card.Cloze, index, ranges)
	logger.Debug("deletion edited", "comp", "editor", "card", s.card.ID, "cloze", cloze.ID(index), "ranges", ranges)
}

func (s cardStore) RemoveDeletion(index int) {
	s.card.Cloze = cloze.RemoveDeletion(s.card.Cloze, index)
	logger.Debug("deletion removed", "comp", "editor", "card", s.card.ID, "cloze", cloze.ID(index))
}
