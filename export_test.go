package main

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/aschmelyun/tcloze/cloze"
)

func TestClipFilename(t *testing.T) {
	card := Card{ID: "abc", StartTime: "00:00:01.000", EndTime: "00:00:02.500"}
	got := clipFilename("My [clip]", card)
	want := "My __br__clip__rb_____00-00-01_000-00-00-02_500___abc.mp3"
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestCSVRow(t *testing.T) {
	card := Card{
		ID:            "abc",
		Transcription: "hola mundo\nbien",
		Meaning:       "hello world",
		Notes:         "line one\nline two",
		Tags:          []string{"a1", "greeting"},
		Cloze: []cloze.Deletion{
			{Ranges: []cloze.Range{{Start: 0, End: 4}}},
			{Ranges: []cloze.Range{{Start: 11, End: 15}}},
		},
	}
	got := csvRow(card, "clip.mp3")
	want := []string{
		"abc",
		"{{c1::hola}} mundo<br />{{c2::bien}}",
		"hello world",
		"line one<br />line two",
		"[sound:clip.mp3]",
		"a1 greeting",
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %q\nwant %q", got, want)
	}
}

func TestExportCards(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lesson.mp4")
	cards := []Card{
		{ID: "a", StartTime: "00:00:00.000", EndTime: "00:00:01.000", Transcription: "uno"},
		{ID: "b", StartTime: "00:00:01.000", EndTime: "00:00:02.000", Transcription: "dos",
			Cloze: []cloze.Deletion{{Ranges: []cloze.Range{{Start: 0, End: 3}}}}},
	}

	var outputs []string
	extract := func(inputFile, startTime, endTime, outputFile string) error {
		if inputFile != input {
			t.Errorf("extract got input %q", inputFile)
		}
		outputs = append(outputs, outputFile)
		return nil
	}

	csvFile, err := exportCards(input, cards, extract)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if csvFile != filepath.Join(dir, "lesson_deck.csv") {
		t.Fatalf("csv at %q", csvFile)
	}

	mediaDir := filepath.Join(dir, "lesson_media")
	wantOutputs := []string{
		filepath.Join(mediaDir, "lesson___00-00-00_000-00-00-01_000___a.mp3"),
		filepath.Join(mediaDir, "lesson___00-00-01_000-00-00-02_000___b.mp3"),
	}
	if !reflect.DeepEqual(outputs, wantOutputs) {
		t.Fatalf("clips %q\nwant %q", outputs, wantOutputs)
	}

	f, err := os.Open(csvFile)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d", len(rows))
	}
	if rows[1][1] != "{{c1::dos}}" || rows[1][4] != "[sound:lesson___00-00-01_000-00-00-02_000___b.mp3]" {
		t.Fatalf("unexpected row %q", rows[1])
	}
}

func TestExportCardsErrors(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "lesson.mp4")
	noop := func(_, _, _, _ string) error { return nil }

	if _, err := exportCards(input, nil, noop); !errors.Is(err, errNoCardsSelected) {
		t.Fatalf("empty export err = %v", err)
	}

	backwards := []Card{{ID: "a", StartTime: "00:00:02.000", EndTime: "00:00:01.000"}}
	if _, err := exportCards(input, backwards, noop); err == nil {
		t.Fatalf("expect error for a clip that ends before it starts")
	}

	boom := errors.New("ffmpeg exploded")
	failing := func(_, _, _, _ string) error { return boom }
	good := []Card{{ID: "a", StartTime: "00:00:00.000", EndTime: "00:00:01.000"}}
	if _, err := exportCards(input, good, failing); !errors.Is(err, boom) {
		t.Fatalf("extract error not returned: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "lesson_deck.csv")); !os.IsNotExist(err) {
		t.Fatalf("csv written after a failed export")
	}
}
