package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	openai "github.com/sashabaranov/go-openai"
)

const transcribeTimeout = 10 * time.Minute

var errNoTranscript = errors.New("transcript has no cues")

func extractAudioCmd(inputFile string) tea.Cmd {
	return func() tea.Msg {
		audioFile, err := extractAudio(inputFile)
		if err != nil {
			return errorMsg{err: err}
		}
		return audioExtractedMsg{audioFile: audioFile}
	}
}

func transcribeAudioCmd(audioFile, lang, prompt string) tea.Cmd {
	return func() tea.Msg {
		vttContent, err := transcribeWithOpenAI(audioFile, lang, prompt)
		if err != nil {
			return errorMsg{err: err}
		}

		transcriptItems, err := parseVTT(vttContent)
		if err != nil {
			return errorMsg{err: err}
		}

		basename := strings.TrimSuffix(filepath.Base(audioFile), filepath.Ext(audioFile))
		vttFile := basename + ".vtt"
		if err := os.WriteFile(vttFile, []byte(vttContent), 0644); err != nil {
			return errorMsg{err: err}
		}

		os.Remove(audioFile)

		return transcriptionDoneMsg{transcriptItems: transcriptItems}
	}
}

// saveDeckCmd encodes the deck right away, on the update loop, and only
// does the file write in the background.
func saveDeckCmd(path string, deck *Deck) tea.Cmd {
	data, err := deck.marshal()
	if err != nil {
		return func() tea.Msg { return errorMsg{err: err} }
	}
	return func() tea.Msg {
		if err := writeDeckFile(path, data); err != nil {
			return errorMsg{err: err}
		}
		return deckSavedMsg{path: path}
	}
}

func extractAudio(inputFile string) (string, error) {
	basename := strings.TrimSuffix(filepath.Base(inputFile), filepath.Ext(inputFile))
	audioFile := basename + ".mp3"

	cmd := exec.Command("ffmpeg", "-y", "-i", inputFile, audioFile)
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("failed to extract audio: %w", err)
	}

	logger.Info("audio extracted", "comp", "media", "input", inputFile, "audio", audioFile)
	return audioFile, nil
}

func transcribeWithOpenAI(audioFile, lang, prompt string) (string, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return "", fmt.Errorf("OPENAI_API_KEY environment variable is not set")
	}

	req := openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: audioFile,
		Prompt:   prompt,
		Format:   openai.AudioResponseFormatVTT,
	}
	if lang != "" && lang != "auto" {
		req.Language = lang
	}

	ctx, cancel := context.WithTimeout(context.Background(), transcribeTimeout)
	defer cancel()

	start := time.Now()
	resp, err := openai.NewClient(apiKey).CreateTranscription(ctx, req)
	if err != nil {
		return "", fmt.Errorf("transcription request failed: %w", err)
	}

	logger.Info("transcription finished", "comp", "media", "audio", audioFile, "lang", lang, "dur_ms", time.Since(start).Milliseconds())
	return resp.Text, nil
}

var timeStampRegex = regexp.MustCompile(`^(\d{2}:\d{2}:\d{2}\.\d{3}) --> (\d{2}:\d{2}:\d{2}\.\d{3})`)

// parseVTT reads the cues of a WebVTT file. A cue's text lines are joined
// with a newline.
func parseVTT(vttContent string) ([]TranscriptItem, error) {
	lines := strings.Split(vttContent, "\n")
	var transcriptItems []TranscriptItem

	var current *TranscriptItem
	flush := func() {
		if current != nil && current.Text != "" {
			transcriptItems = append(transcriptItems, *current)
		}
		current = nil
	}

	for _, line := range lines {
		line = strings.TrimSpace(line)

		if matches := timeStampRegex.FindStringSubmatch(line); matches != nil {
			flush()
			current = &TranscriptItem{StartTime: matches[1], EndTime: matches[2]}
			continue
		}

		if line == "" {
			flush()
			continue
		}

		if strings.HasPrefix(line, "WEBVTT") || current == nil {
			continue
		}

		if current.Text != "" {
			current.Text += "\n"
		}
		current.Text += line
	}
	flush()

	if len(transcriptItems) == 0 {
		return nil, errNoTranscript
	}
	return transcriptItems, nil
}

func previewClip(inputFile, startTime, endTime string) {
	cmd := exec.Command("mpv", "--start="+startTime, "--end="+endTime, inputFile)
	if err := cmd.Run(); err != nil {
		logger.Warn("preview failed", "comp", "media", "err", err)
	}
}

func extractClip(inputFile, startTime, endTime, outputFile string) error {
	cmd := exec.Command(
		"ffmpeg",
		"-y",
		"-ss", startTime,
		"-to", endTime,
		"-i", inputFile,
		"-vn",
		outputFile,
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		logger.Error("clip extraction failed", "comp", "media", "output", outputFile, "ffmpeg", string(out))
		return fmt.Errorf("failed to extract clip %s: %w", filepath.Base(outputFile), err)
	}
	return nil
}

func parseTimeToSeconds(timeStr string) (float64, error) {
	var hours, minutes int
	var seconds float64

	_, err := fmt.Sscanf(timeStr, "%d:%d:%f", &hours, &minutes, &seconds)
	if err != nil {
		return 0, err
	}

	totalSeconds := float64(hours*3600) + float64(minutes*60) + seconds
	return totalSeconds, nil
}

func styleOutput(statuses []string) string {
	var styledStatuses []string
	for i, status := range statuses {
		bullet := "├"
		if i == len(statuses)-1 {
			bullet = "└"
		}
		styledStatuses = append(styledStatuses, BulletStyle.Render(bullet)+TextStyle.Render(status))
	}
	return strings.Join(styledStatuses, "\n") + "\n"
}

func checkDependency(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}

func getSystemUser() string {
	username := os.Getenv("USER")
	if username == "" {
		username = os.Getenv("USERNAME") // Windows fallback
	}
	if username == "" {
		username = "anon" // Default fallback
	}

	return username
}
