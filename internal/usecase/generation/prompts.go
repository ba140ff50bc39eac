package generation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/studentmate/tutor/internal/domain"
)

// Content caps per phase. Content beyond the cap is discarded, not
// summarized further.
const (
	primaryContentCap = 2000
	salvageContentCap = 800
)

// Fixed probe used to pull a student's material when the request itself
// carries no free-text query.
const contentProbeQuery = "What are the main topics covered in the study material?"

const analyzeSystem = "You are a study assistant. Answer only from the provided material."

func analyzePrompt(content string) string {
	return fmt.Sprintf(
		"Summarize the salient facts and main topics of the following study material. "+
			"If the material does not contain enough information, say so.\n\n%s",
		content)
}

func primaryQuizPrompt(count int, difficulty domain.Difficulty, content string) string {
	return fmt.Sprintf(
		`Create exactly %d multiple-choice questions in Turkish from the study material below.
Difficulty: %s. Each question has exactly four options keyed "A", "B", "C", "D" and
one correct answer key.

Respond with a JSON object of this exact shape:
{"questions":[{"question":"...","options":{"A":"...","B":"...","C":"...","D":"..."},"answer":"A"}]}

Study material:
%s`,
		count, difficulty.Localized(), truncate(content, primaryContentCap))
}

func salvageQuizPrompt(count int, content string) string {
	return fmt.Sprintf(
		"Write %d short multiple-choice questions about this text as JSON "+
			`{"questions":[{"question":"","options":{"A":"","B":"","C":"","D":""},"answer":""}]}: %s`,
		count, truncate(content, salvageContentCap))
}

func flashcardPrompt(count int, topic, content string) string {
	return fmt.Sprintf(
		`Create exactly %d study flashcards in Turkish about "%s" from the material below.
Each card has a short front (term or question) and a concise back (definition or answer).

Respond with a JSON object of this exact shape:
{"flashcards":[{"front":"...","back":"..."}]}

Study material:
%s`,
		count, topic, truncate(content, primaryContentCap))
}

// truncate cuts s to at most limit bytes without splitting a rune.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

// joinContent concatenates retrieved document texts into one block.
func joinContent(docs []domain.Document) string {
	parts := make([]string, 0, len(docs))
	for _, d := range docs {
		if d.Text != "" {
			parts = append(parts, d.Text)
		}
	}
	return strings.Join(parts, "\n\n")
}
