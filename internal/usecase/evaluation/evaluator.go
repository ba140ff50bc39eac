// Package evaluation scores submitted quiz answers.
package evaluation

import (
	"fmt"
	"strings"

	"github.com/studentmate/tutor/internal/domain"
)

// Markers used when an answer cannot be resolved to a real option.
const (
	NotAnswered   = "Not answered"
	UnknownAnswer = "Unknown answer"
)

// Evaluate compares submitted answer letters against the correct keys,
// question by question. A missing submission counts as incorrect. The
// result always satisfies totalQuestions = correctCount + wrongCount.
func Evaluate(questions []domain.QuizQuestion, submitted []string) domain.EvaluationResult {
	result := domain.EvaluationResult{
		TotalQuestions: len(questions),
		WrongAnswers:   []domain.WrongAnswer{},
	}

	for i, q := range questions {
		var answer string
		if i < len(submitted) {
			answer = strings.ToUpper(strings.TrimSpace(submitted[i]))
		}

		if answer != "" && answer == q.Answer {
			result.CorrectCount++
			continue
		}

		wrong := domain.WrongAnswer{
			QuestionNumber: i + 1,
			QuestionText:   q.Question,
			CorrectAnswer:  resolveAnswerText(q, q.Answer),
		}
		if answer == "" {
			wrong.StudentAnswer = NotAnswered
		} else {
			wrong.StudentAnswer = resolveAnswerText(q, answer)
		}
		result.WrongAnswers = append(result.WrongAnswers, wrong)
	}

	result.WrongCount = len(result.WrongAnswers)
	return result
}

// resolveAnswerText renders "A) option text" for a letter. Letters
// outside A-D (index 0-3) resolve to an explicit marker, never a panic.
func resolveAnswerText(q domain.QuizQuestion, letter string) string {
	if !validLetter(letter) {
		return UnknownAnswer
	}
	text, ok := q.Options[letter]
	if !ok {
		return UnknownAnswer
	}
	return fmt.Sprintf("%s) %s", letter, text)
}

func validLetter(letter string) bool {
	for _, l := range domain.OptionLetters {
		if l == letter {
			return true
		}
	}
	return false
}
