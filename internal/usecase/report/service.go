// Package report renders and persists plain-text quiz analysis reports.
package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/studentmate/tutor/internal/domain"
)

// FileWriter persists a named report and returns its path. There is no
// safe fallback for report persistence; failures surface to the caller.
type FileWriter interface {
	Write(name, content string) (string, error)
}

// Data is the payload rendered into a report.
type Data struct {
	Analysis     string                       `json:"analysis"`
	WrongAnswers []domain.WrongAnswer         `json:"wrongAnswers"`
	Resources    []domain.RemediationResource `json:"webResources"`
}

// Service renders and saves quiz analysis reports.
type Service struct {
	files FileWriter
}

// New creates a report service.
func New(files FileWriter) *Service {
	return &Service{files: files}
}

// Save renders the report and writes it to storage, returning the path.
func (s *Service) Save(ctx context.Context, ownerID string, data Data) (string, error) {
	if strings.TrimSpace(ownerID) == "" {
		return "", fmt.Errorf("%w: username is required", domain.ErrValidation)
	}

	now := time.Now().UTC()
	name := fmt.Sprintf("quiz_report_%s_%s.txt", ownerID, now.Format("20060102_150405"))

	path, err := s.files.Write(name, render(ownerID, now, data))
	if err != nil {
		return "", fmt.Errorf("save report: %w", err)
	}
	return path, nil
}

func render(ownerID string, now time.Time, data Data) string {
	var b strings.Builder

	b.WriteString("QUIZ ANALYSIS REPORT\n")
	b.WriteString("====================\n\n")
	fmt.Fprintf(&b, "Student: %s\n", ownerID)
	fmt.Fprintf(&b, "Date: %s\n\n", now.Format("2006-01-02 15:04"))

	if len(data.WrongAnswers) > 0 {
		b.WriteString("QUESTIONS TO REVIEW\n")
		b.WriteString("-------------------\n")
		for _, w := range data.WrongAnswers {
			fmt.Fprintf(&b, "%d. %s\n", w.QuestionNumber, w.QuestionText)
			fmt.Fprintf(&b, "   Correct: %s\n", w.CorrectAnswer)
			fmt.Fprintf(&b, "   Your answer: %s\n\n", w.StudentAnswer)
		}
	}

	if data.Analysis != "" {
		b.WriteString("RECOMMENDATIONS\n")
		b.WriteString("---------------\n")
		b.WriteString(data.Analysis)
		b.WriteString("\n\n")
	}

	if len(data.Resources) > 0 {
		b.WriteString("STUDY RESOURCES\n")
		b.WriteString("---------------\n")
		for _, r := range data.Resources {
			fmt.Fprintf(&b, "Topic: %s\n", r.Topic)
			for _, link := range r.VideoLinks {
				fmt.Fprintf(&b, "  Video: %s\n", link)
			}
			for _, link := range r.WebLinks {
				fmt.Fprintf(&b, "  Web: %s\n", link)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
