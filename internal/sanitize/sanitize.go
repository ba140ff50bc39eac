// Package sanitize masks personally identifiable information in document
// text before it reaches a prompt or a caller.
package sanitize

import (
	"regexp"

	"github.com/studentmate/tutor/internal/domain"
)

// Redaction tokens substituted for matched PII.
const (
	EmailToken = "[REDACTED_EMAIL]"
	PhoneToken = "[REDACTED_PHONE]"
)

var (
	emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	phonePattern = regexp.MustCompile(`\b(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}\b`)
)

// Mask replaces email addresses and phone numbers with fixed redaction
// tokens. The email pass runs before the phone pass; overlaps resolve by
// that order, not by longest match.
func Mask(text string) string {
	masked := emailPattern.ReplaceAllString(text, EmailToken)
	masked = phonePattern.ReplaceAllString(masked, PhoneToken)
	return masked
}

// Process returns a new slice of documents with masked text and the
// PIIMasked flag set. Input documents are never mutated; score and
// metadata carry over unchanged.
func Process(docs []domain.Document) []domain.Document {
	if len(docs) == 0 {
		return docs
	}
	out := make([]domain.Document, len(docs))
	for i, doc := range docs {
		out[i] = doc.WithText(Mask(doc.Text))
	}
	return out
}
