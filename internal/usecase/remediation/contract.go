package remediation

import (
	"context"

	"github.com/studentmate/tutor/internal/domain"
)

// Model is the language-model capability used for the friendly analysis.
type Model interface {
	Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error)
}

// WebSearcher runs a web search for study resources.
type WebSearcher interface {
	Search(ctx context.Context, query string) ([]domain.WebSearchResult, error)
}
