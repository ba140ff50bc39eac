package generation

import (
	"context"

	"github.com/studentmate/tutor/internal/domain"
)

// Model is the language-model capability the orchestrator drives.
type Model interface {
	Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error)
	CompleteJSON(ctx context.Context, prompt string, opts domain.CompletionOptions, out any) error
}

// Retriever returns sanitized owner-scoped documents for a query.
type Retriever interface {
	Retrieve(ctx context.Context, ownerID, query string) []domain.Document
}
