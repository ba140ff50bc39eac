package retrieval

import (
	"context"

	"github.com/studentmate/tutor/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Searcher runs owner-scoped KNN queries over stored chunks.
type Searcher interface {
	Search(ctx context.Context, ownerID string, vector []float32, topK int) ([]domain.Document, error)
}
