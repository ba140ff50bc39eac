package document

import (
	"context"

	"github.com/studentmate/tutor/internal/domain"
)

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Repository defines the storage contract for uploaded documents.
type Repository interface {
	Save(ctx context.Context, info domain.DocumentInfo, chunks []domain.DocumentChunk) error
	ListByOwner(ctx context.Context, ownerID string) ([]domain.DocumentInfo, error)
	Delete(ctx context.Context, ownerID, id string) error
}
