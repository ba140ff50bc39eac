// Package search runs owner-scoped KNN queries over the chunk index.
package search

import (
	"context"
	"fmt"
	"strconv"

	"github.com/studentmate/tutor/internal/db"
	"github.com/studentmate/tutor/internal/domain"
)

type searcher interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo translates KNN search hits into domain documents.
type Repo struct {
	searcher  searcher
	indexName string
}

// New creates a search repository over the given FT index.
func New(s searcher, indexName string) *Repo {
	return &Repo{searcher: s, indexName: indexName}
}

// Search returns the topK chunks nearest to the query vector, restricted
// to the given owner. Results carry the cosine similarity score.
func (r *Repo) Search(ctx context.Context, ownerID string, vector []float32, topK int) ([]domain.Document, error) {
	q := &db.KNNQuery{
		IndexName:    r.indexName,
		Filter:       &db.TagFilter{Field: "owner", Value: ownerID},
		Vector:       vector,
		K:            topK,
		ReturnFields: []string{"content", "doc_id", "owner", "filename"},
	}

	result, err := r.searcher.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("knn search: %w", err)
	}

	docs := make([]domain.Document, 0, len(result.Entries))
	for i, entry := range result.Entries {
		docs = append(docs, domain.Document{
			ID:      entry.Key,
			Text:    entry.Fields["content"],
			OwnerID: entry.Fields["owner"],
			Score:   entry.Score,
			Metadata: map[string]string{
				"doc_id":   entry.Fields["doc_id"],
				"filename": entry.Fields["filename"],
				"rank":     strconv.Itoa(i),
			},
		})
	}
	return docs, nil
}
