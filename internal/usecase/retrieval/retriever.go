// Package retrieval provides owner-scoped similarity search over a
// student's uploaded documents, with PII sanitization applied to
// everything it returns.
package retrieval

import (
	"context"

	"go.uber.org/zap"

	"github.com/studentmate/tutor/internal/domain"
	"github.com/studentmate/tutor/internal/logger"
	"github.com/studentmate/tutor/internal/metrics"
	"github.com/studentmate/tutor/internal/sanitize"
)

// Policy fixes topK and the minimum similarity score for one call site.
// The values differ per use on purpose; they were tuned independently.
type Policy struct {
	Use      string // metrics label
	TopK     int
	MinScore float64
}

var (
	ChatPolicy      = Policy{Use: "chat", TopK: 10, MinScore: 0.5}
	AnalysisPolicy  = Policy{Use: "analysis", TopK: 15, MinScore: 0.4}
	QuizPolicy      = Policy{Use: "quiz", TopK: 20, MinScore: 0.5}
	FlashcardPolicy = Policy{Use: "flashcard", TopK: 15, MinScore: 0.5}
)

// Retriever embeds a query, searches the caller's documents, and masks
// PII in the hits. Owner identity is always an explicit parameter.
type Retriever struct {
	embed        Embedder
	search       Searcher
	policy       Policy
	defaultOwner string
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithDefaultOwner makes the retriever fall back to the given owner when
// a call passes an empty ownerID. Without this option an empty owner
// yields no results.
func WithDefaultOwner(ownerID string) Option {
	return func(r *Retriever) { r.defaultOwner = ownerID }
}

// New creates a retriever with a fixed policy.
func New(embed Embedder, search Searcher, policy Policy, opts ...Option) *Retriever {
	r := &Retriever{embed: embed, search: search, policy: policy}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Retrieve returns sanitized documents belonging to ownerID that are
// similar to the query. Failures are logged and degrade to an empty
// result set: callers treat "nothing retrieved" and "retrieval broke"
// identically, via the insufficient-content path.
func (r *Retriever) Retrieve(ctx context.Context, ownerID, query string) []domain.Document {
	log := logger.FromContext(ctx)

	if ownerID == "" {
		if r.defaultOwner == "" {
			log.Warn("retrieval without owner", zap.String("use", r.policy.Use))
			return nil
		}
		ownerID = r.defaultOwner
	}

	emb, err := r.embed.Embed(ctx, query)
	if err != nil {
		log.Error("vectorize query failed",
			zap.String("use", r.policy.Use), zap.Error(err))
		return nil
	}

	docs, err := r.search.Search(ctx, ownerID, emb.Embedding, r.policy.TopK)
	if err != nil {
		log.Error("similarity search failed",
			zap.String("use", r.policy.Use),
			zap.String("owner", ownerID), zap.Error(err))
		return nil
	}

	filtered := docs[:0]
	for _, d := range docs {
		if d.Score >= r.policy.MinScore {
			filtered = append(filtered, d)
		}
	}

	metrics.RetrievalDocumentsReturned.WithLabelValues(r.policy.Use).Observe(float64(len(filtered)))

	return sanitize.Process(filtered)
}
