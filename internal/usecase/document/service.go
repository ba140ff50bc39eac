// Package document ingests study material: it chunks uploaded text,
// embeds each chunk, and stores the vectors for owner-scoped retrieval.
package document

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/studentmate/tutor/internal/domain"
	"github.com/studentmate/tutor/internal/logger"
)

// chunkWordCount groups roughly 300 tokens of text per chunk.
const chunkWordCount = 220

// Service handles document upload, listing, and deletion.
type Service struct {
	embed Embedder
	repo  Repository
}

// New creates a document service.
func New(embed Embedder, repo Repository) *Service {
	return &Service{embed: embed, repo: repo}
}

// Upload chunks and embeds content, then stores it under the owner.
func (s *Service) Upload(ctx context.Context, ownerID, filename, content string) (domain.DocumentInfo, error) {
	if strings.TrimSpace(ownerID) == "" {
		return domain.DocumentInfo{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	if strings.TrimSpace(content) == "" {
		return domain.DocumentInfo{}, fmt.Errorf("%w: document content is empty", domain.ErrValidation)
	}

	texts := chunkText(content)

	chunks := make([]domain.DocumentChunk, 0, len(texts))
	for i, text := range texts {
		emb, err := s.embed.Embed(ctx, text)
		if err != nil {
			return domain.DocumentInfo{}, fmt.Errorf("embed chunk %d: %w", i, err)
		}
		chunks = append(chunks, domain.DocumentChunk{Text: text, Vector: emb.Embedding})
	}

	info := domain.DocumentInfo{
		ID:         newDocID(),
		OwnerID:    ownerID,
		Filename:   filename,
		ChunkCount: len(chunks),
		UploadedAt: time.Now().UTC(),
	}

	if err := s.repo.Save(ctx, info, chunks); err != nil {
		return domain.DocumentInfo{}, fmt.Errorf("save document: %w", err)
	}

	logger.FromContext(ctx).Info("document ingested",
		zap.String("owner", ownerID),
		zap.String("doc_id", info.ID),
		zap.Int("chunks", len(chunks)))

	return info, nil
}

// List returns the owner's uploaded documents.
func (s *Service) List(ctx context.Context, ownerID string) ([]domain.DocumentInfo, error) {
	if strings.TrimSpace(ownerID) == "" {
		return nil, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	return s.repo.ListByOwner(ctx, ownerID)
}

// Delete removes one of the owner's documents and all of its chunks.
func (s *Service) Delete(ctx context.Context, ownerID, id string) error {
	if strings.TrimSpace(ownerID) == "" {
		return fmt.Errorf("%w: username is required", domain.ErrValidation)
	}
	return s.repo.Delete(ctx, ownerID, id)
}

// chunkText splits content into fixed-size word groups.
func chunkText(content string) []string {
	words := strings.Fields(content)
	if len(words) == 0 {
		return nil
	}

	chunks := make([]string, 0, len(words)/chunkWordCount+1)
	for start := 0; start < len(words); start += chunkWordCount {
		end := start + chunkWordCount
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
	}
	return chunks
}

func newDocID() string {
	buf := make([]byte, 8)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("%d", time.Now().UnixNano())
	}
	return hex.EncodeToString(buf)
}
