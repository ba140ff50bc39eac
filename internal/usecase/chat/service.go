// Package chat answers free-form questions grounded in the student's
// own uploaded documents.
package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/studentmate/tutor/internal/domain"
)

// Model is the language-model capability used to answer questions.
type Model interface {
	Complete(ctx context.Context, prompt string, opts domain.CompletionOptions) (string, error)
}

// Retriever returns sanitized owner-scoped documents for a query.
type Retriever interface {
	Retrieve(ctx context.Context, ownerID, query string) []domain.Document
}

// Answer is a chat response with its originating query.
type Answer struct {
	Text    string `json:"answer"`
	OwnerID string `json:"username"`
	Query   string `json:"query"`
}

// Service answers questions against an owner's documents. Chat has no
// fallback tiers; a model answer saying the material lacks the answer
// passes through to the student unchanged.
type Service struct {
	model       Model
	docs        Retriever
	temperature float32
}

// New creates a chat service.
func New(model Model, docs Retriever, temperature float32) *Service {
	return &Service{model: model, docs: docs, temperature: temperature}
}

const chatSystem = "You are a helpful study assistant. Answer using only the provided " +
	"material. If the material does not contain the answer, say you don't know."

// Chat answers a question scoped to the owner's documents.
func (s *Service) Chat(ctx context.Context, ownerID, message string) (Answer, error) {
	if strings.TrimSpace(message) == "" {
		return Answer{}, fmt.Errorf("%w: message is required", domain.ErrValidation)
	}
	if strings.TrimSpace(ownerID) == "" {
		return Answer{}, fmt.Errorf("%w: username is required", domain.ErrValidation)
	}

	docs := s.docs.Retrieve(ctx, ownerID, message)

	var b strings.Builder
	for _, d := range docs {
		if d.Text == "" {
			continue
		}
		b.WriteString(d.Text)
		b.WriteString("\n\n")
	}

	prompt := fmt.Sprintf("Material:\n%s\nQuestion: %s", b.String(), message)

	text, err := s.model.Complete(ctx, prompt, domain.CompletionOptions{
		System:      chatSystem,
		Temperature: s.temperature,
	})
	if err != nil {
		return Answer{}, fmt.Errorf("chat completion: %w", err)
	}

	return Answer{Text: text, OwnerID: ownerID, Query: message}, nil
}
