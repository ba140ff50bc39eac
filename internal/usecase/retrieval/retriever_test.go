package retrieval

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/studentmate/tutor/internal/domain"
	"github.com/studentmate/tutor/internal/sanitize"
)

// --- Mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	called bool
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called = true
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type mockSearcher struct {
	docs      []domain.Document
	err       error
	lastOwner string
	lastTopK  int
	called    bool
}

func (m *mockSearcher) Search(_ context.Context, ownerID string, _ []float32, topK int) ([]domain.Document, error) {
	m.called = true
	m.lastOwner = ownerID
	m.lastTopK = topK
	return m.docs, m.err
}

// --- Tests ---

func TestRetrieve_OwnerScopedWithPolicy(t *testing.T) {
	search := &mockSearcher{docs: []domain.Document{
		{ID: "1", Text: "high", OwnerID: "alice", Score: 0.9},
		{ID: "2", Text: "low", OwnerID: "alice", Score: 0.3},
	}}
	r := New(&mockEmbedder{vec: []float32{0.1}}, search, QuizPolicy)

	docs := r.Retrieve(context.Background(), "alice", "cells")

	if search.lastOwner != "alice" {
		t.Errorf("owner = %q, want alice", search.lastOwner)
	}
	if search.lastTopK != QuizPolicy.TopK {
		t.Errorf("topK = %d, want %d", search.lastTopK, QuizPolicy.TopK)
	}
	if len(docs) != 1 || docs[0].ID != "1" {
		t.Fatalf("expected only the above-threshold document, got %+v", docs)
	}
}

func TestRetrieve_SanitizesResults(t *testing.T) {
	search := &mockSearcher{docs: []domain.Document{
		{ID: "1", Text: "email me at a@b.io", Score: 0.9},
	}}
	r := New(&mockEmbedder{vec: []float32{0.1}}, search, ChatPolicy)

	docs := r.Retrieve(context.Background(), "alice", "q")

	if len(docs) != 1 {
		t.Fatalf("expected 1 document, got %d", len(docs))
	}
	if !docs[0].PIIMasked {
		t.Error("document not marked as masked")
	}
	if !strings.Contains(docs[0].Text, sanitize.EmailToken) {
		t.Errorf("text = %q, expected email redaction", docs[0].Text)
	}
}

func TestRetrieve_EmbedFailureDegradesToEmpty(t *testing.T) {
	search := &mockSearcher{docs: []domain.Document{{ID: "1", Score: 0.9}}}
	r := New(&mockEmbedder{err: errors.New("provider down")}, search, ChatPolicy)

	docs := r.Retrieve(context.Background(), "alice", "q")

	if len(docs) != 0 {
		t.Errorf("expected empty result on embed failure, got %d", len(docs))
	}
	if search.called {
		t.Error("search must not run when the query cannot be embedded")
	}
}

func TestRetrieve_SearchFailureDegradesToEmpty(t *testing.T) {
	search := &mockSearcher{err: errors.New("index gone")}
	r := New(&mockEmbedder{vec: []float32{0.1}}, search, ChatPolicy)

	if docs := r.Retrieve(context.Background(), "alice", "q"); len(docs) != 0 {
		t.Errorf("expected empty result on search failure, got %d", len(docs))
	}
}

func TestRetrieve_EmptyOwnerWithoutDefault(t *testing.T) {
	embed := &mockEmbedder{vec: []float32{0.1}}
	search := &mockSearcher{docs: []domain.Document{{ID: "1", Score: 0.9}}}
	r := New(embed, search, ChatPolicy)

	docs := r.Retrieve(context.Background(), "", "q")

	if len(docs) != 0 {
		t.Errorf("expected no results without an owner, got %d", len(docs))
	}
	if embed.called || search.called {
		t.Error("no calls should be made without an owner")
	}
}

func TestRetrieve_DefaultOwnerOptIn(t *testing.T) {
	search := &mockSearcher{docs: []domain.Document{{ID: "1", Score: 0.9}}}
	r := New(&mockEmbedder{vec: []float32{0.1}}, search, ChatPolicy, WithDefaultOwner("shared"))

	docs := r.Retrieve(context.Background(), "", "q")

	if search.lastOwner != "shared" {
		t.Errorf("owner = %q, want the configured default", search.lastOwner)
	}
	if len(docs) != 1 {
		t.Errorf("expected 1 document, got %d", len(docs))
	}
}
