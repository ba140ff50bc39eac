package document

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/studentmate/tutor/internal/domain"
)

type mockEmbedder struct {
	err   error
	calls int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: []float32{0.1, 0.2}}, nil
}

type mockRepo struct {
	savedInfo   domain.DocumentInfo
	savedChunks []domain.DocumentChunk
	saveErr     error
	listed      []domain.DocumentInfo
	deleteErr   error
	deletedID   string
}

func (m *mockRepo) Save(_ context.Context, info domain.DocumentInfo, chunks []domain.DocumentChunk) error {
	m.savedInfo = info
	m.savedChunks = chunks
	return m.saveErr
}

func (m *mockRepo) ListByOwner(_ context.Context, _ string) ([]domain.DocumentInfo, error) {
	return m.listed, nil
}

func (m *mockRepo) Delete(_ context.Context, _, id string) error {
	m.deletedID = id
	return m.deleteErr
}

func TestUpload(t *testing.T) {
	embed := &mockEmbedder{}
	repo := &mockRepo{}
	svc := New(embed, repo)

	content := strings.Repeat("word ", 500) // two chunks at 220 words each, plus remainder
	info, err := svc.Upload(context.Background(), "alice", "notes.txt", content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if info.OwnerID != "alice" || info.Filename != "notes.txt" {
		t.Errorf("info = %+v", info)
	}
	if info.ID == "" {
		t.Error("expected a generated document id")
	}
	if info.ChunkCount != 3 {
		t.Errorf("ChunkCount = %d, want 3", info.ChunkCount)
	}
	if embed.calls != 3 {
		t.Errorf("embed calls = %d, want one per chunk", embed.calls)
	}
	if len(repo.savedChunks) != 3 {
		t.Fatalf("saved %d chunks", len(repo.savedChunks))
	}
	for i, c := range repo.savedChunks {
		if c.Text == "" || len(c.Vector) == 0 {
			t.Errorf("chunk %d incomplete", i)
		}
	}
}

func TestUpload_Validation(t *testing.T) {
	svc := New(&mockEmbedder{}, &mockRepo{})

	if _, err := svc.Upload(context.Background(), "", "f", "content"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank owner: expected ErrValidation, got %v", err)
	}
	if _, err := svc.Upload(context.Background(), "alice", "f", "   "); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank content: expected ErrValidation, got %v", err)
	}
}

func TestUpload_EmbedFailure(t *testing.T) {
	svc := New(&mockEmbedder{err: errors.New("provider down")}, &mockRepo{})

	if _, err := svc.Upload(context.Background(), "alice", "f", "some words"); err == nil {
		t.Fatal("expected error")
	}
}

func TestChunkText(t *testing.T) {
	if got := chunkText(""); got != nil {
		t.Errorf("empty content: got %v", got)
	}

	short := chunkText("just a few words")
	if len(short) != 1 || short[0] != "just a few words" {
		t.Errorf("short content: got %v", short)
	}

	long := chunkText(strings.Repeat("w ", chunkWordCount+1))
	if len(long) != 2 {
		t.Fatalf("got %d chunks, want 2", len(long))
	}
	if len(strings.Fields(long[0])) != chunkWordCount {
		t.Errorf("first chunk has %d words", len(strings.Fields(long[0])))
	}
	if long[1] != "w" {
		t.Errorf("remainder chunk = %q", long[1])
	}
}

func TestDelete(t *testing.T) {
	repo := &mockRepo{}
	svc := New(&mockEmbedder{}, repo)

	if err := svc.Delete(context.Background(), "alice", "doc1"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.deletedID != "doc1" {
		t.Errorf("deleted id = %q", repo.deletedID)
	}

	if err := svc.Delete(context.Background(), "", "doc1"); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank owner: expected ErrValidation, got %v", err)
	}
}
