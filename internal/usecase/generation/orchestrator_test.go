package generation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/studentmate/tutor/internal/domain"
)

// --- Mocks ---

// mockModel scripts one analysis completion, one structured completion,
// and one salvage completion, in the order the orchestrator makes them.
type mockModel struct {
	analysisText string
	analysisErr  error

	structured    []domain.QuizQuestion
	flashcards    []domain.Flashcard
	structuredErr error

	salvageText string
	salvageErr  error

	completeCalls int
	jsonCalls     int
}

func (m *mockModel) Complete(_ context.Context, _ string, _ domain.CompletionOptions) (string, error) {
	m.completeCalls++
	if m.completeCalls == 1 {
		return m.analysisText, m.analysisErr
	}
	return m.salvageText, m.salvageErr
}

func (m *mockModel) CompleteJSON(_ context.Context, _ string, _ domain.CompletionOptions, out any) error {
	m.jsonCalls++
	if m.structuredErr != nil {
		return m.structuredErr
	}
	switch p := out.(type) {
	case *quizPayload:
		p.Questions = m.structured
	case *flashcardPayload:
		p.Flashcards = m.flashcards
	}
	return nil
}

type mockRetriever struct {
	docs  []domain.Document
	calls int
}

func (m *mockRetriever) Retrieve(_ context.Context, _, _ string) []domain.Document {
	m.calls++
	return m.docs
}

func contentDocs() []domain.Document {
	return []domain.Document{{ID: "1", Text: "Cells are the basic unit of life.", Score: 0.8}}
}

// Long enough to clear the minimum-length gate, no non-answer markers.
var goodAnalysis = strings.Repeat("The material covers cell structure and function in detail. ", 3)

func validQuestions(n int) []domain.QuizQuestion {
	qs := make([]domain.QuizQuestion, n)
	for i := range qs {
		qs[i] = domain.QuizQuestion{
			Question: "q",
			Options:  map[string]string{"A": "1", "B": "2", "C": "3", "D": "4"},
			Answer:   "A",
		}
	}
	return qs
}

func newTestOrchestrator(model *mockModel, docs *mockRetriever) *Orchestrator {
	return New(&Config{
		Model:              model,
		AnalysisRetriever:  docs,
		QuizRetriever:      docs,
		FlashcardRetriever: docs,
		FallbackModel:      "cheap-model",
		Temperature:        0.5,
	})
}

// --- Quiz tests ---

func TestGenerateQuiz_ValidationGate(t *testing.T) {
	tests := []struct {
		name       string
		count      int
		difficulty string
	}{
		{"count too low", 2, "easy"},
		{"count too high", 11, "easy"},
		{"unknown difficulty", 5, "impossible"},
		{"empty difficulty", 5, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &mockModel{}
			docs := &mockRetriever{}
			o := newTestOrchestrator(model, docs)

			_, err := o.GenerateQuiz(context.Background(), "alice", tt.count, tt.difficulty)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
			if docs.calls != 0 {
				t.Error("retriever must not be called on validation failure")
			}
			if model.completeCalls != 0 || model.jsonCalls != 0 {
				t.Error("model must not be called on validation failure")
			}
		})
	}
}

func TestGenerateQuiz_NoDocuments(t *testing.T) {
	model := &mockModel{}
	docs := &mockRetriever{} // nothing retrievable
	o := newTestOrchestrator(model, docs)

	_, err := o.GenerateQuiz(context.Background(), "alice", 5, "easy")
	if !errors.Is(err, domain.ErrInsufficientContent) {
		t.Fatalf("expected ErrInsufficientContent, got %v", err)
	}
	if model.completeCalls != 0 {
		t.Error("model must not be called without retrieved content")
	}
}

func TestGenerateQuiz_InconclusiveAnalysis(t *testing.T) {
	tests := []struct {
		name     string
		analysis string
	}{
		{"too short", "Covers cells."},
		{"no-answer marker", strings.Repeat("x", 90) + " I don't know what this material is about."},
		{"not found marker", strings.Repeat("padding words here ", 10) + "The topic was not found."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			model := &mockModel{analysisText: tt.analysis}
			o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

			_, err := o.GenerateQuiz(context.Background(), "alice", 5, "medium")
			if !errors.Is(err, domain.ErrInsufficientContent) {
				t.Fatalf("expected ErrInsufficientContent, got %v", err)
			}
			if model.jsonCalls != 0 {
				t.Error("generation must not run after a failed content gate")
			}
		})
	}
}

func TestGenerateQuiz_AnalysisModelFailureYieldsEmergency(t *testing.T) {
	// A model outage during analysis says nothing about the material;
	// with retrievable content the run must still produce a quiz.
	model := &mockModel{analysisErr: errors.New("model down")}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	quiz, err := o.GenerateQuiz(context.Background(), "alice", 5, "medium")
	if err != nil {
		t.Fatalf("expected emergency output, got error: %v", err)
	}
	if len(quiz.Questions) != emergencyQuestionCap {
		t.Errorf("got %d questions, want %d emergency placeholders", len(quiz.Questions), emergencyQuestionCap)
	}
	if quiz.Note == "" {
		t.Error("emergency output must carry a degradation note")
	}
	if model.jsonCalls != 0 {
		t.Error("structured generation must be skipped when analysis is unavailable")
	}
}

func TestGenerateQuiz_PrimarySuccess(t *testing.T) {
	model := &mockModel{
		analysisText: goodAnalysis,
		structured:   validQuestions(5),
	}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	quiz, err := o.GenerateQuiz(context.Background(), "alice", 5, "hard")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 5 {
		t.Errorf("got %d questions, want 5", len(quiz.Questions))
	}
	if quiz.Note != "" {
		t.Errorf("unexpected degradation note %q", quiz.Note)
	}
	if model.completeCalls != 1 {
		t.Errorf("expected only the analysis completion, got %d", model.completeCalls)
	}
}

func TestGenerateQuiz_EmptyPrimaryFallsToSalvage(t *testing.T) {
	model := &mockModel{
		analysisText: goodAnalysis,
		structured:   nil, // empty structured list escalates
		salvageText:  `Here: {"questions":[{"question":"q","options":{"A":"1","B":"2","C":"3","D":"4"},"answer":"B"}]} done`,
	}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	quiz, err := o.GenerateQuiz(context.Background(), "alice", 4, "easy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 1 || quiz.Questions[0].Answer != "B" {
		t.Errorf("expected salvage-derived questions, got %+v", quiz.Questions)
	}
	if quiz.Note != "" {
		t.Error("salvage output must not carry a degradation note")
	}
}

func TestGenerateQuiz_AllPhasesFailYieldEmergency(t *testing.T) {
	model := &mockModel{
		analysisText:  goodAnalysis,
		structuredErr: errors.New("model down"),
		salvageText:   "I cannot produce JSON today.",
	}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	quiz, err := o.GenerateQuiz(context.Background(), "alice", 10, "medium")
	if err != nil {
		t.Fatalf("emergency output must never fail: %v", err)
	}
	if len(quiz.Questions) != emergencyQuestionCap {
		t.Errorf("got %d emergency questions, want %d", len(quiz.Questions), emergencyQuestionCap)
	}
	if quiz.Note == "" {
		t.Error("emergency output must carry a degradation note")
	}
	for i, q := range quiz.Questions {
		if err := q.Validate(); err != nil {
			t.Errorf("emergency question %d invalid: %v", i, err)
		}
	}
}

func TestGenerateQuiz_EmergencyRespectsSmallCount(t *testing.T) {
	model := &mockModel{
		analysisText:  goodAnalysis,
		structuredErr: errors.New("down"),
		salvageErr:    errors.New("down"),
	}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	quiz, err := o.GenerateQuiz(context.Background(), "alice", 3, "easy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(quiz.Questions) != 3 {
		t.Errorf("got %d questions, want 3", len(quiz.Questions))
	}
}

func TestGenerateQuiz_InvalidSalvageQuestionsEscalate(t *testing.T) {
	// Parsed but missing option keys: validation rejects, emergency runs.
	model := &mockModel{
		analysisText: goodAnalysis,
		salvageText:  `{"questions":[{"question":"q","options":{"A":"1"},"answer":"A"}]}`,
	}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	quiz, err := o.GenerateQuiz(context.Background(), "alice", 5, "easy")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if quiz.Note == "" {
		t.Error("expected emergency output for invalid salvage questions")
	}
}

// --- Flashcard tests ---

func TestGenerateFlashcards_Success(t *testing.T) {
	model := &mockModel{
		analysisText: goodAnalysis,
		flashcards:   []domain.Flashcard{{Front: "term", Back: "definition"}},
	}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	set, err := o.GenerateFlashcards(context.Background(), "alice", "cell biology", 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(set.Flashcards) != 1 {
		t.Errorf("got %d cards, want 1", len(set.Flashcards))
	}
}

func TestGenerateFlashcards_Validation(t *testing.T) {
	o := newTestOrchestrator(&mockModel{}, &mockRetriever{})

	if _, err := o.GenerateFlashcards(context.Background(), "alice", "topic", 2); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("count 2: expected ErrValidation, got %v", err)
	}
	if _, err := o.GenerateFlashcards(context.Background(), "alice", "  ", 5); !errors.Is(err, domain.ErrValidation) {
		t.Errorf("blank topic: expected ErrValidation, got %v", err)
	}
}

func TestGenerateFlashcards_NoSalvageTier(t *testing.T) {
	model := &mockModel{
		analysisText:  goodAnalysis,
		structuredErr: errors.New("model down"),
	}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	_, err := o.GenerateFlashcards(context.Background(), "alice", "cells", 5)
	if err == nil {
		t.Fatal("expected the model failure to surface")
	}
	if model.completeCalls != 1 {
		t.Errorf("no salvage completion expected, got %d Complete calls", model.completeCalls)
	}
}

func TestGenerateFlashcards_AnalysisModelFailure(t *testing.T) {
	model := &mockModel{analysisErr: errors.New("model down")}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	_, err := o.GenerateFlashcards(context.Background(), "alice", "cells", 5)
	if !errors.Is(err, domain.ErrModelFailure) {
		t.Fatalf("expected ErrModelFailure, got %v", err)
	}
	if errors.Is(err, domain.ErrInsufficientContent) {
		t.Error("model failure must not masquerade as insufficient content")
	}
	if model.jsonCalls != 0 {
		t.Error("card generation must not run after a failed analysis call")
	}
}

func TestGenerateFlashcards_EmptySetRejected(t *testing.T) {
	model := &mockModel{analysisText: goodAnalysis, flashcards: nil}
	o := newTestOrchestrator(model, &mockRetriever{docs: contentDocs()})

	_, err := o.GenerateFlashcards(context.Background(), "alice", "cells", 5)
	if !errors.Is(err, domain.ErrModelFailure) {
		t.Fatalf("expected ErrModelFailure, got %v", err)
	}
}
