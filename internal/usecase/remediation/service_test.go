package remediation

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/studentmate/tutor/internal/domain"
)

// --- Mocks ---

type mockModel struct {
	response string
	err      error
	called   bool
}

func (m *mockModel) Complete(_ context.Context, _ string, _ domain.CompletionOptions) (string, error) {
	m.called = true
	return m.response, m.err
}

type mockSearcher struct {
	results []domain.WebSearchResult
	err     error
	queries []string
}

func (m *mockSearcher) Search(_ context.Context, query string) ([]domain.WebSearchResult, error) {
	m.queries = append(m.queries, query)
	return m.results, m.err
}

func wrongAnswer(num int, text string) domain.WrongAnswer {
	return domain.WrongAnswer{
		QuestionNumber: num,
		QuestionText:   text,
		CorrectAnswer:  "A) right",
		StudentAnswer:  "B) wrong",
	}
}

// --- Tests ---

func TestAnalyzeMistakes_PerfectScore(t *testing.T) {
	model := &mockModel{}
	search := &mockSearcher{}
	svc := New(model, search, 0.5)

	got, err := svc.AnalyzeMistakes(context.Background(), "alice", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !strings.Contains(got.Analysis, "Congratulations") {
		t.Errorf("analysis = %q, expected congratulation", got.Analysis)
	}
	if len(got.Resources) != 0 {
		t.Errorf("expected no resources, got %d", len(got.Resources))
	}
	if model.called {
		t.Error("model must not be called on a perfect score")
	}
	if len(search.queries) != 0 {
		t.Error("search must not be called on a perfect score")
	}
}

func TestAnalyzeMistakes_SearchedResources(t *testing.T) {
	model := &mockModel{response: "friendly analysis"}
	search := &mockSearcher{results: []domain.WebSearchResult{
		{Title: "Photosynthesis explained", URL: "https://www.khanacademy.org/photo"},
		{Title: "Video", URL: "https://youtu.be/photo"},
	}}
	svc := New(model, search, 0.5)

	got, err := svc.AnalyzeMistakes(context.Background(), "alice",
		[]domain.WrongAnswer{wrongAnswer(1, "Where does photosynthesis occur?")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got.Analysis != "friendly analysis" {
		t.Errorf("analysis = %q", got.Analysis)
	}
	if len(got.Resources) != 1 {
		t.Fatalf("expected 1 resource bundle, got %d", len(got.Resources))
	}
	res := got.Resources[0]
	if res.Topic != "photosynthesis" {
		t.Errorf("topic = %q", res.Topic)
	}
	if res.Source != domain.SourceSearched {
		t.Errorf("source = %q, want %q", res.Source, domain.SourceSearched)
	}
	if len(res.VideoLinks) != 1 || len(res.WebLinks) != 1 {
		t.Errorf("links = %v / %v", res.VideoLinks, res.WebLinks)
	}
}

func TestAnalyzeMistakes_ModelFailureUsesFallbackText(t *testing.T) {
	model := &mockModel{err: errors.New("upstream down")}
	search := &mockSearcher{}
	svc := New(model, search, 0.5)

	got, err := svc.AnalyzeMistakes(context.Background(), "alice",
		[]domain.WrongAnswer{wrongAnswer(1, "Where does photosynthesis occur?")})
	if err != nil {
		t.Fatalf("analysis must not fail on model error: %v", err)
	}
	if !strings.Contains(got.Analysis, "missed 1 question") {
		t.Errorf("fallback analysis = %q", got.Analysis)
	}
}

func TestAnalyzeMistakes_SearchFailureYieldsErrorFallback(t *testing.T) {
	model := &mockModel{response: "analysis"}
	search := &mockSearcher{err: errors.New("tavily down")}
	svc := New(model, search, 0.5)

	got, err := svc.AnalyzeMistakes(context.Background(), "alice",
		[]domain.WrongAnswer{wrongAnswer(1, "What is DNA made of?")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got.Resources) != 1 {
		t.Fatalf("expected fallback bundle, got %d", len(got.Resources))
	}
	res := got.Resources[0]
	if res.Source != domain.SourceErrorFallback {
		t.Errorf("source = %q, want %q", res.Source, domain.SourceErrorFallback)
	}
	if len(res.WebLinks) == 0 || !strings.Contains(res.WebLinks[0], "khanacademy") {
		t.Errorf("fallback web links = %v", res.WebLinks)
	}
}

func TestAnalyzeMistakes_NoUsableLinksYieldsFallback(t *testing.T) {
	model := &mockModel{response: "analysis"}
	search := &mockSearcher{results: []domain.WebSearchResult{
		{Title: "Ad", URL: "https://spam.example-ads.net/offer"},
	}}
	svc := New(model, search, 0.5)

	got, _ := svc.AnalyzeMistakes(context.Background(), "alice",
		[]domain.WrongAnswer{wrongAnswer(1, "What is DNA made of?")})

	if got.Resources[0].Source != domain.SourceFallback {
		t.Errorf("source = %q, want %q", got.Resources[0].Source, domain.SourceFallback)
	}
}

func TestAnalyzeMistakes_BundleCap(t *testing.T) {
	model := &mockModel{response: "analysis"}
	search := &mockSearcher{err: errors.New("down")}
	svc := New(model, search, 0.5)

	wrong := []domain.WrongAnswer{
		wrongAnswer(1, "Where does photosynthesis occur?"),
		wrongAnswer(2, "What is DNA made of?"),
		wrongAnswer(3, "How does evolution work?"),
		wrongAnswer(4, "What do proteins do?"),
		wrongAnswer(5, "What does the mitochondria produce?"),
	}

	got, _ := svc.AnalyzeMistakes(context.Background(), "alice", wrong)

	if len(got.Resources) != maxBundles {
		t.Errorf("got %d bundles, want %d", len(got.Resources), maxBundles)
	}
}

func TestAnalyzeMistakes_DuplicateTopicsCollapse(t *testing.T) {
	model := &mockModel{response: "analysis"}
	search := &mockSearcher{err: errors.New("down")}
	svc := New(model, search, 0.5)

	wrong := []domain.WrongAnswer{
		wrongAnswer(1, "What is DNA made of?"),
		wrongAnswer(2, "Where is DNA stored?"),
	}

	got, _ := svc.AnalyzeMistakes(context.Background(), "alice", wrong)

	if len(got.Resources) != 1 {
		t.Errorf("expected duplicate topics to collapse, got %d bundles", len(got.Resources))
	}
}

func TestAnalyzeMistakes_NilSearcher(t *testing.T) {
	model := &mockModel{response: "analysis"}
	svc := New(model, nil, 0.5)

	got, err := svc.AnalyzeMistakes(context.Background(), "alice",
		[]domain.WrongAnswer{wrongAnswer(1, "What is DNA made of?")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Resources[0].Source != domain.SourceFallback {
		t.Errorf("source = %q, want fallback without a searcher", got.Resources[0].Source)
	}
}
