// Package generation drives quiz and flashcard creation through an
// ordered set of phases, escalating to cheaper strategies on failure.
package generation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/studentmate/tutor/internal/domain"
	"github.com/studentmate/tutor/internal/logger"
	"github.com/studentmate/tutor/internal/metrics"
)

// Generation phases, in escalation order.
type phase string

const (
	phaseAnalyzeContent    phase = "analyze_content"
	phaseGeneratePrimary   phase = "generate_primary"
	phaseSalvageParse      phase = "salvage_parse"
	phaseEmergencyFallback phase = "emergency_fallback"
	phaseDone              phase = "done"
)

// outcome is the typed result of a phase: it either produced a usable
// value, hands off to the next phase, or aborts the whole run.
type outcome int

const (
	outcomeSuccess outcome = iota
	outcomeEscalate
	outcomeFatal
)

func (o outcome) String() string {
	switch o {
	case outcomeSuccess:
		return "success"
	case outcomeEscalate:
		return "escalate"
	default:
		return "fatal"
	}
}

// Item count bounds shared by quizzes and flashcards.
const (
	minItemCount = 3
	maxItemCount = 10
)

// Emergency output never exceeds this many questions regardless of the
// requested count.
const emergencyQuestionCap = 3

// Markers in an analysis response that mean the material cannot support
// generation. Matched case-insensitively.
var insufficientMarkers = []string{
	"i don't know",
	"not found",
	"the answer to this question",
}

const minAnalysisLength = 100

type quizPayload struct {
	Questions []domain.QuizQuestion `json:"questions"`
}

type flashcardPayload struct {
	Flashcards []domain.Flashcard `json:"flashcards"`
}

// Orchestrator runs the phased generation state machine.
type Orchestrator struct {
	model         Model
	analysisDocs  Retriever
	quizDocs      Retriever
	flashcardDocs Retriever
	fallbackModel string
	temperature   float32
}

// Config holds orchestrator wiring.
type Config struct {
	Model              Model
	AnalysisRetriever  Retriever
	QuizRetriever      Retriever
	FlashcardRetriever Retriever
	FallbackModel      string // used by the salvage phase when non-empty
	Temperature        float32
}

// New creates a generation orchestrator.
func New(cfg *Config) *Orchestrator {
	return &Orchestrator{
		model:         cfg.Model,
		analysisDocs:  cfg.AnalysisRetriever,
		quizDocs:      cfg.QuizRetriever,
		flashcardDocs: cfg.FlashcardRetriever,
		fallbackModel: cfg.FallbackModel,
		temperature:   cfg.Temperature,
	}
}

// GenerateQuiz produces a quiz for the owner's uploaded material. The
// phase chain guarantees a non-error response once validation and the
// content gate pass: exhausting the model phases yields emergency
// placeholder questions, never an error.
func (o *Orchestrator) GenerateQuiz(ctx context.Context, ownerID string, count int, rawDifficulty string) (domain.Quiz, error) {
	log := logger.FromContext(ctx)

	if count < minItemCount || count > maxItemCount {
		return domain.Quiz{}, fmt.Errorf("%w: question count must be between %d and %d, got %d",
			domain.ErrValidation, minItemCount, maxItemCount, count)
	}
	difficulty, err := domain.ParseDifficulty(rawDifficulty)
	if err != nil {
		return domain.Quiz{}, err
	}

	var quiz domain.Quiz
	current := phaseAnalyzeContent
	for current != phaseDone {
		var out outcome
		switch current {
		case phaseAnalyzeContent:
			out, err = o.analyzeContent(ctx, ownerID, contentProbeQuery)
			metrics.GenerationPhasesTotal.WithLabelValues(string(current), out.String()).Inc()
			switch out {
			case outcomeFatal:
				return domain.Quiz{}, err
			case outcomeEscalate:
				// The analysis model call failed but content exists;
				// skip the gate and keep the structured-output guarantee.
				log.Warn("content analysis unavailable", zap.Error(err))
				current = phaseEmergencyFallback
			default:
				current = phaseGeneratePrimary
			}

		case phaseGeneratePrimary:
			quiz, out = o.generatePrimary(ctx, ownerID, count, difficulty)
			metrics.GenerationPhasesTotal.WithLabelValues(string(current), out.String()).Inc()
			if out == outcomeSuccess {
				current = phaseDone
			} else {
				current = phaseSalvageParse
			}

		case phaseSalvageParse:
			quiz, out = o.salvageParse(ctx, ownerID, count)
			metrics.GenerationPhasesTotal.WithLabelValues(string(current), out.String()).Inc()
			if out == outcomeSuccess {
				current = phaseDone
			} else {
				current = phaseEmergencyFallback
			}

		case phaseEmergencyFallback:
			quiz = o.emergencyFallback(count)
			metrics.GenerationPhasesTotal.WithLabelValues(string(current), outcomeSuccess.String()).Inc()
			log.Warn("quiz generation degraded to emergency output",
				zap.String("owner", ownerID), zap.Int("requested", count))
			current = phaseDone
		}
	}

	return quiz, nil
}

// GenerateFlashcards produces flashcards about the given topic. Unlike
// quizzes there is no salvage or emergency tier; a model failure
// surfaces to the caller.
func (o *Orchestrator) GenerateFlashcards(ctx context.Context, ownerID, topic string, count int) (domain.FlashcardSet, error) {
	if count < minItemCount || count > maxItemCount {
		return domain.FlashcardSet{}, fmt.Errorf("%w: card count must be between %d and %d, got %d",
			domain.ErrValidation, minItemCount, maxItemCount, count)
	}
	if strings.TrimSpace(topic) == "" {
		return domain.FlashcardSet{}, fmt.Errorf("%w: topic message is required", domain.ErrValidation)
	}

	out, err := o.analyzeContent(ctx, ownerID, topic)
	metrics.GenerationPhasesTotal.WithLabelValues(string(phaseAnalyzeContent), out.String()).Inc()
	if out != outcomeSuccess {
		return domain.FlashcardSet{}, err
	}

	docs := o.flashcardDocs.Retrieve(ctx, ownerID, topic)
	content := joinContent(docs)

	var payload flashcardPayload
	err = o.model.CompleteJSON(ctx, flashcardPrompt(count, topic, content), domain.CompletionOptions{
		System:      analyzeSystem,
		Temperature: o.temperature,
	}, &payload)
	if err != nil {
		metrics.GenerationPhasesTotal.WithLabelValues(string(phaseGeneratePrimary), outcomeFatal.String()).Inc()
		return domain.FlashcardSet{}, fmt.Errorf("generate flashcards: %w", err)
	}

	set := domain.FlashcardSet{Flashcards: payload.Flashcards}
	if err := set.Validate(); err != nil {
		metrics.GenerationPhasesTotal.WithLabelValues(string(phaseGeneratePrimary), outcomeFatal.String()).Inc()
		return domain.FlashcardSet{}, fmt.Errorf("flashcard output rejected: %v: %w", err, domain.ErrModelFailure)
	}

	metrics.GenerationPhasesTotal.WithLabelValues(string(phaseGeneratePrimary), outcomeSuccess.String()).Inc()
	return set, nil
}

// analyzeContent retrieves the owner's material and asks the model to
// summarize it. A short or non-answer summary means there is nothing to
// generate from, which is fatal for the whole run. A failed model call
// says nothing about the material and escalates instead.
func (o *Orchestrator) analyzeContent(ctx context.Context, ownerID, query string) (outcome, error) {
	docs := o.analysisDocs.Retrieve(ctx, ownerID, query)
	content := joinContent(docs)
	if strings.TrimSpace(content) == "" {
		return outcomeFatal, fmt.Errorf("no documents retrieved for owner: %w", domain.ErrInsufficientContent)
	}

	analysis, err := o.model.Complete(ctx, analyzePrompt(content), domain.CompletionOptions{
		System:      analyzeSystem,
		Temperature: o.temperature,
	})
	if err != nil {
		return outcomeEscalate, fmt.Errorf("content analysis failed: %v: %w", err, domain.ErrModelFailure)
	}

	if insufficientAnalysis(analysis) {
		return outcomeFatal, fmt.Errorf("content analysis inconclusive: %w", domain.ErrInsufficientContent)
	}
	return outcomeSuccess, nil
}

func insufficientAnalysis(analysis string) bool {
	if len(analysis) < minAnalysisLength {
		return true
	}
	lower := strings.ToLower(analysis)
	for _, marker := range insufficientMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}

// generatePrimary requests a typed question list from the full prompt.
func (o *Orchestrator) generatePrimary(ctx context.Context, ownerID string, count int, difficulty domain.Difficulty) (domain.Quiz, outcome) {
	log := logger.FromContext(ctx)

	docs := o.quizDocs.Retrieve(ctx, ownerID, contentProbeQuery)
	content := joinContent(docs)

	var payload quizPayload
	err := o.model.CompleteJSON(ctx, primaryQuizPrompt(count, difficulty, content), domain.CompletionOptions{
		System:      analyzeSystem,
		Temperature: o.temperature,
	}, &payload)
	if err != nil {
		log.Warn("primary generation failed", zap.Error(err))
		return domain.Quiz{}, outcomeEscalate
	}

	quiz := domain.Quiz{Questions: payload.Questions}
	if err := quiz.Validate(); err != nil {
		log.Warn("primary generation output rejected", zap.Error(err))
		return domain.Quiz{}, outcomeEscalate
	}
	return quiz, outcomeSuccess
}

// salvageParse re-prompts with a minimal template and a shorter excerpt,
// then extracts a JSON object from the free-form response.
func (o *Orchestrator) salvageParse(ctx context.Context, ownerID string, count int) (domain.Quiz, outcome) {
	log := logger.FromContext(ctx)

	docs := o.quizDocs.Retrieve(ctx, ownerID, contentProbeQuery)
	content := joinContent(docs)

	raw, err := o.model.Complete(ctx, salvageQuizPrompt(count, content), domain.CompletionOptions{
		Model:       o.fallbackModel,
		Temperature: o.temperature,
	})
	if err != nil {
		log.Warn("salvage generation failed", zap.Error(err))
		return domain.Quiz{}, outcomeEscalate
	}

	payload, err := parseSalvagedQuiz(raw)
	if err != nil {
		log.Warn("salvage parse failed", zap.Error(err))
		return domain.Quiz{}, outcomeEscalate
	}

	quiz := domain.Quiz{Questions: payload.Questions}
	if err := quiz.Validate(); err != nil {
		log.Warn("salvage output rejected", zap.Error(err))
		return domain.Quiz{}, outcomeEscalate
	}
	return quiz, outcomeSuccess
}

// emergencyFallback builds deterministic placeholder questions. The cap
// of 3 is intentional cost control and independent of the request.
func (o *Orchestrator) emergencyFallback(count int) domain.Quiz {
	n := count
	if n > emergencyQuestionCap {
		n = emergencyQuestionCap
	}

	questions := make([]domain.QuizQuestion, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, domain.QuizQuestion{
			Question: fmt.Sprintf("Placeholder question %d: review your uploaded material and try again shortly.", i),
			Options: map[string]string{
				"A": "Re-read the uploaded document",
				"B": "Take notes on the key topics",
				"C": "Try generating the quiz again",
				"D": "Upload additional material",
			},
			Answer: "C",
		})
	}

	return domain.Quiz{
		Questions: questions,
		Note:      "Quiz generation is temporarily degraded; placeholder questions were returned.",
	}
}
