// Package remediation turns a student's wrong answers into a friendly
// analysis plus per-topic study resources found via web search.
package remediation

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"go.uber.org/zap"

	"github.com/studentmate/tutor/internal/domain"
	"github.com/studentmate/tutor/internal/logger"
)

// Service analyzes quiz mistakes and gathers remediation resources.
type Service struct {
	model       Model
	search      WebSearcher
	temperature float32
}

// New creates a mistake analysis service. search may be nil when the
// web-search capability is not configured; topics then always receive
// fallback bundles.
func New(model Model, search WebSearcher, temperature float32) *Service {
	return &Service{model: model, search: search, temperature: temperature}
}

const perfectScoreAnalysis = "Congratulations! You answered every question correctly. " +
	"Keep up the great work and try a harder difficulty next time."

// AnalyzeMistakes builds the remediation response for a set of wrong
// answers. A perfect score short-circuits with a congratulation and no
// external calls.
func (s *Service) AnalyzeMistakes(ctx context.Context, ownerID string, wrongAnswers []domain.WrongAnswer) (domain.MistakeAnalysis, error) {
	if len(wrongAnswers) == 0 {
		return domain.MistakeAnalysis{
			Analysis:  perfectScoreAnalysis,
			Resources: []domain.RemediationResource{},
		}, nil
	}

	logger.FromContext(ctx).Debug("analyzing quiz mistakes",
		zap.String("owner", ownerID), zap.Int("wrong_answers", len(wrongAnswers)))

	analysis := s.friendlyAnalysis(ctx, wrongAnswers)
	resources := s.gatherResources(ctx, wrongAnswers)

	return domain.MistakeAnalysis{Analysis: analysis, Resources: resources}, nil
}

// friendlyAnalysis asks the model for an encouraging explanation of the
// mistakes. Model failure degrades to deterministic text, never an error.
func (s *Service) friendlyAnalysis(ctx context.Context, wrongAnswers []domain.WrongAnswer) string {
	log := logger.FromContext(ctx)

	var b strings.Builder
	for _, w := range wrongAnswers {
		fmt.Fprintf(&b, "Question %d: %s\nCorrect answer: %s\nStudent answer: %s\n\n",
			w.QuestionNumber, w.QuestionText, w.CorrectAnswer, w.StudentAnswer)
	}

	prompt := fmt.Sprintf(
		"A student answered %d quiz questions incorrectly. Explain in a friendly, "+
			"encouraging tone (in Turkish) what the student misunderstood and what to review. "+
			"Keep it short and practical.\n\n%s",
		len(wrongAnswers), b.String())

	analysis, err := s.model.Complete(ctx, prompt, domain.CompletionOptions{
		Temperature: s.temperature,
	})
	if err != nil {
		log.Warn("mistake analysis model call failed", zap.Error(err))
		return fmt.Sprintf(
			"You missed %d question(s). Review the topics below and pay close attention "+
				"to the correct answers shown for each question you got wrong.",
			len(wrongAnswers))
	}
	return analysis
}

// gatherResources extracts topics from the wrong answers and builds at
// most maxBundles resource bundles. Every requested topic yields some
// bundle; search failure or empty results synthesize fallbacks.
func (s *Service) gatherResources(ctx context.Context, wrongAnswers []domain.WrongAnswer) []domain.RemediationResource {
	topics := collectTopics(wrongAnswers)

	resources := make([]domain.RemediationResource, 0, len(topics))
	for _, topic := range topics {
		resources = append(resources, s.resourcesForTopic(ctx, topic))
	}
	return resources
}

func collectTopics(wrongAnswers []domain.WrongAnswer) []string {
	seen := make(map[string]struct{})
	var topics []string
	for _, w := range wrongAnswers {
		topic := ExtractTopic(w.QuestionText)
		if topic == "" {
			continue
		}
		if _, ok := seen[topic]; ok {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
		if len(topics) == maxBundles {
			break
		}
	}
	return topics
}

func (s *Service) resourcesForTopic(ctx context.Context, topic string) domain.RemediationResource {
	log := logger.FromContext(ctx)

	if s.search == nil {
		return fallbackResource(topic, domain.SourceFallback)
	}

	results, err := s.search.Search(ctx, topic+" educational resources tutorial")
	if err != nil {
		log.Warn("resource search failed", zap.String("topic", topic), zap.Error(err))
		return fallbackResource(topic, domain.SourceErrorFallback)
	}

	urls := make([]string, 0, len(results))
	var snippets []string
	for _, r := range results {
		if r.URL != "" {
			urls = append(urls, r.URL)
		}
		urls = append(urls, ExtractURLs(r.Content)...)
		if r.Title != "" && len(snippets) < maxWebLinks {
			snippets = append(snippets, r.Title)
		}
	}

	videoLinks, webLinks := Classify(urls)
	if len(videoLinks) == 0 && len(webLinks) == 0 {
		return fallbackResource(topic, domain.SourceFallback)
	}

	content := fmt.Sprintf("Suggested resources for %q", topic)
	if len(snippets) > 0 {
		content += ": " + strings.Join(snippets, "; ")
	}

	return domain.RemediationResource{
		Topic:      topic,
		VideoLinks: videoLinks,
		WebLinks:   webLinks,
		Content:    content,
		Source:     domain.SourceSearched,
	}
}

// fallbackResource synthesizes generic search suggestions so callers can
// always render something for a topic.
func fallbackResource(topic string, kind domain.SourceKind) domain.RemediationResource {
	return domain.RemediationResource{
		Topic:      topic,
		VideoLinks: []string{},
		WebLinks: []string{
			"https://www.khanacademy.org/search?page_search_query=" + url.QueryEscape(topic),
		},
		Content: fmt.Sprintf(
			"Web search was unavailable. Try searching for %q on Khan Academy or YouTube.",
			topic),
		Source: kind,
	}
}
