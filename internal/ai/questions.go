package ai

import (
	"context"
	"regexp"
	"strings"

	"github.com/spigell/talent-screener/internal/questions"
	"go.uber.org/zap"
)

// listMarker matches "1.", "2)", "-", "*" or "•" at the start of a line.
var listMarker = regexp.MustCompile(`^\s*(?:\d+[.)]|[-*•])\s+`)

// QuestionSource asks the gateway for questions and falls back to the
// keyword generator when the answer cannot be used.
type QuestionSource struct {
	gateway  Gateway
	fallback questions.Source
	logger   *zap.Logger
}

var _ questions.Source = (*QuestionSource)(nil)

// NewQuestionSource builds a source. A nil fallback means the default keyword
// generator.
func NewQuestionSource(gateway Gateway, fallback questions.Source, logger *zap.Logger) *QuestionSource {
	if fallback == nil {
		fallback = questions.NewGenerator()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &QuestionSource{gateway: gateway, fallback: fallback, logger: logger}
}

// Questions implements questions.Source.
func (s *QuestionSource) Questions(ctx context.Context, techStack string) []string {
	raw := s.gateway.Complete(ctx, QuestionGenerationPrompt(techStack), ContextQuestionGeneration)
	if IsFallback(raw) {
		s.logger.Info("using keyword questions", zap.String("reason", "gateway unavailable"))
		return s.fallback.Questions(ctx, techStack)
	}

	parsed := ParseQuestionList(raw)
	if len(parsed) < questions.MinQuestions {
		s.logger.Info("using keyword questions",
			zap.String("reason", "too few questions in model answer"),
			zap.Int("parsed", len(parsed)),
		)
		return s.fallback.Questions(ctx, techStack)
	}

	if len(parsed) > questions.MaxQuestions {
		parsed = parsed[:questions.MaxQuestions]
	}
	return parsed
}

// ParseQuestionList extracts list items from a model answer. Lines without a
// list marker continue the previous item unless it already ends with a
// question mark; text before the first item is ignored.
func ParseQuestionList(raw string) []string {
	var items []string
	for _, line := range strings.Split(raw, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if loc := listMarker.FindStringIndex(line); loc != nil {
			item := cleanQuestion(line[loc[1]:])
			if item != "" {
				items = append(items, item)
			}
			continue
		}

		if len(items) > 0 && !strings.HasSuffix(items[len(items)-1], "?") {
			items[len(items)-1] = items[len(items)-1] + " " + cleanQuestion(trimmed)
		}
	}
	return items
}

// Extract asks the gateway for field inside userInput. ok is false when the
// model reported NOT_FOUND or the gateway fell back.
func Extract(ctx context.Context, gateway Gateway, userInput, field string) (string, bool) {
	if gateway == nil {
		return "", false
	}

	answer := strings.TrimSpace(gateway.Complete(ctx, ExtractionPrompt(userInput, field), ContextExtraction))
	answer = strings.Trim(answer, "\"'`")
	answer = strings.TrimSpace(answer)

	if answer == "" || IsFallback(answer) || strings.EqualFold(answer, NotFound) {
		return "", false
	}
	return answer, true
}

func cleanQuestion(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "*_")
	return strings.TrimSpace(s)
}
