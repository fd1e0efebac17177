// Package questions turns a free-text technology list into interview questions.
package questions

import (
	"context"
	"strings"
)

const (
	// MinQuestions is the least number of questions Generate returns.
	MinQuestions = 3
	// MaxQuestions caps the generated list.
	MaxQuestions = 5
)

// Topic maps a group of keywords to a single question.
type Topic struct {
	Keywords []string `mapstructure:"keywords"`
	Question string   `mapstructure:"question"`
}

// DefaultTopics are evaluated in declaration order.
var DefaultTopics = []Topic{
	{
		Keywords: []string{"python", "java", "javascript"},
		Question: "Explain the difference between object-oriented and functional programming.",
	},
	{
		Keywords: []string{"react", "angular", "vue"},
		Question: "How do you manage state in a complex frontend application?",
	},
	{
		Keywords: []string{"mysql", "postgresql", "mongodb"},
		Question: "How would you optimize a slow database query?",
	},
	{
		Keywords: []string{"ml", "ai", "machine learning"},
		Question: "Describe the bias-variance tradeoff in machine learning.",
	},
	{
		Keywords: []string{"llm", "genai", "gpt"},
		Question: "Explain the challenges in deploying Large Language Models in production.",
	},
}

// GenericPool tops up the list when too few topics match.
var GenericPool = []string{
	"Describe a challenging technical problem you solved recently.",
	"How do you stay updated with new technologies?",
	"Explain your debugging process for complex issues.",
}

// Source produces the question list for a tech stack.
type Source interface {
	Questions(ctx context.Context, techStack string) []string
}

// Generator matches keywords by substring. The zero value uses DefaultTopics
// and GenericPool.
type Generator struct {
	topics []Topic
	pool   []string
}

var _ Source = (*Generator)(nil)

// NewGenerator returns a generator with the default topics followed by extra.
func NewGenerator(extra ...Topic) *Generator {
	topics := make([]Topic, 0, len(DefaultTopics)+len(extra))
	topics = append(topics, DefaultTopics...)
	for _, topic := range extra {
		if strings.TrimSpace(topic.Question) == "" || len(topic.Keywords) == 0 {
			continue
		}
		topics = append(topics, topic)
	}
	return &Generator{topics: topics, pool: GenericPool}
}

// Generate returns the default generator's questions for techStack.
func Generate(techStack string) []string {
	var g Generator
	return g.Generate(techStack)
}

// Generate returns between MinQuestions and MaxQuestions questions. The
// result depends only on techStack.
func (g *Generator) Generate(techStack string) []string {
	topics, pool := g.topics, g.pool
	if topics == nil {
		topics = DefaultTopics
	}
	if len(pool) == 0 {
		pool = GenericPool
	}

	lower := strings.ToLower(techStack)
	result := make([]string, 0, MaxQuestions)
	for _, topic := range topics {
		if matchesAny(lower, topic.Keywords) {
			result = append(result, topic.Question)
		}
	}

	// The pool is appended whole, so one matched topic yields four questions.
	for len(result) < MinQuestions {
		result = append(result, pool...)
	}

	if len(result) > MaxQuestions {
		result = result[:MaxQuestions]
	}
	return result
}

// Questions implements Source.
func (g *Generator) Questions(_ context.Context, techStack string) []string {
	return g.Generate(techStack)
}

func matchesAny(text string, keywords []string) bool {
	for _, keyword := range keywords {
		keyword = strings.ToLower(strings.TrimSpace(keyword))
		if keyword != "" && strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
