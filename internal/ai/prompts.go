// Package ai holds the optional language-model gateway used by the intake
// conversation and the prompt templates it sends.
package ai

import (
	_ "embed"
	"fmt"
	"strings"
)

// SystemContext selects the system message sent along with a prompt.
type SystemContext string

const (
	ContextExtraction         SystemContext = "extraction"
	ContextQuestionGeneration SystemContext = "question_generation"
	ContextGeneral            SystemContext = "general"
)

// NotFound is what the extraction prompt asks the model to answer when the
// requested field is absent.
const NotFound = "NOT_FOUND"

//go:embed prompts/extraction.md
var extractionTemplate string

//go:embed prompts/questions.md
var questionsTemplate string

const (
	extractionSystemMessage = `You are an expert information extraction assistant. Your job is to extract specific information from user responses accurately.
Always return only the requested information or 'NOT_FOUND' if the information is not present.`

	questionGenerationSystemMessage = `You are an experienced technical interviewer. Generate relevant, practical technical questions that assess real-world knowledge and problem-solving skills.
Focus on the specific technologies mentioned in the candidate's tech stack.`

	generalSystemMessage = `You are a helpful AI assistant for a hiring process. Be professional, friendly, and focused on gathering accurate information.`
)

// ParseSystemContext maps a user supplied name to a SystemContext.
func ParseSystemContext(s string) (SystemContext, error) {
	switch sc := SystemContext(strings.ToLower(strings.TrimSpace(s))); sc {
	case ContextExtraction, ContextQuestionGeneration, ContextGeneral:
		return sc, nil
	case "":
		return ContextGeneral, nil
	default:
		return "", fmt.Errorf("unknown system context %q (expected extraction, question_generation or general)", s)
	}
}

// SystemMessage returns the system prompt for sc. Unknown contexts get the
// general message.
func SystemMessage(sc SystemContext) string {
	switch sc {
	case ContextExtraction:
		return extractionSystemMessage
	case ContextQuestionGeneration:
		return questionGenerationSystemMessage
	default:
		return generalSystemMessage
	}
}

// ExtractionPrompt asks the model to pull field out of userInput.
func ExtractionPrompt(userInput, field string) string {
	template := extractionTemplate
	if strings.TrimSpace(template) == "" {
		template = "Extract the {{FIELD}} from: \"{{USER_INPUT}}\". Answer NOT_FOUND if absent."
	}
	prompt := strings.ReplaceAll(template, "{{FIELD}}", field)
	prompt = strings.ReplaceAll(prompt, "{{USER_INPUT}}", userInput)
	return prompt
}

// QuestionGenerationPrompt asks the model for interview questions about techStack.
func QuestionGenerationPrompt(techStack string) string {
	template := questionsTemplate
	if strings.TrimSpace(template) == "" {
		template = "Generate 3-5 technical interview questions as a numbered list for this tech stack:\n{{TECH_STACK}}"
	}
	return strings.ReplaceAll(template, "{{TECH_STACK}}", techStack)
}
