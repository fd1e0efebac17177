package intake

import (
	"fmt"
	"strings"
)

const (
	welcomeMessage = `👋 **Welcome to TalentScout!**

I'm your AI Hiring Assistant. I'll screen you for technology positions in 10-15 minutes.

What's your **full name**?

*(Type 'exit' to end anytime)*`

	farewellMessage = "Thank you! We'll review your information and get back to you soon. 👋"

	rephraseMessage = "Please rephrase your response."

	askNameAgain       = "Please tell me your full name."
	askEmail           = "What's your **email address**?"
	askEmailAgain      = "Please provide a valid email address."
	askPhone           = "Great! What's your **phone number**?"
	askPhoneAgain      = "Please provide a valid phone number."
	askExperience      = "Perfect! How many **years of experience** do you have in technology?"
	askExperienceAgain = "Please tell me your years of experience as a number between 0 and 50."
	askPosition        = "Excellent! What **position** are you interested in? (e.g., Software Engineer, Data Scientist)"
	askLocation        = "Great! What's your **current location** (city, country)?"
	askTechStack       = `Perfect! Now list your **tech stack** (comma-separated):
- Programming languages (Python, JavaScript, Java)
- Frameworks (React, Django, Spring)
- Databases (MySQL, MongoDB)
- Tools (Docker, Git, AWS)`
	askTechStackAgain = "Please list your technical skills and technologies."

	noInformation = "No information collected yet..."
	notAvailable  = "N/A"
)

var fieldLabels = map[string]string{
	FieldName:       "Name",
	FieldEmail:      "Email",
	FieldPhone:      "Phone",
	FieldExperience: "Experience",
	FieldPosition:   "Position",
	FieldLocation:   "Location",
	FieldTechStack:  "Tech Stack",
}

// WelcomeMessage returns the greeting shown when a conversation starts.
func WelcomeMessage() string {
	return welcomeMessage
}

// FarewellMessage is returned for exit keywords.
func FarewellMessage() string {
	return farewellMessage
}

func greetName(name string) string {
	return fmt.Sprintf("Nice to meet you, %s! 😊\n\n%s", name, askEmail)
}

func firstQuestion(techStack string, questions []string) string {
	return fmt.Sprintf("Excellent! Based on your tech stack: **%s**\n\n**Question 1 of %d:**\n\n%s\n\nPlease provide your answer.",
		techStack, len(questions), questions[0])
}

func nextQuestion(index int, questions []string) string {
	return fmt.Sprintf("Thank you!\n\n**Question %d of %d:**\n\n%s", index+1, len(questions), questions[index])
}

// Summary renders the completion message for s. Missing fields show as N/A.
func Summary(s State) string {
	name := fieldOr(s, FieldName, "Candidate")

	var b strings.Builder
	b.WriteString("🎉 **Screening Complete!**\n\n")
	fmt.Fprintf(&b, "Thank you, %s!\n\n", name)
	b.WriteString("**Summary:**\n")
	fmt.Fprintf(&b, "- **Position:** %s\n", fieldOr(s, FieldPosition, notAvailable))
	fmt.Fprintf(&b, "- **Experience:** %s\n", fieldOr(s, FieldExperience, notAvailable))
	fmt.Fprintf(&b, "- **Tech Stack:** %s\n", fieldOr(s, FieldTechStack, notAvailable))
	fmt.Fprintf(&b, "- **Location:** %s\n\n", fieldOr(s, FieldLocation, notAvailable))
	b.WriteString("**Next Steps:**\n")
	b.WriteString("1. Technical team review (2-3 days)\n")
	b.WriteString("2. Email notification\n")
	b.WriteString("3. Technical interview if selected\n\n")
	b.WriteString("Best of luck! 🚀")
	return b.String()
}

// CandidateInfo renders the collected fields as a bullet list. Answers are
// not included.
func CandidateInfo(s State) string {
	var b strings.Builder
	for _, field := range FieldOrder {
		value, ok := s.Fields[field]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "• **%s:** %s\n", fieldLabels[field], value)
	}
	if b.Len() == 0 {
		return noInformation
	}
	return "**Candidate Information:**\n\n" + b.String()
}

func fieldOr(s State, field, fallback string) string {
	if v := strings.TrimSpace(s.Fields[field]); v != "" {
		return v
	}
	return fallback
}
