// Package intake drives the candidate screening conversation: it collects
// contact details one stage at a time, validates each answer, asks technical
// questions derived from the candidate's tech stack and renders a summary.
package intake

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/spigell/talent-screener/internal/ai"
	"github.com/spigell/talent-screener/internal/logger"
	"github.com/spigell/talent-screener/internal/questions"
	"github.com/spigell/talent-screener/internal/validation"
	"go.uber.org/zap"
)

const minTechStackLength = 6

var exitKeywords = []string{"exit", "quit", "bye"}

// Machine advances conversation states. It holds no per-conversation data and
// is safe for concurrent use.
type Machine struct {
	questions questions.Source
	extractor ai.Gateway
	strict    bool
	logger    *zap.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithStrictValidation also runs the name and experience validators.
func WithStrictValidation() Option {
	return func(m *Machine) {
		m.strict = true
	}
}

// WithExtractor lets the machine ask gw to pull a field out of a sentence when
// the raw answer does not validate.
func WithExtractor(gw ai.Gateway) Option {
	return func(m *Machine) {
		m.extractor = gw
	}
}

// WithQuestionSource replaces the keyword question generator.
func WithQuestionSource(src questions.Source) Option {
	return func(m *Machine) {
		if src != nil {
			m.questions = src
		}
	}
}

// WithLogger sets the logger. A nil logger is ignored.
func WithLogger(l *zap.Logger) Option {
	return func(m *Machine) {
		if l != nil {
			m.logger = l
		}
	}
}

// New returns a Machine with the keyword question generator.
func New(opts ...Option) *Machine {
	m := &Machine{
		questions: questions.NewGenerator(),
		logger:    zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

// Reset returns the state of a fresh conversation.
func (m *Machine) Reset() State {
	return NewState()
}

// Start returns the state after the greeting together with the welcome text.
func (m *Machine) Start(ctx context.Context) (State, string) {
	return m.ProcessTurn(ctx, m.Reset(), "")
}

// IsExit reports whether input ends the conversation.
func IsExit(input string) bool {
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, keyword := range exitKeywords {
		if normalized == keyword {
			return true
		}
	}
	return false
}

// ProcessTurn applies one user message to state and returns the next state
// with the reply. state itself is never modified.
func (m *Machine) ProcessTurn(ctx context.Context, state State, input string) (State, string) {
	next := state.Clone()

	if IsExit(input) {
		m.logger.Debug("conversation ended by user", zap.String(logger.FieldStage, state.Stage.String()))
		return next, farewellMessage
	}

	var reply string
	switch state.Stage {
	case StageGreeting:
		next.Stage = StageCollectName
		reply = welcomeMessage

	case StageCollectName:
		raw, ok := m.accept(ctx, input, "full name", strings.TrimSpace, m.validName)
		if !ok {
			return next, askNameAgain
		}
		name := validation.Sanitize(raw)
		next.Fields[FieldName] = name
		next.Stage = StageCollectEmail
		reply = greetName(name)

	case StageCollectEmail:
		email, ok := m.accept(ctx, input, "email address", strings.TrimSpace, validation.Email)
		if !ok {
			return next, askEmailAgain
		}
		next.Fields[FieldEmail] = email
		next.Stage = StageCollectPhone
		reply = askPhone

	case StageCollectPhone:
		phone, ok := m.accept(ctx, input, "phone number", strings.TrimSpace, validation.Phone)
		if !ok {
			return next, askPhoneAgain
		}
		next.Fields[FieldPhone] = phone
		next.Stage = StageCollectExperience
		reply = askExperience

	case StageCollectExperience:
		experience := validation.Sanitize(input)
		if m.strict {
			var ok bool
			experience, ok = m.accept(ctx, input, "years of experience", validation.Sanitize, validation.Experience)
			if !ok {
				return next, askExperienceAgain
			}
		}
		next.Fields[FieldExperience] = experience
		next.Stage = StageCollectPosition
		reply = askPosition

	case StageCollectPosition:
		next.Fields[FieldPosition] = validation.Sanitize(input)
		next.Stage = StageCollectLocation
		reply = askLocation

	case StageCollectLocation:
		next.Fields[FieldLocation] = validation.Sanitize(input)
		next.Stage = StageCollectTechStack
		reply = askTechStack

	case StageCollectTechStack:
		if utf8.RuneCountInString(strings.TrimSpace(input)) < minTechStackLength {
			return next, askTechStackAgain
		}
		techStack := validation.Sanitize(input)
		next.Fields[FieldTechStack] = techStack
		next.Questions = m.generateQuestions(ctx, techStack)
		next.Answers = nil
		next.CurrentQuestion = 0

		if len(next.Questions) == 0 {
			next.Stage = StageCompleted
			reply = Summary(next)
			break
		}
		next.Stage = StageTechnicalQuestions
		reply = firstQuestion(techStack, next.Questions)

	case StageTechnicalQuestions:
		if next.CurrentQuestion < 0 || next.QuestionsDone() {
			next.Stage = StageCompleted
			reply = Summary(next)
			break
		}
		next.Answers = append(next.Answers, Answer{
			Index:    next.CurrentQuestion,
			Question: next.Questions[next.CurrentQuestion],
			Text:     input,
		})
		next.CurrentQuestion++

		if next.QuestionsDone() {
			next.Stage = StageCompleted
			reply = Summary(next)
			break
		}
		reply = nextQuestion(next.CurrentQuestion, next.Questions)

	case StageCompleted:
		reply = Summary(next)

	default:
		m.logger.Error("conversation is in an unknown stage", zap.String(logger.FieldStage, state.Stage.String()))
		return next, rephraseMessage
	}

	if next.Stage != state.Stage {
		m.logger.Debug("stage advanced",
			zap.String(logger.FieldStage, state.Stage.String()),
			zap.String("next_stage", next.Stage.String()),
		)
	}

	return next, reply
}

// Progress returns how far s is through the conversation, in (0, 1]. Unknown
// stages report 0.
func Progress(s State) float64 {
	return float64(s.Stage.Ordinal()) / float64(len(Stages))
}

// validName checks the trimmed answer. Length is measured before sanitizing.
func (m *Machine) validName(name string) bool {
	if utf8.RuneCountInString(name) < 2 {
		return false
	}
	return !m.strict || validation.Name(validation.Sanitize(name))
}

// accept normalizes input and validates it. When that fails and an extractor
// is configured, the extracted value gets the same treatment.
func (m *Machine) accept(ctx context.Context, input, field string, normalize func(string) string, valid func(string) bool) (string, bool) {
	value := normalize(input)
	if valid(value) {
		return value, true
	}

	if m.extractor == nil || strings.TrimSpace(input) == "" {
		return "", false
	}

	extracted, ok := ai.Extract(ctx, m.extractor, input, field)
	if !ok {
		m.logger.Debug("nothing extracted from answer", zap.String("field", field))
		return "", false
	}

	value = normalize(extracted)
	if !valid(value) {
		m.logger.Debug("extracted value did not validate", zap.String("field", field))
		return "", false
	}

	m.logger.Debug("field extracted from free text", zap.String("field", field))
	return value, true
}

func (m *Machine) generateQuestions(ctx context.Context, techStack string) []string {
	generated := m.questions.Questions(ctx, techStack)
	if len(generated) > questions.MaxQuestions {
		generated = generated[:questions.MaxQuestions]
	}
	return append([]string(nil), generated...)
}
