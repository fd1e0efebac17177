package intake

import (
	"errors"
	"fmt"

	"github.com/spigell/talent-screener/internal/questions"
)

// ErrInvalidState is wrapped by State.Validate errors.
var ErrInvalidState = errors.New("invalid state")

// Collected field names.
const (
	FieldName       = "name"
	FieldEmail      = "email"
	FieldPhone      = "phone"
	FieldExperience = "experience"
	FieldPosition   = "position"
	FieldLocation   = "location"
	FieldTechStack  = "tech_stack"
)

// FieldOrder is the order fields are collected and displayed in.
var FieldOrder = []string{
	FieldName,
	FieldEmail,
	FieldPhone,
	FieldExperience,
	FieldPosition,
	FieldLocation,
	FieldTechStack,
}

// Answer is the candidate's reply to one technical question.
type Answer struct {
	Index    int    `json:"index" mapstructure:"index"`
	Question string `json:"question" mapstructure:"question"`
	Text     string `json:"text" mapstructure:"text"`
}

// State is everything known about one conversation. Machine methods never
// modify a State they receive; they return a new one.
type State struct {
	Stage           Stage             `json:"stage"`
	Fields          map[string]string `json:"fields,omitempty"`
	Questions       []string          `json:"questions,omitempty"`
	Answers         []Answer          `json:"answers,omitempty"`
	CurrentQuestion int               `json:"current_question"`
}

// NewState returns the state of a conversation that has not started yet.
func NewState() State {
	return State{Stage: StageGreeting, Fields: map[string]string{}}
}

// Clone returns a deep copy of s.
func (s State) Clone() State {
	out := State{
		Stage:           s.Stage,
		Fields:          make(map[string]string, len(s.Fields)),
		CurrentQuestion: s.CurrentQuestion,
	}
	for k, v := range s.Fields {
		out.Fields[k] = v
	}
	if s.Questions != nil {
		out.Questions = append([]string(nil), s.Questions...)
	}
	if s.Answers != nil {
		out.Answers = append([]Answer(nil), s.Answers...)
	}
	return out
}

// Field returns the collected value for name.
func (s State) Field(name string) (string, bool) {
	v, ok := s.Fields[name]
	return v, ok
}

// QuestionsDone reports whether every generated question has been answered.
func (s State) QuestionsDone() bool {
	return s.CurrentQuestion >= len(s.Questions)
}

// Validate checks the question bookkeeping of a state received from outside
// the process. Unknown stages are left to the machine.
func (s State) Validate() error {
	if len(s.Questions) > questions.MaxQuestions {
		return fmt.Errorf("%w: %d questions, at most %d allowed", ErrInvalidState, len(s.Questions), questions.MaxQuestions)
	}
	if s.CurrentQuestion < 0 || s.CurrentQuestion > len(s.Questions) {
		return fmt.Errorf("%w: current_question %d out of range [0, %d]", ErrInvalidState, s.CurrentQuestion, len(s.Questions))
	}
	if len(s.Answers) > len(s.Questions) {
		return fmt.Errorf("%w: %d answers for %d questions", ErrInvalidState, len(s.Answers), len(s.Questions))
	}
	return nil
}
