// Package record turns a conversation state into a typed candidate record and
// writes it out for reviewers.
package record

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/mitchellh/mapstructure"
	"github.com/spigell/talent-screener/internal/intake"
	"github.com/spigell/talent-screener/internal/validation"
	"gopkg.in/yaml.v3"
)

// Format selects the record encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml or yml. Empty means json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("unknown record format %q (expected json or yaml)", s)
	}
}

// Candidate is the reviewer-facing view of a conversation.
type Candidate struct {
	Name            string          `json:"name,omitempty" yaml:"name,omitempty" mapstructure:"name"`
	Email           string          `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`
	Phone           string          `json:"phone,omitempty" yaml:"phone,omitempty" mapstructure:"phone"`
	Experience      string          `json:"experience,omitempty" yaml:"experience,omitempty" mapstructure:"experience"`
	ExperienceYears *float64        `json:"experience_years,omitempty" yaml:"experience_years,omitempty" mapstructure:"-"`
	Position        string          `json:"position,omitempty" yaml:"position,omitempty" mapstructure:"position"`
	Location        string          `json:"location,omitempty" yaml:"location,omitempty" mapstructure:"location"`
	TechStack       string          `json:"tech_stack,omitempty" yaml:"tech_stack,omitempty" mapstructure:"tech_stack"`
	Answers         []intake.Answer `json:"answers,omitempty" yaml:"answers,omitempty" mapstructure:"-"`
	Stage           string          `json:"stage" yaml:"stage" mapstructure:"-"`
	Progress        float64         `json:"progress" yaml:"progress" mapstructure:"-"`
	Completed       bool            `json:"completed" yaml:"completed" mapstructure:"-"`
	RecordedAt      time.Time       `json:"recorded_at" yaml:"recorded_at" mapstructure:"-"`
}

// FromState builds a Candidate from s. Unknown field names in s are an error.
func FromState(s intake.State, now time.Time) (*Candidate, error) {
	candidate := &Candidate{}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      candidate,
		TagName:     "mapstructure",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("create decoder: %w", err)
	}
	if err := decoder.Decode(s.Fields); err != nil {
		return nil, fmt.Errorf("decode candidate fields: %w", err)
	}

	if years, ok := validation.ExperienceYears(candidate.Experience); ok {
		candidate.ExperienceYears = &years
	}

	candidate.Answers = append([]intake.Answer(nil), s.Answers...)
	candidate.Stage = s.Stage.String()
	candidate.Progress = intake.Progress(s)
	candidate.Completed = s.Stage == intake.StageCompleted
	candidate.RecordedAt = now.UTC()

	return candidate, nil
}

// Encode writes c to w in format.
func (c *Candidate) Encode(w io.Writer, format Format) error {
	switch format {
	case FormatJSON, "":
		data, err := sonic.ConfigStd.MarshalIndent(c, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal candidate: %w", err)
		}
		data = append(data, '\n')
		if _, err := w.Write(data); err != nil {
			return fmt.Errorf("write candidate: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return fmt.Errorf("encode candidate: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown record format %q", format)
	}
}

// DumpToTmpFile writes c to a new candidate_*.<format> file in the temp dir
// and returns its path.
func (c *Candidate) DumpToTmpFile(format Format) (string, error) {
	if format == "" {
		format = FormatJSON
	}

	file, err := os.CreateTemp("", fmt.Sprintf("candidate_*.%s", format))
	if err != nil {
		return "", err
	}
	defer file.Close()

	if err := c.Encode(file, format); err != nil {
		return "", err
	}
	return file.Name(), nil
}
