package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response   string
	err        error
	block      bool
	lastSystem string
	lastPrompt string
	calls      int
}

func (s *stubGenerator) GenerateContent(ctx context.Context, systemPrompt, prompt string) (string, error) {
	s.calls++
	s.lastSystem = systemPrompt
	s.lastPrompt = prompt
	if s.block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	if s.err != nil {
		return "", s.err
	}
	return s.response, nil
}

func (s *stubGenerator) Model() string {
	return "stub-model"
}

func TestGatewayComplete(t *testing.T) {
	stub := &stubGenerator{response: "  Jane Doe \n"}
	gw := NewGateway("stub", stub)

	got := gw.Complete(context.Background(), "who?", ContextExtraction)
	if got != "Jane Doe" {
		t.Fatalf("expected trimmed response, got %q", got)
	}

	if stub.lastPrompt != "who?" {
		t.Fatalf("unexpected prompt: %q", stub.lastPrompt)
	}

	if stub.lastSystem != SystemMessage(ContextExtraction) {
		t.Fatalf("unexpected system message: %q", stub.lastSystem)
	}
}

func TestGatewayFallbacks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		stub   *stubGenerator
		expect string
	}{
		{
			name:   "service error",
			stub:   &stubGenerator{err: errors.New("bad status: 500 Internal Server Error")},
			expect: FallbackServiceError,
		},
		{
			name:   "empty response",
			stub:   &stubGenerator{response: "   "},
			expect: FallbackServiceError,
		},
		{
			name: "connection refused",
			stub: &stubGenerator{err: &url.Error{
				Op:  "Post",
				URL: "http://localhost:11434/v1/chat/completions",
				Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connection refused")},
			}},
			expect: FallbackConnectionError,
		},
		{
			name:   "timeout",
			stub:   &stubGenerator{block: true},
			expect: FallbackConnectionError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			gw := NewGateway("stub", tt.stub, WithTimeout(10*time.Millisecond))

			got := gw.Complete(context.Background(), "prompt", ContextGeneral)
			if got != tt.expect {
				t.Fatalf("expected %q, got %q", tt.expect, got)
			}

			if tt.stub.calls != 1 {
				t.Fatalf("expected a single attempt, got %d", tt.stub.calls)
			}
		})
	}
}

func TestGatewayWithoutGenerator(t *testing.T) {
	gw := NewGateway("none", nil)
	if got := gw.Complete(context.Background(), "prompt", ContextGeneral); got != FallbackServiceError {
		t.Fatalf("expected service fallback, got %q", got)
	}
}

func TestGatewayLogsFailure(t *testing.T) {
	core, observed := observer.New(zapcore.DebugLevel)
	stub := &stubGenerator{err: fmt.Errorf("generate content: %w", errors.New("quota exceeded"))}
	gw := NewGateway("gemini", stub, WithLogger(zap.New(core)), WithMaxLogLength(5))

	gw.Complete(context.Background(), "a very long prompt", ContextQuestionGeneration)

	warnings := observed.FilterLevelExact(zapcore.WarnLevel).All()
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %d", len(warnings))
	}

	fields := warnings[0].ContextMap()
	if fields["ai_provider"] != "gemini" {
		t.Fatalf("expected provider field, got %v", fields["ai_provider"])
	}
	if fields["ai_model"] != "stub-model" {
		t.Fatalf("expected model field, got %v", fields["ai_model"])
	}
	if fields["system_context"] != string(ContextQuestionGeneration) {
		t.Fatalf("unexpected system context field: %v", fields["system_context"])
	}

	debug := observed.FilterMessage("gateway request").All()
	if len(debug) != 1 {
		t.Fatalf("expected request debug entry, got %d", len(debug))
	}
	if preview := debug[0].ContextMap()["prompt_preview"]; preview != "a ver..." {
		t.Fatalf("unexpected prompt preview: %q", preview)
	}
}

func TestIsConnectionError(t *testing.T) {
	t.Parallel()

	if IsConnectionError(nil) {
		t.Fatal("nil is not a connection error")
	}
	if !IsConnectionError(fmt.Errorf("wrapped: %w", context.DeadlineExceeded)) {
		t.Fatal("deadline should count as connection error")
	}
	if IsConnectionError(ErrEmptyResponse) {
		t.Fatal("empty response is a service error")
	}
}

func TestParseSystemContext(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input  string
		expect SystemContext
		fails  bool
	}{
		{input: "extraction", expect: ContextExtraction},
		{input: " Question_Generation ", expect: ContextQuestionGeneration},
		{input: "general", expect: ContextGeneral},
		{input: "", expect: ContextGeneral},
		{input: "poetry", fails: true},
	}

	for _, tt := range tests {
		got, err := ParseSystemContext(tt.input)
		if tt.fails {
			if err == nil {
				t.Fatalf("expected error for %q", tt.input)
			}
			continue
		}
		if err != nil {
			t.Fatalf("unexpected error for %q: %v", tt.input, err)
		}
		if got != tt.expect {
			t.Fatalf("ParseSystemContext(%q) = %q, expected %q", tt.input, got, tt.expect)
		}
	}
}

func TestPromptTemplates(t *testing.T) {
	t.Parallel()

	extraction := ExtractionPrompt("call me at 555 123 4567", "phone")
	if !strings.Contains(extraction, "Field to extract: phone") {
		t.Fatalf("field placeholder not replaced: %s", extraction)
	}
	if !strings.Contains(extraction, `User response: "call me at 555 123 4567"`) {
		t.Fatalf("input placeholder not replaced: %s", extraction)
	}
	if strings.Contains(extraction, "{{") {
		t.Fatalf("unreplaced placeholder left: %s", extraction)
	}

	questionsPrompt := QuestionGenerationPrompt("Go, Postgres")
	if !strings.Contains(questionsPrompt, "Go, Postgres") || strings.Contains(questionsPrompt, "{{TECH_STACK}}") {
		t.Fatalf("tech stack placeholder not replaced: %s", questionsPrompt)
	}

	if SystemMessage(SystemContext("unknown")) != SystemMessage(ContextGeneral) {
		t.Fatal("unknown context should use the general system message")
	}
}
