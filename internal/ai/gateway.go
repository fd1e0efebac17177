package ai

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/spigell/talent-screener/internal/logger"
	"go.uber.org/zap"
)

const (
	// FallbackServiceError is returned when the model answered with an error
	// or an unusable response.
	FallbackServiceError = "Technical difficulties. Please try again."
	// FallbackConnectionError is returned when the model could not be reached
	// in time.
	FallbackConnectionError = "Connection error. Ensure Ollama is running."

	// DefaultTimeout bounds a single gateway call.
	DefaultTimeout = 30 * time.Second

	defaultMaxLogLength = 200
)

var (
	// ErrEmptyResponse is returned by generators when the model produced no text.
	ErrEmptyResponse = errors.New("model returned empty response")
	// ErrUnsupportedProvider is returned for unknown provider names.
	ErrUnsupportedProvider = errors.New("unsupported ai provider")
)

// Gateway answers a prompt with free text. It never fails: on any problem a
// fixed fallback string is returned instead.
type Gateway interface {
	Complete(ctx context.Context, prompt string, sc SystemContext) string
}

// Generator is implemented by model providers.
type Generator interface {
	GenerateContent(ctx context.Context, systemPrompt, prompt string) (string, error)
	Model() string
}

// FallbackGateway adapts a Generator to the Gateway contract: one attempt,
// bounded by a timeout, fallback text on failure.
type FallbackGateway struct {
	generator Generator
	provider  string
	timeout   time.Duration
	maxLogLen int
	logger    *zap.Logger
}

var _ Gateway = (*FallbackGateway)(nil)

// GatewayOption configures a FallbackGateway.
type GatewayOption func(*FallbackGateway)

// WithTimeout overrides DefaultTimeout. Non-positive values are ignored.
func WithTimeout(d time.Duration) GatewayOption {
	return func(g *FallbackGateway) {
		if d > 0 {
			g.timeout = d
		}
	}
}

// WithLogger attaches a logger enriched with the provider and model fields.
func WithLogger(l *zap.Logger) GatewayOption {
	return func(g *FallbackGateway) {
		g.logger = l
	}
}

// WithMaxLogLength limits prompt and response previews in debug logs.
func WithMaxLogLength(n int) GatewayOption {
	return func(g *FallbackGateway) {
		if n > 0 {
			g.maxLogLen = n
		}
	}
}

// NewGateway wraps generator. provider is only used for logging.
func NewGateway(provider string, generator Generator, opts ...GatewayOption) *FallbackGateway {
	g := &FallbackGateway{
		generator: generator,
		provider:  provider,
		timeout:   DefaultTimeout,
		maxLogLen: defaultMaxLogLength,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}

	model := ""
	if generator != nil {
		model = generator.Model()
	}
	g.logger = logger.WithCommonFields(g.logger, provider, model)

	return g
}

// Complete sends prompt with the system message for sc.
func (g *FallbackGateway) Complete(ctx context.Context, prompt string, sc SystemContext) string {
	if g.generator == nil {
		g.logger.Warn("gateway has no generator configured")
		return FallbackServiceError
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	g.logger.Debug("gateway request",
		zap.String(logger.FieldSystemContext, string(sc)),
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, g.maxLogLen)),
	)

	started := time.Now()
	raw, err := g.generator.GenerateContent(ctx, SystemMessage(sc), prompt)
	if err == nil && strings.TrimSpace(raw) == "" {
		err = ErrEmptyResponse
	}
	if err != nil {
		fallback := FallbackFor(err)
		g.logger.Warn("gateway call failed, using fallback response",
			zap.String(logger.FieldSystemContext, string(sc)),
			zap.Duration("elapsed", time.Since(started)),
			zap.Bool("connection_error", fallback == FallbackConnectionError),
			zap.Error(err),
		)
		return fallback
	}

	output := strings.TrimSpace(raw)
	g.logger.Debug("gateway response",
		zap.String(logger.FieldSystemContext, string(sc)),
		zap.Duration("elapsed", time.Since(started)),
		zap.Int("response_length", utf8.RuneCountInString(output)),
		zap.String("response_preview", logger.TruncateForLog(output, g.maxLogLen)),
	)

	return output
}

// FallbackFor picks the fallback text that describes err.
func FallbackFor(err error) string {
	if IsConnectionError(err) {
		return FallbackConnectionError
	}
	return FallbackServiceError
}

// IsConnectionError reports whether err comes from the transport rather than
// from the model service itself. Timeouts count as connection errors.
func IsConnectionError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var urlErr *url.Error
	return errors.As(err, &urlErr)
}

// IsFallback reports whether text is one of the fixed fallback responses.
func IsFallback(text string) bool {
	text = strings.TrimSpace(text)
	return text == FallbackServiceError || text == FallbackConnectionError
}

// ProviderError wraps ErrUnsupportedProvider with the offending name.
func ProviderError(name string) error {
	return fmt.Errorf("%w: %q", ErrUnsupportedProvider, name)
}
