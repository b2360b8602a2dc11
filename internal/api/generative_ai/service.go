package generativeAI

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-nutrition-insights/app/observability/metrics"
)

// ErrMissingAPIKey is returned before any model call when GEMINI_API_KEY is unset.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY environment variable is not set")

// ContentGenerator is the subset of the Gemini API the services depend on.
type ContentGenerator interface {
	// Ready reports a configuration error, if any, without calling the model.
	Ready() error
	// GenerateContent sends the parts as a single user turn and returns the
	// concatenated text of the first candidate.
	GenerateContent(ctx context.Context, model string, parts ...*genai.Part) (string, error)
}

var _ ContentGenerator = (*AIClient)(nil)

type AIClient struct {
	client  *genai.Client
	config  *genai.GenerateContentConfig
	metrics *metrics.AppMetrics
}

// NewAIClient builds a Gemini API client. An empty apiKey yields a client whose
// Ready reports ErrMissingAPIKey, so the process can still serve requests that
// surface the configuration error.
func NewAIClient(ctx context.Context, apiKey string, m *metrics.AppMetrics) (*AIClient, error) {
	if apiKey == "" {
		return &AIClient{metrics: m}, nil
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &AIClient{
		client:  client,
		metrics: m,
	}, nil
}

func (ai *AIClient) Ready() error {
	if ai.client == nil {
		return ErrMissingAPIKey
	}
	return nil
}

func (ai *AIClient) GenerateContent(ctx context.Context, model string, parts ...*genai.Part) (string, error) {
	ctx, span := otel.Tracer("GenerativeAI").Start(ctx, "GenerateContent", trace.WithAttributes(
		attribute.String("genai.model", model),
		attribute.Int("genai.parts", len(parts)),
	))
	defer span.End()

	if err := ai.Ready(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "client not configured")
		return "", err
	}

	start := time.Now()
	contents := []*genai.Content{genai.NewContentFromParts(parts, genai.RoleUser)}
	result, err := ai.client.Models.GenerateContent(ctx, model, contents, ai.config)
	ai.metrics.ObserveUpstream(ctx, "gemini", time.Since(start), err)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generate content failed")
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	text := result.Text()
	span.SetAttributes(attribute.Int("genai.response_length", len(text)))
	span.SetStatus(codes.Ok, "content generated")
	return text, nil
}
