package symptoms

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/genai"

	"github.com/FACorreiaa/go-nutrition-insights/app/observability/metrics"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api"
	generativeAI "github.com/FACorreiaa/go-nutrition-insights/internal/api/generative_ai"
	"github.com/FACorreiaa/go-nutrition-insights/internal/types"
)

const (
	outcomeSuccess = "success"
	outcomeFailed  = "failed"

	keyErrorMessage   = "Gemini API Key error. Please check environment variables."
	imageErrorMessage = "Received image-related error - wrong endpoint may have been called"
)

var _ Service = (*ServiceImpl)(nil)

// Service analyzes free-text symptoms against an optional intake summary.
type Service interface {
	AnalyzeSymptoms(ctx context.Context, symptoms string, intake *types.UserIntake) (*types.SymptomAnalysis, error)
}

type ServiceImpl struct {
	logger  *slog.Logger
	ai      generativeAI.ContentGenerator
	model   string
	metrics *metrics.AppMetrics
}

func NewServiceImpl(ai generativeAI.ContentGenerator, model string, logger *slog.Logger, m *metrics.AppMetrics) *ServiceImpl {
	return &ServiceImpl{
		logger:  logger,
		ai:      ai,
		model:   model,
		metrics: m,
	}
}

// AnalyzeSymptoms makes a single text-model call. Returned errors carry a
// message safe to show to the caller.
func (s *ServiceImpl) AnalyzeSymptoms(ctx context.Context, symptoms string, intake *types.UserIntake) (*types.SymptomAnalysis, error) {
	analysisID := uuid.New()
	ctx, span := otel.Tracer("SymptomsService").Start(ctx, "AnalyzeSymptoms", trace.WithAttributes(
		attribute.String("analysis.id", analysisID.String()),
		attribute.Bool("intake.present", intake != nil && len(intake.Nutrients) > 0),
	))
	defer span.End()

	l := s.logger.With(slog.String("analysis_id", analysisID.String()))
	l.InfoContext(ctx, "Processing symptoms", slog.String("symptoms", api.TruncateText(symptoms, 100)))

	if err := s.ai.Ready(); err != nil {
		l.ErrorContext(ctx, "Generative model not configured", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "generative model not configured")
		s.metrics.RecordSymptomAnalysis(ctx, outcomeFailed)
		return nil, sanitize(err)
	}

	text, err := s.ai.GenerateContent(ctx, s.model, genai.NewPartFromText(getSymptomsPrompt(symptoms, intake)))
	if err != nil {
		l.ErrorContext(ctx, "Symptom analysis failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "analysis failed")
		s.metrics.RecordSymptomAnalysis(ctx, outcomeFailed)
		return nil, sanitize(classifyProviderError(err))
	}

	l.InfoContext(ctx, "Symptom analysis completed", slog.Int("response_length", len(text)))
	s.metrics.RecordSymptomAnalysis(ctx, outcomeSuccess)
	span.SetStatus(codes.Ok, "analysis completed")
	return &types.SymptomAnalysis{
		Analysis:             text,
		RecommendedNutrients: extractNutrients(text),
		DietRecommendations:  extractDietRecommendations(text),
	}, nil
}

// classifyProviderError rewrites Gemini API errors; anything else is reported
// as a generic analysis failure.
func classifyProviderError(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		msg := apiErr.Error()
		if strings.Contains(strings.ToLower(msg), "image") || strings.Contains(msg, "INVALID_ARGUMENT") {
			return errors.New(imageErrorMessage)
		}
		return errors.New("Analysis failed due to Gemini API error: " + msg)
	}
	return errors.New("Analysis failed: " + err.Error())
}

// sanitize hides credential problems behind a fixed message.
func sanitize(err error) error {
	msg := err.Error()
	if strings.Contains(msg, "GEMINI_API_KEY") || strings.Contains(msg, "authentication") {
		return errors.New(keyErrorMessage)
	}
	return err
}
