package symptoms

import (
	"errors"
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-nutrition-insights/internal/api"
	"github.com/FACorreiaa/go-nutrition-insights/internal/types"
)

const analysisFailedMessage = "Error analyzing symptoms. Please try again."

var (
	errMissingSymptoms = errors.New("Missing 'symptoms' field - this endpoint is for symptom analysis only")
	errWrongEndpoint   = errors.New("This endpoint is for symptom analysis, not food scanning")
)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{
		service: service,
		logger:  logger,
	}
}

// AnalyzeSymptoms reports every failure, validation included, as a 500 with
// a fallback analysis text.
func (h *HandlerImpl) AnalyzeSymptoms(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("SymptomsHandler").Start(r.Context(), "AnalyzeSymptoms", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/analyze-symptoms"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "AnalyzeSymptoms"))

	var req types.SymptomRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		h.writeError(w, r, err)
		return
	}
	if err := validateRequest(&req); err != nil {
		l.WarnContext(ctx, "Rejected symptom request", slog.Any("error", err))
		span.RecordError(err)
		h.writeError(w, r, err)
		return
	}

	l.InfoContext(ctx, "Received symptom request",
		slog.Bool("intake_present", req.UserIntake != nil && len(req.UserIntake.Nutrients) > 0))

	analysis, err := h.service.AnalyzeSymptoms(ctx, *req.Symptoms, req.UserIntake)
	if err != nil {
		span.RecordError(err)
		h.writeError(w, r, err)
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, analysis)
}

func validateRequest(req *types.SymptomRequest) error {
	if req.Symptoms == nil {
		return errMissingSymptoms
	}
	if req.Image != nil || req.FoodName != nil {
		return errWrongEndpoint
	}
	return nil
}

func (h *HandlerImpl) writeError(w http.ResponseWriter, r *http.Request, err error) {
	api.WriteJSONResponse(w, r, http.StatusInternalServerError, types.SymptomErrorResponse{
		Error:    err.Error(),
		Analysis: analysisFailedMessage,
	})
}
