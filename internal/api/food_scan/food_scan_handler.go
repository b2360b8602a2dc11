package foodScan

import (
	"log/slog"
	"net/http"

	"go.opentelemetry.io/otel"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-nutrition-insights/internal/api"
	"github.com/FACorreiaa/go-nutrition-insights/internal/types"
)

const scanFailedPrefix = "Food scan failed: "

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

// Health is the liveness probe for the scan endpoint.
func (h *HandlerImpl) Health(w http.ResponseWriter, r *http.Request) {
	api.WriteJSONResponse(w, r, http.StatusOK, types.HealthResponse{
		Status:  "ok",
		Message: "Food Scan API is ready to accept POST requests.",
	})
}

// ScanFood answers 200 with a best-effort record for any decodable request.
func (h *HandlerImpl) ScanFood(w http.ResponseWriter, r *http.Request) {
	ctx, span := otel.Tracer("FoodScanHandler").Start(r.Context(), "ScanFood", trace.WithAttributes(
		semconv.HTTPRequestMethodKey.String(r.Method),
		semconv.HTTPRouteKey.String("/api/scan-food"),
	))
	defer span.End()

	l := h.logger.With(slog.String("handler", "ScanFood"))

	var req types.FoodScanRequest
	if err := api.DecodeJSONBody(w, r, &req); err != nil {
		l.ErrorContext(ctx, "Failed to decode request body", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, scanFailedPrefix+err.Error())
		return
	}

	record, err := h.service.ScanFoodImage(ctx, req.Image)
	if err != nil {
		l.ErrorContext(ctx, "Error during food scan", slog.Any("error", err))
		span.RecordError(err)
		api.ErrorResponse(w, r, http.StatusInternalServerError, scanFailedPrefix+err.Error())
		return
	}

	l.InfoContext(ctx, "Food scan completed",
		slog.String("source", record.Source),
		slog.String("food_name", record.FoodName))
	api.WriteJSONResponse(w, r, http.StatusOK, types.FoodScanResponse{Result: record})
}
