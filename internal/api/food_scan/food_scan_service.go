package foodScan

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
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
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/fooddata"
	generativeAI "github.com/FACorreiaa/go-nutrition-insights/internal/api/generative_ai"
	"github.com/FACorreiaa/go-nutrition-insights/internal/types"
)

const (
	stageIdentifyFoods  = "identify_foods"
	stageFoodDataLookup = "fooddata_lookup"
	stageEstimation     = "ai_estimation"

	// fed to ExtractFromFreeText when the estimation model itself fails
	estimationFailureText = "Error during AI estimation. Calories: 250 kcal"
)

var errNoJSONObject = errors.New("no JSON object in model output")

var _ Service = (*ServiceImpl)(nil)

// Service scans a meal photo and resolves its nutrition.
type Service interface {
	// ScanFoodImage fails only on configuration errors; every upstream failure
	// degrades to a lower-confidence record instead.
	ScanFoodImage(ctx context.Context, imageBase64 string) (*types.NutritionRecord, error)
}

type Models struct {
	Vision     string
	Estimation string
}

type ServiceImpl struct {
	logger   *slog.Logger
	ai       generativeAI.ContentGenerator
	foodData fooddata.Repository
	models   Models
	metrics  *metrics.AppMetrics
}

func NewServiceImpl(ai generativeAI.ContentGenerator, foodData fooddata.Repository, models Models, logger *slog.Logger, m *metrics.AppMetrics) *ServiceImpl {
	return &ServiceImpl{
		logger:   logger,
		ai:       ai,
		foodData: foodData,
		models:   models,
		metrics:  m,
	}
}

func sentinelFoods() []types.FoodItem {
	return []types.FoodItem{{Name: mixedPlate, Portion: "1 serving"}}
}

func (s *ServiceImpl) ScanFoodImage(ctx context.Context, imageBase64 string) (*types.NutritionRecord, error) {
	scanID := uuid.New()
	ctx, span := otel.Tracer("FoodScanService").Start(ctx, "ScanFoodImage", trace.WithAttributes(
		attribute.String("scan.id", scanID.String()),
	))
	defer span.End()

	if err := s.ai.Ready(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "generative model not configured")
		return nil, err
	}
	s.metrics.RecordFoodScan(ctx)

	l := s.logger.With(slog.String("scan_id", scanID.String()))

	var items []types.FoodItem
	image, err := decodeImage(imageBase64)
	if err != nil {
		l.WarnContext(ctx, "Image could not be decoded, using generic plate", slog.Any("error", err))
		s.metrics.RecordFallback(ctx, stageIdentifyFoods)
		items = sentinelFoods()
	} else {
		items = s.IdentifyFoods(ctx, image)
	}
	l.InfoContext(ctx, "Food items identified", slog.Int("count", len(items)), slog.Any("items", items))

	record := s.ResolveNutrition(ctx, items)
	span.SetAttributes(attribute.String("nutrition.source", record.Source))
	span.SetStatus(codes.Ok, "scan completed")
	return &record, nil
}

// decodeImage accepts raw base64 or a data URL ("data:image/jpeg;base64,...").
func decodeImage(imageBase64 string) ([]byte, error) {
	if _, after, found := strings.Cut(imageBase64, "base64,"); found {
		imageBase64 = after
	}
	image, err := base64.StdEncoding.DecodeString(imageBase64)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 image: %w", err)
	}
	if len(image) == 0 {
		return nil, errors.New("empty image")
	}
	return image, nil
}

// IdentifyFoods asks the vision model for the foods on the plate. It always
// returns at least one item, falling back to a generic plate.
func (s *ServiceImpl) IdentifyFoods(ctx context.Context, image []byte) []types.FoodItem {
	ctx, span := otel.Tracer("FoodScanService").Start(ctx, "IdentifyFoods", trace.WithAttributes(
		attribute.Int("image.bytes", len(image)),
	))
	defer span.End()

	items, err := s.identifyFoods(ctx, image)
	if err != nil {
		s.logger.WarnContext(ctx, "Food extraction failed, using generic plate", slog.Any("error", err))
		span.RecordError(err)
		s.metrics.RecordFallback(ctx, stageIdentifyFoods)
		return sentinelFoods()
	}
	if len(items) == 0 {
		s.logger.InfoContext(ctx, "Vision model returned no specific foods, using generic plate")
		s.metrics.RecordFallback(ctx, stageIdentifyFoods)
		return sentinelFoods()
	}

	span.SetAttributes(attribute.Int("foods.count", len(items)))
	span.SetStatus(codes.Ok, "foods identified")
	return items
}

func (s *ServiceImpl) identifyFoods(ctx context.Context, image []byte) ([]types.FoodItem, error) {
	text, err := s.ai.GenerateContent(ctx, s.models.Vision,
		genai.NewPartFromBytes(image, "image/jpeg"),
		genai.NewPartFromText(identifyFoodsPrompt),
	)
	if err != nil {
		return nil, err
	}
	s.logger.DebugContext(ctx, "Raw vision model output", slog.String("output", api.TruncateText(text, 100)))

	jsonStr, ok := generativeAI.ExtractJSONObject(text)
	if !ok {
		return nil, errNoJSONObject
	}
	return parseFoodItems(jsonStr)
}

// ResolveNutrition tries FoodData Central for the first item, then a text
// estimation by the model, then a fixed estimate. It never fails.
func (s *ServiceImpl) ResolveNutrition(ctx context.Context, items []types.FoodItem) types.NutritionRecord {
	ctx, span := otel.Tracer("FoodScanService").Start(ctx, "ResolveNutrition", trace.WithAttributes(
		attribute.Int("foods.count", len(items)),
	))
	defer span.End()

	if len(items) == 0 {
		items = sentinelFoods()
	}

	record, resolved := s.lookupFoodData(ctx, items)
	if !resolved {
		s.metrics.RecordFallback(ctx, stageFoodDataLookup)
		s.logger.InfoContext(ctx, "Using AI estimation for nutrition facts")
		record = s.estimateNutrition(ctx, items)
	}

	s.metrics.RecordResolution(ctx, record.Source)
	span.SetAttributes(attribute.String("nutrition.source", record.Source))
	span.SetStatus(codes.Ok, "nutrition resolved")
	return record
}

// lookupFoodData reports resolved=false on a miss or any error, which are
// only logged.
func (s *ServiceImpl) lookupFoodData(ctx context.Context, items []types.FoodItem) (types.NutritionRecord, bool) {
	ctx, span := otel.Tracer("FoodScanService").Start(ctx, "lookupFoodData")
	defer span.End()

	mainFood := items[0].Name
	l := s.logger.With(slog.String("main_food", mainFood))
	l.DebugContext(ctx, "Searching FoodData Central")

	fdcID, found, err := s.foodData.SearchFoodID(ctx, mainFood)
	if err != nil {
		l.WarnContext(ctx, "FoodData Central lookup failed", slog.Any("error", err))
		span.RecordError(err)
		return types.NutritionRecord{}, false
	}
	if !found {
		l.InfoContext(ctx, "No FoodData Central match")
		return types.NutritionRecord{}, false
	}

	food, err := s.foodData.GetFood(ctx, fdcID)
	if err != nil {
		l.WarnContext(ctx, "FoodData Central lookup failed", slog.Int("fdc_id", fdcID), slog.Any("error", err))
		span.RecordError(err)
		return types.NutritionRecord{}, false
	}

	span.SetAttributes(attribute.Int("fooddata.fdc_id", fdcID))
	return MapFoodDataNutrients(food, joinFoodNames(items), "Overall: "+describeFoods(items)), true
}

func (s *ServiceImpl) estimateNutrition(ctx context.Context, items []types.FoodItem) types.NutritionRecord {
	ctx, span := otel.Tracer("FoodScanService").Start(ctx, "estimateNutrition")
	defer span.End()

	prompt := getEstimationPrompt(describeFoods(items))
	text, err := s.ai.GenerateContent(ctx, s.models.Estimation, genai.NewPartFromText(prompt))
	if err != nil {
		s.logger.ErrorContext(ctx, "AI estimation failed, using fixed estimate", slog.Any("error", err))
		span.RecordError(err)
		s.metrics.RecordFallback(ctx, stageEstimation)
		return ExtractFromFreeText(estimationFailureText, items)
	}
	return ExtractFromFreeText(text, items)
}
