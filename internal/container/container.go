package container

import (
	"context"
	"log/slog"

	"github.com/FACorreiaa/go-nutrition-insights/app/observability/metrics"
	"github.com/FACorreiaa/go-nutrition-insights/config"
	foodScan "github.com/FACorreiaa/go-nutrition-insights/internal/api/food_scan"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/fooddata"
	generativeAI "github.com/FACorreiaa/go-nutrition-insights/internal/api/generative_ai"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/symptoms"
	"github.com/FACorreiaa/go-nutrition-insights/internal/router"
)

// Container holds all application dependencies
type Container struct {
	Config          *config.Config
	Logger          *slog.Logger
	FoodScanHandler *foodScan.HandlerImpl
	SymptomsHandler *symptoms.HandlerImpl
}

// NewContainer initializes and returns a new dependency container.
// Missing API keys are not fatal here; they surface per request.
func NewContainer(ctx context.Context, cfg *config.Config, logger *slog.Logger, m *metrics.AppMetrics) (*Container, error) {
	if cfg.GenAI.APIKey == "" {
		logger.Warn("GEMINI_API_KEY is not set, analysis endpoints will fail")
	}
	if cfg.FoodData.APIKey == "" {
		logger.Warn("FDC_API_KEY is not set, nutrition will always be estimated")
	}

	aiClient, err := generativeAI.NewAIClient(ctx, cfg.GenAI.APIKey, m)
	if err != nil {
		logger.Error("Failed to initialize generative AI client", slog.Any("error", err))
		return nil, err
	}

	foodDataClient := fooddata.NewClient(fooddata.Options{
		APIKey:    cfg.FoodData.APIKey,
		BaseURL:   cfg.FoodData.BaseURL,
		DataTypes: cfg.FoodData.DataTypes,
		PageSize:  cfg.FoodData.PageSize,
		Timeout:   cfg.FoodData.Timeout,
		CacheTTL:  cfg.FoodData.CacheTTL,
	}, logger, m)

	foodScanService := foodScan.NewServiceImpl(aiClient, foodDataClient, foodScan.Models{
		Vision:     cfg.GenAI.VisionModel,
		Estimation: cfg.GenAI.EstimationModel,
	}, logger, m)
	foodScanHandler := foodScan.NewHandlerImpl(foodScanService, logger)

	symptomsService := symptoms.NewServiceImpl(aiClient, cfg.GenAI.SymptomModel, logger, m)
	symptomsHandler := symptoms.NewHandlerImpl(symptomsService, logger)

	return &Container{
		Config:          cfg,
		Logger:          logger,
		FoodScanHandler: foodScanHandler,
		SymptomsHandler: symptomsHandler,
	}, nil
}

// RouterConfig exposes the handlers to the router.
func (c *Container) RouterConfig() *router.Config {
	return &router.Config{
		FoodScanHandler: c.FoodScanHandler,
		SymptomsHandler: c.SymptomsHandler,
	}
}
