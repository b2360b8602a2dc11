package metrics

import (
	"context"
	"log"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// AppMetrics holds the application's metric instruments.
// All record methods are safe on a nil receiver so components can run without metrics in tests.
type AppMetrics struct {
	FoodScanRequestsTotal       metric.Int64Counter
	NutritionResolutionsTotal   metric.Int64Counter
	PipelineFallbacksTotal      metric.Int64Counter
	UpstreamCallDurationSeconds metric.Float64Histogram
	UpstreamCallErrorsTotal     metric.Int64Counter
	SymptomAnalysesTotal        metric.Int64Counter
}

var (
	appMetrics *AppMetrics
	once       sync.Once
)

// InitAppMetrics initializes the global metrics instruments ONLY ONCE.
// It gets the Meter from the globally configured MeterProvider.
func InitAppMetrics() {
	once.Do(func() {
		meter := otel.GetMeterProvider().Meter("NutritionInsights")
		var err error
		m := &AppMetrics{}

		m.FoodScanRequestsTotal, err = meter.Int64Counter(
			"food_scan_requests_total",
			metric.WithDescription("Total number of food scan requests accepted"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create food_scan_requests_total: %v", err)
		}

		m.NutritionResolutionsTotal, err = meter.Int64Counter(
			"nutrition_resolutions_total",
			metric.WithDescription("Nutrition records produced, by source"),
			metric.WithUnit("{record}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create nutrition_resolutions_total: %v", err)
		}

		m.PipelineFallbacksTotal, err = meter.Int64Counter(
			"pipeline_fallbacks_total",
			metric.WithDescription("Times a pipeline stage fell back, by stage"),
			metric.WithUnit("{fallback}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create pipeline_fallbacks_total: %v", err)
		}

		m.UpstreamCallDurationSeconds, err = meter.Float64Histogram(
			"upstream_call_duration_seconds",
			metric.WithDescription("Duration of calls to the model provider and the food database"),
			metric.WithUnit("s"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_call_duration_seconds: %v", err)
		}

		m.UpstreamCallErrorsTotal, err = meter.Int64Counter(
			"upstream_call_errors_total",
			metric.WithDescription("Failed calls to the model provider and the food database"),
			metric.WithUnit("{error}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create upstream_call_errors_total: %v", err)
		}

		m.SymptomAnalysesTotal, err = meter.Int64Counter(
			"symptom_analyses_total",
			metric.WithDescription("Symptom analyses, by outcome"),
			metric.WithUnit("{request}"),
		)
		if err != nil {
			log.Fatalf("Metrics: Failed to create symptom_analyses_total: %v", err)
		}

		log.Println("Application metrics instruments initialized.")
		appMetrics = m
	})
}

// Get returns the globally initialized AppMetrics instance.
// Panics if InitAppMetrics was not called first.
func Get() *AppMetrics {
	if appMetrics == nil {
		panic("metrics instruments not initialized. Call metrics.InitAppMetrics() first.")
	}
	return appMetrics
}

func (m *AppMetrics) RecordFoodScan(ctx context.Context) {
	if m == nil {
		return
	}
	m.FoodScanRequestsTotal.Add(ctx, 1)
}

func (m *AppMetrics) RecordResolution(ctx context.Context, source string) {
	if m == nil {
		return
	}
	m.NutritionResolutionsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
}

func (m *AppMetrics) RecordFallback(ctx context.Context, stage string) {
	if m == nil {
		return
	}
	m.PipelineFallbacksTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("stage", stage)))
}

func (m *AppMetrics) ObserveUpstream(ctx context.Context, upstream string, elapsed time.Duration, err error) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("upstream", upstream))
	m.UpstreamCallDurationSeconds.Record(ctx, elapsed.Seconds(), attrs)
	if err != nil {
		m.UpstreamCallErrorsTotal.Add(ctx, 1, attrs)
	}
}

func (m *AppMetrics) RecordSymptomAnalysis(ctx context.Context, outcome string) {
	if m == nil {
		return
	}
	m.SymptomAnalysesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", outcome)))
}
