package fooddata

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/FACorreiaa/go-nutrition-insights/app/observability/metrics"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api"
)

var ErrMissingAPIKey = errors.New("FDC_API_KEY is not configured")

var _ Repository = (*Client)(nil)

// Repository looks foods up in USDA FoodData Central.
type Repository interface {
	// SearchFoodID returns the id of the best server-side match for query.
	// found is false when the search returned no foods.
	SearchFoodID(ctx context.Context, query string) (fdcID int, found bool, err error)
	GetFood(ctx context.Context, fdcID int) (*Food, error)
}

type Options struct {
	APIKey    string
	BaseURL   string
	DataTypes []string
	PageSize  int
	Timeout   time.Duration
	CacheTTL  time.Duration
}

type Client struct {
	opts       Options
	httpClient *http.Client
	cache      *cache.Cache
	logger     *slog.Logger
	metrics    *metrics.AppMetrics
}

func NewClient(opts Options, logger *slog.Logger, m *metrics.AppMetrics) *Client {
	if opts.PageSize <= 0 {
		opts.PageSize = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}
	opts.BaseURL = strings.TrimSuffix(opts.BaseURL, "/")

	return &Client{
		opts: opts,
		httpClient: &http.Client{
			Timeout:   opts.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		// Upstream records are immutable, a TTL only bounds memory.
		cache:   cache.New(opts.CacheTTL, 2*opts.CacheTTL),
		logger:  logger,
		metrics: m,
	}
}

func (c *Client) SearchFoodID(ctx context.Context, query string) (int, bool, error) {
	ctx, span := otel.Tracer("FoodDataClient").Start(ctx, "SearchFoodID", trace.WithAttributes(
		attribute.String("fooddata.query", query),
	))
	defer span.End()

	if c.opts.APIKey == "" {
		span.RecordError(ErrMissingAPIKey)
		span.SetStatus(codes.Error, "api key missing")
		return 0, false, ErrMissingAPIKey
	}

	key := "search:" + strings.ToLower(strings.TrimSpace(query))
	if cached, ok := c.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.(int), true, nil
	}

	params := url.Values{}
	params.Set("api_key", c.opts.APIKey)
	params.Set("query", query)
	for _, dt := range c.opts.DataTypes {
		params.Add("dataType", dt)
	}
	params.Set("pageSize", strconv.Itoa(c.opts.PageSize))

	var resp searchResponse
	if err := c.getJSON(ctx, "/v1/foods/search", params, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search failed")
		return 0, false, fmt.Errorf("failed to search foods: %w", err)
	}

	span.SetStatus(codes.Ok, "search completed")
	// misses are not cached, a later search may match
	if len(resp.Foods) == 0 || resp.Foods[0].FdcID == 0 {
		return 0, false, nil
	}
	id := resp.Foods[0].FdcID
	c.cache.SetDefault(key, id)

	span.SetAttributes(attribute.Int("fooddata.fdc_id", id))
	return id, true, nil
}

func (c *Client) GetFood(ctx context.Context, fdcID int) (*Food, error) {
	ctx, span := otel.Tracer("FoodDataClient").Start(ctx, "GetFood", trace.WithAttributes(
		attribute.Int("fooddata.fdc_id", fdcID),
	))
	defer span.End()

	if c.opts.APIKey == "" {
		span.RecordError(ErrMissingAPIKey)
		span.SetStatus(codes.Error, "api key missing")
		return nil, ErrMissingAPIKey
	}

	key := "food:" + strconv.Itoa(fdcID)
	if cached, ok := c.cache.Get(key); ok {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return cached.(*Food), nil
	}

	params := url.Values{}
	params.Set("api_key", c.opts.APIKey)

	var food Food
	if err := c.getJSON(ctx, "/v1/food/"+strconv.Itoa(fdcID), params, &food); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "get food failed")
		return nil, fmt.Errorf("failed to get food %d: %w", fdcID, err)
	}
	c.cache.SetDefault(key, &food)

	span.SetAttributes(attribute.Int("fooddata.nutrients", len(food.FoodNutrients)))
	span.SetStatus(codes.Ok, "food retrieved")
	return &food, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, dst any) (err error) {
	start := time.Now()
	defer func() {
		c.metrics.ObserveUpstream(ctx, "fooddata", time.Since(start), err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.opts.BaseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error carries the full URL, api_key included
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("failed to call FoodData Central: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read FoodData Central response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("FoodData Central API error %d: %s", resp.StatusCode, api.TruncateText(string(body), 200))
	}

	if err := json.Unmarshal(body, dst); err != nil {
		return fmt.Errorf("failed to parse FoodData Central JSON: %w", err)
	}
	c.logger.DebugContext(ctx, "FoodData Central call succeeded", slog.String("path", path))
	return nil
}
