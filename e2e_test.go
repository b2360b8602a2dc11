package main

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"google.golang.org/genai"

	foodScan "github.com/FACorreiaa/go-nutrition-insights/internal/api/food_scan"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/fooddata"
	generativeAI "github.com/FACorreiaa/go-nutrition-insights/internal/api/generative_ai"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/symptoms"
	"github.com/FACorreiaa/go-nutrition-insights/internal/router"
	"github.com/FACorreiaa/go-nutrition-insights/internal/types"
)

const (
	e2eVisionModel     = "vision"
	e2eEstimationModel = "estimation"
	e2eSymptomModel    = "symptom"
)

type modelReply struct {
	text string
	err  error
}

// scriptedGenerator answers each model with a fixed reply and records the calls.
type scriptedGenerator struct {
	mu      sync.Mutex
	replies map[string]modelReply
	calls   []string
}

func (g *scriptedGenerator) Ready() error { return nil }

func (g *scriptedGenerator) GenerateContent(_ context.Context, model string, _ ...*genai.Part) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls = append(g.calls, model)
	reply, ok := g.replies[model]
	if !ok {
		return "", errors.New("unexpected model " + model)
	}
	return reply.text, reply.err
}

func (g *scriptedGenerator) script(replies map[string]modelReply) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.replies = replies
	g.calls = nil
}

// E2ETestSuite drives the full middleware and routing stack against fake upstreams.
type E2ETestSuite struct {
	suite.Suite
	fdcServer *httptest.Server
	server    *httptest.Server
	client    *http.Client
	generator *scriptedGenerator
	logger    *slog.Logger
}

func (suite *E2ETestSuite) SetupSuite() {
	suite.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	suite.generator = &scriptedGenerator{}
	suite.fdcServer = httptest.NewServer(newFakeFoodDataCentral())

	suite.server = httptest.NewServer(suite.newApp(suite.generator))
	suite.client = &http.Client{Timeout: 10 * time.Second}
}

func (suite *E2ETestSuite) TearDownSuite() {
	suite.server.Close()
	suite.fdcServer.Close()
}

func (suite *E2ETestSuite) SetupTest() {
	suite.generator.script(nil)
}

func (suite *E2ETestSuite) newApp(ai generativeAI.ContentGenerator) http.Handler {
	fdc := fooddata.NewClient(fooddata.Options{
		APIKey:    "test-key",
		BaseURL:   suite.fdcServer.URL,
		DataTypes: []string{"Foundation", "SR Legacy"},
		PageSize:  1,
	}, suite.logger, nil)

	scanService := foodScan.NewServiceImpl(ai, fdc, foodScan.Models{
		Vision:     e2eVisionModel,
		Estimation: e2eEstimationModel,
	}, suite.logger, nil)
	symptomsService := symptoms.NewServiceImpl(ai, e2eSymptomModel, suite.logger, nil)

	return newHTTPRouter(&router.Config{
		FoodScanHandler: foodScan.NewHandlerImpl(scanService, suite.logger),
		SymptomsHandler: symptoms.NewHandlerImpl(symptomsService, suite.logger),
	}, suite.logger, 10*time.Second)
}

// newFakeFoodDataCentral knows a single food, "Mixed Plate".
func newFakeFoodDataCentral() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/foods/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("query") == "Mixed Plate" {
			io.WriteString(w, `{"totalHits":1,"foods":[{"fdcId":2345,"description":"Mixed plate"}]}`)
			return
		}
		io.WriteString(w, `{"totalHits":0,"foods":[]}`)
	})
	mux.HandleFunc("/v1/food/2345", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, `{"fdcId":2345,"foodNutrients":[
			{"nutrient":{"id":1008,"name":"Energy","unitName":"kcal"},"amount":500.4},
			{"nutrient":{"id":1003,"name":"Protein","unitName":"g"},"amount":21.34},
			{"nutrient":{"id":1051,"name":"Water","unitName":"g"},"amount":60}
		]}`)
	})
	return mux
}

func (suite *E2ETestSuite) post(url, path string, body any) *http.Response {
	payload, err := json.Marshal(body)
	suite.Require().NoError(err)

	resp, err := suite.client.Post(url+path, "application/json", bytes.NewReader(payload))
	suite.Require().NoError(err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func photo() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte{0xff, 0xd8, 0xff, 0xe0, 0x00, 0x10})
}

func (suite *E2ETestSuite) TestScanFood_EstimatesWhenDatabaseHasNoMatch() {
	suite.generator.script(map[string]modelReply{
		e2eVisionModel:     {text: "```json\n{\"foods\":[{\"name\":\"grilled chicken\",\"portion\":\"150g\"}]}\n```"},
		e2eEstimationModel: {text: "Calories: 300 kcal\nProtein: 40 g"},
	})

	resp := suite.post(suite.server.URL, "/api/scan-food", map[string]string{"image": photo(), "userId": "u-1"})
	suite.Equal(http.StatusOK, resp.StatusCode)

	body := decodeBody[types.FoodScanResponse](suite.T(), resp)
	suite.Equal(&types.NutritionRecord{
		Source:    types.SourceAIEstimation,
		FoodName:  "grilled chicken",
		Portion:   "Overall: 150g of grilled chicken",
		Calories:  "300",
		Nutrients: []types.NutrientEntry{{Name: "Protein", Amount: "40", Unit: "g"}},
	}, body.Result)
	suite.Equal([]string{e2eVisionModel, e2eEstimationModel}, suite.generator.calls)
}

func (suite *E2ETestSuite) TestScanFood_VisionFailureFallsBackToMixedPlate() {
	suite.generator.script(map[string]modelReply{
		e2eVisionModel: {err: genai.APIError{Code: 503, Message: "The model is overloaded.", Status: "UNAVAILABLE"}},
	})

	resp := suite.post(suite.server.URL, "/api/scan-food", map[string]string{"image": photo()})
	suite.Equal(http.StatusOK, resp.StatusCode)

	body := decodeBody[types.FoodScanResponse](suite.T(), resp)
	suite.Require().NotNil(body.Result)
	suite.Equal(types.SourceFoodData, body.Result.Source)
	suite.Equal("Mixed Plate", body.Result.FoodName)
	suite.Equal("Overall: 1 serving of Mixed Plate", body.Result.Portion)
	suite.Equal("500", body.Result.Calories)
	suite.Equal([]types.NutrientEntry{{Name: "Protein", Amount: "21.3", Unit: "g"}}, body.Result.Nutrients)
	suite.Equal([]string{e2eVisionModel}, suite.generator.calls)
}

func (suite *E2ETestSuite) TestScanFood_SerializesNullDailyValues() {
	suite.generator.script(map[string]modelReply{
		e2eVisionModel:     {text: `{"foods":[{"name":"ramen","portion":"1 bowl"}]}`},
		e2eEstimationModel: {text: "I could not estimate this meal."},
	})

	resp := suite.post(suite.server.URL, "/api/scan-food", map[string]string{"image": photo()})
	suite.Equal(http.StatusOK, resp.StatusCode)

	raw := decodeBody[map[string]map[string]any](suite.T(), resp)
	nutrients, ok := raw["result"]["nutrients"].([]any)
	suite.Require().True(ok)
	suite.Len(nutrients, 3)
	for _, n := range nutrients {
		entry := n.(map[string]any)
		suite.Contains(entry, "dailyValue")
		suite.Nil(entry["dailyValue"])
	}
}

func (suite *E2ETestSuite) TestScanFood_MalformedBody() {
	resp, err := suite.client.Post(suite.server.URL+"/api/scan-food", "application/json", strings.NewReader(`{"image":`))
	suite.Require().NoError(err)
	suite.Equal(http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody[map[string]string](suite.T(), resp)
	suite.True(strings.HasPrefix(body["error"], "Food scan failed: "))
	suite.Empty(suite.generator.calls)
}

func (suite *E2ETestSuite) TestScanFood_MissingGeminiKey() {
	ai, err := generativeAI.NewAIClient(context.Background(), "", nil)
	suite.Require().NoError(err)
	server := httptest.NewServer(suite.newApp(ai))
	defer server.Close()

	resp := suite.post(server.URL, "/api/scan-food", map[string]string{"image": photo()})
	suite.Equal(http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody[map[string]string](suite.T(), resp)
	suite.Contains(body["error"], "GEMINI_API_KEY")
}

func (suite *E2ETestSuite) TestScanFood_Health() {
	resp, err := suite.client.Get(suite.server.URL + "/api/scan-food")
	suite.Require().NoError(err)
	suite.Equal(http.StatusOK, resp.StatusCode)

	body := decodeBody[types.HealthResponse](suite.T(), resp)
	suite.Equal("ok", body.Status)
}

func (suite *E2ETestSuite) TestAnalyzeSymptoms_RejectsFoodScanPayload() {
	resp := suite.post(suite.server.URL, "/api/analyze-symptoms", map[string]string{"symptoms": "I feel tired", "image": "aGVsbG8="})
	suite.Equal(http.StatusInternalServerError, resp.StatusCode)

	body := decodeBody[types.SymptomErrorResponse](suite.T(), resp)
	suite.Contains(body.Error, "not food scanning")
	suite.Equal("Error analyzing symptoms. Please try again.", body.Analysis)
	suite.Empty(suite.generator.calls)
}

func (suite *E2ETestSuite) TestAnalyzeSymptoms_Success() {
	suite.generator.script(map[string]modelReply{
		e2eSymptomModel: {text: "Tiredness is often linked to low Iron and Vitamin D. Include oily fish and fortified cereals in your diet."},
	})

	resp := suite.post(suite.server.URL, "/api/analyze-symptoms", map[string]any{
		"symptoms": "I feel tired",
		"user_intake": map[string]any{
			"nutrients": map[string]any{"Iron": map[string]any{"amount": 6, "unit": "mg", "target": 18}},
		},
	})
	suite.Equal(http.StatusOK, resp.StatusCode)

	body := decodeBody[types.SymptomAnalysis](suite.T(), resp)
	suite.Equal([]string{"Vitamin D", "Iron"}, body.RecommendedNutrients)
	suite.Equal([]string{"Include oily fish and fortified cereals in your diet"}, body.DietRecommendations)
}

func (suite *E2ETestSuite) TestCORSPreflight() {
	for _, path := range []string{"/api/scan-food", "/api/analyze-symptoms"} {
		req, err := http.NewRequest(http.MethodOptions, suite.server.URL+path, nil)
		suite.Require().NoError(err)
		req.Header.Set("Origin", "https://app.example.com")
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
		req.Header.Set("Access-Control-Request-Headers", "Content-Type")

		resp, err := suite.client.Do(req)
		suite.Require().NoError(err)
		resp.Body.Close()

		suite.Equal(http.StatusOK, resp.StatusCode, path)
		suite.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"), path)
		suite.Equal(http.MethodPost, resp.Header.Get("Access-Control-Allow-Methods"), path)
		suite.Equal("Content-Type", resp.Header.Get("Access-Control-Allow-Headers"), path)
	}
}

func (suite *E2ETestSuite) TestOptionsWithoutPreflightHeaders() {
	for _, path := range []string{"/api/scan-food", "/api/analyze-symptoms"} {
		req, err := http.NewRequest(http.MethodOptions, suite.server.URL+path, nil)
		suite.Require().NoError(err)

		resp, err := suite.client.Do(req)
		suite.Require().NoError(err)
		resp.Body.Close()

		suite.Equal(http.StatusOK, resp.StatusCode, path)
		suite.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"), path)
		suite.Equal("POST, OPTIONS", resp.Header.Get("Access-Control-Allow-Methods"), path)
		suite.Equal("Content-Type", resp.Header.Get("Access-Control-Allow-Headers"), path)
	}
}

func (suite *E2ETestSuite) TestErrorResponsesCarryAllowOrigin() {
	resp := suite.post(suite.server.URL, "/api/analyze-symptoms", map[string]string{"image": "aGVsbG8="})
	defer resp.Body.Close()

	suite.Equal(http.StatusInternalServerError, resp.StatusCode)
	suite.Equal("*", resp.Header.Get("Access-Control-Allow-Origin"))
}

func (suite *E2ETestSuite) TestPing() {
	resp, err := suite.client.Get(suite.server.URL + "/ping")
	suite.Require().NoError(err)
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	suite.Require().NoError(err)
	suite.Equal("pong", string(body))
}

func TestE2E(t *testing.T) {
	suite.Run(t, new(E2ETestSuite))
}
