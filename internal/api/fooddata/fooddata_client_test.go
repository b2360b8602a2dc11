package fooddata

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.Handler, apiKey string) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	return NewClient(Options{
		APIKey:    apiKey,
		BaseURL:   srv.URL + "/",
		DataTypes: []string{"Foundation", "SR Legacy"},
		PageSize:  1,
		Timeout:   2 * time.Second,
		CacheTTL:  time.Minute,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)
}

func TestClient_SearchFoodID(t *testing.T) {
	var calls atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/foods/search", func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		q := r.URL.Query()
		assert.Equal(t, "test-key", q.Get("api_key"))
		assert.Equal(t, []string{"Foundation", "SR Legacy"}, q["dataType"])
		assert.Equal(t, "1", q.Get("pageSize"))

		w.Header().Set("Content-Type", "application/json")
		if q.Get("query") == "grilled chicken" {
			_, _ = w.Write([]byte(`{"totalHits":0,"foods":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"totalHits":1,"foods":[{"fdcId":171077,"description":"Oatmeal"}]}`))
	})
	client := newTestClient(t, mux, "test-key")

	t.Run("match", func(t *testing.T) {
		id, found, err := client.SearchFoodID(t.Context(), "oatmeal")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 171077, id)
	})

	t.Run("no match", func(t *testing.T) {
		id, found, err := client.SearchFoodID(t.Context(), "grilled chicken")
		require.NoError(t, err)
		assert.False(t, found)
		assert.Zero(t, id)
	})

	t.Run("repeated query is served from cache", func(t *testing.T) {
		before := calls.Load()
		id, found, err := client.SearchFoodID(t.Context(), "  Oatmeal ")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, 171077, id)
		assert.Equal(t, before, calls.Load())
	})

	t.Run("misses are searched again", func(t *testing.T) {
		before := calls.Load()
		for range 2 {
			_, found, err := client.SearchFoodID(t.Context(), "grilled chicken")
			require.NoError(t, err)
			assert.False(t, found)
		}
		assert.Equal(t, before+2, calls.Load())
	})
}

func TestClient_GetFood(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/food/171077", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.URL.Query().Get("api_key"))
		_, _ = w.Write([]byte(`{
			"fdcId": 171077,
			"description": "Oatmeal",
			"foodNutrients": [
				{"nutrient": {"id": 1008, "name": "Energy", "unitName": "kcal"}, "amount": 379.2},
				{"nutrient": {"id": 1003, "name": "Protein", "unitName": "g"}, "amount": 13.15}
			]
		}`))
	})
	mux.HandleFunc("/v1/food/404", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})
	mux.HandleFunc("/v1/food/500", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	})
	client := newTestClient(t, mux, "test-key")

	food, err := client.GetFood(t.Context(), 171077)
	require.NoError(t, err)
	assert.Equal(t, "Oatmeal", food.Description)
	require.Len(t, food.FoodNutrients, 2)
	assert.Equal(t, 1008, food.FoodNutrients[0].Nutrient.ID)
	assert.InDelta(t, 379.2, food.FoodNutrients[0].Amount, 1e-9)

	_, err = client.GetFood(t.Context(), 404)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "FoodData Central API error 404")

	_, err = client.GetFood(t.Context(), 500)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse FoodData Central JSON")
}

func TestClient_MissingAPIKey(t *testing.T) {
	var calls atomic.Int32
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}), "")

	_, _, err := client.SearchFoodID(t.Context(), "oatmeal")
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	_, err = client.GetFood(t.Context(), 1)
	assert.ErrorIs(t, err, ErrMissingAPIKey)

	assert.Zero(t, calls.Load())
}

func TestClient_TransportErrorDoesNotLeakKey(t *testing.T) {
	client := NewClient(Options{
		APIKey:  "secret-key",
		BaseURL: "http://127.0.0.1:1",
		Timeout: time.Second,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)), nil)

	_, _, err := client.SearchFoodID(t.Context(), "apple")
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "secret-key")
}
