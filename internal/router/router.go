package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	foodScan "github.com/FACorreiaa/go-nutrition-insights/internal/api/food_scan"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/symptoms"
)

const (
	allowedMethods = "POST, OPTIONS"
	allowedHeaders = "Content-Type"
)

// Config contains dependencies needed for the router setup
type Config struct {
	FoodScanHandler *foodScan.HandlerImpl
	SymptomsHandler *symptoms.HandlerImpl
}

// SetupRouter initializes and configures the main application router.
// Server-wide middleware (like logger, requestID, recoverer) are expected
// to be applied *before* mounting this router in main.go.
func SetupRouter(cfg *Config) chi.Router {
	r := chi.NewRouter()

	// Browser preflights (Origin + Access-Control-Request-Method)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{allowedHeaders},
		MaxAge:         300,
	}))
	r.Use(allowAnyOrigin)

	r.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("pong"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/analyze-symptoms", cfg.SymptomsHandler.AnalyzeSymptoms)
		r.Options("/analyze-symptoms", options)

		r.Get("/scan-food", cfg.FoodScanHandler.Health)
		r.Post("/scan-food", cfg.FoodScanHandler.ScanFood)
		r.Options("/scan-food", options)
	})

	return r
}

// allowAnyOrigin sends Access-Control-Allow-Origin on every response, with or
// without an Origin request header.
func allowAnyOrigin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		next.ServeHTTP(w, r)
	})
}

// options answers OPTIONS requests that are not CORS preflights.
func options(w http.ResponseWriter, _ *http.Request) {
	h := w.Header()
	h.Set("Access-Control-Allow-Methods", allowedMethods)
	h.Set("Access-Control-Allow-Headers", allowedHeaders)
	w.WriteHeader(http.StatusOK)
}
