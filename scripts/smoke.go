package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"

	appLogger "github.com/FACorreiaa/go-nutrition-insights/app/logger"
	"github.com/FACorreiaa/go-nutrition-insights/config"
	foodScan "github.com/FACorreiaa/go-nutrition-insights/internal/api/food_scan"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/fooddata"
	generativeAI "github.com/FACorreiaa/go-nutrition-insights/internal/api/generative_ai"
	"github.com/FACorreiaa/go-nutrition-insights/internal/api/symptoms"
)

var (
	imagePath    = flag.String("image", "", "path to a meal photo to scan")
	symptomsText = flag.String("symptoms", "", "symptoms to analyze instead of scanning an image")
	timeout      = flag.Duration("timeout", 90*time.Second, "overall timeout")
)

// Runs one pipeline against the real upstreams and prints the JSON result.
func main() {
	flag.Parse()
	if *imagePath == "" && *symptomsText == "" {
		flag.Usage()
		os.Exit(2)
	}

	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}
	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("Error initializing config: %v", err)
	}
	logger := appLogger.New("development", os.Stderr)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	ai, err := generativeAI.NewAIClient(ctx, cfg.GenAI.APIKey, nil)
	if err != nil {
		log.Fatalf("Failed to create client: %v", err)
	}

	var result any
	if *symptomsText != "" {
		svc := symptoms.NewServiceImpl(ai, cfg.GenAI.SymptomModel, logger, nil)
		result, err = svc.AnalyzeSymptoms(ctx, *symptomsText, nil)
	} else {
		var img []byte
		img, err = os.ReadFile(*imagePath)
		if err != nil {
			log.Fatalf("Failed to read image: %v", err)
		}
		fdc := fooddata.NewClient(fooddata.Options{
			APIKey:    cfg.FoodData.APIKey,
			BaseURL:   cfg.FoodData.BaseURL,
			DataTypes: cfg.FoodData.DataTypes,
			PageSize:  cfg.FoodData.PageSize,
			Timeout:   cfg.FoodData.Timeout,
			CacheTTL:  cfg.FoodData.CacheTTL,
		}, logger, nil)
		svc := foodScan.NewServiceImpl(ai, fdc, foodScan.Models{
			Vision:     cfg.GenAI.VisionModel,
			Estimation: cfg.GenAI.EstimationModel,
		}, logger, nil)
		result, err = svc.ScanFoodImage(ctx, base64.StdEncoding.EncodeToString(img))
	}
	if err != nil {
		log.Fatal(err)
	}

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(out))
}
