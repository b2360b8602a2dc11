package types

const (
	SourceFoodData     = "USDA FoodData Central"
	SourceAIEstimation = "AI Estimation"
)

// FoodItem is one dish recognised on a plate.
type FoodItem struct {
	Name    string `json:"name"`
	Portion string `json:"portion"`
}

// NutrientEntry is one line of a nutrition record. DailyValue is reserved and
// is always serialised as null.
type NutrientEntry struct {
	Name       string   `json:"name"`
	Amount     string   `json:"amount"`
	Unit       string   `json:"unit"`
	DailyValue *float64 `json:"dailyValue"`
}

// NutritionRecord is the result of a food scan. Source tells which resolution
// path produced it; SourceAIEstimation is the lower-confidence one.
type NutritionRecord struct {
	Source    string          `json:"source"`
	FoodName  string          `json:"foodName"`
	Portion   string          `json:"portion"`
	Calories  string          `json:"calories"`
	Nutrients []NutrientEntry `json:"nutrients"`
}

type FoodScanRequest struct {
	Image string `json:"image"`
}

type FoodScanResponse struct {
	Result *NutritionRecord `json:"result"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
