package types

import "encoding/json"

// IntakeNutrient is a 7-day average of a nutrient as reported by the client.
// Amount and Target arrive as numbers or strings.
type IntakeNutrient struct {
	Amount any    `json:"amount"`
	Unit   string `json:"unit"`
	Target any    `json:"target"`
}

type UserIntake struct {
	Nutrients map[string]IntakeNutrient `json:"nutrients"`
}

// SymptomRequest keeps Image and FoodName only to reject food-scan payloads
// sent to the wrong endpoint; any value, null included, counts as present.
type SymptomRequest struct {
	Symptoms   *string         `json:"symptoms"`
	UserIntake *UserIntake     `json:"user_intake,omitempty"`
	Image      json.RawMessage `json:"image,omitempty"`
	FoodName   json.RawMessage `json:"food_name,omitempty"`
}

type SymptomAnalysis struct {
	Analysis             string   `json:"analysis"`
	RecommendedNutrients []string `json:"recommended_nutrients"`
	DietRecommendations  []string `json:"diet_recommendations"`
}

type SymptomErrorResponse struct {
	Error    string `json:"error"`
	Analysis string `json:"analysis"`
}
