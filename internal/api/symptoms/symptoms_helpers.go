package symptoms

import (
	"strings"
	"unicode/utf8"
)

const (
	maxRecommendedNutrients = 5
	maxDietRecommendations  = 4
	minRecommendationLength = 20
)

// nutrientVocabulary is matched in this order.
var nutrientVocabulary = []string{
	"Vitamin D", "Vitamin B12", "Vitamin C", "Vitamin A", "Vitamin E",
	"Iron", "Magnesium", "Calcium", "Zinc", "Potassium",
	"Omega-3", "Folate", "Vitamin B6",
}

var foodKeywords = []string{"eat", "food", "diet", "consume", "include", "rich in", "source"}

// extractNutrients returns the vocabulary terms mentioned anywhere in text.
func extractNutrients(text string) []string {
	lower := strings.ToLower(text)
	found := make([]string, 0, maxRecommendedNutrients)
	for _, nutrient := range nutrientVocabulary {
		if strings.Contains(lower, strings.ToLower(nutrient)) {
			found = append(found, nutrient)
			if len(found) == maxRecommendedNutrients {
				break
			}
		}
	}
	return found
}

// extractDietRecommendations keeps the food-related sentences of text.
func extractDietRecommendations(text string) []string {
	recommendations := make([]string, 0, maxDietRecommendations)
	for _, sentence := range strings.Split(text, ".") {
		if !containsAny(strings.ToLower(sentence), foodKeywords) {
			continue
		}
		clean := strings.TrimSpace(sentence)
		if utf8.RuneCountInString(clean) <= minRecommendationLength {
			continue
		}
		recommendations = append(recommendations, clean)
		if len(recommendations) == maxDietRecommendations {
			break
		}
	}
	return recommendations
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}
