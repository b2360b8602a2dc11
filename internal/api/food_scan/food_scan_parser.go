package foodScan

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-nutrition-insights/internal/api/fooddata"
	"github.com/FACorreiaa/go-nutrition-insights/internal/types"
)

const (
	NutrientCalories      = "Calories"
	NutrientProtein       = "Protein"
	NutrientCarbohydrates = "Carbohydrates"
	NutrientTotalFat      = "Total Fat"
	NutrientFiber         = "Fiber"
	NutrientVitaminA      = "Vitamin A"
	NutrientVitaminC      = "Vitamin C"
	NutrientVitaminD      = "Vitamin D"
	NutrientIron          = "Iron"
	NutrientCalcium       = "Calcium"
	NutrientMagnesium     = "Magnesium"
	NutrientPotassium     = "Potassium"
)

const mixedPlate = "Mixed Plate"

type nutrientSpec struct {
	Name string
	Unit string
}

// foodDataNutrients maps FoodData Central nutrient ids to the internal vocabulary.
var foodDataNutrients = map[int]nutrientSpec{
	1008: {NutrientCalories, "kcal"},
	1003: {NutrientProtein, "g"},
	1005: {NutrientCarbohydrates, "g"},
	1004: {NutrientTotalFat, "g"},
	1079: {NutrientFiber, "g"},
	1106: {NutrientVitaminA, "mcg"},
	1162: {NutrientVitaminC, "mg"},
	1114: {NutrientVitaminD, "mcg"},
	1089: {NutrientIron, "mg"},
	1087: {NutrientCalcium, "mg"},
	1090: {NutrientMagnesium, "mg"},
	1092: {NutrientPotassium, "mg"},
}

// freeTextPatterns is matched in order; the first pattern found in a line wins.
var freeTextPatterns = []struct {
	pattern string
	nutrientSpec
}{
	{"calorie", nutrientSpec{NutrientCalories, "kcal"}},
	{"protein", nutrientSpec{NutrientProtein, "g"}},
	{"carbohydrate", nutrientSpec{NutrientCarbohydrates, "g"}},
	{"fat", nutrientSpec{NutrientTotalFat, "g"}},
	{"fiber", nutrientSpec{NutrientFiber, "g"}},
	{"vitamin a", nutrientSpec{NutrientVitaminA, "mcg"}},
	{"vitamin c", nutrientSpec{NutrientVitaminC, "mg"}},
	{"vitamin d", nutrientSpec{NutrientVitaminD, "mcg"}},
	{"iron", nutrientSpec{NutrientIron, "mg"}},
	{"calcium", nutrientSpec{NutrientCalcium, "mg"}},
	{"potassium", nutrientSpec{NutrientPotassium, "mg"}},
	{"magnesium", nutrientSpec{NutrientMagnesium, "mg"}},
}

var numberPattern = regexp.MustCompile(`\d+\.?\d*`)

// MapFoodDataNutrients converts a FoodData Central record into a NutritionRecord.
// Calories are truncated to an integer, other amounts keep one decimal place and
// ids outside foodDataNutrients are dropped.
func MapFoodDataNutrients(food *fooddata.Food, foodName, portion string) types.NutritionRecord {
	record := types.NutritionRecord{
		Source:    types.SourceFoodData,
		FoodName:  foodName,
		Portion:   portion,
		Calories:  "0",
		Nutrients: []types.NutrientEntry{},
	}
	if food == nil {
		return record
	}

	for _, n := range food.FoodNutrients {
		spec, ok := foodDataNutrients[n.Nutrient.ID]
		if !ok {
			continue
		}
		if spec.Name == NutrientCalories {
			record.Calories = strconv.Itoa(int(n.Amount))
			continue
		}
		record.Nutrients = append(record.Nutrients, types.NutrientEntry{
			Name:   spec.Name,
			Amount: strconv.FormatFloat(n.Amount, 'f', 1, 64),
			Unit:   spec.Unit,
		})
	}
	return record
}

// ExtractFromFreeText reads a line-oriented nutrient listing produced by the
// estimation model. Each line contributes at most one nutrient. When nothing is
// recognised a fixed placeholder estimate is returned instead.
func ExtractFromFreeText(text string, items []types.FoodItem) types.NutritionRecord {
	var names, portions []string
	for _, item := range items {
		if item.Name == "" {
			continue
		}
		names = append(names, item.Name)
		if item.Portion != "" {
			portions = append(portions, fmt.Sprintf("%s of %s", item.Portion, item.Name))
		}
	}
	foodName := strings.Join(names, ", ")
	if foodName == "" {
		foodName = mixedPlate
	}

	record := types.NutritionRecord{
		Source:    types.SourceAIEstimation,
		FoodName:  foodName,
		Portion:   "Overall: " + strings.Join(portions, ", "),
		Calories:  "0",
		Nutrients: []types.NutrientEntry{},
	}

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lower := strings.ToLower(line)
		for _, p := range freeTextPatterns {
			if !strings.Contains(lower, p.pattern) {
				continue
			}
			// the number is searched on the whole line, so later patterns
			// cannot find one either when this lookup fails
			amount := numberPattern.FindString(line)
			switch {
			case amount == "":
			case p.Name == NutrientCalories:
				record.Calories = amount
			default:
				record.Nutrients = append(record.Nutrients, types.NutrientEntry{
					Name:   p.Name,
					Amount: amount,
					Unit:   p.Unit,
				})
			}
			break
		}
	}

	if record.Calories == "0" && len(record.Nutrients) == 0 {
		record.Calories = "250"
		record.Nutrients = placeholderNutrients()
	}
	return record
}

func placeholderNutrients() []types.NutrientEntry {
	return []types.NutrientEntry{
		{Name: NutrientProtein, Amount: "10", Unit: "g"},
		{Name: NutrientCarbohydrates, Amount: "30", Unit: "g"},
		{Name: NutrientTotalFat, Amount: "8", Unit: "g"},
	}
}

// parseFoodItems decodes {"foods":[...]} and drops unnamed and placeholder entries.
func parseFoodItems(jsonStr string) ([]types.FoodItem, error) {
	var payload struct {
		Foods []types.FoodItem `json:"foods"`
	}
	if err := json.Unmarshal([]byte(jsonStr), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse foods JSON: %w", err)
	}

	items := make([]types.FoodItem, 0, len(payload.Foods))
	for _, item := range payload.Foods {
		name := strings.ToLower(item.Name)
		if item.Name == "" || strings.Contains(name, "food item") || strings.Contains(name, "generic") {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// joinFoodNames joins every item name, including empty ones.
func joinFoodNames(items []types.FoodItem) string {
	names := make([]string, len(items))
	for i, item := range items {
		names[i] = item.Name
	}
	return strings.Join(names, ", ")
}

// describeFoods renders "<portion> of <name>" for every item.
func describeFoods(items []types.FoodItem) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = fmt.Sprintf("%s of %s", item.Portion, item.Name)
	}
	return strings.Join(parts, ", ")
}
