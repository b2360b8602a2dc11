package foodScan

import "fmt"

const identifyFoodsPrompt = `You are a food recognition AI. Analyze this image and identify EVERY individual food item visible on the plate.

IMPORTANT RULES:
- List each food item separately (e.g., "scrambled eggs", "bacon strips", "toast")
- Do NOT use generic terms like "mixed plate" or "breakfast items"
- Estimate the portion size for each item (e.g., "2 slices", "1 cup", "3 strips")
- If you see multiple items, list ALL of them individually

Respond with ONLY valid JSON (no markdown, no code blocks):

{
  "foods": [
    {"name": "specific food item 1", "portion": "estimated portion"},
    {"name": "specific food item 2", "portion": "estimated portion"}
  ]
}`

func getEstimationPrompt(foodsDescription string) string {
	return fmt.Sprintf(`Estimate the total nutritional value for this meal: %s

Provide estimates per the total portions listed. Format as:
Calories: [number] kcal
Protein: [number] g
Carbohydrates: [number] g
Total Fat: [number] g
Fiber: [number] g
Vitamin A: [number] mcg
Vitamin C: [number] mg
Iron: [number] mg
Calcium: [number] mg
Potassium: [number] mg

Be specific with numbers.`, foodsDescription)
}
