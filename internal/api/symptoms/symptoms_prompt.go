package symptoms

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-nutrition-insights/internal/types"
)

func getSymptomsPrompt(symptoms string, intake *types.UserIntake) string {
	return fmt.Sprintf(`You are a compassionate AI nutritional assistant. A user describes their symptoms: "%s"

%s

Your task:
1. Analyze the symptoms in relation to their current nutritional intake (if provided)
2. Identify potential vitamin or nutrient deficiencies that could cause these symptoms
3. Compare their intake to recommended daily values
4. Provide specific, actionable dietary advice
5. Be empathetic and supportive

Important: 
- If intake data shows they're low in certain nutrients, mention this connection
- Suggest specific foods rich in the nutrients they're lacking
- Always remind them to consult healthcare professionals for serious concerns
- Keep your response conversational but informative

Provide a warm, helpful response (2-3 paragraphs) followed by specific recommendations.`, symptoms, intakeContext(intake))
}

// intakeContext renders the client's intake summary, nutrients sorted by name.
// It is empty when no nutrients were reported.
func intakeContext(intake *types.UserIntake) string {
	if intake == nil || len(intake.Nutrients) == 0 {
		return ""
	}

	names := make([]string, 0, len(intake.Nutrients))
	for name := range intake.Nutrients {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\n\nUser's Current Nutritional Intake (last 7 days):\n")
	for _, name := range names {
		n := intake.Nutrients[name]
		target := "N/A"
		if n.Target != nil {
			target = formatValue(n.Target)
		}
		amount := "0"
		if n.Amount != nil {
			amount = formatValue(n.Amount)
		}
		fmt.Fprintf(&b, "- %s: %s%s (Target: %s)\n", name, amount, n.Unit, target)
	}
	return b.String()
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprint(val)
	}
}
