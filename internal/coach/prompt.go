package coach

import (
	"encoding/json"
	"fmt"
	"strings"

	"nutrition-tracker/internal/models"
)

const systemPrompt = "You are a friendly nutritionist who coaches people living in Kenya. " +
	"Prefer locally available foods and keep advice practical."

// mealSummary is what the prompt sees of a logged meal.
type mealSummary struct {
	Date          string   `json:"date"`
	MealType      string   `json:"mealType"`
	TotalCalories int      `json:"totalCalories"`
	Foods         []string `json:"foods"`
	Protein       float64  `json:"protein"`
	Carbs         float64  `json:"carbs"`
	Fat           float64  `json:"fat"`
}

func summarizeMeals(logs []models.MealLog) []mealSummary {
	out := make([]mealSummary, 0, len(logs))
	for _, l := range logs {
		s := mealSummary{
			Date:          l.Date.UTC().Format("2006-01-02 15:04"),
			MealType:      string(l.MealType),
			TotalCalories: l.TotalCalories,
			Foods:         make([]string, 0, len(l.FoodItems)),
		}
		for _, e := range l.FoodItems {
			s.Foods = append(s.Foods, fmt.Sprintf("%s %.0fg", e.Name, e.QuantityG))
			s.Protein += e.Macros.Protein
			s.Carbs += e.Macros.Carbs
			s.Fat += e.Macros.Fat
		}
		out = append(out, s)
	}
	return out
}

func mustJSON(v interface{}) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "null"
	}
	return string(b)
}

// AnalysisPrompt asks for a JSON analysis of the user's recent eating.
func AnalysisPrompt(p *models.Profile, meals []models.MealLog, foods []models.Food, question string) string {
	local := make([]models.Food, 0, len(foods))
	for _, f := range foods {
		if f.IsKenyaSpecific {
			local = append(local, f)
		}
	}

	var b strings.Builder
	b.WriteString("Analyze the following nutrition data for a person in Kenya.\n\n")
	fmt.Fprintf(&b, "User Profile: %s\n", mustJSON(p))
	fmt.Fprintf(&b, "Recent Meals: %s\n", mustJSON(summarizeMeals(meals)))
	fmt.Fprintf(&b, "Available Kenyan Foods: %s\n\n", mustJSON(local))
	if q := strings.TrimSpace(question); q != "" {
		fmt.Fprintf(&b, "The user asks: %s\n\n", q)
	}
	b.WriteString("Provide a health analysis including:\n" +
		"1. Nutritional balance assessment in the Kenyan context.\n" +
		"2. Specific recommendations for improvement using local foods.\n" +
		"3. Potential risks or missing nutrients (like iron, vitamin A).\n\n" +
		`Return only a JSON object with fields "summary" (string), "recommendations" (array of strings) and "score" (integer 0-100).`)
	return b.String()
}

// ConversationPrompt renders the history as a transcript ending with the
// assistant's turn.
func ConversationPrompt(p *models.Profile, history []models.Message) string {
	var b strings.Builder
	b.WriteString(systemPrompt)
	b.WriteString("\n")
	if p != nil {
		fmt.Fprintf(&b, "User profile: %s\n", mustJSON(p))
	}
	b.WriteString("\n")
	for _, m := range history {
		role := "User"
		if m.Role == models.RoleAssistant {
			role = "Assistant"
		}
		fmt.Fprintf(&b, "%s: %s\n", role, m.Content)
	}
	b.WriteString("Assistant:")
	return b.String()
}
