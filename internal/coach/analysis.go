package coach

import (
	"encoding/json"
	"math"
	"strings"

	"nutrition-tracker/internal/models"
)

const fallbackScore = 50

// ParseAnalysis reads the first {...} block of raw as an analysis. Anything
// unusable degrades to the raw text with no recommendations and score 50.
func ParseAnalysis(raw string) models.Analysis {
	fallback := models.Analysis{Summary: raw, Recommendations: []string{}, Score: fallbackScore}

	candidate := raw
	if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		candidate = raw[start : end+1]
	}

	var parsed struct {
		Summary         *string  `json:"summary"`
		Recommendations []string `json:"recommendations"`
		Score           *float64 `json:"score"`
	}
	if err := json.Unmarshal([]byte(candidate), &parsed); err != nil {
		return fallback
	}
	if parsed.Summary == nil || strings.TrimSpace(*parsed.Summary) == "" {
		return fallback
	}

	a := models.Analysis{
		Summary:         *parsed.Summary,
		Recommendations: parsed.Recommendations,
		Score:           fallbackScore,
	}
	if a.Recommendations == nil {
		a.Recommendations = []string{}
	}
	if parsed.Score != nil && !math.IsNaN(*parsed.Score) {
		a.Score = int(math.Round(math.Min(100, math.Max(0, *parsed.Score))))
	}
	return a
}
