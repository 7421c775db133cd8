package nutrition

import (
	"context"
	"errors"
	"time"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
)

const (
	loseWeightTarget = 1800
	defaultTarget    = 2200
)

type ProfileReader interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// TargetCalories is a fixed two-bucket lookup: lose_weight gets 1800 and
// everything else, including no goal, gets 2200.
func TargetCalories(goal *models.DietaryGoal) int {
	if goal != nil && *goal == models.GoalLoseWeight {
		return loseWeightTarget
	}
	return defaultTarget
}

// Reduce sums calories from each log's stored total and macros from the
// frozen entry snapshots. The catalog is never consulted.
func Reduce(logs []models.MealLog) (calories int, macros models.Macros) {
	for _, l := range logs {
		calories += l.TotalCalories
		for _, e := range l.FoodItems {
			macros.Protein += e.Macros.Protein
			macros.Carbs += e.Macros.Carbs
			macros.Fat += e.Macros.Fat
		}
	}
	return calories, macros
}

type Summaries struct {
	meals    MealStore
	profiles ProfileReader
}

func NewSummaries(meals MealStore, profiles ProfileReader) *Summaries {
	return &Summaries{meals: meals, profiles: profiles}
}

// Summarize reduces one UTC day of the user's logs. A day without logs
// yields zero totals.
func (s *Summaries) Summarize(ctx context.Context, userID string, day time.Time) (*models.DailySummary, error) {
	from, to := DayWindow(day)
	logs, err := s.meals.ListMealLogs(ctx, userID, from, to)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	var goal *models.DietaryGoal
	p, err := s.profiles.GetProfile(ctx, userID)
	switch {
	case errors.Is(err, db.ErrNotFound):
	case err != nil:
		return nil, apperr.Internal(err)
	default:
		goal = p.DietaryGoals
	}

	calories, macros := Reduce(logs)
	target := TargetCalories(goal)
	remaining := target - calories
	if remaining < 0 {
		remaining = 0
	}

	return &models.DailySummary{
		Date:              FormatDay(from),
		TotalCalories:     calories,
		Protein:           macros.Protein,
		Carbs:             macros.Carbs,
		Fat:               macros.Fat,
		TargetCalories:    target,
		RemainingCalories: remaining,
		Entries:           logs,
	}, nil
}
