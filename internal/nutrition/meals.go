package nutrition

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/validation"
	"nutrition-tracker/pkg/logger"
)

type MealStore interface {
	CreateMealLog(ctx context.Context, m *models.MealLog) error
	ListMealLogs(ctx context.Context, userID string, from, to time.Time) ([]models.MealLog, error)
	ListRecentMealLogs(ctx context.Context, userID string, limit int) ([]models.MealLog, error)
	DeleteMealLog(ctx context.Context, id int64, userID string) error
}

// MaxQuantityG caps a single selection; larger amounts are input mistakes.
const MaxQuantityG = 100000

// Compose turns selections into frozen food entries. Every value is scaled by
// quantity/100 in floating point; only the calorie total is rounded.
// An id missing from catalog fails the whole composition.
func Compose(catalog map[int64]models.Food, selections []models.Selection) ([]models.FoodEntry, int, error) {
	if len(selections) == 0 {
		return nil, 0, apperr.Validation("foodItems", "a meal needs at least one food item")
	}

	entries := make([]models.FoodEntry, 0, len(selections))
	var total float64
	for i, sel := range selections {
		field := fmt.Sprintf("foodItems[%d].quantity_g", i)
		if !(sel.QuantityG > 0) {
			return nil, 0, apperr.Validation(field, field+" must be greater than 0")
		}
		if sel.QuantityG > MaxQuantityG {
			return nil, 0, apperr.Validation(field, fmt.Sprintf("%s must be less than or equal to %d", field, MaxQuantityG))
		}
		food, ok := catalog[sel.FoodID]
		if !ok {
			return nil, 0, apperr.NotFound(fmt.Sprintf("food %d not found", sel.FoodID))
		}

		factor := sel.QuantityG / 100
		calories := float64(food.Calories) * factor
		entries = append(entries, models.FoodEntry{
			FoodID:    food.ID,
			Name:      food.Name,
			QuantityG: sel.QuantityG,
			Calories:  calories,
			Macros: models.Macros{
				Protein: food.Protein * factor,
				Carbs:   food.Carbs * factor,
				Fat:     food.Fat * factor,
			},
		})
		total += calories
		if total > math.MaxInt32 {
			return nil, 0, apperr.Validation(field, "meal total exceeds the storable calorie range")
		}
	}
	return entries, int(math.Round(total)), nil
}

type Meals struct {
	foods FoodStore
	meals MealStore
	log   *logger.Logger
}

func NewMeals(foods FoodStore, meals MealStore, log *logger.Logger) *Meals {
	return &Meals{foods: foods, meals: meals, log: log.Named("meals")}
}

// Log composes and persists one meal for userID. Client totals are ignored.
func (s *Meals) Log(ctx context.Context, userID string, req models.MealCreate) (*models.MealLog, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	date, err := ParseDate("date", req.Date)
	if err != nil {
		return nil, err
	}

	ids := make([]int64, 0, len(req.FoodItems))
	for _, sel := range req.FoodItems {
		ids = append(ids, sel.FoodID)
	}
	catalog, err := s.foods.GetFoodsByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	entries, total, err := Compose(catalog, req.FoodItems)
	if err != nil {
		return nil, err
	}

	if req.TotalCalories != nil && int(math.Round(*req.TotalCalories)) != total {
		s.log.Infow("client total differs from computed total",
			"user_id", userID, "client_total", *req.TotalCalories, "total", total)
	}

	m := &models.MealLog{
		UserID:        userID,
		Date:          date,
		MealType:      req.MealType,
		FoodItems:     entries,
		TotalCalories: total,
	}
	if err := s.meals.CreateMealLog(ctx, m); err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Infow("meal logged", "user_id", userID, "meal_id", m.ID, "items", len(entries), "total_calories", total)
	return m, nil
}

// ListDay returns the user's logs within day's UTC window, newest first.
func (s *Meals) ListDay(ctx context.Context, userID string, day time.Time) ([]models.MealLog, error) {
	from, to := DayWindow(day)
	logs, err := s.meals.ListMealLogs(ctx, userID, from, to)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return logs, nil
}

func (s *Meals) Recent(ctx context.Context, userID string, limit int) ([]models.MealLog, error) {
	logs, err := s.meals.ListRecentMealLogs(ctx, userID, limit)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return logs, nil
}

// Delete removes a log owned by userID. Any other id, including one owned by
// someone else, is NotFound and nothing changes.
func (s *Meals) Delete(ctx context.Context, userID string, id int64) error {
	err := s.meals.DeleteMealLog(ctx, id, userID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("meal log not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	s.log.Infow("meal deleted", "user_id", userID, "meal_id", id)
	return nil
}
