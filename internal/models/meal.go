// internal/models/meal.go
package models

import "time"

type MealType string

const (
	MealBreakfast MealType = "breakfast"
	MealLunch     MealType = "lunch"
	MealDinner    MealType = "dinner"
	MealSnack     MealType = "snack"
)

func (t MealType) Valid() bool {
	switch t {
	case MealBreakfast, MealLunch, MealDinner, MealSnack:
		return true
	}
	return false
}

// Macros are grams of each macronutrient, already scaled to the logged quantity.
type Macros struct {
	Protein float64 `json:"protein"`
	Carbs   float64 `json:"carbs"`
	Fat     float64 `json:"fat"`
}

// FoodEntry is one line of a logged meal. Everything except FoodID and
// QuantityG is a snapshot taken when the meal was logged.
type FoodEntry struct {
	FoodID    int64   `json:"foodId"`
	Name      string  `json:"name"`
	QuantityG float64 `json:"quantity_g"`
	Calories  float64 `json:"calories"`
	Macros    Macros  `json:"macros"`
}

type MealLog struct {
	ID            int64       `json:"id"`
	UserID        string      `json:"userId"`
	Date          time.Time   `json:"date"`
	MealType      MealType    `json:"mealType"`
	FoodItems     []FoodEntry `json:"foodItems"`
	TotalCalories int         `json:"totalCalories"`
}

// Selection is a catalog reference plus the grams eaten.
type Selection struct {
	FoodID    int64   `json:"foodId" validate:"required,gt=0"`
	QuantityG float64 `json:"quantity_g" validate:"gt=0,lte=100000"`
}

// MealCreate is the body of a meal submission. Name, macros and
// totalCalories sent by clients are accepted but recomputed from the catalog.
type MealCreate struct {
	Date          string      `json:"date" validate:"required"`
	MealType      MealType    `json:"mealType" validate:"required,oneof=breakfast lunch dinner snack"`
	FoodItems     []Selection `json:"foodItems" validate:"required,min=1,dive"`
	TotalCalories *float64    `json:"totalCalories"`
}

// DailySummary is the reduced view of one user's day.
type DailySummary struct {
	Date              string    `json:"date"`
	TotalCalories     int       `json:"totalCalories"`
	Protein           float64   `json:"protein"`
	Carbs             float64   `json:"carbs"`
	Fat               float64   `json:"fat"`
	TargetCalories    int       `json:"targetCalories"`
	RemainingCalories int       `json:"remainingCalories"`
	Entries           []MealLog `json:"entries"`
}
