// internal/models/food.go
package models

// Food is a catalog entry. Nutrient values are per 100g.
type Food struct {
	ID              int64    `json:"id"`
	Name            string   `json:"name"`
	Category        *string  `json:"category"`
	Calories        int      `json:"calories"`
	Protein         float64  `json:"protein"`
	Carbs           float64  `json:"carbs"`
	Fat             float64  `json:"fat"`
	Fiber           *float64 `json:"fiber"`
	VitaminA        *float64 `json:"vitaminA"`
	Iron            *float64 `json:"iron"`
	IsKenyaSpecific bool     `json:"isKenyaSpecific"`
}

// FoodFilter narrows a catalog search. Empty fields match everything.
type FoodFilter struct {
	Search   string
	Category string
}

// FoodInput is the writable part of a catalog entry.
type FoodInput struct {
	Name            string   `json:"name" validate:"required,max=200"`
	Category        *string  `json:"category" validate:"omitempty,max=100"`
	Calories        int      `json:"calories" validate:"gte=0"`
	Protein         float64  `json:"protein" validate:"gte=0"`
	Carbs           float64  `json:"carbs" validate:"gte=0"`
	Fat             float64  `json:"fat" validate:"gte=0"`
	Fiber           *float64 `json:"fiber" validate:"omitempty,gte=0"`
	VitaminA        *float64 `json:"vitaminA" validate:"omitempty,gte=0"`
	Iron            *float64 `json:"iron" validate:"omitempty,gte=0"`
	IsKenyaSpecific bool     `json:"isKenyaSpecific"`
}

func (in FoodInput) Food(id int64) *Food {
	return &Food{
		ID:              id,
		Name:            in.Name,
		Category:        in.Category,
		Calories:        in.Calories,
		Protein:         in.Protein,
		Carbs:           in.Carbs,
		Fat:             in.Fat,
		Fiber:           in.Fiber,
		VitaminA:        in.VitaminA,
		Iron:            in.Iron,
		IsKenyaSpecific: in.IsKenyaSpecific,
	}
}
