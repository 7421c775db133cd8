package db

import (
	"context"
	"fmt"

	"nutrition-tracker/internal/models"
)

func ptr[T any](v T) *T { return &v }

// KenyanFoods is the starter catalog loaded into an empty foods table.
var KenyanFoods = []models.Food{
	{Name: "Ugali (Maize Meal)", Category: ptr("Cereals"), Calories: 365, Protein: 7, Carbs: 78, Fat: 1, IsKenyaSpecific: true},
	{Name: "Sukuma Wiki (Collard Greens)", Category: ptr("Vegetables"), Calories: 32, Protein: 3, Carbs: 5.4, Fat: 0.7, VitaminA: ptr(500.0), Iron: ptr(1.5), IsKenyaSpecific: true},
	{Name: "Githeri (Maize & Beans)", Category: ptr("Mixed"), Calories: 150, Protein: 6, Carbs: 25, Fat: 1.5, IsKenyaSpecific: true},
	{Name: "Chapati", Category: ptr("Cereals"), Calories: 297, Protein: 8, Carbs: 46, Fat: 9, IsKenyaSpecific: true},
	{Name: "Nyama Choma (Roasted Goat)", Category: ptr("Meat"), Calories: 143, Protein: 27, Carbs: 0, Fat: 3, IsKenyaSpecific: true},
	{Name: "Kachumbari", Category: ptr("Vegetables"), Calories: 45, Protein: 1, Carbs: 10, Fat: 0.2, IsKenyaSpecific: true},
	{Name: "Matoke (Green Bananas)", Category: ptr("Fruits/Starch"), Calories: 122, Protein: 1.3, Carbs: 31, Fat: 0.3, IsKenyaSpecific: true},
	{Name: "Chai (Tea with Milk)", Category: ptr("Beverages"), Calories: 60, Protein: 3, Carbs: 5, Fat: 3, IsKenyaSpecific: true},
	{Name: "Mandazi", Category: ptr("Snacks"), Calories: 300, Protein: 5, Carbs: 45, Fat: 10, IsKenyaSpecific: true},
	{Name: "Mukimo", Category: ptr("Mixed"), Calories: 180, Protein: 4, Carbs: 35, Fat: 2, IsKenyaSpecific: true},
}

// SeedFoods inserts foods in one transaction when the catalog is empty.
// It reports how many rows were written.
func (db *PostgresDB) SeedFoods(ctx context.Context, foods []models.Food) (int, error) {
	n, err := db.CountFoods(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		return 0, nil
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	query := `
        INSERT INTO foods (name, category, calories, protein, carbs, fat, fiber, vitamin_a, iron, is_kenya_specific)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
    `
	for _, f := range foods {
		if _, err := tx.Exec(ctx, query,
			f.Name, f.Category, f.Calories, f.Protein, f.Carbs, f.Fat,
			f.Fiber, f.VitaminA, f.Iron, f.IsKenyaSpecific,
		); err != nil {
			return 0, fmt.Errorf("failed to seed %q: %w", f.Name, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit seed: %w", err)
	}
	return len(foods), nil
}
