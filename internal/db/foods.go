package db

import (
	"context"
	"fmt"
	"strings"

	"nutrition-tracker/internal/models"
)

const foodColumns = `id, name, category, calories, protein, carbs, fat, fiber, vitamin_a, iron, is_kenya_specific`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func scanFood(row rowScanner) (*models.Food, error) {
	var f models.Food
	err := row.Scan(
		&f.ID, &f.Name, &f.Category, &f.Calories,
		&f.Protein, &f.Carbs, &f.Fat,
		&f.Fiber, &f.VitaminA, &f.Iron, &f.IsKenyaSpecific,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// SearchFoods returns catalog entries whose name contains filter.Search
// (case-insensitive) and whose category equals filter.Category, in insertion order.
func (db *PostgresDB) SearchFoods(ctx context.Context, filter models.FoodFilter) ([]models.Food, error) {
	var (
		where []string
		args  []interface{}
	)
	if filter.Search != "" {
		args = append(args, "%"+likeEscaper.Replace(filter.Search)+"%")
		where = append(where, fmt.Sprintf("name ILIKE $%d", len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf("category = $%d", len(args)))
	}

	query := `SELECT ` + foodColumns + ` FROM foods`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY id`

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	defer rows.Close()

	foods := []models.Food{}
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods = append(foods, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search foods: %w", err)
	}
	return foods, nil
}

func (db *PostgresDB) GetFood(ctx context.Context, id int64) (*models.Food, error) {
	query := `SELECT ` + foodColumns + ` FROM foods WHERE id = $1`

	f, err := scanFood(db.pool.QueryRow(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// GetFoodsByIDs loads every listed food in one round trip, keyed by id.
// Missing ids are simply absent from the result.
func (db *PostgresDB) GetFoodsByIDs(ctx context.Context, ids []int64) (map[int64]models.Food, error) {
	query := `SELECT ` + foodColumns + ` FROM foods WHERE id = ANY($1)`

	rows, err := db.pool.Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load foods: %w", err)
	}
	defer rows.Close()

	foods := make(map[int64]models.Food, len(ids))
	for rows.Next() {
		f, err := scanFood(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan food: %w", err)
		}
		foods[f.ID] = *f
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load foods: %w", err)
	}
	return foods, nil
}

func (db *PostgresDB) CreateFood(ctx context.Context, f *models.Food) error {
	query := `
        INSERT INTO foods (name, category, calories, protein, carbs, fat, fiber, vitamin_a, iron, is_kenya_specific)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id
    `

	err := db.pool.QueryRow(ctx, query,
		f.Name, f.Category, f.Calories, f.Protein, f.Carbs, f.Fat,
		f.Fiber, f.VitaminA, f.Iron, f.IsKenyaSpecific,
	).Scan(&f.ID)
	if err != nil {
		return fmt.Errorf("failed to create food: %w", err)
	}
	return nil
}

// UpdateFood replaces every column of an existing food. Logged meals keep
// their snapshots.
func (db *PostgresDB) UpdateFood(ctx context.Context, f *models.Food) error {
	query := `
        UPDATE foods
        SET name = $2, category = $3, calories = $4, protein = $5, carbs = $6, fat = $7,
            fiber = $8, vitamin_a = $9, iron = $10, is_kenya_specific = $11
        WHERE id = $1
    `

	tag, err := db.pool.Exec(ctx, query,
		f.ID, f.Name, f.Category, f.Calories, f.Protein, f.Carbs, f.Fat,
		f.Fiber, f.VitaminA, f.Iron, f.IsKenyaSpecific,
	)
	if err != nil {
		return fmt.Errorf("failed to update food: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) CountFoods(ctx context.Context) (int64, error) {
	var n int64
	if err := db.pool.QueryRow(ctx, `SELECT COUNT(*) FROM foods`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count foods: %w", err)
	}
	return n, nil
}
