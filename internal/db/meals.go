package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"nutrition-tracker/internal/models"
)

const mealColumns = `id, user_id, date, meal_type, food_items, total_calories`

func scanMealLog(row rowScanner) (*models.MealLog, error) {
	var (
		m        models.MealLog
		mealType string
		items    []byte
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Date, &mealType, &items, &m.TotalCalories); err != nil {
		return nil, err
	}
	m.MealType = models.MealType(mealType)
	m.Date = m.Date.UTC()
	if err := json.Unmarshal(items, &m.FoodItems); err != nil {
		return nil, fmt.Errorf("meal %d: corrupt food_items: %w", m.ID, err)
	}
	if m.FoodItems == nil {
		m.FoodItems = []models.FoodEntry{}
	}
	return &m, nil
}

func (db *PostgresDB) listMealLogs(ctx context.Context, query string, args ...interface{}) ([]models.MealLog, error) {
	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list meal logs: %w", err)
	}
	defer rows.Close()

	logs := []models.MealLog{}
	for rows.Next() {
		m, err := scanMealLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan meal log: %w", err)
		}
		logs = append(logs, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list meal logs: %w", err)
	}
	return logs, nil
}

// CreateMealLog stores the log with its food snapshots as JSONB and fills in m.ID.
func (db *PostgresDB) CreateMealLog(ctx context.Context, m *models.MealLog) error {
	items, err := json.Marshal(m.FoodItems)
	if err != nil {
		return fmt.Errorf("failed to encode food items: %w", err)
	}

	query := `
        INSERT INTO meal_logs (user_id, date, meal_type, food_items, total_calories)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `

	err = db.pool.QueryRow(ctx, query,
		m.UserID, m.Date, string(m.MealType), items, m.TotalCalories,
	).Scan(&m.ID)
	if err != nil {
		return fmt.Errorf("failed to create meal log: %w", err)
	}
	return nil
}

// ListMealLogs returns the user's logs with from <= date < to, newest first.
func (db *PostgresDB) ListMealLogs(ctx context.Context, userID string, from, to time.Time) ([]models.MealLog, error) {
	query := `
        SELECT ` + mealColumns + `
        FROM meal_logs
        WHERE user_id = $1 AND date >= $2 AND date < $3
        ORDER BY date DESC, id DESC
    `
	return db.listMealLogs(ctx, query, userID, from, to)
}

// ListRecentMealLogs returns the user's newest logs regardless of day.
func (db *PostgresDB) ListRecentMealLogs(ctx context.Context, userID string, limit int) ([]models.MealLog, error) {
	query := `
        SELECT ` + mealColumns + `
        FROM meal_logs
        WHERE user_id = $1
        ORDER BY date DESC, id DESC
        LIMIT $2
    `
	return db.listMealLogs(ctx, query, userID, limit)
}

// DeleteMealLog removes the log only when userID owns it.
func (db *PostgresDB) DeleteMealLog(ctx context.Context, id int64, userID string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM meal_logs WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete meal log: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
