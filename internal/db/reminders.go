package db

import (
	"context"
	"fmt"

	"nutrition-tracker/internal/models"
)

const reminderColumns = `id, user_id, time, type, message, is_active`

func scanReminder(row rowScanner) (*models.Reminder, error) {
	var (
		r   models.Reminder
		typ string
	)
	if err := row.Scan(&r.ID, &r.UserID, &r.Time, &typ, &r.Message, &r.IsActive); err != nil {
		return nil, err
	}
	r.Type = models.ReminderType(typ)
	return &r, nil
}

func (db *PostgresDB) ListReminders(ctx context.Context, userID string) ([]models.Reminder, error) {
	query := `SELECT ` + reminderColumns + ` FROM reminders WHERE user_id = $1 ORDER BY time, id`

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	reminders := []models.Reminder{}
	for rows.Next() {
		r, err := scanReminder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}
		reminders = append(reminders, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	return reminders, nil
}

func (db *PostgresDB) CreateReminder(ctx context.Context, r *models.Reminder) error {
	query := `
        INSERT INTO reminders (user_id, time, type, message, is_active)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id
    `

	err := db.pool.QueryRow(ctx, query,
		r.UserID, r.Time, string(r.Type), r.Message, r.IsActive,
	).Scan(&r.ID)
	if err != nil {
		return fmt.Errorf("failed to create reminder: %w", err)
	}
	return nil
}

// UpdateReminder applies the non-nil fields of u to a reminder owned by userID.
func (db *PostgresDB) UpdateReminder(ctx context.Context, id int64, userID string, u models.ReminderUpdate) (*models.Reminder, error) {
	query := `
        UPDATE reminders
        SET time      = COALESCE($3, time),
            type      = COALESCE($4, type),
            message   = COALESCE($5, message),
            is_active = COALESCE($6, is_active)
        WHERE id = $1 AND user_id = $2
        RETURNING ` + reminderColumns

	r, err := scanReminder(db.pool.QueryRow(ctx, query,
		id, userID, u.Time, stringPtr(u.Type), u.Message, u.IsActive,
	))
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (db *PostgresDB) DeleteReminder(ctx context.Context, id int64, userID string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM reminders WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
