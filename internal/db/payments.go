package db

import (
	"context"
	"fmt"

	"nutrition-tracker/internal/models"
)

func (db *PostgresDB) SavePayment(ctx context.Context, p *models.Payment) error {
	query := `
        INSERT INTO payments (user_id, stripe_session_id, status)
        VALUES ($1, $2, $3)
        RETURNING id, created_at, updated_at
    `

	err := db.pool.QueryRow(ctx, query, p.UserID, p.StripeSessionID, p.Status).
		Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicate
		}
		return fmt.Errorf("failed to save payment: %w", err)
	}
	return nil
}

func (db *PostgresDB) GetPaymentBySession(ctx context.Context, sessionID string) (*models.Payment, error) {
	query := `
        SELECT id, user_id, stripe_session_id, status, created_at, updated_at
        FROM payments
        WHERE stripe_session_id = $1
    `

	var p models.Payment
	err := db.pool.QueryRow(ctx, query, sessionID).Scan(
		&p.ID, &p.UserID, &p.StripeSessionID, &p.Status, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, notFound(err)
	}
	return &p, nil
}

func (db *PostgresDB) UpdatePaymentStatus(ctx context.Context, sessionID, status string) error {
	query := `
        UPDATE payments
        SET status = $2, updated_at = NOW()
        WHERE stripe_session_id = $1
    `

	tag, err := db.pool.Exec(ctx, query, sessionID, status)
	if err != nil {
		return fmt.Errorf("failed to update payment status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// LinkTelegram binds a Telegram account to userID, replacing any earlier link.
func (db *PostgresDB) LinkTelegram(ctx context.Context, l *models.TelegramLink) error {
	query := `
        INSERT INTO telegram_links (telegram_id, chat_id, user_id)
        VALUES ($1, $2, $3)
        ON CONFLICT (telegram_id) DO UPDATE
        SET chat_id = EXCLUDED.chat_id, user_id = EXCLUDED.user_id
        RETURNING created_at
    `

	if err := db.pool.QueryRow(ctx, query, l.TelegramID, l.ChatID, l.UserID).Scan(&l.CreatedAt); err != nil {
		return fmt.Errorf("failed to link telegram account: %w", err)
	}
	return nil
}

func (db *PostgresDB) GetTelegramLink(ctx context.Context, telegramID int64) (*models.TelegramLink, error) {
	query := `
        SELECT telegram_id, chat_id, user_id, created_at
        FROM telegram_links
        WHERE telegram_id = $1
    `

	var l models.TelegramLink
	if err := db.pool.QueryRow(ctx, query, telegramID).Scan(&l.TelegramID, &l.ChatID, &l.UserID, &l.CreatedAt); err != nil {
		return nil, notFound(err)
	}
	return &l, nil
}
