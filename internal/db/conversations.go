package db

import (
	"context"
	"fmt"

	"nutrition-tracker/internal/models"
)

func (db *PostgresDB) CreateConversation(ctx context.Context, c *models.Conversation) error {
	query := `
        INSERT INTO conversations (user_id, title)
        VALUES ($1, $2)
        RETURNING id, created_at
    `

	if err := db.pool.QueryRow(ctx, query, c.UserID, c.Title).Scan(&c.ID, &c.CreatedAt); err != nil {
		return fmt.Errorf("failed to create conversation: %w", err)
	}
	return nil
}

func (db *PostgresDB) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	query := `
        SELECT id, user_id, title, created_at
        FROM conversations
        WHERE user_id = $1
        ORDER BY created_at DESC, id DESC
    `

	rows, err := db.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	defer rows.Close()

	conversations := []models.Conversation{}
	for rows.Next() {
		var c models.Conversation
		if err := rows.Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan conversation: %w", err)
		}
		conversations = append(conversations, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list conversations: %w", err)
	}
	return conversations, nil
}

// GetConversation loads a conversation owned by userID together with its
// messages in chronological order.
func (db *PostgresDB) GetConversation(ctx context.Context, id int64, userID string) (*models.Conversation, error) {
	query := `
        SELECT id, user_id, title, created_at
        FROM conversations
        WHERE id = $1 AND user_id = $2
    `

	var c models.Conversation
	if err := db.pool.QueryRow(ctx, query, id, userID).Scan(&c.ID, &c.UserID, &c.Title, &c.CreatedAt); err != nil {
		return nil, notFound(err)
	}

	rows, err := db.pool.Query(ctx, `
        SELECT id, conversation_id, role, content, created_at
        FROM messages
        WHERE conversation_id = $1
        ORDER BY created_at, id
    `, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	defer rows.Close()

	c.Messages = []models.Message{}
	for rows.Next() {
		var m models.Message
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		c.Messages = append(c.Messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to load messages: %w", err)
	}
	return &c, nil
}

// DeleteConversation removes the conversation and, by cascade, its messages.
func (db *PostgresDB) DeleteConversation(ctx context.Context, id int64, userID string) error {
	tag, err := db.pool.Exec(ctx, `DELETE FROM conversations WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete conversation: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (db *PostgresDB) AddMessage(ctx context.Context, m *models.Message) error {
	query := `
        INSERT INTO messages (conversation_id, role, content)
        VALUES ($1, $2, $3)
        RETURNING id, created_at
    `

	if err := db.pool.QueryRow(ctx, query, m.ConversationID, m.Role, m.Content).Scan(&m.ID, &m.CreatedAt); err != nil {
		return fmt.Errorf("failed to save message: %w", err)
	}
	return nil
}
