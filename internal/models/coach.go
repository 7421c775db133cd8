// internal/models/coach.go
package models

import "time"

// Analysis is the single-shot coaching reply.
type Analysis struct {
	Summary         string   `json:"summary"`
	Recommendations []string `json:"recommendations"`
	Score           int      `json:"score"`
}

type Conversation struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"userId"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
	Messages  []Message `json:"messages,omitempty"`
}

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type Message struct {
	ID             int64     `json:"id"`
	ConversationID int64     `json:"conversationId"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	CreatedAt      time.Time `json:"createdAt"`
}
