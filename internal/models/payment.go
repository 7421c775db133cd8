// internal/models/payment.go
package models

import "time"

const (
	PaymentPending   = "pending"
	PaymentCompleted = "completed"
	PaymentExpired   = "expired"
)

type Payment struct {
	ID              int64     `json:"id"`
	UserID          string    `json:"userId"`
	StripeSessionID string    `json:"stripeSessionId"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// TelegramLink binds a Telegram chat to an application user.
type TelegramLink struct {
	TelegramID int64     `json:"telegramId"`
	ChatID     int64     `json:"chatId"`
	UserID     string    `json:"userId"`
	CreatedAt  time.Time `json:"createdAt"`
}
