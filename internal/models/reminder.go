// internal/models/reminder.go
package models

type ReminderType string

const (
	ReminderWater      ReminderType = "water"
	ReminderMeal       ReminderType = "meal"
	ReminderSnack      ReminderType = "snack"
	ReminderSupplement ReminderType = "supplement"
)

// Reminder is display data only; nothing fires it.
type Reminder struct {
	ID       int64        `json:"id"`
	UserID   string       `json:"userId"`
	Time     string       `json:"time"`
	Type     ReminderType `json:"type"`
	Message  string       `json:"message"`
	IsActive bool         `json:"isActive"`
}

type ReminderCreate struct {
	Time     string       `json:"time" validate:"required,hhmm"`
	Type     ReminderType `json:"type" validate:"required,oneof=water meal snack supplement"`
	Message  string       `json:"message" validate:"required,max=500"`
	IsActive *bool        `json:"isActive"`
}

type ReminderUpdate struct {
	Time     *string       `json:"time" validate:"omitempty,hhmm"`
	Type     *ReminderType `json:"type" validate:"omitempty,oneof=water meal snack supplement"`
	Message  *string       `json:"message" validate:"omitempty,min=1,max=500"`
	IsActive *bool         `json:"isActive"`
}

func (u ReminderUpdate) Empty() bool {
	return u.Time == nil && u.Type == nil && u.Message == nil && u.IsActive == nil
}
