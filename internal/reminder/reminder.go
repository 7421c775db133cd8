// Package reminder stores per-user time-of-day notices. Reminders are display
// data; nothing here schedules or delivers them.
package reminder

import (
	"context"
	"errors"
	"strings"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/validation"
	"nutrition-tracker/pkg/logger"
)

type Store interface {
	ListReminders(ctx context.Context, userID string) ([]models.Reminder, error)
	CreateReminder(ctx context.Context, r *models.Reminder) error
	UpdateReminder(ctx context.Context, id int64, userID string, u models.ReminderUpdate) (*models.Reminder, error)
	DeleteReminder(ctx context.Context, id int64, userID string) error
}

type Registry struct {
	store Store
	log   *logger.Logger
}

func NewRegistry(store Store, log *logger.Logger) *Registry {
	return &Registry{store: store, log: log.Named("reminder")}
}

func (r *Registry) List(ctx context.Context, userID string) ([]models.Reminder, error) {
	reminders, err := r.store.ListReminders(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return reminders, nil
}

// Create stores an active reminder unless IsActive is explicitly false.
func (r *Registry) Create(ctx context.Context, userID string, in models.ReminderCreate) (*models.Reminder, error) {
	in.Time = strings.TrimSpace(in.Time)
	in.Message = strings.TrimSpace(in.Message)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	rem := &models.Reminder{
		UserID:   userID,
		Time:     in.Time,
		Type:     in.Type,
		Message:  in.Message,
		IsActive: in.IsActive == nil || *in.IsActive,
	}
	if err := r.store.CreateReminder(ctx, rem); err != nil {
		return nil, apperr.Internal(err)
	}

	r.log.Infow("reminder created", "user_id", userID, "reminder_id", rem.ID, "time", rem.Time, "type", rem.Type)
	return rem, nil
}

// Update applies a partial change to a reminder owned by userID.
func (r *Registry) Update(ctx context.Context, userID string, id int64, u models.ReminderUpdate) (*models.Reminder, error) {
	if u.Time != nil {
		t := strings.TrimSpace(*u.Time)
		u.Time = &t
	}
	if u.Message != nil {
		m := strings.TrimSpace(*u.Message)
		u.Message = &m
	}
	if err := validation.Struct(u); err != nil {
		return nil, err
	}
	if u.Empty() {
		return nil, apperr.Validation("body", "at least one of time, type, message, isActive is required")
	}

	rem, err := r.store.UpdateReminder(ctx, id, userID, u)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("reminder not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return rem, nil
}

// Delete removes a reminder owned by userID. Deleting an id that is gone,
// or that belongs to another user, is NotFound.
func (r *Registry) Delete(ctx context.Context, userID string, id int64) error {
	err := r.store.DeleteReminder(ctx, id, userID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("reminder not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	r.log.Infow("reminder deleted", "user_id", userID, "reminder_id", id)
	return nil
}
