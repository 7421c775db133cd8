// Package profile is the one-row-per-user profile store.
package profile

import (
	"context"
	"errors"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/validation"
	"nutrition-tracker/pkg/logger"
)

// Store must upsert atomically on the user id.
type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	UpsertProfile(ctx context.Context, userID string, u models.ProfileUpdate) (*models.Profile, error)
}

type Service struct {
	store Store
	log   *logger.Logger
}

func NewService(store Store, log *logger.Logger) *Service {
	return &Service{store: store, log: log.Named("profile")}
}

// Get returns nil without error when the user has no profile yet.
func (s *Service) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return p, nil
}

func (s *Service) Upsert(ctx context.Context, userID string, u models.ProfileUpdate) (*models.Profile, error) {
	if err := validation.Struct(u); err != nil {
		return nil, err
	}

	p, err := s.store.UpsertProfile(ctx, userID, u)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Infow("profile saved", "user_id", userID)
	return p, nil
}

type UpgradeRequest struct {
	Tier models.SubscriptionTier `json:"tier" validate:"required,oneof=free premium"`
}

// SetTier changes only the subscription tier, creating the profile if needed.
func (s *Service) SetTier(ctx context.Context, userID string, req UpgradeRequest) (*models.Profile, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	tier := req.Tier
	p, err := s.store.UpsertProfile(ctx, userID, models.ProfileUpdate{SubscriptionTier: &tier})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Infow("subscription tier changed", "user_id", userID, "tier", tier)
	return p, nil
}
