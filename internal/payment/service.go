// Package payment sells the premium tier through Stripe Checkout.
package payment

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/stripe/stripe-go/v72"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/profile"
	"nutrition-tracker/pkg/logger"
)

type Gateway interface {
	Enabled() bool
	CreateCheckoutSession(userID string) (sessionID, url string, err error)
	ConstructEvent(payload []byte, sig string) (stripe.Event, error)
}

type Store interface {
	SavePayment(ctx context.Context, p *models.Payment) error
	GetPaymentBySession(ctx context.Context, sessionID string) (*models.Payment, error)
	UpdatePaymentStatus(ctx context.Context, sessionID, status string) error
}

type TierSetter interface {
	SetTier(ctx context.Context, userID string, req profile.UpgradeRequest) (*models.Profile, error)
}

type CheckoutSession struct {
	SessionID string `json:"sessionId"`
	URL       string `json:"url"`
}

// ErrBadSignature is returned for webhook payloads that fail verification.
var ErrBadSignature = errors.New("invalid webhook signature")

type Service struct {
	gateway  Gateway
	store    Store
	profiles TierSetter
	log      *logger.Logger
}

func NewService(gateway Gateway, store Store, profiles TierSetter, log *logger.Logger) *Service {
	return &Service{gateway: gateway, store: store, profiles: profiles, log: log.Named("payment")}
}

// Checkout opens a Stripe Checkout session and records a pending payment.
func (s *Service) Checkout(ctx context.Context, userID string) (*CheckoutSession, error) {
	if !s.gateway.Enabled() {
		return nil, apperr.Upstream("payments are not configured", nil)
	}

	id, url, err := s.gateway.CreateCheckoutSession(userID)
	if err != nil {
		s.log.Errorw("checkout session failed", "user_id", userID, "error", err)
		return nil, apperr.Upstream("payment provider unavailable", err)
	}

	p := &models.Payment{UserID: userID, StripeSessionID: id, Status: models.PaymentPending}
	if err := s.store.SavePayment(ctx, p); err != nil {
		return nil, apperr.Internal(err)
	}

	s.log.Infow("checkout session created", "user_id", userID, "session_id", id)
	return &CheckoutSession{SessionID: id, URL: url}, nil
}

// HandleWebhook verifies a Stripe event and, for a completed checkout,
// marks the payment completed and upgrades the buyer to premium. Redelivered
// events are harmless.
func (s *Service) HandleWebhook(ctx context.Context, payload []byte, sig string) error {
	if sig == "" {
		return ErrBadSignature
	}
	event, err := s.gateway.ConstructEvent(payload, sig)
	if err != nil {
		s.log.Warnw("failed to verify webhook signature", "error", err)
		return ErrBadSignature
	}

	switch event.Type {
	case "checkout.session.completed":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return apperr.Validation("data", "failed to parse checkout session")
		}
		return s.completeCheckout(ctx, &sess)

	case "checkout.session.expired":
		var sess stripe.CheckoutSession
		if err := json.Unmarshal(event.Data.Raw, &sess); err != nil {
			return apperr.Validation("data", "failed to parse checkout session")
		}
		if err := s.store.UpdatePaymentStatus(ctx, sess.ID, models.PaymentExpired); err != nil && !errors.Is(err, db.ErrNotFound) {
			return apperr.Internal(err)
		}
		s.log.Infow("checkout session expired", "session_id", sess.ID)

	default:
		s.log.Debugw("ignoring webhook event", "type", event.Type)
	}
	return nil
}

func (s *Service) completeCheckout(ctx context.Context, sess *stripe.CheckoutSession) error {
	userID := sess.ClientReferenceID
	if userID == "" {
		s.log.Errorw("missing client reference ID", "session_id", sess.ID)
		return apperr.Validation("client_reference_id", "missing client reference ID")
	}

	p, err := s.store.GetPaymentBySession(ctx, sess.ID)
	switch {
	case errors.Is(err, db.ErrNotFound):
		p = &models.Payment{UserID: userID, StripeSessionID: sess.ID, Status: models.PaymentCompleted}
		if err := s.store.SavePayment(ctx, p); err != nil && !errors.Is(err, db.ErrDuplicate) {
			return apperr.Internal(err)
		}
	case err != nil:
		return apperr.Internal(err)
	case p.UserID != userID:
		s.log.Errorw("client reference does not match payment", "session_id", sess.ID, "payment_user", p.UserID, "reference", userID)
		return apperr.Validation("client_reference_id", "client reference does not match payment")
	case p.Status != models.PaymentCompleted:
		if err := s.store.UpdatePaymentStatus(ctx, sess.ID, models.PaymentCompleted); err != nil {
			return apperr.Internal(err)
		}
	}

	if _, err := s.profiles.SetTier(ctx, userID, profile.UpgradeRequest{Tier: models.TierPremium}); err != nil {
		return err
	}

	s.log.Infow("premium activated", "user_id", userID, "session_id", sess.ID)
	return nil
}
