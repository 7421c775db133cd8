package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stripe/stripe-go/v72"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-tracker/config"
	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/profile"
	"nutrition-tracker/pkg/logger"
)

type fakeGateway struct {
	enabled bool
	id, url string
	err     error
}

func (g *fakeGateway) Enabled() bool { return g.enabled }

func (g *fakeGateway) CreateCheckoutSession(string) (string, string, error) {
	return g.id, g.url, g.err
}

// ConstructEvent accepts any payload signed "ok".
func (g *fakeGateway) ConstructEvent(payload []byte, sig string) (stripe.Event, error) {
	if sig != "ok" {
		return stripe.Event{}, errors.New("bad signature")
	}
	var e stripe.Event
	err := json.Unmarshal(payload, &e)
	return e, err
}

type memPayments struct {
	rows map[string]*models.Payment
}

func (m *memPayments) SavePayment(_ context.Context, p *models.Payment) error {
	if _, ok := m.rows[p.StripeSessionID]; ok {
		return db.ErrDuplicate
	}
	cp := *p
	m.rows[p.StripeSessionID] = &cp
	return nil
}

func (m *memPayments) GetPaymentBySession(_ context.Context, id string) (*models.Payment, error) {
	p, ok := m.rows[id]
	if !ok {
		return nil, db.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (m *memPayments) UpdatePaymentStatus(_ context.Context, id, status string) error {
	p, ok := m.rows[id]
	if !ok {
		return db.ErrNotFound
	}
	p.Status = status
	return nil
}

type tierRecorder struct {
	calls []string
}

func (t *tierRecorder) SetTier(_ context.Context, userID string, req profile.UpgradeRequest) (*models.Profile, error) {
	t.calls = append(t.calls, userID+":"+string(req.Tier))
	return &models.Profile{UserID: userID, SubscriptionTier: req.Tier}, nil
}

func checkoutEvent(sessionID, userID string) []byte {
	return []byte(fmt.Sprintf(`{"id":"evt_1","object":"event","api_version":%q,"type":"checkout.session.completed",
		"data":{"object":{"id":%q,"object":"checkout.session","client_reference_id":%q}}}`,
		stripe.APIVersion, sessionID, userID))
}

func newService(g *fakeGateway) (*Service, *memPayments, *tierRecorder) {
	store := &memPayments{rows: map[string]*models.Payment{}}
	tiers := &tierRecorder{}
	return NewService(g, store, tiers, logger.NewNop()), store, tiers
}

func TestCheckout_RecordsPendingPayment(t *testing.T) {
	svc, store, _ := newService(&fakeGateway{enabled: true, id: "cs_123", url: "https://checkout.stripe.com/c/cs_123"})

	sess, err := svc.Checkout(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, "cs_123", sess.SessionID)
	assert.Equal(t, models.PaymentPending, store.rows["cs_123"].Status)
	assert.Equal(t, "u1", store.rows["cs_123"].UserID)
}

func TestCheckout_DisabledOrFailing(t *testing.T) {
	svc, _, _ := newService(&fakeGateway{})
	_, err := svc.Checkout(context.Background(), "u1")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))

	svc, store, _ := newService(&fakeGateway{enabled: true, err: errors.New("stripe down")})
	_, err = svc.Checkout(context.Background(), "u1")
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	assert.Empty(t, store.rows)
}

func TestHandleWebhook_CompletesAndUpgrades(t *testing.T) {
	ctx := context.Background()
	svc, store, tiers := newService(&fakeGateway{enabled: true, id: "cs_1"})
	_, err := svc.Checkout(ctx, "u1")
	require.NoError(t, err)

	require.NoError(t, svc.HandleWebhook(ctx, checkoutEvent("cs_1", "u1"), "ok"))
	assert.Equal(t, models.PaymentCompleted, store.rows["cs_1"].Status)
	assert.Equal(t, []string{"u1:premium"}, tiers.calls)

	// Stripe redelivers events.
	require.NoError(t, svc.HandleWebhook(ctx, checkoutEvent("cs_1", "u1"), "ok"))
	assert.Len(t, store.rows, 1)
}

func TestHandleWebhook_Rejections(t *testing.T) {
	ctx := context.Background()
	svc, _, tiers := newService(&fakeGateway{enabled: true, id: "cs_1"})
	_, err := svc.Checkout(ctx, "u1")
	require.NoError(t, err)

	assert.ErrorIs(t, svc.HandleWebhook(ctx, checkoutEvent("cs_1", "u1"), ""), ErrBadSignature)
	assert.ErrorIs(t, svc.HandleWebhook(ctx, checkoutEvent("cs_1", "u1"), "forged"), ErrBadSignature)

	err = svc.HandleWebhook(ctx, checkoutEvent("cs_1", "someone-else"), "ok")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	err = svc.HandleWebhook(ctx, checkoutEvent("cs_2", ""), "ok")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, tiers.calls)
}

func sign(payload []byte, secret string, ts time.Time) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts.Unix(), payload)
	return fmt.Sprintf("t=%d,v1=%s", ts.Unix(), hex.EncodeToString(mac.Sum(nil)))
}

func TestStripeClient_ConstructEventVerifiesSignature(t *testing.T) {
	c := NewStripeClient(config.StripeConfig{WebhookKey: "whsec_test"})
	payload := checkoutEvent("cs_9", "u9")

	event, err := c.ConstructEvent(payload, sign(payload, "whsec_test", time.Now()))
	require.NoError(t, err)
	assert.Equal(t, "checkout.session.completed", string(event.Type))

	_, err = c.ConstructEvent(payload, sign(payload, "whsec_other", time.Now()))
	assert.Error(t, err)

	_, err = NewStripeClient(config.StripeConfig{}).ConstructEvent(payload, "t=1,v1=00")
	assert.Error(t, err)
}
