package server

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"nutrition-tracker/internal/payment"
)

const maxWebhookBody = 64 << 10

func (h *handler) checkout(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "payments are not configured"})
		return
	}

	sess, err := h.Payments.Checkout(c.Request.Context(), userID(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (h *handler) stripeWebhook(c *gin.Context) {
	if h.Payments == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"message": "payments are not configured"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxWebhookBody)
	payload, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.log.Warnw("failed to read webhook body", "error", err)
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"message": "request body too large"})
		return
	}

	err = h.Payments.HandleWebhook(c.Request.Context(), payload, c.GetHeader("Stripe-Signature"))
	if errors.Is(err, payment.ErrBadSignature) {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid signature"})
		return
	}
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
