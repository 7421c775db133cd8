// Package server exposes the tracker over HTTP.
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"nutrition-tracker/internal/auth"
	"nutrition-tracker/internal/coach"
	"nutrition-tracker/internal/nutrition"
	"nutrition-tracker/internal/payment"
	"nutrition-tracker/internal/profile"
	"nutrition-tracker/internal/reminder"
	"nutrition-tracker/pkg/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services the API serves. Payments may be nil.
type Deps struct {
	Verifier  *auth.Verifier
	Profiles  *profile.Service
	Catalog   *nutrition.Catalog
	Meals     *nutrition.Meals
	Summaries *nutrition.Summaries
	Reminders *reminder.Registry
	Coach     *coach.Service
	Payments  *payment.Service
	DB        Pinger
	Log       *logger.Logger

	// Now is the clock used for "today"; defaults to time.Now.
	Now func() time.Time
}

type handler struct {
	Deps
	log *logger.Logger
}

func NewRouter(d Deps) *gin.Engine {
	if d.Now == nil {
		d.Now = time.Now
	}
	h := &handler{Deps: d, log: d.Log.Named("api")}

	r := gin.New()
	r.Use(requestID(), accessLog(h.log), recovery(h.log))

	r.GET("/health", h.health)
	r.POST("/webhook/stripe", h.stripeWebhook)

	api := r.Group("/api", authRequired(d.Verifier))
	{
		api.GET("/profile", h.getProfile)
		api.POST("/profile", h.upsertProfile)
		api.POST("/profile/upgrade", h.upgradeProfile)

		api.GET("/foods", h.searchFoods)
		api.POST("/foods", adminOnly(), h.createFood)
		api.PUT("/foods/:id", adminOnly(), h.updateFood)

		api.GET("/meals", h.listMeals)
		api.POST("/meals", h.createMeal)
		api.DELETE("/meals/:id", h.deleteMeal)

		api.GET("/summary", h.summary)

		api.GET("/reminders", h.listReminders)
		api.POST("/reminders", h.createReminder)
		api.PUT("/reminders/:id", h.updateReminder)
		api.DELETE("/reminders/:id", h.deleteReminder)

		api.POST("/analysis", h.analysis)
		api.GET("/conversations", h.listConversations)
		api.POST("/conversations", h.createConversation)
		api.GET("/conversations/:id", h.getConversation)
		api.DELETE("/conversations/:id", h.deleteConversation)
		api.POST("/conversations/:id/messages", h.postMessage)

		api.POST("/billing/checkout", h.checkout)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"message": "Not Found"})
	})
	return r
}

func (h *handler) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if h.DB != nil {
		if err := h.DB.Ping(ctx); err != nil {
			h.log.Errorw("health check failed", "error", err)
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
