package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"nutrition-tracker/config"
	"nutrition-tracker/internal/auth"
	"nutrition-tracker/internal/bot"
	"nutrition-tracker/internal/cache"
	"nutrition-tracker/internal/coach"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/gpt"
	"nutrition-tracker/internal/nutrition"
	"nutrition-tracker/internal/payment"
	"nutrition-tracker/internal/profile"
	"nutrition-tracker/internal/reminder"
	"nutrition-tracker/internal/server"
	"nutrition-tracker/pkg/logger"
)

func main() {
	l := logger.New()
	defer l.Sync()
	l.Info("Starting nutrition tracker...")

	cfg, err := config.Load()
	if err != nil {
		l.Fatalw("Failed to load config", "error", err)
	}
	if err := cfg.Validate(); err != nil {
		l.Fatalw("Invalid configuration", "error", err)
	}

	ctx := context.Background()

	// Database, with retry while Postgres comes up
	var database *db.PostgresDB
	maxRetries := 5
	for i := 0; i < maxRetries; i++ {
		database, err = db.NewPostgresDB(ctx, cfg.DB)
		if err == nil {
			break
		}
		l.Warnw("Failed to connect to database, retrying...", "attempt", i+1, "error", err)
		time.Sleep(time.Duration(i+1) * time.Second)
	}
	if database == nil {
		l.Fatalw("Failed to connect to database after multiple attempts", "error", err)
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		l.Fatalw("Failed to apply schema", "error", err)
	}
	if cfg.Catalog.Seed {
		n, err := database.SeedFoods(ctx, db.KenyanFoods)
		if err != nil {
			l.Fatalw("Failed to seed food catalog", "error", err)
		}
		if n > 0 {
			l.Infow("Seeded food catalog", "foods", n)
		}
	}

	foodCache, err := cache.NewFoodCache(ctx, cfg.Redis)
	if err != nil {
		l.Warnw("Redis unavailable, catalog cache disabled", "error", err)
		foodCache = &cache.FoodCache{}
	}
	defer foodCache.Close()

	var generator coach.Generator
	if cfg.GPT.APIKey != "" {
		generator = gpt.NewClient(cfg.GPT)
	} else {
		l.Warn("GPT API key is not configured, coaching will use fallback replies")
	}

	profiles := profile.NewService(database, l)
	catalog := nutrition.NewCatalog(database, foodCache, l)
	meals := nutrition.NewMeals(database, database, l)
	summaries := nutrition.NewSummaries(database, database)
	reminders := reminder.NewRegistry(database, l)
	coachService := coach.NewService(generator, database, l)
	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)

	var payments *payment.Service
	if stripeClient := payment.NewStripeClient(cfg.Stripe); stripeClient.Enabled() {
		payments = payment.NewService(stripeClient, database, profiles, l)
	} else {
		l.Warn("Stripe is not configured, premium checkout disabled")
	}

	gin.SetMode(gin.ReleaseMode)
	router := server.NewRouter(server.Deps{
		Verifier:  verifier,
		Profiles:  profiles,
		Catalog:   catalog,
		Meals:     meals,
		Summaries: summaries,
		Reminders: reminders,
		Coach:     coachService,
		Payments:  payments,
		DB:        database,
		Log:       l,
	})

	httpServer := server.NewServer(*cfg, router, l)
	go func() {
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			l.Fatalw("Failed to start HTTP server", "error", err)
		}
	}()

	// Telegram is optional
	botCtx, stopBot := context.WithCancel(ctx)
	defer stopBot()

	var telegramBot *bot.TelegramBot
	if cfg.Telegram.Token != "" {
		deps := bot.Deps{
			Links:     database,
			Verifier:  verifier,
			Summaries: summaries,
			Meals:     meals,
			Reminders: reminders,
			Foods:     catalog,
			Coach:     coachService,
		}
		if payments != nil {
			deps.Checkout = payments
		}

		telegramBot, err = bot.NewTelegramBot(cfg.Telegram.Token, deps, l)
		if err != nil {
			l.Errorw("Failed to create Telegram bot", "error", err)
		} else if err := telegramBot.Start(botCtx); err != nil {
			l.Errorw("Failed to start Telegram bot", "error", err)
			telegramBot = nil
		}
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	l.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Stop(shutdownCtx); err != nil {
		l.Errorw("Error during HTTP server shutdown", "error", err)
	}

	if telegramBot != nil {
		if err := telegramBot.Stop(shutdownCtx); err != nil {
			l.Errorw("Error during bot shutdown", "error", err)
		}
	}
	stopBot()

	l.Info("Stopped")
}
