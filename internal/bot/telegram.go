// Package bot is a pull-only Telegram front end. Linked chats can read their
// day, meals and reminders, search the catalog and ask the coach. Nothing is
// pushed to a chat unprompted.
package bot

import (
	"context"
	"fmt"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrition-tracker/internal/auth"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/payment"
	"nutrition-tracker/pkg/logger"
)

type LinkStore interface {
	LinkTelegram(ctx context.Context, l *models.TelegramLink) error
	GetTelegramLink(ctx context.Context, telegramID int64) (*models.TelegramLink, error)
}

type TokenVerifier interface {
	Verify(token string) (auth.Identity, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, userID string, day time.Time) (*models.DailySummary, error)
}

type MealLister interface {
	ListDay(ctx context.Context, userID string, day time.Time) ([]models.MealLog, error)
}

type ReminderLister interface {
	List(ctx context.Context, userID string) ([]models.Reminder, error)
}

type FoodSearcher interface {
	Search(ctx context.Context, term, category string) ([]models.Food, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, userID, question string) (*models.Analysis, error)
}

type CheckoutStarter interface {
	Checkout(ctx context.Context, userID string) (*payment.CheckoutSession, error)
}

// Deps are the services the bot reads from. Checkout may be nil.
type Deps struct {
	Links     LinkStore
	Verifier  TokenVerifier
	Summaries Summarizer
	Meals     MealLister
	Reminders ReminderLister
	Foods     FoodSearcher
	Coach     Analyzer
	Checkout  CheckoutStarter
	Now       func() time.Time
}

type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type TelegramBot struct {
	bot    *tgbotapi.BotAPI
	send   sender
	deps   Deps
	logger *logger.Logger

	inflight sync.WaitGroup
}

func NewTelegramBot(token string, deps Deps, logger *logger.Logger) (*TelegramBot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create Telegram bot: %w", err)
	}

	log := logger.Named("telegram")
	log.Infow("Authorized on Telegram", "username", api.Self.UserName)

	b := newBot(api, deps, log)
	b.bot = api
	return b, nil
}

func newBot(s sender, deps Deps, log *logger.Logger) *TelegramBot {
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &TelegramBot{send: s, deps: deps, logger: log}
}

// Start removes any webhook and begins long polling for updates.
func (t *TelegramBot) Start(ctx context.Context) error {
	_, err := t.bot.Request(tgbotapi.DeleteWebhookConfig{DropPendingUpdates: true})
	if err != nil {
		return fmt.Errorf("failed to delete webhook: %w", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := t.bot.GetUpdatesChan(updateConfig)

	t.logger.Info("Started receiving Telegram updates")
	go t.handleUpdates(ctx, updates)
	return nil
}

func (t *TelegramBot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	for update := range updates {
		if update.Message == nil {
			continue
		}

		t.inflight.Add(1)
		go func(msg *tgbotapi.Message) {
			defer t.inflight.Done()
			defer func() {
				if r := recover(); r != nil {
					t.logger.Errorw("Recovered from panic while processing update", "panic", r)
				}
			}()

			reqCtx, cancel := context.WithTimeout(ctx, 90*time.Second)
			defer cancel()
			t.handleMessage(reqCtx, msg)
		}(update.Message)
	}
}

func (t *TelegramBot) handleMessage(ctx context.Context, message *tgbotapi.Message) {
	reply := t.respond(ctx, message)
	if _, err := t.send.Send(reply); err != nil {
		t.logger.Errorw("Failed to send reply", "chat_id", message.Chat.ID, "error", err)
	}
}

// Stop ends polling and waits for in-flight replies or ctx.
func (t *TelegramBot) Stop(ctx context.Context) error {
	t.bot.StopReceivingUpdates()

	done := make(chan struct{})
	go func() {
		t.inflight.Wait()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-done:
		return nil
	}
}
