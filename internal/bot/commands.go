package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
)

const (
	maxFoodResults = 10

	helpText = "I can show what you have logged in the nutrition tracker.\n\n" +
		"/link <token> - connect this chat to your account\n" +
		"/today - today's calories and macros\n" +
		"/meals - meals logged today\n" +
		"/reminders - your reminders\n" +
		"/food <name> - search the food catalog\n" +
		"/coach <question> - ask the nutrition coach\n" +
		"/premium - upgrade to premium"

	notLinkedText = "This chat is not linked yet. Send /link <token> with the token from the app."
	failureText   = "Something went wrong. Please try again later."
)

// respond builds the reply to one incoming message.
func (t *TelegramBot) respond(ctx context.Context, message *tgbotapi.Message) tgbotapi.MessageConfig {
	chatID := message.Chat.ID
	if !message.IsCommand() || message.From == nil {
		return tgbotapi.NewMessage(chatID, helpText)
	}

	command := message.Command()
	args := strings.TrimSpace(message.CommandArguments())
	t.logger.Debugw("Handling command", "command", command, "telegram_id", message.From.ID)

	switch command {
	case "start", "help":
		return tgbotapi.NewMessage(chatID, helpText)
	case "link":
		return tgbotapi.NewMessage(chatID, t.link(ctx, message.From.ID, chatID, args))
	}

	link, err := t.deps.Links.GetTelegramLink(ctx, message.From.ID)
	if errors.Is(err, db.ErrNotFound) {
		return tgbotapi.NewMessage(chatID, notLinkedText)
	}
	if err != nil {
		return tgbotapi.NewMessage(chatID, t.failure(command, err))
	}
	userID := link.UserID

	var text string
	switch command {
	case "today":
		text, err = t.today(ctx, userID)
	case "meals":
		text, err = t.meals(ctx, userID)
	case "reminders":
		text, err = t.reminders(ctx, userID)
	case "food":
		text, err = t.food(ctx, args)
	case "coach":
		text, err = t.coach(ctx, userID, args)
	case "premium":
		return t.premium(ctx, chatID, userID)
	default:
		text = "Unknown command.\n\n" + helpText
	}
	if err != nil {
		text = t.failure(command, err)
	}
	return tgbotapi.NewMessage(chatID, text)
}

// failure turns err into text safe to show in a chat.
func (t *TelegramBot) failure(command string, err error) string {
	switch apperr.KindOf(err) {
	case apperr.KindInternal, apperr.KindUpstream:
		t.logger.Errorw("Command failed", "command", command, "error", err)
		return failureText
	}
	return apperr.PublicMessage(err)
}

func (t *TelegramBot) link(ctx context.Context, telegramID, chatID int64, token string) string {
	if token == "" {
		return "Usage: /link <token>"
	}

	id, err := t.deps.Verifier.Verify(token)
	if err != nil {
		return "That token is not valid. Copy a fresh one from the app."
	}

	l := &models.TelegramLink{TelegramID: telegramID, ChatID: chatID, UserID: id.UserID}
	if err := t.deps.Links.LinkTelegram(ctx, l); err != nil {
		return t.failure("link", err)
	}

	t.logger.Infow("Telegram chat linked", "telegram_id", telegramID, "user_id", id.UserID)
	return "Linked. Try /today."
}

func (t *TelegramBot) today(ctx context.Context, userID string) (string, error) {
	s, err := t.deps.Summaries.Summarize(ctx, userID, t.deps.Now().UTC())
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Today (%s)\n", s.Date)
	fmt.Fprintf(&b, "Calories: %d / %d (%d left)\n", s.TotalCalories, s.TargetCalories, s.RemainingCalories)
	fmt.Fprintf(&b, "Protein %s g, carbs %s g, fat %s g\n", grams(s.Protein), grams(s.Carbs), grams(s.Fat))
	fmt.Fprintf(&b, "Meals logged: %d", len(s.Entries))
	return b.String(), nil
}

func (t *TelegramBot) meals(ctx context.Context, userID string) (string, error) {
	logs, err := t.deps.Meals.ListDay(ctx, userID, t.deps.Now().UTC())
	if err != nil {
		return "", err
	}
	if len(logs) == 0 {
		return "Nothing logged today.", nil
	}

	var b strings.Builder
	for i, m := range logs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "%s %s, %d kcal\n", m.Date.UTC().Format("15:04"), m.MealType, m.TotalCalories)
		for _, e := range m.FoodItems {
			fmt.Fprintf(&b, "  %s %s g\n", e.Name, grams(e.QuantityG))
		}
	}
	return strings.TrimRight(b.String(), "\n"), nil
}

func (t *TelegramBot) reminders(ctx context.Context, userID string) (string, error) {
	reminders, err := t.deps.Reminders.List(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(reminders) == 0 {
		return "You have no reminders.", nil
	}

	lines := make([]string, 0, len(reminders))
	for _, r := range reminders {
		line := fmt.Sprintf("%s %s: %s", r.Time, r.Type, r.Message)
		if !r.IsActive {
			line += " (off)"
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n"), nil
}

func (t *TelegramBot) food(ctx context.Context, term string) (string, error) {
	if term == "" {
		return "Usage: /food <name>", nil
	}

	foods, err := t.deps.Foods.Search(ctx, term, "")
	if err != nil {
		return "", err
	}
	if len(foods) == 0 {
		return fmt.Sprintf("No foods match %q.", term), nil
	}

	lines := make([]string, 0, maxFoodResults+1)
	for i, f := range foods {
		if i == maxFoodResults {
			lines = append(lines, fmt.Sprintf("...and %d more", len(foods)-maxFoodResults))
			break
		}
		lines = append(lines, fmt.Sprintf("%s: %d kcal per 100 g (P %s, C %s, F %s)",
			f.Name, f.Calories, grams(f.Protein), grams(f.Carbs), grams(f.Fat)))
	}
	return strings.Join(lines, "\n"), nil
}

func (t *TelegramBot) coach(ctx context.Context, userID, question string) (string, error) {
	a, err := t.deps.Coach.Analyze(ctx, userID, question)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	b.WriteString(a.Summary)
	if len(a.Recommendations) > 0 {
		b.WriteString("\n")
		for _, r := range a.Recommendations {
			fmt.Fprintf(&b, "\n- %s", r)
		}
	}
	fmt.Fprintf(&b, "\n\nScore: %d/100", a.Score)
	return b.String(), nil
}

func (t *TelegramBot) premium(ctx context.Context, chatID int64, userID string) tgbotapi.MessageConfig {
	if t.deps.Checkout == nil {
		return tgbotapi.NewMessage(chatID, "Payments are not available right now.")
	}

	sess, err := t.deps.Checkout.Checkout(ctx, userID)
	if err != nil {
		return tgbotapi.NewMessage(chatID, t.failure("premium", err))
	}

	msg := tgbotapi.NewMessage(chatID, "Tap the button below to upgrade to premium:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("Upgrade", sess.URL),
		),
	)
	return msg
}

// grams formats a quantity with at most one decimal.
func grams(v float64) string {
	s := fmt.Sprintf("%.1f", v)
	return strings.TrimSuffix(s, ".0")
}
