package coach

import (
	"context"
	"errors"
	"io"
	"strings"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/pkg/logger"
)

const (
	recentMeals      = 10
	maxMessageLength = 4000
	maxTitleLength   = 200

	unavailableSummary = "The nutrition coach is unavailable right now. Please try again later."
)

type Store interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListRecentMealLogs(ctx context.Context, userID string, limit int) ([]models.MealLog, error)
	SearchFoods(ctx context.Context, filter models.FoodFilter) ([]models.Food, error)

	CreateConversation(ctx context.Context, c *models.Conversation) error
	ListConversations(ctx context.Context, userID string) ([]models.Conversation, error)
	GetConversation(ctx context.Context, id int64, userID string) (*models.Conversation, error)
	DeleteConversation(ctx context.Context, id int64, userID string) error
	AddMessage(ctx context.Context, m *models.Message) error
}

type Service struct {
	gen   Generator
	store Store
	log   *logger.Logger
}

// NewService returns a coach. gen may be nil when no text service is
// configured; analyses then degrade and streamed replies end with an error.
func NewService(gen Generator, store Store, log *logger.Logger) *Service {
	return &Service{gen: gen, store: store, log: log.Named("coach")}
}

func (s *Service) profile(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.store.GetProfile(ctx, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, nil
	}
	return p, err
}

// Analyze asks for a single JSON analysis. Failures of the text service never
// fail the call; they produce the fallback analysis.
func (s *Service) Analyze(ctx context.Context, userID, question string) (*models.Analysis, error) {
	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	meals, err := s.store.ListRecentMealLogs(ctx, userID, recentMeals)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	foods, err := s.store.SearchFoods(ctx, models.FoodFilter{})
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if s.gen == nil {
		return &models.Analysis{Summary: unavailableSummary, Recommendations: []string{}, Score: fallbackScore}, nil
	}

	raw, err := s.gen.Generate(ctx, AnalysisPrompt(p, meals, foods, question))
	if err != nil {
		s.log.Warnw("analysis generation failed", "user_id", userID, "error", err)
		return &models.Analysis{Summary: unavailableSummary, Recommendations: []string{}, Score: fallbackScore}, nil
	}

	a := ParseAnalysis(raw)
	return &a, nil
}

func (s *Service) CreateConversation(ctx context.Context, userID, title string) (*models.Conversation, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "New conversation"
	}
	if len(title) > maxTitleLength {
		return nil, apperr.Validation("title", "title must be at most 200 characters")
	}

	c := &models.Conversation{UserID: userID, Title: title}
	if err := s.store.CreateConversation(ctx, c); err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *Service) ListConversations(ctx context.Context, userID string) ([]models.Conversation, error) {
	convs, err := s.store.ListConversations(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return convs, nil
}

func (s *Service) GetConversation(ctx context.Context, userID string, id int64) (*models.Conversation, error) {
	c, err := s.store.GetConversation(ctx, id, userID)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("conversation not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return c, nil
}

func (s *Service) DeleteConversation(ctx context.Context, userID string, id int64) error {
	err := s.store.DeleteConversation(ctx, id, userID)
	if errors.Is(err, db.ErrNotFound) {
		return apperr.NotFound("conversation not found")
	}
	if err != nil {
		return apperr.Internal(err)
	}
	return nil
}

// ValidateMessage checks a user message before any reply is started.
func ValidateMessage(content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return apperr.Validation("content", "content must not be empty")
	}
	if len(content) > maxMessageLength {
		return apperr.Validation("content", "content must be at most 4000 characters")
	}
	return nil
}

// Reply is one assistant turn in a conversation.
type Reply struct {
	svc    *Service
	convID int64
	userID string
	stream Stream
	err    error
}

// Reply stores the user's message and opens the assistant's stream. Errors
// returned here happen before anything is relayed. A failure to open the
// stream is reported by Relay instead.
func (s *Service) Reply(ctx context.Context, userID string, convID int64, content string) (*Reply, error) {
	if err := ValidateMessage(content); err != nil {
		return nil, err
	}

	conv, err := s.GetConversation(ctx, userID, convID)
	if err != nil {
		return nil, err
	}

	msg := models.Message{ConversationID: conv.ID, Role: models.RoleUser, Content: strings.TrimSpace(content)}
	if err := s.store.AddMessage(ctx, &msg); err != nil {
		return nil, apperr.Internal(err)
	}

	p, err := s.profile(ctx, userID)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	r := &Reply{svc: s, convID: conv.ID, userID: userID}
	if s.gen == nil {
		r.err = apperr.Upstream("coach is not configured", nil)
		return r, nil
	}

	history := append(conv.Messages, msg)
	r.stream, err = s.gen.GenerateStream(ctx, ConversationPrompt(p, history))
	if err != nil {
		r.err = apperr.Upstream("coach is unavailable", err)
	}
	return r, nil
}

// Relay passes every chunk to emit as it arrives, then stores the assistant
// message with whatever was relayed. It returns an Upstream error when the
// stream broke, or emit's error when the caller went away.
func (r *Reply) Relay(ctx context.Context, emit func(chunk string) error) (*models.Message, error) {
	var (
		b       strings.Builder
		stopErr = r.err
	)

	if r.stream != nil {
		defer r.stream.Close()
		for stopErr == nil {
			chunk, err := r.stream.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				stopErr = apperr.Upstream("coach stream failed", err)
				break
			}
			if chunk == "" {
				continue
			}
			b.WriteString(chunk)
			if err := emit(chunk); err != nil {
				stopErr = err
			}
		}
	}

	var saved *models.Message
	if b.Len() > 0 {
		msg := &models.Message{ConversationID: r.convID, Role: models.RoleAssistant, Content: b.String()}
		// The request context may already be cancelled; the partial reply is still kept.
		if err := r.svc.store.AddMessage(context.WithoutCancel(ctx), msg); err != nil {
			r.svc.log.Errorw("failed to save assistant message", "conversation_id", r.convID, "error", err)
		} else {
			saved = msg
		}
	}

	if stopErr != nil {
		r.svc.log.Warnw("reply ended early", "user_id", r.userID, "conversation_id", r.convID, "relayed", b.Len(), "error", stopErr)
	}
	return saved, stopErr
}
