package coach

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/pkg/logger"
)

type stubStream struct {
	chunks []string
	err    error
	closed bool
}

func (s *stubStream) Recv() (string, error) {
	if len(s.chunks) == 0 {
		if s.err != nil {
			return "", s.err
		}
		return "", io.EOF
	}
	c := s.chunks[0]
	s.chunks = s.chunks[1:]
	return c, nil
}

func (s *stubStream) Close() error {
	s.closed = true
	return nil
}

type stubGenerator struct {
	reply     string
	err       error
	stream    *stubStream
	streamErr error
	prompts   []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

func (g *stubGenerator) GenerateStream(_ context.Context, prompt string) (Stream, error) {
	g.prompts = append(g.prompts, prompt)
	if g.streamErr != nil {
		return nil, g.streamErr
	}
	return g.stream, nil
}

type memStore struct {
	profile *models.Profile
	meals   []models.MealLog
	foods   []models.Food
	convs   map[int64]*models.Conversation
	nextID  int64
	recentN int
}

func newMemStore() *memStore {
	return &memStore{convs: map[int64]*models.Conversation{}}
}

func (s *memStore) GetProfile(context.Context, string) (*models.Profile, error) {
	if s.profile == nil {
		return nil, db.ErrNotFound
	}
	return s.profile, nil
}

func (s *memStore) ListRecentMealLogs(_ context.Context, _ string, limit int) ([]models.MealLog, error) {
	s.recentN = limit
	return s.meals, nil
}

func (s *memStore) SearchFoods(context.Context, models.FoodFilter) ([]models.Food, error) {
	return s.foods, nil
}

func (s *memStore) CreateConversation(_ context.Context, c *models.Conversation) error {
	s.nextID++
	c.ID = s.nextID
	c.CreatedAt = time.Now()
	cp := *c
	s.convs[c.ID] = &cp
	return nil
}

func (s *memStore) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	out := []models.Conversation{}
	for _, c := range s.convs {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (s *memStore) GetConversation(_ context.Context, id int64, userID string) (*models.Conversation, error) {
	c, ok := s.convs[id]
	if !ok || c.UserID != userID {
		return nil, db.ErrNotFound
	}
	cp := *c
	cp.Messages = append([]models.Message{}, c.Messages...)
	return &cp, nil
}

func (s *memStore) DeleteConversation(_ context.Context, id int64, userID string) error {
	c, ok := s.convs[id]
	if !ok || c.UserID != userID {
		return db.ErrNotFound
	}
	delete(s.convs, id)
	return nil
}

func (s *memStore) AddMessage(_ context.Context, m *models.Message) error {
	s.nextID++
	m.ID = s.nextID
	c := s.convs[m.ConversationID]
	c.Messages = append(c.Messages, *m)
	return nil
}

func TestParseAnalysis(t *testing.T) {
	a := ParseAnalysis("Sure!\n```json\n{\"summary\":\"Balanced\",\"recommendations\":[\"Add sukuma\"],\"score\":82}\n```")
	assert.Equal(t, models.Analysis{Summary: "Balanced", Recommendations: []string{"Add sukuma"}, Score: 82}, a)

	a = ParseAnalysis(`{"summary":"Too much","score":140}`)
	assert.Equal(t, 100, a.Score)
	assert.NotNil(t, a.Recommendations)

	a = ParseAnalysis(`{"summary":"Low","recommendations":[],"score":-3}`)
	assert.Equal(t, 0, a.Score)

	raw := "I think you eat well overall."
	assert.Equal(t, models.Analysis{Summary: raw, Recommendations: []string{}, Score: 50}, ParseAnalysis(raw))

	raw = `{"summary": "cut off`
	assert.Equal(t, models.Analysis{Summary: raw, Recommendations: []string{}, Score: 50}, ParseAnalysis(raw))

	raw = `{"recommendations":[1,2]}`
	assert.Equal(t, 50, ParseAnalysis(raw).Score)
	assert.Equal(t, raw, ParseAnalysis(raw).Summary)
}

func TestAnalyze_BuildsPromptFromHistory(t *testing.T) {
	store := newMemStore()
	goal := models.GoalLoseWeight
	store.profile = &models.Profile{UserID: "u1", DietaryGoals: &goal}
	store.meals = []models.MealLog{{
		Date: time.Date(2026, 3, 4, 8, 0, 0, 0, time.UTC), MealType: models.MealBreakfast, TotalCalories: 730,
		FoodItems: []models.FoodEntry{{Name: "Ugali", QuantityG: 200, Macros: models.Macros{Protein: 14}}},
	}}
	store.foods = []models.Food{{Name: "Mandazi", IsKenyaSpecific: true}, {Name: "Pizza"}}
	gen := &stubGenerator{reply: `{"summary":"ok","recommendations":["more greens"],"score":70}`}

	a, err := NewService(gen, store, logger.NewNop()).Analyze(context.Background(), "u1", "Am I eating enough protein?")
	require.NoError(t, err)
	assert.Equal(t, 70, a.Score)
	assert.Equal(t, 10, store.recentN)

	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "lose_weight")
	assert.Contains(t, prompt, "Ugali 200g")
	assert.Contains(t, prompt, "Mandazi")
	assert.NotContains(t, prompt, "Pizza")
	assert.Contains(t, prompt, "Am I eating enough protein?")
}

func TestAnalyze_UpstreamFailureDegrades(t *testing.T) {
	gen := &stubGenerator{err: errors.New("503 from provider")}
	a, err := NewService(gen, newMemStore(), logger.NewNop()).Analyze(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 50, a.Score)
	assert.Empty(t, a.Recommendations)
	assert.NotEmpty(t, a.Summary)

	a, err = NewService(nil, newMemStore(), logger.NewNop()).Analyze(context.Background(), "u1", "")
	require.NoError(t, err)
	assert.Equal(t, 50, a.Score)
}

func TestReply_RelaysAndStoresBothMessages(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	stream := &stubStream{chunks: []string{"Eat ", "more ", "greens."}}
	svc := NewService(&stubGenerator{stream: stream}, store, logger.NewNop())

	conv, err := svc.CreateConversation(ctx, "u1", "  ")
	require.NoError(t, err)
	assert.Equal(t, "New conversation", conv.Title)

	reply, err := svc.Reply(ctx, "u1", conv.ID, "What should I eat?")
	require.NoError(t, err)

	var got []string
	msg, err := reply.Relay(ctx, func(c string) error {
		got = append(got, c)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Eat ", "more ", "greens."}, got)
	assert.Equal(t, "Eat more greens.", msg.Content)
	assert.True(t, stream.closed)

	full, err := svc.GetConversation(ctx, "u1", conv.ID)
	require.NoError(t, err)
	require.Len(t, full.Messages, 2)
	assert.Equal(t, models.RoleUser, full.Messages[0].Role)
	assert.Equal(t, models.RoleAssistant, full.Messages[1].Role)
}

func TestReply_MidStreamFailureKeepsPartial(t *testing.T) {
	ctx := context.Background()
	store := newMemStore()
	stream := &stubStream{chunks: []string{"Start with "}, err: errors.New("connection reset")}
	svc := NewService(&stubGenerator{stream: stream}, store, logger.NewNop())
	conv, err := svc.CreateConversation(ctx, "u1", "Breakfast")
	require.NoError(t, err)

	reply, err := svc.Reply(ctx, "u1", conv.ID, "Ideas?")
	require.NoError(t, err)
	msg, err := reply.Relay(ctx, func(string) error { return nil })
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
	require.NotNil(t, msg)
	assert.Equal(t, "Start with ", msg.Content)
}

func TestReply_OpenFailureSurfacesFromRelay(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&stubGenerator{streamErr: errors.New("quota")}, newMemStore(), logger.NewNop())
	conv, err := svc.CreateConversation(ctx, "u1", "x")
	require.NoError(t, err)

	reply, err := svc.Reply(ctx, "u1", conv.ID, "hi")
	require.NoError(t, err)
	msg, err := reply.Relay(ctx, func(string) error {
		t.Fatal("nothing should be relayed")
		return nil
	})
	assert.Nil(t, msg)
	assert.Equal(t, apperr.KindUpstream, apperr.KindOf(err))
}

func TestReply_RejectsBeforeStreaming(t *testing.T) {
	ctx := context.Background()
	gen := &stubGenerator{stream: &stubStream{}}
	svc := NewService(gen, newMemStore(), logger.NewNop())
	conv, err := svc.CreateConversation(ctx, "owner", "x")
	require.NoError(t, err)

	_, err = svc.Reply(ctx, "owner", conv.ID, "   ")
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))

	_, err = svc.Reply(ctx, "intruder", conv.ID, "hi")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	_, err = svc.Reply(ctx, "owner", conv.ID, strings.Repeat("a", 4001))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Empty(t, gen.prompts)
}

func TestConversationPrompt(t *testing.T) {
	p := ConversationPrompt(nil, []models.Message{
		{Role: models.RoleUser, Content: "Hi"},
		{Role: models.RoleAssistant, Content: "Hello"},
		{Role: models.RoleUser, Content: "Is chai healthy?"},
	})
	assert.True(t, strings.HasSuffix(p, "User: Is chai healthy?\nAssistant:"))
	assert.Contains(t, p, "Assistant: Hello\n")
}
