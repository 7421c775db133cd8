package server

import (
	"context"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"nutrition-tracker/internal/coach"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
)

// memStore stands in for Postgres behind every service the router uses.
type memStore struct {
	mu        sync.Mutex
	nextID    int64
	foods     []models.Food
	meals     []models.MealLog
	profiles  map[string]models.Profile
	reminders []models.Reminder
	convs     []models.Conversation
}

func newMemStore() *memStore {
	return &memStore{profiles: map[string]models.Profile{}}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) SearchFoods(_ context.Context, f models.FoodFilter) ([]models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Food{}
	for _, food := range s.foods {
		if f.Search != "" && !strings.Contains(strings.ToLower(food.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Category != "" && (food.Category == nil || *food.Category != f.Category) {
			continue
		}
		out = append(out, food)
	}
	return out, nil
}

func (s *memStore) GetFood(_ context.Context, id int64) (*models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.foods {
		if f.ID == id {
			f := f
			return &f, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *memStore) GetFoodsByIDs(_ context.Context, ids []int64) (map[int64]models.Food, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := map[int64]models.Food{}
	for _, id := range ids {
		for _, f := range s.foods {
			if f.ID == id {
				out[id] = f
			}
		}
	}
	return out, nil
}

func (s *memStore) CreateFood(_ context.Context, f *models.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.ID = s.id()
	s.foods = append(s.foods, *f)
	return nil
}

func (s *memStore) UpdateFood(_ context.Context, f *models.Food) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.foods {
		if s.foods[i].ID == f.ID {
			s.foods[i] = *f
			return nil
		}
	}
	return db.ErrNotFound
}

func (s *memStore) CreateMealLog(_ context.Context, m *models.MealLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	m.ID = s.id()
	s.meals = append(s.meals, *m)
	return nil
}

func (s *memStore) ListMealLogs(_ context.Context, userID string, from, to time.Time) ([]models.MealLog, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.MealLog{}
	for _, m := range s.meals {
		if m.UserID == userID && !m.Date.Before(from) && m.Date.Before(to) {
			out = append(out, m)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func (s *memStore) ListRecentMealLogs(ctx context.Context, userID string, limit int) ([]models.MealLog, error) {
	all, _ := s.ListMealLogs(ctx, userID, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (s *memStore) DeleteMealLog(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, m := range s.meals {
		if m.ID == id && m.UserID == userID {
			s.meals = append(s.meals[:i], s.meals[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (s *memStore) GetProfile(_ context.Context, userID string) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		return nil, db.ErrNotFound
	}
	return &p, nil
}

func (s *memStore) UpsertProfile(_ context.Context, userID string, u models.ProfileUpdate) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.profiles[userID]
	if !ok {
		p = models.Profile{ID: s.id(), UserID: userID, SubscriptionTier: models.TierFree}
	}
	if u.Height != nil {
		p.Height = u.Height
	}
	if u.Weight != nil {
		p.Weight = u.Weight
	}
	if u.Age != nil {
		p.Age = u.Age
	}
	if u.Gender != nil {
		p.Gender = u.Gender
	}
	if u.ActivityLevel != nil {
		p.ActivityLevel = u.ActivityLevel
	}
	if u.DietaryGoals != nil {
		p.DietaryGoals = u.DietaryGoals
	}
	if u.DietaryRestrictions != nil {
		p.DietaryRestrictions = u.DietaryRestrictions
	}
	if u.SubscriptionTier != nil {
		p.SubscriptionTier = *u.SubscriptionTier
	}
	p.UpdatedAt = time.Now().UTC()
	s.profiles[userID] = p
	return &p, nil
}

func (s *memStore) ListReminders(_ context.Context, userID string) ([]models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Reminder{}
	for _, r := range s.reminders {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Time < out[j].Time })
	return out, nil
}

func (s *memStore) CreateReminder(_ context.Context, r *models.Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r.ID = s.id()
	s.reminders = append(s.reminders, *r)
	return nil
}

func (s *memStore) UpdateReminder(_ context.Context, id int64, userID string, u models.ReminderUpdate) (*models.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.reminders {
		r := &s.reminders[i]
		if r.ID != id || r.UserID != userID {
			continue
		}
		if u.Time != nil {
			r.Time = *u.Time
		}
		if u.Type != nil {
			r.Type = *u.Type
		}
		if u.Message != nil {
			r.Message = *u.Message
		}
		if u.IsActive != nil {
			r.IsActive = *u.IsActive
		}
		out := *r
		return &out, nil
	}
	return nil, db.ErrNotFound
}

func (s *memStore) DeleteReminder(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.reminders {
		if r.ID == id && r.UserID == userID {
			s.reminders = append(s.reminders[:i], s.reminders[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (s *memStore) CreateConversation(_ context.Context, c *models.Conversation) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c.ID = s.id()
	c.CreatedAt = time.Now().UTC()
	s.convs = append(s.convs, *c)
	return nil
}

func (s *memStore) ListConversations(_ context.Context, userID string) ([]models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range s.convs {
		if c.UserID == userID {
			c.Messages = nil
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *memStore) GetConversation(_ context.Context, id int64, userID string) (*models.Conversation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if c.ID == id && c.UserID == userID {
			c.Messages = append([]models.Message(nil), c.Messages...)
			return &c, nil
		}
	}
	return nil, db.ErrNotFound
}

func (s *memStore) DeleteConversation(_ context.Context, id int64, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, c := range s.convs {
		if c.ID == id && c.UserID == userID {
			s.convs = append(s.convs[:i], s.convs[i+1:]...)
			return nil
		}
	}
	return db.ErrNotFound
}

func (s *memStore) AddMessage(_ context.Context, m *models.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.convs {
		if s.convs[i].ID == m.ConversationID {
			m.ID = s.id()
			m.CreatedAt = time.Now().UTC()
			s.convs[i].Messages = append(s.convs[i].Messages, *m)
			return nil
		}
	}
	return db.ErrNotFound
}

// scriptedGen replays chunks and then ends with err (io.EOF when nil).
type scriptedGen struct {
	chunks []string
	err    error
}

func (g *scriptedGen) Generate(context.Context, string) (string, error) {
	return `{"summary":"Balanced day","recommendations":["Add beans"],"score":81}`, nil
}

func (g *scriptedGen) GenerateStream(context.Context, string) (coach.Stream, error) {
	return &scriptedStream{chunks: append([]string(nil), g.chunks...), err: g.err}, nil
}

type scriptedStream struct {
	chunks []string
	err    error
}

func (s *scriptedStream) Recv() (string, error) {
	if len(s.chunks) > 0 {
		c := s.chunks[0]
		s.chunks = s.chunks[1:]
		return c, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

func (s *scriptedStream) Close() error { return nil }
