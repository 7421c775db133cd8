package nutrition

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
)

// memStore mimics the Postgres store closely enough for service tests:
// rows are copied on the way in and out, ids are sequential.
type memStore struct {
	mu       sync.Mutex
	foods    []models.Food
	meals    []models.MealLog
	profiles map[string]models.Profile
	nextID   int64

	// afterSearch runs once after the next SearchFoods has read its rows.
	afterSearch func()
}

func newMemStore(foods ...models.Food) *memStore {
	s := &memStore{profiles: map[string]models.Profile{}}
	for _, f := range foods {
		_ = s.CreateFood(context.Background(), &f)
	}
	return s
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *memStore) SearchFoods(_ context.Context, f models.FoodFilter) ([]models.Food, error) {
	s.mu.Lock()
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
	hook := s.afterSearch
	s.afterSearch = nil
	s.mu.Unlock()

	if hook != nil {
		hook()
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
	stored := *m
	stored.FoodItems = append([]models.FoodEntry(nil), m.FoodItems...)
	s.meals = append(s.meals, stored)
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

func (s *memStore) ListRecentMealLogs(_ context.Context, userID string, limit int) ([]models.MealLog, error) {
	all, _ := s.ListMealLogs(context.Background(), userID, time.Time{}, time.Date(9999, 1, 1, 0, 0, 0, 0, time.UTC))
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

// countingCache mirrors FoodCache: keys carry a version that Invalidate bumps.
type countingCache struct {
	entries       map[string][]models.Food
	version       int
	invalidations int
	hits          int
}

func (c *countingCache) Search(_ context.Context, f models.FoodFilter) ([]models.Food, string, bool, error) {
	key := fmt.Sprintf("%d:%q|%q", c.version, strings.ToLower(f.Search), f.Category)
	if foods, ok := c.entries[key]; ok {
		c.hits++
		return foods, key, true, nil
	}
	return nil, key, false, nil
}

func (c *countingCache) StoreSearch(_ context.Context, key string, foods []models.Food) error {
	if c.entries == nil {
		c.entries = map[string][]models.Food{}
	}
	c.entries[key] = foods
	return nil
}

func (c *countingCache) Invalidate(context.Context) error {
	c.version++
	c.invalidations++
	return nil
}
