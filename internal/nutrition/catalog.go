// Package nutrition holds the food catalog queries, the meal log aggregator
// and the daily summary engine.
package nutrition

import (
	"context"
	"errors"
	"strings"

	"nutrition-tracker/internal/apperr"
	"nutrition-tracker/internal/db"
	"nutrition-tracker/internal/models"
	"nutrition-tracker/internal/validation"
	"nutrition-tracker/pkg/logger"
)

type FoodStore interface {
	SearchFoods(ctx context.Context, filter models.FoodFilter) ([]models.Food, error)
	GetFood(ctx context.Context, id int64) (*models.Food, error)
	GetFoodsByIDs(ctx context.Context, ids []int64) (map[int64]models.Food, error)
	CreateFood(ctx context.Context, f *models.Food) error
	UpdateFood(ctx context.Context, f *models.Food) error
}

// SearchCache memoizes search results. Implementations may be no-ops.
type SearchCache interface {
	// Search reports a hit, or on a miss the key to store the fresh result under.
	Search(ctx context.Context, f models.FoodFilter) (foods []models.Food, key string, ok bool, err error)
	StoreSearch(ctx context.Context, key string, foods []models.Food) error
	Invalidate(ctx context.Context) error
}

type Catalog struct {
	store FoodStore
	cache SearchCache
	log   *logger.Logger
}

func NewCatalog(store FoodStore, cache SearchCache, log *logger.Logger) *Catalog {
	return &Catalog{store: store, cache: cache, log: log.Named("catalog")}
}

// Search matches term case-insensitively against names and category exactly.
// Empty filters match everything; results keep catalog insertion order.
// Cache failures are logged and never fail the search.
func (c *Catalog) Search(ctx context.Context, term, category string) ([]models.Food, error) {
	filter := models.FoodFilter{
		Search:   strings.TrimSpace(term),
		Category: strings.TrimSpace(category),
	}

	var key string
	if c.cache != nil {
		foods, k, ok, err := c.cache.Search(ctx, filter)
		key = k
		if err != nil {
			c.log.Warnw("catalog cache read failed", "error", err)
		} else if ok {
			return foods, nil
		}
	}

	foods, err := c.store.SearchFoods(ctx, filter)
	if err != nil {
		return nil, apperr.Internal(err)
	}

	if c.cache != nil && key != "" {
		if err := c.cache.StoreSearch(ctx, key, foods); err != nil {
			c.log.Warnw("catalog cache write failed", "error", err)
		}
	}
	return foods, nil
}

func (c *Catalog) Get(ctx context.Context, id int64) (*models.Food, error) {
	f, err := c.store.GetFood(ctx, id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("food not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return f, nil
}

func (c *Catalog) Create(ctx context.Context, in models.FoodInput) (*models.Food, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	f := in.Food(0)
	if err := c.store.CreateFood(ctx, f); err != nil {
		return nil, apperr.Internal(err)
	}
	c.invalidate(ctx)

	c.log.Infow("food created", "food_id", f.ID, "name", f.Name)
	return f, nil
}

// Update replaces a catalog entry. Meals already logged keep their snapshots.
func (c *Catalog) Update(ctx context.Context, id int64, in models.FoodInput) (*models.Food, error) {
	in.Name = strings.TrimSpace(in.Name)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}

	f := in.Food(id)
	err := c.store.UpdateFood(ctx, f)
	if errors.Is(err, db.ErrNotFound) {
		return nil, apperr.NotFound("food not found")
	}
	if err != nil {
		return nil, apperr.Internal(err)
	}
	c.invalidate(ctx)

	c.log.Infow("food updated", "food_id", f.ID)
	return f, nil
}

func (c *Catalog) invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.Invalidate(ctx); err != nil {
		c.log.Errorw("catalog cache invalidation failed", "error", err)
	}
}
