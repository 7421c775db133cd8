package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"nutrition-tracker/config"
	"nutrition-tracker/internal/models"
)

const versionKey = "foods:version"

// FoodCache memoizes catalog search results in Redis. Every catalog write
// bumps a version counter that is part of each key, so stale entries are
// never read again and simply expire.
//
// A FoodCache with a nil client is a no-op.
type FoodCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewFoodCache connects to Redis. An empty address disables caching.
func NewFoodCache(ctx context.Context, cfg config.RedisConfig) (*FoodCache, error) {
	if cfg.Addr == "" {
		return &FoodCache{}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewWithClient(client, cfg.TTL), nil
}

func NewWithClient(client *redis.Client, ttl time.Duration) *FoodCache {
	return &FoodCache{client: client, ttl: ttl}
}

func (c *FoodCache) Enabled() bool { return c != nil && c.client != nil }

func (c *FoodCache) Close() error {
	if !c.Enabled() {
		return nil
	}
	return c.client.Close()
}

func (c *FoodCache) key(ctx context.Context, f models.FoodFilter) (string, error) {
	version, err := c.client.Get(ctx, versionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return "", err
	}
	return fmt.Sprintf("foods:v%d:search:%q|%q", version, strings.ToLower(f.Search), f.Category), nil
}

// Search returns the cached result for f. On a miss ok is false and key names
// the slot for the catalog version that was current at lookup time; pass it
// to StoreSearch so rows read before a catalog write are filed under the old
// version and never served. key is empty when nothing should be stored.
func (c *FoodCache) Search(ctx context.Context, f models.FoodFilter) (foods []models.Food, key string, ok bool, err error) {
	if !c.Enabled() {
		return nil, "", false, nil
	}

	key, err = c.key(ctx, f)
	if err != nil {
		return nil, "", false, fmt.Errorf("failed to read cache version: %w", err)
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, key, false, nil
		}
		return nil, "", false, fmt.Errorf("failed to get from Redis: %w", err)
	}

	if err := json.Unmarshal(data, &foods); err != nil {
		return nil, "", false, fmt.Errorf("failed to unmarshal cached foods: %w", err)
	}
	return foods, key, true, nil
}

// StoreSearch saves foods under a key returned by a missed Search.
func (c *FoodCache) StoreSearch(ctx context.Context, key string, foods []models.Food) error {
	if !c.Enabled() || key == "" {
		return nil
	}

	data, err := json.Marshal(foods)
	if err != nil {
		return fmt.Errorf("failed to marshal foods: %w", err)
	}

	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to save to Redis: %w", err)
	}
	return nil
}

// Invalidate makes every cached search stale.
func (c *FoodCache) Invalidate(ctx context.Context) error {
	if !c.Enabled() {
		return nil
	}
	if err := c.client.Incr(ctx, versionKey).Err(); err != nil {
		return fmt.Errorf("failed to bump cache version: %w", err)
	}
	return nil
}
