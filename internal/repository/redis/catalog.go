package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/infLocus/Crowdsourced-Review-Platform/internal/domain"
)

const (
	keyFeatured   = "catalog:featured"
	keyCategories = "catalog:categories"
)

// CatalogCache implements repository.CatalogCache using Redis.
type CatalogCache struct {
	client redis.UniversalClient
	ttl    time.Duration
}

// NewCatalogCache creates a new Redis-backed catalog cache.
func NewCatalogCache(client redis.UniversalClient, ttl time.Duration) *CatalogCache {
	return &CatalogCache{client: client, ttl: ttl}
}

// GetFeatured returns the cached featured list; ok is false on a miss.
func (c *CatalogCache) GetFeatured(ctx context.Context) ([]domain.Business, bool, error) {
	var businesses []domain.Business
	ok, err := c.get(ctx, keyFeatured, &businesses)
	return businesses, ok, err
}

// SetFeatured caches the featured list.
func (c *CatalogCache) SetFeatured(ctx context.Context, businesses []domain.Business) error {
	return c.set(ctx, keyFeatured, businesses)
}

// GetCategories returns the cached category list; ok is false on a miss.
func (c *CatalogCache) GetCategories(ctx context.Context) ([]domain.CategoryInfo, bool, error) {
	var categories []domain.CategoryInfo
	ok, err := c.get(ctx, keyCategories, &categories)
	return categories, ok, err
}

// SetCategories caches the category list.
func (c *CatalogCache) SetCategories(ctx context.Context, categories []domain.CategoryInfo) error {
	return c.set(ctx, keyCategories, categories)
}

// Invalidate drops every cached catalog entry.
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, keyFeatured, keyCategories).Err(); err != nil {
		return fmt.Errorf("redis del catalog: %w", err)
	}
	return nil
}

func (c *CatalogCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("unmarshal %s: %w", key, err)
	}
	return true, nil
}

func (c *CatalogCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}
