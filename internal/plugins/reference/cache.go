// Package reference serves the slow-changing lookup data a calendar page
// needs (locations, areas, departments) through a Redis read-through
// cache in front of the backend.
package reference

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/redis/go-redis/v9"

	"github.com/keyxmakerx/shootcal/internal/backend"
)

// Source is the part of the backend the cache reads from.
type Source interface {
	Locations(ctx context.Context) ([]backend.Location, error)
	Area(ctx context.Context, areaID string) (*backend.Area, error)
	Departments(ctx context.Context) ([]backend.Department, error)
}

// Cache wraps a Source with Redis-backed caching. A nil Redis client or a
// zero TTL disables caching.
type Cache struct {
	src   Source
	redis *redis.Client
	ttl   time.Duration
}

// NewCache creates a cache in front of src.
func NewCache(src Source, client *redis.Client, ttl time.Duration) *Cache {
	if ttl < 0 {
		ttl = 0
	}
	return &Cache{src: src, redis: client, ttl: ttl}
}

func (c *Cache) Locations(ctx context.Context) ([]backend.Location, error) {
	return readThrough(ctx, c, locationsKey(), c.src.Locations)
}

func (c *Cache) Area(ctx context.Context, areaID string) (*backend.Area, error) {
	return readThrough(ctx, c, areaKey(areaID), func(ctx context.Context) (*backend.Area, error) {
		return c.src.Area(ctx, areaID)
	})
}

func (c *Cache) Departments(ctx context.Context) ([]backend.Department, error) {
	return readThrough(ctx, c, departmentsKey(), c.src.Departments)
}

// Areas returns every area referenced by a location, sorted by name. The
// backend has no list endpoint for areas, so they are collected from the
// locations and fetched one by one through the cache. Areas that fail to
// load are skipped.
func (c *Cache) Areas(ctx context.Context) ([]backend.Area, error) {
	locs, err := c.Locations(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var areas []backend.Area
	for _, l := range locs {
		if l.AreaID == "" || seen[l.AreaID] {
			continue
		}
		seen[l.AreaID] = true

		a, err := c.Area(ctx, l.AreaID)
		if err != nil {
			slog.Warn("skipping area", slog.String("area_id", l.AreaID), slog.Any("error", err))
			continue
		}
		areas = append(areas, *a)
	}

	sort.Slice(areas, func(i, j int) bool {
		return strings.ToLower(areas[i].Name) < strings.ToLower(areas[j].Name)
	})
	return areas, nil
}

// AreaForLocation resolves a location name to its area. It returns nil
// without error when the location is unknown or has no area.
func (c *Cache) AreaForLocation(ctx context.Context, locationName string) (*backend.Area, error) {
	name := strings.TrimSpace(locationName)
	if name == "" {
		return nil, nil
	}

	locs, err := c.Locations(ctx)
	if err != nil {
		return nil, err
	}
	for _, l := range locs {
		if strings.EqualFold(l.Name, name) {
			if l.AreaID == "" {
				return nil, nil
			}
			return c.Area(ctx, l.AreaID)
		}
	}
	return nil, nil
}

// Evict drops every cached entry this package owns.
func (c *Cache) Evict(ctx context.Context) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if len(keys) > 0 {
		_ = c.redis.Del(ctx, keys...).Err()
	}
}

func readThrough[T any](ctx context.Context, c *Cache, key string, fetch func(context.Context) (T, error)) (T, error) {
	if v, ok := load[T](ctx, c, key); ok {
		return v, nil
	}

	v, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}

	c.store(ctx, key, v)
	return v, nil
}

func load[T any](ctx context.Context, c *Cache, key string) (T, bool) {
	var v T
	if c.redis == nil {
		return v, false
	}
	data, err := c.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			// On Redis errors fall back to the backend without failing.
			_ = c.redis.Del(ctx, key).Err()
		}
		return v, false
	}
	if err := sonic.Unmarshal(data, &v); err != nil {
		_ = c.redis.Del(ctx, key).Err()
		return v, false
	}
	return v, true
}

func (c *Cache) store(ctx context.Context, key string, v any) {
	if c.redis == nil || c.ttl == 0 {
		return
	}
	data, err := sonic.Marshal(v)
	if err != nil {
		return
	}
	_ = c.redis.Set(ctx, key, data, c.ttl).Err()
}

const keyPrefix = "ref:"

func locationsKey() string {
	return keyPrefix + "locations"
}

func areaKey(areaID string) string {
	return keyPrefix + "area:" + areaID
}

func departmentsKey() string {
	return keyPrefix + "departments"
}
