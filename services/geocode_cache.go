package services

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const geocodeKeyPrefix = "geocode:"

// CachingGeocoder memoizes successful lookups in Redis. Cache failures fall
// through to the wrapped geocoder.
type CachingGeocoder struct {
	next  Geocoder
	redis *redis.Client
	ttl   time.Duration
}

// NewCachingGeocoder wraps next with a Redis cache
func NewCachingGeocoder(next Geocoder, client *redis.Client, ttl time.Duration) *CachingGeocoder {
	return &CachingGeocoder{next: next, redis: client, ttl: ttl}
}

// NewRedisClient parses a redis:// URL into a client
func NewRedisClient(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opts), nil
}

func geocodeCacheKey(query string) string {
	return geocodeKeyPrefix + strings.ToLower(strings.Join(strings.Fields(query), " "))
}

// Geocode serves from cache when possible
func (c *CachingGeocoder) Geocode(ctx context.Context, query string) (*GeoPoint, error) {
	key := geocodeCacheKey(query)

	raw, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var point GeoPoint
		if jsonErr := json.Unmarshal(raw, &point); jsonErr == nil {
			return &point, nil
		}
		log.Printf("[Geocoder] Discarding corrupt cache entry %s", key)
	case errors.Is(err, redis.Nil):
	default:
		log.Printf("[Geocoder] Cache read failed for %s: %v", key, err)
	}

	point, err := c.next.Geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	if data, jsonErr := json.Marshal(point); jsonErr == nil {
		if setErr := c.redis.Set(ctx, key, data, c.ttl).Err(); setErr != nil {
			log.Printf("[Geocoder] Cache write failed for %s: %v", key, setErr)
		}
	}
	return point, nil
}
