package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/craftfolio/craftfolio/internal/model"
)

const (
	// sessionCachePrefix is the Redis key prefix for cached profiles.
	sessionCachePrefix = "session:profile:"
	// sessionCacheTTL bounds how stale a verified profile can be.
	sessionCacheTTL = 5 * time.Minute
)

// SessionProfileKey builds the cache key for a user's profile.
func SessionProfileKey(userID string) string {
	return sessionCachePrefix + userID
}

// GetSessionProfile retrieves a cached profile for the verify-session
// hot path. Returns nil on a miss; a corrupted entry is treated as a miss.
func (c *Cache) GetSessionProfile(ctx context.Context, userID string) (*model.Profile, error) {
	data, err := c.client.Get(ctx, SessionProfileKey(userID)).Bytes()
	if err != nil {
		// Cache miss is not an error
		return nil, nil //nolint:nilerr
	}

	var profile model.Profile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, nil //nolint:nilerr
	}

	return &profile, nil
}

// SetSessionProfile caches a user's non-secret profile.
func (c *Cache) SetSessionProfile(ctx context.Context, profile *model.Profile) error {
	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("marshal session profile: %w", err)
	}

	return c.client.Set(ctx, SessionProfileKey(profile.ID), data, sessionCacheTTL).Err()
}

// DeleteSessionProfile drops a cached profile.
// Called after a password reset so stale data does not outlive it.
func (c *Cache) DeleteSessionProfile(ctx context.Context, userID string) error {
	return c.client.Del(ctx, SessionProfileKey(userID)).Err()
}
