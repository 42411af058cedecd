package cache

import (
	"context"
	"testing"

	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/testutil"
)

func TestSessionProfileKey(t *testing.T) {
	if got := SessionProfileKey("u1"); got != "session:profile:u1" {
		t.Errorf("SessionProfileKey() = %q", got)
	}
}

// Integration test; skipped unless TEST_REDIS_URL is set.
func TestSessionProfileRoundTrip(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}

	profile := &model.Profile{ID: "u1", Username: "alice", Email: "alice@example.com"}

	got, err := c.GetSessionProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetSessionProfile() error = %v", err)
	}
	if got != nil {
		t.Errorf("cache miss should return nil, got %+v", got)
	}

	if err := c.SetSessionProfile(ctx, profile); err != nil {
		t.Fatalf("SetSessionProfile() error = %v", err)
	}

	got, err = c.GetSessionProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetSessionProfile() error = %v", err)
	}
	if got == nil || *got != *profile {
		t.Errorf("GetSessionProfile() = %+v, want %+v", got, profile)
	}

	if err := c.DeleteSessionProfile(ctx, profile.ID); err != nil {
		t.Fatalf("DeleteSessionProfile() error = %v", err)
	}

	got, err = c.GetSessionProfile(ctx, profile.ID)
	if err != nil {
		t.Fatalf("GetSessionProfile() error = %v", err)
	}
	if got != nil {
		t.Errorf("profile should be gone after delete, got %+v", got)
	}
}

func TestGetSessionProfileCorruptedEntry(t *testing.T) {
	redisURL := testutil.RequireEnv(t, "TEST_REDIS_URL")
	ctx := context.Background()

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer c.Close()

	if err := c.Client().Set(ctx, SessionProfileKey("u-corrupt"), "not json", 0).Err(); err != nil {
		t.Fatalf("seed corrupted entry: %v", err)
	}

	got, err := c.GetSessionProfile(ctx, "u-corrupt")
	if err != nil {
		t.Fatalf("GetSessionProfile() error = %v", err)
	}
	if got != nil {
		t.Errorf("corrupted entry should read as a miss, got %+v", got)
	}
}
