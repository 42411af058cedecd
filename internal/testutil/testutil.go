// Package testutil provides helpers for integration tests.
package testutil

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"
	"github.com/redis/go-redis/v9"

	"github.com/craftfolio/craftfolio/internal/model"
)

// RequireEnv returns an environment variable or skips the test if missing.
func RequireEnv(t testing.TB, key string) string {
	t.Helper()
	value := os.Getenv(key)
	if value == "" {
		t.Skipf("%s not set", key)
	}
	return value
}

const advisoryLockID int64 = 730731

// AcquireDBLock grabs a global advisory lock to serialize DB tests.
func AcquireDBLock(ctx context.Context, pool *pgxpool.Pool) (func() error, error) {
	conn, err := pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquire connection: %w", err)
	}

	if _, err := conn.Exec(ctx, "SELECT pg_advisory_lock($1)", advisoryLockID); err != nil {
		conn.Release()
		return nil, fmt.Errorf("acquire advisory lock: %w", err)
	}

	unlock := func() error {
		defer conn.Release()
		if _, err := conn.Exec(ctx, "SELECT pg_advisory_unlock($1)", advisoryLockID); err != nil {
			return fmt.Errorf("release advisory lock: %w", err)
		}
		return nil
	}

	return unlock, nil
}

// TruncateAll empties the application tables between tests.
// Assumes migrations have already been applied.
func TruncateAll(ctx context.Context, pool *pgxpool.Pool) error {
	if _, err := pool.Exec(ctx, "TRUNCATE portfolios, users CASCADE"); err != nil {
		return fmt.Errorf("truncate tables: %w", err)
	}
	return nil
}

// FlushRedis clears the current Redis database.
func FlushRedis(ctx context.Context, client *redis.Client) error {
	return client.FlushDB(ctx).Err()
}

// ============================================================================
// Test Data Factories
// ============================================================================

// NewTestUser creates a test user with sensible defaults.
func NewTestUser(t testing.TB, email string) *model.User {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.User{
		ID:           ulid.Make().String(),
		Username:     "tester",
		Email:        email,
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=4$dGVzdHNhbHQ$dGVzdGhhc2g",
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewTestPortfolio creates a test portfolio owned by the given user.
func NewTestPortfolio(t testing.TB, ownerID string) *model.Portfolio {
	t.Helper()
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &model.Portfolio{
		ID:         ulid.Make().String(),
		UserID:     ownerID,
		TemplateID: "classic",
		Name:       model.DefaultPortfolioName,
		Title:      "Backend Engineer",
		Bio:        "I build things.",
		Skills:     []string{"Go", "PostgreSQL"},
		Experience: []model.Experience{
			{Company: "Acme", Position: "Engineer", Duration: "2020-2023", Description: "APIs"},
		},
		Education: []model.Education{
			{Institution: "State University", Degree: "BSc", Year: "2019"},
		},
		Projects: []model.Project{
			{Title: "Side Project", Description: "A thing", ImageURL: "https://example.com/p.png", Link: "https://example.com"},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}
}
