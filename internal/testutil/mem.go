package testutil

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/craftfolio/craftfolio/internal/model"
	"github.com/craftfolio/craftfolio/internal/repository"
)

// In-memory store and cache doubles for tests that exercise the service
// layer without Postgres or Redis. They return the repository sentinel
// errors so error mapping behaves exactly as in production.

// MemUserStore is an in-memory credential store.
type MemUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by id
}

// NewMemUserStore creates an empty MemUserStore.
func NewMemUserStore() *MemUserStore {
	return &MemUserStore{users: make(map[string]*model.User)}
}

// CreateUser stores a user, rejecting duplicate emails.
func (s *MemUserStore) CreateUser(ctx context.Context, user *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}

	clone := *user
	s.users[user.ID] = &clone
	return nil
}

// GetUserByID looks up a user by id.
func (s *MemUserStore) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repository.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

// GetUserByEmail looks up a user by email.
func (s *MemUserStore) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, u := range s.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

// SetResetToken stores a reset digest and expiry on the user.
func (s *MemUserStore) SetResetToken(ctx context.Context, userID, digest string, expiry time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetTokenHash = &digest
	u.ResetTokenExpiry = &expiry
	return nil
}

// ClearResetToken removes any stored reset token from the user.
func (s *MemUserStore) ClearResetToken(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[userID]
	if !ok {
		return repository.ErrUserNotFound
	}
	u.ResetTokenHash = nil
	u.ResetTokenExpiry = nil
	return nil
}

// RedeemResetToken atomically consumes an unexpired matching token and
// installs the new password hash, mirroring the guarded SQL update.
func (s *MemUserStore) RedeemResetToken(ctx context.Context, digest, newPasswordHash string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for _, u := range s.users {
		if u.ResetTokenHash == nil || *u.ResetTokenHash != digest {
			continue
		}
		if u.ResetTokenExpiry == nil || !u.ResetTokenExpiry.After(now) {
			continue
		}
		u.PasswordHash = newPasswordHash
		u.ResetTokenHash = nil
		u.ResetTokenExpiry = nil
		return u.ID, nil
	}
	return "", repository.ErrNoMatchingReset
}

// DeleteUser removes a user outright. Tests use it to simulate an
// account deleted while a session token is still live.
func (s *MemUserStore) DeleteUser(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, userID)
}

// MemPortfolioStore is an in-memory portfolio document store.
type MemPortfolioStore struct {
	mu         sync.Mutex
	portfolios map[string]*model.Portfolio
}

// NewMemPortfolioStore creates an empty MemPortfolioStore.
func NewMemPortfolioStore() *MemPortfolioStore {
	return &MemPortfolioStore{portfolios: make(map[string]*model.Portfolio)}
}

// CreatePortfolio stores a new document.
func (s *MemPortfolioStore) CreatePortfolio(ctx context.Context, p *model.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *p
	s.portfolios[p.ID] = &clone
	return nil
}

// GetPortfolioByID looks up a document by id.
func (s *MemPortfolioStore) GetPortfolioByID(ctx context.Context, id string) (*model.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.portfolios[id]
	if !ok {
		return nil, repository.ErrPortfolioNotFound
	}
	clone := *p
	return &clone, nil
}

// GetLatestPortfolioByOwner returns the owner's most recently updated
// document.
func (s *MemPortfolioStore) GetLatestPortfolioByOwner(ctx context.Context, ownerID string) (*model.Portfolio, error) {
	owned := s.byOwner(ownerID)
	if len(owned) == 0 {
		return nil, repository.ErrPortfolioNotFound
	}
	clone := *owned[0]
	return &clone, nil
}

// ListPortfoliosByOwner returns the owner's documents newest-first.
func (s *MemPortfolioStore) ListPortfoliosByOwner(ctx context.Context, ownerID string) ([]*model.Portfolio, error) {
	owned := s.byOwner(ownerID)
	out := make([]*model.Portfolio, 0, len(owned))
	for _, p := range owned {
		clone := *p
		out = append(out, &clone)
	}
	return out, nil
}

// ListPortfolioSummariesByOwner returns the template projections of the
// owner's documents newest-first.
func (s *MemPortfolioStore) ListPortfolioSummariesByOwner(ctx context.Context, ownerID string) ([]model.TemplateSummary, error) {
	owned := s.byOwner(ownerID)
	out := make([]model.TemplateSummary, 0, len(owned))
	for _, p := range owned {
		out = append(out, p.Summary())
	}
	return out, nil
}

// UpdatePortfolio overwrites a document's mutable fields. The owner and
// creation time are immutable, as in the SQL update.
func (s *MemPortfolioStore) UpdatePortfolio(ctx context.Context, p *model.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, ok := s.portfolios[p.ID]
	if !ok {
		return repository.ErrPortfolioNotFound
	}

	clone := *p
	clone.UserID = existing.UserID
	clone.CreatedAt = existing.CreatedAt
	s.portfolios[p.ID] = &clone
	return nil
}

// DeletePortfolio removes a document.
func (s *MemPortfolioStore) DeletePortfolio(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.portfolios[id]; !ok {
		return repository.ErrPortfolioNotFound
	}
	delete(s.portfolios, id)
	return nil
}

func (s *MemPortfolioStore) byOwner(ownerID string) []*model.Portfolio {
	s.mu.Lock()
	defer s.mu.Unlock()

	var owned []*model.Portfolio
	for _, p := range s.portfolios {
		if p.UserID == ownerID {
			owned = append(owned, p)
		}
	}
	sort.Slice(owned, func(i, j int) bool {
		if owned[i].UpdatedAt.Equal(owned[j].UpdatedAt) {
			return owned[i].ID > owned[j].ID
		}
		return owned[i].UpdatedAt.After(owned[j].UpdatedAt)
	})
	return owned
}

// MemProfileCache is an in-memory session profile cache.
type MemProfileCache struct {
	mu       sync.Mutex
	profiles map[string]*model.Profile
}

// NewMemProfileCache creates an empty MemProfileCache.
func NewMemProfileCache() *MemProfileCache {
	return &MemProfileCache{profiles: make(map[string]*model.Profile)}
}

// GetSessionProfile returns the cached profile or nil on a miss.
func (c *MemProfileCache) GetSessionProfile(ctx context.Context, userID string) (*model.Profile, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	p, ok := c.profiles[userID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

// SetSessionProfile caches a profile.
func (c *MemProfileCache) SetSessionProfile(ctx context.Context, profile *model.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clone := *profile
	c.profiles[profile.ID] = &clone
	return nil
}

// DeleteSessionProfile evicts a cached profile.
func (c *MemProfileCache) DeleteSessionProfile(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.profiles, userID)
	return nil
}
