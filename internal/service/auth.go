// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/craftfolio/craftfolio/internal/auth"
	"github.com/craftfolio/craftfolio/internal/mailer"
	"github.com/craftfolio/craftfolio/internal/metrics"
	"github.com/craftfolio/craftfolio/internal/model"
)

// Auth service errors.
var (
	ErrMissingFields      = errors.New("all fields are required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrUnknownEmail       = errors.New("no account with that email")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidResetToken  = errors.New("invalid or expired token")
)

// UserStore is the credential-store surface the auth service needs.
// *repository.Repository satisfies it; tests use an in-memory fake.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	SetResetToken(ctx context.Context, userID, digest string, expiry time.Time) error
	ClearResetToken(ctx context.Context, userID string) error
	RedeemResetToken(ctx context.Context, digest, newPasswordHash string) (string, error)
}

// ProfileCache caches non-secret profiles for the verify-session hot path.
type ProfileCache interface {
	GetSessionProfile(ctx context.Context, userID string) (*model.Profile, error)
	SetSessionProfile(ctx context.Context, profile *model.Profile) error
	DeleteSessionProfile(ctx context.Context, userID string) error
}

// AuthService handles signup, signin and the password-reset flow.
type AuthService struct {
	users       UserStore
	cache       ProfileCache
	tokens      *auth.TokenManager
	mailer      mailer.Mailer
	frontendURL string
	metrics     metrics.Recorder
}

// NewAuthService creates an AuthService.
func NewAuthService(
	users UserStore,
	cache ProfileCache,
	tokens *auth.TokenManager,
	m mailer.Mailer,
	frontendURL string,
	recorder metrics.Recorder,
) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:       users,
		cache:       cache,
		tokens:      tokens,
		mailer:      m,
		frontendURL: strings.TrimSuffix(frontendURL, "/"),
		metrics:     recorder,
	}
}

// SignUp registers a new account. It deliberately does not issue a token;
// the caller must sign in separately.
func (s *AuthService) SignUp(ctx context.Context, username, email, password string) (*model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, ErrMissingFields
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	user := &model.User{
		ID:           ulid.Make().String(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if isEmailConflict(err) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.metrics.IncSignup()

	return user, nil
}

// SignIn verifies credentials and issues a session token alongside the
// user's non-secret profile.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (string, model.Profile, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", model.Profile{}, ErrMissingFields
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if isUserMissing(err) {
			return "", model.Profile{}, ErrUnknownEmail
		}
		return "", model.Profile{}, fmt.Errorf("lookup user: %w", err)
	}

	match, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", model.Profile{}, ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return "", model.Profile{}, fmt.Errorf("issue session token: %w", err)
	}

	s.metrics.IncSignin()

	return token, user.Profile(), nil
}

// CurrentUser resolves a verified session user id to its profile, trying
// the cache before the store. Returns ErrUserNotFound when the id no
// longer resolves to an account.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (model.Profile, error) {
	if cached, _ := s.cache.GetSessionProfile(ctx, userID); cached != nil {
		return *cached, nil
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if isUserMissing(err) {
			return model.Profile{}, ErrUserNotFound
		}
		return model.Profile{}, fmt.Errorf("lookup user: %w", err)
	}

	profile := user.Profile()
	_ = s.cache.SetSessionProfile(ctx, &profile)

	return profile, nil
}

// ForgotPassword stores a hashed reset token on the account and emails
// the raw token. The token is persisted before the send is attempted; if
// the send fails the stored token is rolled back so no valid-but-
// undelivered token remains.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ErrMissingFields
	}

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if isUserMissing(err) {
			return ErrUnknownEmail
		}
		return fmt.Errorf("lookup user: %w", err)
	}

	token, err := auth.GenerateResetToken()
	if err != nil {
		return err
	}

	if err := s.users.SetResetToken(ctx, user.ID, token.Digest, token.ExpiresAt); err != nil {
		return fmt.Errorf("store reset token: %w", err)
	}

	resetURL := fmt.Sprintf("%s/reset-password/%s", s.frontendURL, token.Raw)
	body := fmt.Sprintf(`<p>Click <a href="%s">here</a> to reset your password. The link expires in one hour.</p>`, resetURL)

	if err := s.mailer.Send(ctx, user.Email, "Password Reset", body); err != nil {
		// Compensate: an unredeemable token must not outlive a failed send.
		if clearErr := s.users.ClearResetToken(ctx, user.ID); clearErr != nil {
			return errors.Join(fmt.Errorf("send reset email: %w", err), clearErr)
		}
		return fmt.Errorf("send reset email: %w", err)
	}

	s.metrics.IncResetEmailSent()

	return nil
}

// ResetPassword redeems a raw reset token and installs the new password.
// Redemption is a single guarded update, so a token works exactly once.
func (s *AuthService) ResetPassword(ctx context.Context, rawToken, newPassword string) error {
	if rawToken == "" || newPassword == "" {
		return ErrMissingFields
	}

	hash, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	userID, err := s.users.RedeemResetToken(ctx, auth.HashResetToken(rawToken), hash)
	if err != nil {
		if isResetMismatch(err) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("redeem reset token: %w", err)
	}

	// Drop any cached profile so nothing stale survives the reset.
	_ = s.cache.DeleteSessionProfile(ctx, userID)

	s.metrics.IncPasswordReset()

	return nil
}
