package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/craftfolio/craftfolio/internal/model"
)

// Common errors for user repository operations.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailExists  = errors.New("email already exists")

	// ErrNoMatchingReset means no user holds the given unexpired reset
	// token digest; the token is unknown, already used, or expired.
	ErrNoMatchingReset = errors.New("no matching reset token")
)

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (id, username, email, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		user.ID,
		user.Username,
		user.Email,
		user.PasswordHash,
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrEmailExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUserByID retrieves a user by their ID.
func (r *Repository) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	query := userSelect + ` WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByEmail retrieves a user by their email address.
func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := userSelect + ` WHERE email = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}

// SetResetToken stores a reset token digest and its expiry on the user.
// Both fields are written together, replacing any earlier pending token.
func (r *Repository) SetResetToken(ctx context.Context, userID, digest string, expiry time.Time) error {
	query := `
		UPDATE users
		SET reset_token_hash = $2, reset_token_expiry = $3, updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, userID, digest, expiry)
	if err != nil {
		return fmt.Errorf("failed to set reset token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ClearResetToken removes any pending reset token from the user.
// Used as the compensating step when the reset email cannot be sent.
func (r *Repository) ClearResetToken(ctx context.Context, userID string) error {
	query := `
		UPDATE users
		SET reset_token_hash = NULL, reset_token_expiry = NULL, updated_at = now()
		WHERE id = $1
	`

	if _, err := r.pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear reset token: %w", err)
	}

	return nil
}

// RedeemResetToken atomically replaces the password hash of the user
// holding the given unexpired token digest and clears both reset fields.
// The single guarded UPDATE makes the token single-use even under
// concurrent redemption attempts. Returns the affected user's id.
func (r *Repository) RedeemResetToken(ctx context.Context, digest, newPasswordHash string) (string, error) {
	query := `
		UPDATE users
		SET password_hash = $2,
		    reset_token_hash = NULL,
		    reset_token_expiry = NULL,
		    updated_at = now()
		WHERE reset_token_hash = $1
		  AND reset_token_expiry > now()
		RETURNING id
	`

	var userID string
	err := r.pool.QueryRow(ctx, query, digest, newPasswordHash).Scan(&userID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrNoMatchingReset
		}
		return "", fmt.Errorf("failed to redeem reset token: %w", err)
	}

	return userID, nil
}

const userSelect = `
	SELECT id, username, email, password_hash, reset_token_hash, reset_token_expiry, created_at, updated_at
	FROM users
`

// scanUser scans a user row from a QueryRow or Rows source.
func scanUser(row pgx.Row) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Email,
		&user.PasswordHash,
		&user.ResetTokenHash,
		&user.ResetTokenExpiry,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// isUniqueViolation checks if the error is a PostgreSQL unique constraint
// violation (SQLSTATE 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
