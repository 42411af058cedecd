// Package model defines domain entities for the application.
package model

import "time"

// User represents a registered account.
// PasswordHash and the reset fields are secrets and must never be
// serialized into API responses.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`

	// ResetTokenHash holds the SHA-256 digest of an outstanding
	// password-reset token; the raw token is never persisted.
	// Both reset fields are set and cleared together.
	ResetTokenHash   *string    `json:"-"`
	ResetTokenExpiry *time.Time `json:"-"`
}

// HasPendingReset reports whether an unexpired reset token is outstanding.
// Expiry is enforced lazily at redemption time; this is informational.
func (u *User) HasPendingReset(now time.Time) bool {
	return u.ResetTokenHash != nil && u.ResetTokenExpiry != nil && u.ResetTokenExpiry.After(now)
}

// Profile is the non-secret subset of a user returned by the API.
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Profile strips the secret fields from a user.
func (u *User) Profile() Profile {
	return Profile{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	}
}
