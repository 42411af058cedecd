package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// ResetTokenTTL is the validity window of a password-reset token.
// Expiry is enforced lazily at redemption time, not by active eviction.
const ResetTokenTTL = time.Hour

const resetTokenLen = 32 // raw bytes; 64 hex chars on the wire

// GeneratedResetToken contains the parts of a newly issued reset token.
// Only the digest is persisted; the raw token travels in the email link
// and cannot be replayed from a store compromise.
type GeneratedResetToken struct {
	Raw       string // emailed to the user, never stored
	Digest    string // SHA-256 hex, stored on the user record
	ExpiresAt time.Time
}

// GenerateResetToken creates a high-entropy password-reset token.
func GenerateResetToken() (*GeneratedResetToken, error) {
	buf := make([]byte, resetTokenLen)
	if _, err := rand.Read(buf); err != nil {
		return nil, fmt.Errorf("generate reset token: %w", err)
	}

	raw := hex.EncodeToString(buf)
	return &GeneratedResetToken{
		Raw:       raw,
		Digest:    HashResetToken(raw),
		ExpiresAt: time.Now().UTC().Add(ResetTokenTTL),
	}, nil
}

// HashResetToken returns the SHA-256 hex digest of a raw reset token.
// Used both when storing a new token and when looking up a redeemed one.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}
