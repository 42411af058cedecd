package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/craftfolio/craftfolio/internal/auth"
	"github.com/craftfolio/craftfolio/internal/mailer"
	"github.com/craftfolio/craftfolio/internal/testutil"
)

const testFrontendURL = "http://localhost:3000"

func newTestAuthService(t *testing.T) (*AuthService, *testutil.MemUserStore, *testutil.MemProfileCache, *mailer.Recorder) {
	t.Helper()

	users := testutil.NewMemUserStore()
	cache := testutil.NewMemProfileCache()
	outbound := mailer.NewRecorder()
	tokens := auth.NewTokenManager("test-secret", time.Hour)

	svc := NewAuthService(users, cache, tokens, outbound, testFrontendURL, nil)
	return svc, users, cache, outbound
}

func TestSignUp(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "  alice  ", " alice@example.com ", "hunter22")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	if user.Username != "alice" || user.Email != "alice@example.com" {
		t.Errorf("username/email not trimmed: %q / %q", user.Username, user.Email)
	}
	if user.PasswordHash == "hunter22" || user.PasswordHash == "" {
		t.Error("password must be stored hashed")
	}

	stored, err := users.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("user was not persisted: %v", err)
	}
	if stored.ID != user.ID {
		t.Errorf("stored id = %q, want %q", stored.ID, user.ID)
	}
}

func TestSignUpMissingFields(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	tests := []struct {
		name                      string
		username, email, password string
	}{
		{"no username", "", "a@example.com", "pw"},
		{"no email", "alice", "", "pw"},
		{"no password", "alice", "a@example.com", ""},
		{"whitespace username", "   ", "a@example.com", "pw"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.SignUp(ctx, tt.username, tt.email, tt.password); !errors.Is(err, ErrMissingFields) {
				t.Errorf("SignUp() error = %v, want ErrMissingFields", err)
			}
		})
	}
}

func TestSignUpDuplicateEmail(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "alice@example.com", "pw-one"); err != nil {
		t.Fatalf("first SignUp() error = %v", err)
	}

	if _, err := svc.SignUp(ctx, "impostor", "alice@example.com", "pw-two"); !errors.Is(err, ErrEmailTaken) {
		t.Errorf("second SignUp() error = %v, want ErrEmailTaken", err)
	}
}

func TestSignIn(t *testing.T) {
	svc, _, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	t.Run("unknown email", func(t *testing.T) {
		if _, _, err := svc.SignIn(ctx, "nobody@example.com", "hunter22"); !errors.Is(err, ErrUnknownEmail) {
			t.Errorf("SignIn() error = %v, want ErrUnknownEmail", err)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		if _, _, err := svc.SignIn(ctx, "alice@example.com", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("SignIn() error = %v, want ErrInvalidCredentials", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		token, profile, err := svc.SignIn(ctx, "alice@example.com", "hunter22")
		if err != nil {
			t.Fatalf("SignIn() error = %v", err)
		}

		if profile.ID != user.ID || profile.Username != "alice" || profile.Email != "alice@example.com" {
			t.Errorf("unexpected profile: %+v", profile)
		}

		tokens := auth.NewTokenManager("test-secret", time.Hour)
		subject, err := tokens.Verify(token)
		if err != nil {
			t.Fatalf("issued token does not verify: %v", err)
		}
		if subject != user.ID {
			t.Errorf("token subject = %q, want %q", subject, user.ID)
		}
	})
}

func TestCurrentUser(t *testing.T) {
	svc, users, cache, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	profile, err := svc.CurrentUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CurrentUser() error = %v", err)
	}
	if profile.ID != user.ID {
		t.Errorf("profile id = %q, want %q", profile.ID, user.ID)
	}

	// The first lookup should have warmed the cache; a store delete is
	// then invisible until the cached entry expires or is evicted.
	users.DeleteUser(user.ID)
	if _, err := svc.CurrentUser(ctx, user.ID); err != nil {
		t.Errorf("CurrentUser() after cache warm error = %v", err)
	}

	if err := cache.DeleteSessionProfile(ctx, user.ID); err != nil {
		t.Fatalf("DeleteSessionProfile() error = %v", err)
	}
	if _, err := svc.CurrentUser(ctx, user.ID); !errors.Is(err, ErrUserNotFound) {
		t.Errorf("CurrentUser() for deleted user error = %v, want ErrUserNotFound", err)
	}
}

func TestForgotPassword(t *testing.T) {
	svc, users, _, outbound := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	t.Run("unknown email", func(t *testing.T) {
		if err := svc.ForgotPassword(ctx, "nobody@example.com"); !errors.Is(err, ErrUnknownEmail) {
			t.Errorf("ForgotPassword() error = %v, want ErrUnknownEmail", err)
		}
	})

	t.Run("sends reset link and stores digest", func(t *testing.T) {
		if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
			t.Fatalf("ForgotPassword() error = %v", err)
		}

		sent := outbound.Sent()
		if len(sent) != 1 {
			t.Fatalf("sent %d mails, want 1", len(sent))
		}
		if sent[0].To != "alice@example.com" {
			t.Errorf("mail to = %q", sent[0].To)
		}

		raw := extractResetToken(t, sent[0].HTMLBody)

		stored, err := users.GetUserByID(ctx, user.ID)
		if err != nil {
			t.Fatalf("GetUserByID() error = %v", err)
		}
		if stored.ResetTokenHash == nil {
			t.Fatal("reset token digest was not stored")
		}
		if *stored.ResetTokenHash == raw {
			t.Error("the raw token must never be stored")
		}
		if *stored.ResetTokenHash != auth.HashResetToken(raw) {
			t.Error("stored digest does not match the emailed token")
		}
		if !stored.HasPendingReset(time.Now().UTC()) {
			t.Error("stored token should not already be expired")
		}
	})
}

func TestForgotPasswordRollsBackOnSendFailure(t *testing.T) {
	svc, users, _, outbound := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "alice@example.com", "hunter22")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	outbound.FailNext(true)
	if err := svc.ForgotPassword(ctx, "alice@example.com"); err == nil {
		t.Fatal("ForgotPassword() should fail when the send fails")
	}

	stored, err := users.GetUserByID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if stored.ResetTokenHash != nil || stored.ResetTokenExpiry != nil {
		t.Error("a token that was never delivered must not stay redeemable")
	}
}

func TestResetPasswordFlow(t *testing.T) {
	svc, _, _, outbound := newTestAuthService(t)
	ctx := context.Background()

	if _, err := svc.SignUp(ctx, "alice", "alice@example.com", "old-password"); err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}
	if err := svc.ForgotPassword(ctx, "alice@example.com"); err != nil {
		t.Fatalf("ForgotPassword() error = %v", err)
	}

	raw := extractResetToken(t, outbound.Sent()[0].HTMLBody)

	if err := svc.ResetPassword(ctx, raw, "new-password"); err != nil {
		t.Fatalf("ResetPassword() error = %v", err)
	}

	if _, _, err := svc.SignIn(ctx, "alice@example.com", "old-password"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("old password still works after reset: %v", err)
	}
	if _, _, err := svc.SignIn(ctx, "alice@example.com", "new-password"); err != nil {
		t.Errorf("new password does not work after reset: %v", err)
	}

	// A redeemed token is spent.
	if err := svc.ResetPassword(ctx, raw, "another-password"); !errors.Is(err, ErrInvalidResetToken) {
		t.Errorf("second redemption error = %v, want ErrInvalidResetToken", err)
	}
}

func TestResetPasswordRejectsBadTokens(t *testing.T) {
	svc, users, _, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.SignUp(ctx, "alice", "alice@example.com", "old-password")
	if err != nil {
		t.Fatalf("SignUp() error = %v", err)
	}

	t.Run("missing fields", func(t *testing.T) {
		if err := svc.ResetPassword(ctx, "", "new"); !errors.Is(err, ErrMissingFields) {
			t.Errorf("error = %v, want ErrMissingFields", err)
		}
		if err := svc.ResetPassword(ctx, "sometoken", ""); !errors.Is(err, ErrMissingFields) {
			t.Errorf("error = %v, want ErrMissingFields", err)
		}
	})

	t.Run("unknown token", func(t *testing.T) {
		if err := svc.ResetPassword(ctx, "deadbeef", "new-password"); !errors.Is(err, ErrInvalidResetToken) {
			t.Errorf("error = %v, want ErrInvalidResetToken", err)
		}
	})

	t.Run("expired token", func(t *testing.T) {
		raw := "aaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa"
		expired := time.Now().UTC().Add(-time.Minute)
		if err := users.SetResetToken(ctx, user.ID, auth.HashResetToken(raw), expired); err != nil {
			t.Fatalf("SetResetToken() error = %v", err)
		}

		if err := svc.ResetPassword(ctx, raw, "new-password"); !errors.Is(err, ErrInvalidResetToken) {
			t.Errorf("error = %v, want ErrInvalidResetToken", err)
		}
	})
}

// extractResetToken pulls the raw token out of the reset-link email body.
func extractResetToken(t *testing.T, htmlBody string) string {
	t.Helper()

	marker := testFrontendURL + "/reset-password/"
	idx := strings.Index(htmlBody, marker)
	if idx < 0 {
		t.Fatalf("mail body has no reset link: %q", htmlBody)
	}

	rest := htmlBody[idx+len(marker):]
	end := strings.IndexByte(rest, '"')
	if end < 0 {
		t.Fatalf("reset link is not quote-terminated: %q", htmlBody)
	}
	return rest[:end]
}
