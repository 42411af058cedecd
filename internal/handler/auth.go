package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/craftfolio/craftfolio/internal/auth"
	"github.com/craftfolio/craftfolio/internal/handler/dto"
	"github.com/craftfolio/craftfolio/internal/service"
)

// AuthHandler handles HTTP requests for account operations.
type AuthHandler struct {
	svc    *service.AuthService
	logger *slog.Logger
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *service.AuthService, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		svc:    svc,
		logger: logger,
	}
}

// VerifySession handles GET /api/auth/verify-session.
// The session middleware has already validated the token; this endpoint
// re-fetches the account so a deleted user cannot ride out a live token.
func (h *AuthHandler) VerifySession(w http.ResponseWriter, r *http.Request) {
	userID := auth.MustUserIDFromContext(r.Context())

	profile, err := h.svc.CurrentUser(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrUserNotFound) {
			writeMessage(w, http.StatusNotFound, "User not found")
			return
		}
		h.internalError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifySessionResponse{User: profile})
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req dto.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	user, err := h.svc.SignUp(r.Context(), req.Username, req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "All fields are required")
		case errors.Is(err, service.ErrEmailTaken):
			writeMessage(w, http.StatusBadRequest, "Email already registered")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	h.logger.Info("user_created", "user_id", user.ID)

	writeMessage(w, http.StatusCreated, "User created successfully")
}

// Signin handles POST /api/auth/signin.
func (h *AuthHandler) Signin(w http.ResponseWriter, r *http.Request) {
	var req dto.SigninRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, profile, err := h.svc.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "Email and password are required")
		case errors.Is(err, service.ErrUnknownEmail):
			writeMessage(w, http.StatusBadRequest, "User not found")
		case errors.Is(err, service.ErrInvalidCredentials):
			writeMessage(w, http.StatusBadRequest, "Invalid credentials")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	h.logger.Info("user_signed_in", "user_id", profile.ID)

	writeJSON(w, http.StatusOK, dto.SigninResponse{
		Success: true,
		Token:   token,
		User:    profile,
	})
}

// ForgotPassword handles POST /api/auth/forgot-password.
func (h *AuthHandler) ForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ForgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.ForgotPassword(r.Context(), req.Email); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "Email is required")
		case errors.Is(err, service.ErrUnknownEmail):
			writeMessage(w, http.StatusBadRequest, "User not found")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "Reset email sent")
}

// ResetPassword handles POST /api/auth/reset-password.
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req dto.ResetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.svc.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrMissingFields):
			writeMessage(w, http.StatusBadRequest, "Token and new password are required")
		case errors.Is(err, service.ErrInvalidResetToken):
			writeMessage(w, http.StatusBadRequest, "Invalid or expired token")
		default:
			h.internalError(w, r, err)
		}
		return
	}

	writeMessage(w, http.StatusOK, "Password reset successful")
}

// internalError logs and hides unexpected failures.
func (h *AuthHandler) internalError(w http.ResponseWriter, r *http.Request, err error) {
	h.logger.Error("internal_error",
		"error", err,
		"path", r.URL.Path,
	)
	writeMessage(w, http.StatusInternalServerError, "Internal Server Error")
}
