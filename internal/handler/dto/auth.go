// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import "github.com/craftfolio/craftfolio/internal/model"

// SignupRequest represents the request body for account creation.
type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninRequest represents the request body for signing in.
type SigninRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SigninResponse carries the issued session token and the non-secret
// profile of the signed-in user.
type SigninResponse struct {
	Success bool          `json:"success"`
	Token   string        `json:"token"`
	User    model.Profile `json:"user"`
}

// VerifySessionResponse wraps the profile behind a valid session.
type VerifySessionResponse struct {
	User model.Profile `json:"user"`
}

// ForgotPasswordRequest represents the request body for requesting a
// password-reset email.
type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

// ResetPasswordRequest represents the request body for redeeming a reset
// token. Token is the raw token from the emailed link.
type ResetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

// MessageResponse is the generic message envelope used for confirmations
// and errors alike.
type MessageResponse struct {
	Message string `json:"message"`
}
