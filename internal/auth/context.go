package auth

import "context"

// contextKey is a custom type for context keys to avoid collisions.
type contextKey string

// sessionContextKey is the context key for the authenticated user id.
const sessionContextKey contextKey = "session_user_id"

// ContextWithUserID adds the authenticated user id to the context.
func ContextWithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, sessionContextKey, userID)
}

// UserIDFromContext retrieves the authenticated user id from the context.
// Returns empty string if the session middleware has not run.
func UserIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(sessionContextKey).(string)
	if !ok {
		return ""
	}
	return id
}

// MustUserIDFromContext retrieves the authenticated user id from the context.
// Panics if not present (use only behind the session middleware).
func MustUserIDFromContext(ctx context.Context) string {
	id := UserIDFromContext(ctx)
	if id == "" {
		panic("session user id not found - ensure session middleware is applied")
	}
	return id
}
