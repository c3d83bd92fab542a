// Package middleware provides request authentication helpers.
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/google/uuid"
)

// ContextKey is a typed key for context values to avoid collisions.
type ContextKey string

// userIDKey is the context key for storing the authenticated user ID.
const userIDKey ContextKey = "userID"

// ErrMissingToken is returned when the request carries no usable bearer token.
var ErrMissingToken = errors.New("missing bearer token")

// TokenValidator is an interface for validating JWT tokens.
// This allows the middleware to work with any JWT service implementation.
type TokenValidator interface {
	ValidateToken(tokenString string) (UserIDGetter, error)
}

// UserIDGetter is an interface for extracting user ID from token claims.
type UserIDGetter interface {
	GetUserID() uuid.UUID
}

// BearerToken extracts the token from an "Authorization: Bearer <token>"
// header. The scheme is matched case-insensitively.
func BearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return "", ErrMissingToken
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return "", ErrMissingToken
	}
	return parts[1], nil
}

// Authenticate validates the request's bearer token and returns the user ID
// it was issued for.
func Authenticate(validator TokenValidator, r *http.Request) (uuid.UUID, error) {
	token, err := BearerToken(r)
	if err != nil {
		return uuid.Nil, err
	}
	claims, err := validator.ValidateToken(token)
	if err != nil {
		return uuid.Nil, err
	}
	userID := claims.GetUserID()
	if userID == uuid.Nil {
		return uuid.Nil, errors.New("token has no subject")
	}
	return userID, nil
}

// WithUserID returns a copy of ctx carrying the authenticated user ID.
func WithUserID(ctx context.Context, userID uuid.UUID) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// GetUserID extracts the authenticated user ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, error) {
	userID, ok := r.Context().Value(userIDKey).(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user ID not found in request context")
	}
	return userID, nil
}
