package auth

import (
	"context"

	"github.com/google/uuid"
)

// TokenService defines the interface for JWT token operations.
type TokenService interface {
	GenerateAccessToken(email string) (string, error)
	GenerateRefreshToken(email string, rememberMe bool) (string, error)
	ValidateAccessToken(tokenString string) (*Claims, error)
	ValidateRefreshToken(tokenString string) (*Claims, error)
}

// VerificationEnqueuer hands OTP email delivery off to the background
// worker. Implemented by the tasks package over asynq.
type VerificationEnqueuer interface {
	EnqueueEmailVerification(ctx context.Context, userID uuid.UUID, email string) error
}

// Compile-time interface satisfaction check
var _ TokenService = (*JWTService)(nil)
