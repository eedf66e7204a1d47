package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const (
	refreshTTLRemembered = 14 * 24 * time.Hour
	refreshTTLDefault    = 24 * time.Hour
)

// Claims carried by both token kinds. The subject is the user's email; the
// refresh-token flows cross-check it against the database owner of the token.
type Claims struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// JWTService signs and verifies access and refresh tokens with two
// independent secrets. Access tokens are short-lived; refresh tokens live
// 14 days when the user asked to be remembered, 1 day otherwise.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
}

func NewJWTService(accessSecret, refreshSecret string, accessExpiry time.Duration) *JWTService {
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
	}
}

// RefreshTTL returns the refresh token lifetime for the rememberMe choice.
func RefreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return refreshTTLRemembered
	}
	return refreshTTLDefault
}

func (s *JWTService) GenerateAccessToken(email string) (string, error) {
	return s.generate(email, s.accessSecret, s.accessExpiry)
}

func (s *JWTService) GenerateRefreshToken(email string, rememberMe bool) (string, error) {
	return s.generate(email, s.refreshSecret, RefreshTTL(rememberMe))
}

func (s *JWTService) generate(email string, secret []byte, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Email: email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "peerride",
			Subject:   email,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret)
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret)
}

func (s *JWTService) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return secret, nil
	})

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
