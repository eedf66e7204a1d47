package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/pkg/crypto"
	"gorm.io/gorm"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists with this email")
	// ErrInvalidCredentials covers both unknown email and wrong password, so
	// the response never reveals which one failed.
	ErrInvalidCredentials = errors.New("password or email is incorrect")
	// ErrTokenMismatch covers every refresh-token failure: no owner in the
	// database, bad signature, expired token, or subject/owner mismatch.
	ErrTokenMismatch = errors.New("refresh token is not valid for any user")
	ErrOTPExpired    = errors.New("otp has expired")
	ErrOTPMismatch   = errors.New("otp is incorrect")
)

// OTP delivery status reported back to the registration caller.
const (
	OTPStatusPending = "PENDING"
	OTPStatusFailed  = "FAILED"
)

type Service struct {
	db        *gorm.DB
	jwt       *JWTService
	encryptor *crypto.Encryptor
	enqueuer  VerificationEnqueuer
}

func NewService(db *gorm.DB, jwt *JWTService, encryptor *crypto.Encryptor, enqueuer VerificationEnqueuer) *Service {
	return &Service{db: db, jwt: jwt, encryptor: encryptor, enqueuer: enqueuer}
}

type RegisterInput struct {
	Name        string
	Email       string
	Password    string
	RememberMe  bool
	ESign       string
	CurrentStep int
}

type LoginInput struct {
	Email      string
	Password   string
	RememberMe bool
}

type Session struct {
	AccessToken  string
	RefreshToken string
	User         *models.User
}

type RegisterResult struct {
	Session
	OTPStatus string
}

func (s *Service) Register(ctx context.Context, input RegisterInput) (*RegisterResult, error) {
	email := strings.ToLower(input.Email)

	var existing models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&existing).Error; err == nil {
		return nil, ErrUserExists
	}

	hash, err := HashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	accessToken, err := s.jwt.GenerateAccessToken(email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(email, input.RememberMe)
	if err != nil {
		return nil, err
	}

	eSign, err := s.encryptor.EncryptString(input.ESign)
	if err != nil {
		return nil, err
	}

	user := models.User{
		Name:         input.Name,
		Email:        email,
		PasswordHash: hash,
		RefreshToken: &refreshToken,
		Role:         models.RoleNameIncompleteProfile,
		RoleCode:     models.RoleCodeIncompleteProfile,
		IsRegistered: false,
		ESign:        eSign,
		CurrentStep:  input.CurrentStep + 1,
	}
	if err := s.db.WithContext(ctx).Create(&user).Error; err != nil {
		return nil, err
	}

	otpStatus := OTPStatusPending
	if s.enqueuer == nil {
		otpStatus = OTPStatusFailed
	} else if err := s.enqueuer.EnqueueEmailVerification(ctx, user.ID, user.Email); err != nil {
		otpStatus = OTPStatusFailed
	}

	return &RegisterResult{
		Session: Session{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			User:         &user,
		},
		OTPStatus: otpStatus,
	}, nil
}

func (s *Service) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.ToLower(input.Email)

	var user models.User
	if err := s.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !CheckPassword(input.Password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.Email)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.jwt.GenerateRefreshToken(user.Email, input.RememberMe)
	if err != nil {
		return nil, err
	}

	if err := s.db.WithContext(ctx).Model(&user).Update("refresh_token", refreshToken).Error; err != nil {
		return nil, err
	}
	user.RefreshToken = &refreshToken

	return &Session{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         &user,
	}, nil
}

// UserForRefreshToken resolves the owner of a refresh token, verifies the
// token's signature and expiry, and cross-checks that the token subject
// matches the owner's email. The server-side copy makes rotated or cleared
// tokens unusable even while their signature is still valid.
func (s *Service) UserForRefreshToken(ctx context.Context, token string) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).Where("refresh_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTokenMismatch
		}
		return nil, err
	}

	claims, err := s.jwt.ValidateRefreshToken(token)
	if err != nil {
		return nil, ErrTokenMismatch
	}
	if claims.Email != user.Email {
		return nil, ErrTokenMismatch
	}

	return &user, nil
}

// RefreshAccess mints a new access token for the refresh token's owner
// without rotating the refresh token itself.
func (s *Service) RefreshAccess(ctx context.Context, token string) (string, *models.User, error) {
	user, err := s.UserForRefreshToken(ctx, token)
	if err != nil {
		return "", nil, err
	}

	accessToken, err := s.jwt.GenerateAccessToken(user.Email)
	if err != nil {
		return "", nil, err
	}
	return accessToken, user, nil
}

// Logout clears the stored refresh token for its owner. ErrTokenMismatch
// means no user owns the token; the caller still clears the cookie.
func (s *Service) Logout(ctx context.Context, token string) error {
	var user models.User
	if err := s.db.WithContext(ctx).Where("refresh_token = ?", token).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTokenMismatch
		}
		return err
	}

	return s.db.WithContext(ctx).Model(&user).Update("refresh_token", nil).Error
}

// VerifyEmail checks the supplied one-time code against the stored hash.
// An expired or missing OTP clears the stored fields before failing.
func (s *Service) VerifyEmail(ctx context.Context, id uuid.UUID, code string, currentStep int) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if user.OTPHash == nil || user.OTPExpiresAt == nil || user.OTPExpiresAt.Before(time.Now()) {
		if err := s.clearOTP(ctx, &user); err != nil {
			return nil, err
		}
		return nil, ErrOTPExpired
	}

	if !CheckPassword(code, *user.OTPHash) {
		return nil, ErrOTPMismatch
	}

	updates := map[string]interface{}{
		"otp_hash":       nil,
		"otp_expires_at": nil,
		"verified":       true,
		"current_step":   currentStep + 1,
	}
	if err := s.db.WithContext(ctx).Model(&user).Updates(updates).Error; err != nil {
		return nil, err
	}

	user.OTPHash = nil
	user.OTPExpiresAt = nil
	user.Verified = true
	user.CurrentStep = currentStep + 1
	return &user, nil
}

func (s *Service) clearOTP(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Model(user).Updates(map[string]interface{}{
		"otp_hash":       nil,
		"otp_expires_at": nil,
	}).Error
}

func (s *Service) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

// DecryptESign recovers the plaintext e-sign artifact for responses.
func (s *Service) DecryptESign(user *models.User) (string, error) {
	if user.ESign == "" {
		return "", nil
	}
	return s.encryptor.DecryptString(user.ESign)
}
