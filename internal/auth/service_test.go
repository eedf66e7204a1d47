package auth_test

import (
	"context"
	"testing"
	"time"

	"github.com/peerprog/peerride/internal/auth"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterCreatesUserAndSession(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	result, err := tc.AuthService.Register(ctx, auth.RegisterInput{
		Name:        "Alice",
		Email:       "Alice@Example.com",
		Password:    "secret123",
		RememberMe:  true,
		ESign:       "alice-signature",
		CurrentStep: 0,
	})
	require.NoError(t, err)

	assert.Equal(t, "alice@example.com", result.User.Email)
	assert.Equal(t, models.RoleCodeIncompleteProfile, result.User.RoleCode)
	assert.Equal(t, 1, result.User.CurrentStep)
	assert.Equal(t, auth.OTPStatusPending, result.OTPStatus)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)

	// Password never stored in the clear; e-sign encrypted at rest.
	var stored models.User
	require.NoError(t, tc.DB.First(&stored, "email = ?", "alice@example.com").Error)
	assert.NotEqual(t, "secret123", stored.PasswordHash)
	assert.NotEqual(t, "alice-signature", stored.ESign)

	eSign, err := tc.AuthService.DecryptESign(&stored)
	require.NoError(t, err)
	assert.Equal(t, "alice-signature", eSign)

	// Verification email enqueued for the new account.
	require.Len(t, tc.Enqueuer.Calls, 1)
	assert.Equal(t, stored.ID, tc.Enqueuer.Calls[0].UserID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	tc.CreateUser("taken@example.com", nil)

	_, err := tc.AuthService.Register(ctx, auth.RegisterInput{
		Name:     "Bob",
		Email:    "Taken@Example.com",
		Password: "secret123",
		ESign:    "sig",
	})
	assert.ErrorIs(t, err, auth.ErrUserExists)
}

func TestLoginWrongPasswordAndUnknownEmail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	tc.CreateUser("carol@example.com", nil)

	_, err := tc.AuthService.Login(ctx, auth.LoginInput{Email: "carol@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, err = tc.AuthService.Login(ctx, auth.LoginInput{Email: "nobody@example.com", Password: testutil.TestPassword})
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

func TestLoginRotatesRefreshToken(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	user := tc.CreateUser("dave@example.com", nil)

	first, err := tc.AuthService.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
	require.NoError(t, err)
	// Signing again a second later yields a different token.
	time.Sleep(1100 * time.Millisecond)
	second, err := tc.AuthService.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
	require.NoError(t, err)
	require.NotEqual(t, first.RefreshToken, second.RefreshToken)

	// Only the latest token resolves; the rotated-out one is dead.
	_, err = tc.AuthService.UserForRefreshToken(ctx, second.RefreshToken)
	assert.NoError(t, err)
	_, err = tc.AuthService.UserForRefreshToken(ctx, first.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenMismatch)
}

func TestLogoutInvalidatesRefreshToken(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	user := tc.CreateUser("erin@example.com", nil)
	session, err := tc.AuthService.Login(ctx, auth.LoginInput{Email: user.Email, Password: testutil.TestPassword})
	require.NoError(t, err)

	require.NoError(t, tc.AuthService.Logout(ctx, session.RefreshToken))

	_, err = tc.AuthService.UserForRefreshToken(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenMismatch)

	_, _, err = tc.AuthService.RefreshAccess(ctx, session.RefreshToken)
	assert.ErrorIs(t, err, auth.ErrTokenMismatch)

	// A second logout finds no owner.
	assert.ErrorIs(t, tc.AuthService.Logout(ctx, session.RefreshToken), auth.ErrTokenMismatch)
}

func TestVerifyEmail(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	user := tc.CreateUser("frank@example.com", nil)

	hash, err := auth.HashPassword("123456")
	require.NoError(t, err)
	expiry := time.Now().Add(10 * time.Minute)
	require.NoError(t, tc.DB.Model(user).Updates(map[string]interface{}{
		"otp_hash":       hash,
		"otp_expires_at": expiry,
	}).Error)

	_, err = tc.AuthService.VerifyEmail(ctx, user.ID, "654321", 1)
	assert.ErrorIs(t, err, auth.ErrOTPMismatch)

	verified, err := tc.AuthService.VerifyEmail(ctx, user.ID, "123456", 1)
	require.NoError(t, err)
	assert.True(t, verified.Verified)
	assert.Equal(t, 2, verified.CurrentStep)
	assert.Nil(t, verified.OTPHash)

	// The consumed code cannot be replayed.
	_, err = tc.AuthService.VerifyEmail(ctx, user.ID, "123456", 1)
	assert.ErrorIs(t, err, auth.ErrOTPExpired)
}

func TestVerifyEmailExpiredCode(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	user := tc.CreateUser("grace@example.com", nil)

	hash, err := auth.HashPassword("123456")
	require.NoError(t, err)
	expiry := time.Now().Add(-time.Minute)
	require.NoError(t, tc.DB.Model(user).Updates(map[string]interface{}{
		"otp_hash":       hash,
		"otp_expires_at": expiry,
	}).Error)

	_, err = tc.AuthService.VerifyEmail(ctx, user.ID, "123456", 1)
	assert.ErrorIs(t, err, auth.ErrOTPExpired)

	// Expiry clears the stored fields.
	var stored models.User
	require.NoError(t, tc.DB.First(&stored, "id = ?", user.ID).Error)
	assert.Nil(t, stored.OTPHash)
	assert.Nil(t, stored.OTPExpiresAt)
}

func TestRefreshTokenSubjectCrossCheck(t *testing.T) {
	tc := testutil.NewTestContext(t)
	ctx := context.Background()

	user := tc.CreateUser("henry@example.com", nil)

	// A token signed for a different subject planted on the user row must
	// not resolve.
	forged, err := tc.JWT.GenerateRefreshToken("other@example.com", false)
	require.NoError(t, err)
	require.NoError(t, tc.DB.Model(user).Update("refresh_token", forged).Error)

	_, err = tc.AuthService.UserForRefreshToken(ctx, forged)
	assert.ErrorIs(t, err, auth.ErrTokenMismatch)
}
