package tasks_test

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/peerprog/peerride/internal/auth"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/internal/tasks"
	"github.com/peerprog/peerride/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSender struct {
	sent []sentMail
	err  error
}

type sentMail struct {
	to      string
	subject string
	body    string
}

func (f *fakeSender) Send(to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to: to, subject: subject, body: body})
	return nil
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHandleEmailVerification(t *testing.T) {
	tc := testutil.NewTestContext(t)
	user := tc.CreateUser("otp@example.com", nil)

	mail := &fakeSender{}
	handler := tasks.NewHandler(tc.DB, discardLogger(), mail, 15*time.Minute)

	task, err := tasks.NewEmailVerificationTask(tasks.EmailVerificationPayload{
		UserID: user.ID,
		Email:  user.Email,
	})
	require.NoError(t, err)

	require.NoError(t, handler.HandleEmailVerification(context.Background(), task))

	require.Len(t, mail.sent, 1)
	assert.Equal(t, "otp@example.com", mail.sent[0].to)

	// The mailed code is six digits and only its hash reaches storage.
	var stored models.User
	require.NoError(t, tc.DB.First(&stored, "id = ?", user.ID).Error)
	require.NotNil(t, stored.OTPHash)
	require.NotNil(t, stored.OTPExpiresAt)
	assert.True(t, stored.OTPExpiresAt.After(time.Now()))

	code := extractCode(t, mail.sent[0].body)
	assert.NotEqual(t, code, *stored.OTPHash)
	assert.True(t, auth.CheckPassword(code, *stored.OTPHash))
}

// extractCode pulls the six-digit code out of the email body.
func extractCode(t *testing.T, body string) string {
	t.Helper()
	for i := 0; i+6 <= len(body); i++ {
		candidate := body[i : i+6]
		digits := true
		for _, c := range candidate {
			if c < '0' || c > '9' {
				digits = false
				break
			}
		}
		if digits {
			return candidate
		}
	}
	t.Fatal("no six-digit code in email body")
	return ""
}

func TestHandleOTPCleanup(t *testing.T) {
	tc := testutil.NewTestContext(t)

	expired := tc.CreateUser("expired@example.com", nil)
	fresh := tc.CreateUser("fresh@example.com", nil)

	hash, err := auth.HashPassword("123456")
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	future := time.Now().Add(time.Hour)

	require.NoError(t, tc.DB.Model(expired).Updates(map[string]interface{}{
		"otp_hash":       hash,
		"otp_expires_at": past,
	}).Error)
	require.NoError(t, tc.DB.Model(fresh).Updates(map[string]interface{}{
		"otp_hash":       hash,
		"otp_expires_at": future,
	}).Error)

	handler := tasks.NewHandler(tc.DB, discardLogger(), &fakeSender{}, 15*time.Minute)
	require.NoError(t, handler.HandleOTPCleanup(context.Background(), tasks.NewOTPCleanupTask()))

	var expiredStored, freshStored models.User
	require.NoError(t, tc.DB.First(&expiredStored, "id = ?", expired.ID).Error)
	require.NoError(t, tc.DB.First(&freshStored, "id = ?", fresh.ID).Error)

	assert.Nil(t, expiredStored.OTPHash)
	assert.Nil(t, expiredStored.OTPExpiresAt)
	assert.NotNil(t, freshStored.OTPHash)
	assert.NotNil(t, freshStored.OTPExpiresAt)
}

func TestHandleEmailVerificationBadPayload(t *testing.T) {
	tc := testutil.NewTestContext(t)
	handler := tasks.NewHandler(tc.DB, discardLogger(), &fakeSender{}, 15*time.Minute)

	task := asynq.NewTask(tasks.TypeEmailVerification, []byte("not json"))
	assert.Error(t, handler.HandleEmailVerification(context.Background(), task))
}
