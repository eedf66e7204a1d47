package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibiken/asynq"
	"github.com/peerprog/peerride/internal/auth"
	"github.com/peerprog/peerride/internal/database/models"
	"github.com/peerprog/peerride/internal/mailer"
	"gorm.io/gorm"
)

const otpDigits = 6

type Handler struct {
	db     *gorm.DB
	logger *slog.Logger
	mail   mailer.Sender
	otpTTL time.Duration
}

func NewHandler(db *gorm.DB, logger *slog.Logger, mail mailer.Sender, otpTTL time.Duration) *Handler {
	if otpTTL <= 0 {
		otpTTL = 15 * time.Minute
	}
	return &Handler{db: db, logger: logger, mail: mail, otpTTL: otpTTL}
}

func (h *Handler) RegisterHandlers(mux *asynq.ServeMux) {
	mux.HandleFunc(TypeEmailVerification, h.HandleEmailVerification)
	mux.HandleFunc(TypeOTPCleanup, h.HandleOTPCleanup)
}

// HandleEmailVerification generates a one-time code, stores its bcrypt hash
// and expiry on the user row, and emails the plaintext code. Only the hash
// ever reaches storage.
func (h *Handler) HandleEmailVerification(ctx context.Context, t *asynq.Task) error {
	var payload EmailVerificationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal payload: %w", err)
	}

	h.logger.Info("sending verification code", "user_id", payload.UserID)

	code, err := auth.GenerateNumericOTP(otpDigits)
	if err != nil {
		return fmt.Errorf("generating otp: %w", err)
	}
	hash, err := auth.HashPassword(code)
	if err != nil {
		return fmt.Errorf("hashing otp: %w", err)
	}

	expiresAt := time.Now().Add(h.otpTTL)
	err = h.db.WithContext(ctx).Model(&models.User{}).
		Where("id = ?", payload.UserID).
		Updates(map[string]interface{}{
			"otp_hash":       hash,
			"otp_expires_at": expiresAt,
		}).Error
	if err != nil {
		return fmt.Errorf("storing otp: %w", err)
	}

	body := fmt.Sprintf(
		"Your PeerRide verification code is: %s\nThe code expires in %d minutes.\n\nIf you didn't sign up, ignore this email.",
		code, int(h.otpTTL.Minutes()),
	)
	if err := h.mail.Send(payload.Email, "Verify your PeerRide account", body); err != nil {
		return fmt.Errorf("sending verification email: %w", err)
	}

	h.logger.Info("verification code sent", "user_id", payload.UserID)
	return nil
}

// HandleOTPCleanup clears OTP fields on rows whose codes expired. Runs on
// the schedule configured by OTP_CLEANUP_CRON.
func (h *Handler) HandleOTPCleanup(ctx context.Context, t *asynq.Task) error {
	result := h.db.WithContext(ctx).Model(&models.User{}).
		Where("otp_expires_at IS NOT NULL AND otp_expires_at < ?", time.Now()).
		Updates(map[string]interface{}{
			"otp_hash":       nil,
			"otp_expires_at": nil,
		})
	if result.Error != nil {
		return fmt.Errorf("clearing expired otps: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		h.logger.Info("cleared expired otps", "count", result.RowsAffected)
	}
	return nil
}
