package tasks

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
)

// Task type names
const (
	TypeEmailVerification = "email:verification"
	TypeOTPCleanup        = "otp:cleanup"
)

// EmailVerificationPayload identifies the user awaiting an OTP email.
type EmailVerificationPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
}

func NewEmailVerificationTask(payload EmailVerificationPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeEmailVerification, data), nil
}

// OTPCleanupPayload is empty - the cleanup sweeps all users.
type OTPCleanupPayload struct{}

func NewOTPCleanupTask() *asynq.Task {
	return asynq.NewTask(TypeOTPCleanup, nil)
}

// Enqueuer implements auth.VerificationEnqueuer over an asynq client.
type Enqueuer struct {
	client *asynq.Client
}

func NewEnqueuer(client *asynq.Client) *Enqueuer {
	if client == nil {
		return nil
	}
	return &Enqueuer{client: client}
}

func (e *Enqueuer) EnqueueEmailVerification(ctx context.Context, userID uuid.UUID, email string) error {
	task, err := NewEmailVerificationTask(EmailVerificationPayload{UserID: userID, Email: email})
	if err != nil {
		return err
	}
	_, err = e.client.EnqueueContext(ctx, task, asynq.Queue("critical"))
	return err
}
