package models

import (
	"time"

	"github.com/google/uuid"
)

// Role assigned at registration, before onboarding completes.
const (
	RoleNameIncompleteProfile = "incomplete profile"
	RoleCodeIncompleteProfile = "R0"
)

// User holds identity and session state. Credential fields (password hash,
// refresh token, OTP hash and expiry) never serialize to JSON; the e-sign
// artifact is stored age-encrypted and exposed only through the user DTO.
type User struct {
	Base
	Name         string  `gorm:"not null" json:"name"`
	Email        string  `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"`
	RefreshToken *string `gorm:"index" json:"-"`

	OrganizationID *uuid.UUID `gorm:"type:uuid;index" json:"organization_id,omitempty"`
	Role           string     `json:"role"`
	RoleCode       string     `json:"role_code"`
	IsRegistered   bool       `gorm:"default:false" json:"is_registered"`
	ESign          string     `json:"-"` // age-encrypted, base64
	CurrentStep    int        `json:"current_step"`

	OTPHash      *string    `json:"-"`
	OTPExpiresAt *time.Time `json:"-"`
	Verified     bool       `gorm:"default:false" json:"verified"`

	Organization *Organization `gorm:"foreignKey:OrganizationID" json:"organization,omitempty"`
}

func (User) TableName() string {
	return "users"
}
