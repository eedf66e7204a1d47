package dto

import (
	"time"

	"github.com/peerprog/peerride/internal/database/models"
)

type RegisterRequest struct {
	Name        string `json:"name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	RememberMe  bool   `json:"rememberMe"`
	ESign       string `json:"eSign"`
	CurrentStep int    `json:"currentStep"`
}

func (r RegisterRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Name == "" {
		errors["name"] = "Username is required"
	}
	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}
	if r.ESign == "" {
		errors["eSign"] = "Missing e-sign"
	}

	return errors
}

type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RememberMe bool   `json:"rememberMe"`
}

func (r LoginRequest) Validate() map[string]string {
	errors := make(map[string]string)

	if r.Email == "" {
		errors["email"] = "Email is required"
	}
	if r.Password == "" {
		errors["password"] = "Password is required"
	}

	return errors
}

type VerifyEmailRequest struct {
	ID           string `json:"id"`
	UniqueString string `json:"uniqueString"`
	CurrentStep  int    `json:"currentStep"`
}

// UserDTO is the sanitized user record: no password hash, refresh token or
// OTP fields ever appear here. ESign carries the decrypted artifact.
type UserDTO struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	OrganizationID string    `json:"organization_id,omitempty"`
	Role           string    `json:"role"`
	RoleCode       string    `json:"role_code"`
	IsRegistered   bool      `json:"is_registered"`
	ESign          string    `json:"e_sign,omitempty"`
	CurrentStep    int       `json:"current_step"`
	Verified       bool      `json:"verified"`
	CreatedAt      time.Time `json:"created_at"`
}

func NewUserDTO(user *models.User, eSign string) UserDTO {
	d := UserDTO{
		ID:           user.ID.String(),
		Name:         user.Name,
		Email:        user.Email,
		Role:         user.Role,
		RoleCode:     user.RoleCode,
		IsRegistered: user.IsRegistered,
		ESign:        eSign,
		CurrentStep:  user.CurrentStep,
		Verified:     user.Verified,
		CreatedAt:    user.CreatedAt,
	}
	if user.OrganizationID != nil {
		d.OrganizationID = user.OrganizationID.String()
	}
	return d
}

type RegisterResponse struct {
	OTPStatus    string  `json:"otpStatus"`
	Message      string  `json:"message"`
	Token        string  `json:"token"`
	RefreshToken string  `json:"refresh_token"`
	UserInfo     UserDTO `json:"userInfo"`
}

type SessionResponse struct {
	Token    string  `json:"token"`
	UserInfo UserDTO `json:"userInfo"`
}

type IsAuthenticatedResponse struct {
	IsAuthenticated bool `json:"isAuthenticated"`
}

type VerifyEmailResponse struct {
	Verified bool    `json:"verified"`
	UserInfo UserDTO `json:"userInfo"`
}
