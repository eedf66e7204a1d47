package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/peerprog/peerride/internal/api/dto"
	"github.com/peerprog/peerride/internal/auth"
	"github.com/peerprog/peerride/internal/database/models"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	authService *auth.Service
}

func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req dto.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Register(r.Context(), auth.RegisterInput{
		Name:        req.Name,
		Email:       req.Email,
		Password:    req.Password,
		RememberMe:  req.RememberMe,
		ESign:       req.ESign,
		CurrentStep: req.CurrentStep,
	})
	if err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			writeJSON(w, http.StatusConflict, dto.ErrorResponse{Message: "User already exists with this email"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	setRefreshCookie(w, resp.RefreshToken, req.RememberMe)

	writeJSON(w, http.StatusCreated, dto.RegisterResponse{
		OTPStatus:    resp.OTPStatus,
		Message:      fmt.Sprintf("New user %s created successfully", resp.User.Name),
		Token:        resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		UserInfo:     h.userDTO(resp.User),
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req dto.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if errs := req.Validate(); len(errs) > 0 {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Validation failed", Details: errs})
		return
	}

	resp, err := h.authService.Login(r.Context(), auth.LoginInput{
		Email:      req.Email,
		Password:   req.Password,
		RememberMe: req.RememberMe,
	})
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			// One message for both unknown email and wrong password.
			writeJSON(w, http.StatusUnauthorized, dto.ErrorResponse{Message: "Password or email is incorrect"})
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	setRefreshCookie(w, resp.RefreshToken, req.RememberMe)

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Token:    resp.AccessToken,
		UserInfo: h.userDTO(resp.User),
	})
}

// Authorize answers any authenticated call that made it past the access
// token middleware.
func (h *AuthHandler) Authorize(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, true)
}

func (h *AuthHandler) IsAuthenticated(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	if _, err := h.authService.UserForRefreshToken(r.Context(), cookie.Value); err != nil {
		if errors.Is(err, auth.ErrTokenMismatch) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.IsAuthenticatedResponse{IsAuthenticated: true})
}

func (h *AuthHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		w.WriteHeader(http.StatusUnauthorized)
		return
	}

	token, user, err := h.authService.RefreshAccess(r.Context(), cookie.Value)
	if err != nil {
		if errors.Is(err, auth.ErrTokenMismatch) {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, dto.SessionResponse{
		Token:    token,
		UserInfo: h.userDTO(user),
	})
}

// Logout always ends in 204. With no cookie there is nothing to do; with a
// cookie the stored refresh token is nulled out when an owner exists, and
// the cookie is cleared either way.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil || cookie.Value == "" {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.authService.Logout(r.Context(), cookie.Value); err != nil && !errors.Is(err, auth.ErrTokenMismatch) {
		writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		return
	}

	clearRefreshCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) VerifyEmail(w http.ResponseWriter, r *http.Request) {
	var req dto.VerifyEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Error: "Invalid request body"})
		return
	}

	if req.ID == "" {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "User id is missing"})
		return
	}
	id, err := uuid.Parse(req.ID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "User id is invalid"})
		return
	}

	user, err := h.authService.VerifyEmail(r.Context(), id, req.UniqueString, req.CurrentStep)
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrUserNotFound):
			writeJSON(w, http.StatusForbidden, dto.ErrorResponse{
				Message: "Account record doesn't exist or has been verified already. Please sign up or login",
			})
		case errors.Is(err, auth.ErrOTPExpired):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Otp has expired"})
		case errors.Is(err, auth.ErrOTPMismatch):
			writeJSON(w, http.StatusBadRequest, dto.ErrorResponse{Message: "Otp is incorrect"})
		default:
			writeJSON(w, http.StatusInternalServerError, dto.ErrorResponse{Error: err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, dto.VerifyEmailResponse{
		Verified: true,
		UserInfo: h.userDTO(user),
	})
}

// userDTO builds the sanitized user record with the e-sign decrypted. A
// decryption failure degrades to an empty artifact rather than failing the
// whole response.
func (h *AuthHandler) userDTO(user *models.User) dto.UserDTO {
	eSign, err := h.authService.DecryptESign(user)
	if err != nil {
		eSign = ""
	}
	return dto.NewUserDTO(user, eSign)
}

func setRefreshCookie(w http.ResponseWriter, token string, rememberMe bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    token,
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   int(auth.RefreshTTL(rememberMe).Seconds()),
	})
}

func clearRefreshCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
		MaxAge:   -1,
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
