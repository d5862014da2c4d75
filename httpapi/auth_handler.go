package httpapi

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/julienschmidt/httprouter"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
)

type AuthHandler struct {
	log  *slog.Logger
	auth services.IAuthService
}

func NewAuthHandler(log *slog.Logger, authService services.IAuthService) *AuthHandler {
	return &AuthHandler{log: log, auth: authService}
}

type userResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	FirstName string `json:"firstName"`
	Email     string `json:"email"`
	Country   string `json:"country"`
	Verified  bool   `json:"verified"`
}

func toUserResponse(user domain.User) userResponse {
	return userResponse{
		ID:        user.ID,
		Name:      user.Name,
		FirstName: user.FirstName,
		Email:     user.Email,
		Country:   user.Country,
		Verified:  user.Verified,
	}
}

// Signup registers an unverified account and triggers the verification
// code delivery.
func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req auth.SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidPayload)
		return
	}

	user, err := h.auth.Signup(req)
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"message": "user created, check your email for the verification code",
		"user":    toUserResponse(user),
	})
}

// Profile returns the authenticated caller's own account.
func (h *AuthHandler) Profile(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	user, err := h.auth.Profile(UserID(r))
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toUserResponse(user))
}

type verifyRequest struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (h *AuthHandler) Verify(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidPayload)
		return
	}

	token, user, err := h.auth.Verify(req.Email, req.OTP)
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": string(token),
		"user":  toUserResponse(user),
	})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, errors.ErrInvalidPayload)
		return
	}

	token, user, err := h.auth.Login(req.Email, req.Password)
	if err != nil {
		logError(h.log, r, err)
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"token": string(token),
		"user":  toUserResponse(user),
	})
}
