package httpapi

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"

	"chat-relay/auth"
	"chat-relay/errors"
)

type contextKey string

const userIDKey contextKey = "user_id"

// UserID extracts the authenticated caller from a request passed through
// Authenticated.
func UserID(r *http.Request) string {
	userID, _ := r.Context().Value(userIDKey).(string)
	return userID
}

// Authenticated rejects requests without a valid bearer token and stores
// the caller's user id in the request context.
func Authenticated(tokens *auth.TokenManager, next httprouter.Handle) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, params httprouter.Params) {
		raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		if raw == "" {
			writeError(w, errors.ErrNotAuthenticated)
			return
		}
		claims, err := tokens.Validate(raw)
		if err != nil {
			writeError(w, errors.ErrInvalidCredentials)
			return
		}

		ctx := context.WithValue(r.Context(), userIDKey, claims.UserID)
		next(w, r.WithContext(ctx), params)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type errorResponse struct {
	Code    errors.Kind `json:"code"`
	Message string      `json:"message"`
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, errors.HTTPStatus(err), errorResponse{
		Code:    errors.KindOf(err),
		Message: err.Error(),
	})
}

func logError(log *slog.Logger, r *http.Request, err error) {
	log.Info("request failed",
		"method", r.Method,
		"path", r.URL.Path,
		"code", errors.KindOf(err),
		"error", err)
}
