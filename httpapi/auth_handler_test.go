package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/services"
)

// stubAuthService scripts the service layer so handler tests only cover
// decoding, status codes, and response shape.
type stubAuthService struct {
	signup  func(req auth.SignupRequest) (domain.User, error)
	verify  func(email, code string) (services.Token, domain.User, error)
	login   func(email, password string) (services.Token, domain.User, error)
	profile func(userID string) (domain.User, error)
}

func (s stubAuthService) Signup(req auth.SignupRequest) (domain.User, error) {
	return s.signup(req)
}

func (s stubAuthService) Verify(email, code string) (services.Token, domain.User, error) {
	return s.verify(email, code)
}

func (s stubAuthService) Login(email, password string) (services.Token, domain.User, error) {
	return s.login(email, password)
}

func (s stubAuthService) Profile(userID string) (domain.User, error) {
	return s.profile(userID)
}

// asUser injects the caller id the way Authenticated does.
func asUser(r *http.Request, userID string) *http.Request {
	ctx := context.WithValue(r.Context(), userIDKey, userID)
	return r.WithContext(ctx)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAuthHandler_Signup(t *testing.T) {
	t.Run("should return 201 with the created user", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			signup: func(r auth.SignupRequest) (domain.User, error) {
				return domain.User{ID: "user-1", Email: r.Email}, nil
			},
		})

		body := `{"name":"Martin","firstName":"Alice","email":"alice@example.com","country":"FR","password":"Sup3rSecret"}`
		r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Signup(w, r, nil)

		req.Equal(http.StatusCreated, w.Code)
		var response struct {
			User userResponse `json:"user"`
		}
		req.NoError(json.Unmarshal(w.Body.Bytes(), &response))
		req.Equal("user-1", response.User.ID)
		req.Equal("alice@example.com", response.User.Email)
	})

	t.Run("should return 400 on malformed JSON", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{})

		r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader("{not json"))
		w := httptest.NewRecorder()

		handler.Signup(w, r, nil)

		req.Equal(http.StatusBadRequest, w.Code)
	})

	t.Run("should return 400 on a duplicate email", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			signup: func(auth.SignupRequest) (domain.User, error) {
				return domain.User{}, errors.ErrUserAlreadyExists
			},
		})

		r := httptest.NewRequest(http.MethodPost, "/api/auth/signup", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.Signup(w, r, nil)

		req.Equal(http.StatusBadRequest, w.Code)
		var response errorResponse
		req.NoError(json.Unmarshal(w.Body.Bytes(), &response))
		req.Equal(errors.KindValidation, response.Code)
	})
}

func TestAuthHandler_Verify(t *testing.T) {
	t.Run("should return the session token on success", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			verify: func(email, code string) (services.Token, domain.User, error) {
				req.Equal("alice@example.com", email)
				req.Equal("123456", code)
				return "session-token", domain.User{ID: "user-1", Verified: true}, nil
			},
		})

		body := `{"email":"alice@example.com","otp":"123456"}`
		r := httptest.NewRequest(http.MethodPost, "/api/auth/verify", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Verify(w, r, nil)

		req.Equal(http.StatusOK, w.Code)
		var response struct {
			Token string `json:"token"`
		}
		req.NoError(json.Unmarshal(w.Body.Bytes(), &response))
		req.Equal("session-token", response.Token)
	})

	t.Run("should return 401 on a wrong code", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			verify: func(string, string) (services.Token, domain.User, error) {
				return "", domain.User{}, errors.ErrInvalidOTP
			},
		})

		r := httptest.NewRequest(http.MethodPost, "/api/auth/verify", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.Verify(w, r, nil)

		req.Equal(http.StatusUnauthorized, w.Code)
	})
}

func TestAuthHandler_Login(t *testing.T) {
	t.Run("should return 401 on bad credentials", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			login: func(string, string) (services.Token, domain.User, error) {
				return "", domain.User{}, errors.ErrInvalidCredentials
			},
		})

		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		handler.Login(w, r, nil)

		req.Equal(http.StatusUnauthorized, w.Code)
	})

	t.Run("should return the token for valid credentials", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			login: func(email, password string) (services.Token, domain.User, error) {
				return "session-token", domain.User{ID: "user-1"}, nil
			},
		})

		body := `{"email":"alice@example.com","password":"Sup3rSecret"}`
		r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(body))
		w := httptest.NewRecorder()

		handler.Login(w, r, nil)

		req.Equal(http.StatusOK, w.Code)
	})
}

func TestAuthHandler_Profile(t *testing.T) {
	t.Run("should return the caller's own account", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			profile: func(userID string) (domain.User, error) {
				req.Equal("user-1", userID)
				return domain.User{ID: "user-1", Email: "alice@example.com"}, nil
			},
		})

		r := asUser(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), "user-1")
		w := httptest.NewRecorder()

		handler.Profile(w, r, nil)

		req.Equal(http.StatusOK, w.Code)
		var response userResponse
		req.NoError(json.Unmarshal(w.Body.Bytes(), &response))
		req.Equal("alice@example.com", response.Email)
	})

	t.Run("should return 404 when the account vanished", func(t *testing.T) {
		req := require.New(t)
		handler := NewAuthHandler(testLogger(), stubAuthService{
			profile: func(string) (domain.User, error) {
				return domain.User{}, errors.ErrUserNotFound
			},
		})

		r := asUser(httptest.NewRequest(http.MethodGet, "/api/users/profile", nil), "user-1")
		w := httptest.NewRecorder()

		handler.Profile(w, r, nil)

		req.Equal(http.StatusNotFound, w.Code)
	})
}
