package services

import (
	"fmt"
	"log/slog"

	"chat-relay/auth"
	"chat-relay/domain"
	"chat-relay/errors"
	"chat-relay/repositories"
)

type Token string

type IAuthService interface {
	Signup(req auth.SignupRequest) (domain.User, error)
	Verify(email, code string) (Token, domain.User, error)
	Login(email, password string) (Token, domain.User, error)
	Profile(userID string) (domain.User, error)
}

// Mailer delivers verification codes. SMTP transport is out of scope, so
// the default implementation logs the code.
type Mailer interface {
	SendVerification(email, code string) error
}

type LogMailer struct {
	Log *slog.Logger
}

func (m LogMailer) SendVerification(email, code string) error {
	m.Log.Info("verification code issued", "email", email, "code", code)
	return nil
}

type AuthService struct {
	users  repositories.IUserRepository
	tokens *auth.TokenManager
	otp    *auth.OTPStore
	mailer Mailer
}

func NewAuthService(users repositories.IUserRepository, tokens *auth.TokenManager,
	otp *auth.OTPStore, mailer Mailer) IAuthService {
	return &AuthService{users: users, tokens: tokens, otp: otp, mailer: mailer}
}

// Signup validates the request, stores the user unverified, and issues a
// one-time code through the mailer. Validation runs before any expensive
// cryptographic operation.
func (s *AuthService) Signup(req auth.SignupRequest) (domain.User, error) {
	if err := auth.ValidateSignup(req); err != nil {
		return domain.User{}, fmt.Errorf("%w: %v", errors.ErrInvalidPayload, err)
	}

	hashedPassword, err := auth.HashPassword(req.Password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	user := domain.User{
		Name:         req.Name,
		FirstName:    req.FirstName,
		Email:        req.Email,
		Country:      req.Country,
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
	}
	userID, err := s.users.Create(user)
	if err != nil {
		return domain.User{}, err // Propagates ErrUserAlreadyExists if email is taken
	}
	user.ID = userID

	code, err := s.otp.Issue(req.Email)
	if err != nil {
		return domain.User{}, err
	}
	if err := s.mailer.SendVerification(req.Email, code); err != nil {
		return domain.User{}, err
	}

	user.PasswordHash = ""
	return user, nil
}

// Verify consumes the one-time code, marks the user verified, and issues
// the first session token.
func (s *AuthService) Verify(email, code string) (Token, domain.User, error) {
	if !s.otp.Verify(email, code) {
		return "", domain.User{}, errors.ErrInvalidOTP
	}

	if err := s.users.SetVerified(email); err != nil {
		return "", domain.User{}, err
	}
	user, err := s.users.GetByEmail(email)
	if err != nil {
		return "", domain.User{}, err
	}

	token, err := s.tokens.Generate(user.ID, user.Roles)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}

	user.PasswordHash = ""
	return Token(token), user, nil
}

// Profile returns the account behind a session, without the credential hash.
func (s *AuthService) Profile(userID string) (domain.User, error) {
	user, err := s.users.GetByID(userID)
	if err != nil {
		return domain.User{}, err
	}
	user.PasswordHash = ""
	return user, nil
}

func (s *AuthService) Login(email, password string) (Token, domain.User, error) {
	user, err := s.users.GetByEmail(email)
	if err != nil {
		// Generic error to prevent user enumeration attacks
		return "", domain.User{}, errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", domain.User{}, errors.ErrInvalidCredentials
	}
	if !user.Verified {
		return "", domain.User{}, errors.ErrUserNotVerified
	}

	token, err := s.tokens.Generate(user.ID, user.Roles)
	if err != nil {
		return "", domain.User{}, errors.ErrTokenGeneration
	}

	user.PasswordHash = ""
	return Token(token), user, nil
}
