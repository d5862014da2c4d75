// Package errors defines the sentinel errors shared across layers and the
// Kind taxonomy pushed to socket clients, so they can branch on a code
// instead of string-matching the message.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies a failure for the wire. Every error crossing a handler
// boundary maps to exactly one Kind.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindAuthorization  Kind = "authorization"
	KindValidation     Kind = "validation"
	KindNotFound       Kind = "not_found"
	KindPersistence    Kind = "persistence"
)

var (
	ErrNotAuthenticated   = fmt.Errorf("connection is not authenticated")
	ErrAlreadyBound       = fmt.Errorf("connection is bound to another user")
	ErrUnknownUser        = fmt.Errorf("unknown user")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrGroupNotFound      = fmt.Errorf("group not found")
	ErrUserNotInGroup     = fmt.Errorf("user not in group")
	ErrNotGroupCreator    = fmt.Errorf("only the group creator may add members")
	ErrEmptyContent       = fmt.Errorf("message content is empty")
	ErrInvalidPayload     = fmt.Errorf("malformed payload")
	ErrAmbiguousTarget    = fmt.Errorf("message must have either a recipient or a group, but not both")
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidCredentials = fmt.Errorf("invalid credentials")
	ErrUserNotVerified    = fmt.Errorf("user is not verified")
	ErrInvalidOTP         = fmt.Errorf("invalid or expired verification code")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
	ErrWorkerPanic        = fmt.Errorf("worker panic")
)

// KindOf maps an error to its Kind. Errors we did not mint ourselves come
// from the stores, so they default to KindPersistence.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, ErrNotAuthenticated),
		errors.Is(err, ErrUnknownUser),
		errors.Is(err, ErrInvalidCredentials),
		errors.Is(err, ErrUserNotVerified),
		errors.Is(err, ErrInvalidOTP):
		return KindAuthentication
	case errors.Is(err, ErrUserNotInGroup),
		errors.Is(err, ErrNotGroupCreator):
		return KindAuthorization
	case errors.Is(err, ErrEmptyContent),
		errors.Is(err, ErrInvalidPayload),
		errors.Is(err, ErrAmbiguousTarget),
		errors.Is(err, ErrAlreadyBound),
		errors.Is(err, ErrInvalidPassword),
		errors.Is(err, ErrUserAlreadyExists):
		return KindValidation
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrGroupNotFound):
		return KindNotFound
	default:
		return KindPersistence
	}
}

// HTTPStatus translates an error for the REST surface.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindAuthentication:
		return http.StatusUnauthorized
	case KindAuthorization:
		return http.StatusForbidden
	case KindValidation:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
