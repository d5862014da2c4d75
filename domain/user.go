package domain

import "time"

// User is an account holder. Verified stays false until the signup OTP
// has been confirmed.
type User struct {
	ID           string
	Name         string
	FirstName    string
	Email        string
	Country      string
	PasswordHash string
	Roles        []string
	Verified     bool
	CreatedAt    time.Time
}
