package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"fmt"
	"math/big"
	"sync"
	"time"
)

type otpEntry struct {
	code      string
	expiresAt time.Time
}

// OTPStore keeps pending signup verification codes in memory with a TTL.
// Codes are single-use: a successful verification consumes the entry.
type OTPStore struct {
	mu      sync.Mutex
	entries map[string]otpEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewOTPStore(ttl time.Duration) *OTPStore {
	return &OTPStore{
		entries: make(map[string]otpEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Issue generates a 6-digit code for the email, replacing any pending one.
func (s *OTPStore) Issue(email string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	code := fmt.Sprintf("%06d", n.Int64())

	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[email] = otpEntry{code: code, expiresAt: s.now().Add(s.ttl)}
	return code, nil
}

// Verify checks the code for the email and consumes it on success.
func (s *OTPStore) Verify(email, code string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[email]
	if !ok || s.now().After(entry.expiresAt) {
		return false
	}
	if subtle.ConstantTimeCompare([]byte(entry.code), []byte(code)) != 1 {
		return false
	}
	delete(s.entries, email)
	return true
}
