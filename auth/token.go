package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// CustomClaims defines the structure of the data stored inside the JWT.
type CustomClaims struct {
	UserID string   `json:"user_id"`
	Roles  []string `json:"roles"`
	jwt.RegisteredClaims
}

// TokenManager signs and validates session tokens. The secret comes from
// configuration; it is never hardcoded.
type TokenManager struct {
	secret   []byte
	duration time.Duration
}

func NewTokenManager(secret string, duration time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), duration: duration}
}

// Generate creates a signed JWT for a specific user.
func (t *TokenManager) Generate(userID string, roles []string) (string, error) {
	now := time.Now()
	claims := &CustomClaims{
		UserID: userID,
		Roles:  roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "chat-relay",
		},
	}

	// HS256: HMAC with SHA256, symmetric secret.
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(t.secret)
}

// Validate parses and checks the signature and expiration of a JWT string.
func (t *TokenManager) Validate(tokenString string) (*CustomClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &CustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return t.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*CustomClaims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}
