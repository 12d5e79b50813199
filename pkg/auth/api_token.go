package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

type APITokenClaims struct {
	jwt.RegisteredClaims
	UserID uint   `json:"user_id"`
	Name   string `json:"name"`
}

// APITokenManager signs and validates the HS256 bearer tokens the admin
// API expects.
type APITokenManager struct {
	signingKey []byte
	ttl        time.Duration
}

func NewAPITokenManager(signingKey []byte, ttl time.Duration) *APITokenManager {
	return &APITokenManager{signingKey: signingKey, ttl: ttl}
}

func (m *APITokenManager) Generate(userID uint, name string) (string, error) {
	claims := APITokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "clientdesk",
		},
		UserID: userID,
		Name:   name,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.signingKey)
}

func (m *APITokenManager) Validate(tokenString string) (*APITokenClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &APITokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		return m.signingKey, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*APITokenClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
