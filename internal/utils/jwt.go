package utils

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// SessionClaims is the identity payload of a session token.
type SessionClaims struct {
	UserID    string `json:"id"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	IsAdmin   bool   `json:"is_admin"`
	LoginKind string `json:"login_kind"`
	jwt.RegisteredClaims
}

// TokenIdentity carries the claim values a token is minted from.
type TokenIdentity struct {
	UserID    uuid.UUID
	Email     string
	Phone     string
	IsAdmin   bool
	LoginKind string
}

// GenerateToken creates a signed session JWT for the provided identity.
func GenerateToken(secret string, id TokenIdentity, ttl time.Duration) (string, error) {
	claims := &SessionClaims{
		UserID:    id.UserID.String(),
		Email:     id.Email,
		Phone:     id.Phone,
		IsAdmin:   id.IsAdmin,
		LoginKind: id.LoginKind,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   id.UserID.String(),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates the token and returns its claims.
func ParseToken(secret, tokenString string) (*SessionClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := token.Claims.(*SessionClaims); ok && token.Valid {
		return claims, nil
	}

	return nil, jwt.ErrTokenInvalidClaims
}
