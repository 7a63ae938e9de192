// Package auth issues and verifies the bearer tokens that gate both the
// REST API and websocket admission.
package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/campuschat/campuschat/internal/core"
	"github.com/campuschat/campuschat/internal/domain"
)

type Claims struct {
	UserID   int64  `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// Manager signs and verifies HMAC tokens. It satisfies core.TokenVerifier.
type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl}
}

func (m *Manager) Generate(id domain.UserID, username string) (string, error) {
	now := time.Now()
	claims := Claims{
		UserID:   int64(id),
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func (m *Manager) Verify(tokenString string) (core.Identity, error) {
	if tokenString == "" {
		return core.Identity{}, core.ErrInvalidCredential
	}
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return core.Identity{}, fmt.Errorf("%w: %w", core.ErrInvalidCredential, err)
	}
	claims, ok := token.Claims.(*Claims)
	if !ok || claims.UserID == 0 {
		return core.Identity{}, core.ErrInvalidCredential
	}
	return core.Identity{ID: domain.UserID(claims.UserID), Username: claims.Username}, nil
}
