package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"go-sales-agent/internal/models"
)

// Claims defines what is inside the token (The "ID Card")
type Claims struct {
	Username   string      `json:"username"`
	Name       string      `json:"name"`
	Role       models.Role `json:"role"`
	SalesmanID string      `json:"salesman_id,omitempty"`
	jwt.RegisteredClaims
}

// TokenManager signs and checks session tokens.
type TokenManager struct {
	key []byte
	ttl time.Duration
	now func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &TokenManager{key: []byte(secret), ttl: ttl, now: time.Now}
}

// GenerateToken creates a signed JWT for a user the gateway has verified.
func (m *TokenManager) GenerateToken(u models.User) (string, error) {
	now := m.now()
	claims := &Claims{
		Username:   u.Username,
		Name:       u.Name,
		Role:       u.Role,
		SalesmanID: u.SalesmanID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   u.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.key)
}

// ValidateToken checks if a token is fake or expired
func (m *TokenManager) ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.key, nil
	}, jwt.WithTimeFunc(m.now))

	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}

// User rebuilds the session user from the claims.
func (c *Claims) User() models.User {
	return models.User{Username: c.Username, Name: c.Name, Role: c.Role, SalesmanID: c.SalesmanID}
}
