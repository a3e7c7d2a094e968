package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenClaims carries the identity attached to an admin token.
type TokenClaims struct {
	UserID  int64  `json:"uid"`
	Subject string `json:"sub"`
	IsAdmin bool   `json:"admin"`
}

// JWTService issues and validates admin tokens
type JWTService interface {
	GenerateToken(claims *TokenClaims) (string, error)
	ValidateToken(token string) (*TokenClaims, error)
}

type jwtService struct {
	secret      []byte
	expiryHours int
}

func NewJWTService(secret string, expiryHours int) JWTService {
	if expiryHours <= 0 {
		expiryHours = 24
	}
	return &jwtService{
		secret:      []byte(secret),
		expiryHours: expiryHours,
	}
}

func (s *jwtService) GenerateToken(claims *TokenClaims) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"uid":   claims.UserID,
		"sub":   claims.Subject,
		"admin": claims.IsAdmin,
		"iat":   now.Unix(),
		"exp":   now.Add(time.Duration(s.expiryHours) * time.Hour).Unix(),
	})

	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

func (s *jwtService) ValidateToken(tokenString string) (*TokenClaims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	out := &TokenClaims{}
	if v, ok := claims["uid"].(float64); ok {
		out.UserID = int64(v)
	}
	if v, ok := claims["sub"].(string); ok {
		out.Subject = v
	}
	if v, ok := claims["admin"].(bool); ok {
		out.IsAdmin = v
	}
	return out, nil
}
