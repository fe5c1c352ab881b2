package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/amlwatch/aml-backend/internal/domain"
)

// TokenTTL is fixed at issuance; there is no refresh mechanism.
const TokenTTL = 24 * time.Hour

// Claims is what the server re-derives from a verified token on every
// request. CustomerID, BankName and AccountNumber are set for customers only.
type Claims struct {
	UserID        uuid.UUID
	Username      string
	Role          domain.Role
	CustomerID    *string
	BankName      *string
	AccountNumber *string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID        string  `json:"user_id"`
	Username      string  `json:"username"`
	Role          string  `json:"role"`
	CustomerID    *string `json:"customer_id,omitempty"`
	BankName      *string `json:"bank_name,omitempty"`
	AccountNumber *string `json:"account_number,omitempty"`
}

func GenerateToken(user *domain.User, secret string, expiry time.Duration) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID:        user.ID.String(),
		Username:      user.Username,
		Role:          string(user.Role),
		CustomerID:    user.CustomerID,
		BankName:      user.BankName,
		AccountNumber: user.AccountNumber,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("GenerateToken: %w", err)
	}
	return signed, nil
}

func ValidateToken(tokenString string, secret string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: %w", err)
	}

	tc, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("ValidateToken: invalid token claims")
	}

	userID, err := uuid.Parse(tc.UserID)
	if err != nil {
		return nil, fmt.Errorf("ValidateToken: invalid user_id in token: %w", err)
	}

	role := domain.Role(tc.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("ValidateToken: invalid role in token: %q", tc.Role)
	}

	return &Claims{
		UserID:        userID,
		Username:      tc.Username,
		Role:          role,
		CustomerID:    tc.CustomerID,
		BankName:      tc.BankName,
		AccountNumber: tc.AccountNumber,
	}, nil
}
