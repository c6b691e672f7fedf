package utils

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the payload of the bearer tokens issued by the identity provider.
type Claims struct {
	UserID  string `json:"id"`
	IsAdmin bool   `json:"isAdmin"`
	jwt.RegisteredClaims
}

// VerifyToken checks the HS256 signature and the time claims and returns the caller's id.
func VerifyToken(secret, tokenString string) (*Claims, uuid.UUID, error) {
	if secret == "" {
		return nil, uuid.Nil, errors.New("jwt secret is not configured")
	}
	claims := &Claims{}
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	tok, err := parser.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("parse token: %w", err)
	}
	if !tok.Valid {
		return nil, uuid.Nil, errors.New("invalid token")
	}
	id, err := uuid.Parse(claims.UserID)
	if err != nil {
		return nil, uuid.Nil, fmt.Errorf("token subject: %w", err)
	}
	return claims, id, nil
}
