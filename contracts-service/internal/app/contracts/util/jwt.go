package util

import (
	"encoding/json"
	"errors"
	"fmt"

	"gamarriando/pkg/contracts"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken  = errors.New("invalid token")
	ErrExpiredToken  = errors.New("token has expired")
	ErrInvalidClaims = errors.New("invalid token claims")
)

// TokenVerifier проверяет подпись HS256 и форму claims.
// Токены выпускает сервис авторизации, здесь только проверка.
type TokenVerifier struct {
	secretKey string
}

func NewTokenVerifier(secretKey string) *TokenVerifier {
	return &TokenVerifier{secretKey: secretKey}
}

// Verify возвращает claims, прошедшие схему jwt_payload
func (v *TokenVerifier) Verify(tokenString string) (*contracts.JwtPayload, error) {
	token, err := jwt.Parse(
		tokenString,
		func(token *jwt.Token) (interface{}, error) {
			return []byte(v.secretKey), nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	raw, err := json.Marshal(claims)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidClaims, err)
	}

	payload, err := contracts.JwtPayloadSchema.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidClaims, err)
	}

	return &payload, nil
}

// Sign подписывает payload тем же секретом. Используется в тестах и локальной отладке.
func (v *TokenVerifier) Sign(payload contracts.JwtPayload) (string, error) {
	claims := jwt.MapClaims{
		"sub":   payload.Sub,
		"email": payload.Email,
		"roles": payload.Roles,
		"exp":   payload.Exp,
		"iat":   payload.Iat,
	}
	if payload.VendorID != nil {
		claims["vendorId"] = *payload.VendorID
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(v.secretKey))
}
