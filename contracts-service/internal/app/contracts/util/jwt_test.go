package util

import (
	"testing"
	"time"

	"gamarriando/pkg/contracts"
	"gamarriando/pkg/schema"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validPayload() contracts.JwtPayload {
	now := time.Now()
	return contracts.JwtPayload{
		Sub:   "42",
		Email: "ana@example.com",
		Roles: []string{"admin"},
		Exp:   now.Add(15 * time.Minute).Unix(),
		Iat:   now.Unix(),
	}
}

func TestTokenVerifier_Verify_Success(t *testing.T) {
	// Arrange
	verifier := NewTokenVerifier("test-secret-key")
	vendorID := int64(7)
	payload := validPayload()
	payload.VendorID = &vendorID

	token, err := verifier.Sign(payload)
	require.NoError(t, err)

	// Act
	claims, err := verifier.Verify(token)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "42", claims.Sub)
	assert.Equal(t, "ana@example.com", claims.Email)
	assert.True(t, claims.HasRole(contracts.RoleAdmin))
	assert.Equal(t, payload.Exp, claims.Exp)
	require.NotNil(t, claims.VendorID)
	assert.Equal(t, int64(7), *claims.VendorID)
}

func TestTokenVerifier_Verify_WrongSecret(t *testing.T) {
	token, err := NewTokenVerifier("secret-a").Sign(validPayload())
	require.NoError(t, err)

	_, err = NewTokenVerifier("secret-b").Verify(token)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifier_Verify_Expired(t *testing.T) {
	verifier := NewTokenVerifier("test-secret-key")
	payload := validPayload()
	payload.Iat = time.Now().Add(-2 * time.Hour).Unix()
	payload.Exp = time.Now().Add(-time.Hour).Unix()

	token, err := verifier.Sign(payload)
	require.NoError(t, err)

	_, err = verifier.Verify(token)

	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestTokenVerifier_Verify_RejectsOtherAlgorithms(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS512, jwt.MapClaims{
		"sub": "42", "email": "ana@example.com", "exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = NewTokenVerifier("test-secret-key").Verify(signed)

	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestTokenVerifier_Verify_ClaimsShape(t *testing.T) {
	// Подпись верная, но в claims нет email
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42", "exp": time.Now().Add(time.Hour).Unix(), "iat": time.Now().Unix(),
	})
	signed, err := token.SignedString([]byte("test-secret-key"))
	require.NoError(t, err)

	_, err = NewTokenVerifier("test-secret-key").Verify(signed)

	require.ErrorIs(t, err, ErrInvalidClaims)
	issues, ok := schema.IssuesOf(err)
	require.True(t, ok)
	assert.Equal(t, "email", issues[0].Path)
	assert.Equal(t, schema.KindMissing, issues[0].Kind)
}

func TestTokenVerifier_Verify_Malformed(t *testing.T) {
	_, err := NewTokenVerifier("test-secret-key").Verify("not-a-token")

	assert.ErrorIs(t, err, ErrInvalidToken)
}
