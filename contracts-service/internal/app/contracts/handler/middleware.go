package handler

import (
	"errors"
	"net/http"
	"strings"

	"gamarriando/contracts-service/internal/app/contracts/util"
	"gamarriando/pkg/contracts"
	"gamarriando/pkg/schema"

	"github.com/gin-gonic/gin"
)

// ClaimsKey - ключ gin.Context, под которым лежит *contracts.JwtPayload
const ClaimsKey = "claims"

type AuthMiddleware struct {
	verifier *util.TokenVerifier
}

func NewAuthMiddleware(verifier *util.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Authenticate требует валидный Bearer токен
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			abortUnauthorized(c, "Authorization header required", nil)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			switch {
			case errors.Is(err, util.ErrExpiredToken):
				abortUnauthorized(c, "Token has expired", nil)
			case errors.Is(err, util.ErrInvalidClaims):
				issues, _ := schema.IssuesOf(err)
				abortUnauthorized(c, "Token claims do not match contract", map[string]any{"issues": issues})
			default:
				abortUnauthorized(c, "Invalid token", nil)
			}
			return
		}

		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// Identify кладет claims в контекст, если токен есть и валиден.
// Без токена или с плохим токеном запрос идет дальше анонимно.
func (m *AuthMiddleware) Identify() gin.HandlerFunc {
	return func(c *gin.Context) {
		if token, ok := bearerToken(c); ok {
			if claims, err := m.verifier.Verify(token); err == nil {
				c.Set(ClaimsKey, claims)
			}
		}
		c.Next()
	}
}

// RequireRole пропускает, если у пользователя есть хотя бы одна из ролей
func (m *AuthMiddleware) RequireRole(roles ...contracts.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := claimsFrom(c)
		if !ok {
			abortUnauthorized(c, "Unauthorized", nil)
			return
		}

		for _, role := range roles {
			if claims.HasRole(role) {
				c.Next()
				return
			}
		}

		c.AbortWithStatusJSON(http.StatusForbidden, contracts.NewAPIError("forbidden", "Insufficient permissions", nil))
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	parts := strings.Split(c.GetHeader("Authorization"), " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func claimsFrom(c *gin.Context) (*contracts.JwtPayload, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*contracts.JwtPayload)
	return claims, ok
}

func abortUnauthorized(c *gin.Context, message string, details map[string]any) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, contracts.NewAPIError("unauthorized", message, details))
}
