package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/i18n"
)

const (
	// ActorKey holds the authenticated admin username.
	ActorKey = "actor"
	// ClaimsKey holds the validated *dto.Claims.
	ClaimsKey = "claims"
)

// TokenValidator validates a bearer token and returns its claims.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*dto.Claims, error)
}

// JWTAuth returns a middleware that requires a valid bearer token.
func JWTAuth(validator TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortUnauthorized(c, i18n.ErrKeyTokenRequired)
			return
		}

		if !strings.HasPrefix(authHeader, "Bearer ") {
			abortUnauthorized(c, i18n.ErrKeyInvalidToken)
			return
		}

		tokenString := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if tokenString == "" {
			abortUnauthorized(c, i18n.ErrKeyTokenRequired)
			return
		}

		claims, err := validator.ValidateToken(c.Request.Context(), tokenString)
		if err != nil || claims == nil {
			abortUnauthorized(c, i18n.ErrKeyInvalidToken)
			return
		}

		c.Set(ActorKey, claims.Subject)
		c.Set(ClaimsKey, claims)
		c.Next()
	}
}

// GetActor returns the authenticated admin, or "" for anonymous requests.
func GetActor(c *gin.Context) string {
	return c.GetString(ActorKey)
}

// GetClaims returns the claims stored by JWTAuth.
func GetClaims(c *gin.Context) (*dto.Claims, bool) {
	v, exists := c.Get(ClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := v.(*dto.Claims)
	return claims, ok && claims != nil
}

func abortUnauthorized(c *gin.Context, key string) {
	message := i18n.GetTranslator().Translate(key, i18n.GetLocale(c))
	errorResp := dto.NewError(dto.ErrCodeUnauthorized, message).
		WithRequestID(GetRequestID(c))
	c.AbortWithStatusJSON(http.StatusUnauthorized, errorResp)
}
