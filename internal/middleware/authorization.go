package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/baryc/quote-service/internal/domain/dto"
	"github.com/baryc/quote-service/internal/i18n"
)

// RequireRole rejects requests whose token does not carry one of roles.
// It must run after JWTAuth.
func RequireRole(roles ...string) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		allowed[r] = struct{}{}
	}

	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			abortUnauthorized(c, i18n.ErrKeyUnauthorized)
			return
		}

		if _, ok := allowed[claims.Role]; !ok {
			message := i18n.GetTranslator().Translate(i18n.ErrKeyForbidden, i18n.GetLocale(c))
			errorResp := dto.NewError(dto.ErrCodeForbidden, message).
				WithRequestID(GetRequestID(c))
			c.AbortWithStatusJSON(http.StatusForbidden, errorResp)
			return
		}

		c.Next()
	}
}
