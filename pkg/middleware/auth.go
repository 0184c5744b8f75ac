package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yafafa-lodge/service-booking/pkg/auth"
	"github.com/yafafa-lodge/service-booking/pkg/domain"
	"github.com/yafafa-lodge/service-booking/pkg/response"
)

const claimsKey = "auth_claims"

// AuthMiddleware requires a valid bearer token. A missing or malformed
// header is 401; a token that fails verification or has expired is 403.
func AuthMiddleware(jwtManager *auth.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		token = strings.TrimSpace(token)
		if !ok || token == "" {
			response.Abort(c, domain.NewUnauthorizedError("missing or malformed token"))
			return
		}

		claims, err := jwtManager.ValidateToken(token)
		if err != nil {
			response.Abort(c, domain.NewForbiddenError("invalid or expired token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin allows only callers listed in the admin set. Must run after AuthMiddleware.
func RequireAdmin(admins *auth.AdminSet) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok || !admins.IsAdmin(claims) {
			response.Abort(c, domain.NewForbiddenError("admin access required"))
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims attached by AuthMiddleware.
func GetClaims(c *gin.Context) (*auth.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.Claims)
	return claims, ok
}
