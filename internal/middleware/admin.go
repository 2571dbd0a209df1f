package middleware

import (
	"electron-shop/api/internal/auth"
	"electron-shop/api/pkg/catalog"
	"electron-shop/api/pkg/util"

	"github.com/gin-gonic/gin"
)

const ClaimsKey = "auth.claims"

// RequireRole rejects requests without a valid access token carrying role.
func RequireRole(secret, role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := auth.ExtractToken(c)
		if token == "" {
			util.HandleAppError(c, catalog.AuthRequired(auth.ErrMissingToken.Error()))
			return
		}
		claim, err := auth.ValidateToken(secret, token)
		if err != nil {
			util.HandleAppError(c, catalog.AuthRequired(auth.ErrInvalidToken.Error()))
			return
		}
		if claim.Role != role {
			util.HandleAppError(c, catalog.Forbidden("this action requires the "+role+" role"))
			return
		}

		c.Set(ClaimsKey, claim)
		c.Next()
	}
}

// AdminOnly restricts a route to admin tokens.
func AdminOnly(secret string) gin.HandlerFunc {
	return RequireRole(secret, auth.RoleAdmin)
}
