package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"stockdesk/console-service/internal/app/console/service"
	"stockdesk/console-service/internal/app/console/util"
)

// Ключи gin.Context, которые выставляет Authenticate
const (
	ctxUserID = "user_id"
	ctxEmail  = "email"
	ctxRole   = "role"
)

type AuthMiddleware struct {
	authService service.AuthServiceInterface
}

func NewAuthMiddleware(authService service.AuthServiceInterface) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

// Authenticate требует Bearer-токен сессии консоли.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, http.StatusUnauthorized, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			abortWithError(c, http.StatusUnauthorized, "Invalid authorization header format")
			return
		}

		claims, err := m.authService.ValidateToken(parts[1])
		if err != nil {
			switch {
			case errors.Is(err, util.ErrExpiredToken):
				abortWithError(c, http.StatusUnauthorized, "Token has expired")
			case errors.Is(err, util.ErrInvalidToken):
				abortWithError(c, http.StatusUnauthorized, "Invalid token")
			default:
				abortWithError(c, http.StatusInternalServerError, "Failed to validate token")
			}
			return
		}

		c.Set(ctxUserID, claims.UserID)
		c.Set(ctxEmail, claims.Email)
		c.Set(ctxRole, claims.Role)

		c.Next()
	}
}

// RequireRole пропускает только перечисленные роли.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString(ctxRole)
		if role == "" {
			abortWithError(c, http.StatusUnauthorized, "Unauthorized")
			return
		}

		for _, r := range roles {
			if role == r {
				c.Next()
				return
			}
		}

		abortWithError(c, http.StatusForbidden, "Insufficient permissions")
	}
}
