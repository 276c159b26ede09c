package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/northmart/backend-go/models"
	"github.com/northmart/backend-go/utils"
)

// Auth verifies the bearer token and stores the caller's identity on the
// context. Downstream code trusts this identity without re-verification.
func Auth(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return utils.Fail(c, utils.Unauthorized("Missing authorization header"))
			}

			tokenParts := strings.Split(authHeader, " ")
			if len(tokenParts) != 2 || tokenParts[0] != "Bearer" {
				return utils.Fail(c, utils.Unauthorized("Invalid authorization header format"))
			}

			claims, err := utils.ValidateJWT(secret, tokenParts[1])
			if err != nil {
				return utils.Fail(c, utils.Unauthorized("Invalid or expired token"))
			}

			userID, err := primitive.ObjectIDFromHex(claims.UserID)
			if err != nil {
				return utils.Fail(c, utils.Unauthorized("Invalid token subject"))
			}

			c.Set("userID", userID)
			c.Set("role", models.UserRole(claims.Role))
			return next(c)
		}
	}
}

// RequireAdmin gates admin-only routes. Must run after Auth.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			role, _ := c.Get("role").(models.UserRole)
			if role != models.RoleAdmin {
				return utils.Fail(c, utils.Forbidden("Admin access required"))
			}
			return next(c)
		}
	}
}
