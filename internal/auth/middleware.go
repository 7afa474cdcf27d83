package auth

import (
	"strings"

	"propdesk-backend/internal/config"
	"propdesk-backend/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	CtxUserIDKey   = "user_id"
	CtxUserRoleKey = "user_role"
	CtxUserKey     = "user"

	// TokenCookie carries the JWT for dashboard pages.
	TokenCookie = "access_token"
)

// Identity is the signed-in user as carried by the token.
type Identity struct {
	ID    uint
	Email string
	Name  string
	Role  models.UserRole
}

// JWTMiddleware accepts "Authorization: Bearer <token>" or the access_token cookie.
func JWTMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenStr, err := bearerToken(c)
		if err != nil {
			return err
		}

		claims, err := ParseToken(cfg.JWTSecret, tokenStr)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
		}

		SetIdentity(c, claims)
		return c.Next()
	}
}

// SetIdentity stores the token's user in the request locals.
func SetIdentity(c *fiber.Ctx, claims *JWTCustomClaims) {
	c.Locals(CtxUserIDKey, claims.UserID)
	c.Locals(CtxUserRoleKey, claims.Role)
	c.Locals(CtxUserKey, Identity{ID: claims.UserID, Email: claims.Email, Name: claims.Name, Role: claims.Role})
}

func bearerToken(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		if cookie := c.Cookies(TokenCookie); cookie != "" {
			return cookie, nil
		}
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization header missing")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", fiber.NewError(fiber.StatusUnauthorized, "Authorization must be 'Bearer <token>'")
	}
	return parts[1], nil
}

func RequireRole(allowedRoles ...models.UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(CtxUserRoleKey).(models.UserRole)
		if !ok {
			return fiber.NewError(fiber.StatusForbidden, "Role is unknown")
		}

		for _, r := range allowedRoles {
			if r == role {
				return c.Next()
			}
		}
		return fiber.NewError(fiber.StatusForbidden, "You are not allowed to do this")
	}
}

// CurrentUser returns the identity set by JWTMiddleware.
func CurrentUser(c *fiber.Ctx) (Identity, bool) {
	id, ok := c.Locals(CtxUserKey).(Identity)
	return id, ok
}

// RequireUser fails with 401 when no identity is present.
func RequireUser(c *fiber.Ctx) (Identity, error) {
	id, ok := CurrentUser(c)
	if !ok {
		return Identity{}, fiber.NewError(fiber.StatusUnauthorized, "Not signed in")
	}
	return id, nil
}
