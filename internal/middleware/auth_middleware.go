package middleware

import (
	"errors"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/sanddrika/flashsavvy/internal/services"
)

// The storefront client identifies itself with a header pair; a signed JWT
// from the login endpoint works as well.
const (
	HeaderUserID  = "user-id"
	HeaderIsAdmin = "is-admin"
)

// resolveIdentity extracts the caller identity from the user-id/is-admin
// header pair or, failing that, from a Bearer token. It returns the claimed
// user ID and admin flag; the admin claim is NOT trusted for gating, see
// AdminRequired.
func resolveIdentity(c *fiber.Ctx, authService *services.AuthService) (string, bool, bool) {
	if userID := c.Get(HeaderUserID); userID != "" {
		isAdmin, _ := strconv.ParseBool(c.Get(HeaderIsAdmin))
		return userID, isAdmin, true
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return "", false, false
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", false, false
	}
	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		return "", false, false
	}
	userID, _ := claims["user_id"].(string)
	isAdmin, _ := claims["is_admin"].(bool)
	return userID, isAdmin, userID != ""
}

// IdentityRequired rejects requests that carry no recognizable identity.
func IdentityRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, isAdmin, ok := resolveIdentity(c, authService)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}
		c.Locals("user_id", userID)
		c.Locals("is_admin", isAdmin)
		return c.Next()
	}
}

// AdminRequired gates admin-only operations. The caller's admin claim is
// re-verified against the account store; a forged is-admin header on a
// non-admin account is refused.
func AdminRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, _, ok := resolveIdentity(c, authService)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authentication required",
			})
		}

		user, err := authService.VerifyAdmin(userID)
		if err != nil {
			if errors.Is(err, services.ErrNotAdmin) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
					"error": "Admin privileges required",
				})
			}
			if errors.Is(err, services.ErrNotFound) {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": "Authentication required",
				})
			}
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Could not verify account",
			})
		}

		c.Locals("user_id", user.ID)
		c.Locals("is_admin", true)
		return c.Next()
	}
}
