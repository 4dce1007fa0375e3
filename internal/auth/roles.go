package auth

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// RequireShop ensures the caller has a session bound to a shop. When the request also
// names a shop in its query string, it must be the session's shop.
func RequireShop() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok || principal.Shop == "" {
			return fiber.NewError(http.StatusUnauthorized, http.StatusText(http.StatusUnauthorized))
		}
		if requested := strings.TrimSpace(c.Query("shop")); requested != "" && !strings.EqualFold(requested, principal.Shop) {
			return fiber.NewError(http.StatusForbidden, "session does not belong to this shop")
		}
		return c.Next()
	}
}
