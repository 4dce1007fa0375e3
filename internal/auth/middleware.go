package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/spec-kit/project-gallery/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated admin session.
type Principal struct {
	Shop   string
	UserID string
}

// AuthMiddleware validates bearer session tokens.
type AuthMiddleware struct {
	verifier *SessionVerifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier *SessionVerifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	if !m.verifier.Configured() {
		return apperrors.NewServiceUnavailable("Admin authentication is not configured", nil)
	}

	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.verifier.Verify(strings.TrimSpace(parts[1]))
	if err != nil {
		return apperrors.NewUnauthorized("invalid session token")
	}
	shop, _ := claims.Shop()

	c.Locals(principalKey, &Principal{Shop: shop, UserID: claims.Subject})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated session.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
