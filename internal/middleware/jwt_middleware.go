package middleware

import (
	"log"
	"strings"

	"grosir/internal/apperror"
	"grosir/internal/services"
	"grosir/pkg/result"

	"github.com/gofiber/fiber/v2"
)

const identityKey = "identity"

// Authenticator resolves a bearer token to the caller's identity.
type Authenticator interface {
	Authenticate(tokenString string) (services.Identity, error)
}

// AuthRequired is a Fiber middleware that rejects requests without a valid token
// and stores the caller's identity for downstream handlers.
func AuthRequired(auth Authenticator, out result.Writer) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return out.Send(c, nil, apperror.Unauthorized("Authorization header is required"))
		}

		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer" && parts[1] != "") {
			return out.Send(c, nil, apperror.Unauthorized("Authorization header format must be 'Bearer <token>'"))
		}

		identity, err := auth.Authenticate(parts[1])
		if err != nil {
			log.Printf("JWT validation failed: %v", err)
			return out.Send(c, nil, apperror.Unauthorized("Invalid or expired token"))
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// CurrentIdentity returns the identity stored by AuthRequired.
func CurrentIdentity(c *fiber.Ctx) (services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(services.Identity)
	return identity, ok
}
