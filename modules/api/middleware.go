package api

import (
	"context"
	"strings"
	"time"

	"github.com/example/eshop-backend/domain/user"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// TokenValidator verifies bearer tokens.
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (*user.Claims, error)
}

// AccessGate lets public routes through, verifies the bearer token on every
// other route and then applies the admin and user rules of the policy.
func AccessGate(policy *AccessPolicy, validator TokenValidator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if policy.IsPublic(c.Method(), c.Path()) {
			return c.Next()
		}

		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return unauthorized(c, "Authorization header is required")
		}
		if !strings.HasPrefix(authHeader, "Bearer ") {
			return unauthorized(c, "Invalid authorization header format. Use: Bearer <token>")
		}
		token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		if token == "" {
			return unauthorized(c, "Token is required")
		}

		claims, err := validator.ValidateToken(c.UserContext(), token)
		if err != nil {
			return unauthorized(c, "Invalid or expired token")
		}

		if !claims.IsAdmin && !policy.AllowsUser(c.Method(), c.Path()) {
			return unauthorized(c, "The user is not authorized")
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// RequestTimeout bounds the user context of every request.
func RequestTimeout(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: message,
	})
}

func claimsOf(c *fiber.Ctx) *user.Claims {
	claims, _ := c.Locals(UserContextKey).(*user.Claims)
	return claims
}
