package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const localsUserID = "auth.user_id"

// Middleware rejects requests without a valid token with 401 and stores the
// token subject as the request's user id. The token is read from
// "x-access-token" or an "Authorization: Bearer" header.
func Middleware(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, err := ParseToken(tokenFromRequest(c), secret)
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, err.Error())
		}
		c.Locals(localsUserID, claims.Subject)
		return c.Next()
	}
}

// UserID returns the user id stored by Middleware.
func UserID(c *fiber.Ctx) string {
	id, _ := c.Locals(localsUserID).(string)
	return id
}

func tokenFromRequest(c *fiber.Ctx) string {
	if token := c.Get("x-access-token"); token != "" {
		return token
	}
	header := c.Get(fiber.HeaderAuthorization)
	if len(header) > 7 && strings.EqualFold(header[:7], "bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}
