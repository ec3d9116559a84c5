package middleware

import (
	"net/url"
	"strings"

	"taskpro/internal/auth"
	"taskpro/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// IsPublicPath reports whether path may be served without a credential:
// the login surface, static assets and the auth handshake itself.
func IsPublicPath(path string) bool {
	if path == "/login" || path == "/favicon.ico" {
		return true
	}
	return strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/api/auth/")
}

func isAPIPath(path string) bool {
	return strings.HasPrefix(path, "/api/") || path == "/ws" || strings.HasPrefix(path, "/ws/")
}

// CredentialFromRequest pulls the session token out of the cookie or, for
// API clients, the Authorization header. Empty string means no credential.
func CredentialFromRequest(c *fiber.Ctx) string {
	if cookie := c.Cookies(auth.CookieName); cookie != "" {
		return cookie
	}
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) == 2 && parts[0] == "Bearer" {
		return parts[1]
	}
	return ""
}

// AccessGate classifies every request as public or protected before any
// handler runs. Protected API requests without a valid credential get a
// 401; protected page requests get redirected to the login surface with
// the original destination preserved in callbackUrl. Each request is
// classified independently.
func AccessGate(secret []byte) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if IsPublicPath(c.Path()) {
			return c.Next()
		}

		tokenString := CredentialFromRequest(c)
		if tokenString != "" {
			if sess, err := auth.ParseToken(secret, tokenString); err == nil {
				c.Locals("userID", sess.UserID)
				c.Locals("userName", sess.Name)
				return c.Next()
			}
		}

		logger.SecurityLogger.Warn("Unauthenticated request to protected path",
			zap.String("path", c.Path()),
		)
		if isAPIPath(c.Path()) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": "Unauthorized",
				"success": false,
				"status":  fiber.StatusUnauthorized,
			})
		}
		target := "/login?callbackUrl=" + url.QueryEscape(c.OriginalURL())
		return c.Redirect(target, fiber.StatusFound)
	}
}
