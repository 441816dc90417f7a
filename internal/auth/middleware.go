package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/user"
)

const (
	CookieName = "token"

	localsUser = "user"
)

// Protect rejects requests without a valid session cookie and stores the
// authenticated user in the request locals.
func Protect(svc *Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := c.Cookies(CookieName)
		if token == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Not authenticated")
		}

		u, err := svc.Authenticate(c.UserContext(), token)
		switch {
		case errors.Is(err, ErrInvalidToken):
			return fiber.NewError(fiber.StatusUnauthorized, "Invalid token")
		case errors.Is(err, user.ErrNotFound):
			return fiber.NewError(fiber.StatusUnauthorized, "User not found")
		case err != nil:
			svc.logger.Error("authenticating request failed", "path", c.Path(), "err", err)
			return fiber.NewError(fiber.StatusInternalServerError, "Authentication failed")
		}

		c.Locals(localsUser, u)
		return c.Next()
	}
}

// CurrentUser returns the user stored by Protect, or nil.
func CurrentUser(c *fiber.Ctx) *user.User {
	u, _ := c.Locals(localsUser).(*user.User)
	return u
}

// SetCookie attaches the session cookie to the response.
func SetCookie(c *fiber.Ctx, token string, ttl time.Duration, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}

// ClearCookie expires the session cookie.
func ClearCookie(c *fiber.Ctx, secure bool) {
	c.Cookie(&fiber.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		HTTPOnly: true,
		Secure:   secure,
		SameSite: fiber.CookieSameSiteNoneMode,
	})
}
