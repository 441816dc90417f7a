package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/auth"
	"github.com/i474232898/weather-dashboard/internal/user"
)

type signupRequest struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (h *handlers) signup(c *fiber.Ctx) error {
	var req signupRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Name, email, and password are required")
	}

	u, token, err := h.Auth.Signup(c.UserContext(), auth.SignupInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if errors.Is(err, user.ErrEmailTaken) {
		return fiber.NewError(fiber.StatusConflict, "Email already registered")
	}
	if err != nil {
		h.logger.Error("signup failed", "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Unable to create user")
	}

	auth.SetCookie(c, token, h.Auth.TokenTTL(), h.CookieSecure)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"user": u.Public()})
}

func (h *handlers) login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil || validate.Struct(req) != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Email and password required")
	}

	u, token, err := h.Auth.Login(c.UserContext(), req.Email, req.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		return fiber.NewError(fiber.StatusUnauthorized, "Invalid credentials")
	}
	if err != nil {
		h.logger.Error("login failed", "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Unable to login")
	}

	auth.SetCookie(c, token, h.Auth.TokenTTL(), h.CookieSecure)
	return c.JSON(fiber.Map{"user": u.Public()})
}

func (h *handlers) logout(c *fiber.Ctx) error {
	if err := h.Auth.Logout(c.UserContext(), c.Cookies(auth.CookieName)); err != nil {
		h.logger.Warn("token revocation failed", "err", err)
	}
	auth.ClearCookie(c, h.CookieSecure)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

func (h *handlers) me(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"user": auth.CurrentUser(c)})
}
