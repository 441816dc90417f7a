package httpapi

import (
	"errors"
	"log/slog"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/auth"
	"github.com/i474232898/weather-dashboard/internal/geocode"
	"github.com/i474232898/weather-dashboard/internal/news"
	"github.com/i474232898/weather-dashboard/internal/user"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

const serviceName = "weather-dashboard"

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Services bundles everything the handlers call into.
type Services struct {
	Auth    *auth.Service
	Users   *user.Service
	Weather *weather.Service
	News    *news.Client
	Geocode *geocode.Service

	CookieSecure bool
	Logger       *slog.Logger
}

type handlers struct {
	Services
	logger *slog.Logger
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, svc Services) {
	logger := svc.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handlers{Services: svc, logger: logger.With("component", "http")}

	api := app.Group("/api")

	api.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": serviceName,
		})
	})

	protect := auth.Protect(svc.Auth)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", h.signup)
	authGroup.Post("/login", h.login)
	authGroup.Post("/logout", h.logout)
	authGroup.Get("/me", protect, h.me)

	api.Get("/weather", protect, h.weather)
	api.Get("/news", protect, h.news)

	api.Get("/geocode/search", protect, h.geocodeSearch)
	api.Get("/geocode/reverse", protect, h.geocodeReverse)

	api.Get("/favourites", protect, h.listFavourites)
	api.Post("/favourites", protect, h.addFavourite)
	api.Delete("/favourites", protect, h.removeFavourite)

	api.Get("/recent", protect, h.listRecent)
	api.Post("/recent", protect, h.recordRecent)
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// validationMessage turns validator errors into a short client message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	fields := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			fields = append(fields, fe.Field()+" is required")
		default:
			fields = append(fields, fe.Field()+" is out of range")
		}
	}
	return strings.Join(fields, "; ")
}

// optionalFloat parses a query parameter that may be absent.
func optionalFloat(c *fiber.Ctx, key string) (*float64, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadRequest, key+" must be a number")
	}
	return &v, nil
}

// intQuery reads an integer query parameter, returning def when it is absent.
func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, key+" must be a number")
	}
	return v, nil
}
