package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/geocode"
	"github.com/i474232898/weather-dashboard/internal/news"
	"github.com/i474232898/weather-dashboard/internal/upstream"
)

func (h *handlers) news(c *fiber.Ctx) error {
	res, err := h.News.ForCity(c.UserContext(), c.Query("city"), c.Query("locationName"))
	if err == nil {
		return c.JSON(res)
	}

	var se *upstream.StatusError
	switch {
	case errors.Is(err, news.ErrQueryRequired):
		return fiber.NewError(fiber.StatusBadRequest, "Provide city or locationName")
	case errors.Is(err, news.ErrNotConfigured):
		return fiber.NewError(fiber.StatusInternalServerError, "News API key not configured")
	case errors.As(err, &se) && se.Status == http.StatusTooManyRequests:
		return fiber.NewError(fiber.StatusTooManyRequests, "News API rate limit exceeded")
	case errors.As(err, &se) && se.Status != 0:
		msg := se.Message
		if msg == "" {
			msg = "Failed to fetch news"
		}
		return fiber.NewError(se.Status, msg)
	default:
		h.logger.Error("news request failed", "err", err)
		return fiber.NewError(fiber.StatusInternalServerError, "Unable to fetch news")
	}
}

type searchQuery struct {
	Q     string `json:"q" validate:"required"`
	Limit int    `json:"limit" validate:"min=1,max=10"`
}

func (h *handlers) geocodeSearch(c *fiber.Ctx) error {
	limit, err := intQuery(c, "limit", geocode.DefaultLimit)
	if err != nil {
		return err
	}
	q := searchQuery{Q: strings.TrimSpace(c.Query("q")), Limit: limit}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	places, err := h.Geocode.Search(c.UserContext(), q.Q, q.Limit)
	if err != nil {
		return h.geocodeError(err)
	}
	return c.JSON(fiber.Map{"results": places})
}

type reverseQuery struct {
	Lat *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
}

func (h *handlers) geocodeReverse(c *fiber.Ctx) error {
	var (
		q   reverseQuery
		err error
	)
	if q.Lat, err = optionalFloat(c, "lat"); err != nil {
		return err
	}
	if q.Lon, err = optionalFloat(c, "lon"); err != nil {
		return err
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	name, err := h.Geocode.PlaceName(c.UserContext(), *q.Lat, *q.Lon)
	if err != nil {
		return h.geocodeError(err)
	}
	return c.JSON(fiber.Map{"placeName": name})
}

func (h *handlers) geocodeError(err error) error {
	switch {
	case errors.Is(err, geocode.ErrNotConfigured):
		return fiber.NewError(fiber.StatusInternalServerError, "Geocoding provider not configured")
	case upstream.StatusOf(err) == http.StatusTooManyRequests:
		return fiber.NewError(fiber.StatusTooManyRequests, "Geocoding rate limit hit")
	default:
		h.logger.Error("geocoding failed", "err", err)
		return fiber.NewError(fiber.StatusBadGateway, "Geocoding provider error")
	}
}
