package httpapi

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/upstream"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

type weatherQuery struct {
	Lat          *float64 `json:"lat" validate:"omitempty,gte=-90,lte=90"`
	Lon          *float64 `json:"lon" validate:"omitempty,gte=-180,lte=180"`
	City         string   `json:"city"`
	LocationName string   `json:"locationName"`
}

func (h *handlers) weather(c *fiber.Ctx) error {
	var (
		q   weatherQuery
		err error
	)
	if q.Lat, err = optionalFloat(c, "lat"); err != nil {
		return err
	}
	if q.Lon, err = optionalFloat(c, "lon"); err != nil {
		return err
	}
	q.City = c.Query("city")
	q.LocationName = c.Query("locationName")

	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, validationMessage(err))
	}

	result, err := h.Weather.Get(c.UserContext(), weather.Query{
		Lat:          q.Lat,
		Lon:          q.Lon,
		City:         q.City,
		LocationName: q.LocationName,
	})
	if err != nil {
		return weatherError(err)
	}
	return c.JSON(result)
}

func weatherError(err error) error {
	switch {
	case errors.Is(err, weather.ErrInputRejected):
		return fiber.NewError(fiber.StatusBadRequest, "Provide lat/lon or city")
	case errors.Is(err, weather.ErrNotConfigured):
		return fiber.NewError(fiber.StatusInternalServerError, "Missing weather API key")
	case errors.Is(err, weather.ErrNormalizationRejected):
		return fiber.NewError(fiber.StatusBadGateway, "Invalid weather payload")
	case errors.Is(err, upstream.ErrUnavailable):
		switch upstream.StatusOf(err) {
		case http.StatusNotFound:
			return fiber.NewError(fiber.StatusNotFound, "City not found")
		case http.StatusTooManyRequests:
			return fiber.NewError(fiber.StatusTooManyRequests, "Weather provider rate limit hit")
		default:
			return fiber.NewError(fiber.StatusBadGateway, "Weather provider error")
		}
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "Unable to fetch weather")
	}
}
