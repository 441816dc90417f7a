package httpapi

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/auth"
	"github.com/i474232898/weather-dashboard/internal/user"
)

// locationRequest is the body of favourite and recent-search writes. Zero
// coordinates are valid, so presence is checked on the pointers.
type locationRequest struct {
	Lat          *float64 `json:"lat" validate:"required,gte=-90,lte=90"`
	Lon          *float64 `json:"lon" validate:"required,gte=-180,lte=180"`
	LocationName string   `json:"locationName" validate:"required"`
	Country      string   `json:"country"`
}

func (r locationRequest) toLocation() user.SavedLocation {
	return user.SavedLocation{
		Lat:          *r.Lat,
		Lon:          *r.Lon,
		LocationName: r.LocationName,
		Country:      r.Country,
	}
}

type coordinatesRequest struct {
	Lat *float64 `json:"lat" validate:"required"`
	Lon *float64 `json:"lon" validate:"required"`
}

func parseBody(c *fiber.Ctx, out interface{}) error {
	if err := c.BodyParser(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing fields")
	}
	if err := validate.Struct(out); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Missing fields: "+validationMessage(err))
	}
	return nil
}

func (h *handlers) listFavourites(c *fiber.Ctx) error {
	u := auth.CurrentUser(c)
	return c.JSON(fiber.Map{"favourites": orEmpty(u.Favourites)})
}

func (h *handlers) addFavourite(c *fiber.Ctx) error {
	var req locationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	favs, err := h.Users.AddFavourite(c.UserContext(), auth.CurrentUser(c), req.toLocation())
	if errors.Is(err, user.ErrDuplicateFavourite) {
		return fiber.NewError(fiber.StatusConflict, "Already favourited")
	}
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Unable to save favourite")
	}
	return c.JSON(fiber.Map{"favourites": orEmpty(favs)})
}

func (h *handlers) removeFavourite(c *fiber.Ctx) error {
	var req coordinatesRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	favs, err := h.Users.RemoveFavourite(c.UserContext(), auth.CurrentUser(c), *req.Lat, *req.Lon)
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Unable to remove favourite")
	}
	return c.JSON(fiber.Map{"favourites": orEmpty(favs)})
}

func (h *handlers) listRecent(c *fiber.Ctx) error {
	u := auth.CurrentUser(c)
	return c.JSON(fiber.Map{"recent": orEmpty(u.RecentSearches)})
}

func (h *handlers) recordRecent(c *fiber.Ctx) error {
	var req locationRequest
	if err := parseBody(c, &req); err != nil {
		return err
	}

	recent, err := h.Users.RecordSearch(c.UserContext(), auth.CurrentUser(c), req.toLocation())
	if err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "Unable to record search")
	}
	return c.JSON(fiber.Map{"recent": orEmpty(recent)})
}

// orEmpty keeps lists rendering as [] rather than null.
func orEmpty[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
