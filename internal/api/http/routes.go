package httpapi

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/surf-forecast/internal/auth"
	"github.com/i474232898/surf-forecast/internal/store"
	"github.com/i474232898/surf-forecast/internal/weather"
)

var validate = validator.New()

// Options configures the API routes.
type Options struct {
	JWTSecret      []byte
	RequestTimeout time.Duration
}

// ErrorHandler renders every error as {"code": N, "error": "..."}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"code":  code,
		"error": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, opts Options) {
	v1 := app.Group("/api/v1", auth.Middleware(opts.JWTSecret))

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		ctx := c.UserContext()
		if opts.RequestTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.RequestTimeout)
			defer cancel()
		}

		forecast, err := service.ForecastForUser(ctx, auth.UserID(c))
		if err != nil {
			log.Printf("ERROR: forecast for user %s: %v", auth.UserID(c), err)
			return fiber.NewError(fiber.StatusInternalServerError, "Something went wrong")
		}

		return c.JSON(forecast)
	})

	v1.Get("/beaches", func(c *fiber.Ctx) error {
		locs, err := service.ListLocations(c.UserContext(), auth.UserID(c))
		if err != nil {
			log.Printf("ERROR: list beaches for user %s: %v", auth.UserID(c), err)
			return fiber.NewError(fiber.StatusInternalServerError, "Something went wrong")
		}
		return c.JSON(locs)
	})

	v1.Post("/beaches", func(c *fiber.Ctx) error {
		var req createBeachRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc, err := service.AddLocation(c.UserContext(), req.toLocation(auth.UserID(c)))
		if err != nil {
			var verrs validator.ValidationErrors
			switch {
			case errors.As(err, &verrs):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			case errors.Is(err, store.ErrDuplicate):
				return fiber.NewError(fiber.StatusConflict, err.Error())
			case errors.Is(err, store.ErrLimitReached):
				return fiber.NewError(fiber.StatusBadRequest, err.Error())
			}
			log.Printf("ERROR: create beach for user %s: %v", auth.UserID(c), err)
			return fiber.NewError(fiber.StatusInternalServerError, "Something went wrong")
		}

		return c.Status(fiber.StatusCreated).JSON(loc)
	})
}

// createBeachRequest holds the body of the create beach endpoint.
// Coordinates are pointers so that 0 is accepted but a missing value is not.
type createBeachRequest struct {
	Name     string   `json:"name" validate:"required"`
	Lat      *float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lng      *float64 `json:"lng" validate:"required,min=-180,max=180"`
	Position string   `json:"position" validate:"required,oneof=N S E W"`
}

func (r createBeachRequest) toLocation(userID string) weather.Location {
	return weather.Location{
		UserID:   userID,
		Lat:      *r.Lat,
		Lng:      *r.Lng,
		Name:     r.Name,
		Position: weather.Position(r.Position),
	}
}
