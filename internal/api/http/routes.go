package httpapi

import (
	"context"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/farisanuar/teg-site-survey/internal/fetch"
	"github.com/farisanuar/teg-site-survey/internal/geo"
	"github.com/farisanuar/teg-site-survey/internal/maps"
	"github.com/farisanuar/teg-site-survey/internal/survey"
	"github.com/farisanuar/teg-site-survey/internal/teg"
)

var validate = validator.New()

// SurveyService runs site surveys.
type SurveyService interface {
	SurveySite(ctx context.Context, coord geo.Coordinate) (survey.Result, error)
}

// MapsService captures street-level and hybrid satellite imagery.
type MapsService interface {
	StreetView(ctx context.Context, coord geo.Coordinate) (maps.Capture, error)
	HybridMap(ctx context.Context, coord geo.Coordinate) (maps.Capture, error)
}

// surveyRequest is the body of POST /get_lst/.
type surveyRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon float64 `json:"lon" validate:"gte=-180,lte=180"`
}

// mapRequest is the body of the map-capture endpoints, which use "lng".
type mapRequest struct {
	Lat float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lng float64 `json:"lng" validate:"gte=-180,lte=180"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
//
// Failure bodies keep the legacy "error" key, but the HTTP status code now
// reflects the failure class: 400 for invalid input, 404 when a collection
// is empty, 502 when an upstream image fetch fails.
func RegisterRoutes(app *fiber.App, surveySvc SurveyService, mapsSvc MapsService) {
	app.Post("/get_lst/", func(c *fiber.Ctx) error {
		var req surveyRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := surveySvc.SurveySite(c.Context(), geo.Coordinate{Lat: req.Lat, Lon: req.Lon})
		if err != nil {
			switch {
			case errors.Is(err, survey.ErrNoLSTData):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "No valid LST data available for this location/date range.",
				})
			case errors.Is(err, survey.ErrNoRadiationData):
				return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
					"error": "No valid solar radiation data available for this location/date range.",
				})
			}
			var se *fetch.StatusError
			if errors.As(err, &se) {
				return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
					"error":  "Failed to fetch image",
					"status": se.StatusCode,
				})
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to survey site")
		}

		return c.JSON(fiber.Map{
			"message":         "LST image saved.",
			"path":            res.Image.Path,
			"url":             res.URL,
			"lst":             res.LST,
			"solar_radiation": res.SolarRadiation,
		})
	})

	app.Post("/streetview", func(c *fiber.Ctx) error {
		return handleMapCapture(c, mapsSvc.StreetView,
			"Street View image saved", "Could not fetch Street View image")
	})

	app.Post("/hybrid_map", func(c *fiber.Ctx) error {
		return handleMapCapture(c, mapsSvc.HybridMap,
			"Hybrid satellite image saved", "Could not fetch satellite image")
	})

	app.Post("/calculate_teg_plan/", func(c *fiber.Ctx) error {
		var in teg.PlanInput
		if err := c.BodyParser(&in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		if err := validate.Struct(in); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		return c.JSON(teg.CalculatePlan(in))
	})
}

type captureFunc func(ctx context.Context, coord geo.Coordinate) (maps.Capture, error)

// handleMapCapture is the shared handler body for the two map endpoints,
// which differ only in messages and the underlying capture.
func handleMapCapture(c *fiber.Ctx, capture captureFunc, okMsg, failMsg string) error {
	var req mapRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	res, err := capture(c.Context(), geo.Coordinate{Lat: req.Lat, Lon: req.Lng})
	if err != nil {
		var se *fetch.StatusError
		if errors.As(err, &se) {
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": failMsg,
			})
		}
		return fiber.NewError(fiber.StatusInternalServerError, failMsg)
	}

	body := fiber.Map{
		"message":   okMsg,
		"file_path": res.Image.Path,
	}
	if res.Address != "" {
		body["address"] = res.Address
	}
	return c.JSON(body)
}
