package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/trafine/internal/directions"
	"github.com/Skotchmaster/trafine/internal/domain"
	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/qr"
	"github.com/Skotchmaster/trafine/internal/transport"
)

type RouteProvider interface {
	Route(ctx context.Context, origin, destination domain.Coordinate) (json.RawMessage, error)
}

// NavigationHTTP fronts the directions provider and the QR encoder.
type NavigationHTTP struct {
	Directions RouteProvider
	QRSize     int
}

func (h *NavigationHTTP) Route(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "route")

	rawOrigin, rawDest := c.QueryParam("origin"), c.QueryParam("destination")
	if rawOrigin == "" || rawDest == "" {
		l.Warn("route_error", "status", 400, "reason", "missing params")
		return echo.NewHTTPError(http.StatusBadRequest, "origin and destination are required")
	}
	origin, err := domain.ParseCoordinate(rawOrigin)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "origin must be a lon,lat pair")
	}
	dest, err := domain.ParseCoordinate(rawDest)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "destination must be a lon,lat pair")
	}

	body, err := h.Directions.Route(ctx, origin, dest)
	if err != nil {
		details := err.Error()
		var upErr *directions.UpstreamError
		if errors.As(err, &upErr) {
			details = upErr.Details
		}
		l.Error("route_error", "status", 500, "reason", "provider call failed", "error", err)
		return c.JSON(http.StatusInternalServerError, transport.UpstreamErrorResponse{
			Message: "Failed to fetch route",
			Details: details,
		})
	}

	return c.JSONBlob(http.StatusOK, body)
}

func (h *NavigationHTTP) QR(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "itinerary_qr")

	content := c.QueryParam("url")
	if content == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "url is required")
	}

	dataURL, err := qr.DataURL(content, h.QRSize)
	if err != nil {
		l.Error("qr_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to generate QR code")
	}
	return c.JSON(http.StatusOK, transport.QRResponse{QRCodeURL: dataURL})
}
