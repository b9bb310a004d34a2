package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/Skotchmaster/trafine/internal/db"
	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/metrics"
	"github.com/Skotchmaster/trafine/internal/middleware/auth"
)

type Deps struct {
	AuthHandler       *AuthHTTP
	IncidentHandler   *IncidentHTTP
	NavigationHandler *NavigationHTTP

	Sessions auth.Verifier
	DB       *gorm.DB
	Metrics  *metrics.Metrics
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", d.ready)
	if d.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(d.Metrics.Handler()))
	}

	authMw := auth.NewSessionAuth(d.Sessions)

	a := e.Group("/auth")
	a.POST("/register", d.AuthHandler.Register)
	a.POST("/login", d.AuthHandler.Login)

	e.GET("/protected", d.AuthHandler.Protected, authMw.RequireSession)

	e.GET("/incident", d.IncidentHandler.List)
	e.GET("/incident/search", d.IncidentHandler.Search)
	e.GET("/incident/:id", d.IncidentHandler.Get)
	e.POST("/incident", d.IncidentHandler.Report, authMw.RequireSession)
	e.POST("/incident/vote", d.IncidentHandler.Vote, authMw.RequireSession)

	e.GET("/route", d.NavigationHandler.Route)
	e.GET("/itinerary/qr", d.NavigationHandler.QR)
}

func (d *Deps) ready(c echo.Context) error {
	if d.DB == nil {
		return c.NoContent(http.StatusOK)
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := db.Ping(ctx, d.DB); err != nil {
		logging.FromContext(ctx).Error("readiness_failed", "error", err)
		return c.NoContent(http.StatusServiceUnavailable)
	}
	return c.NoContent(http.StatusOK)
}
