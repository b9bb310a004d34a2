package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/trafine/internal/logging"
	"github.com/Skotchmaster/trafine/internal/middleware/auth"
	"github.com/Skotchmaster/trafine/internal/service"
	"github.com/Skotchmaster/trafine/internal/transport"
	"github.com/Skotchmaster/trafine/internal/util"
)

type IncidentHTTP struct {
	Svc *service.IncidentService
}

func (h *IncidentHTTP) Report(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "incident_report")

	var req transport.ReportIncidentRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("report_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	inc, err := h.Svc.Report(ctx, auth.Username(c), req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrValidation):
			l.Warn("report_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrUnauthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	l.Info("incident_reported", "incident_id", inc.ID)
	return c.JSON(http.StatusCreated, transport.IncidentResponse{
		Message:  "Incident reported",
		Incident: inc,
	})
}

func (h *IncidentHTTP) List(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "incident_list")

	list, err := h.Svc.List(ctx)
	if err != nil {
		l.Error("list_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, list)
}

func (h *IncidentHTTP) Get(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "incident_get")

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		l.Warn("get_error", "status", 400, "reason", "bad id", "id", c.Param("id"))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid incident id")
	}

	inc, err := h.Svc.Get(ctx, uint(id))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "incident not found")
		}
		l.Error("get_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
	}
	return c.JSON(http.StatusOK, inc)
}

func (h *IncidentHTTP) Vote(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "incident_vote")

	var req transport.VoteRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("vote_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	if req.IncidentID == nil || req.Vote == nil {
		l.Warn("vote_error", "status", 400, "reason", "missing fields")
		return echo.NewHTTPError(http.StatusBadRequest, "incidentId and vote are required")
	}

	inc, err := h.Svc.Vote(ctx, auth.Username(c), *req.IncidentID, *req.Vote)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidVote):
			l.Warn("vote_error", "status", 400, "vote", *req.Vote)
			return echo.NewHTTPError(http.StatusBadRequest, "vote must be 1 or -1")
		case errors.Is(err, service.ErrNotFound):
			l.Warn("vote_error", "status", 404, "incident_id", *req.IncidentID)
			return echo.NewHTTPError(http.StatusNotFound, "incident not found")
		case errors.Is(err, service.ErrUnauthenticated):
			return echo.NewHTTPError(http.StatusUnauthorized, "no token provided")
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusOK, transport.IncidentResponse{
		Message:  "Vote recorded",
		Incident: inc,
	})
}

func (h *IncidentHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "incident_search")

	q := c.QueryParam("q")
	w := util.Calculate(
		util.ParseIntDefault(c.QueryParam("page"), 1),
		util.ParseIntDefault(c.QueryParam("size"), util.DefaultPageSize),
	)

	total, hits, err := h.Svc.Search(ctx, q, w.From, w.Size)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSearchDisabled):
			return echo.NewHTTPError(http.StatusServiceUnavailable, "search is not configured")
		case errors.Is(err, service.ErrValidation):
			return echo.NewHTTPError(http.StatusBadRequest, "query parameter q is required")
		default:
			l.Error("search_error", "status", 500, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
	}

	return c.JSON(http.StatusOK, transport.SearchResponse{
		Data: hits,
		Meta: transport.SearchMeta{Page: w.Page, Size: w.Size, Total: total},
	})
}
