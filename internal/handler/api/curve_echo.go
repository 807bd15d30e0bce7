package api

import (
	"errors"

	models "GasCurve/internal/domain/models"
	"GasCurve/internal/services/analytics"
	"GasCurve/internal/usecase"
	xhttp "GasCurve/pkg/http"
	xlogger "GasCurve/pkg/logger"
	"GasCurve/pkg/util"

	"github.com/labstack/echo/v4"
)

// CurveEchoHandler exposes the price curve over HTTP.
type CurveEchoHandler struct {
	logger *xlogger.Logger
	curve  *usecase.CurveService
}

func NewCurveEchoHandler(logger *xlogger.Logger, curve *usecase.CurveService) *CurveEchoHandler {
	return &CurveEchoHandler{logger: logger, curve: curve}
}

func (h *CurveEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	g.GET("/estimate", h.Estimate)
	g.GET("/forecast", h.Forecast)
	g.GET("/summary", h.Summary)
	g.GET("/seasonal", h.Seasonal)
	g.GET("/trend", h.Trend)
	g.POST("/rebuild", h.Rebuild)
}

func (h *CurveEchoHandler) Estimate(c echo.Context) error {
	req := &models.EstimateRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	date, ok := util.ParseDate(req.Date)
	if !ok {
		return xhttp.AppErrorResponse(c,
			xhttp.BadRequestErrorf("date %q is not YYYY-MM-DD or RFC3339", req.Date))
	}

	point, err := h.curve.Estimate(c.Request().Context(), date)
	if err != nil {
		return h.curveError(c, "estimate", err)
	}
	return xhttp.SuccessResponse(c, point)
}

func (h *CurveEchoHandler) Forecast(c echo.Context) error {
	req := &models.ForecastRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	points, err := h.curve.Forecast(c.Request().Context(), req.Months)
	if err != nil {
		return h.curveError(c, "forecast", err)
	}
	return xhttp.SuccessResponse(c, points)
}

func (h *CurveEchoHandler) Summary(c echo.Context) error {
	stats, err := h.curve.Summary(c.Request().Context())
	if err != nil {
		return h.curveError(c, "summary", err)
	}
	return xhttp.SuccessResponse(c, stats)
}

func (h *CurveEchoHandler) Seasonal(c echo.Context) error {
	entries, err := h.curve.Seasonal(c.Request().Context())
	if err != nil {
		return h.curveError(c, "seasonal", err)
	}
	return xhttp.SuccessResponse(c, entries)
}

func (h *CurveEchoHandler) Trend(c echo.Context) error {
	req := &models.TrendRequest{}
	if verr := xhttp.ReadAndValidateRequest(c, req); verr != nil {
		return xhttp.BadRequestResponse(c, verr)
	}

	points, err := h.curve.TrendCurve(c.Request().Context(), req.Points)
	if err != nil {
		return h.curveError(c, "trend", err)
	}
	return xhttp.SuccessResponse(c, points)
}

func (h *CurveEchoHandler) Rebuild(c echo.Context) error {
	if err := h.curve.Rebuild(c.Request().Context()); err != nil {
		return h.curveError(c, "rebuild", err)
	}
	return xhttp.SuccessResponse(c, map[string]string{
		"series": h.curve.Series(),
		"status": "rebuilt",
	})
}

// curveError maps analytics sentinels to HTTP statuses. Invalid input is 400,
// querying before any rebuild is 409, a history too short to fit is 422.
func (h *CurveEchoHandler) curveError(c echo.Context, op string, err error) error {
	switch {
	case errors.Is(err, analytics.ErrInvalidArgument):
		return xhttp.AppErrorResponse(c, xhttp.BadRequestError(err.Error()).WithError(err))
	case errors.Is(err, analytics.ErrModelNotBuilt):
		return xhttp.AppErrorResponse(c, xhttp.ConflictError("model not built yet").WithError(err))
	case errors.Is(err, analytics.ErrInsufficientData):
		return xhttp.AppErrorResponse(c, xhttp.UnprocessableError(err.Error()).WithError(err))
	default:
		if h.logger != nil {
			h.logger.Error(op+" usecase error", xlogger.Error(err))
		}
		return xhttp.AppErrorResponse(c, err)
	}
}
