package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"CrediScan/internal/domain/models"
	"CrediScan/internal/usecase"
	xhttp "CrediScan/pkg/http"
	"CrediScan/pkg/http/middleware"
	xlogger "CrediScan/pkg/logger"
	"CrediScan/pkg/util"
)

// AnalysisEchoHandler exposes the analysis service over HTTP.
type AnalysisEchoHandler struct {
	logger  *xlogger.Logger
	svc     *usecase.AnalysisService
	limiter middleware.Allower
}

// NewAnalysisEchoHandler builds the handler. limiter may be nil to disable rate limiting.
func NewAnalysisEchoHandler(logger *xlogger.Logger, svc *usecase.AnalysisService, limiter middleware.Allower) *AnalysisEchoHandler {
	return &AnalysisEchoHandler{logger: logger, svc: svc, limiter: limiter}
}

func (h *AnalysisEchoHandler) RegisterRoutes(e *echo.Echo) {
	g := e.Group("/api")
	var analyzeMW []echo.MiddlewareFunc
	if h.limiter != nil {
		analyzeMW = append(analyzeMW, middleware.RateLimit(h.limiter, h.rateLimited))
	}
	g.POST("/analyze", h.Analyze, analyzeMW...)
	g.GET("/health", h.Health)
	g.GET("/news/status", h.NewsStatus)
	g.POST("/news/refresh", h.RefreshNews)
	g.GET("/analyses", h.History)
}

func (h *AnalysisEchoHandler) Analyze(c echo.Context) error {
	req := &models.AnalyzeRequest{}
	if errs := xhttp.BindAndValidate(c, req); errs != nil {
		return xhttp.ErrorsResponse(c, errs...)
	}

	res, err := h.svc.Analyze(c.Request().Context(), req.Text, req.URL)
	if errors.Is(err, models.ErrEmptyText) {
		return xhttp.AppErrorResponse(c, xhttp.EmptyTextError(err.Error()))
	}
	if err != nil {
		h.logger.Error("analyze usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.InternalError("analysis failed").WithError(err))
	}
	return xhttp.SuccessResponse(c, res)
}

func (h *AnalysisEchoHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, h.svc.Health())
}

func (h *AnalysisEchoHandler) NewsStatus(c echo.Context) error {
	st, _ := h.svc.NewsStatus()
	c.Response().Header().Set(echo.HeaderCacheControl, "no-store")
	return xhttp.SuccessResponse(c, st)
}

func (h *AnalysisEchoHandler) RefreshNews(c echo.Context) error {
	st, err := h.svc.RefreshNews(c.Request().Context())
	switch {
	case errors.Is(err, usecase.ErrNewsDisabled):
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError(err.Error()))
	case err != nil:
		// previous snapshot is still served; report the failure with the status
		h.logger.Warn("news refresh failed", xlogger.Error(err))
		return xhttp.DataResponse(c, http.StatusBadGateway, st)
	}
	return xhttp.SuccessResponse(c, st)
}

func (h *AnalysisEchoHandler) History(c echo.Context) error {
	req := &models.HistoryRequest{}
	if errs := xhttp.BindAndValidate(c, req); errs != nil {
		return xhttp.ErrorsResponse(c, errs...)
	}
	var since time.Time
	if req.Since != "" {
		t, ok := util.ParseTime(req.Since)
		if !ok {
			return xhttp.AppErrorResponse(c, xhttp.DatetimeError("since", "since must be RFC3339, a date or unix seconds"))
		}
		since = t
	}

	rows, err := h.svc.History(c.Request().Context(), since, req.Limit)
	if err != nil {
		h.logger.Error("history usecase error", xlogger.Error(err))
		return xhttp.AppErrorResponse(c, xhttp.ServiceUnavailableError("history unavailable").WithError(err))
	}
	return xhttp.ListResponse(c, rows, int64(len(rows)))
}

func (h *AnalysisEchoHandler) rateLimited(c echo.Context) error {
	c.Response().Header().Set("Retry-After", "1")
	return xhttp.AppErrorResponse(c, xhttp.TooManyRequestsError("too many analysis requests, slow down"))
}
