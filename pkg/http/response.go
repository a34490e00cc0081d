package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// APIResponse is the envelope of every JSON response. Status mirrors the HTTP status.
type APIResponse struct {
	Status  int         `json:"status" example:"200"`
	Message string      `json:"message" example:"OK"`
	Data    interface{} `json:"data,omitempty"`
}

// Page wraps list results.
type Page struct {
	Rows  interface{} `json:"rows"`
	Total int64       `json:"total"`
}

// DataResponse writes the envelope with the given HTTP status.
func DataResponse(c echo.Context, status int, data interface{}) error {
	return c.JSON(status, APIResponse{
		Status:  status,
		Message: http.StatusText(status),
		Data:    data,
	})
}

func SuccessResponse(c echo.Context, data interface{}) error {
	return DataResponse(c, http.StatusOK, data)
}

func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return DataResponse(c, http.StatusOK, &Page{Rows: rows, Total: total})
}

// ErrorsResponse writes a list of errors; status is taken from the first one.
func ErrorsResponse(c echo.Context, errs ...*AppError) error {
	status := http.StatusInternalServerError
	if len(errs) > 0 && errs[0].Status != 0 {
		status = errs[0].Status
	}
	return DataResponse(c, status, errs)
}

// AppErrorResponse renders err when it is an *AppError and a generic 500 otherwise.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return ErrorsResponse(c, appErr)
	}
	return ErrorsResponse(c, InternalError("something went wrong"))
}

// ErrorHandler renders errors that escape handlers, including echo's own 404/405, in the envelope.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		_ = ErrorsResponse(c, NewAppError(CodeHTTP, "", http.StatusText(he.Code), he.Code))
		return
	}
	_ = AppErrorResponse(c, err)
}
