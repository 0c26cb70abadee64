package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/catalog-browser/internal/models"
)

// ErrorHandler renders every error as a ResponseError. Upstream catalog
// failures map to 502, filter validation failures to 400.
func ErrorHandler(log Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if err == nil || c.Response().Committed {
			return
		}

		resp := toResponseError(err)
		if errors.Is(err, context.Canceled) && c.Request().Context().Err() == context.Canceled {
			resp.Status = 499
		}
		if resp.Status == http.StatusNotFound && isNotFoundHandler(c.Handler()) {
			resp.ErrorMessage = "no route matched"
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(resp.Status)
		} else {
			err = c.JSON(resp.Status, resp)
		}
		if err != nil {
			log.Errorw("could not response", "code", resp.Status, "response_body", resp)
		}
	}
}

func toResponseError(err error) *ResponseError {
	var (
		re *ResponseError
		he *echo.HTTPError
		qe *models.QueryError
	)
	switch {
	case errors.As(err, &re):
		return re
	case errors.As(err, &he):
		return &ResponseError{
			Status:       he.Code,
			Err:          err,
			ErrorMessage: fmt.Sprint(he.Message),
		}
	case errors.As(err, &qe):
		return &ResponseError{
			Status:       http.StatusBadGateway,
			Err:          err,
			ErrorCode:    string(qe.Kind),
			ErrorMessage: qe.Message,
			ErrorData:    map[string]any{"transport": qe.Transport, "upstream_status": qe.StatusCode},
		}
	case errors.Is(err, models.ErrInvalidFilter):
		return &ResponseError{
			Status:       http.StatusBadRequest,
			Err:          err,
			ErrorCode:    "invalid_filter",
			ErrorMessage: err.Error(),
		}
	}
	return &ResponseError{
		Status:       http.StatusInternalServerError,
		Err:          err,
		ErrorMessage: http.StatusText(http.StatusInternalServerError),
	}
}
