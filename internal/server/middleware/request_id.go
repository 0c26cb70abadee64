package middleware

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/catalog-browser/pkg/logger"
)

const (
	XRequestID     = "x-request-id"
	XCorrelationID = "x-correlation-id"
)

// GetRequestID prefers the id already assigned to this request and falls
// back to the caller's headers.
func GetRequestID(c echo.Context) string {
	if id, ok := c.Get(XRequestID).(string); ok && id != "" {
		return id
	}
	if id := logger.RequestID(c.Request().Context()); id != "" {
		return id
	}
	return GetRequestIDFromHeader(c.Request().Header)
}

func GetRequestIDFromHeader(h http.Header) string {
	if id := h.Get(XRequestID); id != "" {
		return id
	}
	return h.Get(XCorrelationID)
}

// InjectRequestID makes the id visible to handlers, to ctx-aware logging and
// to the client.
func InjectRequestID(c echo.Context, reqID string) {
	ctx := logger.WithRequestID(c.Request().Context(), reqID)
	c.SetRequest(c.Request().WithContext(ctx))
	c.Set(XRequestID, reqID)
	c.Response().Header().Set(XRequestID, reqID)
}

type RequestIDConfig struct {
	Skipper      Skipper
	GenerateFunc func() string
	DetectFunc   func(echo.Context) string
}

var DefaultRequestIDConfig = RequestIDConfig{
	Skipper:      DefaultSkipper,
	GenerateFunc: uuid.NewString,
	DetectFunc:   GetRequestID,
}

func RequestID() echo.MiddlewareFunc {
	return RequestIDWithConfig(DefaultRequestIDConfig)
}

func RequestIDWithConfig(config RequestIDConfig) echo.MiddlewareFunc {
	if config.Skipper == nil {
		config.Skipper = DefaultRequestIDConfig.Skipper
	}
	if config.GenerateFunc == nil {
		config.GenerateFunc = DefaultRequestIDConfig.GenerateFunc
	}
	if config.DetectFunc == nil {
		config.DetectFunc = DefaultRequestIDConfig.DetectFunc
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if config.Skipper(c) {
				return next(c)
			}
			reqID := config.DetectFunc(c)
			if reqID == "" {
				reqID = config.GenerateFunc()
			}
			InjectRequestID(c, reqID)
			return next(c)
		}
	}
}
