package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
)

// LogRequestConfig controls what LogRequest attaches to each entry. Nil
// funcs fall back to: enabled, query params logged, request id from the
// x-request-id header.
type LogRequestConfig struct {
	Logger       Logger
	Enabled      func(c echo.Context) bool
	RequestID    func(c echo.Context) string
	QueryParams  func(c echo.Context) bool
	KeyAndValues func(c echo.Context) []interface{}
}

const ContextKeySessionID = "session_id"

// LogRequest writes one entry per request once the handler and the error
// handler have run, so the logged status is the one the client saw.
func LogRequest(config LogRequestConfig) echo.MiddlewareFunc {
	if config.Logger == nil {
		panic("Logger is required to use LogRequest")
	}
	if config.Enabled == nil {
		config.Enabled = func(echo.Context) bool { return true }
	}
	if config.QueryParams == nil {
		config.QueryParams = func(echo.Context) bool { return true }
	}
	if config.RequestID == nil {
		config.RequestID = GetRequestID
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !config.Enabled(c) {
				return next(c)
			}

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()
			args := make([]interface{}, 0, 24)
			args = append(args,
				"status", res.Status,
				"method", req.Method,
				"path", req.URL.Path,
				"latency_ms", time.Since(start).Milliseconds(),
				"real_ip", c.RealIP(),
				"user_agent", req.UserAgent(),
				"request_id", config.RequestID(c),
			)
			if sessionID, ok := c.Get(ContextKeySessionID).(string); ok && sessionID != "" {
				args = append(args, "session_id", sessionID)
			}
			if c.Get(ContextKeyAuthenticated) != nil {
				args = append(args, "authenticated", true)
			}
			if config.QueryParams(c) && req.URL.RawQuery != "" {
				args = append(args, "query", req.URL.RawQuery)
			}
			if config.KeyAndValues != nil {
				args = append(args, config.KeyAndValues(c)...)
			}
			if err != nil {
				args = append(args, "error", err.Error())
			}

			switch {
			case res.Status >= 500:
				config.Logger.Errorw("request failed", args...)
			case res.Status >= 400:
				config.Logger.Warnw("request rejected", args...)
			default:
				config.Logger.Infow("request served", args...)
			}

			return err
		}
	}
}
