package middleware

import (
	"net/http"
	"regexp"

	"github.com/labstack/echo/v4"
)

// CORS allows origins matching pattern to read the catalog API. The API is
// read-only, so only GET, HEAD and preflight are advertised.
func CORS(pattern *regexp.Regexp) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			respHeader := c.Response().Header()
			respHeader.Add(echo.HeaderVary, echo.HeaderOrigin)
			origin := c.Request().Header.Get(echo.HeaderOrigin)
			if origin == "" || pattern == nil || !pattern.MatchString(origin) {
				return next(c)
			}
			respHeader.Set(echo.HeaderAccessControlAllowOrigin, origin)
			respHeader.Set(echo.HeaderAccessControlExposeHeaders, XRequestID)
			if c.Request().Method == http.MethodOptions {
				// `*` only may not cover Authorization header in Safari 12
				respHeader.Set(echo.HeaderAccessControlAllowHeaders, "*, Authorization")
				respHeader.Set(echo.HeaderAccessControlAllowMethods, "OPTIONS, GET, HEAD")
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}
