package middleware

import (
	"github.com/labstack/echo/v4"
	"github.com/nguyentranbao-ct/catalog-browser/internal/repo/auth"
)

const ContextKeyAuthenticated = "authenticated"

// ForwardBearer passes the caller's bearer token to upstream catalog calls.
// Anonymous requests are allowed; the catalog decides what they may see.
func ForwardBearer() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token := auth.GetBearerToken(c.Request().Header)
			if token == "" {
				return next(c)
			}
			ctx := auth.WithToken(c.Request().Context(), token)
			c.SetRequest(c.Request().WithContext(ctx))
			c.Set(ContextKeyAuthenticated, true)
			return next(c)
		}
	}
}
