// Package middleware holds echo middleware shared by every route.
package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// SecurityHeaders sets browser hardening headers. API responses carry user
// libraries and session state, so they are never cached.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Content-Security-Policy", "frame-ancestors 'none'")

			if strings.HasPrefix(c.Request().URL.Path, "/api") {
				h.Set("Cache-Control", "no-store")
				h.Set("Pragma", "no-cache")
			}

			return next(c)
		}
	}
}
