package api

import (
	"time"

	echo "github.com/labstack/echo/v5"
)

// securityHeaders returns middleware that sets standard security
// response headers.
func securityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			h := c.Response().Header()
			h.Set("X-Frame-Options", "DENY")
			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			return next(c)
		}
	}
}

// requestLogger logs one line per request with method, path, duration,
// and the handler error when there was one. The status code is written
// by the error handler after this middleware returns, so it is not
// observable here.
func (s *Server) requestLogger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c *echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				s.logger.Info("Request",
					"method", c.Request().Method,
					"path", c.Request().URL.Path,
					"duration", time.Since(start),
					"error", err)
				return err
			}
			s.logger.Info("Request",
				"method", c.Request().Method,
				"path", c.Request().URL.Path,
				"duration", time.Since(start))
			return nil
		}
	}
}
