package middleware

import (
	"time"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// RequestLogger logs one entry per request with its outcome and latency.
// Server errors are logged at error level, client errors at warn.
func RequestLogger(logger logrus.FieldLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				// Let the HTTP error handler write the response so the
				// logged status is the one the client sees.
				c.Error(err)
			}

			req := c.Request()
			status := c.Response().Status
			entry := logger.WithFields(logrus.Fields{
				"status_code": status,
				"method":      req.Method,
				"path":        req.URL.Path,
				"remote_ip":   c.RealIP(),
				"latency_ms":  time.Since(start).Milliseconds(),
			})
			if id, ok := UserID(c); ok {
				entry = entry.WithField("user_id", id)
			}
			if reqID := c.Response().Header().Get(echo.HeaderXRequestID); reqID != "" {
				entry = entry.WithField("request_id", reqID)
			}

			switch {
			case status >= 500:
				entry.Error("request completed with server error")
			case status >= 400:
				entry.Warn("request completed with client error")
			default:
				entry.Info("request completed")
			}
			return nil
		}
	}
}
