package httpserver

import (
	"errors"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/logging"
)

// RequestLogger hands every request a logger tagged with its request id and
// route, then writes one summary line once the error handler has rendered
// any returned error.
func RequestLogger(base *slog.Logger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			rid := req.Header.Get(echo.HeaderXRequestID)
			if rid == "" {
				rid = c.Response().Header().Get(echo.HeaderXRequestID)
			}

			l := base.With("request_id", rid, "method", req.Method, "route", c.Path())
			c.SetRequest(req.WithContext(logging.IntoContext(req.Context(), l)))

			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}

			attrs := []any{
				"status", c.Response().Status,
				"duration_ms", time.Since(start).Milliseconds(),
				"remote_ip", c.RealIP(),
			}
			if id, ok := c.Get(ctxAccountID).(string); ok {
				attrs = append(attrs, "account_id", id, "role", c.Get(ctxRole))
			}

			var he *echo.HTTPError
			switch status := c.Response().Status; {
			case status >= 500:
				l.Error("request_completed", append(attrs, "error", err)...)
			case status >= 400 && errors.As(err, &he):
				l.Warn("request_completed", append(attrs, "reason", he.Message)...)
			case status >= 400:
				l.Warn("request_completed", attrs...)
			default:
				l.Info("request_completed", append(attrs, "bytes", c.Response().Size)...)
			}
			return nil
		}
	}
}
