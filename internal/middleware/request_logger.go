package middleware

import (
	"time"

	"go-stock-opname/pkg/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const HeaderRequestID = "X-Request-ID"

// RequestLogger tags each request with an id, attaches a request logger to
// the user context and logs one line when the handler returns.
func RequestLogger(base zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		requestID := c.Get(HeaderRequestID)
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(HeaderRequestID, requestID)
		c.SetUserContext(logger.WithRequestID(c.UserContext(), base, requestID))

		start := time.Now()
		err := c.Next()
		if err != nil {
			// let the error handler pick the status before logging
			if herr := c.App().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		ev := logger.FromContext(c.UserContext(), base).Info()
		if status >= fiber.StatusInternalServerError {
			ev = logger.FromContext(c.UserContext(), base).Error()
		}
		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Dur("latency", time.Since(start)).
			Msg("http request")
		return nil
	}
}
