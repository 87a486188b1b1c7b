package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"

	"ytscribe/errors"
)

// NewErrorHandler builds the app-wide Fiber error handler. Application
// errors surface their own status and message; anything else becomes an
// opaque 500.
func NewErrorHandler(log *logrus.Logger) fiber.ErrorHandler {
	l := log.WithField("component", "handlers")

	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		message := "Internal Server Error"

		switch e := err.(type) {
		case *errors.AppError:
			code = e.Code
			message = e.Message
		case *fiber.Error:
			code = e.Code
			message = e.Message
		}

		entry := l.WithFields(logrus.Fields{
			"request_id": c.Locals("requestid"),
			"path":       c.Path(),
			"method":     c.Method(),
			"status":     code,
		}).WithError(err)
		if code >= fiber.StatusInternalServerError {
			entry.Error("Request error")
		} else {
			entry.Warn("Request rejected")
		}

		return c.Status(code).JSON(fiber.Map{
			"error": message,
		})
	}
}
