package http

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"pulse_server/pkg/apperr"
)

// parseBody decodes the JSON body into dst. An empty body leaves dst at its
// zero value so the service can report which field is missing.
func parseBody(c *fiber.Ctx, dst any) error {
	if len(c.Body()) == 0 {
		return nil
	}
	if err := c.BodyParser(dst); err != nil {
		return apperr.BadRequest("invalid request body")
	}
	return nil
}

// requestContext carries the request id set by middleware.RequestID.
func requestContext(c *fiber.Ctx) context.Context {
	return c.UserContext()
}
