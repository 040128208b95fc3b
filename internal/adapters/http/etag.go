package http

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
)

// ETagMiddleware computes a weak ETag over the response body and answers
// 304 Not Modified when the client already holds a matching one.
func ETagMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}

		// Only successful GET responses with a body are taggable, and
		// handlers that set their own ETag win.
		if c.Method() != fiber.MethodGet || c.Response().StatusCode() != 200 {
			return nil
		}
		if len(c.GetRespHeader("ETag")) > 0 {
			return nil
		}
		body := c.Response().Body()
		if len(body) == 0 {
			return nil
		}

		sum := sha256.Sum256(body)
		etag := `W/"` + hex.EncodeToString(sum[:8]) + `"`
		c.Set("ETag", etag)

		// If-None-Match may carry a comma-separated list.
		for _, candidate := range strings.Split(c.Get("If-None-Match"), ",") {
			if strings.TrimSpace(candidate) == etag {
				c.Status(304)
				c.Response().ResetBody()
				return nil
			}
		}

		return nil
	}
}
