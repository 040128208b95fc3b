package http

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DeprecationMiddleware adds Deprecation, Sunset, and Link headers to a
// deprecated endpoint (RFC 8594). The sunset date is "YYYY-MM-DD"; an
// unparseable date still marks the route deprecated, just without a
// Sunset header. This helps clients migrate gracefully off old paths.
func DeprecationMiddleware(path, successor, sunset string) fiber.Handler {
	sunsetAt, sunsetErr := time.Parse("2006-01-02", sunset)

	return func(c *fiber.Ctx) error {
		if c.Path() != path {
			return c.Next()
		}

		// RFC 8594 Deprecation header
		c.Set("Deprecation", "true")

		if sunsetErr == nil {
			// RFC 8594 Sunset header (HTTP-Date format)
			c.Set("Sunset", sunsetAt.UTC().Format(time.RFC1123))

			days := time.Until(sunsetAt).Hours() / 24
			c.Set("Warning", fmt.Sprintf(`299 - "Deprecated API, will sunset in %.0f days"`, days))
		}

		if successor != "" {
			// RFC 8288 Link header pointing at the replacement
			c.Set("Link", fmt.Sprintf(`<%s>; rel="successor-version"`, successor))
		}

		return c.Next()
	}
}
