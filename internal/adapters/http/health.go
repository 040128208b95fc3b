package http

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	startedAt := time.Now()

	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(startedAt).String(),
			"version": "dev",
		})
	}
}

type readyCheck struct {
	name  string
	probe func(context.Context) error
}

// ReadyHandler probes the backing services the API cannot serve without.
// NATS and the cache are optional at startup, so a missing one is reported
// but only the database gates readiness alongside a broken configured dep.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	checks := []readyCheck{
		{"database", func(ctx context.Context) error {
			if deps.DB == nil {
				return errNotConfigured
			}
			return deps.DB.Pool.Ping(ctx)
		}},
		{"nats", func(ctx context.Context) error {
			if deps.NATS == nil {
				return errNotConfigured
			}
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}},
		{"cache", func(ctx context.Context) error {
			if deps.Cache == nil {
				return errNotConfigured
			}
			_, err := deps.Cache.Get(ctx, "__health_check__")
			// A missing key is a healthy cache.
			if err != nil && err.Error() == "valkey nil message" {
				return nil
			}
			return err
		}},
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), 3*time.Second)
		defer cancel()

		results := make(map[string]string, len(checks))
		ready := true
		for _, chk := range checks {
			start := time.Now()
			err := chk.probe(ctx)
			switch {
			case err == nil:
				results[chk.name] = "ok (" + time.Since(start).Round(time.Millisecond).String() + ")"
			case err == errNotConfigured:
				results[chk.name] = "not configured"
				if chk.name == "database" {
					ready = false
				}
			default:
				results[chk.name] = "error: " + err.Error()
				ready = false
			}
		}

		status, code := "ready", 200
		if !ready {
			status, code = "not ready", 503
		}
		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": results,
		})
	}
}

var (
	errNotConfigured = fiber.NewError(503, "not configured")
	errDisconnected  = fiber.NewError(503, "disconnected")
)
