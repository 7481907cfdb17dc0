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

type probe struct {
	name string
	// nil when the dependency is not configured
	check func(ctx context.Context) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

func readinessProbes(deps *Dependencies) []probe {
	probes := []probe{{name: "store"}, {name: "nats"}}
	if deps.Store != nil {
		probes[0].check = func(ctx context.Context) error {
			if p, ok := deps.Store.(pinger); ok {
				return p.Ping(ctx)
			}
			_, err := deps.Store.List(ctx, nil)
			return err
		}
	}
	if deps.NATS != nil {
		probes[1].check = func(context.Context) error {
			if !deps.NATS.IsConnected() {
				return errDisconnected
			}
			return nil
		}
	}
	if p, ok := deps.Cache.(pinger); ok {
		probes = append(probes, probe{name: "cache", check: p.Ping})
	}
	return probes
}

// ReadyHandler checks the snippet store, NATS and the feed cache. Absent
// dependencies are reported but do not fail the check.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	probes := readinessProbes(deps)

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
		defer cancel()

		checks := make(map[string]string, len(probes))
		allOK := true
		for _, p := range probes {
			switch {
			case p.check == nil:
				checks[p.name] = "not configured"
			case p.check(ctx) != nil:
				checks[p.name] = "error"
				allOK = false
			default:
				checks[p.name] = "ok"
			}
		}

		if !allOK {
			LoggerFromCtx(ctx).Warn("not ready", "checks", checks)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "not ready", "checks": checks})
		}
		return c.JSON(fiber.Map{"status": "ready", "checks": checks})
	}
}
