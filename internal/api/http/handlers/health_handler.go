package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
)

// DatabaseProbe is the part of the postgres wrapper readiness needs.
type DatabaseProbe interface {
	Ping(ctx context.Context) error
	SchemaVersion(ctx context.Context) (uint, bool, error)
}

// Pinger checks one optional backend.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthDependencies describes what readiness inspects. A nil Redis means the listing
// cache runs process-local.
type HealthDependencies struct {
	ServiceName    string
	Version        string
	Database       DatabaseProbe
	Redis          Pinger
	ExpectedSchema uint
}

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	deps HealthDependencies
}

// NewHealthHandler returns a new handler instance.
func NewHealthHandler(deps HealthDependencies) *HealthHandler {
	return &HealthHandler{deps: deps}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.deps.ServiceName,
		"version": h.deps.Version,
	})
}

// Ready reports whether the submission store is reachable and migrated, and which
// listing cache tiers are serving.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if h.deps.Database == nil {
		depStatus["postgres"] = "not configured"
		ready = false
	} else if err := h.deps.Database.Ping(ctx); err != nil {
		depStatus["postgres"] = err.Error()
		ready = false
	} else {
		depStatus["postgres"] = "ok"
		schema, ok := h.schemaStatus(ctx)
		depStatus["schema"] = schema
		ready = ok
	}

	cacheTier := "local"
	if h.deps.Redis == nil {
		depStatus["redis"] = "disabled"
	} else if err := h.deps.Redis.Ping(ctx); err != nil {
		depStatus["redis"] = err.Error()
		ready = false
	} else {
		depStatus["redis"] = "ok"
		cacheTier = "local+redis"
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"listingCache": cacheTier,
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error":        "one or more dependencies unavailable",
		"listingCache": cacheTier,
		"dependencies": depStatus,
	})
}

func (h *HealthHandler) schemaStatus(ctx context.Context) (fiber.Map, bool) {
	version, dirty, err := h.deps.Database.SchemaVersion(ctx)
	if err != nil {
		return fiber.Map{"error": err.Error()}, false
	}
	status := fiber.Map{
		"version":  version,
		"expected": h.deps.ExpectedSchema,
		"dirty":    dirty,
	}
	switch {
	case dirty:
		status["error"] = fmt.Sprintf("migration %d failed halfway", version)
		return status, false
	case version < h.deps.ExpectedSchema:
		status["error"] = "schema behind, run migrations"
		return status, false
	}
	return status, true
}
