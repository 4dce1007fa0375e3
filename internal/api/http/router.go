package http

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/spec-kit/project-gallery/internal/api/http/handlers"
	"github.com/spec-kit/project-gallery/internal/auth"
	"github.com/spec-kit/project-gallery/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Submissions    *handlers.SubmissionsHandler
	Public         *handlers.PublicSubmissionsHandler
	Upload         *handlers.UploadHandler
	Products       *handlers.ProductsHandler
	AuthMiddleware *auth.AuthMiddleware
	// PublicMaxAge is the Cache-Control max-age, in seconds, of public listing responses.
	PublicMaxAge int
}

// NewApp creates the fiber app with the JSON error fallback.
func NewApp(name string, bodyLimit int) *fiber.App {
	return fiber.New(fiber.Config{
		AppName:      name,
		BodyLimit:    bodyLimit,
		ErrorHandler: ErrorHandler,
	})
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(requestid.New())

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", observability.Handler())

	storefrontCORS := cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: strings.Join([]string{fiber.MethodGet, fiber.MethodPost, fiber.MethodOptions}, ","),
		AllowHeaders: "Content-Type",
	})
	app.Use("/api/public", storefrontCORS)
	app.Use("/api/upload", storefrontCORS)

	app.Get("/api/public/submissions", publicCacheControl(cfg.PublicMaxAge), cfg.Public.ListApproved)
	app.Post("/api/public/submissions", cfg.Public.Submit)
	app.Post("/api/upload", cfg.Upload.Upload)

	protected := func(handler fiber.Handler) []fiber.Handler {
		return []fiber.Handler{cfg.AuthMiddleware.Handle, auth.RequireShop(), handler}
	}
	app.Get("/api/submissions", protected(cfg.Submissions.ListSubmissions)...)
	app.Post("/api/submissions", protected(cfg.Submissions.CreateSubmission)...)
	app.Get("/api/submissions/:id", protected(cfg.Submissions.GetSubmission)...)
	app.Put("/api/submissions/:id", protected(cfg.Submissions.UpdateStatus)...)
	app.Delete("/api/submissions/:id", protected(cfg.Submissions.DeleteSubmission)...)
	app.Get("/api/submissions/:id/history", protected(cfg.Submissions.GetHistory)...)
	app.Get("/api/products/search", protected(cfg.Products.Search)...)
}

// publicCacheControl marks successful responses as cacheable by browsers and CDNs.
func publicCacheControl(maxAge int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := c.Next(); err != nil {
			return err
		}
		if maxAge > 0 && c.Response().StatusCode() == fiber.StatusOK {
			c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", maxAge))
		}
		return nil
	}
}
