// Package server assembles the Fiber application: middleware, route groups
// and the health check.
package server

import (
	"errors"
	"time"

	"catalog/internal/config"
	"catalog/internal/handlers"
	"catalog/internal/middleware"
	"catalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
)

// Deps are the services the HTTP layer is built on. Auth is nil when
// authentication is disabled.
type Deps struct {
	Products *services.ProductService
	Auth     *services.AuthService
	Log      zerolog.Logger
}

// New builds the Fiber app for cfg.
func New(cfg *config.Config, deps Deps) *fiber.App {
	log := deps.Log.With().Str("component", "http").Logger()

	app := fiber.New(fiber.Config{
		AppName:               "catalog",
		BodyLimit:             cfg.UploadMaxBytes,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler(log),
	})

	app.Use(requestid.New())
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${pid} ${locals:requestid} ${status} - ${method} ${path} ${latency}\n",
		Output: log,
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Format(time.RFC3339),
		})
	})

	api := app.Group(cfg.BasePath)

	var guards []fiber.Handler
	if deps.Auth != nil {
		handlers.NewAuthHandler(deps.Auth).RegisterRoutes(api)
		guards = append(guards, middleware.AuthRequired(deps.Auth, log))
	}
	handlers.NewProductHandler(deps.Products).RegisterRoutes(api, guards...)

	return app
}

// errorHandler answers errors that escaped the handlers (unknown routes,
// oversized bodies, recovered panics) with a JSON message.
func errorHandler(log zerolog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			code = fe.Code
		}
		if code >= fiber.StatusInternalServerError {
			log.Error().Err(err).
				Str("request_id", requestID(c)).
				Str("method", c.Method()).
				Str("path", c.Path()).
				Msg("request failed")
		}
		return c.Status(code).JSON(fiber.Map{
			"message": err.Error(),
		})
	}
}

func requestID(c *fiber.Ctx) string {
	id, _ := c.Locals("requestid").(string)
	return id
}
