package http

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"

	"weathercast/internal/window"
	"weathercast/pkg/observe"
)

// SwaggerPath is where the generated API document is read from.
var SwaggerPath = "docs/swagger.json"

type routes struct {
	window   *window.Window
	pipeline window.Pipeline
	l        *observe.Logger
}

// NewRouter mounts the window views, the JSON forecast endpoint and the
// swagger UI on app. pipeline serves /api/forecast directly; the window runs
// its own copy in the background.
func NewRouter(
	app *fiber.App,
	w *window.Window,
	pipeline window.Pipeline,
	l *observe.Logger,
) {
	r := &routes{
		window:   w,
		pipeline: pipeline,
		l:        l,
	}

	// Swagger documentation
	app.Get("/swagger/doc.json", func(c *fiber.Ctx) error {
		swaggerData, err := os.ReadFile(SwaggerPath)
		if err != nil {
			return c.Status(fiber.ErrInternalServerError.Code).JSON(fiber.Map{"error": "Failed to read Swagger documentation"})
		}

		c.Set("Content-Type", "application/json")
		return c.Send(swaggerData)
	})

	app.Get("/swagger/*", swagger.New(swagger.Config{
		URL:         "/swagger/doc.json",
		DeepLinking: true,
	}))

	// Window
	app.Get("/", r.handleWindow)
	app.Get("/state", r.handleState)
	app.Post("/submit", r.handleSubmit)
	app.Post("/cancel", r.handleCancel)
	app.Post("/dismiss", r.handleDismiss)

	// API routes
	app.Get("/api/forecast", r.handleForecastCall)
}
