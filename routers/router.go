package routers

import (
	"cursapp/middleware"
	"cursapp/routers/catalogRoutes"
	"cursapp/routers/communityRoutes"
	"cursapp/routers/evaluationRoutes"
	"cursapp/routers/recommendationRoutes"
	"cursapp/routers/userRoutes"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// NewApp builds the fiber app with every route group registered. requestLog toggles the
// access log, tests turn it off.
func NewApp(requestLog bool) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:   "cursapp",
		BodyLimit: 4 * 1024 * 1024,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE",
		AllowHeaders: "Content-Type,Authorization," + middleware.WebhookSignatureHeader,
	}))
	if requestLog {
		app.Use(fiberlogger.New(fiberlogger.Config{
			Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
		}))
	}

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": true, "message": "ok", "data": nil})
	})

	userRoutes.SetupUserRoutes(app)
	catalogRoutes.SetupCatalogRoutes(app)
	evaluationRoutes.SetupEvaluationRoutes(app)
	communityRoutes.SetupCommunityRoutes(app)
	recommendationRoutes.SetupRecommendationRoutes(app)

	return app
}
