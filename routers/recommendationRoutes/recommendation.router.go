package recommendationRoutes

import (
	recommendationController "cursapp/controllers/recommendation"
	"cursapp/middleware"
	"cursapp/models"

	"github.com/gofiber/fiber/v2"
)

func SetupRecommendationRoutes(app *fiber.App) {
	recommendationGroup := app.Group("/api/v1/recommendation")

	recommendationGroup.Get("/courses", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleStudent), recommendationController.GetRecommendations)
}
