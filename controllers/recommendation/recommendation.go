package recommendationController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/services"

	"github.com/gofiber/fiber/v2"
)

// GetRecommendations suggests courses from the student's favourite category, or the
// newest published courses when there is no interaction history yet.
func GetRecommendations(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	rec, err := services.Recommend(database.Database.Db, user.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Recommendations fetched successfully!", rec)
}
