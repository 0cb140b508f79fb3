package userRoutes

import (
	userController "cursapp/controllers/userControllers"
	"cursapp/middleware"
	"cursapp/models"
	"cursapp/validators"
	userValidator "cursapp/validators/userValidator"

	"github.com/gofiber/fiber/v2"
)

func SetupUserRoutes(app *fiber.App) {
	authGroup := app.Group("/api/v1/auth", middleware.JWTMiddleware)

	admins := middleware.RequireRoles(models.RoleAdmin)

	authGroup.Get("/profile", middleware.RequireRoles(), userController.GetProfile)
	authGroup.Put("/profile", middleware.RequireRoles(), userValidator.UpdateProfile(), userController.UpdateProfile)
	authGroup.Get("/users", admins, userValidator.UserList(), userController.ListUsers)
	authGroup.Put("/users/:user_id", admins, validators.PathIDs("user_id"), userValidator.UpdateUser(), userController.UpdateUser)
}
