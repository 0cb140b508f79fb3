package middleware

import (
	"cursapp/apperr"
	"cursapp/database"
	"cursapp/models"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// RequireRoles loads the authenticated user and stores it under c.Locals("user").
// With no roles given any authenticated user passes.
func RequireRoles(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return ErrorResponse(c, apperr.Unauthorized("Unauthorized: User ID not found"))
		}

		var user models.User
		err := database.Database.Db.First(&user, userID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrorResponse(c, apperr.Unauthorized("User not found!"))
			}
			return JsonResponse(c, fiber.StatusInternalServerError, false, "Server error while checking permissions!", nil)
		}

		if len(roles) > 0 && !user.HasRole(roles...) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		c.Locals("user", user)
		return c.Next()
	}
}

// CurrentUser returns the user loaded by RequireRoles.
func CurrentUser(c *fiber.Ctx) (models.User, bool) {
	user, ok := c.Locals("user").(models.User)
	return user, ok
}
