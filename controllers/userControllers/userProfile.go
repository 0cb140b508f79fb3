package userController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models"
	"cursapp/validators"
	userValidator "cursapp/validators/userValidator"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func GetProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile fetched successfully!", user)
}

func UpdateProfile(c *fiber.Ctx) error {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}
	reqData, ok := c.Locals("validatedProfile").(*userValidator.ProfileRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	db := database.Database.Db
	if err := db.Model(&user).Updates(map[string]interface{}{"name": reqData.Name, "bio": reqData.Bio}).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "update profile"))
	}
	user.Name, user.Bio = reqData.Name, reqData.Bio
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Profile updated successfully!", user)
}

func ListUsers(c *fiber.Ctx) error {
	page := validators.PageOf(c)
	db := database.Database.Db.Model(&models.User{})
	if role := c.Query("role"); role != "" {
		db = db.Where("role = ?", role)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "count users"))
	}
	var users []models.User
	if err := db.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).Find(&users).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list users"))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Users fetched successfully!", fiber.Map{
		"items": users,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// UpdateUser lets an admin change role, commission and verification.
func UpdateUser(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedUser").(*userValidator.AdminUserRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	userID := validators.ID(c, "user_id")

	db := database.Database.Db
	var target models.User
	if err := db.First(&target, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
		}
		return middleware.ErrorResponse(c, errors.Wrap(err, "load user"))
	}

	updates := map[string]interface{}{}
	if reqData.Role != nil {
		updates["role"] = *reqData.Role
	}
	if reqData.Commission != nil {
		updates["commission"] = reqData.Commission.Round(2)
	}
	if reqData.Verified != nil {
		updates["verified"] = *reqData.Verified
	}
	if reqData.VerifiedEntity != nil {
		updates["verified_entity"] = *reqData.VerifiedEntity
	}
	if err := db.Model(&target).Updates(updates).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "update user"))
	}
	if err := db.First(&target, userID).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "reload user"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "User updated successfully!", target)
}
