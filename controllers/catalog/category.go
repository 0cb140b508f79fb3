package catalogController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models/course"
	"cursapp/services"
	catalogValidator "cursapp/validators/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

func ListCategories(c *fiber.Ctx) error {
	var categories []course.Category
	if err := database.Database.Db.Order("name ASC").Find(&categories).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list categories"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Categories fetched successfully!", categories)
}

func CreateCategory(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCategory").(*catalogValidator.CategoryRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	category, err := services.CreateCategory(database.Database.Db, reqData.Name, reqData.ParentID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Category created successfully!", category)
}

func ListTags(c *fiber.Ctx) error {
	var tags []course.Tag
	if err := database.Database.Db.Order("name ASC").Find(&tags).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list tags"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Tags fetched successfully!", tags)
}

func CreateTag(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedTag").(*catalogValidator.TagRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	tag, err := services.CreateTag(database.Database.Db, reqData.Name)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Tag created successfully!", tag)
}
