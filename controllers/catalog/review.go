package catalogController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models/evaluation"
	"cursapp/services"
	"cursapp/validators"
	catalogValidator "cursapp/validators/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

func reviewInput(req *catalogValidator.ReviewRequest) services.ReviewInput {
	return services.ReviewInput{
		Overall:           req.Overall,
		ContentQuality:    req.ContentQuality,
		Clarity:           req.Clarity,
		PracticalValue:    req.PracticalValue,
		InstructorSupport: req.InstructorSupport,
		Comment:           req.Comment,
	}
}

func ListReviews(c *fiber.Ctx) error {
	page := validators.PageOf(c)
	db := database.Database.Db.Model(&evaluation.Review{}).Where("course_id = ?", validators.ID(c, "course_id"))

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "count reviews"))
	}
	var reviews []evaluation.Review
	if err := db.Preload("Student").Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&reviews).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list reviews"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reviews fetched successfully!", fiber.Map{
		"items": reviews,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

func CreateReview(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedReview").(*catalogValidator.ReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	review, err := services.CreateReview(database.Database.Db, user.ID, validators.ID(c, "course_id"), reviewInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Review submitted successfully!", review)
}

func UpdateReview(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedReview").(*catalogValidator.ReviewRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	review, err := services.UpdateReview(database.Database.Db, user,
		validators.ID(c, "course_id"), validators.ID(c, "review_id"), reviewInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review updated successfully!", review)
}

func DeleteReview(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	if err := services.DeleteReview(database.Database.Db, user, validators.ID(c, "course_id"), validators.ID(c, "review_id")); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Review deleted successfully!", nil)
}
