package evaluationController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models/evaluation"
	"cursapp/services"
	"cursapp/utils"
	"cursapp/validators"
	evaluationValidator "cursapp/validators/evaluation"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// EnrollInCourse creates a pending enrollment and returns the payment-initiation payload.
func EnrollInCourse(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedEnrollment").(*evaluationValidator.EnrollRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	result, err := services.Enroll(c.UserContext(), database.Database.Db, utils.ExchangeRates, services.EnrollInput{
		StudentID:  user.ID,
		CourseID:   reqData.CourseID,
		CouponCode: reqData.CouponCode,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Enrollment created, complete the payment to get access!", result)
}

// GetUserEnrollments lists the caller's pending and paid enrollments.
func GetUserEnrollments(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	page := validators.PageOf(c)

	db := database.Database.Db.Model(&evaluation.Enrollment{}).
		Where("student_id = ? AND payment_status IN ?", user.ID,
			[]evaluation.PaymentStatus{evaluation.PaymentPending, evaluation.PaymentPaid})

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "count enrollments"))
	}
	var enrollments []evaluation.Enrollment
	if err := db.Preload("Course").Order("created_at DESC").
		Offset(page.Offset()).Limit(page.Limit).Find(&enrollments).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list enrollments"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollments fetched successfully!", fiber.Map{
		"items": enrollments,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

func GetMyLearning(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	enrollments, err := services.MyLearning(database.Database.Db, user.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Learning fetched successfully!", enrollments)
}

func GetContinueLearning(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	next, err := services.ContinueLearning(database.Database.Db, user.ID)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if next == nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Nothing left to continue!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Next lesson fetched successfully!", next)
}
