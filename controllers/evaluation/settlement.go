package evaluationController

import (
	"time"

	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models/evaluation"
	"cursapp/services"
	"cursapp/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

// GetSettlements lists revenue splits. Admins see every settlement and may filter by
// ?status, instructors see only their own.
func GetSettlements(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	page := validators.PageOf(c)

	db := database.Database.Db.Model(&evaluation.Settlement{})
	if !user.IsAdmin() {
		db = db.Where("instructor_id = ?", user.ID)
	}
	if status := c.Query("status"); status != "" {
		db = db.Where("status = ?", status)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "count settlements"))
	}
	var settlements []evaluation.Settlement
	if err := db.Order("created_at DESC").Offset(page.Offset()).Limit(page.Limit).
		Find(&settlements).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list settlements"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settlements fetched successfully!", fiber.Map{
		"items": settlements,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

func PaySettlement(c *fiber.Ctx) error {
	settlement, err := services.MarkSettlementPaid(database.Database.Db, validators.ID(c, "settlement_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Settlement marked as paid!", settlement)
}

func GetInstructorDashboard(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	dashboard, err := services.InstructorDashboard(database.Database.Db, user.ID, time.Now())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Dashboard fetched successfully!", dashboard)
}
