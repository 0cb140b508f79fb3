package evaluationController

import (
	"strconv"

	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models"
	"cursapp/services"
	"cursapp/validators"
	evaluationValidator "cursapp/validators/evaluation"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
)

const leaderboardSize = 10

// GetLeaderboard is public.
func GetLeaderboard(c *fiber.Ctx) error {
	limit := leaderboardSize
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			limit = n
		}
	}
	entries, err := services.Leaderboard(database.Database.Db, limit)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Leaderboard fetched successfully!", entries)
}

// GetMyPoints returns the caller's ledger together with the cached total.
func GetMyPoints(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	page := validators.PageOf(c)

	var entries []models.PointsEntry
	if err := database.Database.Db.Where("student_id = ?", user.ID).
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&entries).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list points"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Points fetched successfully!", fiber.Map{
		"points_total": user.PointsTotal,
		"xp_total":     user.XPTotal,
		"entries":      entries,
	})
}

func GrantPoints(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedPoints").(*evaluationValidator.PointsRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	entry, err := services.GrantPoints(database.Database.Db, reqData.StudentID, reqData.Points, reqData.Reason)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Points granted successfully!", entry)
}

func GetBadges(c *fiber.Ctx) error {
	var badges []models.Badge
	if err := database.Database.Db.Order("name ASC").Find(&badges).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list badges"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badges fetched successfully!", badges)
}

func CreateBadge(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedBadge").(*evaluationValidator.BadgeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db

	var existing int64
	if err := db.Model(&models.Badge{}).Where("name = ?", reqData.Name).Count(&existing).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "check badge name"))
	}
	if existing > 0 {
		return middleware.JsonResponse(c, fiber.StatusConflict, false, "A badge with this name already exists!", nil)
	}

	badge := models.Badge{
		Name:        reqData.Name,
		Description: reqData.Description,
		Criteria:    reqData.Criteria,
		IconURL:     reqData.IconURL,
	}
	if err := db.Create(&badge).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "create badge"))
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Badge created successfully!", badge)
}

func AwardBadge(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedAward").(*evaluationValidator.AwardBadgeRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	award, err := services.AwardBadge(database.Database.Db, reqData.StudentID, validators.ID(c, "badge_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Badge awarded successfully!", award)
}

func GetMyBadges(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var awards []models.BadgeAward
	if err := database.Database.Db.Preload("Badge").Where("student_id = ?", user.ID).
		Order("created_at DESC").Find(&awards).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list badge awards"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Badges fetched successfully!", awards)
}

// GetRewards lists the active catalogue. Admins also see inactive rewards.
func GetRewards(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	db := database.Database.Db.Order("cost_points ASC")
	if !user.IsAdmin() {
		db = db.Where("active = ?", true)
	}
	var rewards []models.Reward
	if err := db.Find(&rewards).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list rewards"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Rewards fetched successfully!", rewards)
}

func CreateReward(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedReward").(*evaluationValidator.RewardRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	reward := models.Reward{
		Name:        reqData.Name,
		Description: reqData.Description,
		CostPoints:  reqData.CostPoints,
		Active:      true,
	}
	if err := database.Database.Db.Create(&reward).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "create reward"))
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Reward created successfully!", reward)
}

func DeactivateReward(c *fiber.Ctx) error {
	res := database.Database.Db.Model(&models.Reward{}).
		Where("id = ?", validators.ID(c, "reward_id")).
		Update("active", false)
	if res.Error != nil {
		return middleware.ErrorResponse(c, errors.Wrap(res.Error, "deactivate reward"))
	}
	if res.RowsAffected == 0 {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Reward not found!", nil)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reward deactivated successfully!", nil)
}

func RedeemReward(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	redemption, err := services.RedeemReward(database.Database.Db, user.ID, validators.ID(c, "reward_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Reward redeemed successfully!", redemption)
}
