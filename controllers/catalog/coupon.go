package catalogController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/services"
	"cursapp/validators"
	catalogValidator "cursapp/validators/catalog"

	"github.com/gofiber/fiber/v2"
)

func ListCoupons(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	coupons, err := services.ListCoupons(database.Database.Db, user)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupons fetched successfully!", coupons)
}

func CreateCoupon(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCoupon").(*catalogValidator.CouponRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	coupon, err := services.CreateCoupon(database.Database.Db, user, services.CouponInput{
		Code:            reqData.Code,
		DiscountPercent: reqData.DiscountPercent,
		ExpiresAt:       reqData.ExpiresAt,
		MaxUses:         reqData.MaxUses,
		CourseIDs:       reqData.CourseIDs,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Coupon created successfully!", coupon)
}

func DeleteCoupon(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	if err := services.DeleteCoupon(database.Database.Db, user, validators.ID(c, "coupon_id")); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Coupon deleted successfully!", nil)
}
