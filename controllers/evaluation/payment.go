package evaluationController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/services"

	"github.com/gofiber/fiber/v2"
)

// PaymentWebhook receives the gateway callback. The signature is checked by
// middleware.VerifyWebhookSignature before this runs.
func PaymentWebhook(c *fiber.Ctx) error {
	ev, err := services.ParseWebhookEvent(c.Body())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	result, err := services.HandlePaymentWebhook(c.UserContext(), database.Database.Db, ev)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	message := "Payment confirmed!"
	if ev.Event == services.EventPaymentFailed {
		message = "Payment marked as failed!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, result)
}
