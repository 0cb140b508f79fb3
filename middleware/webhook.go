package middleware

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"cursapp/config"
	"cursapp/logger"

	"github.com/gofiber/fiber/v2"
)

const WebhookSignatureHeader = "X-Webhook-Signature"

// SignWebhookBody returns the hex HMAC-SHA256 of body under secret.
func SignWebhookBody(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

// VerifyWebhookSignature rejects gateway callbacks whose body was not signed with WEBHOOK_SECRET.
func VerifyWebhookSignature() fiber.Handler {
	return func(c *fiber.Ctx) error {
		secret := config.AppConfig.WebhookSecret
		if secret == "" {
			logger.L().Warn("payment webhook rejected: WEBHOOK_SECRET not configured", "ip", c.IP())
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid webhook signature!", nil)
		}

		got := strings.TrimSpace(c.Get(WebhookSignatureHeader))
		want := SignWebhookBody(secret, c.Body())
		if got == "" || !hmac.Equal([]byte(strings.ToLower(got)), []byte(want)) {
			logger.L().Warn("payment webhook rejected: bad signature", "ip", c.IP())
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Invalid webhook signature!", nil)
		}

		return c.Next()
	}
}
