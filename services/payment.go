package services

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"cursapp/apperr"
	"cursapp/models/evaluation"
	"cursapp/utils"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	EventPaymentSuccess = "payment_success"
	EventPaymentFailed  = "payment_failed"
)

// EnrollmentRef accepts the gateway's reference either as a JSON number or a numeric string.
type EnrollmentRef uint

func (r *EnrollmentRef) UnmarshalJSON(b []byte) error {
	raw := string(bytes.Trim(b, `"`))
	if raw == "" || raw == "null" {
		*r = 0
		return nil
	}
	n, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil {
		return errors.Wrap(err, "referencia must be an enrollment id")
	}
	*r = EnrollmentRef(n)
	return nil
}

// WebhookEvent is the gateway callback body.
type WebhookEvent struct {
	Event                string        `json:"evento"`
	Reference            EnrollmentRef `json:"referencia"`
	GatewayTransactionID string        `json:"id_transaccion_gateway"`
}

type WebhookResult struct {
	Enrollment evaluation.Enrollment  `json:"enrollment"`
	Settlement *evaluation.Settlement `json:"settlement,omitempty"`
}

func ParseWebhookEvent(body []byte) (WebhookEvent, error) {
	var ev WebhookEvent
	if err := json.Unmarshal(body, &ev); err != nil {
		return ev, apperr.Validation("Invalid webhook payload!")
	}
	return ev, nil
}

// HandlePaymentWebhook applies a gateway event to a pending enrollment. Only pending
// enrollments match, so a replay after success reports not found.
func HandlePaymentWebhook(ctx context.Context, db *gorm.DB, ev WebhookEvent) (*WebhookResult, error) {
	switch ev.Event {
	case EventPaymentSuccess, EventPaymentFailed:
	default:
		return nil, apperr.Validation("Unsupported webhook event!")
	}
	if ev.Reference == 0 {
		return nil, apperr.Validation("referencia is required!")
	}
	gatewayID := strings.TrimSpace(ev.GatewayTransactionID)
	if ev.Event == EventPaymentSuccess && gatewayID == "" {
		return nil, apperr.Validation("id_transaccion_gateway is required!")
	}

	var result WebhookResult
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var enrollment evaluation.Enrollment
		if err := tx.Preload("Course").Preload("Student").
			Where("id = ? AND payment_status = ?", uint(ev.Reference), evaluation.PaymentPending).
			First(&enrollment).Error; err != nil {
			if isNotFound(err) {
				return apperr.NotFound("Enrollment not found or already processed!")
			}
			return errors.Wrap(err, "load pending enrollment")
		}

		if ev.Event == EventPaymentFailed {
			if err := tx.Model(&evaluation.Enrollment{}).
				Where("id = ? AND payment_status = ?", enrollment.ID, evaluation.PaymentPending).
				Update("payment_status", evaluation.PaymentFailed).Error; err != nil {
				return errors.Wrap(err, "mark enrollment failed")
			}
			enrollment.PaymentStatus = evaluation.PaymentFailed
			result.Enrollment = enrollment
			return nil
		}

		now := time.Now()
		res := tx.Model(&evaluation.Enrollment{}).
			Where("id = ? AND payment_status = ?", enrollment.ID, evaluation.PaymentPending).
			Updates(map[string]interface{}{
				"payment_status":    evaluation.PaymentPaid,
				"payment_reference": gatewayID,
				"paid_at":           now,
			})
		if res.Error != nil {
			if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Gateway transaction already applied to another enrollment!")
			}
			return errors.Wrap(res.Error, "mark enrollment paid")
		}
		if res.RowsAffected == 0 {
			return apperr.NotFound("Enrollment not found or already processed!")
		}
		enrollment.PaymentStatus = evaluation.PaymentPaid
		enrollment.PaymentReference = &gatewayID
		enrollment.PaidAt = &now

		settlement, err := RecordSettlement(tx, enrollment)
		if err != nil {
			return err
		}
		result.Enrollment = enrollment
		result.Settlement = settlement
		return nil
	})
	if err != nil {
		return nil, err
	}

	if result.Enrollment.IsPaid() && result.Enrollment.Student != nil {
		title := ""
		if result.Enrollment.Course != nil {
			title = result.Enrollment.Course.Title
		}
		utils.SendPaymentConfirmation(
			result.Enrollment.Student.Email,
			result.Enrollment.Student.Name,
			title,
			result.Enrollment.PricePaidUSD,
			gatewayID,
		)
	}
	return &result, nil
}
