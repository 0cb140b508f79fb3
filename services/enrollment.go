package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"cursapp/apperr"
	"cursapp/logger"
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const LocalCurrency = "VES"

var PaymentMethods = []string{"Pago Movil", "Transferencia", "TDC/TDD"}

// RateProvider returns the current USD to local currency rate, zero when unknown.
type RateProvider interface {
	USDRate(ctx context.Context) decimal.Decimal
}

type EnrollInput struct {
	StudentID  uint
	CourseID   uint
	CouponCode string
}

type PaymentPayload struct {
	PaymentReference uint     `json:"payment_reference"`
	OriginalPrice    string   `json:"original_price"`
	FinalPrice       string   `json:"final_price"`
	AppliedCoupon    *string  `json:"applied_coupon"`
	ExchangeRate     string   `json:"exchange_rate"`
	AmountLocal      string   `json:"amount_local"`
	Currency         string   `json:"currency"`
	PaymentMethods   []string `json:"payment_methods"`
}

type EnrollResult struct {
	Enrollment evaluation.Enrollment `json:"enrollment"`
	Payment    PaymentPayload        `json:"payment"`
}

// ApplyDiscount returns price × (1 − pct/100) rounded to cents, halves to even.
func ApplyDiscount(price, pct decimal.Decimal) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(pct.Div(hundred))
	return price.Mul(factor).RoundBank(2)
}

// Enroll creates a pending enrollment and the payment-initiation payload. The duplicate
// check, coupon redemption and insert share one transaction.
func Enroll(ctx context.Context, db *gorm.DB, rates RateProvider, in EnrollInput) (*EnrollResult, error) {
	var (
		enrollment  evaluation.Enrollment
		target      course.Course
		appliedCode *string
	)
	now := time.Now()

	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var live int64
		if err := tx.Model(&evaluation.Enrollment{}).
			Where("student_id = ? AND course_id = ? AND payment_status IN ?", in.StudentID, in.CourseID,
				[]evaluation.PaymentStatus{evaluation.PaymentPending, evaluation.PaymentPaid}).
			Count(&live).Error; err != nil {
			return errors.Wrap(err, "count live enrollments")
		}
		if live > 0 {
			return apperr.Conflict("You are already enrolled in this course!")
		}

		if err := tx.First(&target, in.CourseID).Error; err != nil {
			if isNotFound(err) {
				return apperr.NotFound("Course not found!")
			}
			return errors.Wrap(err, "load course")
		}
		if target.Status != course.CoursePublished {
			return apperr.Validation("Course is not available for enrollment!")
		}

		price := target.PriceUSD
		var couponID *uint
		if code := strings.TrimSpace(in.CouponCode); code != "" {
			coupon, err := redeemCoupon(tx, code, target, now)
			if err != nil {
				return err
			}
			price = ApplyDiscount(price, coupon.DiscountPercent)
			couponID = &coupon.ID
			appliedCode = &coupon.Code
		}

		enrollment = evaluation.Enrollment{
			StudentID:     in.StudentID,
			CourseID:      target.ID,
			CouponID:      couponID,
			PricePaidUSD:  price,
			PaymentStatus: evaluation.PaymentPending,
		}
		if err := tx.Create(&enrollment).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("You are already enrolled in this course!")
			}
			return errors.Wrap(err, "create enrollment")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	rate := decimal.Zero
	if rates != nil {
		rate = rates.USDRate(ctx)
	}
	payload := PaymentPayload{
		PaymentReference: enrollment.ID,
		OriginalPrice:    target.PriceUSD.StringFixed(2),
		FinalPrice:       enrollment.PricePaidUSD.StringFixed(2),
		AppliedCoupon:    appliedCode,
		ExchangeRate:     rate.StringFixed(2),
		AmountLocal:      enrollment.PricePaidUSD.Mul(rate).RoundBank(2).StringFixed(2),
		Currency:         LocalCurrency,
		PaymentMethods:   PaymentMethods,
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.Wrap(err, "marshal payment payload")
	}
	if err := db.WithContext(ctx).Model(&evaluation.Enrollment{}).
		Where("id = ?", enrollment.ID).
		Update("payment_payload", datatypes.JSON(raw)).Error; err != nil {
		logger.L().Warn("storing payment payload failed", "enrollment_id", enrollment.ID, "error", err)
	}
	enrollment.PaymentPayload = datatypes.JSON(raw)
	enrollment.Course = &target

	return &EnrollResult{Enrollment: enrollment, Payment: payload}, nil
}

// redeemCoupon validates code for target and consumes one use.
func redeemCoupon(tx *gorm.DB, code string, target course.Course, now time.Time) (*course.Coupon, error) {
	var coupon course.Coupon
	err := tx.Preload("Courses").
		Where("LOWER(code) = LOWER(?)", strings.TrimSpace(code)).
		First(&coupon).Error
	if err != nil {
		if isNotFound(err) {
			return nil, apperr.Validation("Invalid coupon code!")
		}
		return nil, errors.Wrap(err, "load coupon")
	}

	if !coupon.IsValid(now) {
		return nil, apperr.Validation("Coupon has expired or reached its usage limit!")
	}
	if !coupon.AppliesTo(target.ID) {
		return nil, apperr.Validation("Coupon does not apply to this course!")
	}
	if coupon.InstructorID != nil && !target.IsOwnedBy(*coupon.InstructorID) {
		return nil, apperr.Validation("Coupon does not apply to this course!")
	}

	res := tx.Model(&course.Coupon{}).
		Where("id = ? AND current_uses < max_uses", coupon.ID).
		UpdateColumn("current_uses", gorm.Expr("current_uses + 1"))
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "consume coupon")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Validation("Coupon has expired or reached its usage limit!")
	}
	coupon.CurrentUses++
	return &coupon, nil
}

// ExpireStalePendingEnrollments fails pending enrollments created before now-ttl.
func ExpireStalePendingEnrollments(db *gorm.DB, now time.Time, ttl time.Duration) (int64, error) {
	cutoff := now.Add(-ttl)
	res := db.Model(&evaluation.Enrollment{}).
		Where("payment_status = ? AND created_at < ?", evaluation.PaymentPending, cutoff).
		Update("payment_status", evaluation.PaymentFailed)
	if res.Error != nil {
		return 0, errors.Wrap(res.Error, "expire pending enrollments")
	}
	return res.RowsAffected, nil
}
