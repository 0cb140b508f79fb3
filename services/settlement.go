package services

import (
	"time"

	"cursapp/apperr"
	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SplitRevenue returns the platform and instructor shares of total. The platform share
// is rounded to cents and the instructor receives the exact remainder.
func SplitRevenue(total, commissionPercent decimal.Decimal) (platform, instructor decimal.Decimal) {
	platform = total.Mul(commissionPercent).Div(hundred).Round(2)
	instructor = total.Sub(platform)
	return platform, instructor
}

// RecordSettlement creates the settlement for a paid enrollment. It is a no-op when one exists.
func RecordSettlement(tx *gorm.DB, enrollment evaluation.Enrollment) (*evaluation.Settlement, error) {
	var existing evaluation.Settlement
	err := tx.Where("enrollment_id = ?", enrollment.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !isNotFound(err) {
		return nil, errors.Wrap(err, "check existing settlement")
	}

	var c course.Course
	if err := tx.Unscoped().First(&c, enrollment.CourseID).Error; err != nil {
		return nil, errors.Wrap(err, "load course for settlement")
	}

	// no instructor: the platform keeps everything
	commission := decimal.NewFromInt(100)
	var instructorID *uint
	if c.InstructorID != nil {
		var instructor models.User
		err := tx.First(&instructor, *c.InstructorID).Error
		switch {
		case err == nil:
			commission = instructor.Commission
			instructorID = c.InstructorID
		case !isNotFound(err):
			return nil, errors.Wrap(err, "load instructor for settlement")
		}
	}

	platform, instructorCut := SplitRevenue(enrollment.PricePaidUSD, commission)
	settlement := evaluation.Settlement{
		EnrollmentID:      enrollment.ID,
		InstructorID:      instructorID,
		Total:             enrollment.PricePaidUSD,
		PlatformCut:       platform,
		InstructorCut:     instructorCut,
		CommissionPercent: commission,
		Status:            evaluation.SettlementPending,
	}
	if err := tx.Create(&settlement).Error; err != nil {
		return nil, errors.Wrap(err, "create settlement")
	}
	return &settlement, nil
}

// MarkSettlementPaid records that the instructor share was paid out.
func MarkSettlementPaid(db *gorm.DB, settlementID uint) (*evaluation.Settlement, error) {
	var s evaluation.Settlement
	if err := db.First(&s, settlementID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Settlement not found!")
		}
		return nil, errors.Wrap(err, "load settlement")
	}
	if s.Status == evaluation.SettlementPaid {
		return nil, apperr.Conflict("Settlement already paid out!")
	}

	now := time.Now()
	res := db.Model(&evaluation.Settlement{}).
		Where("id = ? AND status = ?", s.ID, evaluation.SettlementPending).
		Updates(map[string]interface{}{"status": evaluation.SettlementPaid, "paid_at": now})
	if res.Error != nil {
		return nil, errors.Wrap(res.Error, "mark settlement paid")
	}
	if res.RowsAffected == 0 {
		return nil, apperr.Conflict("Settlement already paid out!")
	}
	s.Status = evaluation.SettlementPaid
	s.PaidAt = &now
	return &s, nil
}
