// Package services holds the multi-entity business operations. Every function takes the
// *gorm.DB to run on so callers decide the transaction boundary.
package services

import (
	"cursapp/apperr"
	"cursapp/models"
	"cursapp/models/evaluation"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var hundred = decimal.NewFromInt(100)

func isNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

func loadUser(tx *gorm.DB, userID uint) (models.User, error) {
	var user models.User
	if err := tx.First(&user, userID).Error; err != nil {
		if isNotFound(err) {
			return user, apperr.NotFound("User not found!")
		}
		return user, errors.Wrap(err, "load user")
	}
	return user, nil
}

// paidEnrollment returns the student's paid enrollment for courseID.
func paidEnrollment(tx *gorm.DB, studentID, courseID uint) (evaluation.Enrollment, bool, error) {
	var e evaluation.Enrollment
	err := tx.Where("student_id = ? AND course_id = ? AND payment_status = ?",
		studentID, courseID, evaluation.PaymentPaid).First(&e).Error
	if err != nil {
		if isNotFound(err) {
			return e, false, nil
		}
		return e, false, errors.Wrap(err, "load paid enrollment")
	}
	return e, true, nil
}

// HasPaidEnrollment reports whether studentID holds a paid enrollment in courseID.
func HasPaidEnrollment(db *gorm.DB, studentID, courseID uint) (bool, error) {
	_, ok, err := paidEnrollment(db, studentID, courseID)
	return ok, err
}
