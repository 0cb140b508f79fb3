package services

import (
	"cursapp/apperr"
	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type ReviewInput struct {
	Overall           int
	ContentQuality    int
	Clarity           int
	PracticalValue    int
	InstructorSupport int
	Comment           string
}

// average rounds to cents, halves to even.
func average(sum, n int) decimal.Decimal {
	return decimal.NewFromInt(int64(sum)).Div(decimal.NewFromInt(int64(n))).RoundBank(2)
}

// RecomputeCourseRating rewrites the course's rating aggregates from its current reviews.
func RecomputeCourseRating(tx *gorm.DB, courseID uint) error {
	var reviews []evaluation.Review
	if err := tx.Where("course_id = ?", courseID).Find(&reviews).Error; err != nil {
		return errors.Wrap(err, "load reviews")
	}

	zero := decimal.Zero
	updates := map[string]interface{}{
		"review_count":           len(reviews),
		"avg_overall":            zero,
		"avg_content_quality":    zero,
		"avg_clarity":            zero,
		"avg_practical_value":    zero,
		"avg_instructor_support": zero,
	}

	if n := len(reviews); n > 0 {
		var overall, content, clarity, practical, support int
		for _, r := range reviews {
			overall += r.Overall
			content += r.ContentQuality
			clarity += r.Clarity
			practical += r.PracticalValue
			support += r.InstructorSupport
		}
		updates["avg_overall"] = average(overall, n)
		updates["avg_content_quality"] = average(content, n)
		updates["avg_clarity"] = average(clarity, n)
		updates["avg_practical_value"] = average(practical, n)
		updates["avg_instructor_support"] = average(support, n)
	}

	if err := tx.Unscoped().Model(&course.Course{}).Where("id = ?", courseID).Updates(updates).Error; err != nil {
		return errors.Wrap(err, "update course rating")
	}
	return nil
}

// CreateReview stores the student's single review for a paid enrollment.
func CreateReview(db *gorm.DB, studentID, courseID uint, in ReviewInput) (*evaluation.Review, error) {
	var review evaluation.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		enrollment, ok, err := paidEnrollment(tx, studentID, courseID)
		if err != nil {
			return err
		}
		if !ok {
			return apperr.Forbidden("You need a paid enrollment to review this course!")
		}

		var count int64
		if err := tx.Model(&evaluation.Review{}).Where("enrollment_id = ?", enrollment.ID).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check existing review")
		}
		if count > 0 {
			return apperr.Validation("You have already reviewed this course!")
		}

		review = evaluation.Review{
			EnrollmentID:      enrollment.ID,
			CourseID:          courseID,
			StudentID:         studentID,
			Overall:           in.Overall,
			ContentQuality:    in.ContentQuality,
			Clarity:           in.Clarity,
			PracticalValue:    in.PracticalValue,
			InstructorSupport: in.InstructorSupport,
			Comment:           in.Comment,
		}
		if err := tx.Create(&review).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Validation("You have already reviewed this course!")
			}
			return errors.Wrap(err, "create review")
		}
		return RecomputeCourseRating(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

func loadReview(tx *gorm.DB, courseID, reviewID uint) (evaluation.Review, error) {
	var review evaluation.Review
	if err := tx.Where("id = ? AND course_id = ?", reviewID, courseID).First(&review).Error; err != nil {
		if isNotFound(err) {
			return review, apperr.NotFound("Review not found!")
		}
		return review, errors.Wrap(err, "load review")
	}
	return review, nil
}

// UpdateReview lets the author change their ratings and comment.
func UpdateReview(db *gorm.DB, user models.User, courseID, reviewID uint, in ReviewInput) (*evaluation.Review, error) {
	var review evaluation.Review
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if review, err = loadReview(tx, courseID, reviewID); err != nil {
			return err
		}
		if review.StudentID != user.ID {
			return apperr.Forbidden("You can only edit your own review!")
		}

		review.Overall = in.Overall
		review.ContentQuality = in.ContentQuality
		review.Clarity = in.Clarity
		review.PracticalValue = in.PracticalValue
		review.InstructorSupport = in.InstructorSupport
		review.Comment = in.Comment
		if err := tx.Save(&review).Error; err != nil {
			return errors.Wrap(err, "update review")
		}
		return RecomputeCourseRating(tx, courseID)
	})
	if err != nil {
		return nil, err
	}
	return &review, nil
}

// DeleteReview removes a review. Authors may delete their own; admins may delete any.
func DeleteReview(db *gorm.DB, user models.User, courseID, reviewID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		review, err := loadReview(tx, courseID, reviewID)
		if err != nil {
			return err
		}
		if review.StudentID != user.ID && !user.IsAdmin() {
			return apperr.Forbidden("You can only delete your own review!")
		}
		if err := tx.Unscoped().Delete(&review).Error; err != nil {
			return errors.Wrap(err, "delete review")
		}
		return RecomputeCourseRating(tx, courseID)
	})
}
