package services

import (
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

const (
	StrategyAffinity  = "affinity"
	StrategyColdStart = "cold_start"

	affinityLimit  = 3
	coldStartLimit = 5
)

type Recommendation struct {
	Strategy   string          `json:"strategy"`
	CategoryID *uint           `json:"category_id,omitempty"`
	Courses    []course.Course `json:"courses"`
}

// favouriteCategory returns the category the student showed most interest in.
func favouriteCategory(db *gorm.DB, studentID uint) (uint, bool, error) {
	var rows []struct {
		CategoryID uint
		Hits       int
	}
	err := db.Model(&evaluation.LessonInteraction{}).
		Select("courses.category_id AS category_id, COUNT(*) AS hits").
		Joins("JOIN lessons ON lessons.id = lesson_interactions.lesson_id AND lessons.deleted_at IS NULL").
		Joins("JOIN courses ON courses.id = lessons.course_id AND courses.deleted_at IS NULL").
		Where("lesson_interactions.student_id = ? AND lesson_interactions.interest = ?", studentID, 1).
		Where("courses.category_id IS NOT NULL").
		Group("courses.category_id").
		Order("hits DESC").Order("courses.category_id ASC").
		Limit(1).
		Scan(&rows).Error
	if err != nil {
		return 0, false, errors.Wrap(err, "load favourite category")
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	return rows[0].CategoryID, true, nil
}

// Recommend is a content-affinity stub: newest published courses from the student's
// favourite category, or the newest published courses overall.
func Recommend(db *gorm.DB, studentID uint) (*Recommendation, error) {
	categoryID, ok, err := favouriteCategory(db, studentID)
	if err != nil {
		return nil, err
	}

	if ok {
		owned := db.Model(&evaluation.Enrollment{}).Select("course_id").
			Where("student_id = ? AND payment_status = ?", studentID, evaluation.PaymentPaid)

		var courses []course.Course
		if err := db.Preload("Category").
			Where("status = ? AND category_id = ?", course.CoursePublished, categoryID).
			Where("id NOT IN (?)", owned).
			Order("created_at DESC").Order("id DESC").
			Limit(affinityLimit).
			Find(&courses).Error; err != nil {
			return nil, errors.Wrap(err, "load affinity courses")
		}
		if len(courses) > 0 {
			return &Recommendation{Strategy: StrategyAffinity, CategoryID: &categoryID, Courses: courses}, nil
		}
	}

	var courses []course.Course
	if err := db.Preload("Category").
		Where("status = ?", course.CoursePublished).
		Order("created_at DESC").Order("id DESC").
		Limit(coldStartLimit).
		Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "load recent courses")
	}
	return &Recommendation{Strategy: StrategyColdStart, Courses: courses}, nil
}
