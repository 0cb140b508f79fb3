package services

import (
	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// MyLearning lists the student's paid enrollments with their courses, most recent first.
func MyLearning(db *gorm.DB, studentID uint) ([]evaluation.Enrollment, error) {
	var enrollments []evaluation.Enrollment
	if err := db.Preload("Course").Preload("Course.Category").
		Where("student_id = ? AND payment_status = ?", studentID, evaluation.PaymentPaid).
		Order("paid_at DESC").Order("id DESC").
		Find(&enrollments).Error; err != nil {
		return nil, errors.Wrap(err, "load enrollments")
	}
	return enrollments, nil
}

type NextLesson struct {
	Enrollment evaluation.Enrollment `json:"enrollment"`
	Lesson     course.Lesson         `json:"lesson"`
}

// ContinueLearning returns the first uncompleted lesson, in module then lesson order, of the
// student's most recently active unfinished paid enrollment. It returns nil when there is none.
func ContinueLearning(db *gorm.DB, studentID uint) (*NextLesson, error) {
	var enrollments []evaluation.Enrollment
	if err := db.Preload("Course").
		Where("student_id = ? AND payment_status = ? AND completed = ?", studentID, evaluation.PaymentPaid, false).
		Order(lastActivityOrder).Order("id DESC").
		Find(&enrollments).Error; err != nil {
		return nil, errors.Wrap(err, "load enrollments")
	}

	for _, e := range enrollments {
		done := db.Model(&evaluation.LessonProgress{}).Select("lesson_id").
			Where("enrollment_id = ? AND completed = ?", e.ID, true)

		var lesson course.Lesson
		err := db.Joins("JOIN modules ON modules.id = lessons.module_id AND modules.deleted_at IS NULL").
			Where("lessons.course_id = ?", e.CourseID).
			Where("lessons.id NOT IN (?)", done).
			Order("modules.sort_order ASC").Order("lessons.sort_order ASC").
			First(&lesson).Error
		if err != nil {
			if isNotFound(err) {
				continue
			}
			return nil, errors.Wrap(err, "load next lesson")
		}
		return &NextLesson{Enrollment: e, Lesson: lesson}, nil
	}
	return nil, nil
}

const lastActivityOrder = "COALESCE((SELECT MAX(lesson_progresses.updated_at) FROM lesson_progresses " +
	"WHERE lesson_progresses.enrollment_id = enrollments.id), enrollments.paid_at, enrollments.created_at) DESC"
