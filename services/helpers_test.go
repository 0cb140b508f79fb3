package services_test

import (
	"context"
	"testing"

	"cursapp/apperr"
	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"
	"cursapp/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixedRate decimal.Decimal

func (r fixedRate) USDRate(context.Context) decimal.Decimal { return decimal.Decimal(r) }

// requireStatus asserts that err is an apperr carrying the given HTTP status.
func requireStatus(t *testing.T, err error, status int) {
	t.Helper()
	require.Error(t, err)
	ae, ok := apperr.As(err)
	require.True(t, ok, "expected an apperr, got %v", err)
	require.Equal(t, status, ae.Status, ae.Error())
}

func reloadUser(t *testing.T, db *gorm.DB, id uint) models.User {
	t.Helper()
	var u models.User
	require.NoError(t, db.First(&u, id).Error)
	return u
}

// enrolledLesson seeds a published course with one module and one lesson of the given type
// and a student holding a paid enrollment in it.
type enrolledLesson struct {
	instructor models.User
	student    models.User
	course     course.Course
	module     course.Module
	lesson     course.Lesson
	enrollment evaluation.Enrollment
}

func seedEnrolledLesson(t *testing.T, db *gorm.DB, lessonType course.LessonType) enrolledLesson {
	t.Helper()
	var s enrolledLesson
	s.instructor = testutil.SeedUser(t, db, models.RoleInstructor)
	s.student = testutil.SeedUser(t, db, models.RoleStudent)
	s.course = testutil.SeedCourse(t, db, s.instructor.ID, "50.00", course.CoursePublished)
	s.module = testutil.SeedModule(t, db, s.course.ID, 1)
	s.lesson = testutil.SeedLesson(t, db, s.module, lessonType, 1)
	s.enrollment = testutil.SeedEnrollment(t, db, s.student.ID, s.course.ID, evaluation.PaymentPaid, "50.00")
	return s
}
