package services_test

import (
	"net/http"
	"testing"

	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"
	"cursapp/services"
	"cursapp/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func review(overall int) services.ReviewInput {
	return services.ReviewInput{Overall: overall, ContentQuality: 4, Clarity: 3, PracticalValue: 5, InstructorSupport: overall}
}

func TestCourseRatingFollowsReviews(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	c := testutil.SeedCourse(t, db, instructor.ID, "10.00", course.CoursePublished)
	alice := testutil.SeedUser(t, db, models.RoleStudent)
	bob := testutil.SeedUser(t, db, models.RoleStudent)
	testutil.SeedEnrollment(t, db, alice.ID, c.ID, evaluation.PaymentPaid, "10.00")
	testutil.SeedEnrollment(t, db, bob.ID, c.ID, evaluation.PaymentPaid, "10.00")

	first, err := services.CreateReview(db, alice.ID, c.ID, review(5))
	require.NoError(t, err)
	second, err := services.CreateReview(db, bob.ID, c.ID, review(4))
	require.NoError(t, err)

	var got course.Course
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, 2, got.ReviewCount)
	assert.Equal(t, "4.50", got.AvgOverall.StringFixed(2))
	assert.Equal(t, "4.00", got.AvgContentQuality.StringFixed(2))
	assert.Equal(t, "3.00", got.AvgClarity.StringFixed(2))
	assert.Equal(t, "5.00", got.AvgPracticalValue.StringFixed(2))

	_, err = services.UpdateReview(db, bob, c.ID, second.ID, review(2))
	require.NoError(t, err)
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, "3.50", got.AvgOverall.StringFixed(2))

	_, err = services.UpdateReview(db, alice, c.ID, second.ID, review(1))
	requireStatus(t, err, http.StatusForbidden)

	require.NoError(t, services.DeleteReview(db, alice, c.ID, first.ID))
	admin := testutil.SeedUser(t, db, models.RoleAdmin)
	require.NoError(t, services.DeleteReview(db, admin, c.ID, second.ID))

	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Zero(t, got.ReviewCount)
	assert.True(t, got.AvgOverall.IsZero())
	assert.True(t, got.AvgInstructorSupport.IsZero())
}

func TestCreateReviewRules(t *testing.T) {
	db := testutil.SetupDB(t)
	c := testutil.SeedCourse(t, db, 0, "10.00", course.CoursePublished)
	student := testutil.SeedUser(t, db, models.RoleStudent)

	_, err := services.CreateReview(db, student.ID, c.ID, review(5))
	requireStatus(t, err, http.StatusForbidden)

	testutil.SeedEnrollment(t, db, student.ID, c.ID, evaluation.PaymentPaid, "10.00")
	_, err = services.CreateReview(db, student.ID, c.ID, review(5))
	require.NoError(t, err)

	_, err = services.CreateReview(db, student.ID, c.ID, review(3))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestCourseRatingRoundsHalfToEven(t *testing.T) {
	db := testutil.SetupDB(t)
	c := testutil.SeedCourse(t, db, 0, "10.00", course.CoursePublished)

	// 33 / 8 = 4.125
	for _, overall := range []int{5, 5, 5, 4, 4, 4, 3, 3} {
		student := testutil.SeedUser(t, db, models.RoleStudent)
		testutil.SeedEnrollment(t, db, student.ID, c.ID, evaluation.PaymentPaid, "10.00")
		_, err := services.CreateReview(db, student.ID, c.ID, review(overall))
		require.NoError(t, err)
	}

	var got course.Course
	require.NoError(t, db.First(&got, c.ID).Error)
	assert.Equal(t, 8, got.ReviewCount)
	assert.Equal(t, "4.12", got.AvgOverall.StringFixed(2))
}
