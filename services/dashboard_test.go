package services_test

import (
	"testing"
	"time"

	"cursapp/models"
	"cursapp/models/course"
	"cursapp/models/evaluation"
	"cursapp/services"
	"cursapp/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructorDashboard(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	rival := testutil.SeedUser(t, db, models.RoleInstructor)
	alice := testutil.SeedUser(t, db, models.RoleStudent)
	bob := testutil.SeedUser(t, db, models.RoleStudent)

	published := testutil.SeedCourse(t, db, instructor.ID, "80.00", course.CoursePublished)
	testutil.SeedCourse(t, db, instructor.ID, "20.00", course.CourseDraft)
	rivalCourse := testutil.SeedCourse(t, db, rival.ID, "50.00", course.CoursePublished)
	require.NoError(t, db.Model(&published).UpdateColumns(map[string]interface{}{"review_count": 2, "avg_overall": "4.50"}).Error)

	now := time.Now()
	for _, student := range []models.User{alice, bob} {
		e := testutil.SeedEnrollment(t, db, student.ID, published.ID, evaluation.PaymentPaid, "80.00")
		_, err := services.RecordSettlement(db, e)
		require.NoError(t, err)
	}
	testutil.SeedEnrollment(t, db, alice.ID, rivalCourse.ID, evaluation.PaymentPaid, "50.00")

	// an old, already paid-out settlement counts towards revenue but not this month
	var oldest evaluation.Settlement
	require.NoError(t, db.Where("instructor_id = ?", instructor.ID).Order("id ASC").First(&oldest).Error)
	require.NoError(t, db.Model(&oldest).UpdateColumns(map[string]interface{}{
		"created_at": now.AddDate(0, -2, 0),
		"status":     evaluation.SettlementPaid,
	}).Error)

	d, err := services.InstructorDashboard(db, instructor.ID, now)
	require.NoError(t, err)

	assert.EqualValues(t, 2, d.TotalCourses)
	assert.EqualValues(t, 1, d.PublishedCourses)
	assert.EqualValues(t, 2, d.PaidEnrollments)
	assert.Equal(t, "136.00", d.TotalRevenue.StringFixed(2))
	assert.Equal(t, "68.00", d.RevenueThisMonth.StringFixed(2))
	assert.Equal(t, "68.00", d.PendingPayout.StringFixed(2))
	assert.True(t, d.AverageRating.Equal(decimal.RequireFromString("4.5")))
	require.Len(t, d.Courses, 2)

	empty, err := services.InstructorDashboard(db, testutil.SeedUser(t, db, models.RoleInstructor).ID, now)
	require.NoError(t, err)
	assert.Zero(t, empty.TotalCourses)
	assert.True(t, empty.TotalRevenue.IsZero())
	assert.NotNil(t, empty.Courses)
}
