package services_test

import (
	"context"
	"net/http"
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
	"gorm.io/gorm"
)

func TestApplyDiscount(t *testing.T) {
	cases := []struct {
		price, pct, want string
	}{
		{"100.00", "20", "80.00"},
		{"49.99", "15", "42.49"},
		{"10.00", "33.33", "6.67"},
		{"25.00", "100", "0.00"},
		{"10.05", "50", "5.02"},
		{"10.15", "50", "5.08"},
	}
	for _, tc := range cases {
		got := services.ApplyDiscount(decimal.RequireFromString(tc.price), decimal.RequireFromString(tc.pct))
		assert.Equal(t, tc.want, got.StringFixed(2), "%s - %s%%", tc.price, tc.pct)
	}
}

func TestEnrollWithCoupon(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	c := testutil.SeedCourse(t, db, instructor.ID, "100.00", course.CoursePublished)

	coupon := course.Coupon{Code: "SAVE20", DiscountPercent: decimal.NewFromInt(20), MaxUses: 5}
	require.NoError(t, db.Create(&coupon).Error)

	res, err := services.Enroll(context.Background(), db, fixedRate(decimal.RequireFromString("36.50")), services.EnrollInput{
		StudentID:  student.ID,
		CourseID:   c.ID,
		CouponCode: " save20 ",
	})
	require.NoError(t, err)

	assert.Equal(t, evaluation.PaymentPending, res.Enrollment.PaymentStatus)
	assert.Equal(t, "100.00", res.Payment.OriginalPrice)
	assert.Equal(t, "80.00", res.Payment.FinalPrice)
	assert.Equal(t, "36.50", res.Payment.ExchangeRate)
	assert.Equal(t, "2920.00", res.Payment.AmountLocal)
	assert.Equal(t, res.Enrollment.ID, res.Payment.PaymentReference)
	require.NotNil(t, res.Payment.AppliedCoupon)
	assert.Equal(t, "SAVE20", *res.Payment.AppliedCoupon)

	var stored course.Coupon
	require.NoError(t, db.First(&stored, coupon.ID).Error)
	assert.Equal(t, 1, stored.CurrentUses)

	_, err = services.Enroll(context.Background(), db, nil, services.EnrollInput{StudentID: student.ID, CourseID: c.ID})
	requireStatus(t, err, http.StatusConflict)
}

func TestEnrollWithoutRateStillCreatesEnrollment(t *testing.T) {
	db := testutil.SetupDB(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	c := testutil.SeedCourse(t, db, 0, "30.00", course.CoursePublished)

	res, err := services.Enroll(context.Background(), db, fixedRate(decimal.Zero), services.EnrollInput{StudentID: student.ID, CourseID: c.ID})
	require.NoError(t, err)
	assert.Equal(t, "0.00", res.Payment.ExchangeRate)
	assert.Equal(t, "0.00", res.Payment.AmountLocal)
	assert.Nil(t, res.Payment.AppliedCoupon)
}

func TestEnrollRejections(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	other := testutil.SeedUser(t, db, models.RoleInstructor)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	published := testutil.SeedCourse(t, db, instructor.ID, "100.00", course.CoursePublished)
	draft := testutil.SeedCourse(t, db, instructor.ID, "100.00", course.CourseDraft)
	ctx := context.Background()

	t.Run("unknown course", func(t *testing.T) {
		_, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: 9999})
		requireStatus(t, err, http.StatusNotFound)
	})

	t.Run("draft course", func(t *testing.T) {
		_, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: draft.ID})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("unknown coupon", func(t *testing.T) {
		_, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: published.ID, CouponCode: "NOPE"})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("exhausted coupon", func(t *testing.T) {
		coupon := course.Coupon{Code: "USEDUP", DiscountPercent: decimal.NewFromInt(10), MaxUses: 1, CurrentUses: 1}
		require.NoError(t, db.Create(&coupon).Error)
		_, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: published.ID, CouponCode: "USEDUP"})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("expired coupon", func(t *testing.T) {
		past := time.Now().Add(-time.Hour)
		coupon := course.Coupon{Code: "OLD", DiscountPercent: decimal.NewFromInt(10), MaxUses: 10, ExpiresAt: &past}
		require.NoError(t, db.Create(&coupon).Error)
		_, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: published.ID, CouponCode: "OLD"})
		requireStatus(t, err, http.StatusBadRequest)
	})

	t.Run("coupon of another instructor", func(t *testing.T) {
		owner := other.ID
		coupon := course.Coupon{Code: "THEIRS", DiscountPercent: decimal.NewFromInt(10), MaxUses: 10, InstructorID: &owner}
		require.NoError(t, db.Create(&coupon).Error)
		_, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: published.ID, CouponCode: "THEIRS"})
		requireStatus(t, err, http.StatusBadRequest)
	})

	var live int64
	require.NoError(t, db.Model(&evaluation.Enrollment{}).Where("student_id = ?", student.ID).Count(&live).Error)
	assert.Zero(t, live)
}

func TestEnrollCouponAllowlist(t *testing.T) {
	db := testutil.SetupDB(t)
	ctx := context.Background()
	student := testutil.SeedUser(t, db, models.RoleStudent)
	listed := testutil.SeedCourse(t, db, 0, "100.00", course.CoursePublished)
	unlisted := testutil.SeedCourse(t, db, 0, "100.00", course.CoursePublished)

	coupon := course.Coupon{
		Code:            "ONLYONE",
		DiscountPercent: decimal.NewFromInt(10),
		MaxUses:         10,
		Courses:         []course.Course{listed},
	}
	require.NoError(t, db.Create(&coupon).Error)

	_, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: unlisted.ID, CouponCode: "ONLYONE"})
	requireStatus(t, err, http.StatusBadRequest)
	assert.Equal(t, "Coupon does not apply to this course!", err.Error())

	res, err := services.Enroll(ctx, db, nil, services.EnrollInput{StudentID: student.ID, CourseID: listed.ID, CouponCode: "ONLYONE"})
	require.NoError(t, err)
	assert.Equal(t, "90.00", res.Payment.FinalPrice)

	var reloaded course.Coupon
	require.NoError(t, db.First(&reloaded, coupon.ID).Error)
	assert.Equal(t, 1, reloaded.CurrentUses, "a rejected coupon is not consumed")
}

func TestLiveEnrollmentUniqueIndex(t *testing.T) {
	db := testutil.SetupDB(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	c := testutil.SeedCourse(t, db, 0, "10.00", course.CoursePublished)
	testutil.SeedEnrollment(t, db, student.ID, c.ID, evaluation.PaymentPaid, "10.00")

	// the database itself refuses a second live row, whatever the application checked
	dup := evaluation.Enrollment{
		StudentID:     student.ID,
		CourseID:      c.ID,
		PricePaidUSD:  decimal.RequireFromString("10.00"),
		PaymentStatus: evaluation.PaymentPending,
	}
	assert.ErrorIs(t, db.Create(&dup).Error, gorm.ErrDuplicatedKey)

	failed := evaluation.Enrollment{
		StudentID:     student.ID,
		CourseID:      c.ID,
		PricePaidUSD:  decimal.RequireFromString("10.00"),
		PaymentStatus: evaluation.PaymentFailed,
	}
	require.NoError(t, db.Create(&failed).Error)

	_, err := services.Enroll(context.Background(), db, nil, services.EnrollInput{StudentID: student.ID, CourseID: c.ID})
	requireStatus(t, err, http.StatusConflict)
}

func TestEnrollAfterFailedPayment(t *testing.T) {
	db := testutil.SetupDB(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	c := testutil.SeedCourse(t, db, 0, "10.00", course.CoursePublished)
	testutil.SeedEnrollment(t, db, student.ID, c.ID, evaluation.PaymentFailed, "10.00")

	_, err := services.Enroll(context.Background(), db, nil, services.EnrollInput{StudentID: student.ID, CourseID: c.ID})
	require.NoError(t, err)
}

func TestExpireStalePendingEnrollments(t *testing.T) {
	db := testutil.SetupDB(t)
	student := testutil.SeedUser(t, db, models.RoleStudent)
	oldCourse := testutil.SeedCourse(t, db, 0, "10.00", course.CoursePublished)
	newCourse := testutil.SeedCourse(t, db, 0, "10.00", course.CoursePublished)

	now := time.Now()
	stale := testutil.SeedEnrollment(t, db, student.ID, oldCourse.ID, evaluation.PaymentPending, "10.00")
	require.NoError(t, db.Model(&stale).UpdateColumn("created_at", now.Add(-72*time.Hour)).Error)
	fresh := testutil.SeedEnrollment(t, db, student.ID, newCourse.ID, evaluation.PaymentPending, "10.00")

	n, err := services.ExpireStalePendingEnrollments(db, now, 48*time.Hour)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	var expired, kept evaluation.Enrollment
	require.NoError(t, db.First(&expired, stale.ID).Error)
	assert.Equal(t, evaluation.PaymentFailed, expired.PaymentStatus)
	require.NoError(t, db.First(&kept, fresh.ID).Error)
	assert.Equal(t, evaluation.PaymentPending, kept.PaymentStatus)
}
