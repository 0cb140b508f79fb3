package services_test

import (
	"net/http"
	"testing"
	"time"

	"cursapp/models"
	"cursapp/models/course"
	"cursapp/services"
	"cursapp/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCourseOwnership(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	admin := testutil.SeedUser(t, db, models.RoleAdmin)
	cat := testutil.SeedCategory(t, db, "backend")
	tag, err := services.CreateTag(db, "Go")
	require.NoError(t, err)

	c, err := services.CreateCourse(db, instructor, services.CourseInput{
		Title:      "Go for Services",
		CategoryID: &cat.ID,
		TagIDs:     []uint{tag.ID, tag.ID},
		PriceUSD:   decimal.RequireFromString("19.999"),
	})
	require.NoError(t, err)
	assert.Equal(t, course.CourseDraft, c.Status)
	assert.Equal(t, "go-for-services", c.Slug)
	assert.Equal(t, "20.00", c.PriceUSD.StringFixed(2))
	require.NotNil(t, c.InstructorID)
	assert.Equal(t, instructor.ID, *c.InstructorID)

	platform, err := services.CreateCourse(db, admin, services.CourseInput{Title: "Platform Onboarding", PriceUSD: decimal.Zero})
	require.NoError(t, err)
	assert.Nil(t, platform.InstructorID)

	_, err = services.CreateCourse(db, instructor, services.CourseInput{Title: "Go for Services"})
	requireStatus(t, err, http.StatusConflict)

	missing := uint(9999)
	_, err = services.CreateCourse(db, instructor, services.CourseInput{Title: "Orphan", CategoryID: &missing})
	requireStatus(t, err, http.StatusBadRequest)

	_, err = services.CreateCourse(db, instructor, services.CourseInput{Title: "Tagged", TagIDs: []uint{tag.ID, 9999}})
	requireStatus(t, err, http.StatusBadRequest)
}

func TestUpdateCourseNeverTouchesRatings(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	stranger := testutil.SeedUser(t, db, models.RoleInstructor)
	c := testutil.SeedCourse(t, db, instructor.ID, "10.00", course.CoursePublished)
	require.NoError(t, db.Model(&c).UpdateColumns(map[string]interface{}{"review_count": 3, "avg_overall": "4.33"}).Error)
	tag, err := services.CreateTag(db, "Testing")
	require.NoError(t, err)

	updated, err := services.UpdateCourse(db, instructor, c.ID, services.CourseInput{
		Title:    "Renamed",
		PriceUSD: decimal.RequireFromString("15"),
		TagIDs:   []uint{tag.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)
	assert.Equal(t, 3, updated.ReviewCount)
	assert.Equal(t, "4.33", updated.AvgOverall.StringFixed(2))
	require.Len(t, updated.Tags, 1)

	_, err = services.UpdateCourse(db, stranger, c.ID, services.CourseInput{Title: "Hijack"})
	requireStatus(t, err, http.StatusForbidden)
	_, err = services.UpdateCourse(db, instructor, 9999, services.CourseInput{Title: "Ghost"})
	requireStatus(t, err, http.StatusNotFound)
}

func TestSetCourseStatusRules(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	admin := testutil.SeedUser(t, db, models.RoleAdmin)
	c := testutil.SeedCourse(t, db, instructor.ID, "10.00", course.CourseDraft)

	got, err := services.SetCourseStatus(db, instructor, c.ID, course.CoursePublished)
	require.NoError(t, err)
	assert.Equal(t, course.CoursePublished, got.Status)

	_, err = services.SetCourseStatus(db, instructor, c.ID, course.CourseSuspended)
	requireStatus(t, err, http.StatusForbidden)

	_, err = services.SetCourseStatus(db, admin, c.ID, course.CourseSuspended)
	require.NoError(t, err)

	_, err = services.SetCourseStatus(db, instructor, c.ID, course.CourseDraft)
	requireStatus(t, err, http.StatusForbidden)

	got, err = services.SetCourseStatus(db, admin, c.ID, course.CoursePublished)
	require.NoError(t, err)
	assert.Equal(t, course.CoursePublished, got.Status)

	_, err = services.SetCourseStatus(db, admin, c.ID, course.CourseStatus("archived"))
	requireStatus(t, err, http.StatusBadRequest)
}

func TestModuleAndLessonOrdering(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	c := testutil.SeedCourse(t, db, instructor.ID, "10.00", course.CourseDraft)

	m, err := services.CreateModule(db, instructor, c.ID, services.ModuleInput{Title: "Intro", Order: 1})
	require.NoError(t, err)
	_, err = services.CreateModule(db, instructor, c.ID, services.ModuleInput{Title: "Again", Order: 1})
	requireStatus(t, err, http.StatusConflict)

	video, err := services.CreateLesson(db, instructor, c.ID, m.ID, services.LessonInput{
		Title: "Welcome", Type: course.LessonVideo, FileURL: "https://cdn.example.com/welcome.mp4", Order: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, course.ProcessingPending, video.ProcessingStatus)
	assert.True(t, services.NeedsVideoProcessing(*video))

	article, err := services.CreateLesson(db, instructor, c.ID, m.ID, services.LessonInput{
		Title: "Reading", Type: course.LessonArticle, ArticleBody: "text", Order: 2,
	})
	require.NoError(t, err)
	assert.Equal(t, course.ProcessingCompleted, article.ProcessingStatus)
	assert.False(t, services.NeedsVideoProcessing(*article))

	_, err = services.CreateLesson(db, instructor, c.ID, m.ID, services.LessonInput{Title: "Clash", Type: course.LessonArticle, Order: 2})
	requireStatus(t, err, http.StatusConflict)

	// unchanged video keeps its status, a new file goes back to pending
	require.NoError(t, db.Model(video).Update("processing_status", course.ProcessingCompleted).Error)
	same, err := services.UpdateLesson(db, instructor, c.ID, m.ID, video.ID, services.LessonInput{
		Title: "Welcome!", Type: course.LessonVideo, FileURL: "https://cdn.example.com/welcome.mp4", Order: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, course.ProcessingCompleted, same.ProcessingStatus)

	changed, err := services.UpdateLesson(db, instructor, c.ID, m.ID, video.ID, services.LessonInput{
		Title: "Welcome!", Type: course.LessonVideo, FileURL: "https://cdn.example.com/welcome-v2.mp4", Order: 1,
	})
	require.NoError(t, err)
	assert.Equal(t, course.ProcessingPending, changed.ProcessingStatus)

	// orders are reusable after a delete
	require.NoError(t, services.DeleteLesson(db, instructor, c.ID, m.ID, article.ID))
	_, err = services.CreateLesson(db, instructor, c.ID, m.ID, services.LessonInput{Title: "Reading v2", Type: course.LessonArticle, Order: 2})
	require.NoError(t, err)

	require.NoError(t, services.DeleteModule(db, instructor, c.ID, m.ID))
	var lessons int64
	require.NoError(t, db.Unscoped().Model(&course.Lesson{}).Where("module_id = ?", m.ID).Count(&lessons).Error)
	assert.Zero(t, lessons)
	_, err = services.CreateModule(db, instructor, c.ID, services.ModuleInput{Title: "Intro again", Order: 1})
	require.NoError(t, err)
}

func TestGetLessonAccess(t *testing.T) {
	db := testutil.SetupDB(t)
	s := seedEnrolledLesson(t, db, course.LessonArticle)
	admin := testutil.SeedUser(t, db, models.RoleAdmin)
	outsider := testutil.SeedUser(t, db, models.RoleStudent)

	for _, u := range []models.User{s.instructor, admin, s.student} {
		l, err := services.GetLesson(db, u, s.course.ID, s.module.ID, s.lesson.ID)
		require.NoError(t, err)
		assert.Equal(t, s.lesson.ID, l.ID)
	}

	_, err := services.GetLesson(db, outsider, s.course.ID, s.module.ID, s.lesson.ID)
	requireStatus(t, err, http.StatusForbidden)

	other := testutil.SeedModule(t, db, s.course.ID, 2)
	_, err = services.GetLesson(db, s.student, s.course.ID, other.ID, s.lesson.ID)
	requireStatus(t, err, http.StatusNotFound)
}

func TestCouponScoping(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)
	other := testutil.SeedUser(t, db, models.RoleInstructor)
	admin := testutil.SeedUser(t, db, models.RoleAdmin)
	own := testutil.SeedCourse(t, db, instructor.ID, "10.00", course.CoursePublished)
	foreign := testutil.SeedCourse(t, db, other.ID, "10.00", course.CoursePublished)

	future := time.Now().Add(24 * time.Hour)
	coupon, err := services.CreateCoupon(db, instructor, services.CouponInput{
		Code: " spring ", DiscountPercent: decimal.NewFromInt(25), ExpiresAt: &future, CourseIDs: []uint{own.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "SPRING", coupon.Code)
	assert.Equal(t, 100, coupon.MaxUses)
	require.NotNil(t, coupon.InstructorID)

	_, err = services.CreateCoupon(db, instructor, services.CouponInput{Code: "Spring", DiscountPercent: decimal.NewFromInt(5)})
	requireStatus(t, err, http.StatusConflict)

	_, err = services.CreateCoupon(db, instructor, services.CouponInput{Code: "STEAL", DiscountPercent: decimal.NewFromInt(5), CourseIDs: []uint{foreign.ID}})
	requireStatus(t, err, http.StatusForbidden)

	_, err = services.CreateCoupon(db, instructor, services.CouponInput{Code: "FREE", DiscountPercent: decimal.NewFromInt(101)})
	requireStatus(t, err, http.StatusBadRequest)

	platform, err := services.CreateCoupon(db, admin, services.CouponInput{Code: "WELCOME", DiscountPercent: decimal.NewFromInt(10), MaxUses: 3})
	require.NoError(t, err)
	assert.Nil(t, platform.InstructorID)

	mine, err := services.ListCoupons(db, instructor)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "SPRING", mine[0].Code)
	require.Len(t, mine[0].Courses, 1)

	all, err := services.ListCoupons(db, admin)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	requireStatus(t, services.DeleteCoupon(db, other, coupon.ID), http.StatusForbidden)
	requireStatus(t, services.DeleteCoupon(db, instructor, platform.ID), http.StatusForbidden)
	require.NoError(t, services.DeleteCoupon(db, instructor, coupon.ID))
	require.NoError(t, services.DeleteCoupon(db, admin, platform.ID))
}

func TestCategoryAndTagUniqueness(t *testing.T) {
	db := testutil.SetupDB(t)

	parent, err := services.CreateCategory(db, "Programming", nil)
	require.NoError(t, err)
	assert.Equal(t, "programming", parent.Slug)

	child, err := services.CreateCategory(db, "Web Development", &parent.ID)
	require.NoError(t, err)
	assert.Equal(t, "web-development", child.Slug)

	_, err = services.CreateCategory(db, "Programming", nil)
	requireStatus(t, err, http.StatusConflict)

	missing := uint(9999)
	_, err = services.CreateCategory(db, "Orphans", &missing)
	requireStatus(t, err, http.StatusBadRequest)

	_, err = services.CreateTag(db, "Go")
	require.NoError(t, err)
	_, err = services.CreateTag(db, "Go")
	requireStatus(t, err, http.StatusConflict)
}

func TestDeletedCourseFreesTitle(t *testing.T) {
	db := testutil.SetupDB(t)
	instructor := testutil.SeedUser(t, db, models.RoleInstructor)

	first, err := services.CreateCourse(db, instructor, services.CourseInput{Title: "Intro to SQL", PriceUSD: decimal.Zero})
	require.NoError(t, err)
	require.NoError(t, services.DeleteCourse(db, instructor, first.ID))

	second, err := services.CreateCourse(db, instructor, services.CourseInput{Title: "Intro to SQL", PriceUSD: decimal.Zero})
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	_, err = services.CreateCourse(db, instructor, services.CourseInput{Title: "Intro to SQL", PriceUSD: decimal.Zero})
	requireStatus(t, err, http.StatusConflict)
}
