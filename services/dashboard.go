package services

import (
	"time"

	"cursapp/models/course"
	"cursapp/models/evaluation"

	"github.com/jinzhu/now"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CourseSales struct {
	CourseID        uint            `json:"course_id"`
	Title           string          `json:"title"`
	Status          string          `json:"status"`
	PaidEnrollments int64           `json:"paid_enrollments"`
	AvgOverall      decimal.Decimal `json:"avg_overall"`
	ReviewCount     int             `json:"review_count"`
}

type Dashboard struct {
	TotalCourses     int64           `json:"total_courses"`
	PublishedCourses int64           `json:"published_courses"`
	PaidEnrollments  int64           `json:"paid_enrollments"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	PendingPayout    decimal.Decimal `json:"pending_payout"`
	AverageRating    decimal.Decimal `json:"average_rating"`
	Courses          []CourseSales   `json:"courses"`
}

// InstructorDashboard aggregates sales, payouts and ratings of the instructor's courses.
// Revenue is the instructor's share of each settlement.
func InstructorDashboard(db *gorm.DB, instructorID uint, at time.Time) (*Dashboard, error) {
	d := &Dashboard{
		TotalRevenue:     decimal.Zero,
		RevenueThisMonth: decimal.Zero,
		PendingPayout:    decimal.Zero,
		AverageRating:    decimal.Zero,
		Courses:          []CourseSales{},
	}

	var courses []course.Course
	if err := db.Where("instructor_id = ?", instructorID).Order("created_at DESC").Find(&courses).Error; err != nil {
		return nil, errors.Wrap(err, "load instructor courses")
	}
	d.TotalCourses = int64(len(courses))

	var counts []struct {
		CourseID uint
		Total    int64
	}
	if err := db.Model(&evaluation.Enrollment{}).
		Select("course_id, COUNT(*) AS total").
		Joins("JOIN courses ON courses.id = enrollments.course_id").
		Where("courses.instructor_id = ? AND enrollments.payment_status = ?", instructorID, evaluation.PaymentPaid).
		Group("course_id").
		Scan(&counts).Error; err != nil {
		return nil, errors.Wrap(err, "count paid enrollments")
	}
	perCourse := make(map[uint]int64, len(counts))
	for _, c := range counts {
		perCourse[c.CourseID] = c.Total
		d.PaidEnrollments += c.Total
	}

	ratingSum, rated := decimal.Zero, 0
	for _, c := range courses {
		if c.Status == course.CoursePublished {
			d.PublishedCourses++
		}
		if c.ReviewCount > 0 {
			ratingSum = ratingSum.Add(c.AvgOverall)
			rated++
		}
		d.Courses = append(d.Courses, CourseSales{
			CourseID:        c.ID,
			Title:           c.Title,
			Status:          string(c.Status),
			PaidEnrollments: perCourse[c.ID],
			AvgOverall:      c.AvgOverall,
			ReviewCount:     c.ReviewCount,
		})
	}
	if rated > 0 {
		d.AverageRating = ratingSum.Div(decimal.NewFromInt(int64(rated))).Round(2)
	}

	var settlements []evaluation.Settlement
	if err := db.Where("instructor_id = ?", instructorID).Find(&settlements).Error; err != nil {
		return nil, errors.Wrap(err, "load settlements")
	}
	monthStart := now.With(at).BeginningOfMonth()
	for _, s := range settlements {
		d.TotalRevenue = d.TotalRevenue.Add(s.InstructorCut)
		if !s.CreatedAt.Before(monthStart) {
			d.RevenueThisMonth = d.RevenueThisMonth.Add(s.InstructorCut)
		}
		if s.Status == evaluation.SettlementPending {
			d.PendingPayout = d.PendingPayout.Add(s.InstructorCut)
		}
	}
	return d, nil
}
