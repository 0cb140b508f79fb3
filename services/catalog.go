package services

import (
	"strings"
	"time"

	"cursapp/apperr"
	"cursapp/models"
	"cursapp/models/course"
	"cursapp/utils"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CourseInput struct {
	Title               string
	Description         string
	CategoryID          *uint
	TagIDs              []uint
	PriceUSD            decimal.Decimal
	RequiresCertificate bool
}

type ModuleInput struct {
	Title string
	Order int
}

type LessonInput struct {
	Title           string
	Type            course.LessonType
	ArticleBody     string
	FileURL         string
	DurationMinutes int
	Order           int
}

type CouponInput struct {
	Code            string
	DiscountPercent decimal.Decimal
	ExpiresAt       *time.Time
	MaxUses         int
	CourseIDs       []uint
}

func CreateCategory(db *gorm.DB, name string, parentID *uint) (*course.Category, error) {
	if parentID != nil {
		var count int64
		if err := db.Model(&course.Category{}).Where("id = ?", *parentID).Count(&count).Error; err != nil {
			return nil, errors.Wrap(err, "check parent category")
		}
		if count == 0 {
			return nil, apperr.Validation("Parent category not found!")
		}
	}
	cat := course.Category{Name: strings.TrimSpace(name), Slug: utils.Slugify(name), ParentID: parentID}
	if err := db.Create(&cat).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Category already exists!")
		}
		return nil, errors.Wrap(err, "create category")
	}
	return &cat, nil
}

func CreateTag(db *gorm.DB, name string) (*course.Tag, error) {
	tag := course.Tag{Name: strings.TrimSpace(name), Slug: utils.Slugify(name)}
	if err := db.Create(&tag).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("Tag already exists!")
		}
		return nil, errors.Wrap(err, "create tag")
	}
	return &tag, nil
}

// editableCourse loads a course the user may manage: its instructor or an admin.
func editableCourse(tx *gorm.DB, user models.User, courseID uint) (course.Course, error) {
	var c course.Course
	if err := tx.First(&c, courseID).Error; err != nil {
		if isNotFound(err) {
			return c, apperr.NotFound("Course not found!")
		}
		return c, errors.Wrap(err, "load course")
	}
	if !user.IsAdmin() && !c.IsOwnedBy(user.ID) {
		return c, apperr.Forbidden("You can only manage your own courses!")
	}
	return c, nil
}

func loadTags(tx *gorm.DB, ids []uint) ([]course.Tag, error) {
	if len(ids) == 0 {
		return []course.Tag{}, nil
	}
	var tags []course.Tag
	if err := tx.Where("id IN ?", ids).Find(&tags).Error; err != nil {
		return nil, errors.Wrap(err, "load tags")
	}
	if len(tags) != len(uniqueIDs(ids)) {
		return nil, apperr.Validation("One or more tags do not exist!")
	}
	return tags, nil
}

func checkCategory(tx *gorm.DB, categoryID *uint) error {
	if categoryID == nil {
		return nil
	}
	var count int64
	if err := tx.Model(&course.Category{}).Where("id = ?", *categoryID).Count(&count).Error; err != nil {
		return errors.Wrap(err, "check category")
	}
	if count == 0 {
		return apperr.Validation("Category not found!")
	}
	return nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// CreateCourse stores a draft. Instructors own what they create; admin courses have no instructor.
func CreateCourse(db *gorm.DB, user models.User, in CourseInput) (*course.Course, error) {
	var c course.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := checkCategory(tx, in.CategoryID); err != nil {
			return err
		}
		tags, err := loadTags(tx, in.TagIDs)
		if err != nil {
			return err
		}
		c = course.Course{
			Title:               strings.TrimSpace(in.Title),
			Slug:                utils.Slugify(in.Title),
			Description:         in.Description,
			CategoryID:          in.CategoryID,
			Tags:                tags,
			PriceUSD:            in.PriceUSD.Round(2),
			RequiresCertificate: in.RequiresCertificate,
			Status:              course.CourseDraft,
		}
		if user.Role == models.RoleInstructor {
			id := user.ID
			c.InstructorID = &id
		}
		if err := tx.Create(&c).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("A course with this title already exists!")
			}
			return errors.Wrap(err, "create course")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// UpdateCourse rewrites the editable fields. Rating aggregates are never touched here.
func UpdateCourse(db *gorm.DB, user models.User, courseID uint, in CourseInput) (*course.Course, error) {
	var c course.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = editableCourse(tx, user, courseID); err != nil {
			return err
		}
		if err := checkCategory(tx, in.CategoryID); err != nil {
			return err
		}
		tags, err := loadTags(tx, in.TagIDs)
		if err != nil {
			return err
		}

		updates := map[string]interface{}{
			"title":                strings.TrimSpace(in.Title),
			"slug":                 utils.Slugify(in.Title),
			"description":          in.Description,
			"category_id":          in.CategoryID,
			"price_usd":            in.PriceUSD.Round(2),
			"requires_certificate": in.RequiresCertificate,
		}
		if err := tx.Model(&c).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("A course with this title already exists!")
			}
			return errors.Wrap(err, "update course")
		}
		if err := tx.Model(&c).Association("Tags").Replace(tags); err != nil {
			return errors.Wrap(err, "replace course tags")
		}
		return tx.Preload("Tags").Preload("Category").First(&c, c.ID).Error
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// SetCourseStatus moves a course between states. Instructors toggle draft and published;
// suspension is an admin decision and locks the instructor out of status changes.
func SetCourseStatus(db *gorm.DB, user models.User, courseID uint, status course.CourseStatus) (*course.Course, error) {
	switch status {
	case course.CourseDraft, course.CoursePublished, course.CourseSuspended:
	default:
		return nil, apperr.Validation("Invalid course status!")
	}

	var c course.Course
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		if c, err = editableCourse(tx, user, courseID); err != nil {
			return err
		}
		if !user.IsAdmin() {
			if c.Status == course.CourseSuspended {
				return apperr.Forbidden("Suspended courses can only be changed by an admin!")
			}
			if status == course.CourseSuspended {
				return apperr.Forbidden("Only an admin can suspend a course!")
			}
		}
		if err := tx.Model(&c).Update("status", status).Error; err != nil {
			return errors.Wrap(err, "update course status")
		}
		c.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// DeleteCourse soft-deletes a course; enrollments keep pointing at it.
func DeleteCourse(db *gorm.DB, user models.User, courseID uint) error {
	c, err := editableCourse(db, user, courseID)
	if err != nil {
		return err
	}
	return errors.Wrap(db.Delete(&c).Error, "delete course")
}

func loadModule(tx *gorm.DB, courseID, moduleID uint) (course.Module, error) {
	var m course.Module
	if err := tx.Where("id = ? AND course_id = ?", moduleID, courseID).First(&m).Error; err != nil {
		if isNotFound(err) {
			return m, apperr.NotFound("Module not found!")
		}
		return m, errors.Wrap(err, "load module")
	}
	return m, nil
}

func CreateModule(db *gorm.DB, user models.User, courseID uint, in ModuleInput) (*course.Module, error) {
	if _, err := editableCourse(db, user, courseID); err != nil {
		return nil, err
	}
	m := course.Module{CourseID: courseID, Title: strings.TrimSpace(in.Title), Order: in.Order}
	if err := db.Create(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("A module with this order already exists in the course!")
		}
		return nil, errors.Wrap(err, "create module")
	}
	return &m, nil
}

func UpdateModule(db *gorm.DB, user models.User, courseID, moduleID uint, in ModuleInput) (*course.Module, error) {
	if _, err := editableCourse(db, user, courseID); err != nil {
		return nil, err
	}
	m, err := loadModule(db, courseID, moduleID)
	if err != nil {
		return nil, err
	}
	updates := map[string]interface{}{"title": strings.TrimSpace(in.Title), "sort_order": in.Order}
	if err := db.Model(&m).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("A module with this order already exists in the course!")
		}
		return nil, errors.Wrap(err, "update module")
	}
	m.Title, m.Order = strings.TrimSpace(in.Title), in.Order
	return &m, nil
}

// purgeLessons hard-deletes lessons and their quiz tree so orders can be reused.
func purgeLessons(tx *gorm.DB, lessonIDs []uint) error {
	if len(lessonIDs) == 0 {
		return nil
	}
	var quizIDs []uint
	if err := tx.Model(&course.Quiz{}).Where("lesson_id IN ?", lessonIDs).Pluck("id", &quizIDs).Error; err != nil {
		return errors.Wrap(err, "load quizzes")
	}
	if len(quizIDs) > 0 {
		var questionIDs []uint
		if err := tx.Model(&course.Question{}).Where("quiz_id IN ?", quizIDs).Pluck("id", &questionIDs).Error; err != nil {
			return errors.Wrap(err, "load questions")
		}
		if len(questionIDs) > 0 {
			if err := tx.Unscoped().Where("question_id IN ?", questionIDs).Delete(&course.Option{}).Error; err != nil {
				return errors.Wrap(err, "delete options")
			}
			if err := tx.Unscoped().Where("id IN ?", questionIDs).Delete(&course.Question{}).Error; err != nil {
				return errors.Wrap(err, "delete questions")
			}
		}
		if err := tx.Unscoped().Where("id IN ?", quizIDs).Delete(&course.Quiz{}).Error; err != nil {
			return errors.Wrap(err, "delete quizzes")
		}
	}
	return errors.Wrap(tx.Unscoped().Where("id IN ?", lessonIDs).Delete(&course.Lesson{}).Error, "delete lessons")
}

func DeleteModule(db *gorm.DB, user models.User, courseID, moduleID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := editableCourse(tx, user, courseID); err != nil {
			return err
		}
		m, err := loadModule(tx, courseID, moduleID)
		if err != nil {
			return err
		}
		var lessonIDs []uint
		if err := tx.Model(&course.Lesson{}).Where("module_id = ?", m.ID).Pluck("id", &lessonIDs).Error; err != nil {
			return errors.Wrap(err, "load module lessons")
		}
		if err := purgeLessons(tx, lessonIDs); err != nil {
			return err
		}
		return errors.Wrap(tx.Unscoped().Delete(&m).Error, "delete module")
	})
}

func loadLesson(tx *gorm.DB, courseID, moduleID, lessonID uint) (course.Lesson, error) {
	var l course.Lesson
	err := tx.Where("id = ? AND module_id = ? AND course_id = ?", lessonID, moduleID, courseID).First(&l).Error
	if err != nil {
		if isNotFound(err) {
			return l, apperr.NotFound("Lesson not found!")
		}
		return l, errors.Wrap(err, "load lesson")
	}
	return l, nil
}

// NeedsVideoProcessing reports whether the lesson has a raw video waiting for the worker.
func NeedsVideoProcessing(l course.Lesson) bool {
	return l.Type == course.LessonVideo && l.FileURL != "" && l.ProcessingStatus == course.ProcessingPending
}

func processingStatusFor(in LessonInput) course.ProcessingStatus {
	if in.Type == course.LessonVideo && strings.TrimSpace(in.FileURL) != "" {
		return course.ProcessingPending
	}
	return course.ProcessingCompleted
}

// CreateLesson stores a lesson. Callers enqueue video processing when NeedsVideoProcessing holds.
func CreateLesson(db *gorm.DB, user models.User, courseID, moduleID uint, in LessonInput) (*course.Lesson, error) {
	if _, err := editableCourse(db, user, courseID); err != nil {
		return nil, err
	}
	if _, err := loadModule(db, courseID, moduleID); err != nil {
		return nil, err
	}
	l := course.Lesson{
		ModuleID:         moduleID,
		CourseID:         courseID,
		Title:            strings.TrimSpace(in.Title),
		Type:             in.Type,
		ArticleBody:      in.ArticleBody,
		FileURL:          strings.TrimSpace(in.FileURL),
		DurationMinutes:  in.DurationMinutes,
		Order:            in.Order,
		ProcessingStatus: processingStatusFor(in),
	}
	if err := db.Create(&l).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("A lesson with this order already exists in the module!")
		}
		return nil, errors.Wrap(err, "create lesson")
	}
	return &l, nil
}

// UpdateLesson rewrites a lesson. A changed video file goes back to pending.
func UpdateLesson(db *gorm.DB, user models.User, courseID, moduleID, lessonID uint, in LessonInput) (*course.Lesson, error) {
	if _, err := editableCourse(db, user, courseID); err != nil {
		return nil, err
	}
	l, err := loadLesson(db, courseID, moduleID, lessonID)
	if err != nil {
		return nil, err
	}

	fileURL := strings.TrimSpace(in.FileURL)
	status := l.ProcessingStatus
	if in.Type != course.LessonVideo || fileURL == "" {
		status = course.ProcessingCompleted
	} else if fileURL != l.FileURL || l.Type != course.LessonVideo {
		status = course.ProcessingPending
	}

	updates := map[string]interface{}{
		"title":             strings.TrimSpace(in.Title),
		"type":              in.Type,
		"article_body":      in.ArticleBody,
		"file_url":          fileURL,
		"duration_minutes":  in.DurationMinutes,
		"sort_order":        in.Order,
		"processing_status": status,
	}
	if err := db.Model(&l).Updates(updates).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("A lesson with this order already exists in the module!")
		}
		return nil, errors.Wrap(err, "update lesson")
	}
	if err := db.First(&l, l.ID).Error; err != nil {
		return nil, errors.Wrap(err, "reload lesson")
	}
	return &l, nil
}

func DeleteLesson(db *gorm.DB, user models.User, courseID, moduleID, lessonID uint) error {
	return db.Transaction(func(tx *gorm.DB) error {
		if _, err := editableCourse(tx, user, courseID); err != nil {
			return err
		}
		l, err := loadLesson(tx, courseID, moduleID, lessonID)
		if err != nil {
			return err
		}
		return purgeLessons(tx, []uint{l.ID})
	})
}

// GetLesson returns a lesson to its course owner, an admin or a paid student.
func GetLesson(db *gorm.DB, user models.User, courseID, moduleID, lessonID uint) (*course.Lesson, error) {
	var c course.Course
	if err := db.First(&c, courseID).Error; err != nil {
		if isNotFound(err) {
			return nil, apperr.NotFound("Course not found!")
		}
		return nil, errors.Wrap(err, "load course")
	}
	l, err := loadLesson(db, courseID, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	if user.IsAdmin() || c.IsOwnedBy(user.ID) {
		return &l, nil
	}
	ok, err := HasPaidEnrollment(db, user.ID, courseID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperr.Forbidden("You need a paid enrollment to access this lesson!")
	}
	return &l, nil
}

// EditableLesson loads a lesson for authoring (quiz content).
func EditableLesson(db *gorm.DB, user models.User, courseID, moduleID, lessonID uint) (*course.Lesson, error) {
	if _, err := editableCourse(db, user, courseID); err != nil {
		return nil, err
	}
	l, err := loadLesson(db, courseID, moduleID, lessonID)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateCoupon stores a coupon. Instructor coupons are scoped to the instructor and may only
// list their own courses; admin coupons are platform-wide.
func CreateCoupon(db *gorm.DB, user models.User, in CouponInput) (*course.Coupon, error) {
	code := course.NormalizeCouponCode(in.Code)
	if code == "" {
		return nil, apperr.Validation("Coupon code is required!")
	}
	if in.DiscountPercent.LessThanOrEqual(decimal.Zero) || in.DiscountPercent.GreaterThan(hundred) {
		return nil, apperr.Validation("Discount must be between 0 and 100!")
	}

	var coupon course.Coupon
	err := db.Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Unscoped().Model(&course.Coupon{}).Where("LOWER(code) = LOWER(?)", code).Count(&count).Error; err != nil {
			return errors.Wrap(err, "check coupon code")
		}
		if count > 0 {
			return apperr.Conflict("Coupon code already exists!")
		}

		var courses []course.Course
		if ids := uniqueIDs(in.CourseIDs); len(ids) > 0 {
			if err := tx.Where("id IN ?", ids).Find(&courses).Error; err != nil {
				return errors.Wrap(err, "load coupon courses")
			}
			if len(courses) != len(ids) {
				return apperr.Validation("One or more courses do not exist!")
			}
			if !user.IsAdmin() {
				for _, c := range courses {
					if !c.IsOwnedBy(user.ID) {
						return apperr.Forbidden("Coupons can only target your own courses!")
					}
				}
			}
		}

		maxUses := in.MaxUses
		if maxUses <= 0 {
			maxUses = 100
		}
		coupon = course.Coupon{
			Code:            code,
			Courses:         courses,
			DiscountPercent: in.DiscountPercent.Round(2),
			ExpiresAt:       in.ExpiresAt,
			MaxUses:         maxUses,
		}
		if !user.IsAdmin() {
			id := user.ID
			coupon.InstructorID = &id
		}
		if err := tx.Create(&coupon).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperr.Conflict("Coupon code already exists!")
			}
			return errors.Wrap(err, "create coupon")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &coupon, nil
}

// ListCoupons returns every coupon to admins and the caller's own coupons otherwise.
func ListCoupons(db *gorm.DB, user models.User) ([]course.Coupon, error) {
	q := db.Preload("Courses").Order("created_at DESC")
	if !user.IsAdmin() {
		q = q.Where("instructor_id = ?", user.ID)
	}
	var coupons []course.Coupon
	if err := q.Find(&coupons).Error; err != nil {
		return nil, errors.Wrap(err, "list coupons")
	}
	return coupons, nil
}

func DeleteCoupon(db *gorm.DB, user models.User, couponID uint) error {
	var coupon course.Coupon
	if err := db.First(&coupon, couponID).Error; err != nil {
		if isNotFound(err) {
			return apperr.NotFound("Coupon not found!")
		}
		return errors.Wrap(err, "load coupon")
	}
	if !user.IsAdmin() && (coupon.InstructorID == nil || *coupon.InstructorID != user.ID) {
		return apperr.Forbidden("You can only delete your own coupons!")
	}
	return errors.Wrap(db.Delete(&coupon).Error, "delete coupon")
}
