package catalogController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models/course"
	"cursapp/services"
	"cursapp/validators"
	catalogValidator "cursapp/validators/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

func courseInput(req *catalogValidator.CourseRequest) services.CourseInput {
	return services.CourseInput{
		Title:               req.Title,
		Description:         req.Description,
		CategoryID:          req.CategoryID,
		TagIDs:              req.TagIDs,
		PriceUSD:            req.PriceUSD,
		RequiresCertificate: req.RequiresCertificate,
	}
}

// GetAllCourses lists published courses, newest first.
func GetAllCourses(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedList").(*catalogValidator.CourseListQuery)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	page := reqData.Pagination()

	db := database.Database.Db.Model(&course.Course{}).Where("status = ?", course.CoursePublished)
	if reqData.CategoryID != 0 {
		db = db.Where("category_id = ?", reqData.CategoryID)
	}
	if reqData.Search != "" {
		like := "%" + reqData.Search + "%"
		db = db.Where("(LOWER(title) LIKE LOWER(?) OR LOWER(description) LIKE LOWER(?))", like, like)
	}

	var total int64
	if err := db.Count(&total).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "count courses"))
	}
	var courses []course.Course
	if err := db.Preload("Category").Preload("Tags").Preload("Instructor").
		Order("created_at DESC").Order("id DESC").
		Offset(page.Offset()).Limit(page.Limit).
		Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list courses"))
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"items": courses,
		"pagination": fiber.Map{
			"total": total,
			"page":  page.Page,
			"limit": page.Limit,
		},
	})
}

// lessonSummary is the public outline entry of a lesson; content stays behind GetLesson.
type lessonSummary struct {
	ID              uint              `json:"id"`
	Title           string            `json:"title"`
	Type            course.LessonType `json:"type"`
	Order           int               `json:"order"`
	DurationMinutes int               `json:"duration_minutes"`
}

type moduleOutline struct {
	ID      uint            `json:"id"`
	Title   string          `json:"title"`
	Order   int             `json:"order"`
	Lessons []lessonSummary `json:"lessons"`
}

type courseDetail struct {
	course.Course
	Modules []moduleOutline `json:"modules"`
}

func outlineOf(c course.Course) courseDetail {
	detail := courseDetail{Course: c, Modules: make([]moduleOutline, 0, len(c.Modules))}
	for _, m := range c.Modules {
		outline := moduleOutline{ID: m.ID, Title: m.Title, Order: m.Order, Lessons: make([]lessonSummary, 0, len(m.Lessons))}
		for _, l := range m.Lessons {
			outline.Lessons = append(outline.Lessons, lessonSummary{
				ID:              l.ID,
				Title:           l.Title,
				Type:            l.Type,
				Order:           l.Order,
				DurationMinutes: l.DurationMinutes,
			})
		}
		detail.Modules = append(detail.Modules, outline)
	}
	detail.Course.Modules = nil
	return detail
}

// GetCourseDetails returns a published course with the outline of its modules and lessons.
func GetCourseDetails(c *fiber.Ctx) error {
	courseID := validators.ID(c, "course_id")

	var detail course.Course
	err := database.Database.Db.
		Preload("Category").Preload("Tags").Preload("Instructor").
		Preload("Modules", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Preload("Modules.Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("id = ? AND status = ?", courseID, course.CoursePublished).
		First(&detail).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.ErrorResponse(c, errors.Wrap(err, "load course"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", outlineOf(detail))
}

// GetInstructorCourses lists the caller's own courses in every state.
func GetInstructorCourses(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var courses []course.Course
	if err := database.Database.Db.Preload("Category").
		Where("instructor_id = ?", user.ID).
		Order("created_at DESC").
		Find(&courses).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list instructor courses"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", courses)
}

func CreateCourse(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCourse").(*catalogValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	created, err := services.CreateCourse(database.Database.Db, user, courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Course created successfully!", created)
}

func UpdateCourse(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCourse").(*catalogValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	updated, err := services.UpdateCourse(database.Database.Db, user, validators.ID(c, "course_id"), courseInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", updated)
}

func UpdateCourseStatus(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedStatus").(*catalogValidator.CourseStatusRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	updated, err := services.SetCourseStatus(database.Database.Db, user, validators.ID(c, "course_id"), reqData.Status)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course status updated successfully!", updated)
}

func DeleteCourse(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	if err := services.DeleteCourse(database.Database.Db, user, validators.ID(c, "course_id")); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course deleted successfully!", nil)
}
