package catalogController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models/course"
	"cursapp/services"
	"cursapp/utils"
	"cursapp/validators"
	catalogValidator "cursapp/validators/catalog"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// ListModules returns the ordered modules and lessons of a course to its owner or an admin.
func ListModules(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	courseID := validators.ID(c, "course_id")

	var owner course.Course
	if err := database.Database.Db.First(&owner, courseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
		}
		return middleware.ErrorResponse(c, errors.Wrap(err, "load course"))
	}
	if !user.IsAdmin() && !owner.IsOwnedBy(user.ID) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "You can only manage your own courses!", nil)
	}

	var modules []course.Module
	if err := database.Database.Db.
		Preload("Lessons", func(db *gorm.DB) *gorm.DB { return db.Order("sort_order ASC") }).
		Where("course_id = ?", courseID).Order("sort_order ASC").
		Find(&modules).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list modules"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Modules fetched successfully!", modules)
}

func CreateModule(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedModule").(*catalogValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	m, err := services.CreateModule(database.Database.Db, user, validators.ID(c, "course_id"),
		services.ModuleInput{Title: reqData.Title, Order: reqData.Order})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Module created successfully!", m)
}

func UpdateModule(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedModule").(*catalogValidator.ModuleRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	m, err := services.UpdateModule(database.Database.Db, user, validators.ID(c, "course_id"), validators.ID(c, "module_id"),
		services.ModuleInput{Title: reqData.Title, Order: reqData.Order})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module updated successfully!", m)
}

func DeleteModule(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	if err := services.DeleteModule(database.Database.Db, user, validators.ID(c, "course_id"), validators.ID(c, "module_id")); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Module deleted successfully!", nil)
}

func lessonInput(req *catalogValidator.LessonRequest) services.LessonInput {
	return services.LessonInput{
		Title:           req.Title,
		Type:            req.Type,
		ArticleBody:     req.ArticleBody,
		FileURL:         req.FileURL,
		DurationMinutes: req.DurationMinutes,
		Order:           req.Order,
	}
}

func CreateLesson(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedLesson").(*catalogValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	lesson, err := services.CreateLesson(database.Database.Db, user,
		validators.ID(c, "course_id"), validators.ID(c, "module_id"), lessonInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if services.NeedsVideoProcessing(*lesson) {
		utils.EnqueueVideoProcessing(c.UserContext(), lesson.ID)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Lesson created successfully!", lesson)
}

func GetLesson(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	lesson, err := services.GetLesson(database.Database.Db, user,
		validators.ID(c, "course_id"), validators.ID(c, "module_id"), validators.ID(c, "lesson_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson fetched successfully!", lesson)
}

func UpdateLesson(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedLesson").(*catalogValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	lesson, err := services.UpdateLesson(database.Database.Db, user,
		validators.ID(c, "course_id"), validators.ID(c, "module_id"), validators.ID(c, "lesson_id"), lessonInput(reqData))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	if services.NeedsVideoProcessing(*lesson) {
		utils.EnqueueVideoProcessing(c.UserContext(), lesson.ID)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", lesson)
}

func DeleteLesson(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	err := services.DeleteLesson(database.Database.Db, user,
		validators.ID(c, "course_id"), validators.ID(c, "module_id"), validators.ID(c, "lesson_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson deleted successfully!", nil)
}

// UpsertQuiz replaces the quiz attached to a quiz lesson.
func UpsertQuiz(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedQuiz").(*catalogValidator.QuizRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	db := database.Database.Db
	lesson, err := services.EditableLesson(db, user,
		validators.ID(c, "course_id"), validators.ID(c, "module_id"), validators.ID(c, "lesson_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	in := services.QuizInput{PassingScore: reqData.PassingScore, MaxAttempts: reqData.MaxAttempts}
	for _, q := range reqData.Questions {
		qin := services.QuestionInput{Text: q.Text, Points: q.Points}
		for _, o := range q.Options {
			qin.Options = append(qin.Options, services.OptionInput{Text: o.Text, IsCorrect: o.IsCorrect})
		}
		in.Questions = append(in.Questions, qin)
	}

	quiz, err := services.UpsertQuiz(db, *lesson, in)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz saved successfully!", quiz)
}
