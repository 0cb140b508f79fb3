package communityController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/services"
	"cursapp/validators"
	communityValidator "cursapp/validators/community"

	"github.com/gofiber/fiber/v2"
)

func lessonPath(c *fiber.Ctx) services.LessonPath {
	return services.LessonPath{
		CourseID: validators.ID(c, "course_id"),
		ModuleID: validators.ID(c, "module_id"),
		LessonID: validators.ID(c, "lesson_id"),
	}
}

func GetQuestions(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	questions, err := services.ListQuestions(database.Database.Db, user, lessonPath(c))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Questions fetched successfully!", questions)
}

func GetQuestion(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	question, err := services.GetQuestion(database.Database.Db, user, lessonPath(c), validators.ID(c, "question_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question fetched successfully!", question)
}

func CreateQuestion(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedQuestion").(*communityValidator.QuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	question, err := services.CreateQuestion(database.Database.Db, user, lessonPath(c),
		services.ForumPostInput{Title: reqData.Title, Body: reqData.Body})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Question posted successfully!", question)
}

func UpdateQuestion(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedQuestion").(*communityValidator.QuestionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	question, err := services.UpdateQuestion(database.Database.Db, user, lessonPath(c), validators.ID(c, "question_id"),
		services.ForumPostInput{Title: reqData.Title, Body: reqData.Body})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question updated successfully!", question)
}

func DeleteQuestion(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	if err := services.DeleteQuestion(database.Database.Db, user, lessonPath(c), validators.ID(c, "question_id")); err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Question deleted successfully!", nil)
}

func GetAnswers(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	answers, err := services.ListAnswers(database.Database.Db, user, lessonPath(c), validators.ID(c, "question_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answers fetched successfully!", answers)
}

func CreateAnswer(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedAnswer").(*communityValidator.AnswerRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	answer, err := services.CreateAnswer(database.Database.Db, user, lessonPath(c), validators.ID(c, "question_id"), reqData.Body)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Answer posted successfully!", answer)
}

func UpdateAnswer(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedAnswer").(*communityValidator.AnswerRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	answer, err := services.UpdateAnswer(database.Database.Db, user, lessonPath(c),
		validators.ID(c, "question_id"), validators.ID(c, "answer_id"), reqData.Body)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer updated successfully!", answer)
}

func DeleteAnswer(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	err := services.DeleteAnswer(database.Database.Db, user, lessonPath(c),
		validators.ID(c, "question_id"), validators.ID(c, "answer_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer deleted successfully!", nil)
}

// MarkAnswerUseful flags or unflags an answer. Only the question author or the course owner may.
func MarkAnswerUseful(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedUseful").(*communityValidator.UsefulRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	answer, err := services.MarkAnswerUseful(database.Database.Db, user, lessonPath(c),
		validators.ID(c, "question_id"), validators.ID(c, "answer_id"), *reqData.Useful)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Answer updated successfully!", answer)
}
