package communityRoutes

import (
	communityController "cursapp/controllers/community"
	"cursapp/middleware"
	"cursapp/validators"
	communityValidator "cursapp/validators/community"

	"github.com/gofiber/fiber/v2"
)

func SetupCommunityRoutes(app *fiber.App) {
	questionGroup := app.Group("/api/v1/community/courses/:course_id/modules/:module_id/lessons/:lesson_id/questions",
		middleware.JWTMiddleware, middleware.RequireRoles(), communityValidator.LessonPath())

	questionID := validators.PathIDs("question_id")
	answerIDs := validators.PathIDs("question_id", "answer_id")

	questionGroup.Get("/", communityController.GetQuestions)
	questionGroup.Post("/", communityValidator.Question(), communityController.CreateQuestion)
	questionGroup.Get("/:question_id", questionID, communityController.GetQuestion)
	questionGroup.Put("/:question_id", questionID, communityValidator.Question(), communityController.UpdateQuestion)
	questionGroup.Delete("/:question_id", questionID, communityController.DeleteQuestion)

	questionGroup.Get("/:question_id/answers", questionID, communityController.GetAnswers)
	questionGroup.Post("/:question_id/answers", questionID, communityValidator.Answer(), communityController.CreateAnswer)
	questionGroup.Put("/:question_id/answers/:answer_id", answerIDs, communityValidator.Answer(), communityController.UpdateAnswer)
	questionGroup.Delete("/:question_id/answers/:answer_id", answerIDs, communityController.DeleteAnswer)
	questionGroup.Put("/:question_id/answers/:answer_id/useful", answerIDs, communityValidator.Useful(), communityController.MarkAnswerUseful)
}
