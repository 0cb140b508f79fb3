package communityValidator

import (
	"cursapp/validators"

	"github.com/gofiber/fiber/v2"
)

type QuestionRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
	Body  string `json:"body" validate:"required,notblank,max=10000"`
}

type AnswerRequest struct {
	Body string `json:"body" validate:"required,notblank,max=10000"`
}

type UsefulRequest struct {
	Useful *bool `json:"useful" validate:"required"`
}

// LessonPath validates the course → module → lesson ids every forum route carries.
func LessonPath() fiber.Handler {
	return validators.PathIDs("course_id", "module_id", "lesson_id")
}

func Question() fiber.Handler {
	return validators.Body[QuestionRequest]("validatedQuestion")
}

func Answer() fiber.Handler {
	return validators.Body[AnswerRequest]("validatedAnswer")
}

func Useful() fiber.Handler {
	return validators.Body[UsefulRequest]("validatedUseful")
}
