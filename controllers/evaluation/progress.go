package evaluationController

import (
	"cursapp/database"
	"cursapp/middleware"
	"cursapp/models/course"
	"cursapp/models/evaluation"
	"cursapp/services"
	"cursapp/validators"
	evaluationValidator "cursapp/validators/evaluation"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// cmiState is the SCORM 1.2 runtime view of a progress row.
type cmiState struct {
	LessonID      uint     `json:"lesson_id"`
	Entry         string   `json:"cmi.core.entry"`
	LessonStatus  string   `json:"cmi.core.lesson_status"`
	ScoreRaw      *float64 `json:"cmi.core.score.raw"`
	SuspendData   string   `json:"cmi.suspend_data"`
	PercentViewed int      `json:"percent_viewed"`
	MinutesSpent  int      `json:"minutes_spent"`
	Completed     bool     `json:"completed"`
}

func toCMI(p evaluation.LessonProgress) cmiState {
	return cmiState{
		LessonID:      p.LessonID,
		Entry:         p.Entry,
		LessonStatus:  p.LessonStatus,
		ScoreRaw:      p.ScoreRaw,
		SuspendData:   p.SuspendData,
		PercentViewed: p.PercentViewed,
		MinutesSpent:  p.MinutesSpent,
		Completed:     p.Completed,
	}
}

// InitializeSCORM is LMSInitialize.
func InitializeSCORM(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	progress, err := services.InitializeSCORM(database.Database.Db, user.ID, validators.ID(c, "lesson_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "SCORM session initialized!", toCMI(*progress))
}

// CommitSCORM is LMSCommit.
func CommitSCORM(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedCommit").(*evaluationValidator.SCORMCommitRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	result, err := services.CommitSCORM(database.Database.Db, user.ID, validators.ID(c, "lesson_id"), reqData.Commit())
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "SCORM data committed!", fiber.Map{
		"cmi":              toCMI(result.Progress),
		"just_completed":   result.JustCompleted,
		"course_completed": result.CourseCompleted,
		"certificate":      result.Certificate,
	})
}

func RecordProgress(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedProgress").(*evaluationValidator.ProgressRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	result, err := services.RecordProgress(database.Database.Db, user.ID, validators.ID(c, "lesson_id"), services.ProgressUpdate{
		MinutesSpent:  reqData.MinutesSpent,
		PercentViewed: reqData.PercentViewed,
		Completed:     reqData.Completed,
	})
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Progress saved!", result)
}

type quizOptionView struct {
	ID   uint   `json:"id"`
	Text string `json:"text"`
}

type quizQuestionView struct {
	ID      uint             `json:"id"`
	Text    string           `json:"text"`
	Points  int              `json:"points"`
	Options []quizOptionView `json:"options"`
}

// GetQuiz returns the quiz of a lesson without revealing the correct options.
func GetQuiz(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	quiz, err := services.QuizForStudent(database.Database.Db, user.ID, validators.ID(c, "lesson_id"))
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}

	questions := make([]quizQuestionView, 0, len(quiz.Questions))
	for _, q := range quiz.Questions {
		view := quizQuestionView{ID: q.ID, Text: q.Text, Points: q.Points, Options: make([]quizOptionView, 0, len(q.Options))}
		for _, o := range q.Options {
			view.Options = append(view.Options, quizOptionView{ID: o.ID, Text: o.Text})
		}
		questions = append(questions, view)
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Quiz fetched successfully!", fiber.Map{
		"id":            quiz.ID,
		"lesson_id":     quiz.LessonID,
		"passing_score": quiz.PassingScore,
		"max_attempts":  quiz.MaxAttempts,
		"questions":     questions,
	})
}

func SubmitQuizAttempt(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	reqData, ok := c.Locals("validatedAttempt").(*evaluationValidator.QuizAttemptRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	result, err := services.SubmitQuizAttempt(database.Database.Db, user.ID, validators.ID(c, "lesson_id"), reqData.Answers)
	if err != nil {
		return middleware.ErrorResponse(c, err)
	}
	message := "Quiz attempt submitted!"
	if result.Attempt.Passed {
		message = "Quiz passed!"
	}
	return middleware.JsonResponse(c, fiber.StatusCreated, true, message, result)
}

func GetUserCertificates(c *fiber.Ctx) error {
	user, _ := middleware.CurrentUser(c)
	var certificates []evaluation.Certificate
	if err := database.Database.Db.Where("student_id = ?", user.ID).
		Order("issued_at DESC").Find(&certificates).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "list certificates"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificates fetched successfully!", certificates)
}

// VerifyCertificate is public: anyone holding a code can check it.
func VerifyCertificate(c *fiber.Ctx) error {
	code := c.Params("code")
	db := database.Database.Db

	var cert evaluation.Certificate
	if err := db.Where("code = ?", code).First(&cert).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Certificate not found!", nil)
		}
		return middleware.ErrorResponse(c, errors.Wrap(err, "load certificate"))
	}

	var student struct{ Name string }
	var issued course.Course
	if err := db.Table("users").Select("name").Where("id = ?", cert.StudentID).Scan(&student).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "load certificate student"))
	}
	if err := db.Unscoped().Select("id", "title").First(&issued, cert.CourseID).Error; err != nil {
		return middleware.ErrorResponse(c, errors.Wrap(err, "load certificate course"))
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, "Certificate is valid!", fiber.Map{
		"code":         cert.Code,
		"issued_at":    cert.IssuedAt,
		"student_name": student.Name,
		"course_id":    issued.ID,
		"course_title": issued.Title,
	})
}
