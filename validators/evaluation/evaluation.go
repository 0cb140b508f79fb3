package evaluationValidator

import (
	"strings"

	"cursapp/models/evaluation"
	"cursapp/services"
	"cursapp/validators"

	"github.com/gofiber/fiber/v2"
)

var lessonStatuses = []string{
	evaluation.SCORMPassed,
	evaluation.SCORMCompleted,
	evaluation.SCORMFailed,
	evaluation.SCORMIncomplete,
	evaluation.SCORMBrowsed,
	evaluation.SCORMNotAttempted,
}

type EnrollRequest struct {
	CourseID   uint   `json:"course_id" validate:"required,min=1"`
	CouponCode string `json:"coupon_code" validate:"max=50"`
}

type ProgressRequest struct {
	MinutesSpent  int  `json:"minutes_spent" validate:"min=0,max=1440"`
	PercentViewed *int `json:"percent_viewed" validate:"omitempty,min=0,max=100"`
	Completed     bool `json:"completed"`
}

type SCORMCommitRequest struct {
	LessonStatus   string   `json:"lesson_status"`
	ScoreRaw       *float64 `json:"score_raw" validate:"omitempty,min=0,max=100"`
	SuspendData    *string  `json:"suspend_data" validate:"omitempty,max=4096"`
	PercentViewed  *int     `json:"percent_viewed" validate:"omitempty,min=0,max=100"`
	SessionMinutes int      `json:"session_minutes" validate:"min=0,max=1440"`
}

type QuizAttemptRequest struct {
	Answers map[uint]uint `json:"answers" validate:"required,min=1"`
}

type PointsRequest struct {
	StudentID uint   `json:"student_id" validate:"required,min=1"`
	Points    int    `json:"points" validate:"required,min=-100000,max=100000"`
	Reason    string `json:"reason" validate:"required,notblank,max=255"`
}

type BadgeRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=100"`
	Description string `json:"description" validate:"max=2000"`
	Criteria    string `json:"criteria" validate:"max=2000"`
	IconURL     string `json:"icon_url" validate:"omitempty,url"`
}

type AwardBadgeRequest struct {
	StudentID uint `json:"student_id" validate:"required,min=1"`
}

type RewardRequest struct {
	Name        string `json:"name" validate:"required,notblank,max=150"`
	Description string `json:"description" validate:"max=2000"`
	CostPoints  int    `json:"cost_points" validate:"required,min=1"`
}

func Enroll() fiber.Handler {
	return validators.Body[EnrollRequest]("validatedEnrollment", func(req *EnrollRequest, _ map[string]string) {
		req.CouponCode = strings.TrimSpace(req.CouponCode)
	})
}

func Progress() fiber.Handler {
	return validators.Body[ProgressRequest]("validatedProgress")
}

func SCORMCommit() fiber.Handler {
	return validators.Body[SCORMCommitRequest]("validatedCommit", func(req *SCORMCommitRequest, errs map[string]string) {
		req.LessonStatus = strings.TrimSpace(strings.ToLower(req.LessonStatus))
		if req.LessonStatus == "" {
			return
		}
		for _, s := range lessonStatuses {
			if req.LessonStatus == s {
				return
			}
		}
		errs["lesson_status"] = "Lesson status must be one of " + strings.Join(lessonStatuses, ", ") + "!"
	})
}

func QuizAttempt() fiber.Handler {
	return validators.Body[QuizAttemptRequest]("validatedAttempt")
}

func GrantPoints() fiber.Handler {
	return validators.Body[PointsRequest]("validatedPoints")
}

func Badge() fiber.Handler {
	return validators.Body[BadgeRequest]("validatedBadge")
}

func AwardBadge() fiber.Handler {
	return validators.Body[AwardBadgeRequest]("validatedAward")
}

func Reward() fiber.Handler {
	return validators.Body[RewardRequest]("validatedReward")
}

// Commit converts the validated commit into the service input.
func (r SCORMCommitRequest) Commit() services.SCORMCommit {
	return services.SCORMCommit{
		LessonStatus:   r.LessonStatus,
		ScoreRaw:       r.ScoreRaw,
		SuspendData:    r.SuspendData,
		PercentViewed:  r.PercentViewed,
		SessionMinutes: r.SessionMinutes,
	}
}
