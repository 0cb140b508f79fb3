package evaluationRoutes

import (
	evaluationController "cursapp/controllers/evaluation"
	"cursapp/middleware"
	"cursapp/models"
	"cursapp/validators"
	evaluationValidator "cursapp/validators/evaluation"

	"github.com/gofiber/fiber/v2"
)

func SetupEvaluationRoutes(app *fiber.App) {
	evaluationGroup := app.Group("/api/v1/evaluation")

	anyUser := middleware.RequireRoles()
	students := middleware.RequireRoles(models.RoleStudent)
	admins := middleware.RequireRoles(models.RoleAdmin)
	sellers := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)
	lessonID := validators.PathIDs("lesson_id")

	// Enrollment and payment
	evaluationGroup.Post("/enrollments", middleware.JWTMiddleware, students, evaluationValidator.Enroll(), evaluationController.EnrollInCourse)
	evaluationGroup.Get("/enrollments", middleware.JWTMiddleware, students, validators.Paginate(), evaluationController.GetUserEnrollments)
	evaluationGroup.Post("/payments/webhook", middleware.VerifyWebhookSignature(), evaluationController.PaymentWebhook)
	evaluationGroup.Get("/settlements", middleware.JWTMiddleware, sellers, validators.Paginate(), evaluationController.GetSettlements)
	evaluationGroup.Put("/settlements/:settlement_id/pay", middleware.JWTMiddleware, admins, validators.PathIDs("settlement_id"), evaluationController.PaySettlement)
	evaluationGroup.Get("/instructor/dashboard", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleInstructor), evaluationController.GetInstructorDashboard)

	// Progress
	evaluationGroup.Get("/lessons/:lesson_id/scorm", middleware.JWTMiddleware, students, lessonID, evaluationController.InitializeSCORM)
	evaluationGroup.Put("/lessons/:lesson_id/scorm", middleware.JWTMiddleware, students, lessonID, evaluationValidator.SCORMCommit(), evaluationController.CommitSCORM)
	evaluationGroup.Post("/lessons/:lesson_id/progress", middleware.JWTMiddleware, students, lessonID, evaluationValidator.Progress(), evaluationController.RecordProgress)
	evaluationGroup.Get("/lessons/:lesson_id/quiz", middleware.JWTMiddleware, students, lessonID, evaluationController.GetQuiz)
	evaluationGroup.Post("/lessons/:lesson_id/quiz/attempts", middleware.JWTMiddleware, students, lessonID, evaluationValidator.QuizAttempt(), evaluationController.SubmitQuizAttempt)
	evaluationGroup.Get("/my-learning", middleware.JWTMiddleware, students, evaluationController.GetMyLearning)
	evaluationGroup.Get("/continue", middleware.JWTMiddleware, students, evaluationController.GetContinueLearning)

	// Certificates
	evaluationGroup.Get("/certificates", middleware.JWTMiddleware, students, evaluationController.GetUserCertificates)
	evaluationGroup.Get("/certificates/:code", evaluationController.VerifyCertificate)

	// Gamification
	evaluationGroup.Get("/leaderboard", evaluationController.GetLeaderboard)
	evaluationGroup.Get("/points", middleware.JWTMiddleware, anyUser, validators.Paginate(), evaluationController.GetMyPoints)
	evaluationGroup.Post("/points", middleware.JWTMiddleware, admins, evaluationValidator.GrantPoints(), evaluationController.GrantPoints)
	evaluationGroup.Get("/badges", middleware.JWTMiddleware, anyUser, evaluationController.GetBadges)
	evaluationGroup.Get("/badges/mine", middleware.JWTMiddleware, anyUser, evaluationController.GetMyBadges)
	evaluationGroup.Post("/badges", middleware.JWTMiddleware, admins, evaluationValidator.Badge(), evaluationController.CreateBadge)
	evaluationGroup.Post("/badges/:badge_id/award", middleware.JWTMiddleware, admins, validators.PathIDs("badge_id"), evaluationValidator.AwardBadge(), evaluationController.AwardBadge)
	evaluationGroup.Get("/rewards", middleware.JWTMiddleware, anyUser, evaluationController.GetRewards)
	evaluationGroup.Post("/rewards", middleware.JWTMiddleware, admins, evaluationValidator.Reward(), evaluationController.CreateReward)
	evaluationGroup.Delete("/rewards/:reward_id", middleware.JWTMiddleware, admins, validators.PathIDs("reward_id"), evaluationController.DeactivateReward)
	evaluationGroup.Post("/rewards/:reward_id/redeem", middleware.JWTMiddleware, students, validators.PathIDs("reward_id"), evaluationController.RedeemReward)
}
