package catalogRoutes

import (
	catalogController "cursapp/controllers/catalog"
	"cursapp/middleware"
	"cursapp/models"
	"cursapp/validators"
	catalogValidator "cursapp/validators/catalog"

	"github.com/gofiber/fiber/v2"
)

func SetupCatalogRoutes(app *fiber.App) {
	catalogGroup := app.Group("/api/v1/catalog")

	anyUser := middleware.RequireRoles()
	authors := middleware.RequireRoles(models.RoleInstructor, models.RoleAdmin)
	admins := middleware.RequireRoles(models.RoleAdmin)
	students := middleware.RequireRoles(models.RoleStudent)

	// Taxonomy
	catalogGroup.Get("/categories", catalogController.ListCategories)
	catalogGroup.Post("/categories", middleware.JWTMiddleware, admins, catalogValidator.CreateCategory(), catalogController.CreateCategory)
	catalogGroup.Get("/tags", catalogController.ListTags)
	catalogGroup.Post("/tags", middleware.JWTMiddleware, authors, catalogValidator.CreateTag(), catalogController.CreateTag)

	// Courses
	catalogGroup.Get("/courses", catalogValidator.CourseList(), catalogController.GetAllCourses)
	catalogGroup.Get("/instructor/courses", middleware.JWTMiddleware, middleware.RequireRoles(models.RoleInstructor), catalogController.GetInstructorCourses)
	catalogGroup.Post("/courses", middleware.JWTMiddleware, authors, catalogValidator.CreateCourse(), catalogController.CreateCourse)
	catalogGroup.Get("/courses/:course_id", validators.PathIDs("course_id"), catalogController.GetCourseDetails)
	catalogGroup.Put("/courses/:course_id", middleware.JWTMiddleware, authors, validators.PathIDs("course_id"), catalogValidator.UpdateCourse(), catalogController.UpdateCourse)
	catalogGroup.Put("/courses/:course_id/status", middleware.JWTMiddleware, authors, validators.PathIDs("course_id"), catalogValidator.CourseStatus(), catalogController.UpdateCourseStatus)
	catalogGroup.Delete("/courses/:course_id", middleware.JWTMiddleware, authors, validators.PathIDs("course_id"), catalogController.DeleteCourse)

	// Modules
	moduleGroup := catalogGroup.Group("/courses/:course_id/modules", middleware.JWTMiddleware)
	moduleGroup.Get("/", authors, validators.PathIDs("course_id"), catalogController.ListModules)
	moduleGroup.Post("/", authors, validators.PathIDs("course_id"), catalogValidator.Module(), catalogController.CreateModule)
	moduleGroup.Put("/:module_id", authors, validators.PathIDs("course_id", "module_id"), catalogValidator.Module(), catalogController.UpdateModule)
	moduleGroup.Delete("/:module_id", authors, validators.PathIDs("course_id", "module_id"), catalogController.DeleteModule)

	// Lessons
	lessonIDs := validators.PathIDs("course_id", "module_id", "lesson_id")
	moduleGroup.Post("/:module_id/lessons", authors, validators.PathIDs("course_id", "module_id"), catalogValidator.Lesson(), catalogController.CreateLesson)
	moduleGroup.Get("/:module_id/lessons/:lesson_id", anyUser, lessonIDs, catalogController.GetLesson)
	moduleGroup.Put("/:module_id/lessons/:lesson_id", authors, lessonIDs, catalogValidator.Lesson(), catalogController.UpdateLesson)
	moduleGroup.Delete("/:module_id/lessons/:lesson_id", authors, lessonIDs, catalogController.DeleteLesson)
	moduleGroup.Put("/:module_id/lessons/:lesson_id/quiz", authors, lessonIDs, catalogValidator.Quiz(), catalogController.UpsertQuiz)

	// Reviews
	catalogGroup.Get("/courses/:course_id/reviews", validators.PathIDs("course_id"), validators.Paginate(), catalogController.ListReviews)
	catalogGroup.Post("/courses/:course_id/reviews", middleware.JWTMiddleware, students, validators.PathIDs("course_id"), catalogValidator.Review(), catalogController.CreateReview)
	catalogGroup.Put("/courses/:course_id/reviews/:review_id", middleware.JWTMiddleware, anyUser, validators.PathIDs("course_id", "review_id"), catalogValidator.Review(), catalogController.UpdateReview)
	catalogGroup.Delete("/courses/:course_id/reviews/:review_id", middleware.JWTMiddleware, anyUser, validators.PathIDs("course_id", "review_id"), catalogController.DeleteReview)

	// Coupons
	catalogGroup.Get("/coupons", middleware.JWTMiddleware, authors, catalogController.ListCoupons)
	catalogGroup.Post("/coupons", middleware.JWTMiddleware, authors, catalogValidator.Coupon(), catalogController.CreateCoupon)
	catalogGroup.Delete("/coupons/:coupon_id", middleware.JWTMiddleware, authors, validators.PathIDs("coupon_id"), catalogController.DeleteCoupon)
}
