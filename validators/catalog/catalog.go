package catalogValidator

import (
	"strconv"
	"strings"
	"time"

	"cursapp/models/course"
	"cursapp/validators"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
)

var maxPrice = decimal.RequireFromString("99999999.99")

type CategoryRequest struct {
	Name     string `json:"name" validate:"required,notblank,max=100"`
	ParentID *uint  `json:"parent_id" validate:"omitempty,min=1"`
}

type TagRequest struct {
	Name string `json:"name" validate:"required,notblank,max=50"`
}

type CourseListQuery struct {
	Page       int    `query:"page" validate:"omitempty,min=1"`
	Limit      int    `query:"limit" validate:"omitempty,min=1,max=100"`
	CategoryID uint   `query:"category_id"`
	Search     string `query:"search" validate:"max=100"`
}

func (q CourseListQuery) Pagination() validators.Pagination {
	p := validators.Pagination{Page: q.Page, Limit: q.Limit}
	p.Normalize()
	return p
}

type CourseRequest struct {
	Title               string          `json:"title" validate:"required,notblank,min=3,max=200"`
	Description         string          `json:"description" validate:"max=10000"`
	CategoryID          *uint           `json:"category_id" validate:"omitempty,min=1"`
	TagIDs              []uint          `json:"tag_ids" validate:"max=20,dive,min=1"`
	PriceUSD            decimal.Decimal `json:"price_usd"`
	RequiresCertificate bool            `json:"requires_certificate"`
}

type CourseStatusRequest struct {
	Status course.CourseStatus `json:"status" validate:"required,oneof=draft published suspended"`
}

type ModuleRequest struct {
	Title string `json:"title" validate:"required,notblank,max=200"`
	Order int    `json:"order" validate:"required,min=1"`
}

type LessonRequest struct {
	Title           string            `json:"title" validate:"required,notblank,max=200"`
	Type            course.LessonType `json:"type" validate:"required,oneof=video document quiz scorm article"`
	ArticleBody     string            `json:"article_body"`
	FileURL         string            `json:"file_url" validate:"omitempty,url,max=500"`
	DurationMinutes int               `json:"duration_minutes" validate:"min=0,max=1440"`
	Order           int               `json:"order" validate:"required,min=1"`
}

type OptionRequest struct {
	Text      string `json:"text" validate:"required,notblank,max=255"`
	IsCorrect bool   `json:"is_correct"`
}

type QuestionRequest struct {
	Text    string          `json:"text" validate:"required,notblank"`
	Points  int             `json:"points" validate:"omitempty,min=1,max=100"`
	Options []OptionRequest `json:"options" validate:"required,min=2,max=10,dive"`
}

type QuizRequest struct {
	PassingScore int               `json:"passing_score" validate:"required,min=1,max=100"`
	MaxAttempts  int               `json:"max_attempts" validate:"required,min=1,max=20"`
	Questions    []QuestionRequest `json:"questions" validate:"required,min=1,max=100,dive"`
}

type CouponRequest struct {
	Code            string          `json:"code" validate:"required,alphanum,min=3,max=50"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
	ExpiresAt       *time.Time      `json:"expires_at"`
	MaxUses         int             `json:"max_uses" validate:"omitempty,min=1"`
	CourseIDs       []uint          `json:"course_ids" validate:"dive,min=1"`
}

type ReviewRequest struct {
	Overall           int    `json:"overall" validate:"required,min=1,max=5"`
	ContentQuality    int    `json:"content_quality" validate:"required,min=1,max=5"`
	Clarity           int    `json:"clarity" validate:"required,min=1,max=5"`
	PracticalValue    int    `json:"practical_value" validate:"required,min=1,max=5"`
	InstructorSupport int    `json:"instructor_support" validate:"required,min=1,max=5"`
	Comment           string `json:"comment" validate:"max=2000"`
}

func CreateCategory() fiber.Handler {
	return validators.Body[CategoryRequest]("validatedCategory")
}

func CreateTag() fiber.Handler {
	return validators.Body[TagRequest]("validatedTag")
}

func CourseList() fiber.Handler {
	return validators.Query[CourseListQuery]("validatedList", func(q *CourseListQuery, _ map[string]string) {
		q.Search = strings.TrimSpace(q.Search)
	})
}

func checkPrice(req *CourseRequest, errs map[string]string) {
	if req.PriceUSD.IsNegative() {
		errs["price_usd"] = "Price must not be negative!"
	} else if req.PriceUSD.GreaterThan(maxPrice) {
		errs["price_usd"] = "Price is too large!"
	} else if !req.PriceUSD.Equal(req.PriceUSD.Round(2)) {
		errs["price_usd"] = "Price must have at most 2 decimals!"
	}
}

func CreateCourse() fiber.Handler {
	return validators.Body[CourseRequest]("validatedCourse", checkPrice)
}

func UpdateCourse() fiber.Handler {
	return validators.Body[CourseRequest]("validatedCourse", checkPrice)
}

func CourseStatus() fiber.Handler {
	return validators.Body[CourseStatusRequest]("validatedStatus")
}

func Module() fiber.Handler {
	return validators.Body[ModuleRequest]("validatedModule")
}

func Lesson() fiber.Handler {
	return validators.Body[LessonRequest]("validatedLesson", func(req *LessonRequest, errs map[string]string) {
		switch req.Type {
		case course.LessonArticle:
			if strings.TrimSpace(req.ArticleBody) == "" {
				errs["article_body"] = "Article body is required for article lessons!"
			}
		case course.LessonDocument, course.LessonSCORM:
			if strings.TrimSpace(req.FileURL) == "" {
				errs["file_url"] = "File URL is required for this lesson type!"
			}
		}
	})
}

func Quiz() fiber.Handler {
	return validators.Body[QuizRequest]("validatedQuiz", func(req *QuizRequest, errs map[string]string) {
		for i, q := range req.Questions {
			correct := 0
			for _, o := range q.Options {
				if o.IsCorrect {
					correct++
				}
			}
			if correct != 1 {
				errs["questions["+strconv.Itoa(i)+"].options"] = "Each question needs exactly one correct option!"
			}
		}
	})
}

func Coupon() fiber.Handler {
	return validators.Body[CouponRequest]("validatedCoupon", func(req *CouponRequest, errs map[string]string) {
		hundred := decimal.NewFromInt(100)
		if !req.DiscountPercent.IsPositive() || req.DiscountPercent.GreaterThan(hundred) {
			errs["discount_percent"] = "Discount must be greater than 0 and at most 100!"
		}
		if req.ExpiresAt != nil && !req.ExpiresAt.After(time.Now()) {
			errs["expires_at"] = "Expiry must be in the future!"
		}
	})
}

func Review() fiber.Handler {
	return validators.Body[ReviewRequest]("validatedReview")
}
