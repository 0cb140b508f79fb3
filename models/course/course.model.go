package course

import (
	"cursapp/models"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseSuspended CourseStatus = "suspended"
)

type Category struct {
	gorm.Model
	Name     string `json:"name" gorm:"uniqueIndex;size:100;not null"`
	Slug     string `json:"slug" gorm:"uniqueIndex;size:120;not null"`
	ParentID *uint  `json:"parent_id" gorm:"index"`
}

type Tag struct {
	gorm.Model
	Name string `json:"name" gorm:"uniqueIndex;size:50;not null"`
	Slug string `json:"slug" gorm:"uniqueIndex;size:60;not null"`
}

// Course rating fields are maintained by services.RecomputeCourseRating only.
type Course struct {
	gorm.Model
	Title               string             `json:"title" gorm:"size:200;not null"` // unique among live courses, see database.RunMigrations
	Slug                string             `json:"slug" gorm:"index;size:220"`
	Description         string             `json:"description" gorm:"type:text"`
	CategoryID          *uint              `json:"category_id" gorm:"index"`
	Category            *Category          `json:"category,omitempty" gorm:"foreignKey:CategoryID;constraint:OnDelete:SET NULL"`
	Tags                []Tag              `json:"tags,omitempty" gorm:"many2many:course_tags;"`
	InstructorID        *uint              `json:"instructor_id" gorm:"index"`
	Instructor          *models.PublicUser `json:"instructor,omitempty" gorm:"foreignKey:InstructorID;constraint:OnDelete:SET NULL"`
	PriceUSD            decimal.Decimal    `json:"price_usd" gorm:"type:decimal(10,2);not null;default:0"`
	RequiresCertificate bool               `json:"requires_certificate" gorm:"default:false"`
	Status              CourseStatus       `json:"status" gorm:"type:varchar(20);default:'draft';index"`

	ReviewCount          int             `json:"review_count" gorm:"not null;default:0"`
	AvgOverall           decimal.Decimal `json:"avg_overall" gorm:"type:decimal(3,2);not null;default:0"`
	AvgContentQuality    decimal.Decimal `json:"avg_content_quality" gorm:"type:decimal(3,2);not null;default:0"`
	AvgClarity           decimal.Decimal `json:"avg_clarity" gorm:"type:decimal(3,2);not null;default:0"`
	AvgPracticalValue    decimal.Decimal `json:"avg_practical_value" gorm:"type:decimal(3,2);not null;default:0"`
	AvgInstructorSupport decimal.Decimal `json:"avg_instructor_support" gorm:"type:decimal(3,2);not null;default:0"`

	Modules []Module `json:"modules,omitempty" gorm:"foreignKey:CourseID"`
}

func (c Course) IsOwnedBy(userID uint) bool {
	return c.InstructorID != nil && *c.InstructorID == userID
}
